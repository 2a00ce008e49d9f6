// SPDX-License-Identifier: BSD-3-Clause

// Package daemon provides the top-level supervisor that starts and
// restarts coolerd's services in a fault-tolerant manner: the embedded
// event bus, the tick scheduler, the HTTP/SSE transport, and the device,
// setting, profile, mode, alert, and config services configured through
// WithExtraServices until each grows into a first-class option of its own.
package daemon

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"cirello.io/oversight/v2"
	"github.com/arunsworld/nursery"
	"github.com/nats-io/nats.go"

	"github.com/coolercontrol/coolerd/pkg/id"
	"github.com/coolercontrol/coolerd/pkg/log"
	"github.com/coolercontrol/coolerd/pkg/mount"
	"github.com/coolercontrol/coolerd/pkg/process"
	"github.com/coolercontrol/coolerd/pkg/telemetry"
	"github.com/coolercontrol/coolerd/service"
	"github.com/coolercontrol/coolerd/service/eventbus"
)

const defaultLogo = `
   _____           _          _____           _             _
  / ____|         | |        / ____|         | |           | |
 | |     ___   ___| | ___ __| |     ___  _ __ | |_ _ __ ___ | |
 | |    / _ \ / _ \ |/ / '__| |    / _ \| '_ \| __| '__/ _ \| |
 | |___| (_) | (_) |   <| |  | |___| (_) | | | | |_| | | (_) | |
  \_____\___/ \___/_|\_\_|   \_____\___/|_| |_|\__|_|  \___/|_|
`

// Compile-time assertion that Daemon implements service.Service.
var _ service.Service = (*Daemon)(nil)

// Daemon manages the lifecycle of coolerd's services in a supervised
// environment. It provides service orchestration, fault tolerance, and
// event bus coordination for every other supervised service.
type Daemon struct {
	config
}

// New creates a new Daemon instance with the provided configuration options.
// An event bus is configured unless overridden.
//
// Example usage:
//
//	d := daemon.New(
//		daemon.WithName("coolerd"),
//		daemon.WithTimeout(15*time.Second),
//		daemon.WithTick(tick.New()),
//		daemon.WithTransport(transport.WithAddr(":11987")),
//	)
func New(opts ...Option) *Daemon {
	cfg := &config{
		name:        "daemon",
		id:          "",
		disableLogo: false,
		otelSetup:   telemetry.DefaultSetup,
		logger:      log.NewDefaultLogger(),
		timeout:     10 * time.Second,
		eventBus:    eventbus.New(),
	}
	for _, opt := range opts {
		opt.apply(cfg)
	}
	return &Daemon{
		config: *cfg,
	}
}

// Name returns the configured name of the daemon service.
func (s *Daemon) Name() string {
	return s.name
}

// Run starts the daemon and all configured services under supervision.
// It sets up the supervision tree, configures the event bus, and manages
// the lifecycle of every other service. The daemon runs until the provided
// context is canceled or a fatal error occurs.
//
// The ipcConn parameter can be nil if an event bus is configured via
// options. If both ipcConn and an event bus are provided, the external
// ipcConn takes precedence and the configured event bus is not started.
func (s *Daemon) Run(ctx context.Context, ipcConn nats.InProcessConnProvider) (err error) {
	if s.name == "" {
		return ErrNameEmpty
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s %w: %v", s.Name(), ErrPanicked, r)
		}
	}()

	// Several services rely on the telemetry setup being done first because
	// of the custom logger it installs. Any non-noop telemetry configuration
	// is handled separately by whatever exporter is wired in at the call site.
	s.otelSetup()

	l := log.GetGlobalLogger()

	if s.id == "" {
		idStr, err := id.GetOrCreatePersistentID(s.Name(), "/var/lib/coolerd/id")
		if err != nil {
			l.ErrorContext(ctx, "failed to get/create persistent ID, using ephemeral ID", "error", err)
			s.id = id.NewID()
		} else {
			s.id = idStr
		}
	}

	if !s.disableLogo {
		if s.customLogo != "" {
			l.Info(s.customLogo)
		} else {
			l.Info(defaultLogo)
		}
	}

	l.InfoContext(ctx, "checking filesystem mounts", "service", s.name)
	if err := mount.SetupMounts(); err != nil {
		l.WarnContext(ctx, "failed to setup mounts correctly, continuing anyway", "service", s.name, "error", err)
	}

	supervisionTree := oversight.New(
		oversight.NeverHalt(),
		oversight.DefaultRestartStrategy(),
		oversight.WithLogger(log.NewOversightLogger(l)),
	)

	// A caller needs to either provide a valid ipcConn when starting the
	// daemon or let us create an event bus ourselves from configuration.
	// If both are provided we do NOT start another event bus, we reuse ipcConn.
	if s.eventBus == nil && ipcConn == nil {
		return ErrEventBusNil
	}

	if s.eventBus != nil && ipcConn == nil {
		if err := supervisionTree.Add(
			process.New(s.eventBus, nil),
			oversight.Transient(),
			oversight.Timeout(s.timeout),
			s.eventBus.Name(),
		); err != nil {
			return fmt.Errorf("%w %s to tree: %w", ErrAddProcess, s.eventBus.Name(), err)
		}
	}

	supervise := func(ctx context.Context, c chan error) {
		c <- supervisionTree.Start(ctx)
	}

	spawnProcs := func(ctx context.Context, c chan error) {
		var conn nats.InProcessConnProvider
		if ipcConn != nil {
			conn = ipcConn
		} else {
			conn = s.eventBus.GetConnProvider()
		}

		// Dynamically add all service.Service fields to the supervision tree.
		configValue := reflect.ValueOf(s.config)
		for i := range configValue.NumField() {
			field := configValue.Field(i)

			if field.IsValid() && field.CanInterface() {
				v := field.Interface()
				if v == nil {
					continue
				}
				if svc, ok := v.(service.Service); ok {
					if err := supervisionTree.Add(
						process.New(svc, conn),
						oversight.Transient(),
						oversight.Timeout(s.timeout),
						svc.Name(),
					); err != nil {
						c <- fmt.Errorf("%w %s to tree: %w", ErrAddProcess, svc.Name(), err)
						return
					}
				}
			}
		}

		for _, svc := range s.extraServices {
			if err := supervisionTree.Add(
				process.New(svc, conn),
				oversight.Transient(),
				oversight.Timeout(s.timeout),
				svc.Name(),
			); err != nil {
				c <- fmt.Errorf("%w %s to tree: %w", ErrAddExtraService, svc.Name(), err)
				return
			}
		}
	}

	l.InfoContext(ctx, "starting child routines", "service", s.name)
	return nursery.RunConcurrentlyWithContext(ctx, supervise, spawnProcs)
}
