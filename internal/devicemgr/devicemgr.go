// SPDX-License-Identifier: BSD-3-Clause

package devicemgr

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/coolercontrol/coolerd/internal/alert"
	cfgstore "github.com/coolercontrol/coolerd/internal/config"
	"github.com/coolercontrol/coolerd/internal/device"
	"github.com/coolercontrol/coolerd/internal/function"
	"github.com/coolercontrol/coolerd/internal/mode"
	"github.com/coolercontrol/coolerd/internal/profile"
	"github.com/coolercontrol/coolerd/internal/repository"
	"github.com/coolercontrol/coolerd/internal/setting"
	"github.com/coolercontrol/coolerd/pkg/ipc"
	"github.com/coolercontrol/coolerd/pkg/log"
	"github.com/coolercontrol/coolerd/service"
)

var _ service.Service = (*DeviceMgr)(nil)

// DeviceMgr is coolerd's device and control-plane service. It owns the
// shared device.Registry and every repository.Repository instance, and
// hosts the function/profile tables, the setting.Manager, mode.Controller,
// and alert.Engine that evaluate against them. Keeping all of this in one
// service, rather than one NATS service per concern, mirrors how the
// teacher's thermal manager keeps zones, cooling devices, and control
// loops together: the lookups these engines need (resolve a profile by
// UID, find the repository that owns a device) are direct Go calls, not
// round trips over the event bus. NATS is reserved for what actually
// crosses a process boundary: the HTTP/SSE transport's requests.
type DeviceMgr struct {
	config *config
	nc     *nats.Conn
	micro  micro.Service
	logger *slog.Logger
	tracer trace.Tracer

	registry *device.Registry
	repos    []repository.Repository

	mu           sync.RWMutex
	repoByDevice map[string]repository.Repository
	functions    map[string]*function.Function
	profiles     map[string]*profile.Profile

	store       *cfgstore.Store
	credentials *cfgstore.Credentials

	settings *setting.Manager
	modes    *mode.Controller
	alerts   *alert.Engine
}

// New creates a new DeviceMgr instance with the provided options.
func New(opts ...Option) *DeviceMgr {
	cfg := &config{
		serviceName:  DefaultServiceName,
		historyLen:   DefaultHistoryLen,
		storeDir:     DefaultStoreDir,
		alertLogSize: DefaultAlertLogSize,
	}
	for _, opt := range opts {
		opt.apply(cfg)
	}
	return &DeviceMgr{
		config:       cfg,
		repoByDevice: make(map[string]repository.Repository),
		functions:    make(map[string]*function.Function),
		profiles:     make(map[string]*profile.Profile),
	}
}

// Name returns the service name.
func (d *DeviceMgr) Name() string {
	return d.config.serviceName
}

// Run connects to the event bus, discovers every configured repository's
// devices, loads the persisted config document, and serves NATS
// endpoints and the tick-driven evaluation pipeline until ctx is done.
func (d *DeviceMgr) Run(ctx context.Context, ipcConn nats.InProcessConnProvider) error {
	d.tracer = otel.Tracer(d.config.serviceName)
	d.logger = log.GetGlobalLogger().With("service", d.config.serviceName)

	nc, err := nats.Connect("", nats.InProcessServer(ipcConn))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNATSConnectionFailed, err)
	}
	d.nc = nc
	defer nc.Drain() //nolint:errcheck

	d.registry = device.NewRegistry(d.config.historyLen)
	d.repos = d.config.repositories

	store, err := cfgstore.Open(filepath.Join(d.config.storeDir, "config.toml"))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfigLoadFailed, err)
	}
	d.store = store

	creds, err := cfgstore.LoadOrCreateCredentials(filepath.Join(d.config.storeDir, "passwd"))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfigLoadFailed, err)
	}
	d.credentials = creds

	d.loadFromStore()

	d.initializeRepositories(ctx)

	general := d.store.General()
	d.setDrivetempSuspended(general.DrivetempSuspend)

	d.settings = setting.NewManager(d, d, d, d, d,
		setting.WithPollRate(general.PollRate),
		setting.WithStartupDelay(time.Duration(general.StartupDelaySeconds)*time.Second),
		setting.WithApplyOnBoot(general.ApplyOnBoot),
	)
	d.modes = mode.NewController(d.settings)
	d.alerts = alert.NewEngine(d.config.alertLogSize)
	d.restoreControllers(ctx)

	d.micro, err = micro.AddService(nc, micro.Config{
		Name:        d.config.serviceName,
		Description: "device discovery, status, and control plane",
		Version:     "1.0.0",
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMicroServiceCreationFailed, err)
	}
	if err := d.registerEndpoints(ctx); err != nil {
		return err
	}

	sampleSub, err := nc.Subscribe(ipc.InternalTickSample, d.onTickSample(ctx))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNATSConnectionFailed, err)
	}
	defer sampleSub.Unsubscribe() //nolint:errcheck

	applySub, err := nc.Subscribe(ipc.InternalTickApply, d.onTickApply(ctx))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNATSConnectionFailed, err)
	}
	defer applySub.Unsubscribe() //nolint:errcheck

	go d.settings.Boot(ctx)

	d.logger.InfoContext(ctx, "device manager started",
		"repositories", len(d.repos), "devices", len(d.registry.List()))

	<-ctx.Done()
	err = ctx.Err()

	shutdownCtx := context.WithoutCancel(ctx)
	if shutErr := d.settings.Shutdown(shutdownCtx); shutErr != nil {
		d.logger.ErrorContext(shutdownCtx, "setting manager shutdown failed", "error", shutErr)
	}

	return err
}

// loadFromStore populates the in-memory function/profile tables from
// the persisted document.
func (d *DeviceMgr) loadFromStore() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, f := range d.store.Functions() {
		d.functions[f.UID] = f
	}
	for _, p := range d.store.Profiles() {
		d.profiles[p.UID] = p
	}
}

// restoreControllers replays persisted modes, alerts, and live channel
// settings into the in-memory engines, in UID-stable order.
func (d *DeviceMgr) restoreControllers(ctx context.Context) {
	for _, m := range d.store.Modes() {
		d.modes.Put(m)
	}
	for _, a := range d.store.Alerts() {
		if err := d.alerts.Put(ctx, a); err != nil {
			d.logger.WarnContext(ctx, "failed to restore alert", "uid", a.UID, "error", err)
		}
	}

	settingsByKey := d.store.Settings()
	keys := make([]device.ChannelKey, 0, len(settingsByKey))
	for k := range settingsByKey {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].UID != keys[j].UID {
			return keys[i].UID < keys[j].UID
		}
		return keys[i].Channel < keys[j].Channel
	})
	for _, k := range keys {
		st := settingsByKey[k]
		ctrl, err := d.settings.EnsureController(ctx, k.UID, k.Channel)
		if err != nil {
			d.logger.WarnContext(ctx, "failed to restore channel setting", "key", k.String(), "error", err)
			continue
		}
		switch st.Kind {
		case setting.KindManual:
			_ = ctrl.ApplyManual(ctx, st.Duty)
		case setting.KindProfile:
			_ = ctrl.ApplyProfile(ctx, st.ProfileUID)
		}
	}
}

// drivetempSuspender is implemented by repositories that can pause
// sampling a driver-specific sensor group while the system is asleep
// (currently only internal/repository/hwmon, for drivetemp). Modeled
// as an optional interface rather than growing repository.Repository,
// since no other driver has an analogous concept.
type drivetempSuspender interface {
	SetDrivetempSuspended(bool)
}

// setDrivetempSuspended forwards the persisted drivetemp_suspend
// general setting (spec §4.1/§4.8) to every repository that
// implements it.
func (d *DeviceMgr) setDrivetempSuspended(suspended bool) {
	for _, repo := range d.repos {
		if s, ok := repo.(drivetempSuspender); ok {
			s.SetDrivetempSuspended(suspended)
		}
	}
}

// ResumeFromSleep forces every channel setting to be rewritten on the
// next tick regardless of lastApplied, and re-asserts the persisted
// drivetemp suspension flag now that the drive has had a chance to
// spin back up (spec §4.1/§4.5 resume-from-sleep behavior).
// cmd/coolerd wires this to SIGCONT, the signal a systemd sleep-hook
// unit (or a frozen/thawed cgroup) delivers on resume.
func (d *DeviceMgr) ResumeFromSleep(ctx context.Context) {
	if d.settings == nil {
		return
	}
	d.logger.InfoContext(ctx, "resuming from sleep, forcing setting reapply")
	d.settings.ResumeFromSleep()
	d.setDrivetempSuspended(d.store.General().DrivetempSuspend)
}

// initializeRepositories discovers every configured repository's devices
// and inserts them into the shared registry. A single repository's
// discovery failure is logged and skipped rather than treated as fatal
// (spec §4.1).
func (d *DeviceMgr) initializeRepositories(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, repo := range d.repos {
		devices, err := repo.Initialize(ctx)
		if err != nil {
			d.logger.WarnContext(ctx, "repository initialization failed", "repository", repo.Name(), "error", err)
			continue
		}
		for _, dev := range devices {
			d.registry.Put(dev)
			d.repoByDevice[dev.UID] = repo
		}
	}
}
