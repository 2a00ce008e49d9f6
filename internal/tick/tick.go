// SPDX-License-Identifier: BSD-3-Clause

// Package tick implements the daemon's fixed-rate scheduler. Once per tick
// it sends a sample request and then an apply message on the internal
// tick subjects of the event bus; the device manager answering them
// samples every repository, records and rebroadcasts the aggregated
// status, and re-applies whatever setting is active on each channel.
package tick

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/coolercontrol/coolerd/pkg/ipc"
	"github.com/coolercontrol/coolerd/pkg/log"
	"github.com/coolercontrol/coolerd/service"
)

var _ service.Service = (*Scheduler)(nil)

// tickMessage is published on every scheduler tick. The device manager
// subscribes to the corresponding internal subjects; Sequence numbers
// the ticks in order.
type tickMessage struct {
	Sequence  uint64    `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
}

// Scheduler drives the daemon's fixed-rate sampling and setting application
// cycle. It never talks to hardware directly; it only coordinates the
// repositories and setting controller through the event bus.
type Scheduler struct {
	config   *config
	nc       *nats.Conn
	logger   *slog.Logger
	tracer   trace.Tracer
	sequence uint64
}

// New creates a new Scheduler instance with the provided configuration options.
func New(opts ...Option) *Scheduler {
	cfg := &config{
		serviceName:    DefaultServiceName,
		interval:       DefaultInterval,
		requestTimeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt.apply(cfg)
	}
	return &Scheduler{config: cfg}
}

// Name returns the service name.
func (s *Scheduler) Name() string {
	return s.config.serviceName
}

// Run starts the tick loop and blocks until the context is canceled.
func (s *Scheduler) Run(ctx context.Context, ipcConn nats.InProcessConnProvider) error {
	s.tracer = otel.Tracer(s.config.serviceName)
	s.logger = log.GetGlobalLogger().With("service", s.config.serviceName)

	if s.config.interval <= 0 {
		return ErrInvalidConfiguration
	}

	nc, err := nats.Connect("", nats.InProcessServer(ipcConn))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNATSConnectionFailed, err)
	}
	s.nc = nc
	defer nc.Drain() //nolint:errcheck

	s.logger.InfoContext(ctx, "starting tick scheduler", "interval", s.config.interval)

	ticker := time.NewTicker(s.config.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "tick scheduler stopping", "reason", ctx.Err())
			return ctx.Err()
		case now := <-ticker.C:
			s.runTick(ctx, now)
		}
	}
}

// runTick runs the sample phase to completion before starting the
// apply phase, per spec §4.9/§5's tick-then-apply ordering: the
// setting and alert evaluation in the apply phase reads the history
// the sample phase just wrote, so the two cannot be independent
// fire-and-forget publishes. The sample phase is a NATS request so
// runTick blocks for devicemgr's reply (or requestTimeout) before
// moving on; the apply phase stays a plain publish since nothing
// downstream of it needs to be awaited here.
func (s *Scheduler) runTick(ctx context.Context, at time.Time) {
	seq := atomic.AddUint64(&s.sequence, 1)

	ctx, span := s.tracer.Start(ctx, "tick.runTick")
	defer span.End()
	span.SetAttributes(attribute.Int64("tick.sequence", int64(seq)))

	msg := tickMessage{Sequence: seq, Timestamp: at}
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to marshal tick message", "error", err)
		span.RecordError(err)
		return
	}

	if _, err := s.nc.Request(ipc.InternalTickSample, data, s.config.requestTimeout); err != nil {
		s.logger.WarnContext(ctx, "sample tick did not complete in time, applying against stale history", "error", err, "sequence", seq)
		span.RecordError(err)
	}

	if err := s.nc.Publish(ipc.InternalTickApply, data); err != nil {
		s.logger.WarnContext(ctx, "failed to publish apply tick", "error", err, "sequence", seq)
		span.RecordError(err)
	}
}
