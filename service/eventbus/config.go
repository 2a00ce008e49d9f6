// SPDX-License-Identifier: BSD-3-Clause

package eventbus

import (
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
)

// Default configuration values for the event bus.
const (
	DefaultServiceName        = "eventbus"
	DefaultServiceDescription = "in-process event bus for device status, mode, and alert broadcast"
	DefaultServiceVersion     = "1.0.0"
	DefaultServerName         = "coolerd"
	DefaultStoreDir           = "/var/lib/coolerd/eventbus"
	DefaultMaxMemory          = 64 * 1024 * 1024
	DefaultMaxStorage         = 256 * 1024 * 1024
	DefaultStartupTimeout     = 10 * time.Second
	DefaultShutdownTimeout    = 5 * time.Second
)

type config struct {
	serviceName                 string
	serviceDescription          string
	serviceVersion              string
	serverName                  string
	storeDir                    string
	enableJetStream             bool
	dontListen                  bool
	maxMemory                   int64
	maxStorage                  int64
	startupTimeout              time.Duration
	shutdownTimeout             time.Duration
	maxConnections              int
	maxControlLine              int32
	maxPayload                  int32
	writeDeadline               time.Duration
	pingInterval                time.Duration
	maxPingsOut                 int
	enableSlowConsumerDetection bool
	slowConsumerThreshold       time.Duration
	debug                       bool
	trace                       bool
}

// Validate checks that the configuration is internally consistent.
func (c *config) Validate() error {
	if c.serviceName == "" {
		return fmt.Errorf("%w: service name cannot be empty", ErrInvalidConfiguration)
	}
	if c.storeDir == "" && c.enableJetStream {
		return fmt.Errorf("%w: store directory required when JetStream is enabled", ErrStorageDirInvalid)
	}
	if c.startupTimeout <= 0 {
		return fmt.Errorf("%w: startup timeout must be positive", ErrInvalidTimeout)
	}
	if c.shutdownTimeout <= 0 {
		return fmt.Errorf("%w: shutdown timeout must be positive", ErrInvalidTimeout)
	}
	return nil
}

// ToServerOptions converts the event bus configuration into NATS server options.
func (c *config) ToServerOptions() *server.Options {
	opts := &server.Options{
		ServerName:     c.serverName,
		DontListen:     c.dontListen,
		JetStream:      c.enableJetStream,
		StoreDir:       c.storeDir,
		JetStreamMaxMemory:  c.maxMemory,
		JetStreamMaxStore:   c.maxStorage,
		MaxConn:        c.maxConnections,
		MaxControlLine: c.maxControlLine,
		MaxPayload:     c.maxPayload,
		WriteDeadline:  c.writeDeadline,
		PingInterval:   c.pingInterval,
		MaxPingsOut:    c.maxPingsOut,
		Debug:          c.debug,
		Trace:          c.trace,
	}
	return opts
}

// Option configures the event bus service.
type Option interface {
	apply(*config)
}

type optionFunc func(*config)

func (f optionFunc) apply(c *config) { f(c) }

// WithServiceName sets the logical service name used in logs and telemetry.
func WithServiceName(name string) Option {
	return optionFunc(func(c *config) { c.serviceName = name })
}

// WithServerName sets the NATS server's identifying name.
func WithServerName(name string) Option {
	return optionFunc(func(c *config) { c.serverName = name })
}

// WithStoreDir sets the JetStream storage directory, used to persist the
// mode activation and alert transition audit trail.
func WithStoreDir(dir string) Option {
	return optionFunc(func(c *config) { c.storeDir = dir })
}

// WithJetStream enables or disables JetStream persistence.
func WithJetStream(enabled bool) Option {
	return optionFunc(func(c *config) { c.enableJetStream = enabled })
}

// WithMaxMemory sets the maximum JetStream memory storage in bytes.
func WithMaxMemory(bytes int64) Option {
	return optionFunc(func(c *config) { c.maxMemory = bytes })
}

// WithMaxStorage sets the maximum JetStream file storage in bytes.
func WithMaxStorage(bytes int64) Option {
	return optionFunc(func(c *config) { c.maxStorage = bytes })
}

// WithStartupTimeout sets how long to wait for the server to become ready.
func WithStartupTimeout(timeout time.Duration) Option {
	return optionFunc(func(c *config) { c.startupTimeout = timeout })
}

// WithShutdownTimeout sets how long to wait for graceful shutdown.
func WithShutdownTimeout(timeout time.Duration) Option {
	return optionFunc(func(c *config) { c.shutdownTimeout = timeout })
}

// WithDebug enables NATS server debug logging.
func WithDebug(enabled bool) Option {
	return optionFunc(func(c *config) { c.debug = enabled })
}

// WithTrace enables NATS server protocol tracing.
func WithTrace(enabled bool) Option {
	return optionFunc(func(c *config) { c.trace = enabled })
}
