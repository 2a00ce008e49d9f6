// SPDX-License-Identifier: BSD-3-Clause

package daemon

import (
	"log/slog"
	"time"

	"github.com/coolercontrol/coolerd/service"
	"github.com/coolercontrol/coolerd/service/eventbus"
	"github.com/coolercontrol/coolerd/service/transport"
)

type config struct {
	name        string
	id          string
	disableLogo bool
	customLogo  string
	otelSetup   func()
	logger      *slog.Logger
	timeout     time.Duration
	// EventBus needs special handling: its connection provider is what every
	// other service dials into, so it is started before anything else.
	eventBus *eventbus.EventBus
	// Everything of type service.Service is supervised alongside the event bus.
	Tick      service.Service
	Transport service.Service

	extraServices []service.Service
}

type Option interface {
	apply(*config)
}

type nameOption struct {
	name string
}

func (o *nameOption) apply(c *config) {
	c.name = o.name
}

// WithName sets the name for the daemon configuration.
func WithName(name string) Option {
	return &nameOption{
		name: name,
	}
}

type idOption struct {
	id string
}

func (o *idOption) apply(c *config) {
	c.id = o.id
}

// WithID sets the unique identifier for the daemon configuration.
func WithID(id string) Option {
	return &idOption{
		id: id,
	}
}

type disableLogoOption struct {
	disableLogo bool
}

func (o *disableLogoOption) apply(c *config) {
	c.disableLogo = o.disableLogo
}

// WithDisableLogo controls whether the logo display is disabled.
// When set to true, the logo will not be shown during startup.
func WithDisableLogo(disableLogo bool) Option {
	return &disableLogoOption{
		disableLogo: disableLogo,
	}
}

type customLogoOption struct {
	customLogo string
}

func (o *customLogoOption) apply(c *config) {
	c.customLogo = o.customLogo
}

// WithCustomLogo sets a custom logo to be displayed instead of the default logo.
func WithCustomLogo(customLogo string) Option {
	return &customLogoOption{
		customLogo: customLogo,
	}
}

type otelSetupOption struct {
	otelSetup func()
}

func (o *otelSetupOption) apply(c *config) {
	c.otelSetup = o.otelSetup
}

// WithOtelSetup sets up OpenTelemetry configuration by providing a setup function.
// The function will be called during daemon initialization to configure telemetry.
func WithOtelSetup(otelSetup func()) Option {
	return &otelSetupOption{
		otelSetup: otelSetup,
	}
}

type loggerOption struct {
	logger *slog.Logger
}

func (o *loggerOption) apply(c *config) {
	c.logger = o.logger
}

// WithLogger sets a custom structured logger for the daemon.
// If not provided, a default logger will be used.
func WithLogger(logger *slog.Logger) Option {
	return &loggerOption{
		logger: logger,
	}
}

type timeoutOption struct {
	timeout time.Duration
}

func (o *timeoutOption) apply(c *config) {
	c.timeout = o.timeout
}

// WithTimeout sets the timeout duration used for supervised service startup.
func WithTimeout(timeout time.Duration) Option {
	return &timeoutOption{
		timeout: timeout,
	}
}

type eventBusOption struct {
	eventBus *eventbus.EventBus
}

func (o *eventBusOption) apply(c *config) {
	c.eventBus = o.eventBus
}

// WithEventBus configures the embedded event bus with the provided options.
// This service hosts the NATS server that every other service communicates through.
func WithEventBus(opts ...eventbus.Option) Option {
	return &eventBusOption{
		eventBus: eventbus.New(opts...),
	}
}

type tickOption struct {
	tick service.Service
}

func (o *tickOption) apply(c *config) {
	c.Tick = o.tick
}

// WithTick configures the tick scheduler service. It samples every
// repository and re-applies every active setting once per interval.
func WithTick(tick service.Service) Option {
	return &tickOption{
		tick: tick,
	}
}

type transportOption struct {
	transport service.Service
}

func (o *transportOption) apply(c *config) {
	c.Transport = o.transport
}

// WithTransport configures the HTTP API service with the provided options.
func WithTransport(opts ...transport.Option) Option {
	return &transportOption{
		transport: transport.New(opts...),
	}
}

type servicesOption struct {
	services []service.Service
}

func (o *servicesOption) apply(c *config) {
	c.extraServices = o.services
}

// WithExtraServices adds additional custom services to the daemon configuration.
// These services are supervised alongside the standard device, setting, profile,
// mode, alert, and config services once the latter exist.
func WithExtraServices(services ...service.Service) Option {
	return &servicesOption{
		services: services,
	}
}
