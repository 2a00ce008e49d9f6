// SPDX-License-Identifier: BSD-3-Clause

package transport

import "time"

type config struct {
	name         string
	addr         string
	tlsEnabled   bool
	hostname     string
	certPath     string
	keyPath      string
	readTimeout  time.Duration
	writeTimeout time.Duration
	idleTimeout  time.Duration
	allowedOrigins []string
	rmemMax        string
	wmemMax        string
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

// WithName sets the service name for the HTTP transport.
func WithName(name string) Option {
	return &nameOption{name: name}
}

type addrOption struct {
	addr string
}

func (o *addrOption) apply(c *config) {
	c.addr = o.addr
}

// WithAddr sets the network address the API server listens on.
func WithAddr(addr string) Option {
	return &addrOption{addr: addr}
}

type tlsOption struct {
	enabled bool
}

func (o *tlsOption) apply(c *config) {
	c.tlsEnabled = o.enabled
}

// WithTLS enables or disables TLS termination on the API listener.
// Disabled by default since the API is commonly reverse-proxied on localhost.
func WithTLS(enabled bool) Option {
	return &tlsOption{enabled: enabled}
}

type hostnameOption struct {
	hostname string
}

func (o *hostnameOption) apply(c *config) {
	c.hostname = o.hostname
}

// WithHostname sets the hostname used for TLS certificate generation.
func WithHostname(hostname string) Option {
	return &hostnameOption{hostname: hostname}
}

type certPathOption struct {
	certPath string
}

func (o *certPathOption) apply(c *config) {
	c.certPath = o.certPath
}

// WithCertPath sets the file path where the TLS certificate is stored or will be generated.
func WithCertPath(certPath string) Option {
	return &certPathOption{certPath: certPath}
}

type keyPathOption struct {
	keyPath string
}

func (o *keyPathOption) apply(c *config) {
	c.keyPath = o.keyPath
}

// WithKeyPath sets the file path where the TLS private key is stored or will be generated.
func WithKeyPath(keyPath string) Option {
	return &keyPathOption{keyPath: keyPath}
}

type readTimeoutOption struct {
	readTimeout time.Duration
}

func (o *readTimeoutOption) apply(c *config) {
	c.readTimeout = o.readTimeout
}

// WithReadTimeout sets the maximum duration for reading a request, including the body.
func WithReadTimeout(readTimeout time.Duration) Option {
	return &readTimeoutOption{readTimeout: readTimeout}
}

type writeTimeoutOption struct {
	writeTimeout time.Duration
}

func (o *writeTimeoutOption) apply(c *config) {
	c.writeTimeout = o.writeTimeout
}

// WithWriteTimeout sets the maximum duration before timing out writes of the response.
// The SSE status stream overrides this per-connection since it is long-lived.
func WithWriteTimeout(writeTimeout time.Duration) Option {
	return &writeTimeoutOption{writeTimeout: writeTimeout}
}

type idleTimeoutOption struct {
	idleTimeout time.Duration
}

func (o *idleTimeoutOption) apply(c *config) {
	c.idleTimeout = o.idleTimeout
}

// WithIdleTimeout sets the maximum amount of time to wait for the next request on a keep-alive connection.
func WithIdleTimeout(idleTimeout time.Duration) Option {
	return &idleTimeoutOption{idleTimeout: idleTimeout}
}

type allowedOriginsOption struct {
	origins []string
}

func (o *allowedOriginsOption) apply(c *config) {
	c.allowedOrigins = o.origins
}

// WithAllowedOrigins sets the CORS allowed origins for the API and UI.
func WithAllowedOrigins(origins ...string) Option {
	return &allowedOriginsOption{origins: origins}
}

type socketBuffersOption struct {
	rmemMax string
	wmemMax string
}

func (o *socketBuffersOption) apply(c *config) {
	c.rmemMax = o.rmemMax
	c.wmemMax = o.wmemMax
}

// WithSocketBuffers sets the net.core.rmem_max/wmem_max sysctls applied
// before the listener is created, sized for the SSE status stream's
// long-lived, bursty writes rather than the default kernel buffer size.
// Empty disables tuning for that direction.
func WithSocketBuffers(rmemMax, wmemMax string) Option {
	return &socketBuffersOption{rmemMax: rmemMax, wmemMax: wmemMax}
}
