// SPDX-License-Identifier: BSD-3-Clause

package devicemgr

import (
	"time"

	"github.com/coolercontrol/coolerd/internal/repository"
)

// Default configuration values for the device manager service.
const (
	DefaultServiceName  = "devicemgr"
	DefaultHistoryLen   = 1860
	DefaultStoreDir     = "/var/lib/coolerd"
	DefaultAlertLogSize = 500

	// DefaultSessionTTL is how long a cookie minted by POST /login stays
	// valid before the client has to log in again (spec §6).
	DefaultSessionTTL = 24 * time.Hour
)

type config struct {
	serviceName  string
	historyLen   int
	storeDir     string
	alertLogSize int
	repositories []repository.Repository
}

type Option interface {
	apply(*config)
}

type nameOption struct {
	name string
}

func (o *nameOption) apply(c *config) {
	c.serviceName = o.name
}

// WithName sets the service name used for logging, telemetry, and NATS
// micro service registration.
func WithName(name string) Option {
	return &nameOption{name: name}
}

type historyLenOption struct {
	n int
}

func (o *historyLenOption) apply(c *config) {
	c.historyLen = o.n
}

// WithHistoryLen bounds how many samples the registry retains per device
// (spec §3: max(poll_rate*longest_consumer_window, 1860)).
func WithHistoryLen(n int) Option {
	return &historyLenOption{n: n}
}

type storeDirOption struct {
	dir string
}

func (o *storeDirOption) apply(c *config) {
	c.storeDir = o.dir
}

// WithStoreDir sets the base directory holding config.toml and the
// credentials file.
func WithStoreDir(dir string) Option {
	return &storeDirOption{dir: dir}
}

type alertLogSizeOption struct {
	n int
}

func (o *alertLogSizeOption) apply(c *config) {
	c.alertLogSize = o.n
}

// WithAlertLogSize bounds the in-memory alert transition log.
func WithAlertLogSize(n int) Option {
	return &alertLogSizeOption{n: n}
}

type repositoriesOption struct {
	repos []repository.Repository
}

func (o *repositoriesOption) apply(c *config) {
	c.repositories = append(c.repositories, o.repos...)
}

// WithRepositories registers one or more hardware-class drivers to
// discover and sample.
func WithRepositories(repos ...repository.Repository) Option {
	return &repositoriesOption{repos: repos}
}
