// SPDX-License-Identifier: BSD-3-Clause

// Package repository defines the driver contract for one hardware
// class (spec §4.1): discover devices, sample sensors, apply actuator
// writes, and restore a safe state on shutdown. Concrete drivers live
// in subpackages (hwmon, cpu, gpu, liquidctl, thinkpad, customsensors)
// and are composed by internal/devicemgr, which owns the shared
// device.Registry and exposes it over NATS.
package repository

import (
	"context"

	"github.com/coolercontrol/coolerd/internal/device"
)

// ApplyRequest is a resolved actuator write: the setting controller
// has already evaluated Manual/Profile/None into either a concrete
// duty or a driver-default reset before calling Apply, so repositories
// never see profile or function state.
type ApplyRequest struct {
	Channel string
	// Duty is 0..=100, or nil to reset the channel to its driver
	// default state (spec §4.1 "driver-default resets").
	Duty *int
}

// Repository is the driver for one hardware class.
type Repository interface {
	// Name identifies the repository, e.g. "hwmon", "cpu", "liquidctl".
	Name() string

	// Initialize discovers devices, assigns UIDs and computes
	// ChannelInfo. It may fail partially: a device whose discovery
	// fails is skipped, never returned as a fatal error for the whole
	// repository.
	Initialize(ctx context.Context) ([]*device.Device, error)

	// Sample reads every sensor and actuator readback for d. It must
	// be non-blocking-bounded (target <=50ms); stale or errored
	// readings surface as absent fields on the returned Status, never
	// as poisoned defaults.
	Sample(ctx context.Context, d *device.Device) (device.Status, error)

	// Apply writes an actuator value to one channel of d.
	Apply(ctx context.Context, d *device.Device, req ApplyRequest) error

	// Shutdown restores a safe state for every device this repository
	// owns, per the configured shutdown policy.
	Shutdown(ctx context.Context) error
}
