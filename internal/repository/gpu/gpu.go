// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"context"
	"fmt"

	"github.com/coolercontrol/coolerd/internal/device"
	"github.com/coolercontrol/coolerd/internal/repository"
	"github.com/coolercontrol/coolerd/pkg/hwmon"
)

// Repository multiplexes the AMD (amdgpu hwmon) and NVIDIA
// (nvidia-smi/nvidia-settings) drivers behind one repository.Repository,
// routing each call to whichever backend owns the device's UID.
type Repository struct {
	amd    *amdDriver
	nvidia *nvidiaDriver
}

// Option configures a Repository.
type Option func(*Repository)

// WithBasePath overrides the default /sys/class/hwmon scan root used
// for the AMD backend.
func WithBasePath(path string) Option {
	return func(r *Repository) { r.amd = newAMDDriver(path) }
}

// New creates a gpu Repository.
func New(opts ...Option) *Repository {
	r := &Repository{
		amd:    newAMDDriver(hwmon.DefaultHwmonPath),
		nvidia: newNvidiaDriver(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name implements repository.Repository.
func (r *Repository) Name() string { return "gpu" }

// Initialize implements repository.Repository.
func (r *Repository) Initialize(ctx context.Context) ([]*device.Device, error) {
	amdDevices, err := r.amd.discover(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", repository.ErrDiscoveryFailed, err)
	}
	nvidiaDevices, err := r.nvidia.discover(ctx, len(amdDevices))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", repository.ErrDiscoveryFailed, err)
	}
	return append(amdDevices, nvidiaDevices...), nil
}

// Sample implements repository.Repository.
func (r *Repository) Sample(ctx context.Context, d *device.Device) (device.Status, error) {
	if r.amd.owns(d.UID) {
		return r.amd.sample(ctx, d)
	}
	if r.nvidia.owns(d.UID) {
		return r.nvidia.sample(ctx, d)
	}
	return device.Status{}, fmt.Errorf("%w: %s", device.ErrDeviceNotFound, d.UID)
}

// Apply implements repository.Repository.
func (r *Repository) Apply(ctx context.Context, d *device.Device, req repository.ApplyRequest) error {
	if r.amd.owns(d.UID) {
		return r.amd.apply(ctx, d, req)
	}
	if r.nvidia.owns(d.UID) {
		return r.nvidia.apply(ctx, d, req)
	}
	return fmt.Errorf("%w: %s", device.ErrDeviceNotFound, d.UID)
}

// Shutdown implements repository.Repository.
func (r *Repository) Shutdown(ctx context.Context) error {
	amdErr := r.amd.shutdown(ctx)
	nvErr := r.nvidia.shutdown(ctx)
	if amdErr != nil {
		return amdErr
	}
	return nvErr
}

var _ repository.Repository = (*Repository)(nil)
