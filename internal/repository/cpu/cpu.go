// SPDX-License-Identifier: BSD-3-Clause

package cpu

import (
	"context"
	"fmt"
	"sync"

	"github.com/coolercontrol/coolerd/internal/device"
	"github.com/coolercontrol/coolerd/internal/repository"
	"github.com/coolercontrol/coolerd/pkg/hwmon"
)

// recognizedDrivers are the hwmon driver names that expose CPU
// package/core temperatures (spec §4.1).
var recognizedDrivers = map[string]bool{
	"coretemp": true,
	"k10temp":  true,
	"zenpower": true,
}

const channelName = "cpu"

// Repository collapses every temperature sensor on a recognized CPU
// hwmon driver into a single read-only "CPU" channel reporting the
// hottest core/package reading each tick.
type Repository struct {
	discoverer *hwmon.Discoverer
	basePath   string

	mu    sync.Mutex
	paths map[string][]string // device UID -> temp_input sysfs paths
}

// Option configures a Repository.
type Option func(*Repository)

// WithBasePath overrides the default /sys/class/hwmon scan root.
func WithBasePath(path string) Option {
	return func(r *Repository) { r.basePath = path }
}

// New creates a cpu Repository.
func New(opts ...Option) *Repository {
	r := &Repository{
		basePath: hwmon.DefaultHwmonPath,
		paths:    make(map[string][]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.discoverer = hwmon.NewDiscoverer(
		hwmon.WithDiscoveryPath(r.basePath),
		hwmon.WithDiscoveryCache(false, 0),
	)
	return r
}

// Name implements repository.Repository.
func (r *Repository) Name() string { return "cpu" }

// Initialize implements repository.Repository. One Device is produced
// per matching hwmon node, TypeIndex ordered by discovery order, since
// a multi-socket system exposes one coretemp/k10temp instance per
// physical package.
func (r *Repository) Initialize(ctx context.Context) ([]*device.Device, error) {
	hwDevices, err := r.discoverer.DiscoverDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", repository.ErrDiscoveryFailed, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*device.Device
	typeIndex := 0
	for _, hw := range hwDevices {
		if !recognizedDrivers[hw.Name] {
			continue
		}
		sensors, err := hw.GetSensors(ctx)
		if err != nil {
			continue
		}
		var paths []string
		for _, s := range sensors {
			if s.Type != hwmon.SensorTypeTemperature {
				continue
			}
			path, err := s.GetAttributePath(hwmon.AttributeInput)
			if err != nil {
				continue
			}
			paths = append(paths, path)
		}
		if len(paths) == 0 {
			continue
		}

		uid := device.DeriveUID(device.TypeCPU, hw.Name, hw.Path)
		r.paths[uid] = paths
		out = append(out, &device.Device{
			UID:       uid,
			Name:      "CPU",
			Type:      device.TypeCPU,
			TypeIndex: typeIndex,
			Info: map[string]device.ChannelInfo{
				channelName: {Label: "CPU"},
			},
		})
		typeIndex++
	}

	return out, nil
}

// Sample implements repository.Repository: reads every core/package
// temp_input path and reports the hottest reading this tick.
func (r *Repository) Sample(ctx context.Context, d *device.Device) (device.Status, error) {
	r.mu.Lock()
	paths, ok := r.paths[d.UID]
	r.mu.Unlock()
	if !ok {
		return device.Status{}, fmt.Errorf("%w: %s", device.ErrDeviceNotFound, d.UID)
	}

	var hottest float64
	found := false
	for _, path := range paths {
		raw, err := hwmon.ReadIntCtx(ctx, path)
		if err != nil {
			continue // transient read error: skip this sensor this tick
		}
		c := hwmon.NewTemperatureValue(int64(raw)).Celsius()
		if !found || c > hottest {
			hottest = c
			found = true
		}
	}
	if !found {
		return device.Status{}, nil
	}
	return device.Status{
		Temps: []device.TempReading{{Name: channelName, Temp: float32(hottest)}},
	}, nil
}

// Apply implements repository.Repository. The CPU repository exposes
// no actuator channels.
func (r *Repository) Apply(_ context.Context, _ *device.Device, req repository.ApplyRequest) error {
	return fmt.Errorf("%w: %s", repository.ErrUnsupportedChannel, req.Channel)
}

// Shutdown implements repository.Repository. Nothing to restore: the
// CPU repository never writes to hardware.
func (r *Repository) Shutdown(_ context.Context) error { return nil }

var _ repository.Repository = (*Repository)(nil)
