// SPDX-License-Identifier: BSD-3-Clause

package thinkpad

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/coolercontrol/coolerd/internal/device"
	"github.com/coolercontrol/coolerd/internal/repository"
	"github.com/coolercontrol/coolerd/pkg/hwmon"
)

const (
	driverName = "thinkpad"
	fanChannel = "fan1"
	pwmEnabled = 1
)

// Repository drives the thinkpad_acpi hwmon node: fan1/pwm1 as a
// writable actuator channel, plus an out-of-band full-speed toggle
// exposed through /proc/acpi/ibm/fan and an in-memory fan-control-enable
// flag.
type Repository struct {
	discoverer  *hwmon.Discoverer
	basePath    string
	procFanPath string

	mu        sync.Mutex
	uid       string
	pwmPath   string
	pwmEnable string
	tempPaths map[string]string // channel name -> temp_input sysfs path
	fullSpeed bool
	controlOn bool
}

// Option configures a Repository.
type Option func(*Repository)

// WithBasePath overrides the default /sys/class/hwmon scan root.
func WithBasePath(path string) Option {
	return func(r *Repository) { r.basePath = path }
}

// WithProcFanPath overrides the default /proc/acpi/ibm/fan control
// file, used in tests to point at a fixture file.
func WithProcFanPath(path string) Option {
	return func(r *Repository) { r.procFanPath = path }
}

// New creates a thinkpad Repository.
func New(opts ...Option) *Repository {
	r := &Repository{
		basePath:    hwmon.DefaultHwmonPath,
		procFanPath: "/proc/acpi/ibm/fan",
		controlOn:   true,
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
func (r *Repository) Name() string { return "thinkpad" }

// Initialize implements repository.Repository. At most one device is
// produced: a laptop has exactly one thinkpad_acpi instance.
func (r *Repository) Initialize(ctx context.Context) ([]*device.Device, error) {
	hwDevices, err := r.discoverer.DiscoverDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", repository.ErrDiscoveryFailed, err)
	}

	for _, hw := range hwDevices {
		if hw.Name != driverName {
			continue
		}
		sensors, err := hw.GetSensors(ctx)
		if err != nil {
			continue
		}

		var temps []string
		var pwmPath, pwmEnable string
		for _, s := range sensors {
			switch s.Type {
			case hwmon.SensorTypeTemperature:
				if path, err := s.GetAttributePath(hwmon.AttributeInput); err == nil {
					temps = append(temps, path)
				}
			case hwmon.SensorTypePWM:
				if channelIndex(s.Name) != 1 {
					continue
				}
				if path, err := s.GetAttributePath(hwmon.AttributeInput); err == nil {
					pwmPath = path
				}
				if path, err := s.GetAttributePath(hwmon.AttributeEnable); err == nil {
					pwmEnable = path
				}
			}
		}

		info := make(map[string]device.ChannelInfo)
		if pwmPath != "" {
			info[fanChannel] = device.ChannelInfo{
				Label: "Fan",
				Speed: &device.SpeedOptions{
					MinDuty: 0, MaxDuty: 100,
					FixedEnabled: true, ProfilesEnabled: true, ManualProfilesEnabled: true,
				},
			}
		}
		tempPaths := make(map[string]string, len(temps))
		for i, path := range temps {
			name := fmt.Sprintf("temp%d", i+1)
			info[name] = device.ChannelInfo{Label: "ThinkPad"}
			tempPaths[name] = path
		}
		if len(info) == 0 {
			return nil, nil
		}

		uid := device.DeriveUID(device.TypeThinkPad, driverName, hw.Path)
		r.mu.Lock()
		r.uid = uid
		r.pwmPath = pwmPath
		r.pwmEnable = pwmEnable
		r.tempPaths = tempPaths
		r.mu.Unlock()

		return []*device.Device{{
			UID:       uid,
			Name:      "ThinkPad",
			Type:      device.TypeThinkPad,
			TypeIndex: 0,
			Info:      info,
		}}, nil
	}

	return nil, nil
}

func channelIndex(sensorName string) int {
	var idx int
	_, _ = fmt.Sscanf(sensorName, "pwm%d", &idx)
	return idx
}

// Sample implements repository.Repository.
func (r *Repository) Sample(ctx context.Context, d *device.Device) (device.Status, error) {
	r.mu.Lock()
	uid, pwmPath, tempPaths := r.uid, r.pwmPath, r.tempPaths
	r.mu.Unlock()
	if uid != d.UID {
		return device.Status{}, fmt.Errorf("%w: %s", device.ErrDeviceNotFound, d.UID)
	}

	var status device.Status
	names := d.Channels()
	sort.Strings(names)
	for _, name := range names {
		if name == fanChannel {
			if pwmPath == "" {
				continue
			}
			raw, err := hwmon.ReadIntCtx(ctx, pwmPath)
			if err != nil {
				continue
			}
			duty := hwmon.NewPWMValue(int64(raw)).Percent()
			status.Channels = append(status.Channels, device.ChannelReading{Name: name, Duty: &duty})
			continue
		}
		if strings.HasPrefix(name, "temp") {
			path, ok := tempPaths[name]
			if !ok {
				continue
			}
			raw, err := hwmon.ReadIntCtx(ctx, path)
			if err != nil {
				continue
			}
			status.Temps = append(status.Temps, device.TempReading{
				Name: name, Temp: float32(hwmon.NewTemperatureValue(int64(raw)).Celsius()),
			})
		}
	}
	return status, nil
}

// Apply implements repository.Repository.
func (r *Repository) Apply(ctx context.Context, d *device.Device, req repository.ApplyRequest) error {
	r.mu.Lock()
	uid, pwmPath, pwmEnable, controlOn := r.uid, r.pwmPath, r.pwmEnable, r.controlOn
	r.mu.Unlock()

	if uid != d.UID || req.Channel != fanChannel || pwmPath == "" {
		return fmt.Errorf("%w: %s", repository.ErrUnsupportedChannel, req.Channel)
	}
	if !controlOn {
		return ErrFanControlDisabled
	}

	if req.Duty == nil {
		if pwmEnable != "" {
			return hwmon.WriteIntCtx(ctx, pwmEnable, 2) // thinkpad_acpi automatic mode
		}
		return nil
	}
	if *req.Duty < 0 || *req.Duty > 100 {
		return fmt.Errorf("%w: %d", repository.ErrOutOfRange, *req.Duty)
	}
	if pwmEnable != "" {
		if err := hwmon.WriteIntCtx(ctx, pwmEnable, pwmEnabled); err != nil {
			return fmt.Errorf("%w: %w", repository.ErrDriverError, err)
		}
	}
	raw := int(float64(*req.Duty) * 255.0 / 100.0)
	if err := hwmon.WriteIntCtx(ctx, pwmPath, raw); err != nil {
		return fmt.Errorf("%w: %w", repository.ErrDriverError, err)
	}
	return nil
}

// SetFullSpeed toggles the full-speed mode described in spec §4.1,
// bypassing the embedded controller's RPM ceiling via the legacy
// /proc/acpi/ibm/fan control file.
func (r *Repository) SetFullSpeed(ctx context.Context, enabled bool) error {
	level := "auto"
	if enabled {
		level = "full-speed"
	}
	r.mu.Lock()
	r.fullSpeed = enabled
	path := r.procFanPath
	r.mu.Unlock()
	return hwmon.WriteStringCtx(ctx, path, "level "+level)
}

// FullSpeed reports whether full-speed mode is currently active.
func (r *Repository) FullSpeed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fullSpeed
}

// SetFanControlEnabled toggles whether Apply is allowed to write
// pwm1, independent of the setting controller's own state (spec §4.1
// fan-control-enable flag).
func (r *Repository) SetFanControlEnabled(_ context.Context, enabled bool) error {
	r.mu.Lock()
	r.controlOn = enabled
	r.mu.Unlock()
	return nil
}

// Shutdown implements repository.Repository: restores automatic fan
// control so the embedded controller resumes governing the fan.
func (r *Repository) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	pwmEnable := r.pwmEnable
	r.mu.Unlock()
	if pwmEnable == "" {
		return nil
	}
	if err := hwmon.WriteIntCtx(ctx, pwmEnable, 2); err != nil {
		return fmt.Errorf("%w: %w", repository.ErrDriverError, err)
	}
	return nil
}

var _ repository.Repository = (*Repository)(nil)
