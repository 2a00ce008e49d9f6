// SPDX-License-Identifier: BSD-3-Clause

// Package hwmon adapts pkg/hwmon's generic sysfs layer into a
// repository.Repository for motherboard super-I/O fan controllers,
// NVMe/SATA drive temperature providers, and CPU hwmon drivers
// (coretemp, k10temp, zenpower) exposed under /sys/class/hwmon.
package hwmon

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

// manualPWMDrivers require pwm_enable=1 before a pwmN value write takes
// effect; without it the kernel silently ignores the write (spec §4.1).
var manualPWMDrivers = map[string]bool{
	"nct6775":  true,
	"nct6683":  true,
	"it87":     true,
	"f71882fg": true,
}

const (
	pwmEnableManual = 1
	pwmEnableAuto   = 5
)

// channelState tracks the pwm channels we had to switch to manual mode
// so Shutdown can hand them back to automatic control (pwm_enable=5).
type channelState struct {
	enablePath   string
	originalMode int
	switched     bool
}

// Repository drives every /sys/class/hwmon node: temperature-only
// devices (coretemp, drivetemp, k10temp family) as read-only channels,
// and PWM-capable devices as read/write fan or pump channels.
type Repository struct {
	discoverer *hwmon.Discoverer
	basePath   string

	mu           sync.Mutex
	byUID        map[string]*hwmonDevice
	channelState map[device.ChannelKey]*channelState

	restoreAuto     bool
	drivetempPaused bool
}

// hwmonDevice binds a discovered hwmon.Device to the UID we derived for it.
type hwmonDevice struct {
	uid    string
	driver string
	hw     *hwmon.Device
}

// Option configures a Repository.
type Option func(*Repository)

// WithBasePath overrides the default /sys/class/hwmon scan root, used
// in tests to point at a fixture directory.
func WithBasePath(path string) Option {
	return func(r *Repository) { r.basePath = path }
}

// WithRestoreAutoOnShutdown controls whether manual-mode pwm channels
// are switched back to pwm_enable=5 on Shutdown (spec §4.5 shutdown
// semantics, default true).
func WithRestoreAutoOnShutdown(restore bool) Option {
	return func(r *Repository) { r.restoreAuto = restore }
}

// New creates an hwmon Repository.
func New(opts ...Option) *Repository {
	r := &Repository{
		basePath:     hwmon.DefaultHwmonPath,
		byUID:        make(map[string]*hwmonDevice),
		channelState: make(map[device.ChannelKey]*channelState),
		restoreAuto:  true,
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
func (r *Repository) Name() string { return "hwmon" }

// Initialize implements repository.Repository.
func (r *Repository) Initialize(ctx context.Context) ([]*device.Device, error) {
	hwDevices, err := r.discoverer.DiscoverDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", repository.ErrDiscoveryFailed, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*device.Device, 0, len(hwDevices))
	typeIndex := 0
	for _, hw := range hwDevices {
		d, err := r.buildDevice(ctx, hw, typeIndex)
		if err != nil {
			// Partial-failure tolerant: skip this device, keep the rest.
			continue
		}
		if d == nil {
			continue
		}
		typeIndex++
		r.byUID[d.UID] = &hwmonDevice{uid: d.UID, driver: hw.Name, hw: hw}
		out = append(out, d)
	}

	return out, nil
}

func (r *Repository) buildDevice(ctx context.Context, hw *hwmon.Device, typeIndex int) (*device.Device, error) {
	sensors, err := hw.GetSensors(ctx)
	if err != nil {
		return nil, err
	}
	if len(sensors) == 0 {
		return nil, nil
	}

	uid := device.DeriveUID(device.TypeHwmon, hw.Name, hw.Path)
	info := make(map[string]device.ChannelInfo)

	for _, s := range sensors {
		switch s.Type {
		case hwmon.SensorTypeTemperature:
			label := s.Label
			if label == "" {
				label = s.String()
			}
			info[channelName(s)] = device.ChannelInfo{Label: label}
		case hwmon.SensorTypePWM:
			if !s.Writable {
				continue
			}
			info[channelName(s)] = device.ChannelInfo{
				Label: s.String(),
				Speed: &device.SpeedOptions{
					MinDuty:               0,
					MaxDuty:               100,
					FixedEnabled:          true,
					ProfilesEnabled:       true,
					ManualProfilesEnabled: true,
				},
			}
		case hwmon.SensorTypeFan:
			// Fan RPM readbacks are reported alongside the sibling pwm
			// channel's status, not exposed as their own channel.
		}
	}

	if len(info) == 0 {
		return nil, nil
	}

	return &device.Device{
		UID:       uid,
		Name:      hw.Name,
		Type:      device.TypeHwmon,
		TypeIndex: typeIndex,
		Info:      info,
	}, nil
}

func channelName(s *hwmon.SensorInfo) string {
	return fmt.Sprintf("%s%d", s.Type.Prefix(), s.Index)
}

// Sample implements repository.Repository.
func (r *Repository) Sample(ctx context.Context, d *device.Device) (device.Status, error) {
	r.mu.Lock()
	hd, ok := r.byUID[d.UID]
	paused := ok && r.drivetempPaused && strings.Contains(hd.driver, "drivetemp")
	r.mu.Unlock()
	if !ok {
		return device.Status{}, fmt.Errorf("%w: %s", device.ErrDeviceNotFound, d.UID)
	}
	if paused {
		return device.Status{}, nil
	}

	status := device.Status{}
	for name, ch := range d.Info {
		if ch.Speed != nil {
			reading, err := r.sampleChannel(ctx, hd, name)
			if err != nil {
				continue // transient sampling error: absent field this tick
			}
			status.Channels = append(status.Channels, reading)
			continue
		}
		temp, err := r.sampleTemp(ctx, hd, name)
		if err != nil {
			continue
		}
		status.Temps = append(status.Temps, temp)
	}

	sort.Slice(status.Temps, func(i, j int) bool { return status.Temps[i].Name < status.Temps[j].Name })
	sort.Slice(status.Channels, func(i, j int) bool { return status.Channels[i].Name < status.Channels[j].Name })
	return status, nil
}

func (r *Repository) sampleTemp(ctx context.Context, hd *hwmonDevice, name string) (device.TempReading, error) {
	sensor, ok := hd.hw.Sensors[name]
	if !ok {
		return device.TempReading{}, device.ErrChannelNotFound
	}
	path, err := sensor.GetAttributePath(hwmon.AttributeInput)
	if err != nil {
		return device.TempReading{}, err
	}
	raw, err := hwmon.ReadIntCtx(ctx, path)
	if err != nil {
		return device.TempReading{}, err
	}
	return device.TempReading{Name: name, Temp: float32(hwmon.NewTemperatureValue(int64(raw)).Celsius())}, nil
}

func (r *Repository) sampleChannel(ctx context.Context, hd *hwmonDevice, name string) (device.ChannelReading, error) {
	sensor, ok := hd.hw.Sensors[name]
	if !ok {
		return device.ChannelReading{}, device.ErrChannelNotFound
	}
	path, err := sensor.GetAttributePath(hwmon.AttributeInput)
	if err != nil {
		return device.ChannelReading{}, err
	}
	raw, err := hwmon.ReadIntCtx(ctx, path)
	if err != nil {
		return device.ChannelReading{}, err
	}
	duty := hwmon.NewPWMValue(int64(raw)).Percent()
	return device.ChannelReading{Name: name, Duty: &duty}, nil
}

// Apply implements repository.Repository.
func (r *Repository) Apply(ctx context.Context, d *device.Device, req repository.ApplyRequest) error {
	r.mu.Lock()
	hd, ok := r.byUID[d.UID]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", device.ErrDeviceNotFound, d.UID)
	}

	ch, ok := d.Info[req.Channel]
	if !ok || ch.Speed == nil {
		return fmt.Errorf("%w: %s", repository.ErrUnsupportedChannel, req.Channel)
	}

	sensor, ok := hd.hw.Sensors[req.Channel]
	if !ok {
		return fmt.Errorf("%w: %s", repository.ErrUnsupportedChannel, req.Channel)
	}

	key := device.ChannelKey{UID: d.UID, Channel: req.Channel}

	if req.Duty == nil {
		return r.resetToDriverDefault(ctx, sensor, key)
	}

	if *req.Duty < ch.Speed.MinDuty || *req.Duty > ch.Speed.MaxDuty {
		return fmt.Errorf("%w: %d", repository.ErrOutOfRange, *req.Duty)
	}

	if err := r.ensureManualMode(ctx, hd.driver, sensor, key); err != nil {
		return err
	}

	pwmPath, err := sensor.GetAttributePath(hwmon.AttributeInput)
	if err != nil {
		return fmt.Errorf("%w: %w", repository.ErrUnsupportedChannel, err)
	}
	raw := int(float64(*req.Duty) * 255.0 / 100.0)
	if err := hwmon.WriteIntCtx(ctx, pwmPath, raw); err != nil {
		return fmt.Errorf("%w: %w", repository.ErrDriverError, err)
	}
	return nil
}

// ensureManualMode toggles pwmN_enable=1 for driver families that
// require it before value writes take effect, remembering the
// switched channel so Shutdown can set it back to automatic (5).
func (r *Repository) ensureManualMode(ctx context.Context, driver string, sensor *hwmon.SensorInfo, key device.ChannelKey) error {
	if !requiresManualMode(driver) {
		return nil
	}
	enablePath, err := sensor.GetAttributePath(hwmon.AttributeEnable)
	if err != nil {
		return nil // no enable attribute, nothing to toggle
	}

	r.mu.Lock()
	_, already := r.channelState[key]
	r.mu.Unlock()
	if already {
		return nil
	}

	original, err := hwmon.ReadIntCtx(ctx, enablePath)
	if err != nil {
		return fmt.Errorf("%w: %w", repository.ErrDriverError, err)
	}
	if err := hwmon.WriteIntCtx(ctx, enablePath, pwmEnableManual); err != nil {
		return fmt.Errorf("%w: %w", repository.ErrDriverError, err)
	}

	r.mu.Lock()
	r.channelState[key] = &channelState{enablePath: enablePath, originalMode: original, switched: true}
	r.mu.Unlock()
	return nil
}

func (r *Repository) resetToDriverDefault(ctx context.Context, sensor *hwmon.SensorInfo, key device.ChannelKey) error {
	enablePath, err := sensor.GetAttributePath(hwmon.AttributeEnable)
	if err != nil {
		return nil
	}
	if err := hwmon.WriteIntCtx(ctx, enablePath, pwmEnableAuto); err != nil {
		return fmt.Errorf("%w: %w", repository.ErrDriverError, err)
	}
	r.mu.Lock()
	delete(r.channelState, key)
	r.mu.Unlock()
	return nil
}

func requiresManualMode(driver string) bool {
	return manualPWMDrivers[driver]
}

// SetDrivetempSuspended pauses sampling of drivetemp-backed devices,
// observed via the system sleep signal (spec §4.1 drivetemp suspension flag).
func (r *Repository) SetDrivetempSuspended(suspended bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drivetempPaused = suspended
}

// Shutdown implements repository.Repository: restores pwm_enable=5
// (automatic) on every channel this repository switched to manual
// mode, unless the caller opted out via WithRestoreAutoOnShutdown(false).
func (r *Repository) Shutdown(ctx context.Context) error {
	if !r.restoreAuto {
		return nil
	}

	r.mu.Lock()
	states := make(map[device.ChannelKey]*channelState, len(r.channelState))
	for k, v := range r.channelState {
		states[k] = v
	}
	r.mu.Unlock()

	var firstErr error
	for key, st := range states {
		if !st.switched {
			continue
		}
		if err := hwmon.WriteIntCtx(ctx, st.enablePath, pwmEnableAuto); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%w: restoring %s: %w", repository.ErrDriverError, key, err)
		}
	}
	return firstErr
}

var _ repository.Repository = (*Repository)(nil)
