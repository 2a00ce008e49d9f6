// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"context"
	"fmt"
	"sync"

	"github.com/coolercontrol/coolerd/internal/device"
	"github.com/coolercontrol/coolerd/internal/repository"
	"github.com/coolercontrol/coolerd/pkg/hwmon"
)

const amdgpuDriver = "amdgpu"

// amdDriver drives discrete AMD GPUs through the amdgpu hwmon node:
// edge/junction temperature, board power draw, and a pwm1 fan channel
// using the same pwm1_enable manual-mode convention super-I/O
// controllers use.
type amdDriver struct {
	discoverer *hwmon.Discoverer
	basePath   string

	mu    sync.Mutex
	byUID map[string]*hwmon.Device
}

func newAMDDriver(basePath string) *amdDriver {
	return &amdDriver{
		basePath: basePath,
		byUID:    make(map[string]*hwmon.Device),
		discoverer: hwmon.NewDiscoverer(
			hwmon.WithDiscoveryPath(basePath),
			hwmon.WithDiscoveryCache(false, 0),
		),
	}
}

func (a *amdDriver) discover(ctx context.Context, startIndex int) ([]*device.Device, error) {
	hwDevices, err := a.discoverer.DiscoverDevices(ctx)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	var out []*device.Device
	idx := startIndex
	for _, hw := range hwDevices {
		if hw.Name != amdgpuDriver {
			continue
		}
		sensors, err := hw.GetSensors(ctx)
		if err != nil {
			continue
		}

		info := make(map[string]device.ChannelInfo)
		for _, s := range sensors {
			switch s.Type {
			case hwmon.SensorTypeTemperature, hwmon.SensorTypePower:
				label := s.Label
				if label == "" {
					label = s.String()
				}
				info[fmt.Sprintf("%s%d", s.Type.Prefix(), s.Index)] = device.ChannelInfo{Label: label}
			case hwmon.SensorTypePWM:
				if !s.Writable || s.Index != 1 {
					continue
				}
				info[fmt.Sprintf("%s%d", s.Type.Prefix(), s.Index)] = device.ChannelInfo{
					Label: "Fan",
					Speed: &device.SpeedOptions{
						MinDuty: 0, MaxDuty: 100,
						FixedEnabled: true, ProfilesEnabled: true, ManualProfilesEnabled: true,
					},
				}
			}
		}
		if len(info) == 0 {
			continue
		}

		uid := device.DeriveUID(device.TypeGPU, amdgpuDriver, hw.Path)
		a.byUID[uid] = hw
		out = append(out, &device.Device{
			UID:       uid,
			Name:      "AMD GPU",
			Type:      device.TypeGPU,
			TypeIndex: idx,
			Info:      info,
		})
		idx++
	}
	return out, nil
}

func (a *amdDriver) owns(uid string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.byUID[uid]
	return ok
}

func (a *amdDriver) sample(ctx context.Context, d *device.Device) (device.Status, error) {
	a.mu.Lock()
	hw, ok := a.byUID[d.UID]
	a.mu.Unlock()
	if !ok {
		return device.Status{}, fmt.Errorf("%w: %s", device.ErrDeviceNotFound, d.UID)
	}

	var status device.Status
	for name, ch := range d.Info {
		sensor, ok := hw.Sensors[name]
		if !ok {
			continue
		}
		path, err := sensor.GetAttributePath(hwmon.AttributeInput)
		if err != nil {
			continue
		}
		raw, err := hwmon.ReadIntCtx(ctx, path)
		if err != nil {
			continue
		}
		switch {
		case ch.Speed != nil:
			duty := hwmon.NewPWMValue(int64(raw)).Percent()
			status.Channels = append(status.Channels, device.ChannelReading{Name: name, Duty: &duty})
		case sensor.Type == hwmon.SensorTypePower:
			watts := hwmon.NewPowerValue(int64(raw)).Watts()
			status.Channels = append(status.Channels, device.ChannelReading{Name: name, Watts: &watts})
		default:
			status.Temps = append(status.Temps, device.TempReading{
				Name: name, Temp: float32(hwmon.NewTemperatureValue(int64(raw)).Celsius()),
			})
		}
	}
	return status, nil
}

func (a *amdDriver) apply(ctx context.Context, d *device.Device, req repository.ApplyRequest) error {
	a.mu.Lock()
	hw, ok := a.byUID[d.UID]
	a.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", device.ErrDeviceNotFound, d.UID)
	}
	sensor, ok := hw.Sensors[req.Channel]
	if !ok {
		return fmt.Errorf("%w: %s", repository.ErrUnsupportedChannel, req.Channel)
	}

	enablePath, err := sensor.GetAttributePath(hwmon.AttributeEnable)
	if req.Duty == nil {
		if err == nil {
			return hwmon.WriteIntCtx(ctx, enablePath, 2) // amdgpu automatic mode
		}
		return nil
	}
	if *req.Duty < 0 || *req.Duty > 100 {
		return fmt.Errorf("%w: %d", repository.ErrOutOfRange, *req.Duty)
	}
	if err == nil {
		if werr := hwmon.WriteIntCtx(ctx, enablePath, 1); werr != nil {
			return fmt.Errorf("%w: %w", repository.ErrDriverError, werr)
		}
	}
	path, err := sensor.GetAttributePath(hwmon.AttributeInput)
	if err != nil {
		return fmt.Errorf("%w: %w", repository.ErrUnsupportedChannel, err)
	}
	raw := int(float64(*req.Duty) * 255.0 / 100.0)
	if err := hwmon.WriteIntCtx(ctx, path, raw); err != nil {
		return fmt.Errorf("%w: %w", repository.ErrDriverError, err)
	}
	return nil
}

func (a *amdDriver) shutdown(ctx context.Context) error {
	a.mu.Lock()
	devices := make([]*hwmon.Device, 0, len(a.byUID))
	for _, hw := range a.byUID {
		devices = append(devices, hw)
	}
	a.mu.Unlock()

	var firstErr error
	for _, hw := range devices {
		sensor, ok := hw.Sensors["pwm1"]
		if !ok {
			continue
		}
		enablePath, err := sensor.GetAttributePath(hwmon.AttributeEnable)
		if err != nil {
			continue
		}
		if err := hwmon.WriteIntCtx(ctx, enablePath, 2); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%w: %w", repository.ErrDriverError, err)
		}
	}
	return firstErr
}
