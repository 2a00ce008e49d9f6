// SPDX-License-Identifier: BSD-3-Clause

package devicemgr

import (
	"github.com/coolercontrol/coolerd/internal/alert"
	"github.com/coolercontrol/coolerd/internal/device"
	"github.com/coolercontrol/coolerd/internal/function"
	"github.com/coolercontrol/coolerd/internal/profile"
	"github.com/coolercontrol/coolerd/internal/repository"
)

// Device implements setting.DeviceLookup against the shared registry.
func (d *DeviceMgr) Device(uid string) (*device.Device, bool) {
	return d.registry.Get(uid)
}

// Repository implements setting.RepositoryLookup, resolving the driver
// that owns a device UID without the setting manager holding a direct
// reference to every instance.
func (d *DeviceMgr) Repository(deviceUID string) (repository.Repository, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.repoByDevice[deviceUID]
	return r, ok
}

// Temp implements setting.TempLookup against the device's latest
// sampled status.
func (d *DeviceMgr) Temp(deviceUID, tempName string) (float32, bool) {
	status, ok := d.registry.Latest(deviceUID)
	if !ok {
		return 0, false
	}
	for _, t := range status.Temps {
		if t.Name == tempName {
			return t.Temp, true
		}
	}
	return 0, false
}

// Profile implements setting.ProfileLookup and profile.Resolver.
func (d *DeviceMgr) Profile(uid string) (*profile.Profile, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.profiles[uid]
	return p, ok
}

// Function implements setting.FunctionLookup.
func (d *DeviceMgr) Function(uid string) (*function.Function, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	f, ok := d.functions[uid]
	return f, ok
}

// ChannelValue implements customsensors.ChannelLookup: it resolves a
// temperature reading by name first, falling back to a channel's duty
// reading, so a Mix sensor's members can reference either kind without
// the caller needing to know which.
func (d *DeviceMgr) ChannelValue(deviceUID, channel string) (float64, bool) {
	status, ok := d.registry.Latest(deviceUID)
	if !ok {
		return 0, false
	}
	for _, t := range status.Temps {
		if t.Name == channel {
			return float64(t.Temp), true
		}
	}
	for _, c := range status.Channels {
		if c.Name == channel && c.Duty != nil {
			return *c.Duty, true
		}
	}
	return 0, false
}

// Value implements alert.MetricLookup against the device's latest
// sampled status. For MetricTemp, channel names a temperature reading
// rather than an actuator channel.
func (d *DeviceMgr) Value(deviceUID, channel string, metric alert.Metric) (float64, bool) {
	status, ok := d.registry.Latest(deviceUID)
	if !ok {
		return 0, false
	}
	if metric == alert.MetricTemp {
		for _, t := range status.Temps {
			if t.Name == channel {
				return float64(t.Temp), true
			}
		}
		return 0, false
	}
	for _, c := range status.Channels {
		if c.Name != channel {
			continue
		}
		switch metric {
		case alert.MetricDuty:
			if c.Duty != nil {
				return *c.Duty, true
			}
		case alert.MetricRPM:
			if c.RPM != nil {
				return float64(*c.RPM), true
			}
		case alert.MetricFreq:
			if c.Freq != nil {
				return float64(*c.Freq), true
			}
		case alert.MetricWatts:
			if c.Watts != nil {
				return *c.Watts, true
			}
		}
		return 0, false
	}
	return 0, false
}
