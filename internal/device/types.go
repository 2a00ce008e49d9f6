// SPDX-License-Identifier: BSD-3-Clause

package device

import (
	"sort"
	"time"
)

// Type identifies the hardware class a Device belongs to.
type Type string

const (
	TypeCPU           Type = "cpu"
	TypeGPU           Type = "gpu"
	TypeLiquidctl     Type = "liquidctl"
	TypeHwmon         Type = "hwmon"
	TypeCustomSensors Type = "customsensors"
	TypeThinkPad      Type = "thinkpad"
)

// SpeedOptions describes the duty-cycle capabilities of a channel.
type SpeedOptions struct {
	MinDuty               int  `json:"min_duty"`
	MaxDuty               int  `json:"max_duty"`
	FixedEnabled          bool `json:"fixed_enabled"`
	ProfilesEnabled       bool `json:"profiles_enabled"`
	ManualProfilesEnabled bool `json:"manual_profiles_enabled"`
}

// LightingMode describes one selectable lighting mode on a channel.
type LightingMode struct {
	Name       string `json:"name"`
	MinColors  int    `json:"min_colors"`
	MaxColors  int    `json:"max_colors"`
	Speedable  bool   `json:"speedable"`
	Directions bool   `json:"directions,omitempty"`
}

// LcdInfo describes an LCD screen attached to a channel.
type LcdInfo struct {
	ScreenWidth  int      `json:"screen_width"`
	ScreenHeight int      `json:"screen_height"`
	Modes        []string `json:"modes"`
}

// ChannelInfo is the immutable capability descriptor for one named
// channel on a Device, computed once during Repository.Initialize.
type ChannelInfo struct {
	Label         string        `json:"label,omitempty"`
	Speed         *SpeedOptions `json:"speed_options,omitempty"`
	LightingModes []LightingMode `json:"lighting_modes,omitempty"`
	Lcd           *LcdInfo      `json:"lcd_info,omitempty"`
}

// LcInfo carries liquidctl subtype hints that the daemon itself cannot
// infer, such as the legacy AseTek 690/Legacy690Ep discriminator that a
// user picks once at onboarding.
type LcInfo struct {
	DriverType      string `json:"driver_type"`
	FirmwareVersion string `json:"firmware_version,omitempty"`
	LegacyAseTek690 bool   `json:"legacy_asetek_690,omitempty"`
}

// TempReading is one named temperature sample within a DeviceStatus.
type TempReading struct {
	Name string  `json:"name"`
	Temp float32 `json:"temp"`
}

// ChannelReading is one channel's actuator/sensor readback within a
// DeviceStatus. Fields are pointers so an absent reading (stale or
// errored this tick) serializes as a missing field rather than a
// poisoned zero value.
type ChannelReading struct {
	Name string   `json:"name"`
	Duty *float64 `json:"duty,omitempty"`
	RPM  *int     `json:"rpm,omitempty"`
	Freq *int     `json:"freq,omitempty"`
	Watts *float64 `json:"watts,omitempty"`
}

// Status is one tick's worth of sampled data for a single device.
type Status struct {
	Timestamp time.Time        `json:"timestamp"`
	Temps     []TempReading    `json:"temps"`
	Channels  []ChannelReading `json:"channels"`
}

// Device is the uniform model for one piece of cooling hardware,
// regardless of which Repository produced it.
type Device struct {
	UID       string                 `json:"uid"`
	Name      string                 `json:"name"`
	Type      Type                   `json:"type"`
	TypeIndex int                    `json:"type_index"`
	Info      map[string]ChannelInfo `json:"device_info,omitempty"`
	LcInfo    *LcInfo                `json:"lc_info,omitempty"`
}

// Channels returns the device's channel names in a stable, sorted order.
func (d *Device) Channels() []string {
	names := make([]string, 0, len(d.Info))
	for name := range d.Info {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
