// SPDX-License-Identifier: BSD-3-Clause

package config

// CurrentVersion is the schema version written by this build. Loaders
// compare it against Document.Version to decide whether an in-memory
// migration is needed before the document is used.
const CurrentVersion = 1

// General holds the daemon-wide tunables (spec §4.8).
type General struct {
	PollRate             float64 `toml:"poll_rate"`
	ApplyOnBoot          bool    `toml:"apply_on_boot"`
	StartupDelaySeconds  int     `toml:"startup_delay"`
	ThinkpadFullSpeed    bool    `toml:"thinkpad_full_speed"`
	HideDuplicateDevices bool    `toml:"hide_duplicate_devices"`
	LiquidctlIntegration bool    `toml:"liquidctl_integration"`
	Compress             bool    `toml:"compress"`
	DrivetempSuspend     bool    `toml:"drivetemp_suspend"`
}

// DefaultGeneral returns the factory defaults used to bootstrap a
// config document on first run.
func DefaultGeneral() General {
	return General{
		PollRate:             1.0,
		ApplyOnBoot:          true,
		StartupDelaySeconds:  2,
		LiquidctlIntegration: true,
	}
}

// DeviceBlacklistEntry disables a device, or specific channels on it,
// from discovery results.
type DeviceBlacklistEntry struct {
	UID              string   `toml:"uid"`
	Disabled         bool     `toml:"disabled"`
	DisabledChannels []string `toml:"disabled_channels,omitempty"`
}

// TempSourceEntry is the on-disk form of profile.TempSource.
type TempSourceEntry struct {
	DeviceUID string `toml:"device_uid"`
	TempName  string `toml:"temp_name"`
}

// PointEntry is the on-disk form of profile.Point.
type PointEntry struct {
	TempC float32 `toml:"temp_c"`
	Duty  int     `toml:"duty"`
}

// ProfileEntry is the on-disk form of profile.Profile.
type ProfileEntry struct {
	UID               string           `toml:"uid"`
	Name              string           `toml:"name"`
	Type              string           `toml:"type"`
	SpeedFixed        int              `toml:"speed_fixed,omitempty"`
	SpeedProfile      []PointEntry     `toml:"speed_profile,omitempty"`
	FunctionUID       string           `toml:"function_uid,omitempty"`
	TempSource        *TempSourceEntry `toml:"temp_source,omitempty"`
	MemberProfileUIDs []string         `toml:"member_profile_uids,omitempty"`
	MixFunctionType   string           `toml:"mix_function_type,omitempty"`
}

// FunctionEntry is the on-disk form of function.Function.
type FunctionEntry struct {
	UID            string  `toml:"uid"`
	Name           string  `toml:"name"`
	Type           string  `toml:"type"`
	ResponseDelayS uint8   `toml:"response_delay_s,omitempty"`
	DevianceC      float32 `toml:"deviance_c,omitempty"`
	OnlyDownward   bool    `toml:"only_downward,omitempty"`
	SampleWindow   uint8   `toml:"sample_window,omitempty"`
	TauS           float32 `toml:"tau_s,omitempty"`
}

// ChannelSettingEntry is the on-disk form of one setting.Setting,
// qualified by the (device, channel) it applies to.
type ChannelSettingEntry struct {
	DeviceUID  string `toml:"device_uid"`
	Channel    string `toml:"channel"`
	Kind       string `toml:"kind"`
	Duty       int    `toml:"duty,omitempty"`
	ProfileUID string `toml:"profile_uid,omitempty"`
}

// ModeEntry is the on-disk form of mode.Mode.
type ModeEntry struct {
	UID      string                `toml:"uid"`
	Name     string                `toml:"name"`
	Settings []ChannelSettingEntry `toml:"settings"`
}

// AlertEntry is the on-disk form of alert.Alert.
type AlertEntry struct {
	UID        string  `toml:"uid"`
	Name       string  `toml:"name"`
	DeviceUID  string  `toml:"device_uid"`
	Channel    string  `toml:"channel_name"`
	Metric     string  `toml:"metric"`
	Min        float64 `toml:"min"`
	Max        float64 `toml:"max"`
	Hysteresis float64 `toml:"hysteresis"`
	Message    string  `toml:"message,omitempty"`
}

// Document is the full shape of the on-disk TOML config.
type Document struct {
	Version          int                    `toml:"version"`
	General          General                `toml:"general"`
	DevicesBlacklist []DeviceBlacklistEntry `toml:"devices_blacklist,omitempty"`
	Profiles         []ProfileEntry         `toml:"profiles,omitempty"`
	Functions        []FunctionEntry        `toml:"functions,omitempty"`
	Modes            []ModeEntry            `toml:"modes,omitempty"`
	Alerts           []AlertEntry           `toml:"alerts,omitempty"`
	Settings         []ChannelSettingEntry  `toml:"settings,omitempty"`
}

// DefaultDocument returns a fresh document with factory-default
// general settings and no devices, profiles, or channel state yet.
func DefaultDocument() *Document {
	return &Document{
		Version: CurrentVersion,
		General: DefaultGeneral(),
	}
}
