// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"github.com/coolercontrol/coolerd/internal/alert"
	"github.com/coolercontrol/coolerd/internal/device"
	"github.com/coolercontrol/coolerd/internal/function"
	"github.com/coolercontrol/coolerd/internal/mode"
	"github.com/coolercontrol/coolerd/internal/profile"
	"github.com/coolercontrol/coolerd/internal/setting"
)

func profileToEntry(p *profile.Profile) ProfileEntry {
	e := ProfileEntry{
		UID:               p.UID,
		Name:              p.Name,
		Type:              string(p.Type),
		SpeedFixed:        p.SpeedFixed,
		FunctionUID:       p.FunctionUID,
		MemberProfileUIDs: p.MemberProfileUIDs,
		MixFunctionType:   string(p.MixFunctionType),
	}
	for _, pt := range p.SpeedProfile {
		e.SpeedProfile = append(e.SpeedProfile, PointEntry{TempC: pt.TempC, Duty: pt.Duty})
	}
	if p.TempSource != nil {
		e.TempSource = &TempSourceEntry{DeviceUID: p.TempSource.DeviceUID, TempName: p.TempSource.TempName}
	}
	return e
}

// entryToProfile decodes a stored profile with full-range duty clamps.
// MinDuty/MaxDuty are overwritten by the caller once the target
// channel's device.SpeedOptions are known (they are not persisted,
// since they describe hardware capability, not user intent).
func entryToProfile(e ProfileEntry) *profile.Profile {
	p := &profile.Profile{
		UID:               e.UID,
		Name:              e.Name,
		Type:              profile.Type(e.Type),
		SpeedFixed:        e.SpeedFixed,
		FunctionUID:       e.FunctionUID,
		MemberProfileUIDs: e.MemberProfileUIDs,
		MixFunctionType:   profile.MixFunction(e.MixFunctionType),
		MinDuty:           0,
		MaxDuty:           100,
	}
	for _, pt := range e.SpeedProfile {
		p.SpeedProfile = append(p.SpeedProfile, profile.Point{TempC: pt.TempC, Duty: pt.Duty})
	}
	if e.TempSource != nil {
		p.TempSource = &profile.TempSource{DeviceUID: e.TempSource.DeviceUID, TempName: e.TempSource.TempName}
	}
	return p
}

func functionToEntry(f *function.Function) FunctionEntry {
	return FunctionEntry{
		UID:            f.UID,
		Name:           f.Name,
		Type:           string(f.Type),
		ResponseDelayS: f.ResponseDelayS,
		DevianceC:      f.DevianceC,
		OnlyDownward:   f.OnlyDownward,
		SampleWindow:   f.SampleWindow,
		TauS:           f.TauS,
	}
}

func entryToFunction(e FunctionEntry) *function.Function {
	return &function.Function{
		UID:            e.UID,
		Name:           e.Name,
		Type:           function.Type(e.Type),
		ResponseDelayS: e.ResponseDelayS,
		DevianceC:      e.DevianceC,
		OnlyDownward:   e.OnlyDownward,
		SampleWindow:   e.SampleWindow,
		TauS:           e.TauS,
	}
}

func settingToEntry(key device.ChannelKey, s setting.Setting) ChannelSettingEntry {
	return ChannelSettingEntry{
		DeviceUID:  key.UID,
		Channel:    key.Channel,
		Kind:       string(s.Kind),
		Duty:       s.Duty,
		ProfileUID: s.ProfileUID,
	}
}

func entryToSetting(e ChannelSettingEntry) (device.ChannelKey, setting.Setting) {
	key := device.ChannelKey{UID: e.DeviceUID, Channel: e.Channel}
	s := setting.Setting{Kind: setting.Kind(e.Kind), Duty: e.Duty, ProfileUID: e.ProfileUID}
	return key, s
}

func modeToEntry(m *mode.Mode) ModeEntry {
	e := ModeEntry{UID: m.UID, Name: m.Name}
	for key, s := range m.Settings {
		e.Settings = append(e.Settings, settingToEntry(key, s))
	}
	return e
}

func entryToMode(e ModeEntry) *mode.Mode {
	m := &mode.Mode{UID: e.UID, Name: e.Name, Settings: make(map[device.ChannelKey]setting.Setting, len(e.Settings))}
	for _, se := range e.Settings {
		key, s := entryToSetting(se)
		m.Settings[key] = s
	}
	return m
}

func alertToEntry(a *alert.Alert) AlertEntry {
	return AlertEntry{
		UID:        a.UID,
		Name:       a.Name,
		DeviceUID:  a.DeviceUID,
		Channel:    a.Channel,
		Metric:     string(a.Metric),
		Min:        a.Min,
		Max:        a.Max,
		Hysteresis: a.Hysteresis,
		Message:    a.Message,
	}
}

func entryToAlert(e AlertEntry) *alert.Alert {
	return &alert.Alert{
		UID:        e.UID,
		Name:       e.Name,
		DeviceUID:  e.DeviceUID,
		Channel:    e.Channel,
		Metric:     alert.Metric(e.Metric),
		Min:        e.Min,
		Max:        e.Max,
		Hysteresis: e.Hysteresis,
		Message:    e.Message,
	}
}
