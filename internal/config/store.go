// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/coolercontrol/coolerd/internal/alert"
	"github.com/coolercontrol/coolerd/internal/device"
	"github.com/coolercontrol/coolerd/internal/function"
	"github.com/coolercontrol/coolerd/internal/mode"
	"github.com/coolercontrol/coolerd/internal/profile"
	"github.com/coolercontrol/coolerd/internal/setting"
	"github.com/coolercontrol/coolerd/pkg/file"
)

// Store owns the durable on-disk config document at path, guarded by
// an exclusive lock during save (spec §5 shared resources).
type Store struct {
	mu   sync.RWMutex
	path string
	doc  *Document
	raw  map[string]interface{} // last-known on-disk document, generically decoded
}

// Open loads the config document at path, or bootstraps a fresh
// default document if the file does not yet exist. A parse error is
// always fatal (spec §7): the caller should treat a non-nil error as
// unrecoverable rather than falling back to defaults silently.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s.doc = DefaultDocument()
		if err := s.save(); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, err
	}

	var doc Document
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	var raw map[string]interface{}
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	migrate(&doc)
	s.doc = &doc
	s.raw = raw
	return s, nil
}

// migrate upgrades an older on-disk document in place. There is only
// one schema version so far; this is the seam later versions hook
// into.
func migrate(doc *Document) {
	if doc.Version == 0 {
		doc.Version = CurrentVersion
	}
}

// save serializes the current document to TOML and writes it
// atomically (write-to-temp + rename, spec §4.8). Callers must hold
// s.mu for writing.
func (s *Store) save() error {
	var encodedBuf bytes.Buffer
	if err := toml.NewEncoder(&encodedBuf).Encode(s.doc); err != nil {
		return err
	}
	var encoded map[string]interface{}
	if _, err := toml.Decode(encodedBuf.String(), &encoded); err != nil {
		return err
	}
	merged := mergeExtra(s.raw, encoded)

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(merged); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := file.AtomicReplaceFile(s.path, buf.Bytes(), 0o644); err != nil {
		return err
	}
	s.raw = merged
	return nil
}

// General returns the current general settings.
func (s *Store) General() General {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.General
}

// SaveGeneral replaces the general settings and persists.
func (s *Store) SaveGeneral(g General) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.General = g
	return s.save()
}

// DevicesBlacklist returns the device/channel blacklist.
func (s *Store) DevicesBlacklist() []DeviceBlacklistEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]DeviceBlacklistEntry, len(s.doc.DevicesBlacklist))
	copy(out, s.doc.DevicesBlacklist)
	return out
}

// SaveDevicesBlacklist replaces the device/channel blacklist and persists.
func (s *Store) SaveDevicesBlacklist(entries []DeviceBlacklistEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.DevicesBlacklist = entries
	return s.save()
}

// Profiles decodes every stored profile into its domain type.
func (s *Store) Profiles() []*profile.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*profile.Profile, 0, len(s.doc.Profiles))
	for _, e := range s.doc.Profiles {
		out = append(out, entryToProfile(e))
	}
	return out
}

// PutProfile inserts or replaces a profile and persists synchronously
// (spec §3: "each change persists synchronously to config before
// acknowledgement").
func (s *Store) PutProfile(p *profile.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := profileToEntry(p)
	s.doc.Profiles = upsert(s.doc.Profiles, entry, func(e ProfileEntry) string { return e.UID })
	return s.save()
}

// DeleteProfile removes a profile by UID and persists.
func (s *Store) DeleteProfile(uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Profiles = remove(s.doc.Profiles, func(e ProfileEntry) string { return e.UID }, uid)
	return s.save()
}

// Functions decodes every stored function into its domain type.
func (s *Store) Functions() []*function.Function {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*function.Function, 0, len(s.doc.Functions))
	for _, e := range s.doc.Functions {
		out = append(out, entryToFunction(e))
	}
	return out
}

// PutFunction inserts or replaces a function and persists.
func (s *Store) PutFunction(f *function.Function) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := functionToEntry(f)
	s.doc.Functions = upsert(s.doc.Functions, entry, func(e FunctionEntry) string { return e.UID })
	return s.save()
}

// DeleteFunction removes a function by UID and persists.
func (s *Store) DeleteFunction(uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Functions = remove(s.doc.Functions, func(e FunctionEntry) string { return e.UID }, uid)
	return s.save()
}

// Modes decodes every stored mode into its domain type.
func (s *Store) Modes() []*mode.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*mode.Mode, 0, len(s.doc.Modes))
	for _, e := range s.doc.Modes {
		out = append(out, entryToMode(e))
	}
	return out
}

// PutMode inserts or replaces a mode and persists.
func (s *Store) PutMode(m *mode.Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := modeToEntry(m)
	s.doc.Modes = upsert(s.doc.Modes, entry, func(e ModeEntry) string { return e.UID })
	return s.save()
}

// DeleteMode removes a mode by UID and persists.
func (s *Store) DeleteMode(uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Modes = remove(s.doc.Modes, func(e ModeEntry) string { return e.UID }, uid)
	return s.save()
}

// Alerts decodes every stored alert into its domain type.
func (s *Store) Alerts() []*alert.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*alert.Alert, 0, len(s.doc.Alerts))
	for _, e := range s.doc.Alerts {
		out = append(out, entryToAlert(e))
	}
	return out
}

// PutAlert inserts or replaces an alert and persists.
func (s *Store) PutAlert(a *alert.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := alertToEntry(a)
	s.doc.Alerts = upsert(s.doc.Alerts, entry, func(e AlertEntry) string { return e.UID })
	return s.save()
}

// DeleteAlert removes an alert by UID and persists.
func (s *Store) DeleteAlert(uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Alerts = remove(s.doc.Alerts, func(e AlertEntry) string { return e.UID }, uid)
	return s.save()
}

// Settings decodes every persisted channel setting.
func (s *Store) Settings() map[device.ChannelKey]setting.Setting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[device.ChannelKey]setting.Setting, len(s.doc.Settings))
	for _, e := range s.doc.Settings {
		key, st := entryToSetting(e)
		out[key] = st
	}
	return out
}

// SaveSetting persists one channel's live setting, keyed by
// (deviceUID, channel).
func (s *Store) SaveSetting(deviceUID, channel string, st setting.Setting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := settingToEntry(device.ChannelKey{UID: deviceUID, Channel: channel}, st)
	s.doc.Settings = upsert(s.doc.Settings, entry, func(e ChannelSettingEntry) string { return e.DeviceUID + "/" + e.Channel })
	return s.save()
}

func upsert[T any](list []T, item T, key func(T) string) []T {
	k := key(item)
	for i, existing := range list {
		if key(existing) == k {
			list[i] = item
			return list
		}
	}
	return append(list, item)
}

func remove[T any](list []T, key func(T) string, uid string) []T {
	out := list[:0]
	for _, item := range list {
		if key(item) != uid {
			out = append(out, item)
		}
	}
	return out
}
