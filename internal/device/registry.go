// SPDX-License-Identifier: BSD-3-Clause

package device

import (
	"sort"
	"sync"
)

// Registry is the shared-mutable device arena keyed by UID (design
// note: device heterogeneity without inheritance). It holds Device
// records and their bounded status history; all cross-component
// relations (settings, modes, alerts) reference devices by UID rather
// than holding pointers into this registry, so the registry can be
// read and replaced independently of its consumers.
type Registry struct {
	mu      sync.RWMutex
	devices map[string]*Device
	history map[string]*History
	histLen int
}

// NewRegistry creates an empty registry. historyLen bounds each
// device's status ring per spec §3: max(poll_rate*longest_consumer_window, 1860).
func NewRegistry(historyLen int) *Registry {
	if historyLen < 1 {
		historyLen = 1860
	}
	return &Registry{
		devices: make(map[string]*Device),
		history: make(map[string]*History),
		histLen: historyLen,
	}
}

// Put inserts or replaces a device record and allocates its history
// ring. Called once per device during repository initialization.
func (r *Registry) Put(d *Device) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devices[d.UID] = d
	if _, ok := r.history[d.UID]; !ok {
		r.history[d.UID] = NewHistory(r.histLen)
	}
}

// Get returns the device with the given UID, or false if unknown.
func (r *Registry) Get(uid string) (*Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.devices[uid]
	return d, ok
}

// List returns all devices ordered by (Type, TypeIndex) for stable
// display and stable boot-time reapply ordering.
func (r *Registry) List() []*Device {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Device, 0, len(r.devices))
	for _, d := range r.devices {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		if out[i].TypeIndex != out[j].TypeIndex {
			return out[i].TypeIndex < out[j].TypeIndex
		}
		return out[i].UID < out[j].UID
	})
	return out
}

// Append appends a sampled Status to the device's bounded history.
// Returns false if the device is unknown.
func (r *Registry) Append(uid string, s Status) bool {
	r.mu.RLock()
	h, ok := r.history[uid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	h.Append(s)
	return true
}

// Latest returns the most recent Status recorded for a device.
func (r *Registry) Latest(uid string) (Status, bool) {
	r.mu.RLock()
	h, ok := r.history[uid]
	r.mu.RUnlock()
	if !ok {
		return Status{}, false
	}
	return h.Latest()
}

// Since returns every recorded Status with Timestamp strictly after since.
func (r *Registry) Since(uid string, since int64) ([]Status, bool) {
	r.mu.RLock()
	h, ok := r.history[uid]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return h.Since(since), true
}

// All returns the full retained history for a device.
func (r *Registry) All(uid string) ([]Status, bool) {
	r.mu.RLock()
	h, ok := r.history[uid]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return h.All(), true
}
