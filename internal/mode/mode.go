// SPDX-License-Identifier: BSD-3-Clause

package mode

import (
	"context"
	"sort"
	"sync"

	"github.com/coolercontrol/coolerd/internal/device"
	"github.com/coolercontrol/coolerd/internal/setting"
)

// Mode is an immutable named snapshot of every channel's setting.
type Mode struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
	// Settings maps each (device_uid, channel_name) to its snapshot
	// Setting. A setting.Setting with Kind KindUnset means "no
	// override, driver default".
	Settings map[device.ChannelKey]setting.Setting `json:"-"`
}

// ActivationResult reports the outcome of one channel's apply during
// mode activation.
type ActivationResult struct {
	Key device.ChannelKey
	Err error
}

// ActivatedEvent is published after a mode finishes activating,
// successfully or not.
type ActivatedEvent struct {
	UID         string
	PreviousUID string
}

// Controller owns the set of defined Modes and the currently active
// one, and drives activation against a setting.Manager.
type Controller struct {
	mu        sync.RWMutex
	modes     map[string]*Mode
	activeUID string

	settings *setting.Manager
}

// NewController builds a mode controller bound to the setting manager
// it will apply snapshots through.
func NewController(settings *setting.Manager) *Controller {
	return &Controller{
		modes:    make(map[string]*Mode),
		settings: settings,
	}
}

// Put inserts or replaces a mode definition.
func (c *Controller) Put(m *Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modes[m.UID] = m
}

// Delete removes a mode definition. It does not affect the currently
// active snapshot if that mode was already activated.
func (c *Controller) Delete(uid string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.modes, uid)
}

// Get returns a mode definition by UID.
func (c *Controller) Get(uid string) (*Mode, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.modes[uid]
	return m, ok
}

// List returns every defined mode, ordered by UID for stable display.
func (c *Controller) List() []*Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Mode, 0, len(c.modes))
	for _, m := range c.modes {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out
}

// ActiveUID returns the UID of the currently active mode, or "" if
// none has ever been activated.
func (c *Controller) ActiveUID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.activeUID
}

// Activate applies every (channel -> Setting) in mode uid atomically
// in the sense of spec §4.6: the full batch is built before any
// channel is touched, then every channel is applied even if an
// earlier one failed. It returns one ActivationResult per channel in
// the snapshot (in UID-stable order) and the event to publish.
func (c *Controller) Activate(ctx context.Context, uid string) ([]ActivationResult, ActivatedEvent, error) {
	c.mu.RLock()
	m, ok := c.modes[uid]
	previous := c.activeUID
	c.mu.RUnlock()
	if !ok {
		return nil, ActivatedEvent{}, ErrModeNotFound
	}

	keys := make([]device.ChannelKey, 0, len(m.Settings))
	for k := range m.Settings {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].UID != keys[j].UID {
			return keys[i].UID < keys[j].UID
		}
		return keys[i].Channel < keys[j].Channel
	})

	results := make([]ActivationResult, 0, len(keys))
	for _, key := range keys {
		s := m.Settings[key]
		ctrl, err := c.settings.EnsureController(ctx, key.UID, key.Channel)
		if err != nil {
			results = append(results, ActivationResult{Key: key, Err: err})
			continue
		}

		switch s.Kind {
		case setting.KindManual:
			err = ctrl.ApplyManual(ctx, s.Duty)
		case setting.KindProfile:
			err = ctrl.ApplyProfile(ctx, s.ProfileUID)
		default:
			err = ctrl.Clear(ctx)
		}
		results = append(results, ActivationResult{Key: key, Err: err})
	}

	c.mu.Lock()
	c.activeUID = uid
	c.mu.Unlock()

	return results, ActivatedEvent{UID: uid, PreviousUID: previous}, nil
}
