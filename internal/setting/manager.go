// SPDX-License-Identifier: BSD-3-Clause

package setting

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/coolercontrol/coolerd/internal/device"
	"github.com/coolercontrol/coolerd/internal/repository"
)

// WriteRecord is one actuator write the Manager performed during a
// tick or boot reapply, reported to callers for logging/event fanout.
type WriteRecord struct {
	DeviceUID string
	Channel   string
	Duty      int
	Err       error
}

// Manager owns every channel's Controller and drives tick evaluation
// and boot/shutdown reapply, per spec §4.5.
type Manager struct {
	mu          sync.RWMutex
	controllers map[device.ChannelKey]*Controller

	devices      DeviceLookup
	repositories RepositoryLookup
	profiles     ProfileLookup
	functions    FunctionLookup
	temps        TempLookup

	pollRate      float64
	functionStale int
	startupDelay  time.Duration
	applyOnBoot   bool
}

// Option configures a Manager at construction.
type Option func(*Manager)

func WithPollRate(hz float64) Option { return func(m *Manager) { m.pollRate = hz } }
func WithStaleLimit(n int) Option    { return func(m *Manager) { m.functionStale = n } }
func WithStartupDelay(d time.Duration) Option {
	return func(m *Manager) { m.startupDelay = d }
}
func WithApplyOnBoot(b bool) Option { return func(m *Manager) { m.applyOnBoot = b } }

// NewManager builds a Manager wired to the shared lookups it needs to
// evaluate functions, profiles, temperatures and repository writes.
func NewManager(devices DeviceLookup, repositories RepositoryLookup, profiles ProfileLookup, functions FunctionLookup, temps TempLookup, opts ...Option) *Manager {
	m := &Manager{
		controllers:   make(map[device.ChannelKey]*Controller),
		devices:       devices,
		repositories:  repositories,
		profiles:      profiles,
		functions:     functions,
		temps:         temps,
		pollRate:      1.0,
		functionStale: 10,
		startupDelay:  2 * time.Second,
		applyOnBoot:   true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EnsureController returns the controller for (deviceUID, channel),
// creating it in the Unset state if this is the first reference.
func (m *Manager) EnsureController(ctx context.Context, deviceUID, channel string) (*Controller, error) {
	key := device.ChannelKey{UID: deviceUID, Channel: channel}

	m.mu.RLock()
	c, ok := m.controllers[key]
	m.mu.RUnlock()
	if ok {
		return c, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.controllers[key]; ok {
		return c, nil
	}
	c, err := NewController(ctx, deviceUID, channel)
	if err != nil {
		return nil, err
	}
	m.controllers[key] = c
	return c, nil
}

// Get returns the controller for (deviceUID, channel) if it exists.
func (m *Manager) Get(deviceUID, channel string) (*Controller, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.controllers[device.ChannelKey{UID: deviceUID, Channel: channel}]
	return c, ok
}

// Tick evaluates every registered controller once, writing to the
// owning repository wherever a write is due. Errors from individual
// channels are collected and returned alongside successful writes so
// one failing channel never blocks the rest (spec §4.9 step 5: apply
// in parallel/bounded; here sequential-per-channel is within the
// single-tick budget since writes are rare after the first tick).
func (m *Manager) Tick(ctx context.Context) []WriteRecord {
	m.mu.RLock()
	controllers := make([]*Controller, 0, len(m.controllers))
	for _, c := range m.controllers {
		controllers = append(controllers, c)
	}
	m.mu.RUnlock()

	sort.Slice(controllers, func(i, j int) bool {
		if controllers[i].DeviceUID != controllers[j].DeviceUID {
			return controllers[i].DeviceUID < controllers[j].DeviceUID
		}
		return controllers[i].Channel < controllers[j].Channel
	})

	var writes []WriteRecord
	for _, c := range controllers {
		result, err := c.tick(ctx, m.functions, m.profiles, m.temps, m.pollRate, m.functionStale)
		if err != nil {
			writes = append(writes, WriteRecord{DeviceUID: c.DeviceUID, Channel: c.Channel, Err: err})
			continue
		}
		if !result.write {
			continue
		}
		if err := m.writeDuty(ctx, c, result.duty); err != nil {
			writes = append(writes, WriteRecord{DeviceUID: c.DeviceUID, Channel: c.Channel, Duty: result.duty, Err: err})
			continue
		}
		writes = append(writes, WriteRecord{DeviceUID: c.DeviceUID, Channel: c.Channel, Duty: result.duty})
	}
	return writes
}

func (m *Manager) writeDuty(ctx context.Context, c *Controller, duty int) error {
	d, ok := m.devices.Device(c.DeviceUID)
	if !ok {
		return ErrDeviceNotFound
	}
	repo, ok := m.repositories.Repository(c.DeviceUID)
	if !ok {
		return ErrRepositoryNotFound
	}
	target := duty
	return repo.Apply(ctx, d, repository.ApplyRequest{Channel: c.Channel, Duty: &target})
}

// Boot waits startup_delay and, if apply_on_boot is set, reapplies
// every controller currently holding a Manual or Profile setting in
// UID-stable order (spec §4.5 boot behavior). When apply_on_boot is
// false, persisted settings remain in memory but are not reapplied
// until the next explicit apply() or mode activation.
func (m *Manager) Boot(ctx context.Context) []WriteRecord {
	select {
	case <-time.After(m.startupDelay):
	case <-ctx.Done():
		return nil
	}

	if !m.applyOnBoot {
		return nil
	}

	m.mu.RLock()
	controllers := make([]*Controller, 0, len(m.controllers))
	for _, c := range m.controllers {
		controllers = append(controllers, c)
	}
	m.mu.RUnlock()

	sort.Slice(controllers, func(i, j int) bool {
		if controllers[i].DeviceUID != controllers[j].DeviceUID {
			return controllers[i].DeviceUID < controllers[j].DeviceUID
		}
		return controllers[i].Channel < controllers[j].Channel
	})

	for _, c := range controllers {
		if c.Setting().Kind != KindUnset {
			c.ForceReapply()
		}
	}

	return m.Tick(ctx)
}

// Shutdown calls Shutdown on every distinct repository referenced by
// a registered controller's device, restoring each repository's safe
// state (spec §4.5 shutdown behavior).
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.RLock()
	seen := make(map[string]struct{})
	var repos []repository.Repository
	for _, c := range m.controllers {
		if _, ok := seen[c.DeviceUID]; ok {
			continue
		}
		seen[c.DeviceUID] = struct{}{}
		if repo, ok := m.repositories.Repository(c.DeviceUID); ok {
			repos = append(repos, repo)
		}
	}
	m.mu.RUnlock()

	var firstErr error
	doneRepos := make(map[string]struct{})
	for _, repo := range repos {
		if _, ok := doneRepos[repo.Name()]; ok {
			continue
		}
		doneRepos[repo.Name()] = struct{}{}
		if err := repo.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ResumeFromSleep forces every controller to rewrite its current
// duty on the next tick, regardless of lastApplied, matching the
// forced-reapply-after-resume rule in spec §4.5.
func (m *Manager) ResumeFromSleep() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.controllers {
		c.ForceReapply()
	}
}
