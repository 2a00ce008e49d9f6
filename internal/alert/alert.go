// SPDX-License-Identifier: BSD-3-Clause

package alert

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/coolercontrol/coolerd/pkg/state"
)

// Metric names the quantity an Alert monitors.
type Metric string

const (
	MetricTemp  Metric = "temp"
	MetricDuty  Metric = "duty"
	MetricRPM   Metric = "rpm"
	MetricFreq  Metric = "freq"
	MetricWatts Metric = "watts"
)

// Alert is a bounded-range monitor with activation hysteresis.
type Alert struct {
	UID        string  `json:"uid"`
	Name       string  `json:"name"`
	DeviceUID  string  `json:"device_uid"`
	Channel    string  `json:"channel_name"`
	Metric     Metric  `json:"metric"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Hysteresis float64 `json:"hysteresis"`
	Message    string  `json:"message,omitempty"`
}

// LogEntry records one state transition for the bounded alert log.
type LogEntry struct {
	AlertUID  string
	State     string
	Value     float64
	Timestamp time.Time
	Message   string
}

// MetricLookup resolves the current value of an alert's monitored
// metric, returning false when it is absent this tick (e.g. the
// owning device failed to sample).
type MetricLookup interface {
	Value(deviceUID, channel string, metric Metric) (float64, bool)
}

type alertEntry struct {
	def   *Alert
	fsm   *state.FSM
	value float64
}

// Engine holds every defined Alert and its hysteresis state machine,
// and drives evaluation once per tick after the history store update
// (spec §4.7).
type Engine struct {
	mu      sync.RWMutex
	alerts  map[string]*alertEntry
	log     []LogEntry
	logCap  int
}

// NewEngine creates an alert engine with a bounded in-memory log.
func NewEngine(logCap int) *Engine {
	if logCap < 1 {
		logCap = 500
	}
	return &Engine{
		alerts: make(map[string]*alertEntry),
		logCap: logCap,
	}
}

// Put inserts or replaces an alert definition, starting it fresh in
// the Inactive state.
func (e *Engine) Put(ctx context.Context, a *Alert) error {
	fsm, err := state.NewAlertStateMachine(fmt.Sprintf("alert/%s", a.UID))
	if err != nil {
		return err
	}
	if err := fsm.Start(ctx); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.alerts[a.UID] = &alertEntry{def: a, fsm: fsm}
	return nil
}

// Delete removes an alert definition.
func (e *Engine) Delete(uid string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.alerts, uid)
}

// Get returns an alert's definition and current state.
func (e *Engine) Get(uid string) (*Alert, string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	entry, ok := e.alerts[uid]
	if !ok {
		return nil, "", false
	}
	return entry.def, entry.fsm.CurrentState(), true
}

// List returns every defined alert, ordered by UID.
func (e *Engine) List() []*Alert {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*Alert, 0, len(e.alerts))
	for _, entry := range e.alerts {
		out = append(out, entry.def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out
}

// Log returns a snapshot of the bounded alert log, oldest first.
func (e *Engine) Log() []LogEntry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]LogEntry, len(e.log))
	copy(out, e.log)
	return out
}

// Tick evaluates every alert against lookup and returns the
// transitions that fired this tick, in UID-stable order.
func (e *Engine) Tick(ctx context.Context, lookup MetricLookup, now time.Time) []LogEntry {
	e.mu.RLock()
	entries := make([]*alertEntry, 0, len(e.alerts))
	for _, entry := range e.alerts {
		entries = append(entries, entry)
	}
	e.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].def.UID < entries[j].def.UID })

	var fired []LogEntry
	for _, entry := range entries {
		value, ok := lookup.Value(entry.def.DeviceUID, entry.def.Channel, entry.def.Metric)
		if !ok {
			continue // spec §4.7: ignore transitions when the metric is absent this tick
		}
		entry.value = value

		switch entry.fsm.CurrentState() {
		case state.AlertStateInactive:
			if value < entry.def.Min || value > entry.def.Max {
				if err := entry.fsm.Fire(ctx, state.AlertTriggerBreach); err == nil {
					fired = append(fired, e.appendLog(entry, now))
				}
			}
		case state.AlertStateActive:
			if value >= entry.def.Min+entry.def.Hysteresis && value <= entry.def.Max-entry.def.Hysteresis {
				if err := entry.fsm.Fire(ctx, state.AlertTriggerRecover); err == nil {
					fired = append(fired, e.appendLog(entry, now))
				}
			}
		}
	}
	return fired
}

// appendLog must be called without e.mu held by the caller's hot
// path; it takes the lock itself since Tick only reads elsewhere.
func (e *Engine) appendLog(entry *alertEntry, now time.Time) LogEntry {
	record := LogEntry{
		AlertUID:  entry.def.UID,
		State:     entry.fsm.CurrentState(),
		Value:     entry.value,
		Timestamp: now,
		Message:   entry.def.Message,
	}

	e.mu.Lock()
	e.log = append(e.log, record)
	if len(e.log) > e.logCap {
		e.log = e.log[len(e.log)-e.logCap:]
	}
	e.mu.Unlock()

	return record
}
