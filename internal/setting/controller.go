// SPDX-License-Identifier: BSD-3-Clause

package setting

import (
	"context"
	"fmt"
	"sync"

	"github.com/coolercontrol/coolerd/internal/function"
	"github.com/coolercontrol/coolerd/internal/profile"
	"github.com/coolercontrol/coolerd/pkg/state"
)

// Controller is one logical instance of the per-channel state machine
// (spec §4.5): it owns the channel's Setting and the last duty
// actually written, and evaluates function->profile on each tick when
// bound to a Profile.
type Controller struct {
	mu sync.Mutex

	DeviceUID string
	Channel   string

	fsm     *state.FSM
	setting Setting

	lastApplied *int
	fnState     *function.State
	// forceReapply requests a write regardless of lastApplied on the
	// next tick: set on apply(), on mode switch, and on resume-from-sleep.
	forceReapply bool
}

// NewController builds the state machine for one (device, channel)
// pair, starting in the Unset state.
func NewController(ctx context.Context, deviceUID, channel string) (*Controller, error) {
	fsm, err := state.NewSettingStateMachine(fmt.Sprintf("%s/%s", deviceUID, channel))
	if err != nil {
		return nil, err
	}
	if err := fsm.Start(ctx); err != nil {
		return nil, err
	}
	return &Controller{
		DeviceUID: deviceUID,
		Channel:   channel,
		fsm:       fsm,
		fnState:   function.NewState(),
	}, nil
}

// Setting returns a copy of the controller's current live setting.
func (c *Controller) Setting() Setting {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setting
}

// LastApplied returns the last duty actually written, or nil if none
// has ever been written.
func (c *Controller) LastApplied() *int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastApplied
}

// ApplyManual transitions the controller to Manual(duty), forcing a
// rewrite on the next tick regardless of the previous applied value.
func (c *Controller) ApplyManual(ctx context.Context, duty int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fsm.Fire(ctx, state.SettingTriggerApplyManual); err != nil {
		return err
	}
	c.setting = Setting{Kind: KindManual, Duty: duty}
	c.forceReapply = true
	return nil
}

// ApplyProfile transitions the controller to Profile(uid), resetting
// the per-channel function evaluation state since a new profile may
// bind a different function.
func (c *Controller) ApplyProfile(ctx context.Context, profileUID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fsm.Fire(ctx, state.SettingTriggerApplyProfile); err != nil {
		return err
	}
	c.setting = Setting{Kind: KindProfile, ProfileUID: profileUID}
	c.fnState = function.NewState()
	c.forceReapply = true
	return nil
}

// Clear transitions the controller back to Unset.
func (c *Controller) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fsm.Fire(ctx, state.SettingTriggerClear); err != nil {
		return err
	}
	c.setting = Setting{Kind: KindUnset}
	c.lastApplied = nil
	return nil
}

// ForceReapply requests an unconditional rewrite on the next tick,
// used for mode activation and resume-from-sleep.
func (c *Controller) ForceReapply() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forceReapply = true
}

// evalResult is the outcome of one Tick evaluation.
type evalResult struct {
	duty  int
	write bool
}

// tick advances the controller by one evaluation and reports whether
// a write is due and, if so, the duty to write. It does not perform
// the write itself; Manager.Tick does, so repository access stays out
// of the per-channel lock.
func (c *Controller) tick(ctx context.Context, fns FunctionLookup, profiles ProfileLookup, temps TempLookup, pollRate float64, staleLimit int) (evalResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.setting.Kind {
	case KindUnset:
		return evalResult{}, nil

	case KindManual:
		if err := c.fsm.Fire(ctx, state.SettingTriggerTick); err != nil {
			return evalResult{}, err
		}
		return c.maybeWrite(c.setting.Duty), nil

	case KindProfile:
		if err := c.fsm.Fire(ctx, state.SettingTriggerTick); err != nil {
			return evalResult{}, err
		}
		return c.tickProfile(profiles, fns, temps, pollRate, staleLimit)

	default:
		return evalResult{}, nil
	}
}

func (c *Controller) tickProfile(profiles ProfileLookup, fns FunctionLookup, temps TempLookup, pollRate float64, staleLimit int) (evalResult, error) {
	p, ok := profiles.Profile(c.setting.ProfileUID)
	if !ok {
		return evalResult{}, fmt.Errorf("%w: %s", profile.ErrProfileNotFound, c.setting.ProfileUID)
	}

	raw, present := float32(0), false
	if p.TempSource != nil {
		raw, present = temps.Temp(p.TempSource.DeviceUID, p.TempSource.TempName)
	}

	var fnOut float32
	var emitted bool
	if fn, ok := fns.Function(p.FunctionUID); ok {
		fnOut, emitted = function.Evaluate(fn, c.fnState, raw, present, pollRate)
	} else {
		// No function bound: identity passthrough, still tracked through
		// fnState so the missing-sample streak accounting still applies.
		fnOut, emitted = function.Evaluate(&function.Function{Type: function.TypeIdentity}, c.fnState, raw, present, pollRate)
	}
	if !emitted {
		return evalResult{}, nil
	}
	if c.fnState.StaleLimit(staleLimit) {
		// spec §4.3: a streak of missing samples beyond the stale limit
		// skips profile evaluation for this tick (acts as Unset).
		return evalResult{}, nil
	}

	duty, err := profile.Evaluate(p, fnOut, profileResolver{profiles})
	if err != nil {
		return evalResult{}, err
	}
	if duty == nil {
		// spec §4.5: a None result makes the channel act as Unset this tick.
		return evalResult{}, nil
	}
	return c.maybeWrite(*duty), nil
}

// maybeWrite must be called with c.mu held.
func (c *Controller) maybeWrite(duty int) evalResult {
	if !c.forceReapply && c.lastApplied != nil && *c.lastApplied == duty {
		return evalResult{}
	}
	c.forceReapply = false
	d := duty
	c.lastApplied = &d
	return evalResult{duty: duty, write: true}
}
