// SPDX-License-Identifier: BSD-3-Clause

package state

import (
	"fmt"
	"time"
)

// NewStateMachine creates a basic state machine with the provided configuration.
func NewStateMachine(opts ...Option) (*FSM, error) {
	config := NewConfig(opts...)
	return New(config)
}

// Setting controller states, shared by every (device, channel) pair managed
// by internal/setting. A channel starts Unset, moves to Manual when a fixed
// duty is applied directly, or to Profile when a profile UID is assigned.
const (
	SettingStateUnset   = "unset"
	SettingStateManual  = "manual"
	SettingStateProfile = "profile"
)

const (
	SettingTriggerApplyManual  = "apply_manual"
	SettingTriggerApplyProfile = "apply_profile"
	SettingTriggerClear        = "clear"
	SettingTriggerTick         = "tick"
)

// NewSettingStateMachine builds the per-channel setting controller state
// machine (spec §4.5): Unset/Manual/Profile, with tick self-loops in Manual
// and Profile so the controller can re-apply without changing state.
func NewSettingStateMachine(name string, opts ...Option) (*FSM, error) {
	baseOpts := []Option{
		WithName(name),
		WithDescription("channel setting controller"),
		WithInitialState(SettingStateUnset),
		WithStates(SettingStateUnset, SettingStateManual, SettingStateProfile),
		WithTransition(SettingStateUnset, SettingStateManual, SettingTriggerApplyManual),
		WithTransition(SettingStateUnset, SettingStateProfile, SettingTriggerApplyProfile),
		WithTransition(SettingStateManual, SettingStateManual, SettingTriggerApplyManual),
		WithTransition(SettingStateManual, SettingStateProfile, SettingTriggerApplyProfile),
		WithTransition(SettingStateManual, SettingStateManual, SettingTriggerTick),
		WithTransition(SettingStateProfile, SettingStateProfile, SettingTriggerApplyProfile),
		WithTransition(SettingStateProfile, SettingStateManual, SettingTriggerApplyManual),
		WithTransition(SettingStateProfile, SettingStateProfile, SettingTriggerTick),
		WithTransition(SettingStateManual, SettingStateUnset, SettingTriggerClear),
		WithTransition(SettingStateProfile, SettingStateUnset, SettingTriggerClear),
		WithStateTimeout(5 * time.Second),
	}

	allOpts := append(baseOpts, opts...)
	return NewStateMachine(allOpts...)
}

// Alert engine states (spec §4.7): an alert is either Inactive or Active,
// with hysteresis on the bounding condition deciding which trigger fires.
const (
	AlertStateInactive = "inactive"
	AlertStateActive   = "active"
)

const (
	AlertTriggerBreach  = "breach"
	AlertTriggerRecover = "recover"
)

// NewAlertStateMachine builds the per-alert hysteresis state machine.
func NewAlertStateMachine(name string, opts ...Option) (*FSM, error) {
	baseOpts := []Option{
		WithName(name),
		WithDescription("alert hysteresis state machine"),
		WithInitialState(AlertStateInactive),
		WithStates(AlertStateInactive, AlertStateActive),
		WithTransition(AlertStateInactive, AlertStateActive, AlertTriggerBreach),
		WithTransition(AlertStateActive, AlertStateInactive, AlertTriggerRecover),
		WithStateTimeout(5 * time.Second),
	}

	allOpts := append(baseOpts, opts...)
	return NewStateMachine(allOpts...)
}

// SettingBuilder provides a fluent interface for building channel setting
// controller state machines with optional guards and actions on the
// manual/profile transitions.
type SettingBuilder struct {
	name           string
	opts           []Option
	onApplyManual  ActionFunc
	onApplyProfile ActionFunc
	canApply       GuardFunc
}

// NewSettingBuilder creates a new setting controller state machine builder
// for the given device/channel-qualified name.
func NewSettingBuilder(name string) *SettingBuilder {
	return &SettingBuilder{
		name: name,
		opts: []Option{},
	}
}

// WithApplyManualAction sets the action executed when a fixed duty is applied.
func (b *SettingBuilder) WithApplyManualAction(action ActionFunc) *SettingBuilder {
	b.onApplyManual = action
	return b
}

// WithApplyProfileAction sets the action executed when a profile is assigned.
func (b *SettingBuilder) WithApplyProfileAction(action ActionFunc) *SettingBuilder {
	b.onApplyProfile = action
	return b
}

// WithApplyGuard sets a guard evaluated before any apply transition, e.g. to
// reject writes while the owning repository is shutting down.
func (b *SettingBuilder) WithApplyGuard(guard GuardFunc) *SettingBuilder {
	b.canApply = guard
	return b
}

// WithPersistence adds a persistence callback to the state machine.
func (b *SettingBuilder) WithPersistence(callback PersistenceCallback) *SettingBuilder {
	b.opts = append(b.opts, WithPersistence(callback))
	return b
}

// WithBroadcast adds a broadcast callback to the state machine.
func (b *SettingBuilder) WithBroadcast(callback BroadcastCallback) *SettingBuilder {
	b.opts = append(b.opts, WithBroadcast(callback))
	return b
}

// WithTimeout sets the state transition timeout.
func (b *SettingBuilder) WithTimeout(timeout time.Duration) *SettingBuilder {
	b.opts = append(b.opts, WithStateTimeout(timeout))
	return b
}

// Build creates the configured setting controller state machine.
func (b *SettingBuilder) Build() (*FSM, error) {
	opts := []Option{
		WithName(b.name),
		WithDescription(fmt.Sprintf("channel setting controller for %s", b.name)),
		WithInitialState(SettingStateUnset),
		WithStates(SettingStateUnset, SettingStateManual, SettingStateProfile),
	}

	manualFrom := []string{SettingStateUnset, SettingStateManual, SettingStateProfile}
	for _, from := range manualFrom {
		opts = append(opts, WithCompleteTransition(from, SettingStateManual, SettingTriggerApplyManual, b.canApply, b.onApplyManual))
	}

	profileFrom := []string{SettingStateUnset, SettingStateManual, SettingStateProfile}
	for _, from := range profileFrom {
		opts = append(opts, WithCompleteTransition(from, SettingStateProfile, SettingTriggerApplyProfile, b.canApply, b.onApplyProfile))
	}

	opts = append(opts,
		WithTransition(SettingStateManual, SettingStateManual, SettingTriggerTick),
		WithTransition(SettingStateProfile, SettingStateProfile, SettingTriggerTick),
		WithTransition(SettingStateManual, SettingStateUnset, SettingTriggerClear),
		WithTransition(SettingStateProfile, SettingStateUnset, SettingTriggerClear),
	)

	opts = append(opts, b.opts...)

	return NewStateMachine(opts...)
}

// AlertBuilder provides a fluent interface for building alert hysteresis
// state machines with a recovery action hook.
type AlertBuilder struct {
	name       string
	opts       []Option
	onBreach   ActionFunc
	onRecover  ActionFunc
	canBreach  GuardFunc
	canRecover GuardFunc
}

// NewAlertBuilder creates a new alert state machine builder.
func NewAlertBuilder(name string) *AlertBuilder {
	return &AlertBuilder{
		name: name,
		opts: []Option{},
	}
}

// WithBreachAction sets the action executed when the alert becomes active.
func (b *AlertBuilder) WithBreachAction(action ActionFunc) *AlertBuilder {
	b.onBreach = action
	return b
}

// WithRecoverAction sets the action executed when the alert clears.
func (b *AlertBuilder) WithRecoverAction(action ActionFunc) *AlertBuilder {
	b.onRecover = action
	return b
}

// WithBreachGuard sets a guard condition for the breach transition.
func (b *AlertBuilder) WithBreachGuard(guard GuardFunc) *AlertBuilder {
	b.canBreach = guard
	return b
}

// WithRecoverGuard sets a guard condition for the recover transition.
func (b *AlertBuilder) WithRecoverGuard(guard GuardFunc) *AlertBuilder {
	b.canRecover = guard
	return b
}

// WithPersistence adds a persistence callback to the state machine.
func (b *AlertBuilder) WithPersistence(callback PersistenceCallback) *AlertBuilder {
	b.opts = append(b.opts, WithPersistence(callback))
	return b
}

// WithBroadcast adds a broadcast callback to the state machine.
func (b *AlertBuilder) WithBroadcast(callback BroadcastCallback) *AlertBuilder {
	b.opts = append(b.opts, WithBroadcast(callback))
	return b
}

// Build creates the configured alert hysteresis state machine.
func (b *AlertBuilder) Build() (*FSM, error) {
	opts := []Option{
		WithName(b.name),
		WithDescription(fmt.Sprintf("alert hysteresis for %s", b.name)),
		WithInitialState(AlertStateInactive),
		WithStates(AlertStateInactive, AlertStateActive),
	}

	opts = append(opts,
		WithCompleteTransition(AlertStateInactive, AlertStateActive, AlertTriggerBreach, b.canBreach, b.onBreach),
		WithCompleteTransition(AlertStateActive, AlertStateInactive, AlertTriggerRecover, b.canRecover, b.onRecover),
	)

	opts = append(opts, b.opts...)

	return NewStateMachine(opts...)
}
