// SPDX-License-Identifier: BSD-3-Clause

// Package state provides a finite state machine implementation used by
// coolerd's per-channel setting controller and alert engine, with
// persistence, observability, and concurrent access support.
//
// # Overview
//
// This package implements finite state machines (FSMs) with the following key features:
//   - Thread-safe operations with read-write mutexes
//   - State persistence with configurable callbacks
//   - Distributed tracing via OpenTelemetry
//   - Configurable timeouts for state transitions
//   - Guard conditions and transition actions
//   - State entry/exit callbacks
//   - Broadcast notifications for state changes
//   - DOT graph generation for visualization
//   - Multi-state machine management via Manager
//
// # Core Concepts
//
// State Machine: A computational model consisting of a finite number of states, transitions between
// those states, and actions. At any given time, the machine is in exactly one state.
//
// Transition: A change from one state to another, triggered by an event (trigger). Transitions can
// have guard conditions that must be satisfied and actions that are executed during the transition.
//
// Trigger: An event or signal that can cause a state transition. Triggers are only valid for specific
// states and their associated transitions.
//
// # Basic Usage
//
// Creating a simple state machine:
//
//	config := NewConfig(
//		WithName("fan1-setting"),
//		WithDescription("channel setting controller for fan1"),
//		WithInitialState("unset"),
//		WithStates("unset", "manual", "profile"),
//		WithTransition("unset", "manual", "apply_manual"),
//		WithTransition("unset", "profile", "apply_profile"),
//	)
//
//	sm, err := New(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	if err := sm.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//
//	if err := sm.Fire(ctx, "apply_manual"); err != nil {
//		log.Printf("transition failed: %v", err)
//	}
//
// # State Persistence
//
// The package supports state persistence through a configurable callback set with
// WithPersistence. When set, the current state is persisted whenever it changes.
//
// # State Change Notifications
//
// Applications can receive notifications when state changes occur by setting a
// broadcast callback with WithBroadcast.
//
// # Multi-State Machine Management
//
// The Manager type allows managing multiple state machines, one per
// (device, channel) pair or per configured alert:
//
//	manager := NewManager()
//	manager.AddStateMachine(fan1Setting)
//	manager.AddStateMachine(coolantTempAlert)
//
//	sm, err := manager.GetStateMachine("fan1-setting")
//	if err != nil {
//		log.Printf("state machine not found: %v", err)
//	}
//
// # Observability
//
// Every Fire call is wrapped in an OpenTelemetry span tagged with the machine
// name, current state, and trigger.
//
// # Thread Safety
//
// All state machine operations are thread-safe. Multiple goroutines can safely:
//   - Query the current state
//   - Check if triggers can be fired
//   - Trigger state transitions
//   - Access state machine metadata
//
// The implementation uses read-write mutexes to allow concurrent reads while ensuring
// exclusive access for state modifications.
//
// # Error Handling
//
// The package defines specific error types for different failure scenarios:
//   - Configuration errors (ErrInvalidConfig)
//   - State/transition errors (ErrInvalidState, ErrInvalidTransition, ErrInvalidTrigger)
//   - Timeout errors (ErrTransitionTimeout)
//   - Guard/action failures (ErrTransitionGuardFailed, ErrTransitionActionFailed)
//   - Persistence errors (ErrPersistenceFailed)
//   - Lifecycle errors (ErrStateMachineNotStarted, ErrStateMachineAlreadyStarted, ErrStateMachineStopped)
package state
