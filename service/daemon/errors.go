// SPDX-License-Identifier: BSD-3-Clause

package daemon

import "errors"

var (
	// Configuration errors
	// ErrNameEmpty indicates that the daemon name cannot be empty.
	ErrNameEmpty = errors.New("daemon name cannot be empty")
	// ErrInvalidConfiguration indicates that the daemon configuration is invalid.
	ErrInvalidConfiguration = errors.New("invalid daemon configuration")
	// ErrMissingConfiguration indicates that required configuration is missing.
	ErrMissingConfiguration = errors.New("missing daemon configuration")

	// Event bus errors
	// ErrEventBusNil indicates that no event bus is configured.
	ErrEventBusNil = errors.New("event bus not configured: provide either ipcConn or WithEventBus option")
	// ErrEventBusConnectionFailed indicates that the event bus connection failed.
	ErrEventBusConnectionFailed = errors.New("failed to establish event bus connection")

	// Service management errors
	// ErrServiceNotFound indicates that a requested service was not found.
	ErrServiceNotFound = errors.New("service not found")
	// ErrServiceStartupFailed indicates that a service failed to start.
	ErrServiceStartupFailed = errors.New("service startup failed")
	// ErrServiceShutdownFailed indicates that a service failed to shutdown gracefully.
	ErrServiceShutdownFailed = errors.New("service shutdown failed")

	// Process management errors
	// ErrAddProcess indicates that adding a process to supervision failed.
	ErrAddProcess = errors.New("failed to add process to supervision tree")
	// ErrAddExtraService indicates that adding an extra service failed.
	ErrAddExtraService = errors.New("failed to add extra service to supervision tree")

	// System initialization errors
	// ErrSetupMounts indicates that filesystem mount setup failed.
	ErrSetupMounts = errors.New("failed to setup filesystem mounts")
	// ErrIDGeneration indicates that persistent ID generation failed.
	ErrIDGeneration = errors.New("failed to generate persistent ID")

	// Runtime errors
	// ErrPanicked indicates that the daemon panicked during execution.
	ErrPanicked = errors.New("daemon panicked")
)
