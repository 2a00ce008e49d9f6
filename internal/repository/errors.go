// SPDX-License-Identifier: BSD-3-Clause

package repository

import "errors"

var (
	// ErrUnsupportedChannel indicates a channel name unknown to the repository.
	ErrUnsupportedChannel = errors.New("unsupported channel")
	// ErrOutOfRange indicates a duty value outside the channel's SpeedOptions bounds.
	ErrOutOfRange = errors.New("value out of range")
	// ErrHardwareBusy indicates a transient failure to claim the actuator.
	ErrHardwareBusy = errors.New("hardware busy")
	// ErrDriverError indicates an unrecoverable driver-level failure.
	ErrDriverError = errors.New("driver error")
	// ErrDiscoveryFailed indicates repository-wide initialization failed.
	ErrDiscoveryFailed = errors.New("device discovery failed")
)
