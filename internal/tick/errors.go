// SPDX-License-Identifier: BSD-3-Clause

package tick

import "errors"

var (
	// ErrInvalidConfiguration indicates the tick scheduler configuration is invalid.
	ErrInvalidConfiguration = errors.New("invalid tick scheduler configuration")
	// ErrNATSConnectionFailed indicates the scheduler could not reach the event bus.
	ErrNATSConnectionFailed = errors.New("failed to connect to event bus")
	// ErrSampleFailed indicates a repository failed to report a status sample.
	ErrSampleFailed = errors.New("repository sample failed")
	// ErrApplyFailed indicates the setting controller failed to apply an active setting.
	ErrApplyFailed = errors.New("setting apply failed")
)
