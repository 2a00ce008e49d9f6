// SPDX-License-Identifier: BSD-3-Clause

package thinkpad

import "errors"

var (
	// ErrFanControlDisabled indicates a pwm1 write was attempted while
	// the fan-control-enable flag is off.
	ErrFanControlDisabled = errors.New("thinkpad fan control disabled")
)
