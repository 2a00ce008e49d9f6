// SPDX-License-Identifier: BSD-3-Clause

package device

import "errors"

var (
	// ErrDeviceNotFound indicates a UID not present in the registry.
	ErrDeviceNotFound = errors.New("device not found")
	// ErrChannelNotFound indicates a channel name not present on a device.
	ErrChannelNotFound = errors.New("channel not found")
)
