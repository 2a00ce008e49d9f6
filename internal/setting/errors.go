// SPDX-License-Identifier: BSD-3-Clause

package setting

import "errors"

var (
	// ErrChannelNotFound indicates a reference to a (device, channel) pair
	// with no registered controller.
	ErrChannelNotFound = errors.New("channel not found")
	// ErrRepositoryNotFound indicates a device with no owning repository
	// registered in the manager.
	ErrRepositoryNotFound = errors.New("owning repository not found")
	// ErrDeviceNotFound indicates a reference to an unknown device UID.
	ErrDeviceNotFound = errors.New("device not found")
)
