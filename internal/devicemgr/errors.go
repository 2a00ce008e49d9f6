// SPDX-License-Identifier: BSD-3-Clause

package devicemgr

import "errors"

var (
	// ErrNATSConnectionFailed indicates the service could not reach the event bus.
	ErrNATSConnectionFailed = errors.New("failed to connect to event bus")
	// ErrMicroServiceCreationFailed indicates NATS micro service registration failed.
	ErrMicroServiceCreationFailed = errors.New("failed to create micro service")
	// ErrConfigLoadFailed indicates the on-disk config document or credentials
	// file could not be loaded or bootstrapped.
	ErrConfigLoadFailed = errors.New("failed to load configuration")
	// ErrDeviceNotFound indicates a requested device UID is unknown to the registry.
	ErrDeviceNotFound = errors.New("device not found")
	// ErrNotFound indicates a requested profile, function, mode, or alert UID
	// is unknown.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequestBody indicates a request payload could not be decoded.
	ErrInvalidRequestBody = errors.New("invalid request body")
	// ErrUnauthorized indicates a login or passwd attempt used the wrong password.
	ErrUnauthorized = errors.New("unauthorized")
)
