// SPDX-License-Identifier: BSD-3-Clause

package transport

import "errors"

var (
	// ErrInvalidConfiguration indicates that the transport configuration is invalid.
	ErrInvalidConfiguration = errors.New("invalid transport configuration")
	// ErrSetupRouter indicates that the HTTP router could not be constructed.
	ErrSetupRouter = errors.New("failed to setup router")
	// ErrSetupTLS indicates that TLS configuration failed.
	ErrSetupTLS = errors.New("failed to setup TLS")
	// ErrCreateListener indicates that the API listener could not be created.
	ErrCreateListener = errors.New("failed to create listener")
	// ErrHTTPServer indicates that the HTTP server exited unexpectedly.
	ErrHTTPServer = errors.New("HTTP server error")
	// ErrNATSConnectionFailed indicates the transport could not reach the event bus.
	ErrNATSConnectionFailed = errors.New("failed to connect to event bus")
	// ErrDeviceNotFound indicates a requested device UID has no matching device.
	ErrDeviceNotFound = errors.New("device not found")
	// ErrChannelNotFound indicates a requested channel has no matching device channel.
	ErrChannelNotFound = errors.New("channel not found")
	// ErrProfileNotFound indicates a requested profile UID does not exist.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrFunctionNotFound indicates a requested function UID does not exist.
	ErrFunctionNotFound = errors.New("function not found")
	// ErrModeNotFound indicates a requested mode UID does not exist.
	ErrModeNotFound = errors.New("mode not found")
	// ErrInvalidRequestBody indicates the request body failed to decode or validate.
	ErrInvalidRequestBody = errors.New("invalid request body")
	// ErrUnauthorized indicates the request lacked a valid session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSetRmemMax indicates net.core.rmem_max could not be set.
	ErrSetRmemMax = errors.New("failed to set net.core.rmem_max")
	// ErrSetWmemMax indicates net.core.wmem_max could not be set.
	ErrSetWmemMax = errors.New("failed to set net.core.wmem_max")
)
