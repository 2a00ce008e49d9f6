// SPDX-License-Identifier: BSD-3-Clause

package function

import "errors"

var (
	// ErrUnknownType indicates a function with an unrecognized Type.
	ErrUnknownType = errors.New("unknown function type")
	// ErrFunctionNotFound indicates a reference to a UID with no matching function.
	ErrFunctionNotFound = errors.New("function not found")
)
