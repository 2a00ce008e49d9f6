// SPDX-License-Identifier: BSD-3-Clause

package profile

import "errors"

var (
	// ErrTooFewPoints indicates a Graph profile with fewer than two points.
	ErrTooFewPoints = errors.New("graph profile requires at least two points")
	// ErrNonAscendingPoints indicates a Graph profile whose points are not
	// strictly ascending by temperature.
	ErrNonAscendingPoints = errors.New("graph profile points must be strictly ascending by temperature")
	// ErrMemberCycle indicates a Mix profile whose membership graph cycles
	// back on itself.
	ErrMemberCycle = errors.New("mix profile membership cycle")
	// ErrUnknownType indicates a profile or mix function with an
	// unrecognized type tag.
	ErrUnknownType = errors.New("unknown profile type")
	// ErrProfileNotFound indicates a reference to a UID with no matching
	// profile.
	ErrProfileNotFound = errors.New("profile not found")
)
