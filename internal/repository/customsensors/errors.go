// SPDX-License-Identifier: BSD-3-Clause

package customsensors

import "errors"

var (
	// ErrNoMembers indicates a Mix sensor was configured with no member
	// channel references.
	ErrNoMembers = errors.New("mix sensor has no members")
	// ErrAllMembersAbsent indicates every member of a Mix sensor had no
	// reading this tick, so the combined result is also absent.
	ErrAllMembersAbsent = errors.New("all mix sensor members absent")
)
