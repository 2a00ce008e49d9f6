// SPDX-License-Identifier: BSD-3-Clause

// Package setting implements the per-channel setting controller (spec
// §4.5): one logical instance per (device UID, channel name) owning
// that channel's live intent (Manual duty, Profile binding, or
// driver-default None) and the last duty actually written to
// hardware. Each tick it runs the function and profile engines when
// bound to a Profile, and writes to the owning repository only when
// the computed duty changes.
package setting
