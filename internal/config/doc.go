// SPDX-License-Identifier: BSD-3-Clause

// Package config implements the durable on-disk configuration store
// (spec §4.8): a single human-editable TOML document written
// atomically, plus a separate mode-0600 credentials file holding a
// salted password hash and a session-signing key. The on-disk shapes
// here are deliberately flatter than the in-memory domain types
// (profile.Profile, function.Function, mode.Mode, alert.Alert,
// setting.Setting) so the TOML stays hand-editable; Store converts
// between the two at load/save time.
package config
