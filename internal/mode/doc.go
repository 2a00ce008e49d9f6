// SPDX-License-Identifier: BSD-3-Clause

// Package mode implements named, immutable snapshots of every
// channel's setting (spec §4.6). Activating a mode builds the full
// batch of per-channel settings first, then applies each one; a
// per-channel failure is reported but never rolls back the channels
// that already succeeded, since idempotent re-activation is the
// recovery path.
package mode
