// SPDX-License-Identifier: BSD-3-Clause

// Package liquidctl is a repository.Repository that talks to the
// liquidctl helper process over a Unix-domain HTTP socket rather than
// touching USB devices directly (spec §4.1, Non-goals: "any device
// protocol at the USB transport level"). The helper owns enumeration
// and the vendor protocol; this package is a thin JSON client plus the
// reconnect-with-backoff policy spec §8 requires when the helper is
// unreachable.
package liquidctl
