// SPDX-License-Identifier: BSD-3-Clause

// Package alert implements bounded-range monitors with activation
// hysteresis (spec §4.7): each Alert watches one device channel's
// metric and transitions Inactive<->Active as the value crosses its
// min/max band, widened by hysteresis on the recovering edge so a
// value sitting exactly at the boundary does not chatter.
package alert
