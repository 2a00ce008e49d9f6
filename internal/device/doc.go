// SPDX-License-Identifier: BSD-3-Clause

// Package device holds the hardware-agnostic data model shared by
// every repository: Device, ChannelInfo and Status, plus the Registry
// that stores them.
//
// Devices never hold pointers to one another or to their owning
// repository; everything downstream (settings, modes, alerts) refers
// to a device by its UID and to a channel by (UID, channel name). This
// keeps the registry safe to read concurrently from the tick
// scheduler, the setting controller and the HTTP transport without any
// of them needing to understand how a given repository works.
package device
