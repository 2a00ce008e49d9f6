// SPDX-License-Identifier: BSD-3-Clause

// Package cpu adapts pkg/hwmon to a single-channel, read-only
// repository.Repository for the processor package/core temperature
// drivers (coretemp, k10temp, zenpower). Unlike internal/repository/hwmon,
// which surfaces every discovered hwmon node as its own device, this
// package collapses every core/package sensor on a matching driver into
// one virtual "CPU" channel per spec §4.1.
package cpu
