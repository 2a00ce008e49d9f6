// SPDX-License-Identifier: BSD-3-Clause

// Package thinkpad adapts pkg/hwmon's thinkpad_acpi driver node into a
// repository.Repository exposing the single system fan channel plus
// the full-speed mode toggle and fan-control-enable flag spec §4.1
// calls out as ThinkPad-specific (full-speed bypasses the embedded
// controller's RPM ceiling; fan-control-enable gates whether pwm1
// writes are honored by the ACPI firmware at all).
package thinkpad
