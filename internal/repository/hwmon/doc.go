// SPDX-License-Identifier: BSD-3-Clause

// Package hwmon implements repository.Repository for Linux's hwmon
// sysfs class. It enumerates every hwmonN node via pkg/hwmon,
// classifies temperature sensors as read-only channels and PWM
// outputs as read/write channels, and serves the CPU family drivers
// (coretemp, k10temp, zenpower) and NVMe/SATA drivetemp nodes the same
// way since they all present through the same sysfs shape.
package hwmon
