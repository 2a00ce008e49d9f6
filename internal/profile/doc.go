// SPDX-License-Identifier: BSD-3-Clause

// Package profile implements the temperature-to-duty lookup that a
// Setting in Profile mode evaluates every tick: Default (driver
// passthrough), Fixed (a constant duty), Graph (piecewise-linear
// interpolation over user-defined points) and Mix (combining member
// profiles with Min, Max or Avg).
package profile
