// SPDX-License-Identifier: BSD-3-Clause

// Package function implements the three post-processing filters a
// Profile can chain before its temperature-to-duty lookup: Identity
// (passthrough), Standard (a latency and deadband filter meant to
// stop a fan from "hunting" on sensor noise), and an exponential
// moving average with a simple-mean warmup period.
package function
