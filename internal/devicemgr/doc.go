// SPDX-License-Identifier: BSD-3-Clause

// Package devicemgr is the device aggregation service (spec §4.1/§4.2). It
// owns the shared device.Registry, composes one repository.Repository per
// hardware class, and exposes device discovery, status, and history over
// NATS. It also drives the per-tick sample phase: on every
// internal.tick.sample it asks each repository to sample its devices,
// appends the results to the registry's bounded history, and rebroadcasts
// the aggregated status for the setting/alert engines and the HTTP/SSE
// transport to consume.
package devicemgr
