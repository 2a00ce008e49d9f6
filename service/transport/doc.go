// SPDX-License-Identifier: BSD-3-Clause

// Package transport implements the daemon's HTTP API. It is the one
// supervised service that opens a socket to the outside world; every
// endpoint is a thin proxy onto the internal services reachable through
// the event bus.
//
// # Endpoints
//
//   - GET  /devices                          device discovery
//   - GET  /devices/{uid}/status              current status sample
//   - GET  /devices/{uid}/status/stream       SSE stream of status broadcasts
//   - GET  /settings/{uid}/{channel}          current setting for a channel
//   - PUT  /settings/{uid}/{channel}/manual   apply a fixed duty
//   - PUT  /settings/{uid}/{channel}/profile  apply a profile
//   - DELETE /settings/{uid}/{channel}        clear a setting
//   - /profiles, /functions, /modes, /alerts  CRUD over the respective engines
//   - GET/POST /config, POST /login           config store access
//
// Each handler marshals the path parameters and request body into a
// requestPayload, sends it to the internal service's subject over NATS,
// and relays the raw reply back as JSON. The status stream instead
// subscribes to the coolerd.event.status broadcast and forwards matching
// messages as Server-Sent Events for as long as the client stays connected.
package transport
