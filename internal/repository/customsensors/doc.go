// SPDX-License-Identifier: BSD-3-Clause

// Package customsensors is a virtual repository.Repository producing
// derived channels from two kinds of user-defined sensor (spec §4.1):
// File sensors read a number from a filesystem path each tick, and Mix
// sensors combine other devices' channel readings through Min, Max,
// Avg, or WeightedAvg. Unlike every other repository in this module,
// it has no hardware of its own to discover; its "devices" are purely
// a configuration the caller supplies up front.
package customsensors
