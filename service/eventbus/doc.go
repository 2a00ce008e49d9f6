// SPDX-License-Identifier: BSD-3-Clause

// Package eventbus provides an in-process NATS server that acts as
// coolerd's internal message bus. Every other supervised service reaches it
// through an in-process connection rather than a network socket.
//
// The event bus creates and manages a NATS server instance embedded within
// the daemon process, eliminating the need for an external NATS server.
// It provides JetStream capabilities for persisting the mode activation and
// alert transition audit trail.
//
// # Core Features
//
//   - Embedded NATS server with JetStream support
//   - In-process connection provider for other services
//   - Configurable server options and storage directories
//   - Graceful startup and shutdown handling
//   - Integration with the coolerd service framework
//
// # Usage
//
// The event bus is started first among the daemon's supervised services,
// since every other service depends on it for communication:
//
//	bus := eventbus.New(
//		eventbus.WithServiceName("eventbus"),
//		eventbus.WithServerName("coolerd"),
//		eventbus.WithStoreDir("/var/lib/coolerd/eventbus"),
//		eventbus.WithJetStream(true),
//	)
//
//	err := bus.Run(ctx, nil)
//
// Other services obtain connection providers to communicate through the bus:
//
//	connProvider := bus.GetConnProvider()
//	conn, err := connProvider.InProcessConn()
//	if err != nil {
//		// Handle connection error
//	}
//
// # Configuration
//
// The event bus can be configured with various options:
//
//   - WithServiceName: Set the service name
//   - WithServerName: Set the NATS server identity
//   - WithStoreDir: Set JetStream storage directory
//   - WithJetStream: Enable/disable JetStream
//
// # Architecture
//
// The event bus follows the standard coolerd service pattern:
//
//   - Implements the service.Service interface
//   - Provides a Run method for lifecycle management
//   - Supports graceful shutdown via context cancellation
//   - Integrates with the global logging system
//
// Status, mode, and alert subjects (see pkg/ipc) are published here every
// tick; NATS's native slow-consumer detection drops lagging subscribers
// rather than blocking the publisher, which is exactly the broadcast
// semantics the tick scheduler needs.
package eventbus
