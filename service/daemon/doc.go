// SPDX-License-Identifier: BSD-3-Clause

// Package daemon provides the service orchestrator that starts and
// supervises coolerd's services in a fault-tolerant manner. It acts as the
// central coordinator: starting the event bus, then the tick scheduler,
// the HTTP/SSE transport, and the device, setting, profile, mode, alert,
// and config services, restarting any of them that exit with an error.
//
// # Core Features
//
//   - Service lifecycle management and orchestration
//   - Fault-tolerant supervision with automatic restart policies
//   - Event bus coordination via an embedded NATS server
//   - Configurable service selection
//   - System initialization and mount point management
//   - OpenTelemetry integration for observability
//   - Graceful shutdown handling
//
// # Architecture
//
// The daemon follows a supervision tree pattern where services are
// organized in a flat structure with a transient restart policy: a
// service that returns an error is restarted, one that returns nil is
// considered a finished one-shot.
//
// # Configuration
//
// Services are selected through the options pattern:
//
//	d := daemon.New(
//		daemon.WithName("coolerd"),
//		daemon.WithTimeout(30*time.Second),
//		daemon.WithEventBus(
//			eventbus.WithServerName("coolerd"),
//			eventbus.WithStoreDir("/var/lib/coolerd/eventbus"),
//		),
//		daemon.WithTick(tick.New(tick.WithInterval(time.Second))),
//		daemon.WithTransport(transport.WithAddr(":11987")),
//		daemon.WithExtraServices(deviceRepo, settingCtl, profileEng, modeCtl, alertEng, configStore),
//	)
//
// # External Event Bus Integration
//
// When integrating with an event bus started elsewhere (for example in
// tests, where the daemon is driven under an externally managed NATS
// in-process connection):
//
//	err := d.Run(ctx, externalConn)
//
// # Example Implementation
//
//	package main
//
//	import (
//		"context"
//		"os"
//		"os/signal"
//		"syscall"
//		"time"
//
//		"github.com/coolercontrol/coolerd/service/daemon"
//		"github.com/coolercontrol/coolerd/service/transport"
//	)
//
//	func main() {
//		d := daemon.New(
//			daemon.WithName("coolerd"),
//			daemon.WithTimeout(20*time.Second),
//			daemon.WithTransport(transport.WithAddr(":11987")),
//		)
//
//		ctx, cancel := context.WithCancel(context.Background())
//		defer cancel()
//
//		sigChan := make(chan os.Signal, 1)
//		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
//		go func() {
//			<-sigChan
//			cancel()
//		}()
//
//		if err := d.Run(ctx, nil); err != nil && err != context.Canceled {
//			panic(err)
//		}
//	}
package daemon
