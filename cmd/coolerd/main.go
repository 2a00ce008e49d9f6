// SPDX-License-Identifier: BSD-3-Clause

// Command coolerd runs the CoolerControl thermal-management daemon: device
// discovery and status sampling, profile and function based fan curves,
// the setting and mode controllers, the alert engine, config persistence,
// and the HTTP/SSE API, all supervised under a single process.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/coolercontrol/coolerd/internal/devicemgr"
	"github.com/coolercontrol/coolerd/internal/repository/cpu"
	"github.com/coolercontrol/coolerd/internal/repository/customsensors"
	"github.com/coolercontrol/coolerd/internal/repository/gpu"
	"github.com/coolercontrol/coolerd/internal/repository/hwmon"
	"github.com/coolercontrol/coolerd/internal/repository/liquidctl"
	"github.com/coolercontrol/coolerd/internal/repository/thinkpad"
	"github.com/coolercontrol/coolerd/internal/tick"
	"github.com/coolercontrol/coolerd/service/daemon"
	"github.com/coolercontrol/coolerd/service/eventbus"
	"github.com/coolercontrol/coolerd/service/transport"
)

func main() {
	f := parseFlags()

	// customsensors.Mix needs to read other repositories' latest samples
	// out of the registry devicemgr owns, but devicemgr needs every
	// repository (customsensors included) at construction time. The
	// closure below resolves that cycle: it only calls through to
	// devices once devicemgr.New has returned and assigned it.
	var devices *devicemgr.DeviceMgr
	customSensors := customsensors.New(
		customsensors.WithLookup(func(uid, channel string) (float64, bool) {
			if devices == nil {
				return 0, false
			}
			return devices.ChannelValue(uid, channel)
		}),
	)

	devices = devicemgr.New(
		devicemgr.WithStoreDir(f.storeDir),
		devicemgr.WithRepositories(
			hwmon.New(),
			cpu.New(),
			gpu.New(),
			thinkpad.New(),
			liquidctl.New(),
			customSensors,
		),
	)

	d := daemon.New(
		daemon.WithName(f.name),
		daemon.WithDisableLogo(f.disableLogo),
		daemon.WithEventBus(
			eventbus.WithServerName(f.name),
			eventbus.WithStoreDir(filepath.Join(f.storeDir, "eventbus")),
			eventbus.WithJetStream(true),
		),
		daemon.WithTick(tick.New(
			tick.WithInterval(f.tickInterval),
		)),
		daemon.WithTransport(
			transport.WithAddr(f.apiAddr),
			transport.WithTLS(f.tlsEnabled),
			transport.WithCertPath(filepath.Join(f.storeDir, "cert.pem")),
			transport.WithKeyPath(filepath.Join(f.storeDir, "key.pem")),
		),
		daemon.WithExtraServices(devices),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	resume := make(chan os.Signal, 1)
	signal.Notify(resume, syscall.SIGCONT)
	defer signal.Stop(resume)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-resume:
				devices.ResumeFromSleep(ctx)
			}
		}
	}()

	if err := d.Run(ctx, nil); err != nil && ctx.Err() == nil {
		fmt.Fprintln(os.Stderr, "coolerd: fatal:", err)
		os.Exit(1)
	}
}
