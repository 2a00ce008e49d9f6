// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"flag"
	"time"
)

// flags holds the command-line configuration for the coolerd daemon.
type flags struct {
	apiAddr      string
	tlsEnabled   bool
	tickInterval time.Duration
	storeDir     string
	disableLogo  bool
	name         string
}

func parseFlags() *flags {
	f := &flags{}

	flag.StringVar(&f.apiAddr, "api-addr", ":11987", "address the HTTP API listens on")
	flag.BoolVar(&f.tlsEnabled, "tls", false, "terminate TLS on the API listener")
	flag.DurationVar(&f.tickInterval, "tick-interval", time.Second, "fixed-rate sampling and apply interval")
	flag.StringVar(&f.storeDir, "store-dir", "/var/lib/coolerd", "base directory for persisted state")
	flag.BoolVar(&f.disableLogo, "no-logo", false, "suppress the startup logo")
	flag.StringVar(&f.name, "name", "coolerd", "daemon instance name, used for logging and the persistent ID")

	flag.Parse()
	return f
}
