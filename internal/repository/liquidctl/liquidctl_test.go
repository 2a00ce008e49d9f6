// SPDX-License-Identifier: BSD-3-Clause

package liquidctl

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/coolercontrol/coolerd/internal/device"
	"github.com/coolercontrol/coolerd/internal/repository"
)

// startHelper serves mux over a Unix-domain socket at socketPath,
// mimicking the liquidctl helper process.
func startHelper(t *testing.T, socketPath string, mux *http.ServeMux) {
	t.Helper()
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	srv := httptest.NewUnstartedServer(mux)
	srv.Listener.Close()
	srv.Listener = listener
	srv.Start()
	t.Cleanup(srv.Close)
}

func TestInitializeAndSample(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "liqctld.sock")
	mux := http.NewServeMux()
	mux.HandleFunc("/devices", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]helperDevice{
			{ID: "0", Name: "Kraken X73", Driver: "kraken2", Channels: []helperChannel{
				{Name: "pump", Kind: "pump", MinDuty: 20, MaxDuty: 100},
			}},
		})
	})
	mux.HandleFunc("/devices/0/status", func(w http.ResponseWriter, r *http.Request) {
		duty := 55.0
		_ = json.NewEncoder(w).Encode(helperStatus{
			Temps:  []helperTemp{{Name: "liquid", Value: 31.2}},
			Speeds: []helperReading{{Channel: "pump", Duty: &duty}},
		})
	})
	startHelper(t, socketPath, mux)

	r := New(WithSocketPath(socketPath))
	devices, err := r.Initialize(context.Background())
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if len(devices) != 1 || devices[0].Name != "Kraken X73" {
		t.Fatalf("expected one Kraken device, got %+v", devices)
	}

	status, err := r.Sample(context.Background(), devices[0])
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if len(status.Temps) != 1 || status.Temps[0].Name != "liquid" {
		t.Fatalf("expected a liquid temp reading, got %+v", status.Temps)
	}
	if len(status.Channels) != 1 || *status.Channels[0].Duty != 55.0 {
		t.Fatalf("expected pump duty 55, got %+v", status.Channels)
	}
}

func TestApplyRejectsOutOfRangeDuty(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "liqctld.sock")
	mux := http.NewServeMux()
	mux.HandleFunc("/devices", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]helperDevice{
			{ID: "0", Name: "Kraken X73", Driver: "kraken2", Channels: []helperChannel{
				{Name: "pump", Kind: "pump", MinDuty: 20, MaxDuty: 100},
			}},
		})
	})
	startHelper(t, socketPath, mux)

	r := New(WithSocketPath(socketPath))
	devices, err := r.Initialize(context.Background())
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	duty := 5
	err = r.Apply(context.Background(), devices[0], repository.ApplyRequest{Channel: "pump", Duty: &duty})
	if err == nil {
		t.Fatal("expected ErrOutOfRange for duty below MinDuty")
	}
}

func TestSampleAbsentOnHelperUnreachable(t *testing.T) {
	r := New(WithSocketPath(filepath.Join(t.TempDir(), "nonexistent.sock")))
	dev := &device.Device{UID: "whatever"}

	// Directly seed helperIDs to bypass Initialize against an unreachable
	// socket, isolating the behavior under test: a failed status query
	// degrades to an absent sample, not a propagated error.
	r.helperIDs[dev.UID] = "0"

	status, err := r.Sample(context.Background(), dev)
	if err != nil {
		t.Fatalf("expected nil error on unreachable helper, got %v", err)
	}
	if len(status.Temps) != 0 || len(status.Channels) != 0 {
		t.Fatalf("expected an empty status, got %+v", status)
	}
}

func TestBackoffGatesRequestsAfterFailure(t *testing.T) {
	r := New(WithSocketPath(filepath.Join(t.TempDir(), "nonexistent.sock")), WithBackoff(50*time.Millisecond, time.Second))
	r.recordFailure()

	if err := r.checkBackoff(); err == nil {
		t.Fatal("expected checkBackoff to gate the request immediately after a failure")
	}

	time.Sleep(60 * time.Millisecond)
	if err := r.checkBackoff(); err != nil {
		t.Fatalf("expected checkBackoff to clear after the backoff window elapses, got %v", err)
	}
}
