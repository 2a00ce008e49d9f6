// SPDX-License-Identifier: BSD-3-Clause

package cpu

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/coolercontrol/coolerd/internal/device"
	"github.com/coolercontrol/coolerd/internal/repository"
)

func writeMillidegree(t *testing.T, dir, name string, millidegree int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strconv.Itoa(millidegree)), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestSampleReportsHottestReading(t *testing.T) {
	dir := t.TempDir()
	core0 := writeMillidegree(t, dir, "core0", 42000)
	core1 := writeMillidegree(t, dir, "core1", 61500)

	r := New()
	const uid = "cpu-0"
	r.paths[uid] = []string{core0, core1}

	status, err := r.Sample(context.Background(), &device.Device{UID: uid})
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if len(status.Temps) != 1 {
		t.Fatalf("expected exactly one collapsed temp reading, got %d", len(status.Temps))
	}
	if got := status.Temps[0].Temp; got != 61.5 {
		t.Fatalf("expected hottest reading 61.5, got %v", got)
	}
}

func TestSampleUnknownDevice(t *testing.T) {
	r := New()
	if _, err := r.Sample(context.Background(), &device.Device{UID: "missing"}); err == nil {
		t.Fatal("expected error for unregistered device UID")
	}
}

func TestApplyAlwaysUnsupported(t *testing.T) {
	r := New()
	dev := &device.Device{UID: "cpu-0"}
	err := r.Apply(context.Background(), dev, repository.ApplyRequest{Channel: channelName})
	if err == nil {
		t.Fatal("expected ErrUnsupportedChannel")
	}
}
