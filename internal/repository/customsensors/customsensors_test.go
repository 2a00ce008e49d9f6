// SPDX-License-Identifier: BSD-3-Clause

package customsensors

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/coolercontrol/coolerd/internal/device"
	"github.com/coolercontrol/coolerd/internal/repository"
)

func TestFileSensorReadsEachTick(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "value")
	if err := os.WriteFile(path, []byte("37.5"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	r := New(WithFileSensors(FileSensor{UID: "f1", Name: "Custom", Channel: "value", Path: path}))
	devices, err := r.Initialize(context.Background())
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if len(devices) != 1 {
		t.Fatalf("expected one device, got %d", len(devices))
	}

	status, err := r.Sample(context.Background(), devices[0])
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if len(status.Temps) != 1 || status.Temps[0].Temp != 37.5 {
		t.Fatalf("expected temp 37.5, got %+v", status.Temps)
	}
}

func TestMixWeightedAvg(t *testing.T) {
	lookup := func(uid, channel string) (float64, bool) {
		switch uid + "/" + channel {
		case "a/cpu":
			return 40, true
		case "b/cpu":
			return 80, true
		}
		return 0, false
	}

	m := MixSensor{
		UID: "mix1", Name: "Mix", Channel: "value", Function: MixWeightedAvg,
		Members: []MemberRef{
			{DeviceUID: "a", Channel: "cpu", Weight: 1},
			{DeviceUID: "b", Channel: "cpu", Weight: 3},
		},
	}

	value, err := evaluateMix(m, lookup)
	if err != nil {
		t.Fatalf("evaluateMix: %v", err)
	}
	if want := (40.0*1 + 80.0*3) / 4; value != want {
		t.Fatalf("expected weighted average %v, got %v", want, value)
	}
}

func TestMixAllMembersAbsent(t *testing.T) {
	lookup := func(uid, channel string) (float64, bool) { return 0, false }
	m := MixSensor{Function: MixAvg, Members: []MemberRef{{DeviceUID: "a", Channel: "cpu"}}}

	if _, err := evaluateMix(m, lookup); err != ErrAllMembersAbsent {
		t.Fatalf("expected ErrAllMembersAbsent, got %v", err)
	}
}

func TestMixMaxSkipsAbsentMember(t *testing.T) {
	lookup := func(uid, channel string) (float64, bool) {
		if uid == "present" {
			return 55, true
		}
		return 0, false
	}
	m := MixSensor{
		Function: MixMax,
		Members: []MemberRef{
			{DeviceUID: "absent", Channel: "cpu"},
			{DeviceUID: "present", Channel: "cpu"},
		},
	}

	value, err := evaluateMix(m, lookup)
	if err != nil {
		t.Fatalf("evaluateMix: %v", err)
	}
	if value != 55 {
		t.Fatalf("expected 55, got %v", value)
	}
}

func TestApplyAlwaysUnsupported(t *testing.T) {
	r := New()
	dev := &device.Device{UID: "f1"}
	if err := r.Apply(context.Background(), dev, repository.ApplyRequest{Channel: "value"}); err == nil {
		t.Fatal("expected ErrUnsupportedChannel")
	}
}
