// SPDX-License-Identifier: BSD-3-Clause

package thinkpad

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/coolercontrol/coolerd/internal/device"
	"github.com/coolercontrol/coolerd/internal/repository"
)

func newFixtureRepo(t *testing.T) (*Repository, string, string) {
	t.Helper()
	dir := t.TempDir()
	pwmPath := filepath.Join(dir, "pwm1")
	enablePath := filepath.Join(dir, "pwm1_enable")
	tempPath := filepath.Join(dir, "temp1_input")
	for path, content := range map[string]string{
		pwmPath:    "128",
		enablePath: "2",
		tempPath:   "45000",
	} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile(%s): %v", path, err)
		}
	}

	r := New()
	r.uid = "thinkpad-0"
	r.pwmPath = pwmPath
	r.pwmEnable = enablePath
	r.tempPaths = map[string]string{"temp1": tempPath}
	r.controlOn = true
	return r, pwmPath, enablePath
}

func TestSampleReadsFanAndTemp(t *testing.T) {
	r, _, _ := newFixtureRepo(t)
	dev := &device.Device{
		UID: "thinkpad-0",
		Info: map[string]device.ChannelInfo{
			fanChannel: {Speed: &device.SpeedOptions{MaxDuty: 100}},
			"temp1":    {},
		},
	}

	status, err := r.Sample(context.Background(), dev)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if len(status.Channels) != 1 || status.Channels[0].Name != fanChannel {
		t.Fatalf("expected one fan channel reading, got %+v", status.Channels)
	}
	if len(status.Temps) != 1 || status.Temps[0].Name != "temp1" || status.Temps[0].Temp != 45 {
		t.Fatalf("expected temp1=45, got %+v", status.Temps)
	}
}

func TestApplyRejectsOutOfRangeDuty(t *testing.T) {
	r, _, _ := newFixtureRepo(t)
	dev := &device.Device{UID: "thinkpad-0"}
	duty := 150
	err := r.Apply(context.Background(), dev, repository.ApplyRequest{Channel: fanChannel, Duty: &duty})
	if err == nil {
		t.Fatal("expected ErrOutOfRange for duty 150")
	}
}

func TestApplyRespectsFanControlDisabled(t *testing.T) {
	r, _, _ := newFixtureRepo(t)
	r.controlOn = false
	dev := &device.Device{UID: "thinkpad-0"}
	duty := 50
	err := r.Apply(context.Background(), dev, repository.ApplyRequest{Channel: fanChannel, Duty: &duty})
	if err != ErrFanControlDisabled {
		t.Fatalf("expected ErrFanControlDisabled, got %v", err)
	}
}

func TestSetFullSpeedWritesProcFile(t *testing.T) {
	dir := t.TempDir()
	fanFile := filepath.Join(dir, "fan")
	if err := os.WriteFile(fanFile, []byte(""), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	r := New(WithProcFanPath(fanFile))
	if err := r.SetFullSpeed(context.Background(), true); err != nil {
		t.Fatalf("SetFullSpeed: %v", err)
	}
	if !r.FullSpeed() {
		t.Fatal("expected FullSpeed() to report true after SetFullSpeed(true)")
	}

	got, err := os.ReadFile(fanFile)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "level full-speed" {
		t.Fatalf("expected %q written to proc fan file, got %q", "level full-speed", got)
	}
}
