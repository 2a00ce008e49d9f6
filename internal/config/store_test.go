// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/coolercontrol/coolerd/internal/profile"
)

func TestOpenBootstrapsDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.General().PollRate != 1.0 {
		t.Fatalf("expected default poll rate 1.0, got %v", s.General().PollRate)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	p := &profile.Profile{
		UID:          "p1",
		Name:         "CPU curve",
		Type:         profile.TypeGraph,
		SpeedProfile: []profile.Point{{TempC: 30, Duty: 20}, {TempC: 60, Duty: 80}},
		FunctionUID:  "fn1",
		TempSource:   &profile.TempSource{DeviceUID: "hwmon-1", TempName: "cpu"},
	}
	if err := s.PutProfile(p); err != nil {
		t.Fatalf("PutProfile: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got := reopened.Profiles()
	if len(got) != 1 {
		t.Fatalf("expected 1 profile after reopen, got %d", len(got))
	}
	if got[0].UID != p.UID || got[0].Type != p.Type || len(got[0].SpeedProfile) != 2 {
		t.Fatalf("round-tripped profile mismatch: %+v", got[0])
	}
	if got[0].TempSource == nil || got[0].TempSource.DeviceUID != "hwmon-1" {
		t.Fatalf("temp source not preserved: %+v", got[0].TempSource)
	}
}

func TestUnknownFieldsPreservedAcrossSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	handEdited := `
version = 1
experimental_flag = true

[general]
poll_rate = 1.0
future_tunable = "wip"

[[profiles]]
uid = "p1"
name = "CPU curve"
type = "graph"
notes = "tuned by hand, do not touch"
`
	if err := os.WriteFile(path, []byte(handEdited), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	// An unrelated write elsewhere in the document must not drop the
	// fields this build's schema doesn't know about.
	if err := s.SaveGeneral(s.General()); err != nil {
		t.Fatalf("SaveGeneral: %v", err)
	}

	saved, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	for _, want := range []string{"experimental_flag", "future_tunable", `notes = "tuned by hand, do not touch"`} {
		if !strings.Contains(string(saved), want) {
			t.Fatalf("expected saved config to retain %q, got:\n%s", want, saved)
		}
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	profiles := reopened.Profiles()
	if len(profiles) != 1 || profiles[0].UID != "p1" {
		t.Fatalf("expected the hand-edited profile to still decode, got %+v", profiles)
	}
}

func TestCredentialsBootstrapAndVerify(t *testing.T) {
	path := filepath.Join(t.TempDir(), "passwd")
	c, err := LoadOrCreateCredentials(path)
	if err != nil {
		t.Fatalf("LoadOrCreateCredentials: %v", err)
	}
	if !c.VerifyPassword(DefaultPassword) {
		t.Fatalf("expected default password to verify")
	}
	if c.VerifyPassword("wrong") {
		t.Fatalf("expected wrong password to fail verification")
	}

	if err := c.SetPassword("new-password"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if !c.VerifyPassword("new-password") {
		t.Fatalf("expected new password to verify after SetPassword")
	}

	reloaded, err := LoadOrCreateCredentials(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.VerifyPassword("new-password") {
		t.Fatalf("expected reloaded credentials to verify the saved password")
	}
}
