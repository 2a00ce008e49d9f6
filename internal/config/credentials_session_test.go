// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestIssueAndVerifySession(t *testing.T) {
	c, err := LoadOrCreateCredentials(filepath.Join(t.TempDir(), "passwd"))
	if err != nil {
		t.Fatalf("LoadOrCreateCredentials: %v", err)
	}

	token, expiresAt, err := c.IssueSession(time.Hour)
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}
	if expiresAt.Before(time.Now()) {
		t.Fatalf("expected expiry in the future, got %v", expiresAt)
	}
	if !c.VerifySession(token) {
		t.Fatalf("expected freshly issued session to verify")
	}
}

func TestVerifySessionRejectsExpired(t *testing.T) {
	c, err := LoadOrCreateCredentials(filepath.Join(t.TempDir(), "passwd"))
	if err != nil {
		t.Fatalf("LoadOrCreateCredentials: %v", err)
	}

	token, _, err := c.IssueSession(-time.Second)
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}
	if c.VerifySession(token) {
		t.Fatalf("expected already-expired session to fail verification")
	}
}

func TestVerifySessionRejectsTamperedToken(t *testing.T) {
	c, err := LoadOrCreateCredentials(filepath.Join(t.TempDir(), "passwd"))
	if err != nil {
		t.Fatalf("LoadOrCreateCredentials: %v", err)
	}

	token, _, err := c.IssueSession(time.Hour)
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}
	tampered := token[:len(token)-1] + "0"
	if tampered == token {
		tampered = token[:len(token)-1] + "1"
	}
	if c.VerifySession(tampered) {
		t.Fatalf("expected tampered session to fail verification")
	}

	other, err := LoadOrCreateCredentials(filepath.Join(t.TempDir(), "passwd"))
	if err != nil {
		t.Fatalf("LoadOrCreateCredentials: %v", err)
	}
	if other.VerifySession(token) {
		t.Fatalf("expected session signed by a different key to fail verification")
	}
}

func TestVerifySessionRejectsMalformedToken(t *testing.T) {
	c, err := LoadOrCreateCredentials(filepath.Join(t.TempDir(), "passwd"))
	if err != nil {
		t.Fatalf("LoadOrCreateCredentials: %v", err)
	}
	for _, bad := range []string{"", "onlyonepart", "two.parts", "a.b.c.d"} {
		if c.VerifySession(bad) {
			t.Fatalf("expected malformed token %q to fail verification", bad)
		}
	}
}
