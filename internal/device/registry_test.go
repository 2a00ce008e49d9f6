// SPDX-License-Identifier: BSD-3-Clause

package device

import (
	"testing"
	"time"
)

func TestRegistryListOrdering(t *testing.T) {
	r := NewRegistry(4)
	r.Put(&Device{UID: "b", Type: TypeHwmon, TypeIndex: 1})
	r.Put(&Device{UID: "a", Type: TypeHwmon, TypeIndex: 0})
	r.Put(&Device{UID: "c", Type: TypeCPU, TypeIndex: 0})

	got := r.List()
	if len(got) != 3 {
		t.Fatalf("expected 3 devices, got %d", len(got))
	}
	if got[0].UID != "c" || got[1].UID != "a" || got[2].UID != "b" {
		t.Fatalf("unexpected order: %v %v %v", got[0].UID, got[1].UID, got[2].UID)
	}
}

func TestHistoryRingBounded(t *testing.T) {
	h := NewHistory(3)
	base := time.Now()
	for i := 0; i < 5; i++ {
		h.Append(Status{Timestamp: base.Add(time.Duration(i) * time.Second)})
	}

	all := h.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 retained entries, got %d", len(all))
	}
	// The oldest two entries (i=0,1) should have been evicted.
	if !all[0].Timestamp.Equal(base.Add(2 * time.Second)) {
		t.Fatalf("expected oldest retained entry at i=2, got %v", all[0].Timestamp)
	}
}

func TestHistorySince(t *testing.T) {
	h := NewHistory(10)
	base := time.Now()
	for i := 0; i < 4; i++ {
		h.Append(Status{Timestamp: base.Add(time.Duration(i) * time.Second)})
	}

	since := base.Add(1 * time.Second).UnixNano()
	got := h.Since(since)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries after cutoff, got %d", len(got))
	}
}

func TestDeriveUIDStable(t *testing.T) {
	a := DeriveUID(TypeHwmon, "nct6775", "pci0000:00/0000:00:14.0")
	b := DeriveUID(TypeHwmon, "nct6775", "pci0000:00/0000:00:14.0")
	if a != b {
		t.Fatalf("DeriveUID not deterministic: %s != %s", a, b)
	}
	c := DeriveUID(TypeHwmon, "nct6775", "pci0000:00/0000:00:15.0")
	if a == c {
		t.Fatalf("DeriveUID collided across differing identity tuples")
	}
}
