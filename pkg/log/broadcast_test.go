// SPDX-License-Identifier: BSD-3-Clause

package log

import (
	"testing"
	"time"
)

func TestRingTailOrdersOldestFirstAndWraps(t *testing.T) {
	r := newRing(3)
	for i := 0; i < 5; i++ {
		r.push(Entry{Message: string(rune('a' + i)), Time: time.Unix(int64(i), 0)})
	}

	tail := r.tail()
	if len(tail) != 3 {
		t.Fatalf("expected ring capped at 3 entries, got %d", len(tail))
	}
	want := []string{"c", "d", "e"}
	for i, e := range tail {
		if e.Message != want[i] {
			t.Fatalf("tail[%d] = %q, want %q", i, e.Message, want[i])
		}
	}
}

func TestRingTailBeforeFull(t *testing.T) {
	r := newRing(5)
	r.push(Entry{Message: "only"})

	tail := r.tail()
	if len(tail) != 1 || tail[0].Message != "only" {
		t.Fatalf("expected single entry tail, got %+v", tail)
	}
}

func TestSubscribeReceivesPushedEntries(t *testing.T) {
	r := newRing(8)
	ch, cancel := r.subscribe()
	defer cancel()

	r.push(Entry{Message: "hello"})

	select {
	case e := <-ch:
		if e.Message != "hello" {
			t.Fatalf("got message %q, want hello", e.Message)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for subscribed entry")
	}
}

func TestSubscribeCancelStopsDelivery(t *testing.T) {
	r := newRing(8)
	ch, cancel := r.subscribe()
	cancel()

	r.push(Entry{Message: "after cancel"})

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected no delivery after cancel")
		}
	case <-time.After(50 * time.Millisecond):
	}
}
