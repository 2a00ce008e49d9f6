// SPDX-License-Identifier: BSD-3-Clause

package alert

import (
	"context"
	"testing"
	"time"
)

type staticLookup struct{ value float64 }

func (s staticLookup) Value(deviceUID, channel string, metric Metric) (float64, bool) {
	return s.value, true
}

func TestHysteresisSequence(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(0)
	a := &Alert{UID: "a1", DeviceUID: "d1", Channel: "temp1", Metric: MetricTemp, Min: 30, Max: 70, Hysteresis: 2}
	if err := e.Put(ctx, a); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// sequence 25,29,31,50,68,71,70,69,68 per spec §8.2 item 4:
	// Active at 25; stays Active through 29,31 (31 < min+hyst=32); Inactive at 50;
	// Active at 71; Inactive at 68.
	type step struct {
		value float64
		want  string
	}
	steps := []step{
		{25, "active"},
		{29, "active"},
		{31, "active"}, // 31 < 32, not yet recovered
		{50, "inactive"},
		{68, "inactive"},
		{71, "active"},
		{70, "active"},
		{69, "active"},
		{68, "inactive"},
	}

	for i, st := range steps {
		e.Tick(ctx, staticLookup{st.value}, time.Unix(int64(i), 0))
		_, got, _ := e.Get("a1")
		if got != st.want {
			t.Fatalf("step %d (value=%v): got state %q, want %q", i, st.value, got, st.want)
		}
	}
}

func TestAbsentMetricIgnored(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(0)
	a := &Alert{UID: "a1", DeviceUID: "d1", Channel: "temp1", Metric: MetricTemp, Min: 30, Max: 70, Hysteresis: 2}
	if err := e.Put(ctx, a); err != nil {
		t.Fatalf("Put: %v", err)
	}

	fired := e.Tick(ctx, absentLookup{}, time.Now())
	if len(fired) != 0 {
		t.Fatalf("expected no transitions on absent metric, got %+v", fired)
	}
	_, got, _ := e.Get("a1")
	if got != "inactive" {
		t.Fatalf("expected state to remain inactive, got %q", got)
	}
}

type absentLookup struct{}

func (absentLookup) Value(deviceUID, channel string, metric Metric) (float64, bool) { return 0, false }
