// SPDX-License-Identifier: BSD-3-Clause

package profile

import "testing"

type staticResolver map[string]*Profile

func (r staticResolver) Resolve(uid string) (*Profile, bool) {
	p, ok := r[uid]
	return p, ok
}

func TestGraphBreakpointsExact(t *testing.T) {
	p := &Profile{Type: TypeGraph, MaxDuty: 100, SpeedProfile: []Point{{30, 20}, {60, 80}}}

	for _, tc := range []struct {
		temp float32
		want int
	}{
		{30, 20},
		{60, 80},
		{45, 50},
		{10, 20},  // clamp below first
		{100, 80}, // clamp above last
	} {
		got, err := Evaluate(p, tc.temp, nil)
		if err != nil {
			t.Fatalf("unexpected error at temp %v: %v", tc.temp, err)
		}
		if got == nil || *got != tc.want {
			t.Fatalf("temp %v: got %v, want %v", tc.temp, got, tc.want)
		}
	}
}

func TestGraphMonotoneInterpolation(t *testing.T) {
	p := &Profile{Type: TypeGraph, MaxDuty: 100, SpeedProfile: []Point{{20, 10}, {40, 40}, {80, 90}}}

	prev, _ := Evaluate(p, 20, nil)
	for _, temp := range []float32{25, 30, 40, 55, 70, 80} {
		cur, err := Evaluate(p, temp, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if *cur < *prev {
			t.Fatalf("non-monotone: temp %v gave %v after previous %v", temp, *cur, *prev)
		}
		prev = cur
	}
}

func TestValidateGraphRejectsNonAscending(t *testing.T) {
	if err := ValidateGraph([]Point{{30, 20}, {30, 40}}); err != ErrNonAscendingPoints {
		t.Fatalf("expected ErrNonAscendingPoints, got %v", err)
	}
	if err := ValidateGraph([]Point{{50, 20}}); err != ErrTooFewPoints {
		t.Fatalf("expected ErrTooFewPoints, got %v", err)
	}
}

func TestMixMaxWithNoneMember(t *testing.T) {
	a := &Profile{UID: "a", Type: TypeFixed, SpeedFixed: 50, MaxDuty: 100}
	b := &Profile{UID: "b", Type: TypeFixed, SpeedFixed: 70, MaxDuty: 100}
	none := &Profile{UID: "none", Type: TypeDefault}

	mix := &Profile{Type: TypeMix, MixFunctionType: MixMax, MemberProfileUIDs: []string{"a", "b"}, MaxDuty: 100}
	resolver := staticResolver{"a": a, "b": b}

	got, err := Evaluate(mix, 40, resolver)
	if err != nil || got == nil || *got != 70 {
		t.Fatalf("expected max(50,70)=70, got %v (err=%v)", got, err)
	}

	mix.MemberProfileUIDs = []string{"none", "a"}
	resolver["none"] = none
	got, err = Evaluate(mix, 40, resolver)
	if err != nil || got == nil || *got != 50 {
		t.Fatalf("expected None skipped, max(50)=50, got %v (err=%v)", got, err)
	}
}

func TestMixAllNoneYieldsNone(t *testing.T) {
	none := &Profile{UID: "none", Type: TypeDefault}
	mix := &Profile{Type: TypeMix, MixFunctionType: MixAvg, MemberProfileUIDs: []string{"none"}}
	resolver := staticResolver{"none": none}

	got, err := Evaluate(mix, 40, resolver)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil result when all members are None, got %v", *got)
	}
}

func TestDefaultProfileReturnsNone(t *testing.T) {
	p := &Profile{Type: TypeDefault}
	got, err := Evaluate(p, 50, nil)
	if err != nil || got != nil {
		t.Fatalf("expected (nil, nil), got (%v, %v)", got, err)
	}
}
