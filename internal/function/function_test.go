// SPDX-License-Identifier: BSD-3-Clause

package function

import "testing"

func TestIdentityPassthrough(t *testing.T) {
	f := &Function{Type: TypeIdentity}
	st := NewState()
	out, ok := Evaluate(f, st, 42.0, true, 1.0)
	if !ok || out != 42.0 {
		t.Fatalf("identity: got (%v, %v), want (42, true)", out, ok)
	}
}

func TestStandardHysteresisWithinDeviance(t *testing.T) {
	f := &Function{Type: TypeStandard, ResponseDelayS: 1, DevianceC: 2.0}
	st := NewState()

	Evaluate(f, st, 50.0, true, 1.0) // seed last_emitted = 50
	for _, sample := range []float32{50.5, 49.6, 50.9, 49.2} {
		out, ok := Evaluate(f, st, sample, true, 1.0)
		if !ok || out != 50.0 {
			t.Fatalf("expected re-emit of 50.0 under deviance, got %v (ok=%v) for sample %v", out, ok, sample)
		}
	}
}

func TestStandardDelaysExactlyResponseDelayTicks(t *testing.T) {
	f := &Function{Type: TypeStandard, ResponseDelayS: 1, DevianceC: 5.0}
	st := NewState()

	Evaluate(f, st, 50.0, true, 1.0) // seed last_emitted = 50
	out, ok := Evaluate(f, st, 40.0, true, 1.0)
	if !ok || out != 50.0 {
		t.Fatalf("expected the step to still be withheld one tick after it occurs, got %v (ok=%v)", out, ok)
	}
	out, ok = Evaluate(f, st, 40.0, true, 1.0)
	if !ok || out != 40.0 {
		t.Fatalf("expected the step to take effect after exactly response_delay_s/poll_rate ticks, got %v (ok=%v)", out, ok)
	}
}

func TestStandardOnlyDownwardInstantUp(t *testing.T) {
	f := &Function{Type: TypeStandard, ResponseDelayS: 2, DevianceC: 1.0, OnlyDownward: true}
	st := NewState()

	Evaluate(f, st, 40.0, true, 1.0) // seed last_emitted = 40
	out, ok := Evaluate(f, st, 60.0, true, 1.0)
	if !ok || out != 60.0 {
		t.Fatalf("expected immediate upward tracking to 60, got %v (ok=%v)", out, ok)
	}
}

func TestStandardMissingSampleReemits(t *testing.T) {
	f := &Function{Type: TypeStandard, ResponseDelayS: 1, DevianceC: 1.0}
	st := NewState()

	Evaluate(f, st, 45.0, true, 1.0)
	out, ok := Evaluate(f, st, 0, false, 1.0)
	if !ok || out != 45.0 {
		t.Fatalf("expected re-emit of last_emitted on missing sample, got %v (ok=%v)", out, ok)
	}
}

func TestEMAConvergesTowardTarget(t *testing.T) {
	f := &Function{Type: TypeEMA, SampleWindow: 0, TauS: 0}
	st := NewState()

	out, ok := Evaluate(f, st, 30.0, true, 1.0)
	if !ok || out != 30.0 {
		t.Fatalf("first EMA sample should equal input with warmup, got %v", out)
	}
	out, ok = Evaluate(f, st, 60.0, true, 1.0)
	// With tau=0, alpha defaults to 1.0 (no smoothing), tracking instantly.
	if !ok || out != 60.0 {
		t.Fatalf("expected instant tracking with tau=0, got %v", out)
	}
}
