// SPDX-License-Identifier: BSD-3-Clause

package function

import "math"

// Type identifies a function variant.
type Type string

const (
	TypeIdentity Type = "identity"
	TypeStandard Type = "standard"
	TypeEMA      Type = "ema"
)

// Function is a user-defined post-processing filter, tagged by Type
// with parameters populated only for the matching variant (spec's
// "dynamic dispatch" design note: a tagged union with exhaustive
// switch, no vtables needed).
type Function struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
	Type Type   `json:"type"`

	// Standard parameters.
	ResponseDelayS uint8   `json:"response_delay_s,omitempty"`
	DevianceC      float32 `json:"deviance_c,omitempty"`
	OnlyDownward   bool    `json:"only_downward,omitempty"`

	// EMA parameters.
	SampleWindow uint8   `json:"sample_window,omitempty"`
	TauS         float32 `json:"tau_s,omitempty"`
}

// DefaultFunctionStaleLimit is the number of consecutive missing
// samples after which downstream profile evaluation is skipped for
// the tick. Spec §9 Open Questions leaves this undocumented upstream;
// made configurable here as recommended.
const DefaultFunctionStaleLimit = 10

// State is the per (function UID, channel) evaluation state: a
// bounded window of recent raw samples plus the last emitted output.
// Keyed by the caller (the setting controller keys an instance per
// channel so two channels sharing a function UID do not share state).
type State struct {
	window       []float32
	lastEmitted  float32
	emittedOnce  bool
	missingCount int
}

// NewState creates a fresh, empty evaluation state.
func NewState() *State {
	return &State{}
}

// StaleLimit reports whether the state has missed enough consecutive
// ticks that profile evaluation should be skipped this tick.
func (s *State) StaleLimit(limit int) bool {
	if limit <= 0 {
		limit = DefaultFunctionStaleLimit
	}
	return s.missingCount >= limit
}

// Evaluate advances the function state by one tick and returns the
// processed temperature. present is false when the raw sample is
// missing this tick (spec §4.3 failure mode): the function re-emits
// lastEmitted and advances no other state.
func Evaluate(f *Function, st *State, raw float32, present bool, pollRate float64) (out float32, ok bool) {
	if !present {
		st.missingCount++
		if !st.emittedOnce {
			return 0, false
		}
		return st.lastEmitted, true
	}
	st.missingCount = 0

	switch f.Type {
	case TypeStandard:
		out = evaluateStandard(f, st, raw, pollRate)
	case TypeEMA:
		out = evaluateEMA(f, st, raw, pollRate)
	default: // TypeIdentity and unknown fall through to passthrough.
		out = raw
	}

	st.lastEmitted = out
	st.emittedOnce = true
	return out, true
}

func evaluateStandard(f *Function, st *State, raw float32, pollRate float64) float32 {
	windowSize := int(float64(f.ResponseDelayS) * pollRate)
	if windowSize < 1 {
		windowSize = 1
	}

	if !st.emittedOnce {
		st.window = append(st.window, raw)
		if len(st.window) > windowSize {
			st.window = st.window[len(st.window)-windowSize:]
		}
		return raw
	}

	// candidate is read from the window as it stood before this tick's
	// raw sample is folded in, so it reflects the sample from exactly
	// windowSize ticks ago rather than the current one.
	candidate := st.lastEmitted
	if len(st.window) >= windowSize {
		candidate = st.window[0]
	}

	st.window = append(st.window, raw)
	if len(st.window) > windowSize {
		st.window = st.window[len(st.window)-windowSize:]
	}

	if f.OnlyDownward && raw > st.lastEmitted {
		return raw // instant upward tracking bypasses delay and deadband
	}

	if absf32(candidate-st.lastEmitted) >= f.DevianceC {
		return candidate
	}
	return st.lastEmitted
}

func evaluateEMA(f *Function, st *State, raw float32, pollRate float64) float32 {
	st.window = append(st.window, raw)

	warmup := int(f.SampleWindow)
	if warmup < 1 {
		warmup = 1
	}
	if len(st.window) <= warmup {
		return mean(st.window)
	}

	if len(st.window) > warmup*4 {
		// bound memory; only the warmup tail is ever consulted again
		st.window = st.window[len(st.window)-warmup:]
	}

	if !st.emittedOnce {
		return raw
	}

	deltaT := 1.0 / pollRate
	tau := float64(f.TauS)
	alpha := 1.0
	if tau > 0 {
		alpha = 1 - math.Exp(-deltaT/tau)
	}
	return float32(alpha*float64(raw) + (1-alpha)*float64(st.lastEmitted))
}

func mean(vals []float32) float32 {
	if len(vals) == 0 {
		return 0
	}
	var sum float32
	for _, v := range vals {
		sum += v
	}
	return sum / float32(len(vals))
}

func absf32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
