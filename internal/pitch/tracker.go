package pitch

import "math"

const (
	// MinConfidenceThreshold gates frames on RMS signal strength.
	MinConfidenceThreshold = 0.02
	// MaxSemitoneJump is the largest interval between consecutive
	// estimates still trusted as a real note change.
	MaxSemitoneJump = 3.0
	// SmoothingFactor blends the raw estimate into the smoothed pitch.
	SmoothingFactor = 0.3
	// PitchHoldTimeMs bridges brief dropouts (sibilants, breaths).
	PitchHoldTimeMs = 180.0
	// PitchHoldDecayRate shrinks confidence per held frame.
	PitchHoldDecayRate = 0.85
)

// State is the per-input filter state. It is a plain value so it can
// be snapshotted and compared in tests.
type State struct {
	LastPitchHz          float64
	LastMidiNote         float64
	SmoothedPitchHz      float64
	LastValidPitchTimeMs float64
	HoldPitchHz          float64
	Confidence           float64
	HasPitch             bool
	HasHold              bool
}

// Tracker fuses raw per-frame estimates from a Detector into a stable
// pitch signal: RMS gating, semitone-jump damping, exponential
// smoothing and a short hold window. One Tracker per scorable input;
// trackers never interact.
type Tracker struct {
	detector Detector
	state    State
}

func NewTracker(d Detector) *Tracker {
	return &Tracker{detector: d}
}

func (t *Tracker) State() State {
	return t.state
}

// Sample processes one raw frame and returns the smoothed pitch in Hz,
// or NoPitch. Called once per orchestrator tick with the tick's clock
// reading.
func (t *Tracker) Sample(buf []float64, sampleRate int, nowMs float64) float64 {
	strength := RMS(buf)
	hz := NoPitch
	if strength >= MinConfidenceThreshold {
		hz = t.detector.Detect(buf, sampleRate)
	}

	if hz > 0 {
		return t.track(hz, strength, nowMs)
	}

	// No usable pitch this frame. Hold the previous value for a short
	// grace period before giving up on it.
	if t.state.HasHold && nowMs-t.state.LastValidPitchTimeMs < PitchHoldTimeMs {
		t.state.Confidence *= PitchHoldDecayRate
		return t.state.HoldPitchHz
	}
	t.state = State{}
	return NoPitch
}

func (t *Tracker) track(hz, strength, nowMs float64) float64 {
	midi := HzToMidi(hz)
	switch {
	case !t.state.HasPitch:
		t.state.SmoothedPitchHz = hz
	case math.Abs(midi-t.state.LastMidiNote) > MaxSemitoneJump:
		// Big hops are usually octave errors from the detector. A real
		// interval change still pulls the smoothed value over within a
		// few frames.
		t.state.SmoothedPitchHz = t.state.SmoothedPitchHz*(1-SmoothingFactor) + hz*SmoothingFactor
	default:
		t.state.SmoothedPitchHz = t.state.SmoothedPitchHz*(1-SmoothingFactor) + hz*SmoothingFactor
	}

	t.state.LastPitchHz = hz
	t.state.LastMidiNote = midi
	t.state.HasPitch = true
	t.state.LastValidPitchTimeMs = nowMs
	t.state.HoldPitchHz = t.state.SmoothedPitchHz
	t.state.HasHold = true
	t.state.Confidence = math.Min(1, strength*10)
	return t.state.SmoothedPitchHz
}

// Registry owns all tracker state, keyed by scorable input id. The
// flat table keeps ownership explicit: exactly one Tracker per input,
// created on first use.
type Registry struct {
	detector func() Detector
	trackers map[string]*Tracker
}

func NewRegistry(detector func() Detector) *Registry {
	return &Registry{
		detector: detector,
		trackers: map[string]*Tracker{},
	}
}

// Tracker returns the tracker for an input, creating it if needed.
func (r *Registry) Tracker(inputID string) *Tracker {
	t, ok := r.trackers[inputID]
	if !ok {
		t = NewTracker(r.detector())
		r.trackers[inputID] = t
	}
	return t
}

// Remove drops an input's tracker, e.g. after its stream disconnects.
func (r *Registry) Remove(inputID string) {
	delete(r.trackers, inputID)
}
