package pitch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeDetector plays back a scripted sequence of estimates.
type fakeDetector struct {
	estimates []float64
	calls     int
}

func (d *fakeDetector) Detect(samples []float64, sampleRate int) float64 {
	if d.calls >= len(d.estimates) {
		return NoPitch
	}
	hz := d.estimates[d.calls]
	d.calls++
	return hz
}

// frame builds a buffer whose RMS equals the given strength.
func frame(strength float64) []float64 {
	buf := make([]float64, 64)
	for i := range buf {
		buf[i] = strength
	}
	return buf
}

func TestQuietFrameWithoutHoldIsSilent(t *testing.T) {
	tr := NewTracker(&fakeDetector{estimates: []float64{440}})
	got := tr.Sample(frame(0.01), 44100, 0)
	assert.Equal(t, NoPitch, got)
	// The detector must not even be consulted below the gate.
	assert.Equal(t, 0, tr.detector.(*fakeDetector).calls)
}

func TestFirstValidFrameReturnsRawPitch(t *testing.T) {
	tr := NewTracker(&fakeDetector{estimates: []float64{440}})
	got := tr.Sample(frame(0.5), 44100, 0)

	assert := assert.New(t)
	assert.InDelta(440, got, 1e-9)
	assert.InDelta(1, tr.State().Confidence, 1e-9) // min(1, 0.5*10)
}

func TestSmoothingBlendsTowardsNewPitch(t *testing.T) {
	tr := NewTracker(&fakeDetector{estimates: []float64{440, 450}})
	tr.Sample(frame(0.5), 44100, 0)
	got := tr.Sample(frame(0.5), 44100, 16)
	// 440*0.7 + 450*0.3
	assert.InDelta(t, 443, got, 1e-9)
}

func TestOctaveJumpIsDampedNotSnapped(t *testing.T) {
	tr := NewTracker(&fakeDetector{estimates: []float64{440, 880}})
	tr.Sample(frame(0.5), 44100, 0)
	got := tr.Sample(frame(0.5), 44100, 16)

	assert := assert.New(t)
	// An octave is a 12 semitone jump; the smoothed pitch moves only
	// partway there.
	assert.Greater(got, 440.0)
	assert.Less(got, 880.0)
	assert.InDelta(440*0.7+880*0.3, got, 1e-9)
}

func TestHoldBridgesShortDropouts(t *testing.T) {
	tr := NewTracker(&fakeDetector{estimates: []float64{440}})
	valid := tr.Sample(frame(0.5), 44100, 0)

	held := tr.Sample(frame(0.001), 44100, 100)

	assert := assert.New(t)
	assert.InDelta(valid, held, 1e-9)
	// Confidence decays while holding.
	assert.InDelta(0.85, tr.State().Confidence, 1e-9)

	held = tr.Sample(frame(0.001), 44100, 160)
	assert.InDelta(valid, held, 1e-9)
	assert.InDelta(0.85*0.85, tr.State().Confidence, 1e-9)
}

func TestHoldExpires(t *testing.T) {
	tr := NewTracker(&fakeDetector{estimates: []float64{440}})
	tr.Sample(frame(0.5), 44100, 0)

	got := tr.Sample(frame(0.001), 44100, 200)

	assert := assert.New(t)
	assert.Equal(NoPitch, got)
	assert.Equal(State{}, tr.State())
}

func TestConfidenceScalesWithStrength(t *testing.T) {
	tr := NewTracker(&fakeDetector{estimates: []float64{440, 440}})
	tr.Sample(frame(0.05), 44100, 0)
	assert.InDelta(t, 0.5, tr.State().Confidence, 1e-9)
}

func TestHzMidiRoundTrip(t *testing.T) {
	assert := assert.New(t)
	assert.InDelta(69, HzToMidi(440), 1e-9)
	assert.InDelta(60, HzToMidi(MidiToHz(60)), 1e-9)
}

func TestRMS(t *testing.T) {
	assert := assert.New(t)
	assert.InDelta(0, RMS(nil), 1e-9)
	assert.InDelta(0.5, RMS(frame(0.5)), 1e-9)
	assert.InDelta(1, RMS([]float64{1, -1, 1, -1}), 1e-9)
}

func TestRegistryOwnsOneTrackerPerInput(t *testing.T) {
	r := NewRegistry(func() Detector { return &fakeDetector{} })

	a := r.Tracker("mic/left")
	b := r.Tracker("mic/right")
	assert := assert.New(t)
	assert.NotSame(a, b)
	assert.Same(a, r.Tracker("mic/left"))

	r.Remove("mic/left")
	assert.NotSame(a, r.Tracker("mic/left"))
}
