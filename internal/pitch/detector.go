package pitch

import "math"

// BufferSize is the analysis window a Tracker hands to its Detector.
const BufferSize = 2048

// NoPitch is returned when no fundamental frequency was detected.
const NoPitch = -1.0

// Detector is the external pitch-estimation primitive. It takes one
// single-channel audio frame and returns a fundamental frequency in
// Hz, or NoPitch. How it estimates (autocorrelation, MPM, ...) is the
// implementation's business.
type Detector interface {
	Detect(samples []float64, sampleRate int) float64
}

// HzToMidi converts a frequency to a fractional MIDI note number
// (A4 = 440 Hz = 69).
func HzToMidi(hz float64) float64 {
	return 69 + 12*math.Log2(hz/440.0)
}

// MidiToHz is the inverse of HzToMidi.
func MidiToHz(midi float64) float64 {
	return 440.0 * math.Pow(2, (midi-69)/12)
}

// RMS is the root mean square signal strength of a frame.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}
