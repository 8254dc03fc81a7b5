package main

import (
	"math"

	"github.com/kiliankoe/encore/internal/game"
	"github.com/kiliankoe/encore/internal/input"
	"github.com/kiliankoe/encore/internal/pitch"
)

const demoSampleRate = 44100

// demoOpener synthesizes singers so the whole scoring pipeline can be
// exercised without microphone hardware. Each channel hums a sine
// wave tracking its track's current note, slightly detuned by the
// wobble flag.
type demoOpener struct {
	timelines []*game.Timeline
	clock     func() float64
	wobble    float64
}

func (o *demoOpener) Open(device string, channels int) (input.CaptureStream, error) {
	return &demoStream{
		opener:   o,
		device:   device,
		channels: channels,
		phase:    make([]float64, channels),
	}, nil
}

// timeline picks the track a synthetic channel sings, mirroring the
// session's default player assignment: second singer takes track 2
// of a duet, everyone else track 1.
func (o *demoOpener) timeline(singer int) *game.Timeline {
	if singer == 1 && len(o.timelines) > 1 {
		return o.timelines[1]
	}
	return o.timelines[0]
}

type demoStream struct {
	opener   *demoOpener
	device   string
	channels int
	phase    []float64
}

func (s *demoStream) ReadFrame(channel int, buf []float64) error {
	singer := channel
	if s.channels == 1 {
		singer = singerIndex(s.device)
	}
	tl := s.opener.timeline(singer)

	nowMs := s.opener.clock()
	note := tl.CurrentNote(nowMs)
	if nil == note || note.Type == game.Freestyle {
		for i := range buf {
			buf[i] = 0
		}
		return nil
	}

	// Slow vibrato around the target pitch, wobble semitones wide.
	midi := 60 + float64(note.Pitch) + s.opener.wobble*math.Sin(nowMs/300)
	step := 2 * math.Pi * pitch.MidiToHz(midi) / demoSampleRate
	for i := range buf {
		buf[i] = 0.25 * math.Sin(s.phase[channel])
		s.phase[channel] += step
	}
	return nil
}

func (s *demoStream) SampleRate() int {
	return demoSampleRate
}

func (s *demoStream) Close() error {
	return nil
}

// singerIndex maps "demo-3" to 3.
func singerIndex(device string) int {
	n, place := 0, 1
	for i := len(device) - 1; i >= 0; i-- {
		if device[i] < '0' || device[i] > '9' {
			break
		}
		n += place * int(device[i]-'0')
		place *= 10
	}
	return n
}

// zeroCrossingDetector is a deliberately naive stand-in for a real
// pitch estimator. It counts sign changes, which is accurate for the
// clean sine waves demo singers produce and nothing else.
type zeroCrossingDetector struct{}

func (d *zeroCrossingDetector) Detect(samples []float64, sampleRate int) float64 {
	if len(samples) < 2 {
		return pitch.NoPitch
	}
	crossings := 0
	for i := 1; i < len(samples); i++ {
		if (samples[i-1] < 0) != (samples[i] < 0) {
			crossings++
		}
	}
	if crossings < 2 {
		return pitch.NoPitch
	}
	seconds := float64(len(samples)) / float64(sampleRate)
	return float64(crossings) / 2 / seconds
}
