// Package melody turns a chart track into a Standard MIDI File so the
// tune can be previewed or practiced without the recording.
package melody

import (
	"io"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/kiliankoe/encore/internal/game"
)

const ticksPerQuarter = 960

// Chart beats are quarter beats, so four of them per MIDI quarter
// note when the MIDI tempo equals the chart's nominal BPM.
const ticksPerChartBeat = ticksPerQuarter / 4

const middleC = 60

type event struct {
	tick uint32
	msg  midi.Message
}

// Export writes one track's pitched notes as a single-track SMF.
// Freestyle and rap notes carry no meaningful pitch and are skipped.
func Export(w io.Writer, c *game.Chart, name string) error {
	gapTicks := uint32(math.Round(c.GapMs / (60000.0 / c.Bpm) * ticksPerQuarter))

	events := []event{}
	for _, n := range c.Notes {
		if n.Type == game.Freestyle || n.Type.IsRap() {
			continue
		}
		key := middleC + n.Pitch
		if key < 0 || key > 127 {
			continue
		}
		on := gapTicks + uint32(math.Round(n.StartBeat*ticksPerChartBeat))
		off := gapTicks + uint32(math.Round((n.StartBeat+n.Length)*ticksPerChartBeat))
		velocity := uint8(96)
		if n.Type.IsGolden() {
			velocity = 120
		}
		events = append(events,
			event{tick: on, msg: midi.NoteOn(0, uint8(key), velocity)},
			event{tick: off, msg: midi.NoteOff(0, uint8(key))},
		)
	}
	// Note-offs sort before note-ons at the same tick so adjacent
	// notes on the same key do not merge.
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].msg.Is(midi.NoteOffMsg) && events[j].msg.Is(midi.NoteOnMsg)
	})

	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName(name))
	tr.Add(0, smf.MetaTempo(c.Bpm))
	last := uint32(0)
	for _, e := range events {
		tr.Add(e.tick-last, e.msg)
		last = e.tick
	}
	tr.Close(0)

	var s smf.SMF
	s.TimeFormat = smf.MetricTicks(ticksPerQuarter)
	s.Tracks = append(s.Tracks, tr)
	_, err := s.WriteTo(w)
	return err
}
