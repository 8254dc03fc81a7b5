package score

import (
	"math"

	"github.com/kiliankoe/encore/internal/game"
	"github.com/kiliankoe/encore/internal/pitch"
)

const (
	PointsPerBeat    = 10
	GoldenMultiplier = 2

	// Singing anything at all during a pitched note is worth a little.
	participationBonus = 0.1
)

// Accuracy bands by octave-folded semitone distance to the target
// pitch class. Near misses earn partial credit.
var bands = []struct {
	Distance float64
	Weight   float64
}{
	{0.5, 1.0},
	{1.5, 0.9},
	{2.5, 0.7},
	{3.5, 0.4},
}

type DefaultScorer struct{}

// MaxPoints for a note. Freestyle notes never contribute.
func (s *DefaultScorer) MaxPoints(note game.Note) int {
	if note.Type == game.Freestyle {
		return 0
	}
	points := note.Length * PointsPerBeat
	if note.Type.IsGolden() {
		points *= GoldenMultiplier
	}
	return int(math.Round(points))
}

func (s *DefaultScorer) MaxScore(notes []game.GameNote) int {
	total := 0
	for _, n := range notes {
		total += s.MaxPoints(n.Note)
	}
	return total
}

func (s *DefaultScorer) ScoreNote(note game.GameNote, samples []game.PitchSample) game.NoteResult {
	result := game.NoteResult{
		NoteIndex: note.Index,
		MaxPoints: s.MaxPoints(note.Note),
		Samples:   samples,
	}

	switch {
	case note.Type == game.Freestyle:
		// Never penalized, never contributes.
		result.Accuracy = 1
		return result
	case note.Type.IsRap():
		result.Accuracy = voicedFraction(samples)
	default:
		result.Accuracy = pitchAccuracy(note.Pitch, samples)
	}

	result.EarnedPoints = int(math.Round(float64(result.MaxPoints) * result.Accuracy))
	return result
}

// voicedFraction scores rap notes: any detected pitch counts, the
// pitch class does not matter.
func voicedFraction(samples []game.PitchSample) float64 {
	if len(samples) == 0 {
		return 0
	}
	voiced := 0
	for _, s := range samples {
		if s.Voiced() {
			voiced++
		}
	}
	return float64(voiced) / float64(len(samples))
}

func pitchAccuracy(target int, samples []game.PitchSample) float64 {
	sum := 0.0
	valid := 0
	for _, s := range samples {
		if !s.Voiced() {
			continue
		}
		valid++
		sum += bandWeight(foldedDistance(target, s.FrequencyHz))
	}
	if valid == 0 {
		return 0
	}
	accuracy := sum/float64(valid) + participationBonus
	return math.Min(1, accuracy)
}

// foldedDistance is the semitone distance between a sung frequency
// and a target pitch class, with octaves folded away (range [0, 6]).
func foldedDistance(target int, hz float64) float64 {
	sung := pitch.HzToMidi(hz)
	want := 60.0 + float64(target) // chart pitch 0 = middle C
	d := math.Mod(math.Abs(sung-want), 12)
	if d > 6 {
		d = 12 - d
	}
	return d
}

func bandWeight(distance float64) float64 {
	for _, b := range bands {
		if distance <= b.Distance {
			return b.Weight
		}
	}
	return 0
}
