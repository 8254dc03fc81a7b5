package game

// NoPitch is the sentinel frequency for "nothing detected this frame".
// Samples carrying it never match a pitch, but still count as present
// for rap notes.
const NoPitch = -1.0

type PitchSample struct {
	TimeMs      float64
	FrequencyHz float64
}

// Voiced reports whether any pitch at all was detected.
func (s PitchSample) Voiced() bool {
	return s.FrequencyHz > 0
}

// NoteResult is produced exactly once per note per player, when the
// note's time window closes.
type NoteResult struct {
	NoteIndex    int
	MaxPoints    int
	EarnedPoints int
	Accuracy     float64 // 0..1
	Samples      []PitchSample
}
