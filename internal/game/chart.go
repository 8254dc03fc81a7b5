package game

// Chart is the beat-indexed note timeline for one singing track.
// Track 1 is always present; track 2 only for duets.
type Chart struct {
	Notes      []Note
	LineBreaks []LineBreak
	Bpm        float64
	GapMs      float64
}

// MsPerBeat converts the chart's native beat unit to milliseconds.
// Chart BPM counts quarter beats, hence the *4.
func (c *Chart) MsPerBeat() float64 {
	return 60000.0 / (c.Bpm * 4.0)
}
