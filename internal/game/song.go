package game

// Song bundles a chart per singing track with the metadata needed to
// play it. Tracks[0] is always present; Tracks[1] only for duets.
type Song struct {
	Title  string
	Artist string

	Genre    string
	Year     int
	Language string
	Edition  string
	Creator  string

	DuetSingerP1 string
	DuetSingerP2 string

	AudioFile      string
	VideoFile      string
	CoverFile      string
	BackgroundFile string
	VideoGapMs     float64

	Tracks []*Chart
}

func (s *Song) IsDuet() bool {
	return len(s.Tracks) > 1
}
