package game

type NoteType int

const (
	Normal NoteType = iota
	Golden
	Freestyle
	Rap
	GoldenRap
)

// IsGolden reports whether notes of this type award double points.
func (t NoteType) IsGolden() bool {
	return t == Golden || t == GoldenRap
}

// IsRap reports whether notes of this type score on voiced presence
// rather than pitch accuracy.
func (t NoteType) IsRap() bool {
	return t == Rap || t == GoldenRap
}

func (t NoteType) String() string {
	switch t {
	case Normal:
		return "normal"
	case Golden:
		return "golden"
	case Freestyle:
		return "freestyle"
	case Rap:
		return "rap"
	case GoldenRap:
		return "goldenrap"
	}
	return "unknown"
}

// Note as loaded from a chart, in the beat domain.
type Note struct {
	Type      NoteType
	StartBeat float64
	Length    float64 // in beats
	Pitch     int     // signed semitone offset, 0 = middle C
	Text      string
}

// LineBreak marks a phrase boundary between two notes.
type LineBreak struct {
	StartBeat float64
	EndBeat   *float64
}
