package score

import "github.com/kiliankoe/encore/internal/game"

type Scorer interface {
	// ScoreNote converts the pitch samples accumulated over one note's
	// window into a bounded point result.
	ScoreNote(note game.GameNote, samples []game.PitchSample) game.NoteResult

	// MaxScore is the highest total a perfect performance can reach.
	MaxScore(notes []game.GameNote) int
}
