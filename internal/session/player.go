package session

import (
	"github.com/kiliankoe/encore/internal/game"
	"github.com/kiliankoe/encore/internal/input"
	"github.com/kiliankoe/encore/internal/pitch"
)

// Samples older than this fall out of a player's pitch history.
const historyWindowMs = 5000.0

// Player is one singer: a scorable input bound to a track, with its
// running score and per-note results. Lives from AddPlayer until
// removal or the end of the session.
type Player struct {
	ID    int
	Name  string
	Track int // 1 or 2

	Score   int
	Results map[int]game.NoteResult

	// History is a rolling window of tracked samples, newest last.
	History []game.PitchSample

	in      *input.ScorableInput
	tracker *pitch.Tracker
	frame   []float64

	// Samples accumulated for the note currently in flight.
	pendingNote *game.GameNote
	pending     []game.PitchSample
}

func (p *Player) Input() *input.ScorableInput {
	return p.in
}

// Confidence of the player's current tracked pitch, 0..1.
func (p *Player) Confidence() float64 {
	return p.tracker.State().Confidence
}

func (p *Player) recordHistory(sample game.PitchSample, nowMs float64) {
	p.History = append(p.History, sample)
	cut := 0
	for cut < len(p.History) && p.History[cut].TimeMs < nowMs-historyWindowMs {
		cut++
	}
	p.History = p.History[cut:]
}
