package session

import "github.com/kiliankoe/encore/internal/game"

// Events are queued by the session and drained by the caller once per
// tick (or via Drain between ticks). The core never calls back into
// the consumer; ordering within the queue is tick order.
type Event interface {
	event()
}

// StateChanged is emitted on every state machine transition.
type StateChanged struct {
	State State
}

// TimeUpdated carries the clock reading of a tick.
type TimeUpdated struct {
	TimeMs float64
}

// PhraseChanged is emitted when a track's current phrase changes.
// Phrase is nil between phrases.
type PhraseChanged struct {
	Track  int
	Phrase *game.Phrase
}

// NoteScored is emitted when a note's window closes for a player.
type NoteScored struct {
	PlayerID int
	Result   game.NoteResult
	Score    int // the player's running total after this note
}

// PitchUpdated carries one player's tracked pitch sample for a tick.
type PitchUpdated struct {
	PlayerID int
	Sample   game.PitchSample
}

func (StateChanged) event()  {}
func (TimeUpdated) event()   {}
func (PhraseChanged) event() {}
func (NoteScored) event()    {}
func (PitchUpdated) event()  {}
