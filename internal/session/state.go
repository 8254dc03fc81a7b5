package session

import "errors"

// ErrIllegalState flags API misuse, e.g. Start on a finished session.
// Programmer error, not user-recoverable.
var ErrIllegalState = errors.New("illegal session state")

type State int

const (
	Idle State = iota
	Loading
	Ready
	Playing
	Paused
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	}
	return "unknown"
}
