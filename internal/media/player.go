package media

import "errors"

// ErrLoad means the song's audio is unusable. Fatal to the session;
// the caller picks another song or retries.
var ErrLoad = errors.New("unable to load media")

// Player is the playback boundary. The scoring core does not care how
// audio is decoded or rendered; it only needs the authoritative clock,
// transport control and an end-of-media signal.
type Player interface {
	// PositionMs is the current playback position. It is the single
	// time source the whole session runs on.
	PositionMs() float64
	Play()
	Pause()
	// SeekMs moves the clock. The session layer only ever seeks
	// forward.
	SeekMs(ms float64) error
	// Finished reports end of media.
	Finished() bool
	Close() error
}
