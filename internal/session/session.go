package session

import (
	"fmt"

	"github.com/kiliankoe/encore/internal/game"
	"github.com/kiliankoe/encore/internal/input"
	"github.com/kiliankoe/encore/internal/media"
	"github.com/kiliankoe/encore/internal/pitch"
	"github.com/kiliankoe/encore/internal/score"
)

// Session drives one performance: it owns the authoritative clock
// (delegated to the media player), the players, one timeline per
// track, and the per-tick sample/score loop.
//
// Everything is single threaded. The host calls Tick once per display
// frame (or at whatever cadence it likes); the only requirement is
// that clock readings never go backwards, which Tick enforces.
type Session struct {
	scorer   score.Scorer
	router   *input.Router
	trackers *pitch.Registry

	song      *game.Song
	timelines []*game.Timeline
	audio     media.Player

	state        State
	players      []*Player
	nextPlayerID int
	lastTickMs   float64
	lastPhrase   []int // current phrase index per track, -1 for none
	events       []Event
	closed       bool
}

func New(scorer score.Scorer, router *input.Router, detector func() pitch.Detector) *Session {
	return &Session{
		scorer:   scorer,
		router:   router,
		trackers: pitch.NewRegistry(detector),
		state:    Idle,
	}
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) Players() []*Player {
	return s.players
}

// Timeline for a track, or nil when no such track exists.
func (s *Session) Timeline(track int) *game.Timeline {
	if track < 1 || track > len(s.timelines) {
		return nil
	}
	return s.timelines[track-1]
}

func (s *Session) Tracks() int {
	return len(s.timelines)
}

// Load binds a song and its (already decodable) audio. Only valid
// from Idle. A load failure leaves the session in Loading; it cannot
// be started.
func (s *Session) Load(song *game.Song, audio media.Player) error {
	if s.state != Idle {
		return fmt.Errorf("%w: load while %v", ErrIllegalState, s.state)
	}
	s.setState(Loading)

	if nil == audio {
		return media.ErrLoad
	}

	s.song = song
	s.audio = audio
	s.timelines = make([]*game.Timeline, len(song.Tracks))
	s.lastPhrase = make([]int, len(song.Tracks))
	for i, chart := range song.Tracks {
		s.timelines[i] = game.NewTimeline(chart)
		s.lastPhrase[i] = -1
	}
	s.setState(Ready)
	return nil
}

// AddPlayer binds a scorable input to a track. Track 0 requests the
// default assignment: the first player sings track 1, the next one
// track 2 if the song is a duet and nobody sings it yet, everyone
// after that track 1 again.
func (s *Session) AddPlayer(name string, in *input.ScorableInput, track int) (*Player, error) {
	if s.state != Ready && s.state != Paused {
		return nil, fmt.Errorf("%w: add player while %v", ErrIllegalState, s.state)
	}
	if track == 0 {
		track = s.defaultTrack()
	}
	if track < 1 || track > len(s.timelines) {
		return nil, fmt.Errorf("%w: no track %v", ErrIllegalState, track)
	}

	s.nextPlayerID++
	p := &Player{
		ID:      s.nextPlayerID,
		Name:    name,
		Track:   track,
		Results: map[int]game.NoteResult{},
		in:      in,
		tracker: s.trackers.Tracker(in.ID.String()),
		frame:   make([]float64, pitch.BufferSize),
	}
	s.players = append(s.players, p)
	return p, nil
}

func (s *Session) defaultTrack() int {
	if len(s.players) == 0 || len(s.timelines) < 2 {
		return 1
	}
	for _, p := range s.players {
		if p.Track == 2 {
			return 1
		}
	}
	return 2
}

func (s *Session) RemovePlayer(id int) {
	for i, p := range s.players {
		if p.ID == id {
			s.trackers.Remove(p.in.ID.String())
			s.players = append(s.players[:i], s.players[i+1:]...)
			return
		}
	}
}

// Start begins or resumes playback. Valid from Ready and Paused.
func (s *Session) Start() error {
	if s.state != Ready && s.state != Paused {
		return fmt.Errorf("%w: start while %v", ErrIllegalState, s.state)
	}
	s.audio.Play()
	s.setState(Playing)
	return nil
}

// Pause is only valid while Playing.
func (s *Session) Pause() error {
	if s.state != Playing {
		return fmt.Errorf("%w: pause while %v", ErrIllegalState, s.state)
	}
	s.audio.Pause()
	s.setState(Paused)
	return nil
}

// Resume is only valid while Paused.
func (s *Session) Resume() error {
	if s.state != Paused {
		return fmt.Errorf("%w: resume while %v", ErrIllegalState, s.state)
	}
	return s.Start()
}

// SeekMs jumps the clock forward. A note the seek actually skips past
// is closed out with the samples collected so far; a note whose window
// still contains the target keeps accumulating, so it is scored
// exactly once at its real boundary. Skipped notes that never
// collected a sample simply score nothing.
func (s *Session) SeekMs(ms float64) error {
	if s.state != Playing && s.state != Paused {
		return fmt.Errorf("%w: seek while %v", ErrIllegalState, s.state)
	}
	if ms < s.lastTickMs {
		return fmt.Errorf("%w: seek backwards (%v < %v)", ErrIllegalState, ms, s.lastTickMs)
	}
	if err := s.audio.SeekMs(ms); nil != err {
		return err
	}
	for _, p := range s.players {
		if nil != p.pendingNote && ms > p.pendingNote.EndMs {
			s.closeNote(p)
		}
	}
	s.lastTickMs = ms
	return nil
}

// Tick runs one frame of the loop and returns the events it produced
// (plus any queued since the last drain). A no-op unless Playing.
func (s *Session) Tick() []Event {
	if s.state != Playing {
		return s.Drain()
	}

	nowMs := s.audio.PositionMs()
	if nowMs < s.lastTickMs {
		// The clock must not run backwards mid-session.
		nowMs = s.lastTickMs
	}
	s.lastTickMs = nowMs
	s.emit(TimeUpdated{TimeMs: nowMs})

	for track := range s.timelines {
		s.trackPhrase(track, nowMs)
	}

	for _, p := range s.players {
		s.tickPlayer(p, nowMs)
	}

	if s.audio.Finished() {
		for _, p := range s.players {
			s.closeNote(p)
		}
		s.setState(Finished)
	}

	return s.Drain()
}

func (s *Session) trackPhrase(track int, nowMs float64) {
	phrase := s.timelines[track].CurrentPhrase(nowMs)
	index := -1
	if nil != phrase {
		index = phrase.Index
	}
	if index != s.lastPhrase[track] {
		s.lastPhrase[track] = index
		s.emit(PhraseChanged{Track: track + 1, Phrase: phrase})
	}
}

func (s *Session) tickPlayer(p *Player, nowMs float64) {
	// A dead input is just a silent singer; the session keeps going.
	for i := range p.frame {
		p.frame[i] = 0
	}
	_ = p.in.ReadFrame(p.frame)

	hz := p.tracker.Sample(p.frame, p.in.SampleRate(), nowMs)
	sample := game.PitchSample{TimeMs: nowMs, FrequencyHz: hz}
	p.recordHistory(sample, nowMs)
	s.emit(PitchUpdated{PlayerID: p.ID, Sample: sample})

	current := s.timelines[p.Track-1].CurrentNote(nowMs)
	if nil == current {
		// Just left a note's window; settle it.
		s.closeNote(p)
		return
	}
	if nil != p.pendingNote && p.pendingNote.Index != current.Index {
		// Back-to-back notes with no gap in between.
		s.closeNote(p)
	}
	p.pendingNote = current
	p.pending = append(p.pending, sample)
}

// closeNote scores and records the note a player is mid-way through,
// if any. Keeps the invariant score == sum of earned points.
func (s *Session) closeNote(p *Player) {
	if nil == p.pendingNote {
		return
	}
	result := s.scorer.ScoreNote(*p.pendingNote, p.pending)
	p.Score += result.EarnedPoints
	p.Results[result.NoteIndex] = result
	p.pendingNote = nil
	p.pending = nil
	s.emit(NoteScored{PlayerID: p.ID, Result: result, Score: p.Score})
}

func (s *Session) setState(state State) {
	s.state = state
	s.emit(StateChanged{State: state})
}

func (s *Session) emit(e Event) {
	s.events = append(s.events, e)
}

// Drain returns and clears the queued events.
func (s *Session) Drain() []Event {
	events := s.events
	s.events = nil
	return events
}

// Close disposes the session: no further ticks do anything, capture
// streams are released, audio is stopped. In-flight notes are not
// scored. Idempotent.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.state = Finished

	var first error
	if nil != s.router {
		first = s.router.DisconnectAll()
	}
	if nil != s.audio {
		if err := s.audio.Close(); nil != err && nil == first {
			first = err
		}
	}
	return first
}
