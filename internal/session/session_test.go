package session_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kiliankoe/encore/internal/input"
	"github.com/kiliankoe/encore/internal/media"
	"github.com/kiliankoe/encore/internal/pitch"
	"github.com/kiliankoe/encore/internal/score"
	"github.com/kiliankoe/encore/internal/session"
	"github.com/kiliankoe/encore/internal/testdata"
)

// fakeAudio is a media.Player with a hand-cranked clock.
type fakeAudio struct {
	posMs   float64
	playing bool
	done    bool
	closed  bool
	seekErr error
}

func (f *fakeAudio) PositionMs() float64 { return f.posMs }
func (f *fakeAudio) Play()               { f.playing = true }
func (f *fakeAudio) Pause()              { f.playing = false }
func (f *fakeAudio) SeekMs(ms float64) error {
	if nil != f.seekErr {
		return f.seekErr
	}
	f.posMs = ms
	return nil
}
func (f *fakeAudio) Finished() bool { return f.done }
func (f *fakeAudio) Close() error {
	f.closed = true
	return nil
}

// testOpener produces streams that fill every frame with a per-device
// level; levelDetector turns that level into level*1000 Hz. Together
// they let a test dictate exactly what each input "sings".
type testOpener struct {
	levels map[string]*float64
}

func (o *testOpener) Open(device string, channels int) (input.CaptureStream, error) {
	if _, ok := o.levels[device]; !ok {
		v := 0.0
		o.levels[device] = &v
	}
	return &testStream{level: o.levels[device]}, nil
}

type testStream struct {
	level *float64
}

func (s *testStream) ReadFrame(channel int, buf []float64) error {
	for i := range buf {
		buf[i] = *s.level
	}
	return nil
}

func (s *testStream) SampleRate() int { return 44100 }
func (s *testStream) Close() error    { return nil }

type levelDetector struct{}

func (levelDetector) Detect(samples []float64, sampleRate int) float64 {
	return samples[0] * 1000
}

type harness struct {
	sess   *session.Session
	audio  *fakeAudio
	router *input.Router
	opener *testOpener
}

// sing sets what a device's singer produces; levelFor derives the
// level that makes levelDetector report the given semitone offset
// from middle C.
func (h *harness) sing(device string, level float64) {
	*h.opener.levels[device] = level
}

func levelFor(semitone int) float64 {
	return pitch.MidiToHz(60+float64(semitone)) / 1000
}

func (h *harness) tickAt(ms float64) []session.Event {
	h.audio.posMs = ms
	return h.sess.Tick()
}

func newHarness(t *testing.T) *harness {
	song, err := testdata.GetSong()
	if nil != err {
		t.Fatal("unable to load fixture song:", err)
	}
	opener := &testOpener{levels: map[string]*float64{}}
	router := input.NewRouter(opener)
	sess := session.New(&score.DefaultScorer{}, router, func() pitch.Detector {
		return levelDetector{}
	})
	audio := &fakeAudio{}
	if err := sess.Load(song, audio); nil != err {
		t.Fatal("unable to load session:", err)
	}
	return &harness{sess: sess, audio: audio, router: router, opener: opener}
}

func (h *harness) addPlayer(t *testing.T, device string, track int) *session.Player {
	in, err := h.router.Connect(device, input.Mono)
	if nil != err {
		t.Fatal("unable to connect input:", err)
	}
	p, err := h.sess.AddPlayer(device, in, track)
	if nil != err {
		t.Fatal("unable to add player:", err)
	}
	return p
}

func TestStateMachine(t *testing.T) {
	h := newHarness(t)
	assert := assert.New(t)

	assert.Equal(session.Ready, h.sess.State())
	assert.ErrorIs(h.sess.Pause(), session.ErrIllegalState)
	assert.ErrorIs(h.sess.Resume(), session.ErrIllegalState)

	assert.NoError(h.sess.Start())
	assert.Equal(session.Playing, h.sess.State())
	assert.True(h.audio.playing)
	assert.ErrorIs(h.sess.Start(), session.ErrIllegalState)

	assert.NoError(h.sess.Pause())
	assert.Equal(session.Paused, h.sess.State())
	assert.False(h.audio.playing)

	assert.NoError(h.sess.Resume())
	assert.Equal(session.Playing, h.sess.State())

	h.audio.done = true
	h.tickAt(6000)
	assert.Equal(session.Finished, h.sess.State())
	assert.ErrorIs(h.sess.Start(), session.ErrIllegalState)
	assert.ErrorIs(h.sess.Pause(), session.ErrIllegalState)
	assert.ErrorIs(h.sess.Resume(), session.ErrIllegalState)
}

func TestStartBeforeLoad(t *testing.T) {
	sess := session.New(&score.DefaultScorer{}, nil, func() pitch.Detector {
		return levelDetector{}
	})
	assert.ErrorIs(t, sess.Start(), session.ErrIllegalState)
}

func TestLoadFailureStaysInLoading(t *testing.T) {
	song, err := testdata.GetSong()
	assert := assert.New(t)
	assert.NoError(err)

	sess := session.New(&score.DefaultScorer{}, nil, func() pitch.Detector {
		return levelDetector{}
	})
	assert.ErrorIs(sess.Load(song, nil), media.ErrLoad)
	assert.Equal(session.Loading, sess.State())
	assert.ErrorIs(sess.Start(), session.ErrIllegalState)
}

func TestDuetTrackAssignment(t *testing.T) {
	h := newHarness(t)
	assert := assert.New(t)

	p1 := h.addPlayer(t, "mic0", 0)
	p2 := h.addPlayer(t, "mic1", 0)
	p3 := h.addPlayer(t, "mic2", 0)
	assert.Equal(1, p1.Track)
	assert.Equal(2, p2.Track)
	assert.Equal(1, p3.Track)

	// Explicit assignment overrides the default.
	p4 := h.addPlayer(t, "mic3", 2)
	assert.Equal(2, p4.Track)

	_, err := h.sess.AddPlayer("bogus", p1.Input(), 3)
	assert.ErrorIs(err, session.ErrIllegalState)
}

func TestPerfectNoteScoresFullPoints(t *testing.T) {
	h := newHarness(t)
	p := h.addPlayer(t, "mic0", 1)
	assert := assert.New(t)
	assert.NoError(h.sess.Start())

	// Fixture note 0: pitch 0, window 500..1000 ms, 4 beats = 40 pts.
	h.sing("mic0", levelFor(0))
	for _, ms := range []float64{600, 700, 800, 900, 950} {
		h.tickAt(ms)
	}
	h.sing("mic0", 0)
	events := h.tickAt(2200) // between phrases, closes the note

	assert.Equal(40, p.Score)
	result, ok := p.Results[0]
	if assert.True(ok) {
		assert.Equal(40, result.MaxPoints)
		assert.Equal(40, result.EarnedPoints)
		assert.InDelta(1.0, result.Accuracy, 1e-9)
		assert.Equal(5, len(result.Samples))
	}

	scored := false
	for _, e := range events {
		if n, ok := e.(session.NoteScored); ok {
			scored = true
			assert.Equal(p.ID, n.PlayerID)
			assert.Equal(40, n.Score)
		}
	}
	assert.True(scored)
}

func TestRapNoteCountsVoicedPresence(t *testing.T) {
	h := newHarness(t)
	p := h.addPlayer(t, "mic0", 1)
	assert := assert.New(t)
	assert.NoError(h.sess.Start())

	// Fixture note 3 is rap, window 2500..3000. One voiced tick, then
	// two silent ones spaced past the pitch-hold window.
	h.sing("mic0", 0.3)
	h.tickAt(2600)
	h.sing("mic0", 0)
	h.tickAt(2790)
	h.tickAt(2980)
	h.tickAt(3600)

	result, ok := p.Results[3]
	if assert.True(ok) {
		assert.Equal(40, result.MaxPoints)
		assert.InDelta(1.0/3.0, result.Accuracy, 1e-9)
		assert.Equal(13, result.EarnedPoints)
	}
	assert.Equal(13, p.Score)
}

func TestScoreMatchesSumOfResults(t *testing.T) {
	h := newHarness(t)
	p := h.addPlayer(t, "mic0", 1)
	assert := assert.New(t)
	assert.NoError(h.sess.Start())

	h.sing("mic0", levelFor(2)) // always two semitones sharp
	for ms := 500.0; ms < 5500; ms += 50 {
		h.tickAt(ms)
	}
	h.audio.done = true
	h.tickAt(5500)

	sum := 0
	for _, r := range p.Results {
		sum += r.EarnedPoints
	}
	assert.Equal(sum, p.Score)
	assert.Greater(p.Score, 0)
}

func TestPitchHistoryStaysBounded(t *testing.T) {
	h := newHarness(t)
	p := h.addPlayer(t, "mic0", 1)
	assert := assert.New(t)
	assert.NoError(h.sess.Start())

	for ms := 0.0; ms <= 8000; ms += 100 {
		h.tickAt(ms)
	}
	assert.NotEmpty(p.History)
	for _, s := range p.History {
		assert.GreaterOrEqual(s.TimeMs, 3000.0)
	}
}

func TestSeekClosesInFlightNote(t *testing.T) {
	h := newHarness(t)
	p := h.addPlayer(t, "mic0", 1)
	assert := assert.New(t)
	assert.NoError(h.sess.Start())

	h.sing("mic0", levelFor(0))
	h.tickAt(600)
	h.tickAt(700)

	assert.NoError(h.sess.SeekMs(2200))
	result, ok := p.Results[0]
	if assert.True(ok) {
		// Scored from the two samples collected before the seek.
		assert.Equal(2, len(result.Samples))
		assert.Equal(40, result.EarnedPoints)
	}

	// Skipped notes never scored at all.
	_, ok = p.Results[1]
	assert.False(ok)
}

func TestSeekWithinNoteScoresItOnce(t *testing.T) {
	h := newHarness(t)
	p := h.addPlayer(t, "mic0", 1)
	assert := assert.New(t)
	assert.NoError(h.sess.Start())

	// Jump around inside fixture note 0's window (500..1000): the note
	// keeps accumulating and settles once at its real boundary.
	h.sing("mic0", levelFor(0))
	h.tickAt(600)
	h.tickAt(700)
	assert.NoError(h.sess.SeekMs(800))
	h.tickAt(850)
	h.tickAt(900)
	h.sing("mic0", 0)
	h.tickAt(2200)

	assert.Equal(40, p.Score)
	result, ok := p.Results[0]
	if assert.True(ok) {
		assert.Equal(4, len(result.Samples))
	}
	sum := 0
	for _, r := range p.Results {
		sum += r.EarnedPoints
	}
	assert.Equal(sum, p.Score)
}

func TestFailedSeekLeavesNotesInFlight(t *testing.T) {
	h := newHarness(t)
	p := h.addPlayer(t, "mic0", 1)
	assert := assert.New(t)
	assert.NoError(h.sess.Start())

	h.sing("mic0", levelFor(0))
	h.tickAt(600)

	h.audio.seekErr = errors.New("decoder refused")
	assert.Error(h.sess.SeekMs(2200))
	assert.Empty(p.Results)

	// The session carries on as if the seek was never asked for.
	h.audio.seekErr = nil
	h.tickAt(700)
	h.sing("mic0", 0)
	h.tickAt(2200)
	assert.Equal(40, p.Score)
}

func TestSeekBackwardsFails(t *testing.T) {
	h := newHarness(t)
	assert := assert.New(t)
	assert.NoError(h.sess.Start())
	h.tickAt(3000)
	assert.ErrorIs(h.sess.SeekMs(1000), session.ErrIllegalState)
}

func TestSeekWhileReadyFails(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.sess.SeekMs(1000), session.ErrIllegalState)
}

func TestClockNeverRunsBackwards(t *testing.T) {
	h := newHarness(t)
	assert := assert.New(t)
	assert.NoError(h.sess.Start())

	h.tickAt(3000)
	events := h.tickAt(2000) // decoder hiccup
	for _, e := range events {
		if u, ok := e.(session.TimeUpdated); ok {
			assert.InDelta(3000.0, u.TimeMs, 1e-9)
		}
	}
}

func TestEndOfMediaClosesInFlightNote(t *testing.T) {
	h := newHarness(t)
	p := h.addPlayer(t, "mic0", 1)
	assert := assert.New(t)
	assert.NoError(h.sess.Start())

	// Fixture note 5 spans 4000..5000.
	h.sing("mic0", levelFor(7))
	h.tickAt(4200)
	h.tickAt(4400)
	h.audio.done = true
	h.tickAt(4600)

	assert.Equal(session.Finished, h.sess.State())
	_, ok := p.Results[5]
	assert.True(ok)
}

func TestPhraseChangeEvents(t *testing.T) {
	h := newHarness(t)
	assert := assert.New(t)
	assert.NoError(h.sess.Start())

	events := h.tickAt(600)
	found := false
	for _, e := range events {
		if pc, ok := e.(session.PhraseChanged); ok && pc.Track == 1 {
			found = true
			if assert.NotNil(pc.Phrase) {
				assert.Equal(0, pc.Phrase.Index)
			}
		}
	}
	assert.True(found)

	// Still in the same phrase: no repeat notification.
	for _, e := range h.tickAt(700) {
		_, ok := e.(session.PhraseChanged)
		assert.False(ok)
	}
}

func TestTimelineBounds(t *testing.T) {
	h := newHarness(t)
	assert := assert.New(t)
	assert.NotNil(h.sess.Timeline(1))
	assert.NotNil(h.sess.Timeline(2))
	assert.Nil(h.sess.Timeline(0))
	assert.Nil(h.sess.Timeline(3))
}

func TestRemovePlayer(t *testing.T) {
	h := newHarness(t)
	p := h.addPlayer(t, "mic0", 1)
	h.addPlayer(t, "mic1", 0)

	h.sess.RemovePlayer(p.ID)
	assert.Equal(t, 1, len(h.sess.Players()))
}

func TestCloseIsIdempotent(t *testing.T) {
	h := newHarness(t)
	h.addPlayer(t, "mic0", 1)
	assert := assert.New(t)

	assert.NoError(h.sess.Close())
	assert.True(h.audio.closed)
	assert.Empty(h.router.Inputs())
	assert.NoError(h.sess.Close())
	h.sess.Drain()

	// A closed session ignores ticks.
	assert.Empty(h.tickAt(1000))
}

func TestTickOutsidePlayingIsANoop(t *testing.T) {
	h := newHarness(t)
	h.addPlayer(t, "mic0", 1)
	h.sess.Drain()

	events := h.tickAt(600)
	for _, e := range events {
		_, ok := e.(session.TimeUpdated)
		assert.False(t, ok)
	}
}

var _ media.Player = (*fakeAudio)(nil)
