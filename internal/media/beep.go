package media

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
)

// BeepPlayer plays a song's audio file through the speaker package
// and exposes the stream position as the session clock.
type BeepPlayer struct {
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	playing  bool
}

func NewBeepPlayer(file string) (*BeepPlayer, error) {
	f, err := os.Open(file)
	if nil != err {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch path.Ext(file) {
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	default:
		f.Close()
		return nil, fmt.Errorf("%w: unsupported audio format %q", ErrLoad, path.Ext(file))
	}
	if nil != err {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/60)); nil != err {
		streamer.Close()
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	return &BeepPlayer{
		streamer: streamer,
		format:   format,
		ctrl:     &beep.Ctrl{Streamer: streamer, Paused: true},
	}, nil
}

func (p *BeepPlayer) PositionMs() float64 {
	speaker.Lock()
	pos := p.streamer.Position()
	speaker.Unlock()
	return p.format.SampleRate.D(pos).Seconds() * 1000
}

func (p *BeepPlayer) Play() {
	if !p.playing {
		speaker.Play(p.ctrl)
		p.playing = true
	}
	speaker.Lock()
	p.ctrl.Paused = false
	speaker.Unlock()
}

func (p *BeepPlayer) Pause() {
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
}

func (p *BeepPlayer) SeekMs(ms float64) error {
	sample := p.format.SampleRate.N(time.Duration(ms * float64(time.Millisecond)))
	if sample > p.streamer.Len() {
		sample = p.streamer.Len()
	}
	speaker.Lock()
	err := p.streamer.Seek(sample)
	speaker.Unlock()
	return err
}

func (p *BeepPlayer) Finished() bool {
	speaker.Lock()
	done := p.streamer.Position() >= p.streamer.Len()
	speaker.Unlock()
	return done
}

func (p *BeepPlayer) Close() error {
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
	return p.streamer.Close()
}
