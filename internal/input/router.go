package input

import (
	"errors"
	"fmt"
)

// sharedStream is a physical stream plus its reference count. A
// stereo device's stream is shared by its left and right inputs and
// torn down on the last release. Single-threaded access only, so a
// plain counter does.
type sharedStream struct {
	device string
	stream CaptureStream
	refs   int
}

// ScorableInput is an independent single-channel analysis tap on a
// capture stream. It exists only while its stream is open.
type ScorableInput struct {
	ID      ID
	stream  *sharedStream
	channel int // channel index within the stream
}

// ReadFrame copies this input's most recent analysis window into buf.
func (in *ScorableInput) ReadFrame(buf []float64) error {
	return in.stream.stream.ReadFrame(in.channel, buf)
}

func (in *ScorableInput) SampleRate() int {
	return in.stream.stream.SampleRate()
}

// Router maps capture devices to scorable inputs. Mono devices get
// their own dedicated stream; the left and right channels of a stereo
// device share one.
type Router struct {
	opener CaptureOpener
	inputs map[ID]*ScorableInput
	stereo map[string]*sharedStream // keyed by device, left/right only
}

func NewRouter(opener CaptureOpener) *Router {
	return &Router{
		opener: opener,
		inputs: map[ID]*ScorableInput{},
		stereo: map[string]*sharedStream{},
	}
}

// Connect opens (or reuses) the stream behind (device, channel) and
// returns its scorable input. Idempotent: connecting an already
// connected input returns the existing one without touching the
// stream. A failed open reports ErrCaptureUnavailable (or passes
// ErrPermissionDenied through) and leaves every other input alone.
func (r *Router) Connect(device string, channel Channel) (*ScorableInput, error) {
	id := ID{Device: device, Channel: channel}
	if in, ok := r.inputs[id]; ok {
		return in, nil
	}

	var shared *sharedStream
	chIndex := 0

	if channel == Mono {
		stream, err := r.opener.Open(device, 1)
		if nil != err {
			return nil, openErr(id, err)
		}
		shared = &sharedStream{device: device, stream: stream, refs: 1}
	} else {
		if channel == Right {
			chIndex = 1
		}
		if s, ok := r.stereo[device]; ok {
			s.refs++
			shared = s
		} else {
			stream, err := r.opener.Open(device, 2)
			if nil != err {
				return nil, openErr(id, err)
			}
			shared = &sharedStream{device: device, stream: stream, refs: 1}
			r.stereo[device] = shared
		}
	}

	in := &ScorableInput{ID: id, stream: shared, channel: chIndex}
	r.inputs[id] = in
	return in, nil
}

func openErr(id ID, err error) error {
	if errors.Is(err, ErrPermissionDenied) {
		return fmt.Errorf("input %v: %w", id, err)
	}
	return fmt.Errorf("input %v: %w: %v", id, ErrCaptureUnavailable, err)
}

// Disconnect releases one input. The physical stream stops only when
// its last reference goes away.
func (r *Router) Disconnect(id ID) error {
	in, ok := r.inputs[id]
	if !ok {
		return nil
	}
	delete(r.inputs, id)

	in.stream.refs--
	if in.stream.refs > 0 {
		return nil
	}
	delete(r.stereo, in.stream.device)
	return in.stream.stream.Close()
}

// DisconnectAll releases every input. Later errors do not stop
// earlier releases; the first error wins.
func (r *Router) DisconnectAll() error {
	var first error
	for id := range r.inputs {
		if err := r.Disconnect(id); nil != err && nil == first {
			first = err
		}
	}
	return first
}

// Inputs returns the currently connected inputs.
func (r *Router) Inputs() []*ScorableInput {
	ins := []*ScorableInput{}
	for _, in := range r.inputs {
		ins = append(ins, in)
	}
	return ins
}
