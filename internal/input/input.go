package input

import "errors"

var (
	// ErrCaptureUnavailable means one device failed to open. The
	// failure is isolated; other inputs keep working.
	ErrCaptureUnavailable = errors.New("capture unavailable")
	// ErrPermissionDenied means microphone access was refused outright.
	ErrPermissionDenied = errors.New("capture permission denied")
)

type Channel int

const (
	Mono Channel = iota
	Left
	Right
)

func (c Channel) String() string {
	switch c {
	case Mono:
		return "mono"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "unknown"
}

// ID addresses one scorable input: a whole mono device, or one
// channel of a stereo device.
type ID struct {
	Device  string
	Channel Channel
}

func (id ID) String() string {
	return id.Device + "/" + id.Channel.String()
}

// CaptureOpener sits at the hardware boundary and opens physical
// capture streams. Opening may block on user permission; it resolves
// or fails exactly once per call.
type CaptureOpener interface {
	Open(deviceID string, channels int) (CaptureStream, error)
}

// CaptureStream is one open physical stream with a fixed channel
// layout.
type CaptureStream interface {
	// ReadFrame copies the most recent analysis window of the given
	// channel (0-based) into buf.
	ReadFrame(channel int, buf []float64) error
	SampleRate() int
	Close() error
}
