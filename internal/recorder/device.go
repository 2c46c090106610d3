package recorder

import (
	"io"
	"time"
)

// Constraints are the capture settings requested when acquiring a device.
type Constraints struct {
	SampleRate       int
	EchoCancellation bool
	NoiseSuppression bool
}

// DefaultConstraints is what the studio asks for when recording a clip.
var DefaultConstraints = Constraints{
	SampleRate:       44100,
	EchoCancellation: true,
	NoiseSuppression: true,
}

// Device is a capture source. Acquire opens the device; the returned handle
// streams audio bytes until it is released. At most one session holds a
// handle at a time.
type Device interface {
	Acquire(constraints Constraints) (Handle, error)
}

// Handle is an open capture stream. Release must be called on every exit
// path out of a recording; it is never left open.
type Handle interface {
	io.Reader
	Release() error
}

// ReaderDevice adapts any byte stream (a file, stdin, a test fixture) into
// a capture device. Used by the record CLI and by tests; a real microphone
// backend satisfies the same interface.
type ReaderDevice struct {
	Source   io.Reader
	MimeType string
}

func (d *ReaderDevice) Acquire(_ Constraints) (Handle, error) {
	if d.Source == nil {
		return nil, ErrDeviceUnavailable
	}
	return &readerHandle{source: d.Source, released: make(chan struct{})}, nil
}

type readerHandle struct {
	source   io.Reader
	released chan struct{}
}

func (h *readerHandle) Read(p []byte) (int, error) {
	select {
	case <-h.released:
		return 0, io.EOF
	default:
	}

	n, err := h.source.Read(p)
	if err == io.EOF {
		// Keep the stream open until release, like a live microphone:
		// no data for now, but more may come.
		select {
		case <-h.released:
			return n, io.EOF
		default:
			time.Sleep(10 * time.Millisecond)
			return n, nil
		}
	}
	return n, err
}

func (h *readerHandle) Release() error {
	select {
	case <-h.released:
	default:
		close(h.released)
	}
	return nil
}
