package recorder

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// State is the recording session's current phase. A session rests in
// StateIdle between recordings; every other state holds resources that
// must be released before returning there.
type State string

const (
	StateIdle      State = "idle"
	StateRecording State = "recording"
	StateRecorded  State = "recorded"
	StateUploading State = "uploading"
)

var (
	ErrQuotaExceeded     = errors.New("daily recording quota exceeded")
	ErrDeviceUnavailable = errors.New("capture device unavailable")
)

// InvalidTransitionError is returned when an operation is called in a state
// it is not valid for. Illegal transitions are rejected, never silently
// tolerated.
type InvalidTransitionError struct {
	Op   string
	From State
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s from state %q", e.Op, e.From)
}

// Clip is the finished local recording before it becomes a stored clip.
// It is exclusively owned by its session and destroyed on discard or
// successful submission.
type Clip struct {
	Data        []byte
	MimeType    string
	Duration    time.Duration
	AutoStopped bool
	RecordedAt  time.Time
}

// QuotaChecker reports how many submissions an actor has left today.
type QuotaChecker interface {
	Remaining(actorID string, day time.Time) (int, error)
}

// Submitter commits a finished clip: blob upload, metadata record, quota.
type Submitter interface {
	Submit(actorID string, clip *Clip) (string, error)
}

// Session is the state machine governing capture of one audio clip. A
// recording is bounded by a hard time limit; reaching it stops the capture
// automatically and flags the clip as auto-stopped.
type Session struct {
	device  Device
	quota   QuotaChecker
	actorID string
	limit   time.Duration
	tick    time.Duration // countdown granularity, one second outside tests

	mu          sync.Mutex
	state       State
	handle      Handle
	buf         bytes.Buffer
	captureDone chan struct{}
	stopTick    chan struct{}
	remaining   int
	startedAt   time.Time
	clip        *Clip
}

// NewSession creates an idle session for one actor. limit is the recording
// ceiling (10 seconds in production config).
func NewSession(device Device, quota QuotaChecker, actorID string, limit time.Duration) *Session {
	return &Session{
		device:  device,
		quota:   quota,
		actorID: actorID,
		limit:   limit,
		tick:    time.Second,
		state:   StateIdle,
	}
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Remaining returns how many countdown ticks are left in the current
// recording, 0 when not recording.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRecording {
		return 0
	}
	return s.remaining
}

// Clip returns the finished clip held by the session, nil outside
// StateRecorded and StateUploading.
func (s *Session) Clip() *Clip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clip
}

// Start begins a recording. Valid only from StateIdle, and only while the
// actor has quota left for today. Device acquisition failure leaves the
// session idle.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return &InvalidTransitionError{Op: "start", From: s.state}
	}

	remaining, err := s.quota.Remaining(s.actorID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to check quota: %w", err)
	}
	if remaining <= 0 {
		return ErrQuotaExceeded
	}

	handle, err := s.device.Acquire(DefaultConstraints)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	s.handle = handle
	s.buf.Reset()
	s.captureDone = make(chan struct{})
	s.stopTick = make(chan struct{})
	s.remaining = int(s.limit / s.tick)
	s.startedAt = time.Now()
	s.state = StateRecording

	go s.capture(handle, s.captureDone)
	go s.countdown(s.stopTick)

	return nil
}

// capture drains the device stream into the session buffer until the
// handle is released.
func (s *Session) capture(handle Handle, done chan struct{}) {
	defer close(done)
	_, _ = io.Copy(&s.buf, handle)
}

// countdown decrements the remaining time once per tick and auto-stops the
// recording when it reaches zero. The ticker is cancelled on every exit
// from StateRecording so no tick can fire after the recording ended.
func (s *Session) countdown(stop chan struct{}) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.state != StateRecording {
				s.mu.Unlock()
				return
			}
			s.remaining--
			if s.remaining <= 0 {
				s.finishLocked(true)
				s.mu.Unlock()
				return
			}
			s.mu.Unlock()
		}
	}
}

// Stop ends the recording manually. Valid only from StateRecording.
func (s *Session) Stop() (*Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRecording {
		return nil, &InvalidTransitionError{Op: "stop", From: s.state}
	}

	s.finishLocked(false)
	return s.clip, nil
}

// finishLocked finalizes the in-progress payload into a Clip, releases the
// capture device and transitions to StateRecorded. Callers hold s.mu.
func (s *Session) finishLocked(auto bool) {
	select {
	case <-s.stopTick:
	default:
		close(s.stopTick)
	}

	_ = s.handle.Release()
	<-s.captureDone
	s.handle = nil

	elapsed := time.Since(s.startedAt)
	if elapsed > s.limit {
		elapsed = s.limit
	}

	data := make([]byte, s.buf.Len())
	copy(data, s.buf.Bytes())
	s.buf.Reset()

	s.clip = &Clip{
		Data:        data,
		MimeType:    "audio/webm",
		Duration:    elapsed,
		AutoStopped: auto,
		RecordedAt:  time.Now(),
	}
	s.state = StateRecorded
}

// Discard drops the finished clip without submitting it. Quota is not
// touched; discarding never costs an attempt.
func (s *Session) Discard() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRecorded {
		return &InvalidTransitionError{Op: "discard", From: s.state}
	}

	s.clip = nil
	s.state = StateIdle
	return nil
}

// Submit hands the finished clip to the submission pipeline. On success the
// clip is destroyed and the session returns to StateIdle; on failure the
// clip is kept so the user can retry without re-recording.
func (s *Session) Submit(submitter Submitter) (string, error) {
	s.mu.Lock()
	if s.state != StateRecorded {
		s.mu.Unlock()
		return "", &InvalidTransitionError{Op: "submit", From: s.state}
	}
	clip := s.clip
	s.state = StateUploading
	s.mu.Unlock()

	id, err := submitter.Submit(s.actorID, clip)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateRecorded
		return "", err
	}

	s.clip = nil
	s.state = StateIdle
	return id, nil
}

// Close force-tears the session down, releasing the device and the
// countdown if a recording is in flight. Safe to call in any state.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRecording {
		s.finishLocked(false)
	}
	s.clip = nil
	s.state = StateIdle
	return nil
}
