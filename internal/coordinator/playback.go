package coordinator

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// PlaybackState is the state of the playback controller.
type PlaybackState int32

const (
	// StateIdle means nothing has been played for the bound resource.
	StateIdle PlaybackState = iota
	// StatePlaying means the handle is producing audio.
	StatePlaying
	// StatePaused means playback was paused or ran to completion.
	StatePaused
)

func (s PlaybackState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// PlaybackController exclusively owns the audio handle. All handle calls
// are serialized by its mutex.
type PlaybackController struct {
	handle Handle

	mu       sync.Mutex
	location string
	closed   bool

	// Written under mu, read without it so observers never wait on a
	// handle call in progress.
	state   atomic.Int32
	playing atomic.Bool
}

// NewPlaybackController takes ownership of handle and subscribes to its
// completion notifications.
func NewPlaybackController(handle Handle) *PlaybackController {
	pc := &PlaybackController{handle: handle}
	handle.SetOnEnd(func(stillEnded func() bool) { pc.OnNaturalEnd(stillEnded) })
	return pc
}

// Toggle pauses when playing and starts playback otherwise. A failed start
// leaves the controller not playing and returns the cause.
func (pc *PlaybackController) Toggle() error {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if pc.closed {
		return ErrClosed
	}

	if pc.State() == StatePlaying {
		pc.setState(StatePaused)
		if err := pc.handle.Pause(); err != nil {
			// The handle may still be producing sound; silence it.
			if stopErr := pc.handle.Stop(); stopErr != nil {
				log.Debug("stop after failed pause", "error", stopErr)
			}
			return fmt.Errorf("pause: %w", err)
		}
		return nil
	}

	if pc.location == "" {
		return ErrNothingBound
	}

	if err := safePlay(pc.handle); err != nil {
		pc.playing.Store(false)
		return fmt.Errorf("play %s: %w", pc.location, err)
	}

	pc.setState(StatePlaying)
	return nil
}

// OnNaturalEnd records that the bound resource finished playing and leaves
// the controller not playing. An end that stillEnded no longer confirms is
// ignored, since playback was restarted or rebound after it. It reports
// whether the end was applied.
func (pc *PlaybackController) OnNaturalEnd(stillEnded func() bool) bool {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if stillEnded != nil && !stillEnded() {
		return false
	}
	if pc.State() == StatePlaying {
		pc.setState(StatePaused)
	}
	pc.playing.Store(false)
	return true
}

// Rebind points the handle at a new resource. Rebinding stops any current
// playback and returns the controller to idle; playback does not resume on
// its own.
//
// When guard is set, the handle is only touched from inside guard: it is
// called with the controller locked, must not block on I/O, and calls bind
// only when the rebind should happen.
func (pc *PlaybackController) Rebind(location string, guard func(bind func() error) error) error {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if pc.closed {
		return ErrClosed
	}

	bind := func() error {
		if err := pc.handle.Stop(); err != nil {
			log.Debug("stop before rebind", "error", err)
		}
		if err := pc.handle.Bind(location); err != nil {
			return fmt.Errorf("bind %s: %w", location, err)
		}
		pc.location = location
		pc.setState(StateIdle)
		return nil
	}
	if guard == nil {
		return bind()
	}
	return guard(bind)
}

// IsPlaying reports whether the handle is producing audio. It never blocks.
func (pc *PlaybackController) IsPlaying() bool {
	return pc.playing.Load()
}

// State returns the controller state. It never blocks.
func (pc *PlaybackController) State() PlaybackState {
	return PlaybackState(pc.state.Load())
}

// setState must be called with mu held.
func (pc *PlaybackController) setState(s PlaybackState) {
	pc.state.Store(int32(s))
	pc.playing.Store(s == StatePlaying)
}

// Location returns the currently bound resource.
func (pc *PlaybackController) Location() string {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.location
}

// Close stops playback and releases the handle.
func (pc *PlaybackController) Close() error {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if pc.closed {
		return nil
	}
	pc.closed = true
	pc.setState(StateIdle)
	return pc.handle.Close()
}

// safePlay converts a panic raised by the handle into an error.
func safePlay(h Handle) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("playback rejected: %v", r)
		}
	}()
	return h.Play()
}
