package audio

import (
	"io"
	"sync"
	"time"
)

// WithSilentOutput replaces the sound device with a clock that tracks
// playback time without producing sound. Useful on hosts with no audio
// device.
func WithSilentOutput() Option {
	return withDevice(func(rate int) (device, error) {
		return silentDevice{rate: rate}, nil
	})
}

type silentDevice struct {
	rate int
}

func (d silentDevice) SampleRate() int { return d.rate }

func (d silentDevice) NewSink(r io.ReadSeeker) sink {
	size, _ := r.Seek(0, io.SeekEnd)
	_, _ = r.Seek(0, io.SeekStart)

	var length time.Duration
	if d.rate > 0 {
		length = time.Duration(size/bytesPerFrame) * time.Second / time.Duration(d.rate)
	}
	return &silentSink{length: length, now: time.Now}
}

// silentSink advances a position while playing and stops at length.
type silentSink struct {
	mu      sync.Mutex
	length  time.Duration
	played  time.Duration // before startAt
	startAt time.Time
	playing bool
	volume  float64
	now     func() time.Time
}

func (s *silentSink) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing {
		s.startAt = s.now()
		s.playing = true
	}
}

func (s *silentSink) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playing {
		s.played = s.positionLocked()
		s.playing = false
	}
}

func (s *silentSink) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playing && s.positionLocked() >= s.length {
		s.played = s.length
		s.playing = false
	}
	return s.playing
}

func (s *silentSink) SetVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = v
}

// Seek supports rewinding to an absolute byte offset.
func (s *silentSink) Seek(offset int64, whence int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if whence == io.SeekStart && offset == 0 {
		s.played = 0
		s.startAt = s.now()
	}
	return offset, nil
}

// Position returns the elapsed playing time.
func (s *silentSink) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.positionLocked()
}

func (s *silentSink) positionLocked() time.Duration {
	pos := s.played
	if s.playing {
		pos += s.now().Sub(s.startAt)
	}
	return min(pos, s.length)
}
