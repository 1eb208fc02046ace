package audio

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeFetcher struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeFetcher) FetchAudio(_ context.Context, location string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, location)
	if f.err != nil {
		return nil, f.err
	}
	return []byte(location), nil
}

func (f *fakeFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// clip decodes every resource to silence of the given length at 1kHz.
func clip(length time.Duration) func([]byte) (PCM, error) {
	frames := int(length / time.Millisecond)
	return func([]byte) (PCM, error) {
		return PCM{Data: make([]byte, frames*bytesPerFrame), SampleRate: 1000}, nil
	}
}

func newTestPlayer(t *testing.T, length time.Duration) (*Player, *fakeFetcher) {
	t.Helper()
	f := &fakeFetcher{}
	p := NewPlayer(f, WithSilentOutput(), withDecoder(clip(length)))
	t.Cleanup(func() { _ = p.Close() })
	return p, f
}

func TestPlayerPlayUnbound(t *testing.T) {
	p, _ := newTestPlayer(t, time.Second)
	if err := p.Play(); !errors.Is(err, ErrNotBound) {
		t.Errorf("expected ErrNotBound, got %v", err)
	}
}

func TestPlayerFetchesOncePerBinding(t *testing.T) {
	p, f := newTestPlayer(t, 10*time.Second)

	_ = p.Bind("/a.mp3")
	if f.count() != 0 {
		t.Fatal("Bind should not fetch")
	}
	if err := p.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if !p.IsPlaying() {
		t.Error("expected playing")
	}
	_ = p.Pause()
	if p.IsPlaying() {
		t.Error("expected paused")
	}
	_ = p.Play()
	if f.count() != 1 {
		t.Errorf("fetches = %d, want 1", f.count())
	}

	_ = p.Bind("/b.mp3")
	if p.IsPlaying() {
		t.Error("Bind should stop playback")
	}
	_ = p.Play()
	if f.count() != 2 {
		t.Errorf("fetches = %d, want 2", f.count())
	}
}

func TestPlayerFetchError(t *testing.T) {
	p, f := newTestPlayer(t, time.Second)
	f.err = errors.New("connection refused")

	_ = p.Bind("/a.mp3")
	if err := p.Play(); err == nil {
		t.Fatal("expected error")
	}
	if p.IsPlaying() {
		t.Error("player should not be playing after a failed load")
	}
}

func TestPlayerNaturalEnd(t *testing.T) {
	p, _ := newTestPlayer(t, 100*time.Millisecond)

	ended := make(chan struct{}, 1)
	p.SetOnEnd(func(func() bool) { ended <- struct{}{} })

	_ = p.Bind("/a.mp3")
	if err := p.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}

	select {
	case <-ended:
	case <-time.After(2 * time.Second):
		t.Fatal("end notification not delivered")
	}
	if p.IsPlaying() {
		t.Error("expected not playing after end")
	}

	// Playing again starts over.
	if err := p.Play(); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !p.IsPlaying() {
		t.Error("expected playing after replay")
	}
}

func TestPlayerRebindSuppressesEnd(t *testing.T) {
	p, _ := newTestPlayer(t, 100*time.Millisecond)

	ended := make(chan struct{}, 1)
	p.SetOnEnd(func(func() bool) { ended <- struct{}{} })

	_ = p.Bind("/a.mp3")
	_ = p.Play()
	_ = p.Bind("/b.mp3")

	select {
	case <-ended:
		t.Error("end reported for a resource that was replaced")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestPlayerEndSupersededByReplay(t *testing.T) {
	p, _ := newTestPlayer(t, 100*time.Millisecond)

	type check struct{ before, after bool }
	checks := make(chan check, 1)
	var once sync.Once
	p.SetOnEnd(func(stillEnded func() bool) {
		once.Do(func() {
			before := stillEnded()
			// Playback restarts before the notification lands.
			_ = p.Play()
			checks <- check{before: before, after: stillEnded()}
		})
	})

	_ = p.Bind("/a.mp3")
	if err := p.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}

	select {
	case c := <-checks:
		if !c.before {
			t.Error("end should hold before anything else happens")
		}
		if c.after {
			t.Error("end must not hold once playback restarted")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("end notification not delivered")
	}
	if !p.IsPlaying() {
		t.Error("restarted playback should be playing")
	}
}

func TestPlayerClosed(t *testing.T) {
	p, _ := newTestPlayer(t, time.Second)
	_ = p.Close()

	if err := p.Bind("/a.mp3"); !errors.Is(err, ErrClosed) {
		t.Errorf("Bind after Close: %v", err)
	}
	if err := p.Play(); !errors.Is(err, ErrClosed) {
		t.Errorf("Play after Close: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestPlayerVolume(t *testing.T) {
	p := NewPlayer(&fakeFetcher{}, WithVolume(2))
	if p.Volume() != 1 {
		t.Errorf("Volume = %v, want 1", p.Volume())
	}
	p.SetVolume(-1)
	if p.Volume() != 0 {
		t.Errorf("Volume = %v, want 0", p.Volume())
	}
}

func TestSilentSinkClock(t *testing.T) {
	now := time.Unix(0, 0)
	s := &silentSink{length: time.Second, now: func() time.Time { return now }}

	s.Play()
	now = now.Add(400 * time.Millisecond)
	s.Pause()
	now = now.Add(time.Hour)
	if pos := s.Position(); pos != 400*time.Millisecond {
		t.Errorf("Position = %v, want 400ms", pos)
	}

	s.Play()
	now = now.Add(time.Second)
	if s.IsPlaying() {
		t.Error("sink should stop at its length")
	}

	_, _ = s.Seek(0, 0)
	if pos := s.Position(); pos != 0 {
		t.Errorf("Position after rewind = %v", pos)
	}
}
