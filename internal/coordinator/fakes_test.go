package coordinator

import (
	"context"
	"errors"
	"sync"
)

type fakeCatalog struct {
	languages []Language
	err       error
	calls     int
}

func (f *fakeCatalog) Languages(context.Context) ([]Language, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.languages, nil
}

// fakeSamples serves samples by code. When a gate is registered for a code
// the call blocks until the gate is closed.
type fakeSamples struct {
	mu      sync.Mutex
	samples map[string]Sample
	errs    map[string]error
	gates   map[string]chan struct{}
	calls   []string
}

func newFakeSamples() *fakeSamples {
	return &fakeSamples{
		samples: map[string]Sample{},
		errs:    map[string]error{},
		gates:   map[string]chan struct{}{},
	}
}

func (f *fakeSamples) gate(code string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[code] = ch
	return ch
}

func (f *fakeSamples) Sample(ctx context.Context, code string) (Sample, error) {
	f.mu.Lock()
	f.calls = append(f.calls, code)
	gate := f.gates[code]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return Sample{}, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[code]; err != nil {
		return Sample{}, err
	}
	s, ok := f.samples[code]
	if !ok {
		return Sample{}, errors.New("not found")
	}
	return s, nil
}

type fakeHandle struct {
	mu       sync.Mutex
	bound    []string
	plays    int
	pauses   int
	stops    int
	closed   bool
	playErr  error
	pauseErr error
	panicMsg string
	onEnd    func(stillEnded func() bool)
}

func (h *fakeHandle) Bind(location string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return errors.New("closed")
	}
	h.bound = append(h.bound, location)
	return nil
}

func (h *fakeHandle) Play() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.panicMsg != "" {
		panic(h.panicMsg)
	}
	if h.playErr != nil {
		return h.playErr
	}
	h.plays++
	return nil
}

func (h *fakeHandle) Pause() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pauses++
	return h.pauseErr
}

func (h *fakeHandle) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stops++
	return nil
}

func (h *fakeHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

func (h *fakeHandle) SetOnEnd(fn func(stillEnded func() bool)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onEnd = fn
}

// finish simulates the bound resource playing to completion.
func (h *fakeHandle) finish() {
	h.finishWith(func() bool { return true })
}

// finishWith delivers an end notification whose validity is reported by
// stillEnded.
func (h *fakeHandle) finishWith(stillEnded func() bool) {
	h.mu.Lock()
	fn := h.onEnd
	h.mu.Unlock()
	if fn != nil {
		fn(stillEnded)
	}
}

func (h *fakeHandle) stopCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stops
}

func (h *fakeHandle) lastBound() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.bound) == 0 {
		return ""
	}
	return h.bound[len(h.bound)-1]
}

// blockingHandle is a fakeHandle whose Play blocks until release is closed,
// like a first play that is still downloading its resource.
type blockingHandle struct {
	fakeHandle
	started chan struct{}
	release chan struct{}
}

func newBlockingHandle() *blockingHandle {
	return &blockingHandle{started: make(chan struct{}, 1), release: make(chan struct{})}
}

func (h *blockingHandle) Play() error {
	select {
	case h.started <- struct{}{}:
	default:
	}
	<-h.release
	return h.fakeHandle.Play()
}

type saveCall struct {
	location string
	name     string
}

type fakeSaver struct {
	calls []saveCall
	err   error
}

func (s *fakeSaver) Save(_ context.Context, location, name string) (string, error) {
	s.calls = append(s.calls, saveCall{location: location, name: name})
	if s.err != nil {
		return "", s.err
	}
	return "/downloads/" + name, nil
}

var testLanguages = []Language{
	{Code: "english", Name: "English", Flag: "🇺🇸"},
	{Code: "arabic", Name: "Arabic", Flag: "🇸🇦"},
}

func newTestCoordinator() (*Coordinator, *fakeCatalog, *fakeSamples, *fakeHandle, *fakeSaver) {
	catalog := &fakeCatalog{languages: testLanguages}
	samples := newFakeSamples()
	samples.samples["english"] = Sample{Text: "Hello world", AudioLocation: "/en.mp3"}
	samples.samples["arabic"] = Sample{Text: "مرحبا بالعالم", AudioLocation: "/ar.mp3"}
	handle := &fakeHandle{}
	saver := &fakeSaver{}
	return New(catalog, samples, handle, saver), catalog, samples, handle, saver
}
