package coordinator

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

const defaultEventBuffer = 32

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithDefaultLanguage sets the initial selection.
func WithDefaultLanguage(code string) Option {
	return func(c *Coordinator) {
		if code != "" {
			c.defaultLanguage = code
		}
	}
}

// WithEventBuffer sets the size of the event channel.
func WithEventBuffer(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.eventBuffer = n
		}
	}
}

// Coordinator is the state container behind the text to speech tab.
type Coordinator struct {
	catalog  *CatalogLoader
	resolver *Resolver
	playback *PlaybackController
	download *DownloadTrigger

	defaultLanguage string
	eventBuffer     int
	events          chan Event
	closed          atomic.Bool
}

// New wires the four components together. The coordinator takes ownership
// of handle.
func New(catalog CatalogSource, samples SampleSource, handle Handle, saver Saver, opts ...Option) *Coordinator {
	c := &Coordinator{
		defaultLanguage: DefaultLanguage,
		eventBuffer:     defaultEventBuffer,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.events = make(chan Event, c.eventBuffer)
	c.catalog = NewCatalogLoader(catalog)
	c.resolver = NewResolver(samples, c.defaultLanguage)
	c.download = NewDownloadTrigger(saver)
	c.playback = NewPlaybackController(handle)
	handle.SetOnEnd(c.OnNaturalEnd)
	return c
}

// DefaultLanguage returns the initial selection.
func (c *Coordinator) DefaultLanguage() string {
	return c.defaultLanguage
}

// Events returns the channel state changes are published on. Events are
// dropped when the buffer is full; pending events already signal a change.
func (c *Coordinator) Events() <-chan Event {
	return c.events
}

// Start loads the catalog and resolves the default selection. Failures are
// logged and leave the coordinator usable.
func (c *Coordinator) Start(ctx context.Context) {
	_ = c.LoadCatalog(ctx)
	_ = c.Select(ctx, c.defaultLanguage)
}

// LoadCatalog performs the one catalog load.
func (c *Coordinator) LoadCatalog(ctx context.Context) error {
	if err := c.catalog.Load(ctx); err != nil {
		if errors.Is(err, ErrCatalogLoaded) {
			return err
		}
		log.Warn("failed to load language catalog", "error", err)
		c.publish(Event{Kind: EventCatalogFailed, Err: err})
		return err
	}
	c.publish(Event{Kind: EventCatalogLoaded})
	return nil
}

// SelectLanguage changes the selection and returns the request to resolve.
func (c *Coordinator) SelectLanguage(code string) (Request, error) {
	if c.closed.Load() {
		return Request{}, ErrClosed
	}
	req, err := c.resolver.Select(code)
	if err != nil {
		return Request{}, err
	}
	log.Debug("language selected", "language", code, "generation", req.Generation)
	return req, nil
}

// Resolve fetches the sample for req and, if req is still current, swaps
// the displayed sample and rebinds the handle as one step.
func (c *Coordinator) Resolve(ctx context.Context, req Request) error {
	sample, err := c.resolver.Resolve(ctx, req, func(s Sample, install func(bind func() error) error) error {
		return c.playback.Rebind(s.AudioLocation, install)
	})
	switch {
	case errors.Is(err, ErrStaleResolution):
		log.Debug("discarding stale sample", "language", req.Language, "generation", req.Generation)
		return err
	case err != nil:
		log.Warn("failed to resolve sample", "language", req.Language, "error", err)
		c.publish(Event{Kind: EventSampleFailed, Err: err})
		return err
	}

	log.Debug("sample resolved", "language", sample.Language, "audio", sample.AudioLocation)
	c.publish(Event{Kind: EventSampleResolved})
	return nil
}

// Select changes the selection and resolves it.
func (c *Coordinator) Select(ctx context.Context, code string) error {
	req, err := c.SelectLanguage(code)
	if err != nil {
		return err
	}
	return c.Resolve(ctx, req)
}

// TogglePlayback toggles play/pause and returns whether audio is playing
// afterwards. Failures are logged, never returned.
func (c *Coordinator) TogglePlayback() bool {
	if err := c.playback.Toggle(); err != nil {
		log.Error("playback failed", "error", &Error{Op: OpPlayback, Cause: err})
	}
	c.publish(Event{Kind: EventPlaybackChanged})
	return c.playback.IsPlaying()
}

// OnNaturalEnd is called by the handle when the bound resource finishes.
// Ends that playback has already moved past are ignored.
func (c *Coordinator) OnNaturalEnd(stillEnded func() bool) {
	if !c.playback.OnNaturalEnd(stillEnded) {
		log.Debug("ignoring superseded end of playback")
		return
	}
	c.publish(Event{Kind: EventPlaybackEnded})
}

// Download saves the loaded sample as <code>.mp3, named after the language
// the sample belongs to. While a newer selection is still resolving that is
// the previous language.
func (c *Coordinator) Download(ctx context.Context) (string, error) {
	_, sample, _ := c.resolver.Current()
	path, err := c.download.Download(ctx, sample.Language, sample)
	switch {
	case errors.Is(err, ErrNoSample):
		log.Debug("download ignored, no sample loaded")
		return "", err
	case err != nil:
		log.Warn("download failed", "error", err)
		c.publish(Event{Kind: EventDownloadFailed, Err: err})
		return "", err
	}

	log.Info("sample saved", "path", path)
	c.publish(Event{Kind: EventDownloaded, Path: path})
	return path, nil
}

// Snapshot returns the current state.
func (c *Coordinator) Snapshot() Snapshot {
	selected, sample, pending := c.resolver.Current()
	return Snapshot{
		Languages:     c.catalog.Languages(),
		CatalogLoaded: c.catalog.Loaded(),
		Selected:      selected,
		Sample:        sample,
		Resolving:     pending,
		Playback:      c.playback.State(),
		IsPlaying:     c.playback.IsPlaying(),
	}
}

// Close releases the audio handle. Further selections fail with ErrClosed.
func (c *Coordinator) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.playback.Close()
}

func (c *Coordinator) publish(ev Event) {
	select {
	case c.events <- ev:
	default:
		log.Debug("event dropped", "kind", ev.Kind)
	}
}
