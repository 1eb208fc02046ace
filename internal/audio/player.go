package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

const (
	defaultTimeout = 15 * time.Second
	pollInterval   = 50 * time.Millisecond
)

var (
	// ErrClosed is returned by operations on a closed player.
	ErrClosed = errors.New("player closed")
	// ErrNotBound is returned by Play before any resource was bound.
	ErrNotBound = errors.New("no audio bound")
)

// Fetcher loads the bytes of an audio resource.
type Fetcher interface {
	FetchAudio(ctx context.Context, location string) ([]byte, error)
}

// sink is the subset of *oto.Player the player drives.
type sink interface {
	Play()
	Pause()
	IsPlaying() bool
	SetVolume(volume float64)
	Seek(offset int64, whence int) (int64, error)
}

// device is an opened audio output.
type device interface {
	NewSink(r io.ReadSeeker) sink
	SampleRate() int
}

type otoDevice struct {
	ctx  *oto.Context
	rate int
}

func (d *otoDevice) NewSink(r io.ReadSeeker) sink { return d.ctx.NewPlayer(r) }
func (d *otoDevice) SampleRate() int              { return d.rate }

// oto allows a single context per process.
var (
	otoOnce sync.Once
	otoDev  *otoDevice
	otoErr  error
)

func openOto(rate int) (device, error) {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   rate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			otoErr = fmt.Errorf("open audio device: %w", err)
			return
		}
		<-ready
		otoDev = &otoDevice{ctx: ctx, rate: rate}
	})
	if otoErr != nil {
		return nil, otoErr
	}
	return otoDev, nil
}

// Option configures a Player.
type Option func(*Player)

// WithVolume sets the initial volume in [0, 1].
func WithVolume(v float64) Option {
	return func(p *Player) {
		p.volume = clampVolume(v)
	}
}

// WithTimeout bounds how long Play waits for a resource to download.
func WithTimeout(d time.Duration) Option {
	return func(p *Player) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func withDevice(open func(rate int) (device, error)) Option {
	return func(p *Player) {
		p.open = open
	}
}

func withDecoder(decode func([]byte) (PCM, error)) Option {
	return func(p *Player) {
		p.decode = decode
	}
}

// Player plays one bound resource at a time. Bind only records the
// location; the first Play after a Bind downloads and decodes it.
type Player struct {
	fetch   Fetcher
	timeout time.Duration
	open    func(rate int) (device, error)
	decode  func([]byte) (PCM, error)

	mu       sync.Mutex
	dev      device
	location string
	pcm      []byte // kept referenced while out is alive
	out      sink
	active   bool // Play called and not paused since
	finished bool
	run      uint64 // bumped on every state change to retire monitors
	volume   float64
	onEnd    func(stillEnded func() bool)
	closed   bool
}

// NewPlayer returns a player that downloads resources through fetch.
func NewPlayer(fetch Fetcher, opts ...Option) *Player {
	p := &Player{
		fetch:   fetch,
		timeout: defaultTimeout,
		open:    openOto,
		decode:  Decode,
		volume:  1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetOnEnd registers fn to run when a resource plays to completion. fn is
// called without the player lock; stillEnded reports whether nothing was
// played, paused or bound since the end.
func (p *Player) SetOnEnd(fn func(stillEnded func() bool)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onEnd = fn
}

// Bind releases the current resource and records location as the next one.
func (p *Player) Bind(location string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	p.release()
	p.location = location
	return nil
}

// Play starts or resumes the bound resource. A resource that already played
// to completion starts over.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if p.location == "" {
		return ErrNotBound
	}

	if p.out == nil {
		if err := p.load(); err != nil {
			return err
		}
	}
	if p.finished {
		if _, err := p.out.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("rewind: %w", err)
		}
		p.finished = false
	}

	p.out.SetVolume(p.volume)
	p.out.Play()
	p.active = true
	p.run++
	go p.monitor(p.run, p.out)
	return nil
}

// load must be called with mu held.
func (p *Player) load() error {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	data, err := p.fetch.FetchAudio(ctx, p.location)
	if err != nil {
		return err
	}
	pcm, err := p.decode(data)
	if err != nil {
		return err
	}

	if p.dev == nil {
		dev, err := p.open(pcm.SampleRate)
		if err != nil {
			return err
		}
		p.dev = dev
	}
	pcm = pcm.Resample(p.dev.SampleRate())

	log.Debug("audio loaded", "location", p.location, "duration", pcm.Duration().Round(time.Millisecond))
	p.pcm = pcm.Data
	p.out = p.dev.NewSink(bytes.NewReader(p.pcm))
	p.finished = false
	return nil
}

// Pause pauses playback. Pausing with nothing loaded is a no-op.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if p.out != nil {
		p.out.Pause()
	}
	p.active = false
	p.run++
	return nil
}

// Stop pauses playback and rewinds to the start.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.active = false
	p.run++
	if p.out == nil {
		return nil
	}
	p.out.Pause()
	if _, err := p.out.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind: %w", err)
	}
	p.finished = false
	return nil
}

// SetVolume sets the output volume in [0, 1].
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.volume = clampVolume(v)
	if p.out != nil {
		p.out.SetVolume(p.volume)
	}
}

// Volume returns the output volume.
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Close stops playback. The output device stays open for the process.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.release()
	p.location = ""
	p.onEnd = nil
	p.closed = true
	return nil
}

// release must be called with mu held.
func (p *Player) release() {
	if p.out != nil {
		p.out.Pause()
	}
	p.out = nil
	p.pcm = nil
	p.active = false
	p.finished = false
	p.run++
}

// monitor waits for out to drain and reports the natural end. It exits
// quietly once run is superseded.
func (p *Player) monitor(run uint64, out sink) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for range ticker.C {
		p.mu.Lock()
		if p.run != run || p.out != out {
			p.mu.Unlock()
			return
		}
		if out.IsPlaying() {
			p.mu.Unlock()
			continue
		}

		p.active = false
		p.finished = true
		p.run++
		ended := p.run
		fn := p.onEnd
		p.mu.Unlock()

		if fn != nil {
			fn(func() bool { return p.endedAt(ended) })
		}
		return
	}
}

// endedAt reports whether the natural end recorded at run still holds.
func (p *Player) endedAt(run uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.run == run && p.finished
}

func clampVolume(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// IsPlaying reports whether audio is being produced.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}
