// Package samplegen creates the sample audio files the backend serves.
package samplegen

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/dgnsrekt/voxdemo/internal/store"
)

// Placeholder is written when synthesis fails: an MPEG frame sync word with
// no audio behind it.
var Placeholder = []byte{0xFF, 0xE0}

// File describes one file in the static directory.
type File struct {
	Name        string
	Size        int64
	Placeholder bool
}

// HumanSize returns the size formatted for people.
func (f File) HumanSize() string {
	return humanize.Bytes(uint64(f.Size))
}

// Report is the outcome of a Generate run.
type Report struct {
	// Skipped is true when every required file already existed.
	Skipped bool
	// Files lists the static directory after the run.
	Files []File
}

// Generator writes one MP3 per seed sample into a static directory.
type Generator struct {
	dir   string
	synth Synthesizer
	seeds []store.SeedSample
	force bool
}

// Option configures a Generator.
type Option func(*Generator)

// WithForce regenerates files that already exist.
func WithForce(force bool) Option {
	return func(g *Generator) {
		g.force = force
	}
}

// WithSeeds replaces the built-in seed samples.
func WithSeeds(seeds []store.SeedSample) Option {
	return func(g *Generator) {
		g.seeds = seeds
	}
}

// New returns a generator writing into dir.
func New(dir string, synth Synthesizer, opts ...Option) *Generator {
	g := &Generator{dir: dir, synth: synth, seeds: store.Seeds}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate synthesizes the seed samples unless they all exist already. If
// synthesis of any sample fails, every missing file gets a placeholder
// instead.
func (g *Generator) Generate(ctx context.Context) (Report, error) {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return Report{}, fmt.Errorf("create static dir: %w", err)
	}

	if !g.force && g.complete() {
		log.Info("audio files already exist", "dir", g.dir)
		files, err := g.list()
		return Report{Skipped: true, Files: files}, err
	}

	if err := g.synthesizeAll(ctx); err != nil {
		if ctx.Err() != nil {
			return Report{}, ctx.Err()
		}
		log.Warn("synthesis failed, writing placeholders", "error", err)
		if err := g.writePlaceholders(); err != nil {
			return Report{}, err
		}
	}

	files, err := g.list()
	return Report{Files: files}, err
}

func (g *Generator) complete() bool {
	for _, s := range g.seeds {
		if _, err := os.Stat(filepath.Join(g.dir, s.Filename)); err != nil {
			return false
		}
	}
	return true
}

// synthesizeAll renders every seed before writing any, so a failure leaves
// the directory untouched.
func (g *Generator) synthesizeAll(ctx context.Context) error {
	if g.synth == nil {
		return errors.New("no synthesizer")
	}

	audio := make(map[string][]byte, len(g.seeds))
	for _, s := range g.seeds {
		data, err := g.synth.Synthesize(ctx, Clean(s.Text), s.Language)
		if err != nil {
			return fmt.Errorf("%s: %w", s.Language, err)
		}
		audio[s.Filename] = data
	}

	for name, data := range audio {
		if err := writeFile(filepath.Join(g.dir, name), data); err != nil {
			return err
		}
		log.Info("generated sample", "file", name, "size", humanize.Bytes(uint64(len(data))))
	}
	return nil
}

func (g *Generator) writePlaceholders() error {
	for _, s := range g.seeds {
		path := filepath.Join(g.dir, s.Filename)
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if err := writeFile(path, Placeholder); err != nil {
			return err
		}
		log.Info("created placeholder", "file", s.Filename)
	}
	return nil
}

func (g *Generator) list() ([]File, error) {
	entries, err := os.ReadDir(g.dir)
	if err != nil {
		return nil, fmt.Errorf("list static dir: %w", err)
	}

	var files []File
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, File{
			Name:        e.Name(),
			Size:        info.Size(),
			Placeholder: info.Size() == int64(len(Placeholder)),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func writeFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return os.Rename(tmp, path)
}
