// Package download writes sample audio into a local directory.
package download

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/mitchellh/go-homedir"
)

// maxSuffix bounds the " (n)" names tried before giving up.
const maxSuffix = 99

// ErrEmptyName is returned when Save is called without a file name.
var ErrEmptyName = errors.New("empty file name")

// Fetcher loads the bytes of an audio resource.
type Fetcher interface {
	FetchAudio(ctx context.Context, location string) ([]byte, error)
}

// Saver saves audio resources into Dir. Existing files are never
// overwritten; a numbered name is chosen instead, the way browsers do.
type Saver struct {
	fetch Fetcher
	dir   string
}

// NewSaver returns a saver writing into dir. A leading ~ is expanded.
func NewSaver(fetch Fetcher, dir string) (*Saver, error) {
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return nil, fmt.Errorf("expand download dir: %w", err)
	}
	if expanded == "" {
		expanded = "."
	}
	return &Saver{fetch: fetch, dir: expanded}, nil
}

// Dir returns the directory files are written to.
func (s *Saver) Dir() string {
	return s.dir
}

// Save fetches location and writes it as name, returning the written path.
func (s *Saver) Save(ctx context.Context, location, name string) (string, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", ErrEmptyName
	}

	data, err := s.fetch.FetchAudio(ctx, location)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}

	path, err := s.write(name, data)
	if err != nil {
		return "", err
	}

	log.Info("sample saved", "path", path, "size", humanize.Bytes(uint64(len(data))))
	return path, nil
}

// write stages data in a temp file and links it under the first free name.
func (s *Saver) write(name string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(s.dir, ".voxdemo-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("write temp file: %w", err)
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 0; i <= maxSuffix; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
		}
		path := filepath.Join(s.dir, candidate)

		// Link fails if path exists, so a concurrent writer cannot be clobbered.
		err := os.Link(tmp.Name(), path)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("save %s: %w", candidate, err)
		}
	}
	return "", fmt.Errorf("save %s: too many existing copies", name)
}
