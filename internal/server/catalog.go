package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Language is one entry of the supported-language catalog.
type Language struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
	Flag string `json:"flag" yaml:"flag"`
}

// DefaultLanguages is the catalog served when no catalog file is configured.
var DefaultLanguages = []Language{
	{Code: "english", Name: "English", Flag: "🇺🇸"},
	{Code: "arabic", Name: "Arabic", Flag: "🇸🇦"},
	{Code: "spanish", Name: "Spanish", Flag: "🇪🇸"},
	{Code: "french", Name: "French", Flag: "🇫🇷"},
	{Code: "german", Name: "German", Flag: "🇩🇪"},
}

// ErrEmptyCatalog is returned for catalog files with no usable entries.
var ErrEmptyCatalog = errors.New("catalog has no languages")

type catalogFile struct {
	Languages []Language `yaml:"languages"`
}

// Catalog holds the served language list. It can follow a YAML file and
// reload it when the file changes.
type Catalog struct {
	mu        sync.RWMutex
	languages []Language
	path      string
}

// NewCatalog returns a catalog serving languages.
func NewCatalog(languages []Language) *Catalog {
	return &Catalog{languages: slices.Clone(languages)}
}

// LoadCatalog reads the catalog file at path.
func LoadCatalog(path string) (*Catalog, error) {
	langs, err := readCatalog(path)
	if err != nil {
		return nil, err
	}
	c := NewCatalog(langs)
	c.path = path
	return c, nil
}

// Languages returns a copy of the current list.
func (c *Catalog) Languages() []Language {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.languages)
}

// Reload re-reads the catalog file. A file that fails to parse leaves the
// current list in place.
func (c *Catalog) Reload() error {
	if c.path == "" {
		return nil
	}
	langs, err := readCatalog(c.path)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.languages = langs
	c.mu.Unlock()

	log.Info("catalog reloaded", "file", c.path, "languages", len(langs))
	return nil
}

// Watch reloads the catalog whenever its file is written or replaced until
// ctx is done. It returns immediately for catalogs without a file.
func (c *Catalog) Watch(ctx context.Context) error {
	if c.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory so editors that replace the file are seen.
	dir := filepath.Dir(c.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	log.Debug("watching catalog", "file", c.path)

	target := filepath.Clean(c.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := c.Reload(); err != nil {
				log.Warn("catalog reload failed, keeping previous", "file", c.path, "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Debug("fsnotify error", "dir", dir, "error", err)
		}
	}
}

func readCatalog(path string) ([]Language, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	langs := normalize(f.Languages)
	if len(langs) == 0 {
		return nil, ErrEmptyCatalog
	}
	return langs, nil
}

// normalize lowercases codes, title-cases missing names and drops entries
// without a code or with a duplicate code.
func normalize(in []Language) []Language {
	lower := cases.Lower(language.Und)
	title := cases.Title(language.English)

	seen := make(map[string]bool, len(in))
	out := make([]Language, 0, len(in))
	for _, l := range in {
		code := lower.String(strings.TrimSpace(l.Code))
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true

		name := strings.TrimSpace(l.Name)
		if name == "" {
			name = title.String(code)
		}
		out = append(out, Language{Code: code, Name: name, Flag: strings.TrimSpace(l.Flag)})
	}
	return out
}
