package coordinator

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
)

// CatalogLoader fetches the language list exactly once.
type CatalogLoader struct {
	source CatalogSource

	mu        sync.RWMutex
	attempted bool
	loaded    bool
	languages []Language
}

// NewCatalogLoader returns a loader backed by source.
func NewCatalogLoader(source CatalogSource) *CatalogLoader {
	return &CatalogLoader{source: source}
}

// Load issues the single catalog request. A failed load leaves the catalog
// empty; later calls return ErrCatalogLoaded without contacting the source.
func (l *CatalogLoader) Load(ctx context.Context) error {
	l.mu.Lock()
	if l.attempted {
		l.mu.Unlock()
		return ErrCatalogLoaded
	}
	l.attempted = true
	l.mu.Unlock()

	languages, err := l.source.Languages(ctx)
	if err != nil {
		return &Error{Op: OpCatalog, Cause: err}
	}

	loaded := make([]Language, len(languages))
	copy(loaded, languages)

	l.mu.Lock()
	l.languages = loaded
	l.loaded = true
	l.mu.Unlock()

	log.Debug("language catalog loaded", "count", len(loaded))
	return nil
}

// Languages returns a copy of the catalog in backend order.
func (l *CatalogLoader) Languages() []Language {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Language, len(l.languages))
	copy(out, l.languages)
	return out
}

// Loaded reports whether the catalog request succeeded.
func (l *CatalogLoader) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}

// Find looks up a language by code.
func (l *CatalogLoader) Find(code string) (Language, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, lang := range l.languages {
		if lang.Code == code {
			return lang, true
		}
	}
	return Language{}, false
}
