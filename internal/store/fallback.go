package store

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
)

// FallbackStore reads from primary and answers from secondary when primary
// fails. Writes go to primary only.
type FallbackStore struct {
	primary   Store
	secondary Store
}

// NewFallbackStore returns a store that prefers primary for reads.
func NewFallbackStore(primary, secondary Store) *FallbackStore {
	return &FallbackStore{primary: primary, secondary: secondary}
}

// usable reports whether err is an answer rather than a backend failure.
func usable(err error) bool {
	return err == nil || errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidID) || errors.Is(err, ErrInvalidRecord)
}

func (f *FallbackStore) List(ctx context.Context) ([]Record, error) {
	records, err := f.primary.List(ctx)
	if usable(err) {
		return records, err
	}
	log.Warn("primary store failed, using fallback", "op", "list", "error", err)
	return f.secondary.List(ctx)
}

func (f *FallbackStore) FindByLanguage(ctx context.Context, code string) (Record, error) {
	r, err := f.primary.FindByLanguage(ctx, code)
	if usable(err) {
		return r, err
	}
	log.Warn("primary store failed, using fallback", "op", "find", "language", code, "error", err)
	return f.secondary.FindByLanguage(ctx, code)
}

func (f *FallbackStore) Create(ctx context.Context, r Record) (Record, error) {
	return f.primary.Create(ctx, r)
}

func (f *FallbackStore) Delete(ctx context.Context, id string) error {
	return f.primary.Delete(ctx, id)
}

func (f *FallbackStore) Count(ctx context.Context) (int, error) {
	n, err := f.primary.Count(ctx)
	if err == nil {
		return n, nil
	}
	log.Warn("primary store failed, using fallback", "op", "count", "error", err)
	return f.secondary.Count(ctx)
}
