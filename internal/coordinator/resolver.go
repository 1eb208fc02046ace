package coordinator

import (
	"context"
	"errors"
	"sync"
)

// Request identifies one resolution. Generation increases with every
// selection; only the request matching the latest generation may commit.
type Request struct {
	Language   string
	Generation uint64
}

// Resolver owns the selection and the sample resolved for it.
type Resolver struct {
	source SampleSource

	mu         sync.Mutex
	selected   string
	generation uint64
	pending    bool
	sample     Sample
}

// NewResolver returns a resolver with the given initial selection.
func NewResolver(source SampleSource, initial string) *Resolver {
	return &Resolver{source: source, selected: initial}
}

// Select records a new selection and returns the request that must be
// resolved for it. Any outstanding request becomes stale.
func (r *Resolver) Select(code string) (Request, error) {
	if code == "" {
		return Request{}, ErrEmptyLanguage
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.generation++
	r.selected = code
	r.pending = true
	return Request{Language: code, Generation: r.generation}, nil
}

// CommitFunc installs a resolved sample. It is called without the resolver
// lock held and receives install, which re-checks the request under that
// lock and runs bind only while the request is still current. Text and
// location are swapped together: if bind fails the previous sample is kept.
type CommitFunc func(s Sample, install func(bind func() error) error) error

// Resolve fetches the sample for req and hands it to commit. A nil commit
// installs the sample directly. A failed or stale resolution leaves the
// previous sample intact.
func (r *Resolver) Resolve(ctx context.Context, req Request, commit CommitFunc) (Sample, error) {
	sample, err := r.source.Sample(ctx, req.Language)

	r.mu.Lock()
	if req.Generation != r.generation {
		r.mu.Unlock()
		return Sample{}, &Error{Op: OpResolve, Language: req.Language, Cause: ErrStaleResolution}
	}
	if err != nil {
		r.pending = false
		r.mu.Unlock()
		return Sample{}, &Error{Op: OpResolve, Language: req.Language, Cause: err}
	}
	r.mu.Unlock()

	sample.Language = req.Language
	install := func(bind func() error) error {
		r.mu.Lock()
		defer r.mu.Unlock()

		if req.Generation != r.generation {
			return ErrStaleResolution
		}
		r.pending = false
		if bind != nil {
			if err := bind(); err != nil {
				return err
			}
		}
		r.sample = sample
		return nil
	}

	if commit == nil {
		err = install(nil)
	} else {
		err = commit(sample, install)
	}
	if err != nil {
		if !errors.Is(err, ErrStaleResolution) {
			r.settle(req)
		}
		return Sample{}, &Error{Op: OpResolve, Language: req.Language, Cause: err}
	}
	return sample, nil
}

// settle clears pending for req when commit gave up before installing.
func (r *Resolver) settle(req Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req.Generation == r.generation {
		r.pending = false
	}
}

// Current returns the selection, the committed sample and whether a
// resolution for the selection is still outstanding.
func (r *Resolver) Current() (selected string, sample Sample, pending bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selected, r.sample, r.pending
}

// IsCurrent reports whether req matches the latest selection.
func (r *Resolver) IsCurrent(req Request) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return req.Generation == r.generation
}
