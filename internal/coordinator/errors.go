package coordinator

import (
	"errors"
	"fmt"
)

var (
	// ErrCatalogLoaded is returned when the catalog load is attempted more than once.
	ErrCatalogLoaded = errors.New("language catalog already loaded")

	// ErrEmptyLanguage is returned when a selection is made with an empty code.
	ErrEmptyLanguage = errors.New("language code is empty")

	// ErrStaleResolution is returned when a resolution completes after a newer
	// selection was made. Its result is discarded.
	ErrStaleResolution = errors.New("sample resolution superseded by a newer selection")

	// ErrNothingBound is returned when playback is requested before any sample
	// has been resolved.
	ErrNothingBound = errors.New("no audio resource bound")

	// ErrNoSample is returned by Download when no sample is loaded.
	ErrNoSample = errors.New("no sample loaded")

	// ErrClosed is returned after the coordinator has been closed.
	ErrClosed = errors.New("coordinator closed")
)

// Op identifies the operation that failed.
type Op string

const (
	OpCatalog  Op = "catalog"
	OpResolve  Op = "resolve"
	OpPlayback Op = "playback"
	OpDownload Op = "download"
)

// Error wraps a failure with the operation and language it applied to.
type Error struct {
	Op       Op
	Language string
	Cause    error
}

func (e *Error) Error() string {
	if e.Language != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Language, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsOp reports whether err is an *Error for the given operation.
func IsOp(err error, op Op) bool {
	var e *Error
	return errors.As(err, &e) && e.Op == op
}
