// Package store keeps the sample records served by the backend. Records live
// in Redis when one is configured and in process memory otherwise.
package store

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when no record matches.
	ErrNotFound = errors.New("sample not found")
	// ErrInvalidID is returned for ids that are not UUIDs.
	ErrInvalidID = errors.New("invalid sample id")
	// ErrInvalidRecord is returned when a required field is empty.
	ErrInvalidRecord = errors.New("invalid sample record")
)

// Record is one sample: a text in some language and where its audio lives.
type Record struct {
	ID       string `json:"id"`
	Language string `json:"language"`
	Text     string `json:"text"`
	AudioURL string `json:"audio_url"`
	Filename string `json:"filename"`
}

// Validate reports the first missing field.
func (r Record) Validate() error {
	for _, f := range []struct{ name, value string }{
		{"language", r.Language},
		{"text", r.Text},
		{"audio_url", r.AudioURL},
		{"filename", r.Filename},
	} {
		if strings.TrimSpace(f.value) == "" {
			return &FieldError{Field: f.name}
		}
	}
	return nil
}

// FieldError names a missing required field.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return "field required: " + e.Field
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidRecord
}

// Store is implemented by the record backends.
type Store interface {
	// List returns every record in insertion order.
	List(ctx context.Context) ([]Record, error)
	// FindByLanguage returns the first record whose language matches code,
	// ignoring case.
	FindByLanguage(ctx context.Context, code string) (Record, error)
	// Create assigns an id and stores r.
	Create(ctx context.Context, r Record) (Record, error)
	// Delete removes the record with id.
	Delete(ctx context.Context, id string) error
	// Count returns the number of records.
	Count(ctx context.Context) (int, error)
}

func matchLanguage(records []Record, code string) (Record, error) {
	for _, r := range records {
		if strings.EqualFold(r.Language, code) {
			return r, nil
		}
	}
	return Record{}, ErrNotFound
}
