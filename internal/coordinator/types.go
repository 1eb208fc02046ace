package coordinator

import "context"

// DefaultLanguage is the selection used before the visitor picks one.
const DefaultLanguage = "english"

// AudioExtension is appended to the language code when a sample is saved.
const AudioExtension = ".mp3"

// Language is one entry of the language catalog.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Flag string `json:"flag"`
}

// Label returns the flag and name as shown in the selector.
func (l Language) Label() string {
	if l.Flag == "" {
		return l.Name
	}
	return l.Flag + " " + l.Name
}

// Sample is the text and audio pair for one language.
type Sample struct {
	Language      string
	Text          string
	AudioLocation string
}

// Loaded reports whether the sample has a playable audio location.
func (s Sample) Loaded() bool {
	return s.AudioLocation != ""
}

// CatalogSource provides the ordered list of languages.
type CatalogSource interface {
	Languages(ctx context.Context) ([]Language, error)
}

// SampleSource resolves the sample for a language code.
type SampleSource interface {
	Sample(ctx context.Context, code string) (Sample, error)
}

// Handle is the audio output resource. Bind only records the location; the
// resource is fetched when Play is first called for it. Callers silence the
// handle with Stop before binding a new location.
//
// The function passed to SetOnEnd is called once each time the bound
// resource plays to completion. Its argument reports whether that end still
// describes the handle; it turns false once the handle is played, paused,
// stopped or rebound again.
type Handle interface {
	Bind(location string) error
	Play() error
	Pause() error
	Stop() error
	Close() error
	SetOnEnd(fn func(stillEnded func() bool))
}

// Saver writes the resource at location to local storage under name and
// returns the path it was written to.
type Saver interface {
	Save(ctx context.Context, location, name string) (string, error)
}
