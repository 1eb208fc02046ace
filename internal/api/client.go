// Package api is the HTTP client for the sample backend. It implements the
// catalog and sample sources used by the coordinator and fetches audio
// resources for playback and download.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/voxdemo/internal/coordinator"
)

const (
	// DefaultBaseURL is used when no backend origin is configured.
	DefaultBaseURL = "http://localhost:8000"

	defaultTimeout = 15 * time.Second

	// maxAudioBytes bounds a single audio download.
	maxAudioBytes = 64 << 20
)

var (
	// ErrEmptyLocation is returned when an audio location is empty.
	ErrEmptyLocation = errors.New("audio location is empty")

	// ErrTooLarge is returned when an audio resource exceeds maxAudioBytes.
	ErrTooLarge = errors.New("audio resource too large")
)

// StatusError reports a non-200 response.
type StatusError struct {
	URL    string
	Status int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("GET %s: HTTP %d: %s", e.URL, e.Status, e.Detail)
	}
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.Status)
}

// AudioCache stores fetched audio keyed by absolute URL.
type AudioCache interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte) error
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithAudioCache caches fetched audio resources.
func WithAudioCache(cache AudioCache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// Client talks to the sample backend.
type Client struct {
	base  *url.URL
	http  *http.Client
	cache AudioCache
}

// NewClient returns a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", baseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url %q: %s is not a supported protocol", baseURL, base.Scheme)
	}

	c := &Client{
		base: base,
		http: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend origin.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Languages fetches GET /api/languages.
func (c *Client) Languages(ctx context.Context) ([]coordinator.Language, error) {
	var langs []coordinator.Language
	if err := c.getJSON(ctx, c.endpoint("api", "languages"), &langs); err != nil {
		return nil, err
	}
	return langs, nil
}

type sampleResponse struct {
	ID       string `json:"id"`
	Language string `json:"language"`
	Text     string `json:"text"`
	AudioURL string `json:"audio_url"`
	Filename string `json:"filename"`
}

// Sample fetches GET /api/audio/{code}.
func (c *Client) Sample(ctx context.Context, code string) (coordinator.Sample, error) {
	var resp sampleResponse
	if err := c.getJSON(ctx, c.endpoint("api", "audio", code), &resp); err != nil {
		return coordinator.Sample{}, err
	}
	return coordinator.Sample{
		Language:      code,
		Text:          resp.Text,
		AudioLocation: resp.AudioURL,
	}, nil
}

// ResolveLocation turns an origin-relative audio location into an absolute
// URL against the backend origin.
func (c *Client) ResolveLocation(location string) (string, error) {
	if location == "" {
		return "", ErrEmptyLocation
	}
	ref, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("invalid audio location %q: %w", location, err)
	}
	return c.base.ResolveReference(ref).String(), nil
}

// FetchAudio downloads the audio resource at location, consulting the cache
// first when one is configured.
func (c *Client) FetchAudio(ctx context.Context, location string) ([]byte, error) {
	abs, err := c.ResolveLocation(location)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if data, ok := c.cache.Get(abs); ok {
			log.Debug("audio cache hit", "url", abs, "bytes", len(data))
			return data, nil
		}
	}

	resp, err := c.get(ctx, abs)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", abs, err)
	}
	if len(data) > maxAudioBytes {
		return nil, ErrTooLarge
	}

	if c.cache != nil {
		if err := c.cache.Put(abs, data); err != nil {
			log.Debug("audio cache put failed", "url", abs, "error", err)
		}
	}
	return data, nil
}

func (c *Client) endpoint(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return c.base.String() + "/" + strings.Join(escaped, "/")
}

func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close() //nolint:errcheck
		return nil, &StatusError{URL: rawURL, Status: resp.StatusCode, Detail: readDetail(resp.Body)}
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, v any) error {
	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return nil
}

// readDetail extracts the "detail" field the backend puts in error bodies.
func readDetail(r io.Reader) string {
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 4096)).Decode(&body); err != nil {
		return ""
	}
	return body.Detail
}
