package samplegen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

const (
	// DefaultEndpoint is the Google Translate speech endpoint.
	DefaultEndpoint = "https://translate.google.com/translate_tts"

	// maxChunk is the longest text the endpoint accepts per request.
	maxChunk = 100

	defaultRequestsPerMinute = 50
	requestTimeout           = 30 * time.Second
	maxResponseBytes         = 8 << 20
)

// ErrUnknownLanguage is returned for language codes with no voice.
var ErrUnknownLanguage = errors.New("no voice for language")

// voices maps catalog codes to endpoint language tags.
var voices = map[string]string{
	"english": "en",
	"arabic":  "ar",
	"spanish": "es",
	"french":  "fr",
	"german":  "de",
}

// Synthesizer turns text into MP3 audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
}

// GoogleTTS synthesizes speech through the Google Translate endpoint. Text
// is sent in chunks of at most 100 characters and the MP3 responses are
// concatenated. Requests are rate limited to avoid being blocked.
type GoogleTTS struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

// GoogleOption configures GoogleTTS.
type GoogleOption func(*GoogleTTS)

// WithEndpoint overrides the synthesis endpoint.
func WithEndpoint(endpoint string) GoogleOption {
	return func(g *GoogleTTS) {
		g.endpoint = endpoint
	}
}

// WithRequestsPerMinute sets the request rate. Zero or less disables limiting.
func WithRequestsPerMinute(n int) GoogleOption {
	return func(g *GoogleTTS) {
		if n <= 0 {
			g.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		g.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) GoogleOption {
	return func(g *GoogleTTS) {
		g.client = c
	}
}

// NewGoogleTTS returns a synthesizer with a conservative rate limit.
func NewGoogleTTS(opts ...GoogleOption) *GoogleTTS {
	g := &GoogleTTS{
		endpoint: DefaultEndpoint,
		client:   &http.Client{Timeout: requestTimeout},
		limiter:  rate.NewLimiter(rate.Every(time.Minute/defaultRequestsPerMinute), 1),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Synthesize implements Synthesizer.
func (g *GoogleTTS) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	tl, ok := voices[language]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLanguage, language)
	}

	chunks := Chunk(text, maxChunk)
	if len(chunks) == 0 {
		return nil, errors.New("text cannot be empty")
	}

	var out bytes.Buffer
	for i, chunk := range chunks {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
		}
		data, err := g.fetch(ctx, chunk, tl, i, len(chunks))
		if err != nil {
			return nil, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		out.Write(data)
	}

	log.Debug("synthesized", "language", language, "chunks", len(chunks), "bytes", out.Len())
	return out.Bytes(), nil
}

func (g *GoogleTTS) fetch(ctx context.Context, text, tl string, idx, total int) ([]byte, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", tl)
	q.Set("q", text)
	q.Set("total", strconv.Itoa(total))
	q.Set("idx", strconv.Itoa(idx))
	q.Set("textlen", strconv.Itoa(len([]rune(text))))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Referer", "https://translate.google.com/")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("empty response")
	}
	return data, nil
}
