package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

func newTestServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var audioHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/languages", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"code":"english","name":"English","flag":"🇺🇸"},{"code":"arabic","name":"Arabic","flag":"🇸🇦"}]`))
	})
	mux.HandleFunc("/api/audio/english", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"1","language":"english","text":"Hello world","audio_url":"/en.mp3","filename":"english_sample.mp3"}`))
	})
	mux.HandleFunc("/api/audio/klingon", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Audio for language 'klingon' not found"}`))
	})
	mux.HandleFunc("/en.mp3", func(w http.ResponseWriter, _ *http.Request) {
		audioHits.Add(1)
		_, _ = w.Write([]byte{0xff, 0xe0, 0x01, 0x02})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &audioHits
}

func TestClient_Languages(t *testing.T) {
	srv, _ := newTestServer(t)
	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	langs, err := c.Languages(context.Background())
	if err != nil {
		t.Fatalf("Languages: %v", err)
	}
	if len(langs) != 2 || langs[0].Code != "english" || langs[1].Flag != "🇸🇦" {
		t.Errorf("unexpected languages: %+v", langs)
	}
}

func TestClient_Sample(t *testing.T) {
	srv, _ := newTestServer(t)
	c, _ := NewClient(srv.URL + "/")

	s, err := c.Sample(context.Background(), "english")
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if s.Text != "Hello world" || s.AudioLocation != "/en.mp3" || s.Language != "english" {
		t.Errorf("unexpected sample: %+v", s)
	}
}

func TestClient_SampleNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	c, _ := NewClient(srv.URL)

	_, err := c.Sample(context.Background(), "klingon")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Status != http.StatusNotFound || !strings.Contains(se.Detail, "klingon") {
		t.Errorf("unexpected status error: %+v", se)
	}
}

func TestClient_ResolveLocation(t *testing.T) {
	c, _ := NewClient("http://backend.test:8000")

	tests := []struct {
		in   string
		want string
	}{
		{"/static/english_sample.mp3", "http://backend.test:8000/static/english_sample.mp3"},
		{"https://cdn.test/a.mp3", "https://cdn.test/a.mp3"},
	}
	for _, tt := range tests {
		got, err := c.ResolveLocation(tt.in)
		if err != nil {
			t.Errorf("ResolveLocation(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolveLocation(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := c.ResolveLocation(""); !errors.Is(err, ErrEmptyLocation) {
		t.Errorf("empty location: %v", err)
	}
}

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *mapCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *mapCache) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func TestClient_FetchAudioUsesCache(t *testing.T) {
	srv, hits := newTestServer(t)
	cache := &mapCache{data: map[string][]byte{}}
	c, _ := NewClient(srv.URL, WithAudioCache(cache))

	for i := 0; i < 3; i++ {
		data, err := c.FetchAudio(context.Background(), "/en.mp3")
		if err != nil {
			t.Fatalf("FetchAudio: %v", err)
		}
		if len(data) != 4 || data[0] != 0xff {
			t.Errorf("unexpected audio bytes: %v", data)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1", hits.Load())
	}
	if _, ok := cache.Get(srv.URL + "/en.mp3"); !ok {
		t.Error("audio not cached under absolute URL")
	}
}

func TestNewClient_RejectsBadScheme(t *testing.T) {
	if _, err := NewClient("ftp://example.com"); err == nil {
		t.Error("expected error for ftp scheme")
	}
	c, err := NewClient("")
	if err != nil {
		t.Fatalf("empty base: %v", err)
	}
	if c.BaseURL() != DefaultBaseURL {
		t.Errorf("BaseURL = %q", c.BaseURL())
	}
}
