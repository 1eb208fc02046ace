package coordinator

import (
	"context"
	"errors"
	"testing"
	"time"
)

func drain(c *Coordinator) []EventKind {
	var kinds []EventKind
	for {
		select {
		case ev := <-c.Events():
			kinds = append(kinds, ev.Kind)
		default:
			return kinds
		}
	}
}

func TestCoordinator_StartResolvesDefault(t *testing.T) {
	c, _, _, handle, _ := newTestCoordinator()
	c.Start(context.Background())

	snap := c.Snapshot()
	if !snap.CatalogLoaded || len(snap.Languages) != 2 {
		t.Fatalf("catalog not loaded: %+v", snap.Languages)
	}
	if snap.Selected != "english" {
		t.Errorf("selected = %q, want english", snap.Selected)
	}
	if snap.Sample.Text != "Hello world" {
		t.Errorf("text = %q, want %q", snap.Sample.Text, "Hello world")
	}
	if handle.lastBound() != "/en.mp3" {
		t.Errorf("handle bound to %q, want /en.mp3", handle.lastBound())
	}
	if snap.Resolving {
		t.Error("resolution should be complete")
	}
	if got := snap.SelectedLanguage(); got.Name != "English" {
		t.Errorf("SelectedLanguage = %+v", got)
	}

	kinds := drain(c)
	if len(kinds) != 2 || kinds[0] != EventCatalogLoaded || kinds[1] != EventSampleResolved {
		t.Errorf("events = %v", kinds)
	}
}

func TestCoordinator_CatalogFailureIsNotFatal(t *testing.T) {
	catalog := &fakeCatalog{err: errors.New("dial tcp: connection refused")}
	samples := newFakeSamples()
	samples.samples["english"] = Sample{Text: "Hello world", AudioLocation: "/en.mp3"}
	c := New(catalog, samples, &fakeHandle{}, &fakeSaver{})

	c.Start(context.Background())

	snap := c.Snapshot()
	if snap.CatalogLoaded || len(snap.Languages) != 0 {
		t.Errorf("catalog should be empty: %+v", snap.Languages)
	}
	if snap.Sample.Text != "Hello world" {
		t.Error("default sample should still resolve without a catalog")
	}
	if snap.SelectedIndex() != -1 {
		t.Errorf("SelectedIndex = %d, want -1", snap.SelectedIndex())
	}
}

func TestCoordinator_SelectionRebindsAndStopsPlayback(t *testing.T) {
	c, _, _, handle, _ := newTestCoordinator()
	c.Start(context.Background())

	if !c.TogglePlayback() {
		t.Fatal("TogglePlayback should start playback")
	}

	if err := c.Select(context.Background(), "arabic"); err != nil {
		t.Fatalf("Select arabic: %v", err)
	}

	snap := c.Snapshot()
	if snap.IsPlaying {
		t.Error("selection change must stop playback")
	}
	if snap.Sample.AudioLocation != "/ar.mp3" || handle.lastBound() != "/ar.mp3" {
		t.Errorf("sample %q, handle %q", snap.Sample.AudioLocation, handle.lastBound())
	}
	if handle.plays != 1 {
		t.Errorf("no autoplay after rebind, plays = %d", handle.plays)
	}
}

func TestCoordinator_LateResponseLoses(t *testing.T) {
	c, _, samples, handle, _ := newTestCoordinator()
	_ = c.LoadCatalog(context.Background())
	gate := samples.gate("english")

	englishReq, err := c.SelectLanguage("english")
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan error, 1)
	go func() { done <- c.Resolve(context.Background(), englishReq) }()

	if err := c.Select(context.Background(), "arabic"); err != nil {
		t.Fatalf("Select arabic: %v", err)
	}

	close(gate)
	select {
	case err := <-done:
		if !errors.Is(err, ErrStaleResolution) {
			t.Errorf("english resolution: got %v, want ErrStaleResolution", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("english resolution did not complete")
	}

	snap := c.Snapshot()
	if snap.Selected != "arabic" || snap.Sample.Language != "arabic" {
		t.Errorf("final state shows %q / %q", snap.Selected, snap.Sample.Language)
	}
	if handle.lastBound() != "/ar.mp3" {
		t.Errorf("handle bound to stale resource %q", handle.lastBound())
	}
}

func TestCoordinator_PlaybackRejected(t *testing.T) {
	catalog := &fakeCatalog{languages: testLanguages}
	samples := newFakeSamples()
	samples.samples["english"] = Sample{Text: "Hello world", AudioLocation: "/en.mp3"}
	handle := &fakeHandle{playErr: errors.New("NotAllowedError")}
	c := New(catalog, samples, handle, &fakeSaver{})
	c.Start(context.Background())

	if c.TogglePlayback() {
		t.Error("TogglePlayback reported playing after rejection")
	}
	if c.Snapshot().IsPlaying {
		t.Error("snapshot reports playing after rejection")
	}
}

func TestCoordinator_ToggleBeforeAnySample(t *testing.T) {
	c, _, _, handle, _ := newTestCoordinator()
	if c.TogglePlayback() {
		t.Error("nothing bound, should not play")
	}
	if handle.plays != 0 {
		t.Errorf("handle played without a resource")
	}
}

func TestCoordinator_NaturalEnd(t *testing.T) {
	c, _, _, handle, _ := newTestCoordinator()
	c.Start(context.Background())
	c.TogglePlayback()
	drain(c)

	handle.finish()

	if c.Snapshot().IsPlaying {
		t.Error("isPlaying must be false after natural end")
	}
	kinds := drain(c)
	if len(kinds) != 1 || kinds[0] != EventPlaybackEnded {
		t.Errorf("events = %v", kinds)
	}

	// Playing again after completion is allowed.
	if !c.TogglePlayback() {
		t.Error("should replay after natural end")
	}
}

func TestCoordinator_DownloadNoSample(t *testing.T) {
	c, _, _, _, saver := newTestCoordinator()

	_, err := c.Download(context.Background())
	if !errors.Is(err, ErrNoSample) {
		t.Errorf("got %v, want ErrNoSample", err)
	}
	if len(saver.calls) != 0 {
		t.Errorf("save synthesized without a sample: %+v", saver.calls)
	}
}

func TestCoordinator_DownloadNamesAfterLanguage(t *testing.T) {
	c, _, _, _, saver := newTestCoordinator()
	c.Start(context.Background())
	_ = c.Select(context.Background(), "arabic")

	path, err := c.Download(context.Background())
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if path != "/downloads/arabic.mp3" {
		t.Errorf("path = %q", path)
	}
	if len(saver.calls) != 1 || saver.calls[0] != (saveCall{location: "/ar.mp3", name: "arabic.mp3"}) {
		t.Errorf("save calls = %+v", saver.calls)
	}
}

func TestCoordinator_DownloadFailure(t *testing.T) {
	c, _, _, _, saver := newTestCoordinator()
	saver.err = errors.New("disk full")
	c.Start(context.Background())
	drain(c)

	_, err := c.Download(context.Background())
	if !IsOp(err, OpDownload) {
		t.Errorf("got %v, want download error", err)
	}
	kinds := drain(c)
	if len(kinds) != 1 || kinds[0] != EventDownloadFailed {
		t.Errorf("events = %v", kinds)
	}
}

func TestCoordinator_Close(t *testing.T) {
	c, _, _, handle, _ := newTestCoordinator()
	c.Start(context.Background())

	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !handle.closed {
		t.Error("handle not released")
	}
	if _, err := c.SelectLanguage("arabic"); !errors.Is(err, ErrClosed) {
		t.Errorf("SelectLanguage after close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestCoordinator_EventsDropWhenFull(t *testing.T) {
	catalog := &fakeCatalog{languages: testLanguages}
	samples := newFakeSamples()
	samples.samples["english"] = Sample{Text: "Hello world", AudioLocation: "/en.mp3"}
	c := New(catalog, samples, &fakeHandle{}, &fakeSaver{}, WithEventBuffer(1))

	c.Start(context.Background())

	if kinds := drain(c); len(kinds) != 1 {
		t.Errorf("events = %v, want exactly one buffered", kinds)
	}
}

func TestCoordinator_WithDefaultLanguage(t *testing.T) {
	catalog := &fakeCatalog{languages: testLanguages}
	samples := newFakeSamples()
	samples.samples["arabic"] = Sample{Text: "marhaban", AudioLocation: "/ar.mp3"}
	c := New(catalog, samples, &fakeHandle{}, &fakeSaver{}, WithDefaultLanguage("arabic"))

	c.Start(context.Background())

	if got := c.Snapshot().Sample.Text; got != "marhaban" {
		t.Errorf("text = %q", got)
	}
	if c.DefaultLanguage() != "arabic" {
		t.Errorf("DefaultLanguage = %q", c.DefaultLanguage())
	}
}

func TestCoordinator_DownloadWhileResolving(t *testing.T) {
	c, _, samples, _, saver := newTestCoordinator()
	c.Start(context.Background())

	gate := samples.gate("arabic")
	req, err := c.SelectLanguage("arabic")
	if err != nil {
		t.Fatalf("SelectLanguage: %v", err)
	}
	resolved := make(chan error, 1)
	go func() { resolved <- c.Resolve(context.Background(), req) }()

	path, err := c.Download(context.Background())
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if path != "/downloads/english.mp3" {
		t.Errorf("path = %q, want the loaded english sample", path)
	}
	if len(saver.calls) != 1 || saver.calls[0] != (saveCall{location: "/en.mp3", name: "english.mp3"}) {
		t.Errorf("save calls = %+v", saver.calls)
	}

	close(gate)
	if err := <-resolved; err != nil {
		t.Fatalf("Resolve arabic: %v", err)
	}
}

func TestCoordinator_ResponsiveWhilePlayLoads(t *testing.T) {
	catalog := &fakeCatalog{languages: testLanguages}
	samples := newFakeSamples()
	samples.samples["english"] = Sample{Text: "Hello world", AudioLocation: "/en.mp3"}
	samples.samples["arabic"] = Sample{Text: "marhaban", AudioLocation: "/ar.mp3"}
	handle := newBlockingHandle()
	c := New(catalog, samples, handle, &fakeSaver{})
	c.Start(context.Background())

	toggled := make(chan struct{})
	go func() {
		c.TogglePlayback()
		close(toggled)
	}()
	<-handle.started

	req, err := c.SelectLanguage("arabic")
	if err != nil {
		t.Fatalf("SelectLanguage: %v", err)
	}
	resolved := make(chan error, 1)
	go func() { resolved <- c.Resolve(context.Background(), req) }()

	// Give the resolution time to reach the busy handle.
	time.Sleep(50 * time.Millisecond)

	snapped := make(chan Snapshot, 1)
	go func() { snapped <- c.Snapshot() }()
	select {
	case snap := <-snapped:
		if snap.Selected != "arabic" || !snap.Resolving {
			t.Errorf("selected=%q resolving=%v", snap.Selected, snap.Resolving)
		}
		if snap.Sample.Language != "english" {
			t.Errorf("sample swapped before the handle was rebound: %+v", snap.Sample)
		}
	case <-time.After(time.Second):
		t.Fatal("Snapshot blocked while the handle was loading")
	}

	close(handle.release)
	<-toggled
	if err := <-resolved; err != nil {
		t.Fatalf("Resolve arabic: %v", err)
	}

	snap := c.Snapshot()
	if snap.Sample.AudioLocation != "/ar.mp3" || snap.Resolving {
		t.Errorf("after resolve: %+v resolving=%v", snap.Sample, snap.Resolving)
	}
	if snap.IsPlaying {
		t.Error("rebind must leave playback stopped")
	}
	if handle.lastBound() != "/ar.mp3" {
		t.Errorf("handle bound to %q", handle.lastBound())
	}
}

func TestCoordinator_SupersededEndIgnored(t *testing.T) {
	c, _, _, handle, _ := newTestCoordinator()
	c.Start(context.Background())
	c.TogglePlayback()
	drain(c)

	handle.finishWith(func() bool { return false })

	if !c.Snapshot().IsPlaying {
		t.Error("a superseded end must not stop playback")
	}
	if kinds := drain(c); len(kinds) != 0 {
		t.Errorf("events = %v, want none", kinds)
	}
}
