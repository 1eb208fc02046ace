package coordinator

import (
	"context"
	"errors"
	"testing"
)

func TestCatalogLoader_LoadsOnce(t *testing.T) {
	src := &fakeCatalog{languages: testLanguages}
	loader := NewCatalogLoader(src)

	if err := loader.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := loader.Load(context.Background()); !errors.Is(err, ErrCatalogLoaded) {
		t.Errorf("second Load: got %v, want ErrCatalogLoaded", err)
	}
	if src.calls != 1 {
		t.Errorf("source called %d times, want 1", src.calls)
	}

	got := loader.Languages()
	if len(got) != 2 || got[0].Code != "english" || got[1].Code != "arabic" {
		t.Errorf("unexpected languages or order: %+v", got)
	}
	if !loader.Loaded() {
		t.Error("Loaded should be true")
	}
}

func TestCatalogLoader_FailureLeavesEmpty(t *testing.T) {
	src := &fakeCatalog{err: errors.New("connection refused")}
	loader := NewCatalogLoader(src)

	err := loader.Load(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsOp(err, OpCatalog) {
		t.Errorf("error should be tagged as catalog failure: %v", err)
	}
	if len(loader.Languages()) != 0 {
		t.Error("catalog should be empty after failure")
	}
	if loader.Loaded() {
		t.Error("Loaded should be false after failure")
	}

	// No retry.
	if err := loader.Load(context.Background()); !errors.Is(err, ErrCatalogLoaded) {
		t.Errorf("retry: got %v, want ErrCatalogLoaded", err)
	}
	if src.calls != 1 {
		t.Errorf("source called %d times, want 1", src.calls)
	}
}

func TestCatalogLoader_ReturnsCopies(t *testing.T) {
	loader := NewCatalogLoader(&fakeCatalog{languages: testLanguages})
	_ = loader.Load(context.Background())

	langs := loader.Languages()
	langs[0].Name = "changed"

	if l, _ := loader.Find("english"); l.Name != "English" {
		t.Errorf("catalog mutated through returned slice: %q", l.Name)
	}
	if _, ok := loader.Find("klingon"); ok {
		t.Error("Find should miss unknown codes")
	}
}
