package cache

import (
	"testing"
	"time"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	cfg := DefaultConfig(t.TempDir())
	cfg.MemoryCapacity = 64
	cfg.DiskCapacity = 1024
	cfg.CompressionLevel = 0
	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestManager_PromotesDiskHits(t *testing.T) {
	m := newTestManager(t)

	if err := m.Put("k", []byte("audio")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	_ = m.memory.Delete("k")

	got, ok := m.Get("k")
	if !ok || string(got) != "audio" {
		t.Fatalf("Get = %q, %v", got, ok)
	}
	if !m.memory.Contains("k") {
		t.Error("disk hit was not promoted to memory")
	}
	if s := m.Stats(); s.Promotions != 1 {
		t.Errorf("Promotions = %d, want 1", s.Promotions)
	}
}

func TestManager_LargeItemGoesToDiskOnly(t *testing.T) {
	m := newTestManager(t)

	if err := m.Put("big", make([]byte, 100)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if m.memory.Contains("big") {
		t.Error("item larger than memory capacity stored in memory")
	}
	if !m.Contains("big") {
		t.Error("item missing from disk")
	}
}

func TestManager_TooLargeForEveryLevel(t *testing.T) {
	m := newTestManager(t)
	if err := m.Put("huge", make([]byte, 2048)); err == nil {
		t.Error("expected error for item too large for every level")
	}
}

func TestManager_MemoryOnly(t *testing.T) {
	m, err := NewManager(Config{MemoryCapacity: 64})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	_ = m.Put("k", []byte("v"))
	if _, ok := m.Get("k"); !ok {
		t.Error("memory-only manager missed")
	}
	if m.Stats().Disk != (Stats{}) {
		t.Error("disk stats should be empty")
	}
}

func TestManager_DeleteAndClear(t *testing.T) {
	m := newTestManager(t)
	_ = m.Put("a", []byte("1"))
	_ = m.Put("b", []byte("2"))

	if err := m.Delete("a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if m.Contains("a") {
		t.Error("a survived Delete")
	}
	if err := m.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if m.Size() != 0 {
		t.Errorf("Size = %d after Clear", m.Size())
	}
}

func TestManager_PutAfterClose(t *testing.T) {
	m, err := NewManager(Config{MemoryCapacity: 64, TTL: time.Hour})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := m.Put("k", []byte("v")); err != ErrClosed {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
