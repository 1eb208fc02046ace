package cache

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const pruneInterval = time.Hour

// Manager layers the memory cache over the disk cache. Reads fall through
// from L1 to L2 and promote disk hits into memory.
type Manager struct {
	memory *MemoryCache
	disk   *DiskCache // nil when the disk level is disabled
	ttl    time.Duration

	stop chan struct{}
	wg   sync.WaitGroup

	mu         sync.Mutex
	promotions int64
	closed     bool
}

// NewManager builds a Manager from cfg. Entries older than cfg.TTL are
// pruned at startup and then hourly.
func NewManager(cfg Config) (*Manager, error) {
	m := &Manager{
		memory: NewMemoryCache(cfg.MemoryCapacity),
		ttl:    cfg.TTL,
		stop:   make(chan struct{}),
	}

	if cfg.DiskCapacity > 0 && cfg.DiskPath != "" {
		disk, err := NewDiskCache(cfg.DiskPath, cfg.DiskCapacity, cfg.CompressionLevel)
		if err != nil {
			return nil, fmt.Errorf("disk cache: %w", err)
		}
		m.disk = disk
	}

	if m.ttl > 0 {
		m.prune()
		m.wg.Add(1)
		go m.janitor()
	}

	return m, nil
}

// Get looks key up in memory, then on disk.
func (m *Manager) Get(key string) ([]byte, bool) {
	if data, ok := m.memory.Get(key); ok {
		return data, true
	}
	if m.disk == nil {
		return nil, false
	}
	data, ok := m.disk.Get(key)
	if !ok {
		return nil, false
	}

	m.mu.Lock()
	m.promotions++
	m.mu.Unlock()
	_ = m.memory.Put(key, data)
	return data, true
}

// Put stores value in both levels. An item too large for one level is still
// stored in the other.
func (m *Manager) Put(key string, value []byte) error {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return ErrClosed
	}

	memErr := m.memory.Put(key, value)
	if m.disk == nil {
		return memErr
	}
	diskErr := m.disk.Put(key, value)

	switch {
	case memErr == nil || diskErr == nil:
		if diskErr != nil && !errors.Is(diskErr, ErrItemTooLarge) {
			log.Debug("disk cache put failed", "key", key, "error", diskErr)
		}
		return nil
	default:
		return errors.Join(memErr, diskErr)
	}
}

// Delete removes key from every level.
func (m *Manager) Delete(key string) error {
	err := m.memory.Delete(key)
	if m.disk != nil {
		err = errors.Join(err, m.disk.Delete(key))
	}
	return err
}

// Clear empties every level.
func (m *Manager) Clear() error {
	err := m.memory.Clear()
	if m.disk != nil {
		err = errors.Join(err, m.disk.Clear())
	}
	return err
}

// Contains reports whether any level holds key.
func (m *Manager) Contains(key string) bool {
	return m.memory.Contains(key) || (m.disk != nil && m.disk.Contains(key))
}

// Size returns the bytes held across levels.
func (m *Manager) Size() int64 {
	n := m.memory.Size()
	if m.disk != nil {
		n += m.disk.Size()
	}
	return n
}

// ManagerStats reports per-level counters.
type ManagerStats struct {
	Memory     Stats
	Disk       Stats
	Promotions int64
}

// Stats returns per-level counters.
func (m *Manager) Stats() ManagerStats {
	s := ManagerStats{Memory: m.memory.Stats()}
	if m.disk != nil {
		s.Disk = m.disk.Stats()
	}
	m.mu.Lock()
	s.Promotions = m.promotions
	m.mu.Unlock()
	return s
}

// Close stops the janitor and persists the disk index.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	close(m.stop)
	m.wg.Wait()

	if m.disk != nil {
		if err := m.disk.Close(); err != nil {
			return fmt.Errorf("close disk cache: %w", err)
		}
	}
	return nil
}

func (m *Manager) janitor() {
	defer m.wg.Done()

	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.prune()
		case <-m.stop:
			return
		}
	}
}

func (m *Manager) prune() {
	n := m.memory.Prune(m.ttl)
	if m.disk != nil {
		n += m.disk.Prune(m.ttl)
	}
	if n > 0 {
		log.Debug("pruned expired audio", "entries", n, "ttl", m.ttl)
	}
}
