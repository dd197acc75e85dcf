package localstore

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	appErrors "memorybox-backend/pkg/errors"
)

// MemoryKV is an in-memory key-value backend with a byte budget. It backs
// demo mode and tests, where quota behavior still has to be observable.
type MemoryKV struct {
	mu          sync.RWMutex
	items       map[string][]byte
	maxBytes    int64
	currentSize int64

	logger *zap.Logger
}

// NewMemoryKV creates an in-memory backend. maxBytes <= 0 disables the
// budget.
func NewMemoryKV(maxBytes int64, logger *zap.Logger) *MemoryKV {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryKV{
		items:    make(map[string][]byte),
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// Get retrieves a value. The returned slice is a copy.
func (m *MemoryKV) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}

	// Return a copy to prevent external modifications
	value := make([]byte, len(stored))
	copy(value, stored)
	return value, true, nil
}

// Set stores a value, enforcing the byte budget across all keys.
func (m *MemoryKV) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	itemSize := entrySize(key, value)
	newSize := m.currentSize + itemSize
	if existing, ok := m.items[key]; ok {
		newSize -= entrySize(key, existing)
	}

	if m.maxBytes > 0 && newSize > m.maxBytes {
		m.logger.Debug("memory kv refusing write over budget",
			zap.String("key", key),
			zap.Int64("item_size", itemSize),
			zap.Int64("max_bytes", m.maxBytes),
		)
		return appErrors.NewQuotaExceeded("local storage budget exhausted")
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	m.items[key] = stored
	m.currentSize = newSize
	return nil
}

// Delete removes a key.
func (m *MemoryKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.items[key]; ok {
		m.currentSize -= entrySize(key, existing)
		delete(m.items, key)
	}
	return nil
}

// Keys returns the sorted keys carrying the given prefix.
func (m *MemoryKV) Keys(prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.items))
	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Size returns the current byte usage.
func (m *MemoryKV) Size() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentSize
}

func entrySize(key string, value []byte) int64 {
	return int64(len(key) + len(value))
}
