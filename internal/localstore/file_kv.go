package localstore

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	appErrors "memorybox-backend/pkg/errors"
)

const fileExt = ".json"

// FileKV is a filesystem key-value backend: one file per key under a flat
// state directory. Writes go through a temp file and a rename so a crash
// never leaves a half-written value behind.
type FileKV struct {
	mu          sync.Mutex
	dir         string
	maxBytes    int64
	currentSize int64

	logger *zap.Logger
}

// NewFileKV creates the state directory if needed and takes stock of the
// bytes already stored there. maxBytes <= 0 disables the budget.
func NewFileKV(dir string, maxBytes int64, logger *zap.Logger) (*FileKV, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory %s: %w", dir, err)
	}

	kv := &FileKV{
		dir:      dir,
		maxBytes: maxBytes,
		logger:   logger,
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading state directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		kv.currentSize += info.Size()
	}

	return kv, nil
}

// Get retrieves a value.
func (f *FileKV) Get(key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.pathFor(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading key %q: %w", key, err)
	}
	return data, true, nil
}

// Set stores a value atomically, enforcing the byte budget.
func (f *FileKV) Set(key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := f.pathFor(key)

	var existingSize int64
	if info, err := os.Stat(path); err == nil {
		existingSize = info.Size()
	}

	newSize := f.currentSize - existingSize + int64(len(value))
	if f.maxBytes > 0 && newSize > f.maxBytes {
		f.logger.Debug("file kv refusing write over budget",
			zap.String("key", key),
			zap.Int("item_size", len(value)),
			zap.Int64("max_bytes", f.maxBytes),
		)
		return appErrors.NewQuotaExceeded("local storage budget exhausted")
	}

	tmp, err := os.CreateTemp(f.dir, ".write-*")
	if err != nil {
		return fmt.Errorf("creating temp file for key %q: %w", key, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing key %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing key %q: %w", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("committing key %q: %w", key, err)
	}

	f.currentSize = newSize
	return nil
}

// Delete removes a key.
func (f *FileKV) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := f.pathFor(key)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("deleting key %q: %w", key, err)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("deleting key %q: %w", key, err)
	}
	f.currentSize -= info.Size()
	return nil
}

// Keys returns the sorted keys carrying the given prefix.
func (f *FileKV) Keys(prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("reading state directory: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		key, err := url.QueryUnescape(strings.TrimSuffix(name, fileExt))
		if err != nil {
			f.logger.Warn("skipping unparseable state file", zap.String("file", name))
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Size returns the current byte usage.
func (f *FileKV) Size() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.currentSize
}

// pathFor escapes the key into a safe flat filename. Escaping is
// per-character, so escaped keys preserve prefix relationships.
func (f *FileKV) pathFor(key string) string {
	return filepath.Join(f.dir, url.QueryEscape(key)+fileExt)
}
