package localstore

import (
	"bytes"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	appErrors "memorybox-backend/pkg/errors"
	"memorybox-backend/pkg/observability"
)

// DefaultKeepCount is how many records survive a quota-pressure eviction
// when no other count is configured.
const DefaultKeepCount = 50

// Store is the verified cache layer over a KV backend. Every write snapshots
// the previous value to a backup key, then reads its own write back and
// compares byte for byte; a mismatch rolls the key back to the snapshot.
// Reads treat unparseable values as absent so a corrupt entry can never take
// a caller down.
type Store struct {
	mu        sync.Mutex
	kv        KV
	keepCount int
	metrics   *observability.Collector
	logger    *zap.Logger
}

// NewStore wraps a KV backend. keepCount <= 0 falls back to
// DefaultKeepCount; metrics may be nil.
func NewStore(kv KV, keepCount int, metrics *observability.Collector, logger *zap.Logger) *Store {
	if keepCount <= 0 {
		keepCount = DefaultKeepCount
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		kv:        kv,
		keepCount: keepCount,
		metrics:   metrics,
		logger:    logger,
	}
}

// Read unmarshals the value at key into out and reports whether a usable
// value was found. Absence and corruption are both "not found"; corruption
// is logged and counted but never surfaced as an error.
func (s *Store) Read(key string, out interface{}) bool {
	raw, ok, err := s.kv.Get(key)
	if err != nil {
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		s.miss()
		return false
	}
	if !ok {
		s.miss()
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.logger.Warn("discarding corrupt cache entry",
			zap.String("key", key),
			zap.Error(appErrors.NewCorruption("cache entry unparseable", err)),
		)
		if s.metrics != nil {
			s.metrics.CacheCorruptions.Inc()
		}
		s.miss()
		return false
	}
	s.hit()
	return true
}

// Write serializes v under key and reports whether the value verifiably
// landed. When the backend refuses the write for quota and the value is a
// record collection, the oldest records are shed and the write retried once.
func (s *Store) Write(key string, v interface{}) bool {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("cache value not serializable", zap.String("key", key), zap.Error(err))
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeWithRelief(key, data)
}

// UpsertRecord merges one record into the collection cached at key, matching
// on the record's id: replace in place when present, otherwise prepend as
// the newest entry. Reports whether the updated collection landed.
func (s *Store) UpsertRecord(key string, record interface{}) bool {
	recData, err := json.Marshal(record)
	if err != nil {
		s.logger.Error("cache record not serializable", zap.String("key", key), zap.Error(err))
		return false
	}
	id := recordID(recData)
	if id == "" {
		s.logger.Error("cache record missing id", zap.String("key", key))
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.readCollectionLocked(key)
	replaced := false
	for i, item := range items {
		if recordID(item) == id {
			items[i] = json.RawMessage(recData)
			replaced = true
			break
		}
	}
	if !replaced {
		items = append([]json.RawMessage{json.RawMessage(recData)}, items...)
	}

	data, err := json.Marshal(items)
	if err != nil {
		s.logger.Error("cache collection not serializable", zap.String("key", key), zap.Error(err))
		return false
	}
	return s.writeWithRelief(key, data)
}

// RemoveRecord drops the record with the given id from the collection cached
// at key. Removing an absent record is a successful no-op.
func (s *Store) RemoveRecord(key, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.readCollectionLocked(key)
	kept := items[:0]
	for _, item := range items {
		if recordID(item) != id {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(items) {
		return true
	}

	data, err := json.Marshal(kept)
	if err != nil {
		s.logger.Error("cache collection not serializable", zap.String("key", key), zap.Error(err))
		return false
	}
	return s.writeWithRelief(key, data)
}

// Delete removes a key and its backup snapshot.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(key); err != nil {
		s.logger.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
	}
	if err := s.kv.Delete(key + BackupSuffix); err != nil {
		s.logger.Warn("cache backup delete failed", zap.String("key", key), zap.Error(err))
	}
}

// EvictOldest trims the collection stored at scopeKey down to keepCount
// records, dropping the oldest by createdAt first, and returns how many were
// removed. Values that are not JSON arrays are left untouched.
func (s *Store) EvictOldest(scopeKey string, keepCount int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.kv.Get(scopeKey)
	if err != nil || !ok {
		return 0
	}
	trimmed, removed, isCollection := trimOldest(raw, keepCount)
	if !isCollection || removed == 0 {
		return 0
	}
	if err := s.setVerified(scopeKey, trimmed); err != nil {
		s.logger.Warn("rewriting evicted collection failed",
			zap.String("key", scopeKey),
			zap.Error(err),
		)
		return 0
	}
	s.countEvictions(removed)
	return removed
}

// Keys lists cached keys by prefix.
func (s *Store) Keys(prefix string) []string {
	keys, err := s.kv.Keys(prefix)
	if err != nil {
		s.logger.Warn("cache key scan failed", zap.String("prefix", prefix), zap.Error(err))
		return nil
	}
	return keys
}

// writeWithRelief performs one verified write, shedding the oldest records
// and retrying exactly once if the backend reports quota exhaustion.
func (s *Store) writeWithRelief(key string, data []byte) bool {
	err := s.setVerified(key, data)
	if err == nil {
		return true
	}
	if appErrors.IsQuotaExceeded(err) {
		if trimmed, removed, isCollection := trimOldest(data, s.keepCount); isCollection && removed > 0 {
			if retryErr := s.setVerified(key, trimmed); retryErr == nil {
				s.logger.Info("evicted oldest cached records to relieve quota pressure",
					zap.String("key", key),
					zap.Int("removed", removed),
				)
				s.countEvictions(removed)
				return true
			}
		}
	}
	s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	return false
}

// setVerified is the raw write protocol: snapshot, write, read back, compare,
// roll back on mismatch. Callers hold s.mu.
func (s *Store) setVerified(key string, data []byte) error {
	prev, hadPrev, err := s.kv.Get(key)
	if err != nil {
		s.logger.Warn("cache snapshot read failed", zap.String("key", key), zap.Error(err))
	}
	if hadPrev {
		if err := s.kv.Set(key+BackupSuffix, prev); err != nil {
			// Survivable: the rollback below restores from the in-memory copy.
			s.logger.Warn("backup snapshot failed", zap.String("key", key), zap.Error(err))
		}
	}

	if err := s.kv.Set(key, data); err != nil {
		return err
	}

	got, ok, err := s.kv.Get(key)
	if err == nil && ok && bytes.Equal(got, data) {
		return nil
	}

	s.logger.Warn("cache write verification mismatch, rolling back",
		zap.String("key", key),
		zap.Error(err),
	)
	if hadPrev {
		if rbErr := s.kv.Set(key, prev); rbErr != nil {
			s.logger.Error("cache rollback failed", zap.String("key", key), zap.Error(rbErr))
		}
	} else {
		if rbErr := s.kv.Delete(key); rbErr != nil {
			s.logger.Error("cache rollback failed", zap.String("key", key), zap.Error(rbErr))
		}
	}
	if s.metrics != nil {
		s.metrics.CacheRollbacks.Inc()
	}
	return appErrors.NewInternal("cache write verification failed", err)
}

// readCollectionLocked loads the JSON array at key, treating absent,
// corrupt and non-array values as an empty collection.
func (s *Store) readCollectionLocked(key string) []json.RawMessage {
	raw, ok, err := s.kv.Get(key)
	if err != nil || !ok {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		s.logger.Warn("discarding corrupt cache collection",
			zap.String("key", key),
			zap.Error(err),
		)
		if s.metrics != nil {
			s.metrics.CacheCorruptions.Inc()
		}
		return nil
	}
	return items
}

func (s *Store) countEvictions(n int) {
	if s.metrics != nil {
		s.metrics.CacheEvictions.Add(float64(n))
	}
}

func (s *Store) hit() {
	if s.metrics != nil {
		s.metrics.CacheHits.Inc()
	}
}

func (s *Store) miss() {
	if s.metrics != nil {
		s.metrics.CacheMisses.Inc()
	}
}

// trimOldest sorts a JSON record collection newest-first by createdAt and
// truncates it to keepCount. Records without a parseable createdAt sort as
// oldest and go first. The third result is false when data is not an array.
func trimOldest(data []byte, keepCount int) ([]byte, int, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, 0, false
	}
	if keepCount < 0 {
		keepCount = 0
	}
	if len(items) <= keepCount {
		return data, 0, true
	}

	stamps := make([]time.Time, len(items))
	for i, item := range items {
		var meta struct {
			CreatedAt time.Time `json:"createdAt"`
		}
		if err := json.Unmarshal(item, &meta); err == nil {
			stamps[i] = meta.CreatedAt
		}
	}
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return stamps[order[a]].After(stamps[order[b]])
	})

	kept := make([]json.RawMessage, 0, keepCount)
	for _, idx := range order[:keepCount] {
		kept = append(kept, items[idx])
	}
	out, err := json.Marshal(kept)
	if err != nil {
		return nil, 0, false
	}
	return out, len(items) - keepCount, true
}

// recordID extracts the id field from a serialized record.
func recordID(data []byte) string {
	var rec struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return ""
	}
	return rec.ID
}
