// Package localstore implements the device-local cache tier: a small
// key-value abstraction plus the verified store that guards every write with
// a backup snapshot and a read-back check.
package localstore

// KV is the raw storage a Store runs on. Implementations must be safe for
// concurrent use and must report budget exhaustion through a quota-exceeded
// error so the caller can evict and retry.
type KV interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) ([]byte, bool, error)

	// Set stores the value, replacing any previous one.
	Set(key string, value []byte) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(key string) error

	// Keys returns every stored key with the given prefix, sorted.
	Keys(prefix string) ([]string, error)
}
