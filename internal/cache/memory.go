// ABOUTME: Non-persistent Store on in-memory badger for tests and --backend memory.
// ABOUTME: Entries never expire at this layer; the Cache envelope handles TTL.
package cache

import (
	"fmt"

	"github.com/dgraph-io/badger/v3"
)

const (
	memoryTableSize  = 16 << 20
	memoryBlockCache = 8 << 20
	memoryThreshold  = 1 << 20

	// MaxMemoryValue is the largest value a MemoryStore accepts. Diskless
	// badger has no value log, so every value must stay below the threshold.
	MaxMemoryValue = memoryThreshold - 1
)

// MemoryStore keeps entries in a diskless badger database. Contents are lost
// on Close.
type MemoryStore struct {
	*BadgerStore
}

// OpenMemory creates an empty in-memory store.
func OpenMemory() (*MemoryStore, error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(nil).
		WithMemTableSize(memoryTableSize).
		WithBlockCacheSize(memoryBlockCache).
		WithValueThreshold(memoryThreshold)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open memory store: %w", err)
	}
	return &MemoryStore{BadgerStore: &BadgerStore{db: db}}, nil
}

func (s *MemoryStore) Set(key string, value []byte) error {
	if len(value) > MaxMemoryValue {
		return fmt.Errorf("set %s: value of %d bytes exceeds the %d byte limit", key, len(value), MaxMemoryValue)
	}
	return s.BadgerStore.Set(key, value)
}
