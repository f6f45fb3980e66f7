// ABOUTME: Persistent key/value store interface behind the TTL cache.
// ABOUTME: Backends: sqlite (default), badger, charm and in-memory.
package cache

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned by Store.Get when the key does not exist.
var ErrNotFound = errors.New("cache: key not found")

// Backend names accepted by config and the --backend flag.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendCharm  = "charm"
	BackendMemory = "memory"
)

// Backends lists the supported store backends.
var Backends = []string{BackendSQLite, BackendBadger, BackendCharm, BackendMemory}

// Store is raw persistent key/value storage. Values are opaque bytes.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	// Keys returns every key starting with prefix, sorted.
	Keys(prefix string) ([]string, error)
	Close() error
}

// ValidateBackend checks that name is a known backend.
func ValidateBackend(name string) error {
	for _, b := range Backends {
		if b == name {
			return nil
		}
	}
	return fmt.Errorf("unknown cache backend %q (use %s)", name, strings.Join(Backends, ", "))
}

func filterKeys(keys []string, prefix string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
