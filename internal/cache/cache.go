// ABOUTME: TTL cache over a persistent Store with an in-process ristretto L1.
// ABOUTME: Entries are JSON envelopes {value, timestamp, expiry} in milliseconds.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/sync/singleflight"

	"github.com/harperreed/jetgym/internal/metrics"
)

const (
	// DefaultTTL applies when SetItem is given a ttl <= 0.
	DefaultTTL = 24 * time.Hour

	// DefaultL1Size bounds the in-memory layer by the total bytes it holds.
	// Single entries have no separate cap, so a full workout list fits.
	DefaultL1Size = 32 << 20

	l1Counters = 10000
)

// Envelope is the stored form of every entry.
type Envelope struct {
	Value     json.RawMessage `json:"value"`
	Timestamp int64           `json:"timestamp"`
	Expiry    int64           `json:"expiry"`
}

// StoredAt returns the write time.
func (e Envelope) StoredAt() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// TTL returns the lifetime the entry was written with.
func (e Envelope) TTL() time.Duration {
	return time.Duration(e.Expiry) * time.Millisecond
}

// Stale reports whether more than the expiry has passed since the write.
func (e Envelope) Stale(now time.Time) bool {
	return now.UnixMilli()-e.Timestamp > e.Expiry
}

// EntryInfo describes a stored entry without decoding its value.
type EntryInfo struct {
	Key       string        `json:"key"`
	StoredAt  time.Time     `json:"storedAt"`
	TTL       time.Duration `json:"ttl"`
	ExpiresAt time.Time     `json:"expiresAt"`
	Expired   bool          `json:"expired"`
	Size      int           `json:"size"`
}

// Cache adds expiry, read-through and serialized updates on top of a Store.
type Cache struct {
	store      Store
	now        func() time.Time
	defaultTTL time.Duration
	l1         *ristretto.Cache
	l1Size     int
	metrics    *metrics.Manager

	group    singleflight.Group
	updateMu sync.Mutex
}

type Option func(*Cache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithDefaultTTL sets the lifetime used when a write passes ttl <= 0.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

// WithMetrics records hits, misses, expirations, writes and errors.
func WithMetrics(m *metrics.Manager) Option {
	return func(c *Cache) { c.metrics = m }
}

// WithL1Size sets the in-memory layer size in bytes. Zero disables it.
func WithL1Size(bytes int) Option {
	return func(c *Cache) { c.l1Size = bytes }
}

// New wraps store. The Cache owns the store and closes it in Close.
func New(store Store, opts ...Option) *Cache {
	c := &Cache{
		store:      store,
		now:        time.Now,
		defaultTTL: DefaultTTL,
		l1Size:     DefaultL1Size,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.l1Size > 0 {
		l1, err := ristretto.NewCache(&ristretto.Config{
			NumCounters: l1Counters,
			MaxCost:     int64(c.l1Size),
			BufferItems: 64,
		})
		if err != nil {
			log.Warnf("l1 cache disabled: %s", err)
		} else {
			c.l1 = l1
		}
	}
	return c
}

// Store returns the underlying persistent store.
func (c *Cache) Store() Store {
	return c.store
}

// DefaultTTL returns the lifetime applied to writes with ttl <= 0.
func (c *Cache) DefaultTTL() time.Duration {
	return c.defaultTTL
}

// Close closes the underlying store.
func (c *Cache) Close() error {
	if c.l1 != nil {
		c.l1.Close()
	}
	return c.store.Close()
}

// SetItem stores v under key for ttl (the default TTL when ttl <= 0).
func (c *Cache) SetItem(key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.setRaw(key, raw, ttl)
}

func (c *Cache) setRaw(key string, raw json.RawMessage, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	env := Envelope{Value: raw, Timestamp: c.now().UnixMilli(), Expiry: ttl.Milliseconds()}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope %s: %w", key, err)
	}

	c.l1Del(key)
	if err := c.store.Set(key, data); err != nil {
		c.countError()
		return fmt.Errorf("store %s: %w", key, err)
	}
	c.l1Set(key, data, ttl)
	if c.metrics != nil {
		c.metrics.CounterCacheWrites.Inc()
	}
	return nil
}

// GetItem decodes the fresh entry under key into dst.
// A missing or stale entry returns false. A stale entry is removed. An entry
// that cannot be decoded is removed and reported as a miss with an error.
func (c *Cache) GetItem(key string, dst any) (bool, error) {
	raw, ok, err := c.getRaw(key)
	if !ok || err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.countError()
		c.discard(key)
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (c *Cache) getRaw(key string) (json.RawMessage, bool, error) {
	data, fromL1 := c.l1Get(key)
	if !fromL1 {
		var err error
		data, err = c.store.Get(key)
		if errors.Is(err, ErrNotFound) {
			c.countMiss()
			return nil, false, nil
		}
		if err != nil {
			c.countError()
			c.countMiss()
			return nil, false, fmt.Errorf("read %s: %w", key, err)
		}
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.countError()
		c.countMiss()
		c.discard(key)
		return nil, false, fmt.Errorf("decode envelope %s: %w", key, err)
	}

	now := c.now()
	if env.Stale(now) {
		log.WithField("key", key).Debug("cache entry expired")
		if c.metrics != nil {
			c.metrics.CounterCacheExpirations.Inc()
		}
		c.countMiss()
		c.discard(key)
		return nil, false, nil
	}

	if !fromL1 {
		remaining := env.StoredAt().Add(env.TTL()).Sub(now)
		c.l1Set(key, data, remaining)
	}
	if c.metrics != nil {
		c.metrics.CounterCacheHits.Inc()
	}
	return env.Value, true, nil
}

// discard removes an unusable entry, logging rather than returning failures.
func (c *Cache) discard(key string) {
	if err := c.RemoveItem(key); err != nil {
		log.WithField("key", key).Warnf("remove unusable cache entry: %s", err)
	}
}

// RemoveItem deletes key. Removing a missing key is not an error.
func (c *Cache) RemoveItem(key string) error {
	c.l1Del(key)
	if err := c.store.Delete(key); err != nil && !errors.Is(err, ErrNotFound) {
		c.countError()
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// RemovePrefix deletes every key starting with prefix and returns how many
// were removed. Individual failures are aggregated.
func (c *Cache) RemovePrefix(prefix string) (int, error) {
	keys, err := c.store.Keys(prefix)
	if err != nil {
		c.countError()
		return 0, fmt.Errorf("list %q: %w", prefix, err)
	}
	var errs error
	removed := 0
	for _, k := range keys {
		if err := c.RemoveItem(k); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		removed++
	}
	return removed, errs
}

// Clear deletes every entry.
func (c *Cache) Clear() error {
	_, err := c.RemovePrefix("")
	if c.l1 != nil {
		c.l1.Clear()
	}
	return err
}

// Keys lists stored keys starting with prefix, including stale ones.
func (c *Cache) Keys(prefix string) ([]string, error) {
	return c.store.Keys(prefix)
}

// Entries describes every stored entry under prefix. Entries that cannot be
// decoded are reported as expired with a zero timestamp.
func (c *Cache) Entries(prefix string) ([]EntryInfo, error) {
	keys, err := c.store.Keys(prefix)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", prefix, err)
	}

	now := c.now()
	infos := make([]EntryInfo, 0, len(keys))
	for _, k := range keys {
		data, err := c.store.Get(k)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", k, err)
		}
		info := EntryInfo{Key: k, Size: len(data), Expired: true}
		var env Envelope
		if json.Unmarshal(data, &env) == nil {
			info.StoredAt = env.StoredAt()
			info.TTL = env.TTL()
			info.ExpiresAt = info.StoredAt.Add(info.TTL)
			info.Expired = env.Stale(now)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Stats summarizes what the store holds.
type Stats struct {
	Entries int `json:"entries"`
	Expired int `json:"expired"`
	Bytes   int `json:"bytes"`
}

// Stats counts entries, stale entries and stored bytes.
func (c *Cache) Stats() (Stats, error) {
	infos, err := c.Entries("")
	if err != nil {
		return Stats{}, err
	}
	var st Stats
	for _, info := range infos {
		st.Entries++
		st.Bytes += info.Size
		if info.Expired {
			st.Expired++
		}
	}
	return st, nil
}

// Prune removes every expired or undecodable entry and returns the count.
func (c *Cache) Prune() (int, error) {
	infos, err := c.Entries("")
	if err != nil {
		return 0, err
	}
	var errs error
	removed := 0
	for _, info := range infos {
		if !info.Expired {
			continue
		}
		if err := c.RemoveItem(info.Key); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		removed++
	}
	if removed > 0 && c.metrics != nil {
		c.metrics.CounterCacheExpirations.Add(float64(removed))
	}
	return removed, errs
}

// GetOrFetch returns the fresh entry under key or calls fetch, stores its
// result for ttl and returns it. Concurrent calls for one key share a fetch.
// Fetch errors are returned and nothing is stored.
func GetOrFetch[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	var out T
	if ok, err := c.GetItem(key, &out); ok {
		return out, nil
	} else if err != nil {
		log.WithField("key", key).Warnf("cache read failed, refetching: %s", err)
	}

	ch := c.group.DoChan(key, func() (any, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		if err := c.setRaw(key, raw, ttl); err != nil {
			log.WithField("key", key).Warnf("cache write failed: %s", err)
		}
		return []byte(raw), nil
	})

	select {
	case <-ctx.Done():
		return out, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return out, res.Err
		}
		if err := json.Unmarshal(res.Val.([]byte), &out); err != nil {
			return out, fmt.Errorf("decode %s: %w", key, err)
		}
		return out, nil
	}
}

// Update runs a read-modify-write of the entry under key. fn receives the
// current value (zero when absent) and reports whether to write it back.
// Updates are serialized with each other within this Cache.
func Update[T any](c *Cache, key string, ttl time.Duration, fn func(cur *T, found bool) (bool, error)) error {
	c.updateMu.Lock()
	defer c.updateMu.Unlock()

	var cur T
	found, err := c.GetItem(key, &cur)
	if err != nil {
		log.WithField("key", key).Warnf("cache read failed during update: %s", err)
	}
	write, err := fn(&cur, found)
	if err != nil || !write {
		return err
	}
	return c.SetItem(key, cur, ttl)
}

func (c *Cache) l1Get(key string) ([]byte, bool) {
	if c.l1 == nil {
		return nil, false
	}
	v, ok := c.l1.Get(key)
	if !ok {
		return nil, false
	}
	data, ok := v.([]byte)
	return data, ok
}

// l1Set waits for ristretto's buffered write so the next read sees it.
func (c *Cache) l1Set(key string, data []byte, lifetime time.Duration) {
	if c.l1 == nil || lifetime <= 0 {
		return
	}
	if !c.l1.SetWithTTL(key, data, int64(len(data)), lifetime) {
		log.WithField("key", key).Debug("l1 write dropped")
		return
	}
	c.l1.Wait()
}

func (c *Cache) l1Del(key string) {
	if c.l1 != nil {
		c.l1.Del(key)
	}
}

func (c *Cache) countMiss() {
	if c.metrics != nil {
		c.metrics.CounterCacheMisses.Inc()
	}
}

func (c *Cache) countError() {
	if c.metrics != nil {
		c.metrics.CounterCacheErrors.Inc()
	}
}
