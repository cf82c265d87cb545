package raster

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/semaphore"
)

// DecodeFunc turns a source into a raster.
type DecodeFunc func(*Source) (*Raster, error)

// ReadyFunc is called once a scheduled decode finishes. err is non-nil when
// the decode failed; r is nil in that case.
type ReadyFunc func(r *Raster, err error)

// Cache memoizes decoded rasters keyed by source identity. Misses are decoded
// asynchronously with bounded concurrency. Entries live until the source is
// dropped via Retain.
type Cache struct {
	mu      sync.Mutex
	entries map[*Source]*Raster
	failed  map[*Source]error
	pending map[*Source][]ReadyFunc

	sem    *semaphore.Weighted
	decode DecodeFunc
}

// NewCache creates a cache decoding at most maxConcurrent sources at once.
func NewCache(maxConcurrent int) *Cache {
	return NewCacheWithDecoder(maxConcurrent, Decode)
}

// NewCacheWithDecoder creates a cache using a custom decode function.
func NewCacheWithDecoder(maxConcurrent int, decode DecodeFunc) *Cache {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Cache{
		entries: make(map[*Source]*Raster),
		failed:  make(map[*Source]error),
		pending: make(map[*Source][]ReadyFunc),
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		decode:  decode,
	}
}

// Get returns a cached raster without scheduling a decode.
func (c *Cache) Get(src *Source) (*Raster, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[src]
	return r, ok
}

// GetOrDecode returns the cached raster for src. On a miss it schedules a
// decode (unless one is already in flight) and returns false; onReady is
// called from the decoding goroutine when it completes. Sources that already
// failed are not retried and onReady is not called.
func (c *Cache) GetOrDecode(src *Source, onReady ReadyFunc) (*Raster, bool) {
	r, hit, _ := c.lookup(src, onReady)
	return r, hit
}

// lookup is GetOrDecode that also reports whether onReady was registered
// and so will be called exactly once.
func (c *Cache) lookup(src *Source, onReady ReadyFunc) (r *Raster, hit, registered bool) {
	if src == nil {
		return nil, false, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if r, ok := c.entries[src]; ok {
		return r, true, false
	}
	if _, ok := c.failed[src]; ok {
		return nil, false, false
	}

	waiters, inFlight := c.pending[src]
	if onReady != nil {
		waiters = append(waiters, onReady)
	}
	c.pending[src] = waiters
	if !inFlight {
		go c.run(src)
	}
	return nil, false, onReady != nil
}

func (c *Cache) run(src *Source) {
	if err := c.sem.Acquire(context.Background(), 1); err != nil {
		return
	}
	r, err := c.decode(src)
	c.sem.Release(1)

	c.mu.Lock()
	waiters, wanted := c.pending[src]
	delete(c.pending, src)
	if wanted {
		if err != nil {
			c.failed[src] = err
		} else {
			c.entries[src] = r
		}
	}
	c.mu.Unlock()

	if !wanted {
		// Evicted while decoding.
		return
	}
	if err != nil {
		log.Printf("Raster cache: skipping %s: %v", src.Name, err)
	}
	for _, fn := range waiters {
		fn(r, err)
	}
}

// Retain evicts every entry whose source is not in active. Decodes still in
// flight for evicted sources are discarded on completion.
func (c *Cache) Retain(active []*Source) {
	keep := make(map[*Source]struct{}, len(active))
	for _, src := range active {
		keep[src] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for src := range c.entries {
		if _, ok := keep[src]; !ok {
			delete(c.entries, src)
		}
	}
	for src := range c.failed {
		if _, ok := keep[src]; !ok {
			delete(c.failed, src)
		}
	}
	for src := range c.pending {
		if _, ok := keep[src]; !ok {
			delete(c.pending, src)
		}
	}
}

// Len returns the number of decoded entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Load builds the slot sequence for sources. Cache hits are filled
// immediately; misses are delivered later through onSlot with the index of
// the requesting source, in whatever order decodes complete.
func (c *Cache) Load(sources []*Source, onSlot func(index int, src *Source, r *Raster)) *Slots {
	slots := NewSlots(len(sources))
	for i, src := range sources {
		i, src := i, src
		r, ok := c.GetOrDecode(src, func(r *Raster, err error) {
			if err == nil && onSlot != nil {
				onSlot(i, src, r)
			}
		})
		if ok {
			slots.Set(i, r)
		}
	}
	return slots
}

// DecodeAll decodes every source and waits for completion or ctx
// cancellation. Failed sources stay absent.
func (c *Cache) DecodeAll(ctx context.Context, sources []*Source) *Slots {
	slots := NewSlots(len(sources))

	type result struct {
		index int
		r     *Raster
	}
	results := make(chan result, len(sources))
	waiting := 0

	for i, src := range sources {
		if src == nil {
			continue
		}
		i := i
		r, hit, registered := c.lookup(src, func(r *Raster, err error) {
			results <- result{index: i, r: r}
		})
		if hit {
			slots.Set(i, r)
			continue
		}
		if registered {
			waiting++
		}
	}

	for ; waiting > 0; waiting-- {
		select {
		case res := <-results:
			if res.r != nil {
				slots.Set(res.index, res.r)
			}
		case <-ctx.Done():
			return slots
		}
	}
	return slots
}

// Err returns the decode error recorded for src, if any.
func (c *Cache) Err(src *Source) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failed[src]
}
