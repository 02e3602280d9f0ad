package speculative

import (
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/richinex/midline/model"
)

const keySep = "\x1f"

func cacheKey(prefix, suffix string) uint64 {
	return xxhash.Sum64String(prefix + keySep + suffix)
}

// cache is a bounded store of speculative suggestions keyed by exact cursor
// position, with insertion-order eviction. Entries stay addressable by id
// after the cursor moves so late validations can still land.
type cache struct {
	mu      sync.Mutex
	byKey   map[uint64]*model.SpeculativeSuggestion
	byID    map[string]*model.SpeculativeSuggestion
	order   []uint64
	maxSize int
}

func newCache(maxSize int) *cache {
	return &cache{
		byKey:   make(map[uint64]*model.SpeculativeSuggestion),
		byID:    make(map[string]*model.SpeculativeSuggestion),
		order:   make([]uint64, 0, maxSize),
		maxSize: maxSize,
	}
}

// put stores a suggestion, evicting the oldest entry at capacity.
func (c *cache) put(s *model.SpeculativeSuggestion) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(s.Prefix, s.Suffix)
	if old, ok := c.byKey[key]; ok {
		delete(c.byID, old.ID)
		for i, k := range c.order {
			if k == key {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	}

	for len(c.order) >= c.maxSize {
		oldest := c.order[0]
		c.order = c.order[1:]
		if old, ok := c.byKey[oldest]; ok {
			delete(c.byID, old.ID)
			delete(c.byKey, oldest)
		}
	}

	c.byKey[key] = s
	c.byID[s.ID] = s
	c.order = append(c.order, key)
}

// get returns a copy of the suggestion for an exact cursor position.
func (c *cache) get(prefix, suffix string) *model.SpeculativeSuggestion {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.byKey[cacheKey(prefix, suffix)]
	if !ok {
		return nil
	}
	out := *s
	return &out
}

// getByID returns a copy of the suggestion with the given id.
func (c *cache) getByID(id string) *model.SpeculativeSuggestion {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.byID[id]
	if !ok {
		return nil
	}
	out := *s
	return &out
}

// setValidation updates a cached entry's validation outcome in place.
// Returns false when the entry has been evicted.
func (c *cache) setValidation(id string, status model.ValidationStatus, refined string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.byID[id]
	if !ok {
		return false
	}
	s.Status = status
	s.RefinedCompletion = refined
	return true
}

func (c *cache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byKey)
}

func (c *cache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byKey = make(map[uint64]*model.SpeculativeSuggestion)
	c.byID = make(map[string]*model.SpeculativeSuggestion)
	c.order = c.order[:0]
}
