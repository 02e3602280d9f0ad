// Package request tracks in-flight completion generations and decides
// between reusing a pending request and cancelling obsolete ones as the
// cursor moves.
//
// Information Hiding:
// - Composite keying of pending requests
// - Suffix grouping and prefix-extension lookup
// - Cancellation bookkeeping

package request

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"

	"github.com/richinex/midline/internal/dsa"
	"github.com/richinex/midline/model"
)

// Pending is one in-flight generation. It resolves exactly once and may be
// awaited by any number of callers.
type Pending struct {
	Prefix string
	Suffix string

	done      chan struct{}
	result    *model.MatchResult
	err       error
	cancel    context.CancelFunc
	cancelled atomic.Bool
	once      sync.Once
}

// NewPending creates a pending request with its cancellation hook.
func NewPending(prefix, suffix string, cancel context.CancelFunc) *Pending {
	return &Pending{
		Prefix: prefix,
		Suffix: suffix,
		done:   make(chan struct{}),
		cancel: cancel,
	}
}

// Resolve records the outcome. Later calls are no-ops.
func (p *Pending) Resolve(result *model.MatchResult, err error) {
	p.once.Do(func() {
		p.result = result
		p.err = err
		close(p.done)
	})
}

// Wait blocks until the request resolves or the caller's context ends.
func (p *Pending) Wait(ctx context.Context) (*model.MatchResult, error) {
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel sets the cancelled flag and fires the cancellation hook.
// The underlying network call is not guaranteed to stop; callers check
// Cancelled before applying a late result.
func (p *Pending) Cancel() {
	p.cancelled.Store(true)
	if p.cancel != nil {
		p.cancel()
	}
}

// Cancelled reports whether Cancel was called.
func (p *Pending) Cancelled() bool {
	return p.cancelled.Load()
}

// keySep never occurs in editor text.
const keySep = "\x1f"

func compositeKey(prefix, suffix string) string {
	return prefix + keySep + suffix
}

// suffixGroup indexes the pending prefixes that share one suffix.
// The suffix string is kept to guard against hash collisions.
type suffixGroup struct {
	suffix   string
	prefixes *dsa.Trie[*Pending]
}

// Coordinator tracks at most one pending request per (prefix, suffix) pair.
// Resolution goroutines call Remove concurrently with keystroke callbacks,
// so all operations lock.
type Coordinator struct {
	mu     sync.Mutex
	exact  map[string]*Pending
	groups map[uint64]*suffixGroup
}

// NewCoordinator creates an empty coordinator.
func NewCoordinator() *Coordinator {
	return &Coordinator{
		exact:  make(map[string]*Pending),
		groups: make(map[uint64]*suffixGroup),
	}
}

// Add tracks a pending request under its composite key. A request already
// tracked under the same key is replaced untouched; the caller owns its
// lifecycle.
func (c *Coordinator) Add(prefix, suffix string, p *Pending) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.exact[compositeKey(prefix, suffix)] = p

	h := xxhash.Sum64String(suffix)
	group, ok := c.groups[h]
	if !ok || group.suffix != suffix {
		group = &suffixGroup{
			suffix:   suffix,
			prefixes: dsa.NewTrie[*Pending](),
		}
		c.groups[h] = group
	}
	group.prefixes.Insert(prefix, p)
}

// Remove stops tracking the request for the given cursor position.
func (c *Coordinator) Remove(prefix, suffix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(prefix, suffix)
}

func (c *Coordinator) removeLocked(prefix, suffix string) {
	delete(c.exact, compositeKey(prefix, suffix))

	h := xxhash.Sum64String(suffix)
	if group, ok := c.groups[h]; ok && group.suffix == suffix {
		group.prefixes.Delete(prefix)
		if group.prefixes.IsEmpty() {
			delete(c.groups, h)
		}
	}
}

// FindReusable returns a pending request that can serve the queried cursor
// position: an exact match, or one whose stored prefix the queried prefix
// extends while suffixes are equal. Forward extension only; a longer
// stored prefix never serves a shorter query. Returns nil on miss.
func (c *Coordinator) FindReusable(prefix, suffix string) *Pending {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.exact[compositeKey(prefix, suffix)]; ok {
		return p
	}

	h := xxhash.Sum64String(suffix)
	group, ok := c.groups[h]
	if !ok || group.suffix != suffix {
		return nil
	}
	if _, p, ok := group.prefixes.LongestPrefix(prefix); ok {
		return p
	}
	return nil
}

// CancelObsolete cancels and removes every tracked request made stale by
// the new cursor position: any request with a different suffix, and any
// same-suffix request whose prefix has truly diverged. Requests whose
// prefix is a prefix of the query, or vice versa, keep running.
func (c *Coordinator) CancelObsolete(prefix, suffix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	type doomed struct {
		p              *Pending
		prefix, suffix string
	}
	var cancel []doomed

	for _, group := range c.groups {
		if group.suffix != suffix {
			group.prefixes.ForEach(func(storedPrefix string, p *Pending) {
				cancel = append(cancel, doomed{p, storedPrefix, group.suffix})
			})
			continue
		}
		group.prefixes.ForEach(func(storedPrefix string, p *Pending) {
			if strings.HasPrefix(prefix, storedPrefix) || strings.HasPrefix(storedPrefix, prefix) {
				return
			}
			cancel = append(cancel, doomed{p, storedPrefix, group.suffix})
		})
	}

	for _, d := range cancel {
		d.p.Cancel()
		c.removeLocked(d.prefix, d.suffix)
	}
}

// Clear cancels and removes all tracked requests.
func (c *Coordinator) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, group := range c.groups {
		group.prefixes.ForEach(func(_ string, p *Pending) {
			p.Cancel()
		})
	}
	c.exact = make(map[string]*Pending)
	c.groups = make(map[uint64]*suffixGroup)
}

// Len returns the number of tracked requests.
func (c *Coordinator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.exact)
}
