// Package dsa provides data structure implementations for request tracking.
// Uses go-radix for a compressed prefix tree (radix tree).
package dsa

import (
	"github.com/armon/go-radix"
)

// Trie wraps go-radix for a compressed prefix tree (radix tree).
// Much more memory-efficient than a standard trie for long cursor prefixes.
//
// Standard trie: one node per character of the prefix
// Radix tree:    shared runs compressed into single nodes
//
// Time Complexity: O(k) where k is key length
// Space Complexity: O(n * avg_key_len) instead of O(n * alphabet * max_key_len)
type Trie[V any] struct {
	tree *radix.Tree
	size int
}

// NewTrie creates a new empty radix tree.
func NewTrie[V any]() *Trie[V] {
	return &Trie[V]{
		tree: radix.New(),
	}
}

// Insert adds a key-value pair to the tree.
// Time Complexity: O(k) where k is key length.
func (t *Trie[V]) Insert(key string, value V) {
	_, updated := t.tree.Insert(key, value)
	if !updated {
		t.size++
	}
}

// Search looks up a key in the tree.
// Time Complexity: O(k) where k is key length.
func (t *Trie[V]) Search(key string) (V, bool) {
	val, found := t.tree.Get(key)
	if !found {
		var zero V
		return zero, false
	}
	v, ok := val.(V)
	if !ok {
		var zero V
		return zero, false
	}
	return v, true
}

// Delete removes a key from the tree.
// Returns true if the key was found and deleted.
func (t *Trie[V]) Delete(key string) bool {
	_, deleted := t.tree.Delete(key)
	if deleted {
		t.size--
	}
	return deleted
}

// Size returns the number of keys in the tree.
func (t *Trie[V]) Size() int {
	return t.size
}

// IsEmpty returns true if the tree has no keys.
func (t *Trie[V]) IsEmpty() bool {
	return t.size == 0
}

// Clear removes all keys from the tree.
func (t *Trie[V]) Clear() {
	t.tree = radix.New()
	t.size = 0
}

// ForEach calls the given function for each key-value pair.
func (t *Trie[V]) ForEach(fn func(key string, value V)) {
	t.tree.Walk(func(k string, v interface{}) bool {
		if val, ok := v.(V); ok {
			fn(k, val)
		}
		return false // continue walking
	})
}

// LongestPrefix returns the longest stored key that is a prefix of the query.
func (t *Trie[V]) LongestPrefix(query string) (string, V, bool) {
	key, val, found := t.tree.LongestPrefix(query)
	if !found {
		var zero V
		return "", zero, false
	}
	v, ok := val.(V)
	if !ok {
		var zero V
		return "", zero, false
	}
	return key, v, true
}
