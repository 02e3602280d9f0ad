// Suffix array for substring occurrence counting over snippet text.
package dsa

import (
	"sort"
)

// SuffixArray indexes a text for O(m log n) substring search, where m is
// the pattern length and n the text length.
type SuffixArray struct {
	Text string // Original text
	SA   []int  // SA[i] = start position of i-th smallest suffix
}

// BuildSuffixArray constructs a suffix array using prefix doubling.
// Time Complexity: O(n log^2 n)
// Space Complexity: O(n)
func BuildSuffixArray(text string) *SuffixArray {
	n := len(text)
	if n == 0 {
		return &SuffixArray{Text: text, SA: []int{}}
	}

	sa := &SuffixArray{
		Text: text,
		SA:   make([]int, n),
	}

	rank := make([]int, n)
	for i := 0; i < n; i++ {
		sa.SA[i] = i
		rank[i] = int(text[i])
	}

	rankAt := func(i, k int) int {
		if i+k < n {
			return rank[i+k]
		}
		return -1
	}

	tmpRank := make([]int, n)
	for k := 1; k < n; k *= 2 {
		// Sort by (rank[i], rank[i+k]) pairs
		sort.Slice(sa.SA, func(i, j int) bool {
			if rank[sa.SA[i]] != rank[sa.SA[j]] {
				return rank[sa.SA[i]] < rank[sa.SA[j]]
			}
			return rankAt(sa.SA[i], k) < rankAt(sa.SA[j], k)
		})

		tmpRank[sa.SA[0]] = 0
		for i := 1; i < n; i++ {
			tmpRank[sa.SA[i]] = tmpRank[sa.SA[i-1]]

			prev, curr := sa.SA[i-1], sa.SA[i]
			if rank[prev] != rank[curr] || rankAt(prev, k) != rankAt(curr, k) {
				tmpRank[sa.SA[i]]++
			}
		}
		copy(rank, tmpRank)

		// All suffixes ranked uniquely: done
		if rank[sa.SA[n-1]] == n-1 {
			break
		}
	}

	return sa
}

// Search returns the start positions of all occurrences of pattern,
// ascending. Time Complexity: O(m log n).
func (sa *SuffixArray) Search(pattern string) []int {
	if len(pattern) == 0 || len(sa.SA) == 0 {
		return []int{}
	}

	n := len(sa.SA)
	m := len(pattern)

	// Binary search for the match range boundaries
	left := sort.Search(n, func(i int) bool {
		suffix := sa.Text[sa.SA[i]:]
		if len(suffix) < m {
			return suffix >= pattern[:len(suffix)]
		}
		return suffix[:m] >= pattern
	})
	right := sort.Search(n, func(i int) bool {
		suffix := sa.Text[sa.SA[i]:]
		if len(suffix) < m {
			return suffix > pattern[:len(suffix)]
		}
		return suffix[:m] > pattern
	})

	var matches []int
	for i := left; i < right; i++ {
		pos := sa.SA[i]
		if pos+m <= len(sa.Text) && sa.Text[pos:pos+m] == pattern {
			matches = append(matches, pos)
		}
	}

	sort.Ints(matches)
	return matches
}

// Count returns the number of occurrences of pattern.
func (sa *SuffixArray) Count(pattern string) int {
	return len(sa.Search(pattern))
}
