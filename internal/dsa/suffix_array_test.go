package dsa

import (
	"reflect"
	"testing"
)

func TestSuffixArraySearch(t *testing.T) {
	sa := BuildSuffixArray("banana")

	tests := []struct {
		pattern string
		want    []int
	}{
		{"ana", []int{1, 3}},
		{"na", []int{2, 4}},
		{"banana", []int{0}},
		{"b", []int{0}},
		{"xyz", []int{}},
		{"", []int{}},
	}
	for _, tt := range tests {
		got := sa.Search(tt.pattern)
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Search(%q) = %v, want %v", tt.pattern, got, tt.want)
		}
	}
}

func TestSuffixArrayCount(t *testing.T) {
	sa := BuildSuffixArray("func Parse() { Parse(); Parse() }")
	if got := sa.Count("Parse"); got != 3 {
		t.Errorf("Count = %d, want 3", got)
	}
	if got := sa.Count("Render"); got != 0 {
		t.Errorf("Count = %d, want 0", got)
	}
}

func TestSuffixArrayEmptyText(t *testing.T) {
	sa := BuildSuffixArray("")
	if got := sa.Count("x"); got != 0 {
		t.Errorf("Count on empty text = %d, want 0", got)
	}
}
