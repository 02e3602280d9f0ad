package dsa

import "testing"

func TestTrieInsertAndSearch(t *testing.T) {
	trie := NewTrie[int]()
	trie.Insert("const x = ", 1)
	trie.Insert("const y = ", 2)

	val, found := trie.Search("const x = ")
	if !found {
		t.Fatal("expected key to be found")
	}
	if val != 1 {
		t.Errorf("expected 1, got %d", val)
	}

	if _, found := trie.Search("const z = "); found {
		t.Error("expected miss for absent key")
	}
}

func TestTrieInsertOverwriteKeepsSize(t *testing.T) {
	trie := NewTrie[int]()
	trie.Insert("abc", 1)
	trie.Insert("abc", 2)

	if trie.Size() != 1 {
		t.Errorf("expected size 1, got %d", trie.Size())
	}
	val, _ := trie.Search("abc")
	if val != 2 {
		t.Errorf("expected overwritten value 2, got %d", val)
	}
}

func TestTrieLongestPrefix(t *testing.T) {
	trie := NewTrie[string]()
	trie.Insert("const x", "short")
	trie.Insert("const x = 4", "long")

	key, val, found := trie.LongestPrefix("const x = 42")
	if !found {
		t.Fatal("expected a longest-prefix match")
	}
	if key != "const x = 4" {
		t.Errorf("expected longest stored prefix, got %q", key)
	}
	if val != "long" {
		t.Errorf("expected value 'long', got %q", val)
	}

	if _, _, found := trie.LongestPrefix("func main"); found {
		t.Error("expected no match for unrelated query")
	}
}

func TestTrieDelete(t *testing.T) {
	trie := NewTrie[int]()
	trie.Insert("abc", 1)

	if !trie.Delete("abc") {
		t.Error("expected delete to report success")
	}
	if trie.Delete("abc") {
		t.Error("expected second delete to report failure")
	}
	if !trie.IsEmpty() {
		t.Error("expected empty trie after delete")
	}
}

func TestTrieForEach(t *testing.T) {
	trie := NewTrie[int]()
	trie.Insert("a", 1)
	trie.Insert("b", 2)
	trie.Insert("c", 3)

	sum := 0
	trie.ForEach(func(key string, value int) {
		sum += value
	})
	if sum != 6 {
		t.Errorf("expected visit sum 6, got %d", sum)
	}
}

func TestTrieClear(t *testing.T) {
	trie := NewTrie[int]()
	trie.Insert("a", 1)
	trie.Clear()

	if trie.Size() != 0 {
		t.Errorf("expected size 0 after clear, got %d", trie.Size())
	}
	if _, found := trie.Search("a"); found {
		t.Error("expected miss after clear")
	}
}
