package match

// Levenshtein computes the edit distance between two strings using the
// standard dynamic-programming algorithm with unit-cost insert, delete,
// and substitute. Operates on runes so multibyte text counts correctly.
func Levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)

	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// Similarity scores how alike two strings are on [0,1]. Equal strings score
// 1.0, an empty string against a non-empty one scores 0.0, and everything
// else scores 1 minus the normalized edit distance.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	la := len([]rune(a))
	lb := len([]rune(b))
	if la == 0 || lb == 0 {
		return 0.0
	}
	longer := la
	if lb > longer {
		longer = lb
	}
	return 1.0 - float64(Levenshtein(a, b))/float64(longer)
}
