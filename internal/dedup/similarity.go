package dedup

import "github.com/agext/levenshtein"

// Similarity returns a symmetric 0.0-1.0 token-sort ratio between two
// strings: both sides are normalized, tokenized, sorted and rejoined, then
// compared with a Levenshtein ratio. Two empty strings are not similar —
// absence of data is no evidence of identity.
func Similarity(a, b string) float64 {
	ka, kb := tokenSortKey(a), tokenSortKey(b)
	if ka == "" || kb == "" {
		return 0
	}
	if ka == kb {
		return 1
	}
	return levenshtein.Similarity(ka, kb, nil)
}
