// Package dedup collapses duplicate childcare leads within a batch and
// against the tracker's known-lead snapshot.
package dedup

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks removes combining marks so accented names compare equal to
// their plain-ASCII spellings ("Montréal" == "Montreal").
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeKey canonicalizes a name or address for exact-match comparison:
// case-fold, strip diacritics and punctuation, collapse whitespace.
func NormalizeKey(s string) string {
	if s == "" {
		return ""
	}
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	lastSpace := true
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case !lastSpace:
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// NormalizeLicense canonicalizes a license number: trim and case-fold only.
// License numbers keep their punctuation ("ON-1234" stays distinct from "ON1234").
func NormalizeLicense(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// tokenSortKey returns the normalized tokens of s sorted and rejoined.
// Word order stops mattering, so "Main St 100" matches "100 Main St".
func tokenSortKey(s string) string {
	tokens := strings.Fields(NormalizeKey(s))
	sortStrings(tokens)
	return strings.Join(tokens, " ")
}

// sortStrings is an insertion sort; token lists are tiny.
func sortStrings(ss []string) {
	for i := 1; i < len(ss); i++ {
		for j := i; j > 0 && ss[j] < ss[j-1]; j-- {
			ss[j], ss[j-1] = ss[j-1], ss[j]
		}
	}
}
