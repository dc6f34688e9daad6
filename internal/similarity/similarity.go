// Package similarity provides string similarity helpers for matching call titles
// against customer names.
package similarity

import (
	"strings"
	"unicode"
)

const (
	substringScore   = 90
	perTokenScore    = 20
	coverageScore    = 30
	maxFuzzyScore    = 85
	tokenMatchRatio  = 0.8
	looseMatchRatio  = 0.7
	minLooseTokenLen = 3
)

// Levenshtein returns the edit distance between a and b, counted in runes.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
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

// Similarity returns 1 - distance/max(len(a), len(b)). Two empty strings are identical.
func Similarity(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}
	return 1 - float64(Levenshtein(a, b))/float64(longest)
}

// Normalize lowercases s, replaces punctuation with spaces and collapses whitespace.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokens splits the normalized form of s into words.
func Tokens(s string) []string {
	return strings.Fields(Normalize(s))
}

// FlexibleMatch reports whether term plausibly refers to title. It succeeds when
// the normalized title contains the normalized term, when every term token matches
// some title token, or when any pair of longer tokens is close enough.
func FlexibleMatch(title, term string) bool {
	nTitle, nTerm := Normalize(title), Normalize(term)
	if nTerm == "" || nTitle == "" {
		return false
	}
	if strings.Contains(nTitle, nTerm) {
		return true
	}

	titleTokens := strings.Fields(nTitle)
	termTokens := strings.Fields(nTerm)

	all := true
	for _, tt := range termTokens {
		if !anyToken(titleTokens, func(w string) bool {
			return tokensOverlap(w, tt) || Similarity(w, tt) > tokenMatchRatio
		}) {
			all = false
			break
		}
	}
	if all {
		return true
	}

	for _, tt := range termTokens {
		if len([]rune(tt)) < minLooseTokenLen {
			continue
		}
		if anyToken(titleTokens, func(w string) bool {
			return len([]rune(w)) >= minLooseTokenLen && Similarity(w, tt) > looseMatchRatio
		}) {
			return true
		}
	}
	return false
}

// MatchScore rates how well term matches title on a 0..90 scale. A normalized
// substring hit scores 90; otherwise each term token contained in (or containing)
// a title token earns 20, plus up to 30 for coverage, capped at 85.
func MatchScore(title, term string) int {
	nTitle, nTerm := Normalize(title), Normalize(term)
	if nTerm == "" || nTitle == "" {
		return 0
	}
	if strings.Contains(nTitle, nTerm) {
		return substringScore
	}

	titleTokens := strings.Fields(nTitle)
	termTokens := strings.Fields(nTerm)
	matched := 0
	for _, tt := range termTokens {
		if anyToken(titleTokens, func(w string) bool { return tokensOverlap(w, tt) }) {
			matched++
		}
	}
	if matched == 0 {
		return 0
	}

	score := matched*perTokenScore + matched*coverageScore/len(termTokens)
	return min(score, maxFuzzyScore)
}

func tokensOverlap(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func anyToken(tokens []string, pred func(string) bool) bool {
	for _, t := range tokens {
		if pred(t) {
			return true
		}
	}
	return false
}
