package matching

import (
	"strings"
	"unicode"
)

// Candidate is one public review as seen by the matcher. The adapter that
// fetched it decides what goes into ExternalID.
type Candidate struct {
	Author     string
	Text       string
	ExternalID string
}

// Hints are the identity and content signals captured on a review request.
// Name and Phone are optional; a request with neither set can never match.
type Hints struct {
	Name  string
	Phone string
	Note  string
}

// IsCandidate is the cheap identity pre-check run before any scoring:
// the request's name must appear inside the review author (case-insensitive),
// or the request's phone must appear verbatim inside the review text.
func IsCandidate(h Hints, c Candidate) bool {
	if h.Name != "" && strings.Contains(strings.ToLower(c.Author), strings.ToLower(h.Name)) {
		return true
	}
	if h.Phone != "" && strings.Contains(c.Text, h.Phone) {
		return true
	}
	return false
}

// tokenize lowercases s and splits it on runs of non-word characters,
// discarding empty tokens. Word characters are letters, digits and underscore.
func tokenize(s string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})

	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// Similarity computes Jaccard similarity over the word sets of a and b:
// |intersection| / |union|, with an empty union counted as 1 so two empty
// strings score 0 rather than dividing by zero.
func Similarity(a, b string) float64 {
	as := tokenize(a)
	bs := tokenize(b)

	intersection := 0
	for t := range as {
		if _, ok := bs[t]; ok {
			intersection++
		}
	}

	union := len(as) + len(bs) - intersection
	if union == 0 {
		union = 1
	}

	return float64(intersection) / float64(union)
}

// Score rates how well a candidate review matches a request, comparing the
// customer's own account (note + name) against the public review (text + author).
func Score(h Hints, c Candidate) float64 {
	return Similarity(h.Note+" "+h.Name, c.Text+" "+c.Author)
}

// Best runs the full two-stage match: filter reviews down to identity
// candidates, score each and keep the highest, then accept only if the best
// score clears threshold. The bool result reports acceptance.
func Best(h Hints, reviews []Candidate, threshold float64) (Candidate, float64, bool) {
	var (
		best      Candidate
		bestScore = -1.0
	)

	for _, c := range reviews {
		if !IsCandidate(h, c) {
			continue
		}
		if s := Score(h, c); s > bestScore {
			best = c
			bestScore = s
		}
	}

	if bestScore < threshold {
		return Candidate{}, 0, false
	}
	return best, bestScore, true
}
