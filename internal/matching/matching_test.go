package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarityIdentical(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("great show friendly staff", "great show friendly staff"))
}

func TestSimilarityDisjoint(t *testing.T) {
	assert.Equal(t, 0.0, Similarity("great show", "terrible experience"))
}

func TestSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"loved the ambience", "the sound was loved"},
		{"", "anything at all"},
		{"punctuation, everywhere!!", "everywhere punctuation"},
		{"", ""},
	}
	for _, p := range pairs {
		assert.Equal(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]), "pair %q", p)
	}
}

func TestSimilarityBothEmpty(t *testing.T) {
	// empty union must not divide by zero
	assert.Equal(t, 0.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("!!!", "..."))
}

func TestSimilarityBounds(t *testing.T) {
	cases := [][2]string{
		{"a b c d", "c d e f"},
		{"one", "one two three"},
		{"x", "y"},
	}
	for _, c := range cases {
		s := Similarity(c[0], c[1])
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}

func TestSimilarityIgnoresCaseAndPunctuation(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("Great Show!", "great, show"))
}

func TestIsCandidateNameSubstring(t *testing.T) {
	h := Hints{Name: "priya"}
	c := Candidate{Author: "Priya Sharma", Text: "completely unrelated text"}
	assert.True(t, IsCandidate(h, c))
}

func TestIsCandidatePhoneInText(t *testing.T) {
	h := Hints{Phone: "9998887770"}
	c := Candidate{Author: "Anonymous", Text: "call me on 9998887770 about seats"}
	assert.True(t, IsCandidate(h, c))
}

func TestIsCandidateNoHints(t *testing.T) {
	h := Hints{Note: "wonderful evening"}
	c := Candidate{Author: "wonderful evening", Text: "wonderful evening"}
	assert.False(t, IsCandidate(h, c), "requests without name or phone never qualify")
}

func TestIsCandidateNameMismatch(t *testing.T) {
	h := Hints{Name: "Rohit"}
	c := Candidate{Author: "Priya Sharma", Text: "no phone here"}
	assert.False(t, IsCandidate(h, c))
}

func TestBestPicksHighestScore(t *testing.T) {
	h := Hints{Name: "rohit", Note: "loved the ambience and sound"}
	reviews := []Candidate{
		{Author: "Rohit Verma", Text: "parking was difficult", ExternalID: "r1"},
		{Author: "Rohit K", Text: "Loved the ambience and sound quality, will come again", ExternalID: "r2"},
		{Author: "Someone Else", Text: "loved the ambience and sound", ExternalID: "r3"},
	}

	best, score, ok := Best(h, reviews, 0.2)
	require.True(t, ok)
	assert.Equal(t, "r2", best.ExternalID, "r3 scores well but fails the identity filter")
	assert.GreaterOrEqual(t, score, 0.2)
}

func TestBestRejectsBelowThreshold(t *testing.T) {
	h := Hints{Name: "priya", Note: "great show"}
	reviews := []Candidate{
		{Author: "Priya Sharma", Text: "terrible experience nothing alike", ExternalID: "r1"},
	}

	_, _, ok := Best(h, reviews, 0.2)
	assert.False(t, ok, "identity hit alone must not be enough")
}

func TestBestNoCandidates(t *testing.T) {
	h := Hints{Name: "rohit"}
	_, _, ok := Best(h, nil, 0.2)
	assert.False(t, ok)

	_, _, ok = Best(Hints{}, []Candidate{{Author: "x", Text: "y"}}, 0)
	assert.False(t, ok, "no identity hints means no candidates even at threshold zero")
}
