package reviewlink

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenURLSafeAndUnique(t *testing.T) {
	g, err := NewGenerator("test-salt")
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		tok, err := g.NewToken()
		require.NoError(t, err)

		assert.Len(t, tok, 43, "32 bytes base64url without padding")
		assert.False(t, strings.ContainsAny(tok, "+/="), "token must be URL-safe")
		assert.False(t, seen[tok], "token reused")
		seen[tok] = true
	}
}

func TestRefStableAndPrefixed(t *testing.T) {
	g, err := NewGenerator("test-salt")
	require.NoError(t, err)

	ref, err := g.Ref(42)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "RV-"))
	assert.GreaterOrEqual(t, len(ref), len("RV-")+6)

	again, err := g.Ref(42)
	require.NoError(t, err)
	assert.Equal(t, ref, again)

	other, err := g.Ref(43)
	require.NoError(t, err)
	assert.NotEqual(t, ref, other)
}

func TestReviewURL(t *testing.T) {
	assert.Equal(t,
		"https://app.example.com/review?token=abc123",
		ReviewURL("https://app.example.com/", "abc123"),
	)
}
