package reviewsrc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *GoogleAdapter {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g := NewGoogleAdapter(Config{APIKey: "test-key", PlaceID: "place-1"})
	g.baseURL = srv.URL
	return g
}

func TestFetchRecentParsesReviews(t *testing.T) {
	g := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "place-1", r.URL.Query().Get("place_id"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "OK",
			"result": {"reviews": [
				{"author_name": "Rohit K", "text": "Loved the ambience", "time": 1735689600},
				{"author_name": "Priya Sharma", "text": "Great show", "time": 1735693200}
			]}
		}`))
	})

	reviews, err := g.FetchRecent(context.Background())
	require.NoError(t, err)
	require.Len(t, reviews, 2)

	assert.Equal(t, "Rohit K", reviews[0].AuthorDisplayName)
	assert.Equal(t, "Loved the ambience", reviews[0].Text)
	assert.Equal(t, int64(1735689600), reviews[0].PublishedAt.Unix())
	assert.Equal(t, "Rohit K@1735689600", reviews[0].ExternalID)
}

func TestFetchRecentNon200(t *testing.T) {
	g := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	})

	_, err := g.FetchRecent(context.Background())
	assert.Error(t, err)
}

func TestFetchRecentTruncatedBody(t *testing.T) {
	g := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		// Advertise more bytes than we send so the client sees the
		// connection drop mid-body.
		w.Header().Set("Content-Length", "500")
		w.Write([]byte(`{"status": "OK"`))
	})

	_, err := g.FetchRecent(context.Background())
	assert.ErrorContains(t, err, "place details read")
}

func TestFetchRecentBadStatusField(t *testing.T) {
	g := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "REQUEST_DENIED"}`))
	})

	_, err := g.FetchRecent(context.Background())
	assert.ErrorContains(t, err, "REQUEST_DENIED")
}

func TestFetchRecentUnconfigured(t *testing.T) {
	g := NewGoogleAdapter(Config{})
	_, err := g.FetchRecent(context.Background())
	assert.Error(t, err)
}

func TestPublicReviewURLPrecedence(t *testing.T) {
	override := Config{OverrideReviewURL: "https://example.com/review-us", PlaceID: "place-1"}
	assert.Equal(t, "https://example.com/review-us", override.PublicReviewURL())

	fromPlace := Config{PlaceID: "place-1"}
	assert.Equal(t, "https://search.google.com/local/writereview?placeid=place-1", fromPlace.PublicReviewURL())

	assert.Empty(t, Config{}.PublicReviewURL())
}

func TestConfigured(t *testing.T) {
	assert.False(t, Config{APIKey: "k"}.Configured())
	assert.False(t, Config{PlaceID: "p"}.Configured())
	assert.True(t, Config{APIKey: "k", PlaceID: "p"}.Configured())
}
