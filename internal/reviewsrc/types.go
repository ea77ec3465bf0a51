package reviewsrc

import (
	"context"
	"time"
)

// Review is one public review in the shape the verification job consumes.
type Review struct {
	AuthorDisplayName string    `json:"author_display_name"`
	Text              string    `json:"text"`
	PublishedAt       time.Time `json:"published_at"`
	ExternalID        string    `json:"external_id"`
}

// Fetcher is any source of the current public review snapshot for the
// configured listing. Implementations return the provider's bounded
// most-recent set; they do not paginate.
type Fetcher interface {
	FetchRecent(ctx context.Context) ([]Review, error)
}

// Config holds the collaborator-supplied integration settings. APIKey and
// PlaceID are both required for fetching; OverrideReviewURL, when set, wins
// over the URL constructed from the place id.
type Config struct {
	APIKey            string
	PlaceID           string
	OverrideReviewURL string
}

// Configured reports whether the integration has enough settings to fetch.
func (c Config) Configured() bool {
	return c.APIKey != "" && c.PlaceID != ""
}

// PublicReviewURL resolves the link customers follow to leave a review.
// Precedence: explicit override, then a write-review URL built from the
// place id, then empty when neither is available.
func (c Config) PublicReviewURL() string {
	if c.OverrideReviewURL != "" {
		return c.OverrideReviewURL
	}
	if c.PlaceID != "" {
		return "https://search.google.com/local/writereview?placeid=" + c.PlaceID
	}
	return ""
}
