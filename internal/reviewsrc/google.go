package reviewsrc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Name tags requests verified through this integration.
const Name = "google"

const defaultBaseURL = "https://maps.googleapis.com"

// GoogleAdapter fetches the most recent public reviews for a place through
// the Places Details API. Google returns at most five reviews per call, which
// is the snapshot the matcher works with.
type GoogleAdapter struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
}

func NewGoogleAdapter(cfg Config) *GoogleAdapter {
	return &GoogleAdapter{
		cfg:        cfg,
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
	}
}

// placeDetails mirrors the slice of the Places response we care about.
type placeDetails struct {
	Status string `json:"status"`
	Result struct {
		Reviews []struct {
			AuthorName string `json:"author_name"`
			Text       string `json:"text"`
			Time       int64  `json:"time"`
		} `json:"reviews"`
	} `json:"result"`
}

func (g *GoogleAdapter) FetchRecent(ctx context.Context) ([]Review, error) {
	if !g.cfg.Configured() {
		return nil, fmt.Errorf("google reviews integration is not configured")
	}

	q := url.Values{}
	q.Set("place_id", g.cfg.PlaceID)
	q.Set("fields", "reviews")
	q.Set("key", g.cfg.APIKey)

	endpoint := g.baseURL + "/maps/api/place/details/json?" + q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("place details request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("place details read: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("place details failed: http=%d body=%s", resp.StatusCode, string(raw))
	}

	var details placeDetails
	if err := json.Unmarshal(raw, &details); err != nil {
		return nil, fmt.Errorf("place details decode: %w", err)
	}

	if details.Status != "OK" {
		return nil, fmt.Errorf("place details status %q", details.Status)
	}

	reviews := make([]Review, 0, len(details.Result.Reviews))
	for _, r := range details.Result.Reviews {
		reviews = append(reviews, Review{
			AuthorDisplayName: r.AuthorName,
			Text:              r.Text,
			PublishedAt:       time.Unix(r.Time, 0),
			// Places reviews carry no stable id of their own, so derive one
			// from the fields that identify a review within a listing.
			ExternalID: fmt.Sprintf("%s@%d", r.AuthorName, r.Time),
		})
	}
	return reviews, nil
}
