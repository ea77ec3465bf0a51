package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"theatreops/internal/ratelimiter"
	"theatreops/internal/reviewlink"
	"theatreops/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func withChiParam(r *http.Request, key, val string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, val)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

type fakeReviewRequests struct {
	nextID    int64
	byToken   map[string]*store.ReviewRequest
	createErr error
}

func newFakeReviewRequests() *fakeReviewRequests {
	return &fakeReviewRequests{byToken: map[string]*store.ReviewRequest{}}
}

func (f *fakeReviewRequests) Create(ctx context.Context, rr *store.ReviewRequest) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, dup := f.byToken[rr.Token]; dup {
		return store.ErrConflict
	}
	f.nextID++
	rr.ID = f.nextID
	rr.Status = store.StatusPending
	rr.RequestedAt = time.Now()
	f.byToken[rr.Token] = rr
	return nil
}

func (f *fakeReviewRequests) GetByToken(ctx context.Context, token string) (*store.ReviewRequest, error) {
	rr, ok := f.byToken[token]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *rr
	return &cp, nil
}

func (f *fakeReviewRequests) MarkSubmitted(ctx context.Context, id int64, note string) (bool, error) {
	for _, rr := range f.byToken {
		if rr.ID == id && rr.Status == store.StatusPending {
			now := time.Now()
			rr.Status = store.StatusSubmitted
			rr.Note = note
			rr.SubmittedAt = &now
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReviewRequests) MarkVerified(ctx context.Context, id int64, v store.Verification) (bool, error) {
	for _, rr := range f.byToken {
		if rr.ID == id && rr.Status != store.StatusVerified {
			now := time.Now()
			rr.Status = store.StatusVerified
			rr.VerifiedAt = &now
			rr.VerificationMethod = v.Method
			rr.ExternalReviewRef = v.ReviewRef
			rr.ExternalSourceRef = v.SourceRef
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReviewRequests) ListUnresolved(ctx context.Context) ([]store.ReviewRequest, error) {
	var out []store.ReviewRequest
	for _, rr := range f.byToken {
		if rr.Status != store.StatusVerified {
			out = append(out, *rr)
		}
	}
	return out, nil
}

func (f *fakeReviewRequests) ListByBooking(ctx context.Context, bookingID int64) ([]store.ReviewRequest, error) {
	var out []store.ReviewRequest
	for _, rr := range f.byToken {
		if rr.BookingID == bookingID {
			out = append(out, *rr)
		}
	}
	return out, nil
}

func (f *fakeReviewRequests) List(ctx context.Context, status string, limit, offset int) ([]store.ReviewRequest, int, error) {
	var out []store.ReviewRequest
	for _, rr := range f.byToken {
		if status == "" || rr.Status == status {
			out = append(out, *rr)
		}
	}
	return out, len(out), nil
}

type fakeBookings struct {
	bookings map[int64]*store.Booking
	flagErr  error
}

func (f *fakeBookings) GetByID(ctx context.Context, id int64) (*store.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return b, nil
}

func (f *fakeBookings) SetReviewFlag(ctx context.Context, bookingID int64, flag bool) error {
	if f.flagErr != nil {
		return f.flagErr
	}
	if b, ok := f.bookings[bookingID]; ok {
		b.ReviewFlag = flag
	}
	return nil
}

func (f *fakeBookings) List(ctx context.Context, limit, offset int) ([]store.BookingRow, int, error) {
	return nil, 0, nil
}

type fakeMailer struct {
	sent int
	fail bool
}

func (f *fakeMailer) Send(templateFile, username, email string, data any) (int, error) {
	if f.fail {
		return -1, fmt.Errorf("smtp unavailable")
	}
	f.sent++
	return http.StatusOK, nil
}

func newTestApp(t *testing.T) (*application, *fakeReviewRequests, *fakeBookings, *fakeMailer) {
	t.Helper()

	links, err := reviewlink.NewGenerator("test-salt")
	require.NoError(t, err)

	requests := newFakeReviewRequests()
	bookings := &fakeBookings{bookings: map[int64]*store.Booking{
		1: {ID: 1, CustomerName: "Rohit", CustomerPhone: "9998887770", CustomerEmail: "rohit@example.com", ShowName: "Hamlet"},
	}}
	mail := &fakeMailer{}

	app := &application{
		config: config{
			frontendURL: "https://ops.example.com",
			theatreName: "The Majestic",
			rateLimiter: ratelimiter.Config{Enabled: false},
		},
		logger: zap.NewNop().Sugar(),
		mailer: mail,
		links:  links,
	}
	app.store = store.Storage{
		ReviewRequests: requests,
		Bookings:       bookings,
	}
	return app, requests, bookings, mail
}

func doJSON(t *testing.T, handler http.HandlerFunc, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func createRequestVia(t *testing.T, app *application, bookingID string) ReviewRequestCreated {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/bookings/"+bookingID+"/review-requests", nil)
	req = withChiParam(req, "bookingID", bookingID)
	rec := httptest.NewRecorder()
	app.createReviewRequestHandler(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out struct {
		Data ReviewRequestCreated `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out.Data
}

func TestCreateReviewRequest(t *testing.T) {
	app, requests, _, mail := newTestApp(t)

	created := createRequestVia(t, app, "1")

	assert.NotEmpty(t, created.RequestID)
	assert.True(t, strings.HasPrefix(created.Ref, "RV-"))
	assert.Len(t, created.Token, 43)
	assert.False(t, strings.ContainsAny(created.Token, "+/="))
	assert.Contains(t, created.ReviewURL, "token="+created.Token)

	rr, err := requests.GetByToken(context.Background(), created.Token)
	require.NoError(t, err)
	assert.Equal(t, store.StatusPending, rr.Status)
	assert.Equal(t, "Rohit", rr.CustomerName, "hints default from the booking")
	assert.Equal(t, "9998887770", rr.CustomerPhone)

	assert.Equal(t, 1, mail.sent, "review link emailed to the booking's customer")
}

func TestCreateReviewRequestUnknownBooking(t *testing.T) {
	app, _, _, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/bookings/99/review-requests", nil)
	req = withChiParam(req, "bookingID", "99")
	rec := httptest.NewRecorder()
	app.createReviewRequestHandler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateReviewRequestResendIssuesIndependentTokens(t *testing.T) {
	app, _, _, _ := newTestApp(t)

	first := createRequestVia(t, app, "1")
	second := createRequestVia(t, app, "1")

	assert.NotEqual(t, first.Token, second.Token)

	// the first link still works after the resend
	rec := doJSON(t, app.confirmReviewHandler, http.MethodPost, "/v1/reviews/confirm",
		ConfirmReviewPayload{Token: first.Token})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateReviewRequestMailFailureDoesNotFail(t *testing.T) {
	app, _, _, mail := newTestApp(t)
	mail.fail = true

	created := createRequestVia(t, app, "1")
	assert.NotEmpty(t, created.Token)
}

func TestConfirmUnknownToken(t *testing.T) {
	app, _, _, _ := newTestApp(t)

	rec := doJSON(t, app.confirmReviewHandler, http.MethodPost, "/v1/reviews/confirm",
		ConfirmReviewPayload{Token: "definitely-not-issued"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConfirmMalformedTokensAnswerLikeUnknown(t *testing.T) {
	app, requests, _, _ := newTestApp(t)

	created := createRequestVia(t, app, "1")

	// A caller must not be able to tell a token that fails basic shape
	// checks apart from one that was simply never issued.
	for name, token := range map[string]string{
		"empty":    "",
		"oversize": strings.Repeat("x", 200),
		"unknown":  "definitely-not-issued",
	} {
		rec := doJSON(t, app.confirmReviewHandler, http.MethodPost, "/v1/reviews/confirm",
			ConfirmReviewPayload{Token: token})
		assert.Equal(t, http.StatusNotFound, rec.Code, "token %q", name)
	}

	rr, err := requests.GetByToken(context.Background(), created.Token)
	require.NoError(t, err)
	assert.Equal(t, store.StatusPending, rr.Status, "failed confirms must not touch real requests")
}

func TestConfirmStructurallySimilarTokenFails(t *testing.T) {
	app, _, _, _ := newTestApp(t)

	created := createRequestVia(t, app, "1")

	// flip the last character to a different URL-safe one
	similar := created.Token[:42]
	if strings.HasSuffix(created.Token, "A") {
		similar += "B"
	} else {
		similar += "A"
	}

	rec := doJSON(t, app.confirmReviewHandler, http.MethodPost, "/v1/reviews/confirm",
		ConfirmReviewPayload{Token: similar})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConfirmAdvancesAndSetsFlag(t *testing.T) {
	app, requests, bookings, _ := newTestApp(t)

	created := createRequestVia(t, app, "1")

	rec := doJSON(t, app.confirmReviewHandler, http.MethodPost, "/v1/reviews/confirm",
		ConfirmReviewPayload{Token: created.Token, Note: "loved the ambience and sound"})
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Data ConfirmReviewResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.Data.OK)
	assert.Equal(t, int64(1), out.Data.BookingID)

	rr, err := requests.GetByToken(context.Background(), created.Token)
	require.NoError(t, err)
	assert.Equal(t, store.StatusSubmitted, rr.Status)
	assert.Equal(t, "loved the ambience and sound", rr.Note)
	assert.NotNil(t, rr.SubmittedAt)

	assert.True(t, bookings.bookings[1].ReviewFlag)
}

func TestConfirmIsIdempotent(t *testing.T) {
	app, requests, _, _ := newTestApp(t)

	created := createRequestVia(t, app, "1")

	for i := 0; i < 2; i++ {
		rec := doJSON(t, app.confirmReviewHandler, http.MethodPost, "/v1/reviews/confirm",
			ConfirmReviewPayload{Token: created.Token, Note: "first note"})
		assert.Equal(t, http.StatusOK, rec.Code, "call %d", i)
	}

	rr, err := requests.GetByToken(context.Background(), created.Token)
	require.NoError(t, err)
	assert.Equal(t, store.StatusSubmitted, rr.Status)
	assert.Equal(t, "first note", rr.Note, "second confirm must not overwrite")
}

func TestConfirmAfterVerificationDoesNotRegress(t *testing.T) {
	app, requests, _, _ := newTestApp(t)

	created := createRequestVia(t, app, "1")

	rr, err := requests.GetByToken(context.Background(), created.Token)
	require.NoError(t, err)
	_, err = requests.MarkVerified(context.Background(), rr.ID, store.Verification{Method: "google"})
	require.NoError(t, err)

	rec := doJSON(t, app.confirmReviewHandler, http.MethodPost, "/v1/reviews/confirm",
		ConfirmReviewPayload{Token: created.Token})
	assert.Equal(t, http.StatusOK, rec.Code, "confirm after verification still succeeds")

	rr, err = requests.GetByToken(context.Background(), created.Token)
	require.NoError(t, err)
	assert.Equal(t, store.StatusVerified, rr.Status, "status must never move backward")
}

func TestConfirmFlagFailureStillSucceeds(t *testing.T) {
	app, _, bookings, _ := newTestApp(t)
	bookings.flagErr = fmt.Errorf("bookings table locked")

	created := createRequestVia(t, app, "1")

	rec := doJSON(t, app.confirmReviewHandler, http.MethodPost, "/v1/reviews/confirm",
		ConfirmReviewPayload{Token: created.Token})
	assert.Equal(t, http.StatusOK, rec.Code, "flag update is best-effort")
}

func TestPublicReviewLinkNotConfigured(t *testing.T) {
	app, _, _, _ := newTestApp(t)

	rec := doJSON(t, app.publicReviewLinkHandler, http.MethodGet, "/v1/reviews/link", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
