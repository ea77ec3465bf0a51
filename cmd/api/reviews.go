package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"theatreops/internal/mailer"
	"theatreops/internal/params"
	"theatreops/internal/reviewlink"
	"theatreops/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type CreateReviewRequestPayload struct {
	CustomerName  string `json:"customer_name" validate:"omitempty,max=100"`
	CustomerPhone string `json:"customer_phone" validate:"omitempty,mobilephone"`
	CustomerEmail string `json:"customer_email" validate:"omitempty,email,max=255"`
}

type ReviewRequestCreated struct {
	RequestID string `json:"request_id"`
	Ref       string `json:"ref"`
	Token     string `json:"token"`
	ReviewURL string `json:"review_url"`
}

// createReviewRequestHandler godoc
//
//	@Summary		Create a review request for a booking
//	@Description	Issues a single-use review link for the booking's customer. Identity fields default to the booking's own; they are matching hints only, never authentication. Repeated calls create independent requests so a lost link can be re-sent.
//	@Tags			Reviews
//	@Accept			json
//	@Produce		json
//	@Param			bookingID	path		int							true	"Booking ID"
//	@Param			payload		body		CreateReviewRequestPayload	false	"Optional identity hints"
//	@Success		201			{object}	ReviewRequestCreated		"Request created"
//	@Failure		400			{object}	error						"Bad Request"
//	@Failure		404			{object}	error						"Booking not found"
//	@Failure		500			{object}	error						"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/bookings/{bookingID}/review-requests [post]
func (app *application) createReviewRequestHandler(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(chi.URLParam(r, "bookingID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload CreateReviewRequestPayload
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &payload); err != nil {
			app.badRequestResponse(w, r, err)
			return
		}
		if err := Validate.Struct(payload); err != nil {
			app.badRequestResponse(w, r, err)
			return
		}
	}

	ctx := r.Context()

	booking, err := app.store.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	// Fall back to the booking's own customer details as matching hints.
	if payload.CustomerName == "" {
		payload.CustomerName = booking.CustomerName
	}
	if payload.CustomerPhone == "" {
		payload.CustomerPhone = booking.CustomerPhone
	}
	if payload.CustomerEmail == "" {
		payload.CustomerEmail = booking.CustomerEmail
	}

	rr := &store.ReviewRequest{
		PublicID:      uuid.New().String(),
		BookingID:     booking.ID,
		CustomerName:  payload.CustomerName,
		CustomerPhone: payload.CustomerPhone,
		CustomerEmail: payload.CustomerEmail,
	}

	// A token collision means ErrConflict from the unique index; regenerate
	// and retry rather than surfacing it.
	for attempt := 0; ; attempt++ {
		rr.Token, err = app.links.NewToken()
		if err != nil {
			app.internalServerError(w, r, err)
			return
		}

		err = app.store.ReviewRequests.Create(ctx, rr)
		if err == nil {
			break
		}
		if errors.Is(err, store.ErrConflict) && attempt < 2 {
			continue
		}
		app.internalServerError(w, r, err)
		return
	}

	ref, err := app.links.Ref(rr.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	reviewURL := reviewlink.ReviewURL(app.config.frontendURL, rr.Token)

	// The emailed link is a convenience; staff also get the raw token for
	// messaging-app deep links. A mail failure must not fail the request.
	if rr.CustomerEmail != "" {
		vars := struct {
			Username    string
			ShowName    string
			ReviewURL   string
			TheatreName string
		}{
			Username:    rr.CustomerName,
			ShowName:    booking.ShowName,
			ReviewURL:   reviewURL,
			TheatreName: app.config.theatreName,
		}

		if _, err := app.mailer.Send(mailer.ReviewRequestTemplate, rr.CustomerName, rr.CustomerEmail, vars); err != nil {
			app.logger.Errorw("sending review request email", "booking", booking.ID, "error", err)
		}
	}

	app.jsonResponse(w, http.StatusCreated, ReviewRequestCreated{
		RequestID: rr.PublicID,
		Ref:       ref,
		Token:     rr.Token,
		ReviewURL: reviewURL,
	})
}

type ConfirmReviewPayload struct {
	// Token is deliberately unconstrained: a missing, empty, or oversized
	// token is indistinguishable from an unknown one and answers 404.
	Token string `json:"token"`
	Note  string `json:"note" validate:"omitempty,max=2000"`
}

type ConfirmReviewResponse struct {
	OK        bool  `json:"ok"`
	BookingID int64 `json:"booking_id"`
}

// confirmReviewHandler godoc
//
//	@Summary		Confirm that a review was left
//	@Description	Records the customer's self-report against the token from their review link. Idempotent: confirming twice, or after verification, succeeds without moving the request backward.
//	@Tags			Reviews
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		ConfirmReviewPayload	true	"Token and optional note"
//	@Success		200		{object}	ConfirmReviewResponse	"Confirmed"
//	@Failure		400		{object}	error					"Bad Request"
//	@Failure		404		{object}	error					"Unknown token"
//	@Failure		500		{object}	error					"Internal Server Error"
//	@Router			/reviews/confirm [post]
func (app *application) confirmReviewHandler(w http.ResponseWriter, r *http.Request) {
	var payload ConfirmReviewPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()

	// Malformed and unknown tokens get the same answer on purpose.
	rr, err := app.store.ReviewRequests.GetByToken(ctx, payload.Token)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if rr.Status == store.StatusPending {
		if _, err := app.store.ReviewRequests.MarkSubmitted(ctx, rr.ID, payload.Note); err != nil {
			app.internalServerError(w, r, err)
			return
		}
	}

	// Best-effort cache for UI gating; the request's status stays the
	// source of truth.
	if err := app.store.Bookings.SetReviewFlag(ctx, rr.BookingID, true); err != nil {
		app.logger.Errorw("updating booking review flag", "booking", rr.BookingID, "error", err)
	}

	app.jsonResponse(w, http.StatusOK, ConfirmReviewResponse{OK: true, BookingID: rr.BookingID})
}

// publicReviewLinkHandler godoc
//
//	@Summary		Resolve the public review URL
//	@Description	Returns the link customers use to leave a public review. An explicit override wins over the URL constructed from the listing id.
//	@Tags			Reviews
//	@Produce		json
//	@Success		200	{object}	map[string]string	"Review URL"
//	@Failure		404	{object}	error				"No review link configured"
//	@Router			/reviews/link [get]
func (app *application) publicReviewLinkHandler(w http.ResponseWriter, r *http.Request) {
	url := app.config.reviews.source.PublicReviewURL()
	if url == "" {
		app.notFoundResponse(w, r, fmt.Errorf("no public review link configured"))
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"review_url": url})
}

// ReviewRequestDTO is the staff-facing view of a request. The bearer token
// is deliberately absent.
type ReviewRequestDTO struct {
	ID                 string     `json:"id"`
	Ref                string     `json:"ref"`
	BookingID          int64      `json:"booking_id"`
	CustomerName       string     `json:"customer_name,omitempty"`
	Status             string     `json:"status"`
	Note               string     `json:"note,omitempty"`
	VerificationMethod string     `json:"verification_method,omitempty"`
	ExternalReviewRef  string     `json:"external_review_ref,omitempty"`
	RequestedAt        time.Time  `json:"requested_at"`
	SubmittedAt        *time.Time `json:"submitted_at,omitempty"`
	VerifiedAt         *time.Time `json:"verified_at,omitempty"`
}

func (app *application) toReviewRequestDTO(rr store.ReviewRequest) ReviewRequestDTO {
	ref, err := app.links.Ref(rr.ID)
	if err != nil {
		ref = ""
	}
	return ReviewRequestDTO{
		ID:                 rr.PublicID,
		Ref:                ref,
		BookingID:          rr.BookingID,
		CustomerName:       rr.CustomerName,
		Status:             rr.Status,
		Note:               rr.Note,
		VerificationMethod: rr.VerificationMethod,
		ExternalReviewRef:  rr.ExternalReviewRef,
		RequestedAt:        rr.RequestedAt,
		SubmittedAt:        rr.SubmittedAt,
		VerifiedAt:         rr.VerifiedAt,
	}
}

// listReviewRequestsHandler godoc
//
//	@Summary		List review requests
//	@Description	Paginated review requests for the dashboard, optionally filtered by status.
//	@Tags			Reviews
//	@Produce		json
//	@Param			status	query		string				false	"pending | submitted | verified"
//	@Param			page	query		int					false	"Page"
//	@Param			limit	query		int					false	"Page size"
//	@Success		200		{array}		ReviewRequestDTO	"Review requests"
//	@Failure		400		{object}	error				"Bad Request"
//	@Failure		500		{object}	error				"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/review-requests [get]
func (app *application) listReviewRequestsHandler(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	switch status {
	case "", store.StatusPending, store.StatusSubmitted, store.StatusVerified:
	default:
		app.badRequestResponse(w, r, fmt.Errorf("unknown status %q", status))
		return
	}

	p := params.ParsePagination(r.URL.Query())

	requests, total, err := app.store.ReviewRequests.List(r.Context(), status, p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	p.ComputeMeta(total)

	dtos := make([]ReviewRequestDTO, 0, len(requests))
	for _, rr := range requests {
		dtos = append(dtos, app.toReviewRequestDTO(rr))
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"requests":   dtos,
		"pagination": p,
	})
}

// listBookingReviewRequestsHandler godoc
//
//	@Summary		List a booking's review requests
//	@Tags			Reviews
//	@Produce		json
//	@Param			bookingID	path		int					true	"Booking ID"
//	@Success		200			{array}		ReviewRequestDTO	"Review requests"
//	@Failure		400			{object}	error				"Bad Request"
//	@Failure		500			{object}	error				"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/bookings/{bookingID}/review-requests [get]
func (app *application) listBookingReviewRequestsHandler(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(chi.URLParam(r, "bookingID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	requests, err := app.store.ReviewRequests.ListByBooking(r.Context(), bookingID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	dtos := make([]ReviewRequestDTO, 0, len(requests))
	for _, rr := range requests {
		dtos = append(dtos, app.toReviewRequestDTO(rr))
	}

	app.jsonResponse(w, http.StatusOK, dtos)
}

// runVerificationHandler godoc
//
//	@Summary		Run a verification pass now
//	@Description	Triggers the same reconciliation the background job runs on its cadence. Returns the number of newly verified requests.
//	@Tags			Reviews
//	@Produce		json
//	@Success		200	{object}	map[string]int	"Newly verified count"
//	@Failure		500	{object}	error			"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/review-requests/verify-run [post]
func (app *application) runVerificationHandler(w http.ResponseWriter, r *http.Request) {
	verified, err := app.verifier.Run(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]int{"verified": verified})
}
