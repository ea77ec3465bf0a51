package main

import (
	"errors"
	"net/http"
	"strconv"

	"theatreops/internal/params"
	"theatreops/internal/store"

	"github.com/go-chi/chi/v5"
)

// getBookingHandler godoc
//
//	@Summary		Get a booking
//	@Description	Returns the booking with its review_flag. The flag records a customer self-report; the review request status is what verification actually proved.
//	@Tags			Bookings
//	@Produce		json
//	@Param			bookingID	path		int				true	"Booking ID"
//	@Success		200			{object}	store.Booking	"Booking"
//	@Failure		400			{object}	error			"Bad Request"
//	@Failure		404			{object}	error			"Not Found"
//	@Failure		500			{object}	error			"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/bookings/{bookingID} [get]
func (app *application) getBookingHandler(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(chi.URLParam(r, "bookingID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	booking, err := app.store.Bookings.GetByID(r.Context(), bookingID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.jsonResponse(w, http.StatusOK, booking)
}

// listBookingsHandler godoc
//
//	@Summary		List bookings
//	@Description	Paginated bookings with their review flag and furthest review request status.
//	@Tags			Bookings
//	@Produce		json
//	@Param			page	query		int				false	"Page"
//	@Param			limit	query		int				false	"Page size"
//	@Success		200		{array}		store.BookingRow	"Bookings"
//	@Failure		500		{object}	error			"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/bookings [get]
func (app *application) listBookingsHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query())

	bookings, total, err := app.store.Bookings.List(r.Context(), p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	p.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"bookings":   bookings,
		"pagination": p,
	})
}
