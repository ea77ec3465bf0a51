package main

import (
	"errors"
	"net/http"
)

type PushTokenPayload struct {
	Token string `json:"token" validate:"required,max=255"`
}

// registerPushTokenHandler godoc
//
//	@Summary		Register a staff device for verification alerts
//	@Tags			Staff
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		PushTokenPayload	true	"Expo push token"
//	@Success		201		{object}	string				"Registered"
//	@Failure		400		{object}	error				"Bad Request"
//	@Failure		500		{object}	error				"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/staff/push-tokens [post]
func (app *application) registerPushTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload PushTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	staff := getStaffFromContext(r)
	if staff == nil {
		app.unauthorizedErrorResponse(w, r, errors.New("please logout and login again"))
		return
	}

	if err := app.store.PushTokens.Add(r.Context(), staff.ID, payload.Token); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, map[string]string{"message": "push token registered"})
}

// removePushTokenHandler godoc
//
//	@Summary		Unregister a staff device
//	@Tags			Staff
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		PushTokenPayload	true	"Expo push token"
//	@Success		200		{object}	string				"Removed"
//	@Failure		400		{object}	error				"Bad Request"
//	@Failure		500		{object}	error				"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/staff/push-tokens [delete]
func (app *application) removePushTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload PushTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	staff := getStaffFromContext(r)
	if staff == nil {
		app.unauthorizedErrorResponse(w, r, errors.New("please logout and login again"))
		return
	}

	if err := app.store.PushTokens.Remove(r.Context(), staff.ID, payload.Token); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "push token removed"})
}
