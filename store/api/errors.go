package api

import (
	"errors"
	"net/http"

	"github.com/andrebq/shop/auth"
	"github.com/andrebq/shop/internal/httpserver"
	"github.com/andrebq/shop/internal/logutil"
	"github.com/andrebq/shop/store"
)

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &store.InvalidInput{}),
		errors.Is(err, store.InvalidPicture{}),
		errors.As(err, &store.PictureNotFound{}):
		status = http.StatusBadRequest
	case errors.As(err, &store.UsernameInUse{}):
		status = http.StatusConflict
	case errors.As(err, &store.UserNotFound{}),
		errors.As(err, &store.CustomerNotFound{}),
		errors.As(err, &store.CustomerHasNoPicture{}):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		log := logutil.GetOrDefault(r.Context())
		log.Error().Err(err).Msg("Unexpected error")
		httpserver.Error(w, status, "unexpected error, check server logs")
		return
	}
	httpserver.Error(w, status, err.Error())
}

// writeRequesterError handles errors from operations performed on behalf of
// the requester, a requester that is not an active user anymore
// is treated as unauthenticated
func writeRequesterError(w http.ResponseWriter, r *http.Request, err error) {
	var missing store.UserNotFound
	if errors.As(err, &missing) && len(missing.Username) > 0 {
		httpserver.Error(w, http.StatusUnauthorized, auth.Unauthenticated{}.Error())
		return
	}
	writeError(w, r, err)
}
