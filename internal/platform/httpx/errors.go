// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/dentaldesk/dentaldesk/internal/backend"
	"github.com/dentaldesk/dentaldesk/internal/form"
	"github.com/dentaldesk/dentaldesk/internal/shared"
)

// ErrBadRequest marks a request body that could not be decoded.
var ErrBadRequest = errors.New("bad request")

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	var verr *form.ValidationError
	var apiErr *backend.APIError
	switch {
	case errors.As(err, &verr):
		JSON(w, http.StatusUnprocessableEntity, ProblemDetail{
			Title:  "Validation Failed",
			Status: http.StatusUnprocessableEntity,
			Errors: verr.Fields,
		})
	case errors.Is(err, ErrBadRequest):
		Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrNotImplemented):
		Problem(w, http.StatusNotImplemented, "Not Implemented", err.Error())
	case errors.As(err, &apiErr) && apiErr.Unauthorized():
		Problem(w, http.StatusUnauthorized, "Unauthorized", backend.UserMessage(err, ""))
	case errors.As(err, &apiErr), errors.Is(err, backend.ErrMalformedPayload):
		Problem(w, http.StatusBadGateway, "Backend Error", backend.UserMessage(err, ""))
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
