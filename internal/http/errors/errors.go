// Package errors provides HTTP error responses paired with
// request-scoped logging.
package errors

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// InternalError logs err with the request ID and returns a generic
// 500 to the client.
func InternalError(w http.ResponseWriter, r *http.Request, err error, message string) {
	log.Error().Err(err).
		Str("request_id", middleware.GetReqID(r.Context())).
		Msg(message)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// BadRequestError logs err and returns clientMessage with a 400.
func BadRequestError(w http.ResponseWriter, r *http.Request, err error, clientMessage string) {
	log.Warn().Err(err).
		Str("request_id", middleware.GetReqID(r.Context())).
		Msg("bad request")
	http.Error(w, clientMessage, http.StatusBadRequest)
}

// NotFoundError returns a 404 with clientMessage.
func NotFoundError(w http.ResponseWriter, clientMessage string) {
	http.Error(w, clientMessage, http.StatusNotFound)
}

// LogError logs err with the request ID without writing a response.
func LogError(r *http.Request, message string, err error) {
	log.Error().Err(err).
		Str("request_id", middleware.GetReqID(r.Context())).
		Msg(message)
}
