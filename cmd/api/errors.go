// cmd/api/errors.go
// Error responses. Every error leaves the API as {"error": ...} so clients
// can rely on a single shape whatever the status code.
package main

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aoideee/library-catalog/internal/data"
)

const (
	msgServerError = "the server encountered a problem and could not process your request"
	msgNotFound    = "the requested resource could not be found"
	msgRateLimited = "rate limit exceeded"
	msgBadCategory = "must be one of 1, 2, 3, 4, 5, 6 or 99"
)

// logError records an error with the request it belongs to.
func (app *applicationDependencies) logError(r *http.Request, err error) {
	app.logger.Error(err.Error(),
		slog.String("request_id", requestID(r)),
		slog.String("request_method", r.Method),
		slog.String("request_url", r.URL.String()),
	)
}

// errorResponse writes message under the "error" key. If even that fails
// the client gets a bare 500.
func (app *applicationDependencies) errorResponse(w http.ResponseWriter, r *http.Request, status int, message any) {
	if err := app.writeJSON(w, status, envelope{"error": message}, nil); err != nil {
		app.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// serverErrorResponse logs err and answers 500 with a generic message.
// Store errors can carry SQL text, so the details stay in the log.
func (app *applicationDependencies) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	app.errorResponse(w, r, http.StatusInternalServerError, msgServerError)
}

// storeErrorResponse answers an error returned by the book repository.
// Sentinel errors that describe bad input become 422s; anything else is a 500.
func (app *applicationDependencies) storeErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, data.ErrInvalidCategory):
		app.failedValidationResponse(w, r, map[string]string{"category": msgBadCategory})
	default:
		app.serverErrorResponse(w, r, err)
	}
}

func (app *applicationDependencies) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, msgNotFound)
}

func (app *applicationDependencies) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusMethodNotAllowed, "the "+r.Method+" method is not supported for this resource")
}

// badRequestResponse covers malformed ids and bodies; err's text is safe to show.
func (app *applicationDependencies) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

// failedValidationResponse answers 422 with field name to message pairs.
func (app *applicationDependencies) failedValidationResponse(w http.ResponseWriter, r *http.Request, fieldErrors map[string]string) {
	app.errorResponse(w, r, http.StatusUnprocessableEntity, fieldErrors)
}

func (app *applicationDependencies) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusTooManyRequests, msgRateLimited)
}
