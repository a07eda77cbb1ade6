// cmd/api/routes.go
package main

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// routes registers all HTTP endpoints and returns the configured router wrapped
// in the middleware chain. Background work started by the middleware ends
// when ctx is done.
//
// Middleware chain (outermost → innermost):
//
//	recoverPanic → logRequest → rateLimit → router
//
// Current endpoints:
//
//	GET    /v1/healthcheck               – liveness and database ping
//	POST   /v1/books                     – create a new book
//	GET    /v1/books                     – list books, or search them with ?term=
//	GET    /v1/books/:id                 – retrieve a single book by ID, any status
//	PATCH  /v1/books/:id/availability    – set whether the book can be loaned
//	DELETE /v1/books/:id                 – mark a book as removed
//	DELETE /v1/books/:id/permanent       – delete the record for good
func (app *applicationDependencies) routes(ctx context.Context) http.Handler {
	router := httprouter.New()

	// Override the default httprouter error handlers to return JSON responses.
	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthcheckHandler)

	router.HandlerFunc(http.MethodPost, "/v1/books", app.createBookHandler)
	router.HandlerFunc(http.MethodGet, "/v1/books", app.listBooksHandler)
	router.HandlerFunc(http.MethodGet, "/v1/books/:id", app.showBookHandler)
	router.HandlerFunc(http.MethodPatch, "/v1/books/:id/availability", app.updateAvailabilityHandler)
	router.HandlerFunc(http.MethodDelete, "/v1/books/:id", app.deleteBookHandler)
	router.HandlerFunc(http.MethodDelete, "/v1/books/:id/permanent", app.purgeBookHandler)

	return app.recoverPanic(app.logRequest(app.rateLimit(ctx, router)))
}
