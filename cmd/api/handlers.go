// cmd/api/handlers.go
// This file contains all HTTP request handlers for the books resource.
// Each handler is a method on *applicationDependencies so it has access
// to the logger and database models.
package main

import (
	"net/http"

	"github.com/aoideee/library-catalog/internal/data"
	"github.com/aoideee/library-catalog/internal/validator"
)

// healthcheckHandler handles GET /v1/healthcheck.
// It reports the environment and version once the database answers a ping.
func (app *applicationDependencies) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.store.Ping(r.Context()); err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	body := envelope{
		"status": "available",
		"system_info": map[string]string{
			"environment": app.config.Environment,
			"version":     appVersion,
		},
	}
	err := app.writeJSON(w, http.StatusOK, body, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// createBookHandler handles POST /v1/books.
// It reads a JSON body containing the new book's details, inserts a record
// into the database, and responds with the stored book and a 201 Created status.
func (app *applicationDependencies) createBookHandler(w http.ResponseWriter, r *http.Request) {
	var input data.CreateBookInput

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	if data.ValidateBook(v, &input); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	id, err := app.models.Books.Insert(r.Context(), input.Title, input.Author, input.Publisher, input.Category, input.Year)
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	// Read the row back so the response carries the stored, trimmed values.
	book, err := app.models.Books.Get(r.Context(), id)
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}
	if book == nil {
		app.notFoundResponse(w, r)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"book": book}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showBookHandler handles GET /v1/books/:id.
// Soft-deleted books are returned too, with their deleted status.
func (app *applicationDependencies) showBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	book, err := app.models.Books.Get(r.Context(), id)
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}
	if book == nil {
		app.notFoundResponse(w, r)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"book": book}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listBooksHandler handles GET /v1/books.
// Without a "term" query parameter it lists every book that has not been
// removed; with one, even an empty one, it validates the term and searches
// titles, authors and publishers instead.
func (app *applicationDependencies) listBooksHandler(w http.ResponseWriter, r *http.Request) {
	term, searching := app.readOptionalString(r.URL.Query(), "term")

	var (
		books []*data.Book
		err   error
	)
	if !searching {
		books, err = app.models.Books.List(r.Context())
	} else {
		v := validator.New()
		if data.ValidateSearchTerm(v, term); !v.Valid() {
			app.failedValidationResponse(w, r, v.Errors)
			return
		}
		books, err = app.models.Books.Search(r.Context(), term)
	}
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"books": books}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateAvailabilityHandler handles PATCH /v1/books/:id/availability.
// It sets the book's available flag and responds with the updated book.
// Responds 404 if the book does not exist.
func (app *applicationDependencies) updateAvailabilityHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input data.UpdateAvailabilityInput
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	if v.Struct(&input); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	found, err := app.models.Books.UpdateAvailability(r.Context(), id, *input.Available)
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}
	if !found {
		app.notFoundResponse(w, r)
		return
	}

	book, err := app.models.Books.Get(r.Context(), id)
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}
	// The row may have been hard deleted in between.
	if book == nil {
		app.notFoundResponse(w, r)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"book": book}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteBookHandler handles DELETE /v1/books/:id.
// The book is only marked as removed and stays reachable by id.
func (app *applicationDependencies) deleteBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	found, err := app.models.Books.SoftDelete(r.Context(), id)
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}
	if !found {
		app.notFoundResponse(w, r)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "book successfully removed"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// purgeBookHandler handles DELETE /v1/books/:id/permanent.
// The row is removed from the database; this cannot be undone.
func (app *applicationDependencies) purgeBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	found, err := app.models.Books.HardDelete(r.Context(), id)
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}
	if !found {
		app.notFoundResponse(w, r)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "book permanently deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
