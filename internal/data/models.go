// internal/data/models.go
package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
)

// Models is a top-level container that groups all database model types together.
// It is passed around the application via applicationDependencies so every handler
// has access to the database without importing sql directly.
type Models struct {
	Books BookModel // Handles all database operations for the books table
}

// NewModels constructs a Models value backed by the given store.
// Call this once during application startup and store the result in applicationDependencies.
func NewModels(store *Store) Models {
	return Models{
		Books: BookModel{Store: store},
	}
}

// ErrInvalidCategory is returned by Insert for a category code outside the enumeration.
var ErrInvalidCategory = errors.New("invalid category")

const booksTable = "books"

var bookColumns = []any{"id", "title", "author", "publisher", "category", "year", "available", "status"}

// BookModel runs the catalog operations. Every method opens its own session,
// so a BookModel is safe for concurrent use and holds no state between calls.
type BookModel struct {
	Store *Store
}

// Insert adds a new active, available book and returns its id.
// Text fields are trimmed before they are stored.
func (m BookModel) Insert(ctx context.Context, title, author, publisher string, category Category, year *int) (int64, error) {
	if !category.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidCategory, int(category))
	}

	var y any
	if year != nil {
		y = *year
	}

	insert := m.Store.dialect.Insert(booksTable).Prepared(true).Rows(goqu.Record{
		"title":     strings.TrimSpace(title),
		"author":    strings.TrimSpace(author),
		"publisher": strings.TrimSpace(publisher),
		"category":  int(category),
		"year":      y,
		"available": availableCode(true),
		"status":    int(StatusActive),
	})
	if m.Store.backend.returning {
		insert = insert.Returning("id")
	}

	query, args, err := insert.ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	var id int64
	err = m.Store.Session(ctx, func(tx *sqlx.Tx) error {
		if m.Store.backend.returning {
			return tx.QueryRowxContext(ctx, query, args...).Scan(&id)
		}

		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		id, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("insert book: %w", err)
	}
	return id, nil
}

// List returns every book that has not been soft deleted, in id order.
func (m BookModel) List(ctx context.Context) ([]*Book, error) {
	query, args, err := m.selectBooks().
		Where(goqu.C("status").Neq(int(StatusDeleted))).
		Order(goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	books := []*Book{}
	err = m.Store.Session(ctx, func(tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, &books, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// Get returns the book with the given id whatever its status, or nil when no
// such row exists.
func (m BookModel) Get(ctx context.Context, id int64) (*Book, error) {
	query, args, err := m.selectBooks().Where(goqu.C("id").Eq(id)).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get: %w", err)
	}

	var book Book
	err = m.Store.Session(ctx, func(tx *sqlx.Tx) error {
		return tx.GetContext(ctx, &book, query, args...)
	})
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("get book %d: %w", id, err)
	}
	return &book, nil
}

// Search returns the books that are not soft deleted and whose title, author
// or publisher contains term, ignoring case. LIKE wildcards in term are
// matched literally.
func (m BookModel) Search(ctx context.Context, term string) ([]*Book, error) {
	pattern := "%" + escapeLike(strings.TrimSpace(term)) + "%"

	matches := make([]goqu.Expression, 0, 3)
	for _, col := range []string{"title", "author", "publisher"} {
		matches = append(matches, goqu.L(`LOWER(?) LIKE LOWER(?) ESCAPE '\'`, goqu.C(col), pattern))
	}

	query, args, err := m.selectBooks().
		Where(
			goqu.Or(matches...),
			goqu.C("status").Neq(int(StatusDeleted)),
		).
		Order(goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build search: %w", err)
	}

	books := []*Book{}
	err = m.Store.Session(ctx, func(tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, &books, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return books, nil
}

// UpdateAvailability sets the available flag and reports whether the book exists.
// The status is left as it is.
func (m BookModel) UpdateAvailability(ctx context.Context, id int64, available bool) (bool, error) {
	query, args, err := m.Store.dialect.Update(booksTable).Prepared(true).
		Set(goqu.Record{"available": availableCode(available)}).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build availability update: %w", err)
	}

	found, err := m.exec(ctx, query, args)
	if err != nil {
		return false, fmt.Errorf("update availability of book %d: %w", id, err)
	}
	return found, nil
}

// SoftDelete marks the book as deleted and reports whether it exists.
// Repeating it on a deleted book still reports true. Availability is left as it is.
func (m BookModel) SoftDelete(ctx context.Context, id int64) (bool, error) {
	query, args, err := m.Store.dialect.Update(booksTable).Prepared(true).
		Set(goqu.Record{"status": int(StatusDeleted)}).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build soft delete: %w", err)
	}

	found, err := m.exec(ctx, query, args)
	if err != nil {
		return false, fmt.Errorf("soft delete book %d: %w", id, err)
	}
	return found, nil
}

// HardDelete removes the row permanently, whatever its status, and reports
// whether there was one to remove.
func (m BookModel) HardDelete(ctx context.Context, id int64) (bool, error) {
	query, args, err := m.Store.dialect.Delete(booksTable).Prepared(true).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build hard delete: %w", err)
	}

	found, err := m.exec(ctx, query, args)
	if err != nil {
		return false, fmt.Errorf("hard delete book %d: %w", id, err)
	}
	return found, nil
}

func (m BookModel) selectBooks() *goqu.SelectDataset {
	return m.Store.dialect.From(booksTable).Prepared(true).Select(bookColumns...)
}

// exec runs a single-row write in its own session and reports whether a row was affected.
func (m BookModel) exec(ctx context.Context, query string, args []any) (bool, error) {
	var rowsAffected int64
	err := m.Store.Session(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		rowsAffected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}

func availableCode(available bool) int {
	if available {
		return 1
	}
	return 0
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes %, _ and \ match themselves in a LIKE pattern using ESCAPE '\'.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
