// Package data provides the data models and database interaction logic
// for the library catalog.
package data

import (
	"fmt"

	"github.com/aoideee/library-catalog/internal/validator"
)

// Category classifies a book. It is stored as its integer code.
type Category int

const (
	CategoryRomance  Category = 1
	CategoryAction   Category = 2
	CategoryFiction  Category = 3
	CategoryComedy   Category = 4
	CategorySuspense Category = 5
	CategoryHorror   Category = 6
	CategoryOther    Category = 99
)

// Categories lists every accepted category code.
var Categories = []Category{
	CategoryRomance,
	CategoryAction,
	CategoryFiction,
	CategoryComedy,
	CategorySuspense,
	CategoryHorror,
	CategoryOther,
}

// Valid reports whether c is one of the enumerated codes.
func (c Category) Valid() bool {
	return validator.PermittedValue(c, Categories...)
}

func (c Category) String() string {
	switch c {
	case CategoryRomance:
		return "romance"
	case CategoryAction:
		return "action"
	case CategoryFiction:
		return "fiction"
	case CategoryComedy:
		return "comedy"
	case CategorySuspense:
		return "suspense"
	case CategoryHorror:
		return "horror"
	case CategoryOther:
		return "other"
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Status is the lifecycle state of a book record. StatusDeleted is terminal.
type Status int

const (
	StatusActive   Status = 1
	StatusInactive Status = 2 // reserved, no operation sets it
	StatusDeleted  Status = 9
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusInactive:
		return "inactive"
	case StatusDeleted:
		return "deleted"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Book represents a single book record stored in the database.
// It maps directly to a row in the "books" table.
type Book struct {
	ID        int64    `json:"id"        db:"id"`        // Assigned by the database, never reused
	Title     string   `json:"title"     db:"title"`
	Author    string   `json:"author"    db:"author"`
	Publisher string   `json:"publisher" db:"publisher"`
	Category  Category `json:"category"  db:"category"`
	Year      *int     `json:"year"      db:"year"`      // nil when the publication year is unknown
	Available bool     `json:"available" db:"available"` // Loanable right now; independent of Status
	Status    Status   `json:"status"    db:"status"`
}

// CreateBookInput holds the fields a client must supply when creating a new book.
// Year is optional.
type CreateBookInput struct {
	Title     string   `json:"title"     validate:"notblank"`
	Author    string   `json:"author"    validate:"notblank"`
	Publisher string   `json:"publisher" validate:"notblank"`
	Category  Category `json:"category"`
	Year      *int     `json:"year"`
}

// UpdateAvailabilityInput is the body of an availability change. Available is a
// pointer so that an omitted field can be told apart from false.
type UpdateAvailabilityInput struct {
	Available *bool `json:"available" validate:"required"`
}

// ValidateBook records every problem with input in v.
func ValidateBook(v *validator.Validator, input *CreateBookInput) {
	v.Struct(input)
	v.Check(input.Category.Valid(), "category", "must be one of 1, 2, 3, 4, 5, 6 or 99")
}

// MinSearchTermLength is the shortest term the HTTP layer will search for.
const MinSearchTermLength = 3

// ValidateSearchTerm checks the search term length in runes.
func ValidateSearchTerm(v *validator.Validator, term string) {
	v.Check(validator.MinRunes(term, MinSearchTermLength), "term",
		fmt.Sprintf("must be at least %d characters long", MinSearchTermLength))
}
