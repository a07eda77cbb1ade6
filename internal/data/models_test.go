package data

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBooks(t *testing.T) BookModel {
	t.Helper()
	return NewModels(newTestStore(t)).Books
}

func intPtr(i int) *int { return &i }

func mustInsert(t *testing.T, m BookModel, title, author, publisher string) int64 {
	t.Helper()
	id, err := m.Insert(context.Background(), title, author, publisher, CategoryFiction, nil)
	require.NoError(t, err)
	return id
}

func mustGet(t *testing.T, m BookModel, id int64) *Book {
	t.Helper()
	book, err := m.Get(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, book, "book %d not found", id)
	return book
}

func titles(books []*Book) []string {
	out := make([]string, 0, len(books))
	for _, b := range books {
		out = append(out, b.Title)
	}
	return out
}

func TestBookModel_InsertAndGet(t *testing.T) {
	m := newTestBooks(t)
	ctx := context.Background()

	id, err := m.Insert(ctx, "Dune", "Herbert", "Ace", CategoryFiction, intPtr(1965))
	require.NoError(t, err)
	assert.Positive(t, id)

	book := mustGet(t, m, id)
	assert.Equal(t, &Book{
		ID:        id,
		Title:     "Dune",
		Author:    "Herbert",
		Publisher: "Ace",
		Category:  CategoryFiction,
		Year:      intPtr(1965),
		Available: true,
		Status:    StatusActive,
	}, book)
}

func TestBookModel_InsertTrimsText(t *testing.T) {
	m := newTestBooks(t)

	id, err := m.Insert(context.Background(), "  Dune\t", "\nHerbert ", " Ace ", CategoryFiction, nil)
	require.NoError(t, err)

	book := mustGet(t, m, id)
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, "Herbert", book.Author)
	assert.Equal(t, "Ace", book.Publisher)
}

func TestBookModel_InsertYear(t *testing.T) {
	m := newTestBooks(t)
	ctx := context.Background()

	noYear, err := m.Insert(ctx, "Anonymous", "Unknown", "Folk", CategoryOther, nil)
	require.NoError(t, err)
	yearZero, err := m.Insert(ctx, "Ancient", "Unknown", "Folk", CategoryOther, intPtr(0))
	require.NoError(t, err)

	assert.Nil(t, mustGet(t, m, noYear).Year)
	require.NotNil(t, mustGet(t, m, yearZero).Year)
	assert.Equal(t, 0, *mustGet(t, m, yearZero).Year)
}

func TestBookModel_InsertRejectsUnknownCategory(t *testing.T) {
	m := newTestBooks(t)

	for _, c := range []Category{0, 7, 98, 100, -1} {
		_, err := m.Insert(context.Background(), "Dune", "Herbert", "Ace", c, nil)
		assert.ErrorIs(t, err, ErrInvalidCategory, "category %d", c)
	}

	books, err := m.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestBookModel_IDsAreNeverReused(t *testing.T) {
	m := newTestBooks(t)
	ctx := context.Background()

	first := mustInsert(t, m, "Dune", "Herbert", "Ace")
	found, err := m.HardDelete(ctx, first)
	require.NoError(t, err)
	require.True(t, found)

	second := mustInsert(t, m, "Dune", "Herbert", "Ace")
	assert.Greater(t, second, first)
}

func TestBookModel_ListEmpty(t *testing.T) {
	m := newTestBooks(t)

	books, err := m.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func TestBookModel_ListInInsertionOrderWithoutDeleted(t *testing.T) {
	m := newTestBooks(t)
	ctx := context.Background()

	mustInsert(t, m, "First", "A", "P")
	deleted := mustInsert(t, m, "Second", "B", "P")
	mustInsert(t, m, "Third", "C", "P")

	found, err := m.SoftDelete(ctx, deleted)
	require.NoError(t, err)
	require.True(t, found)

	books, err := m.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"First", "Third"}, titles(books))
}

func TestBookModel_GetAbsent(t *testing.T) {
	m := newTestBooks(t)

	book, err := m.Get(context.Background(), 4242)
	require.NoError(t, err)
	assert.Nil(t, book)
}

func TestBookModel_Search(t *testing.T) {
	m := newTestBooks(t)
	ctx := context.Background()

	mustInsert(t, m, "Duna", "Frank Herbert", "Aleph")
	mustInsert(t, m, "Neuromancer", "William Gibson", "Ace Books")
	mustInsert(t, m, "Foundation", "Isaac Asimov", "Gnome Press")

	tests := []struct {
		term string
		want []string
	}{
		{"duna", []string{"Duna"}},
		{"DUNA", []string{"Duna"}},
		{"uN", []string{"Duna", "Foundation"}},
		{"gibson", []string{"Neuromancer"}},
		{"ace bo", []string{"Neuromancer"}},
		{"press", []string{"Foundation"}},
		{"  herbert  ", []string{"Duna"}},
		{"tolkien", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			books, err := m.Search(ctx, tt.term)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(books))
		})
	}
}

func TestBookModel_SearchMatchesWildcardsLiterally(t *testing.T) {
	m := newTestBooks(t)
	ctx := context.Background()

	mustInsert(t, m, "100% Pure", "A", "P")
	mustInsert(t, m, "1000 Pures", "B", "P")
	mustInsert(t, m, "snake_case", "C", "P")
	mustInsert(t, m, "snakeXcase", "D", "P")
	mustInsert(t, m, `back\slash`, "E", "P")

	tests := []struct {
		term string
		want []string
	}{
		{"0% P", []string{"100% Pure"}},
		{"%", []string{"100% Pure"}},
		{"e_c", []string{"snake_case"}},
		{`k\s`, []string{`back\slash`}},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			books, err := m.Search(ctx, tt.term)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(books))
		})
	}
}

func TestBookModel_SoftDeleteVisibility(t *testing.T) {
	m := newTestBooks(t)
	ctx := context.Background()

	id := mustInsert(t, m, "Duna", "Herbert", "Aleph")

	found, err := m.SoftDelete(ctx, id)
	require.NoError(t, err)
	require.True(t, found)

	books, err := m.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)

	for _, term := range []string{"duna", "herbert", "aleph"} {
		books, err = m.Search(ctx, term)
		require.NoError(t, err)
		assert.Empty(t, books, "search %q", term)
	}

	book := mustGet(t, m, id)
	assert.Equal(t, StatusDeleted, book.Status)
}

func TestBookModel_SoftDeleteIsIdempotent(t *testing.T) {
	m := newTestBooks(t)
	ctx := context.Background()

	id := mustInsert(t, m, "Dune", "Herbert", "Ace")

	for i := 0; i < 2; i++ {
		found, err := m.SoftDelete(ctx, id)
		require.NoError(t, err)
		assert.True(t, found, "call %d", i+1)
	}
	assert.Equal(t, StatusDeleted, mustGet(t, m, id).Status)
}

func TestBookModel_HardDeleteIsFinal(t *testing.T) {
	m := newTestBooks(t)
	ctx := context.Background()

	id := mustInsert(t, m, "Dune", "Herbert", "Ace")

	found, err := m.HardDelete(ctx, id)
	require.NoError(t, err)
	assert.True(t, found)

	book, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, book)

	found, err = m.HardDelete(ctx, id)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestBookModel_HardDeleteSoftDeletedBook(t *testing.T) {
	m := newTestBooks(t)
	ctx := context.Background()

	id := mustInsert(t, m, "Dune", "Herbert", "Ace")
	_, err := m.SoftDelete(ctx, id)
	require.NoError(t, err)

	found, err := m.HardDelete(ctx, id)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestBookModel_AbsentIDs(t *testing.T) {
	m := newTestBooks(t)
	ctx := context.Background()
	mustInsert(t, m, "Dune", "Herbert", "Ace")

	for _, id := range []int64{0, -1, 999} {
		found, err := m.UpdateAvailability(ctx, id, false)
		require.NoError(t, err)
		assert.False(t, found, "update availability %d", id)

		found, err = m.SoftDelete(ctx, id)
		require.NoError(t, err)
		assert.False(t, found, "soft delete %d", id)

		found, err = m.HardDelete(ctx, id)
		require.NoError(t, err)
		assert.False(t, found, "hard delete %d", id)
	}
}

func TestBookModel_AvailabilityAndStatusAreIndependent(t *testing.T) {
	m := newTestBooks(t)
	ctx := context.Background()

	id := mustInsert(t, m, "Dune", "Herbert", "Ace")

	found, err := m.UpdateAvailability(ctx, id, false)
	require.NoError(t, err)
	require.True(t, found)

	book := mustGet(t, m, id)
	assert.False(t, book.Available)
	assert.Equal(t, StatusActive, book.Status)

	found, err = m.SoftDelete(ctx, id)
	require.NoError(t, err)
	require.True(t, found)

	book = mustGet(t, m, id)
	assert.False(t, book.Available, "soft delete must not reset availability")
	assert.Equal(t, StatusDeleted, book.Status)

	// A removed book can still have its availability changed.
	found, err = m.UpdateAvailability(ctx, id, true)
	require.NoError(t, err)
	require.True(t, found)

	book = mustGet(t, m, id)
	assert.True(t, book.Available)
	assert.Equal(t, StatusDeleted, book.Status)
}

func TestBookModel_ConcurrentUpdates(t *testing.T) {
	m := newTestBooks(t)
	ctx := context.Background()

	id := mustInsert(t, m, "Dune", "Herbert", "Ace")

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(available bool) {
			defer wg.Done()
			if _, err := m.UpdateAvailability(ctx, id, available); err != nil {
				errs <- err
			}
		}(i%2 == 0)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	assert.Equal(t, StatusActive, mustGet(t, m, id).Status)
}
