// Package catalog holds the read-only book collection the query schema
// resolves against, plus the loaders that build it at start-up.
//
// A Store is immutable once constructed: there is no write path, so it can be
// shared by any number of concurrent readers without locking.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zegnus/graph-ql-end-to-end-android/pkg/models"
)

var (
	ErrEmptyBookID     = errors.New("book id is required")
	ErrDuplicateBookID = errors.New("duplicate book id")
)

type Store struct {
	books []models.Book
	byID  map[string]int
}

// New validates and copies books into a Store, keeping their order. Ids are
// stored exactly as given; blank ids are rejected.
func New(books []models.Book) (*Store, error) {
	s := &Store{
		books: make([]models.Book, 0, len(books)),
		byID:  make(map[string]int, len(books)),
	}
	for i, b := range books {
		if strings.TrimSpace(b.ID) == "" {
			return nil, fmt.Errorf("book #%d: %w", i, ErrEmptyBookID)
		}
		if _, exists := s.byID[b.ID]; exists {
			return nil, fmt.Errorf("book %q: %w", b.ID, ErrDuplicateBookID)
		}
		s.byID[b.ID] = len(s.books)
		s.books = append(s.books, b)
	}
	return s, nil
}

// MustNew is New for fixed, known-good collections.
func MustNew(books []models.Book) *Store {
	s, err := New(books)
	if err != nil {
		panic(err)
	}
	return s
}

// Seed returns the default collection served when no source is configured.
func Seed() []models.Book {
	return []models.Book{
		{ID: "1", Name: "Book 1", Genre: "Fantasy"},
		{ID: "2", Name: "Book 2", Genre: "Fantasy"},
		{ID: "3", Name: "Book 3", Genre: "Sci-Fi"},
	}
}

// Find returns the book stored under id. A miss is not an error.
func (s *Store) Find(id string) (models.Book, bool) {
	if s == nil {
		return models.Book{}, false
	}
	idx, ok := s.byID[id]
	if !ok {
		return models.Book{}, false
	}
	return s.books[idx], true
}

func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.books)
}

// Books returns a copy of the collection in load order.
func (s *Store) Books() []models.Book {
	if s == nil || len(s.books) == 0 {
		return nil
	}
	out := make([]models.Book, len(s.books))
	copy(out, s.books)
	return out
}
