// Package graph declares the book query schema, resolves it against a
// catalog.Store, and executes query documents into result envelopes.
package graph

import (
	"context"
	"fmt"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/zegnus/graph-ql-end-to-end-android/pkg/models"
)

// SchemaSDL declares the only entity and the only query field. The id
// argument is nullable so that an absent id reaches the resolver and
// resolves to an empty result instead of a validation error.
const SchemaSDL = `
schema {
	query: Query
}

type Query {
	book(id: String): Book
}

type Book {
	id: String!
	name: String!
	genre: String!
}
`

// Finder is the lookup the resolver delegates to.
type Finder interface {
	Find(id string) (models.Book, bool)
}

type Resolver struct {
	books Finder
}

func NewResolver(books Finder) *Resolver {
	return &Resolver{books: books}
}

// Resolve maps an id to a data or empty envelope. Ids match exactly; an
// empty id is a miss.
func (r *Resolver) Resolve(id string) Envelope {
	if id == "" || r == nil || r.books == nil {
		return EmptyEnvelope{}
	}
	book, ok := r.books.Find(id)
	if !ok {
		return EmptyEnvelope{}
	}
	return DataEnvelope{Book: book}
}

// NewSchema parses SchemaSDL bound to r.
func NewSchema(r *Resolver) (*graphql.Schema, error) {
	schema, err := graphql.ParseSchema(SchemaSDL, &queryResolver{r: r})
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	return schema, nil
}

type queryResolver struct {
	r *Resolver
}

type bookArgs struct {
	ID *string
}

func (q *queryResolver) Book(ctx context.Context, args bookArgs) *bookResolver {
	var id string
	if args.ID != nil {
		id = *args.ID
	}
	resolved := q.r.Resolve(id)
	recordEnvelope(ctx, resolved)
	switch env := resolved.(type) {
	case DataEnvelope:
		return &bookResolver{book: env.Book}
	case EmptyEnvelope, ErrorEnvelope:
		return nil
	default:
		return nil
	}
}

type bookResolver struct {
	book models.Book
}

func (b *bookResolver) ID() string    { return b.book.ID }
func (b *bookResolver) Name() string  { return b.book.Name }
func (b *bookResolver) Genre() string { return b.book.Genre }
