package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver

	"github.com/zegnus/graph-ql-end-to-end-android/pkg/models"
)

const (
	sqliteDriver   = "sqlite"
	postgresDriver = "pgx"

	defaultSQLiteQuery   = `SELECT id, name, genre FROM books ORDER BY rowid`
	defaultPostgresQuery = `SELECT id, name, genre FROM books ORDER BY id`
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// LoadSQLite reads the catalog from a SQLite database file.
func LoadSQLite(ctx context.Context, dsn, query string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite catalog dsn is required")
	}
	return loadSQL(ctx, sqliteDriver, dsn, firstNonEmpty(query, defaultSQLiteQuery))
}

// LoadPostgres reads the catalog from Postgres through the pgx stdlib driver.
func LoadPostgres(ctx context.Context, dsn, query string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres catalog dsn is required")
	}
	return loadSQL(ctx, postgresDriver, dsn, firstNonEmpty(query, defaultPostgresQuery))
}

func loadSQL(ctx context.Context, driver, dsn, query string) (*Store, error) {
	openMu.Lock()
	db, err := sqlOpen(driver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	books, err := scanBooks(ctx, db, query)
	if err != nil {
		return nil, err
	}
	return New(books)
}

func scanBooks(ctx context.Context, db *sql.DB, query string) ([]models.Book, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select books: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var books []models.Book
	for rows.Next() {
		var (
			b           models.Book
			name, genre sql.NullString
		)
		if err := rows.Scan(&b.ID, &name, &genre); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		b.Name = name.String
		b.Genre = genre.String
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return books, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
