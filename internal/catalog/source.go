package catalog

import (
	"context"
	"fmt"
	"strings"
)

const (
	SourceSeed     = "seed"
	SourceFile     = "file"
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
	SourceS3       = "s3"
)

// Source selects where the catalog is read from at start-up.
type Source struct {
	Kind string

	// Path is the YAML/JSON document for SourceFile.
	Path string

	// DSN and Query configure the SQL sources. Query must select id, name
	// and genre, in that order.
	DSN   string
	Query string

	S3 S3Config
}

// Load reads the configured source once and returns the resulting Store.
func Load(ctx context.Context, src Source) (*Store, error) {
	switch normalizeKind(src.Kind) {
	case SourceSeed:
		return New(Seed())
	case SourceFile:
		return LoadFile(src.Path)
	case SourceSQLite:
		return LoadSQLite(ctx, src.DSN, src.Query)
	case SourcePostgres:
		return LoadPostgres(ctx, src.DSN, src.Query)
	case SourceS3:
		getter, err := NewS3Getter(ctx, src.S3)
		if err != nil {
			return nil, err
		}
		return LoadS3(ctx, getter, src.S3.Bucket, src.S3.Key)
	default:
		return nil, fmt.Errorf("unsupported catalog source %q", src.Kind)
	}
}

func normalizeKind(raw string) string {
	kind := strings.ToLower(strings.TrimSpace(raw))
	if kind == "" {
		return SourceSeed
	}
	return kind
}
