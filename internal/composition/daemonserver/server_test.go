package daemonserver

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zegnus/graph-ql-end-to-end-android/internal/adapters/rpc"
	"github.com/zegnus/graph-ql-end-to-end-android/internal/catalog"
	"github.com/zegnus/graph-ql-end-to-end-android/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildServesSeedCatalog(t *testing.T) {
	srv, err := Build(context.Background(), config.Default(), quietLogger())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if srv.Addr() != rpc.DefaultAddr {
		t.Fatalf("unexpected addr %q", srv.Addr())
	}

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"query":"{ book(id: \"3\") { name genre } }"}`)
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"Sci-Fi"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "books_query_total") {
		t.Fatal("expected query metrics to be exposed")
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if !strings.Contains(rec.Body.String(), `"books":3`) {
		t.Fatalf("unexpected health body %s", rec.Body.String())
	}
}

func TestBuildFromFileCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.yaml")
	doc := "books:\n  - id: \"7\"\n    name: Dune\n    genre: Sci-Fi\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	cfg := config.Default()
	cfg.Catalog = config.CatalogConfig{Kind: catalog.SourceFile, Path: path}
	cfg.RateLimit.Enabled = false

	srv, err := Build(context.Background(), cfg, quietLogger())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"query":"{ book(id: \"7\") { name } }"}`)
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", body))
	if !strings.Contains(rec.Body.String(), "Dune") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestBuildFailsOnBadCatalog(t *testing.T) {
	cfg := config.Default()
	cfg.Catalog = config.CatalogConfig{Kind: catalog.SourceFile, Path: filepath.Join(t.TempDir(), "missing.yaml")}
	if _, err := Build(context.Background(), cfg, quietLogger()); err == nil {
		t.Fatal("expected catalog load error")
	}
	cfg.Catalog = config.CatalogConfig{Kind: "ldap"}
	if _, err := Build(context.Background(), cfg, quietLogger()); err == nil {
		t.Fatal("expected unsupported source error")
	}
}
