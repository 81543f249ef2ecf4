package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zegnus/graph-ql-end-to-end-android/pkg/models"
)

func TestLoadFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.yaml")
	doc := "books:\n  - id: \"10\"\n    name: Dune\n    genre: Sci-Fi\n  - id: \"11\"\n    name: Emma\n    genre: Romance\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []models.Book{
		{ID: "10", Name: "Dune", Genre: "Sci-Fi"},
		{ID: "11", Name: "Emma", Genre: "Romance"},
	}
	if diff := cmp.Diff(want, s.Books()); diff != "" {
		t.Fatalf("books mismatch (-want +got):\n%s", diff)
	}
}

func TestParseAcceptsJSON(t *testing.T) {
	s, err := Parse([]byte(`{"books":[{"id":"7","name":"Book 7","genre":"Poetry"}]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got, ok := s.Find("7"); !ok || got.Genre != "Poetry" {
		t.Fatalf("unexpected lookup result %+v ok=%v", got, ok)
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(""); err == nil {
		t.Fatal("expected error for empty path")
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := Parse([]byte("books: [")); err == nil {
		t.Fatal("expected decode error")
	}
}
