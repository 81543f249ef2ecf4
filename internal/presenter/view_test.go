package presenter

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zegnus/graph-ql-end-to-end-android/internal/lifecycle"
	"github.com/zegnus/graph-ql-end-to-end-android/pkg/models"
)

func TestProject(t *testing.T) {
	cases := []struct {
		name  string
		state lifecycle.State
		want  View
	}{
		{"pending", lifecycle.Pending{}, View{Status: "Loading"}},
		{"failed", lifecycle.Failed{Message: "Not Found"}, View{Status: "Not Found"}},
		{
			"succeeded",
			lifecycle.Succeeded{Book: models.Book{ID: "2", Name: "Book 2", Genre: "Fantasy"}},
			View{Status: "Loaded", BookID: "2", BookName: "Book 2", BookGenre: "Fantasy"},
		},
		{"nil", nil, View{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, Project(tc.state)); diff != "" {
				t.Fatalf("view mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	if err := Project(lifecycle.Pending{}).Render(&buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := buf.String(); got != "status: Loading\n" {
		t.Fatalf("unexpected pending render %q", got)
	}

	buf.Reset()
	v := Project(lifecycle.Succeeded{Book: models.Book{ID: "1", Name: "Book 1", Genre: "Fantasy"}})
	if err := v.Render(&buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "status: Loaded\nid: 1\nname: Book 1\ngenre: Fantasy\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected render:\n%s", got)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestRenderPropagatesWriteErrors(t *testing.T) {
	if err := (View{Status: "x"}).Render(failingWriter{}); err == nil {
		t.Fatal("expected write error")
	}
}
