// Package presenter projects lifecycle states into display fields.
package presenter

import (
	"fmt"
	"io"

	"github.com/zegnus/graph-ql-end-to-end-android/internal/lifecycle"
)

const (
	StatusLoading = "Loading"
	StatusLoaded  = "Loaded"
)

// View holds the text of each visible field. Book fields are empty unless
// the request succeeded.
type View struct {
	Status    string
	BookID    string
	BookName  string
	BookGenre string
}

func Project(s lifecycle.State) View {
	switch st := s.(type) {
	case lifecycle.Pending:
		return View{Status: StatusLoading}
	case lifecycle.Failed:
		return View{Status: st.Message}
	case lifecycle.Succeeded:
		return View{
			Status:    StatusLoaded,
			BookID:    st.Book.ID,
			BookName:  st.Book.Name,
			BookGenre: st.Book.Genre,
		}
	default:
		return View{}
	}
}

// Render writes the view as "field: value" lines, omitting empty book fields.
func (v View) Render(w io.Writer) error {
	lines := [][2]string{
		{"status", v.Status},
		{"id", v.BookID},
		{"name", v.BookName},
		{"genre", v.BookGenre},
	}
	for i, line := range lines {
		if i > 0 && line[1] == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", line[0], line[1]); err != nil {
			return err
		}
	}
	return nil
}
