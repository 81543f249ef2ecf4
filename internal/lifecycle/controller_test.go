package lifecycle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/zegnus/graph-ql-end-to-end-android/internal/client"
	"github.com/zegnus/graph-ql-end-to-end-android/pkg/models"
)

type recorder struct {
	mu     sync.Mutex
	events []State
}

func (r *recorder) record(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, s)
}

func (r *recorder) snapshot() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.events...)
}

type gatedFetcher struct {
	release chan struct{}
	book    models.Book
	err     error
	// honourCtx makes the fetch return early when its context is cancelled.
	honourCtx bool
	calls     int
	sawCancel chan struct{}
}

func newGatedFetcher(book models.Book, err error) *gatedFetcher {
	return &gatedFetcher{release: make(chan struct{}), book: book, err: err, sawCancel: make(chan struct{})}
}

func (f *gatedFetcher) FetchBook(ctx context.Context, _ string) (models.Book, error) {
	f.calls++
	if f.honourCtx {
		select {
		case <-f.release:
		case <-ctx.Done():
			close(f.sawCancel)
			return models.Book{}, ctx.Err()
		}
	} else {
		<-f.release
	}
	return f.book, f.err
}

type funcFetcher func(ctx context.Context, id string) (models.Book, error)

func (f funcFetcher) FetchBook(ctx context.Context, id string) (models.Book, error) {
	return f(ctx, id)
}

func startLoop(t *testing.T) *Loop {
	t.Helper()
	loop := NewLoop()
	done := make(chan struct{})
	go func() {
		_ = loop.Run(context.Background())
		close(done)
	}()
	t.Cleanup(func() {
		loop.Close()
		<-done
	})
	return loop
}

func waitDone(t *testing.T, h *Handle) {
	t.Helper()
	select {
	case <-h.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("handle did not settle")
	}
}

// onLoop runs fn on the loop goroutine and waits for it.
func onLoop(t *testing.T, loop *Loop, fn func()) {
	t.Helper()
	ran := make(chan struct{})
	if !loop.Post(func() { fn(); close(ran) }) {
		t.Fatal("loop rejected task")
	}
	<-ran
}

func quiet() Option {
	return WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestStartEmitsPendingThenSucceeded(t *testing.T) {
	loop := startLoop(t)
	book := models.Book{ID: "2", Name: "Book 2", Genre: "Fantasy"}
	fetcher := newGatedFetcher(book, nil)
	rec := &recorder{}

	h, err := NewController(fetcher, loop, quiet()).Start("2", rec.record)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if diff := cmp.Diff([]State{Pending{}}, rec.snapshot()); diff != "" {
		t.Fatalf("expected Pending before any network result (-want +got):\n%s", diff)
	}

	close(fetcher.release)
	waitDone(t, h)

	want := []State{Pending{}, Succeeded{Book: book}}
	if diff := cmp.Diff(want, rec.snapshot()); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
	if fetcher.calls != 1 {
		t.Fatalf("expected exactly one fetch, got %d", fetcher.calls)
	}
}

func TestFailureMessages(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"transport", &client.TransportError{Err: errors.New("dial tcp 127.0.0.1:4000: connect: connection refused")}, "dial tcp 127.0.0.1:4000: connect: connection refused"},
		{"status", &client.ProtocolError{StatusCode: 404, Message: "Not Found"}, "Not Found"},
		{"empty body", client.ErrEmptyBody, "body is null"},
		{"codec", &client.CodecError{Err: errors.New("unexpected end of JSON input")}, "error parsing response -> unexpected end of JSON input"},
		{"not found", client.ErrNotFound, "book not found"},
		{"graphql", &client.QueryError{Messages: []string{"first", "second"}}, "first"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			loop := startLoop(t)
			fetcher := newGatedFetcher(models.Book{}, tc.err)
			close(fetcher.release)
			rec := &recorder{}

			h, err := NewController(fetcher, loop, quiet()).Start("1", rec.record)
			if err != nil {
				t.Fatalf("Start: %v", err)
			}
			waitDone(t, h)

			want := []State{Pending{}, Failed{Message: tc.want}}
			if diff := cmp.Diff(want, rec.snapshot()); diff != "" {
				t.Fatalf("events mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCancelBeforeCompletionDropsTerminal(t *testing.T) {
	loop := startLoop(t)
	fetcher := newGatedFetcher(models.Book{ID: "1"}, nil)
	rec := &recorder{}

	var h *Handle
	onLoop(t, loop, func() {
		var err error
		h, err = NewController(fetcher, loop, quiet()).Start("1", rec.record)
		if err != nil {
			t.Errorf("Start: %v", err)
		}
	})
	if h == nil {
		t.Fatal("no handle")
	}
	onLoop(t, loop, h.Cancel)

	// The transport call still completes after the cancel.
	close(fetcher.release)
	waitDone(t, h)

	if diff := cmp.Diff([]State{Pending{}}, rec.snapshot()); diff != "" {
		t.Fatalf("expected only Pending after cancel (-want +got):\n%s", diff)
	}
	if !h.Cancelled() {
		t.Fatal("expected handle to report cancellation")
	}
}

func TestCancelAbortsRequestContext(t *testing.T) {
	loop := startLoop(t)
	fetcher := newGatedFetcher(models.Book{}, nil)
	fetcher.honourCtx = true
	rec := &recorder{}

	h, err := NewController(fetcher, loop, quiet()).Start("1", rec.record)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	onLoop(t, loop, h.Cancel)

	select {
	case <-fetcher.sawCancel:
	case <-time.After(3 * time.Second):
		t.Fatal("fetch context was not cancelled")
	}
	waitDone(t, h)
	if got := len(rec.snapshot()); got != 1 {
		t.Fatalf("expected a single Pending event, got %d", got)
	}
	close(fetcher.release)
}

func TestCancelAfterDeliveryIsHarmless(t *testing.T) {
	loop := startLoop(t)
	fetcher := newGatedFetcher(models.Book{ID: "3"}, nil)
	close(fetcher.release)
	rec := &recorder{}

	h, err := NewController(fetcher, loop, quiet()).Start("3", rec.record)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitDone(t, h)
	onLoop(t, loop, h.Cancel)

	events := rec.snapshot()
	if len(events) != 2 || !Terminal(events[1]) {
		t.Fatalf("expected Pending and one terminal event, got %#v", events)
	}
}

func TestControllerIsSingleUse(t *testing.T) {
	loop := startLoop(t)
	fetcher := newGatedFetcher(models.Book{}, nil)
	close(fetcher.release)
	c := NewController(fetcher, loop, quiet())

	h, err := c.Start("1", nil)
	if err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if _, err := c.Start("1", nil); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("expected ErrAlreadyStarted, got %v", err)
	}
	waitDone(t, h)
}

func TestStartRequiresCollaborators(t *testing.T) {
	if _, err := NewController(nil, NewLoop()).Start("1", nil); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured without fetcher, got %v", err)
	}
	fetcher := funcFetcher(func(context.Context, string) (models.Book, error) { return models.Book{}, nil })
	if _, err := NewController(fetcher, nil).Start("1", nil); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured without dispatcher, got %v", err)
	}
}

func TestClosedDispatcherStillSettlesHandle(t *testing.T) {
	loop := NewLoop()
	loop.Close()
	fetcher := newGatedFetcher(models.Book{ID: "1"}, nil)
	close(fetcher.release)
	rec := &recorder{}

	h, err := NewController(fetcher, loop, quiet()).Start("1", rec.record)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitDone(t, h)
	if diff := cmp.Diff([]State{Pending{}}, rec.snapshot()); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}

type chanDispatcher chan func()

func (d chanDispatcher) Post(fn func()) bool {
	d <- fn
	return true
}

func TestTerminalEventRunsOnDispatcher(t *testing.T) {
	d := make(chanDispatcher, 1)
	fetcher := funcFetcher(func(context.Context, string) (models.Book, error) {
		return models.Book{ID: "1", Name: "Book 1", Genre: "Fantasy"}, nil
	})
	rec := &recorder{}
	h, err := NewController(fetcher, d, quiet()).Start("1", rec.record)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	var deliver func()
	select {
	case deliver = <-d:
	case <-time.After(3 * time.Second):
		t.Fatal("terminal event was never posted")
	}
	if got := len(rec.snapshot()); got != 1 {
		t.Fatalf("terminal event must wait for the dispatcher, got %d events", got)
	}
	deliver()
	waitDone(t, h)
	if got := len(rec.snapshot()); got != 2 {
		t.Fatalf("expected two events after dispatch, got %d", got)
	}
}

func TestEndToEndAgainstHTTP(t *testing.T) {
	notFound := httptest.NewServer(http.NotFoundHandler())
	defer notFound.Close()
	refused := httptest.NewServer(http.NotFoundHandler())
	refusedURL := refused.URL
	refused.Close()

	t.Run("not found status", func(t *testing.T) {
		loop := startLoop(t)
		rec := &recorder{}
		c := client.New(notFound.URL, client.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
		h, err := NewController(c, loop, quiet()).Start("1", rec.record)
		if err != nil {
			t.Fatalf("Start: %v", err)
		}
		waitDone(t, h)
		want := []State{Pending{}, Failed{Message: "Not Found"}}
		if diff := cmp.Diff(want, rec.snapshot()); diff != "" {
			t.Fatalf("events mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("connectivity fault", func(t *testing.T) {
		loop := startLoop(t)
		rec := &recorder{}
		c := client.New(refusedURL, client.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
		h, err := NewController(c, loop, quiet()).Start("1", rec.record)
		if err != nil {
			t.Fatalf("Start: %v", err)
		}
		waitDone(t, h)
		events := rec.snapshot()
		if len(events) != 2 {
			t.Fatalf("expected two events, got %#v", events)
		}
		failed, ok := events[1].(Failed)
		if !ok || failed.Message == "" {
			t.Fatalf("expected Failed with a diagnostic, got %#v", events[1])
		}
	})
}
