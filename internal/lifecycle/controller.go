package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/zegnus/graph-ql-end-to-end-android/internal/client"
	"github.com/zegnus/graph-ql-end-to-end-android/pkg/models"
)

var (
	ErrAlreadyStarted = errors.New("lifecycle: controller already started")
	ErrNotConfigured  = errors.New("lifecycle: fetcher and dispatcher are required")
)

// Fetcher performs the single remote lookup for a controller.
type Fetcher interface {
	FetchBook(ctx context.Context, id string) (models.Book, error)
}

type Controller struct {
	fetcher    Fetcher
	dispatcher Dispatcher
	logger     *slog.Logger
	started    atomic.Bool
}

type Option func(*Controller)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewController binds one request's worth of fetching to dispatcher.
// Controllers are single use.
func NewController(fetcher Fetcher, dispatcher Dispatcher, opts ...Option) *Controller {
	c := &Controller{fetcher: fetcher, dispatcher: dispatcher, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Handle controls a started request.
type Handle struct {
	cancelled atomic.Bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// Cancel suppresses every event not yet delivered and aborts the request
// context. It must be called from the dispatcher goroutine for the
// delivered-or-dropped guarantee to hold.
func (h *Handle) Cancel() {
	h.cancelled.Store(true)
	h.cancel()
}

func (h *Handle) Cancelled() bool {
	return h.cancelled.Load()
}

// Done is closed once the terminal event has been delivered or dropped.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

func (c *Controller) Start(id string, onEvent func(State)) (*Handle, error) {
	return c.StartContext(context.Background(), id, onEvent)
}

// StartContext reports Pending on the calling goroutine, then fetches id on
// a new goroutine and posts exactly one terminal state to the dispatcher.
func (c *Controller) StartContext(ctx context.Context, id string, onEvent func(State)) (*Handle, error) {
	if c.fetcher == nil || c.dispatcher == nil {
		return nil, ErrNotConfigured
	}
	if !c.started.CompareAndSwap(false, true) {
		return nil, ErrAlreadyStarted
	}
	if onEvent == nil {
		onEvent = func(State) {}
	}

	reqCtx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}

	onEvent(Pending{})

	go func() {
		book, err := c.fetcher.FetchBook(reqCtx, id)
		terminal := terminalState(book, err)
		deliver := func() {
			defer close(h.done)
			defer cancel()
			if h.cancelled.Load() {
				c.logger.Debug("request event dropped", "component", "lifecycle", "book_id", id)
				return
			}
			onEvent(terminal)
		}
		if !c.dispatcher.Post(deliver) {
			cancel()
			close(h.done)
		}
	}()
	return h, nil
}

func terminalState(book models.Book, err error) State {
	if err != nil {
		return Failed{Message: client.FailureMessage(err)}
	}
	return Succeeded{Book: book}
}
