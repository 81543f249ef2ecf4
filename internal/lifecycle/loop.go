package lifecycle

import (
	"context"
	"sync"
)

// Dispatcher runs callbacks one at a time, in submission order, on the
// presentation goroutine. Post reports false when fn will never run.
type Dispatcher interface {
	Post(fn func()) bool
}

// Loop is a Dispatcher backed by the goroutine that calls Run.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool

	wake      chan struct{}
	quit      chan struct{}
	closeOnce sync.Once
}

func NewLoop() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
	}
}

func (l *Loop) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Close stops accepting work. Run executes what was already queued and
// returns.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		l.mu.Lock()
		l.closed = true
		l.mu.Unlock()
		close(l.quit)
	})
}

// Run executes posted callbacks until Close or ctx cancellation.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.drain()
		select {
		case <-ctx.Done():
			l.Close()
			return ctx.Err()
		case <-l.quit:
			l.drain()
			return nil
		case <-l.wake:
		}
	}
}

func (l *Loop) drain() {
	for {
		fn := l.next()
		if fn == nil {
			return
		}
		fn()
	}
}

func (l *Loop) next() func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn
}
