// Package lifecycle drives one asynchronous book fetch from a presentation
// goroutine: Pending is reported immediately, the fetch runs on a worker,
// and the single terminal state is delivered back through a Dispatcher.
package lifecycle

import "github.com/zegnus/graph-ql-end-to-end-android/pkg/models"

// State is one of Pending, Failed or Succeeded.
type State interface {
	isState()
}

type Pending struct{}

type Failed struct {
	Message string
}

type Succeeded struct {
	Book models.Book
}

func (Pending) isState()   {}
func (Failed) isState()    {}
func (Succeeded) isState() {}

// Terminal reports whether s ends a request.
func Terminal(s State) bool {
	switch s.(type) {
	case Failed, Succeeded:
		return true
	default:
		return false
	}
}
