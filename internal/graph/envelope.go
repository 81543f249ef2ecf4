package graph

import (
	"context"
	"sync"

	"github.com/zegnus/graph-ql-end-to-end-android/pkg/models"
)

// Envelope is the result of resolving one book query. It is one of
// DataEnvelope, EmptyEnvelope or ErrorEnvelope.
type Envelope interface {
	Kind() string
	isEnvelope()
}

const (
	KindData  = "data"
	KindEmpty = "empty"
	KindError = "error"
)

type DataEnvelope struct {
	Book models.Book
}

type EmptyEnvelope struct{}

type ErrorEnvelope struct {
	Detail string
}

func (DataEnvelope) Kind() string  { return KindData }
func (EmptyEnvelope) Kind() string { return KindEmpty }
func (ErrorEnvelope) Kind() string { return KindError }

func (DataEnvelope) isEnvelope()  {}
func (EmptyEnvelope) isEnvelope() {}
func (ErrorEnvelope) isEnvelope() {}

type recorderKey struct{}

// envelopeRecorder keeps what the book field resolved to during one
// execution. A query may select the field more than once under aliases, and
// fields can resolve concurrently; a data envelope wins over an empty one.
type envelopeRecorder struct {
	mu  sync.Mutex
	env Envelope
}

func withEnvelopeRecorder(ctx context.Context) (context.Context, *envelopeRecorder) {
	rec := &envelopeRecorder{}
	return context.WithValue(ctx, recorderKey{}, rec), rec
}

func recordEnvelope(ctx context.Context, env Envelope) {
	rec, ok := ctx.Value(recorderKey{}).(*envelopeRecorder)
	if !ok {
		return
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if _, isData := rec.env.(DataEnvelope); isData {
		return
	}
	rec.env = env
}

// envelope returns the recorded envelope, or Empty when the book field was
// never resolved.
func (r *envelopeRecorder) envelope() Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.env == nil {
		return EmptyEnvelope{}
	}
	return r.env
}
