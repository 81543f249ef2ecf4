package graph

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	graphql "github.com/graph-gophers/graphql-go"
	gqlerrors "github.com/graph-gophers/graphql-go/errors"

	"github.com/zegnus/graph-ql-end-to-end-android/pkg/models"
)

const executorComponentName = "graph.executor"

// Result pairs the envelope with its serialized wire form.
type Result struct {
	Envelope Envelope
	Wire     []byte
}

type Executor struct {
	schema  *graphql.Schema
	logger  *slog.Logger
	metrics *Metrics
}

type Option func(*Executor)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

// NewExecutor binds the schema to books. The executor keeps no per-request
// state and is safe for concurrent use.
func NewExecutor(books Finder, opts ...Option) (*Executor, error) {
	schema, err := NewSchema(NewResolver(books))
	if err != nil {
		return nil, err
	}
	e := &Executor{schema: schema, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Execute parses, validates and resolves query with variables.
func (e *Executor) Execute(ctx context.Context, query string, variables map[string]any) Result {
	return e.ExecuteRequest(ctx, models.GraphQLRequest{Query: query, Variables: variables})
}

func (e *Executor) ExecuteRequest(ctx context.Context, req models.GraphQLRequest) Result {
	started := time.Now()
	ctx, rec := withEnvelopeRecorder(ctx)
	resp := e.schema.Exec(ctx, req.Query, req.OperationName, req.Variables)
	result := toResult(resp, rec)

	outcome := result.Envelope.Kind()
	e.metrics.observe(outcome, time.Since(started))
	attrs := []any{
		"component", executorComponentName,
		"operation", strings.TrimSpace(req.OperationName),
		"outcome", outcome,
		"latency_ms", time.Since(started).Milliseconds(),
	}
	if env, ok := result.Envelope.(ErrorEnvelope); ok {
		e.logger.Warn("query rejected", append(attrs, "detail", env.Detail)...)
	} else {
		e.logger.Info("query executed", attrs...)
	}
	return result
}

func toResult(resp *graphql.Response, rec *envelopeRecorder) Result {
	if len(resp.Errors) > 0 {
		return errorResult(resp.Errors)
	}
	wire, err := json.Marshal(resp)
	if err != nil {
		return errorResult([]*gqlerrors.QueryError{gqlerrors.Errorf("encode response: %s", err)})
	}
	return Result{Envelope: rec.envelope(), Wire: wire}
}

func errorResult(errs []*gqlerrors.QueryError) Result {
	messages := make([]string, 0, len(errs))
	for _, qe := range errs {
		messages = append(messages, qe.Message)
	}
	wire, err := json.Marshal(&graphql.Response{Errors: errs})
	if err != nil {
		wire = []byte(`{"errors":[{"message":"internal error"}]}`)
	}
	return Result{
		Envelope: ErrorEnvelope{Detail: strings.Join(messages, "; ")},
		Wire:     wire,
	}
}
