package rpc

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/zegnus/graph-ql-end-to-end-android/internal/graph"
	"github.com/zegnus/graph-ql-end-to-end-android/pkg/models"
)

const (
	maxGraphQLBodyBytes int64 = 1 << 20 // 1 MiB
	contentTypeJSON           = "application/json; charset=utf-8"
	graphqlRoute              = "/graphql"
)

func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	if !s.applyCORS(w, r) {
		s.metrics.observe(graphqlRoute, http.StatusForbidden)
		return
	}
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST, OPTIONS")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		s.metrics.observe(graphqlRoute, http.StatusMethodNotAllowed)
		return
	}
	clientKey := rateLimitKey(r)
	if !s.opts.Limiter.Allow(clientKey, time.Now()) {
		s.logger.Warn("graphql rate limited", "component", "rpc.graphql", "client_key", clientKey)
		s.writeGraphQLError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxGraphQLBodyBytes)
	var req models.GraphQLRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeGraphQLError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		s.writeGraphQLError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		s.writeGraphQLError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		s.writeGraphQLError(w, http.StatusBadRequest, "query is required")
		return
	}

	reqID := newRequestID()
	started := time.Now()
	result := s.exec.ExecuteRequest(r.Context(), req)

	status := http.StatusOK
	if _, ok := result.Envelope.(graph.ErrorEnvelope); ok {
		status = http.StatusBadRequest
	}
	s.writeJSON(w, status, result.Wire)
	s.logger.Info("graphql response",
		"component", "rpc.graphql",
		"request_id", reqID,
		"remote_addr", r.RemoteAddr,
		"outcome", result.Envelope.Kind(),
		"status", status,
		"latency_ms", time.Since(started).Milliseconds(),
	)
}

func (s *Server) writeGraphQLError(w http.ResponseWriter, status int, message string) {
	body, err := json.Marshal(models.BookResponse{Errors: []models.GraphQLError{{Message: message}}})
	if err != nil {
		body = []byte(`{"errors":[{"message":"internal error"}]}`)
	}
	s.writeJSON(w, status, body)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, _ = w.Write(body)
	s.metrics.observe(graphqlRoute, status)
}
