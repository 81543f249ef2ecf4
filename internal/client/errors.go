package client

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyBody is returned when a successful response carries no document.
	ErrEmptyBody = errors.New("body is null")
	// ErrNotFound is returned when the server answers with data.book == null.
	ErrNotFound = errors.New("book not found")
)

// TransportError wraps a failure to complete the HTTP exchange.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "transport: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError reports a non-success HTTP status.
type ProtocolError struct {
	StatusCode int
	Message    string
}

func (e *ProtocolError) Error() string {
	return "protocol: " + e.Message
}

// CodecError wraps a response body that is not a valid result document.
type CodecError struct {
	Err error
}

func (e *CodecError) Error() string {
	return "error parsing response -> " + e.Err.Error()
}

func (e *CodecError) Unwrap() error { return e.Err }

// QueryError carries the GraphQL errors of a 200 response.
type QueryError struct {
	Messages []string
}

func (e *QueryError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// FailureMessage maps an error returned by FetchBook to the text shown to
// the user.
func FailureMessage(err error) string {
	if err == nil {
		return ""
	}
	var transportErr *TransportError
	var protocolErr *ProtocolError
	var codecErr *CodecError
	var queryErr *QueryError
	switch {
	case errors.As(err, &transportErr):
		return transportErr.Err.Error()
	case errors.As(err, &protocolErr):
		return protocolErr.Message
	case errors.Is(err, ErrEmptyBody):
		return ErrEmptyBody.Error()
	case errors.As(err, &codecErr):
		return codecErr.Error()
	case errors.As(err, &queryErr):
		if len(queryErr.Messages) > 0 {
			return queryErr.Messages[0]
		}
		return "query failed"
	case errors.Is(err, ErrNotFound):
		return ErrNotFound.Error()
	default:
		return err.Error()
	}
}
