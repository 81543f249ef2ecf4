package models

import "strings"

type Book struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Genre string `json:"genre" yaml:"genre"`
}

// GraphQLRequest is the POST body accepted by the /graphql endpoint.
type GraphQLRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

type GraphQLError struct {
	Message string `json:"message"`
}

// BookData is the "data" member of a book query response. Book is nil when
// the catalog has no record for the requested id.
type BookData struct {
	Book *Book `json:"book"`
}

// BookResponse is the client-side view of a book query response.
type BookResponse struct {
	Data   *BookData      `json:"data,omitempty"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

// FirstErrorMessage returns the first non-blank error message, if any.
func (r BookResponse) FirstErrorMessage() (string, bool) {
	for _, e := range r.Errors {
		if msg := strings.TrimSpace(e.Message); msg != "" {
			return msg, true
		}
	}
	return "", false
}
