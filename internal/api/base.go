// Package api holds the stateless HTTP boundary of the chat client. Every
// function validates its inputs, issues one request against the chat
// backend, and decodes the response into shared types.
package api

import (
	"net/http"
)

// HTTPClient interface for dependency injection
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
