// Package client talks to the WasteHub HTTP API on behalf of the admin CLI.
//
// # Overview
//
// Client is the transport-agnostic contract used by the CLI; HTTPClient is
// its JSON-over-HTTP implementation. Responses are decoded into the types
// in this package, with money kept as decimal.Decimal.
//
// # Error Handling
//
// Error responses carry a kind ("validation", "not_found", "invalid_state",
// "already_exists", "internal"). They surface as *APIError, which unwraps to
// the matching sentinel in internal/common so callers can use errors.Is.
// Transport failures wrap ErrUnavailable.
package client
