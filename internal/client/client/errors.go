package client

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/wastehub/internal/common"
)

var ErrUnavailable = errors.New("server unavailable")

// APIError is an error response from the server.
type APIError struct {
	Status  int
	Kind    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s (HTTP %d)", e.Kind, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error {
	return common.FromKind(e.Kind)
}
