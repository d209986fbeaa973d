package client

import (
	"errors"
	"fmt"
)

// Sentinel kinds for client errors.
var (
	ErrRunFailed = errors.New("run failed")
	ErrResponse  = errors.New("unexpected response")
)

// APIError is an error response of the reconciliation API.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api %d %s: %s", e.Status, e.Code, e.Message)
}
