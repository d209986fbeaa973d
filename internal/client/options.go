package client

import (
	"net/http"
	"time"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithPollInterval sets how often Wait polls a run.
func WithPollInterval(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.pollInterval = d
		}
	}
}
