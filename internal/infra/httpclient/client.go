package httpclient

import (
	"net/http"
	"time"
)

// New returns a client with a hard timeout for outbound provider calls. The
// LLM provider is the only consumer; per-request deadlines still come from
// the request context.
func New(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
