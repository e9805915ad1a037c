package errors

import (
	"encoding/json"
	"net/http"
	"time"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// QuotaLimitError is the 429 payload for exhausted plan ceilings. Upgrade
// carries the next tier the client should offer; ResetAt is nil for storage
// ceilings, which never reset on their own.
type QuotaLimitError struct {
	Code    string     `json:"code"`
	Message string     `json:"message"`
	Used    int        `json:"used"`
	Limit   int        `json:"limit"`
	Window  string     `json:"window,omitempty"`
	ResetAt *time.Time `json:"reset_at,omitempty"`
	Upgrade string     `json:"upgrade,omitempty"`
}

type RateLimitError struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	RetryAfterSec int64  `json:"retry_after_sec"`
}

func Write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
