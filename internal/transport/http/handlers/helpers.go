package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/enums"
	quotasvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/quota"
	ratesvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/rate"
	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/transport/http/dto"
	httperrors "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/transport/http/errors"
)

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeNotFound(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}

func writeServiceUnavailable(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusServiceUnavailable, httperrors.APIError{Code: code, Message: message})
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func timezoneFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if v := strings.TrimSpace(r.Header.Get("X-Timezone")); v != "" {
		return v
	}
	if v := strings.TrimSpace(r.URL.Query().Get("tz")); v != "" {
		return v
	}
	return ""
}

// locationFromRequest resolves the caller's IANA timezone. An absent or
// unknown name yields nil, which the quota service treats as its configured
// default.
func locationFromRequest(r *http.Request) *time.Location {
	name := timezoneFromRequest(r)
	if name == "" {
		return nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil
	}
	return loc
}

func upgradeTarget(tier enums.Tier) string {
	switch tier {
	case enums.TierFree:
		return string(enums.TierPro)
	case enums.TierPro:
		return string(enums.TierAgency)
	default:
		return ""
	}
}

// handleQuotaError writes the response for the quota error family. It
// reports whether the error was handled so callers can fall through to their
// own mapping otherwise.
func handleQuotaError(w http.ResponseWriter, err error) bool {
	var exceeded *quotasvc.QuotaExceededError
	if errors.As(err, &exceeded) {
		code := "DAILY_LIMIT_REACHED"
		if exceeded.Window == enums.WindowMonthly {
			code = "MONTHLY_LIMIT_REACHED"
		}
		resetAt := exceeded.ResetAt.UTC()
		httperrors.Write(w, http.StatusTooManyRequests, httperrors.QuotaLimitError{
			Code:    code,
			Message: exceeded.Error(),
			Used:    exceeded.Used,
			Limit:   exceeded.Limit,
			Window:  string(exceeded.Window),
			ResetAt: &resetAt,
			Upgrade: upgradeTarget(exceeded.Tier),
		})
		return true
	}

	var full *quotasvc.StorageLimitError
	if errors.As(err, &full) {
		httperrors.Write(w, http.StatusTooManyRequests, httperrors.QuotaLimitError{
			Code:    "STORAGE_LIMIT_REACHED",
			Message: full.Error(),
			Used:    full.Used,
			Limit:   full.Limit,
			Upgrade: upgradeTarget(full.Tier),
		})
		return true
	}

	if errors.Is(err, quotasvc.ErrStorageUnavailable) {
		writeServiceUnavailable(w, "QUOTA_UNAVAILABLE", "usage tracking is unavailable, try again later")
		return true
	}

	return false
}

func writeRateLimited(w http.ResponseWriter, retryAfterSec int64) {
	httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
		Code:          "RATE_LIMITED",
		Message:       "too many generation requests, slow down",
		RetryAfterSec: retryAfterSec,
	})
}

// allowGenerate runs the burst limiter in front of a generation endpoint.
// It writes the 429 or 503 itself and reports whether the request may
// proceed. A nil limiter disables throttling.
func allowGenerate(w http.ResponseWriter, r *http.Request, limiter *ratesvc.Limiter, userID int64) bool {
	if limiter == nil {
		return true
	}
	retryAfter, ok, err := limiter.AllowGenerate(r.Context(), userID)
	if err != nil {
		writeServiceUnavailable(w, "RATE_LIMITER_UNAVAILABLE", "rate limiter is unavailable, try again later")
		return false
	}
	if !ok {
		writeRateLimited(w, retryAfter)
		return false
	}
	return true
}

func mapQuotaDecision(d quotasvc.Decision) dto.QuotaDecisionResponse {
	return dto.QuotaDecisionResponse{
		Feature:   string(d.Feature),
		Window:    string(d.Window),
		Used:      d.Used,
		Limit:     d.Limit,
		Unlimited: d.Unlimited,
	}
}
