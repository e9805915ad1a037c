package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/auth"
	llmsvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/llm"
	ratesvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/rate"
	searchsvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/search"
	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/transport/http/dto"
	httperrors "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/transport/http/errors"
)

type SearchHandler struct {
	service *searchsvc.Service
	limiter *ratesvc.Limiter
}

func NewSearchHandler(service *searchsvc.Service, limiter *ratesvc.Limiter) *SearchHandler {
	return &SearchHandler{service: service, limiter: limiter}
}

func (h *SearchHandler) Trends(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SEARCH_SERVICE_UNAVAILABLE", "search service is unavailable")
		return
	}
	if !allowGenerate(w, r, h.limiter, identity.UserID) {
		return
	}

	var req dto.TrendSearchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	result, decision, err := h.service.Trends(r.Context(), identity.UserID, locationFromRequest(r), req.Query, req.Platform)
	if err != nil {
		if handleQuotaError(w, err) {
			return
		}
		switch {
		case errors.Is(err, searchsvc.ErrInvalidInput):
			writeBadRequest(w, "VALIDATION_ERROR", "query is required")
		case errors.Is(err, llmsvc.ErrProviderUnavailable):
			writeServiceUnavailable(w, "UPSTREAM_UNAVAILABLE", "trend search is temporarily unavailable")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to search trends")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.TrendSearchResponse{
		Query:    result.Query,
		Platform: result.Platform,
		Insight:  result.Insight,
		Quota:    mapQuotaDecision(decision),
	})
}
