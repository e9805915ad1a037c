package handlers

import (
	"errors"
	"net/http"

	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/model"
	authsvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/auth"
	insightsvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/insights"
	llmsvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/llm"
	ratesvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/rate"
	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/transport/http/dto"
	httperrors "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/transport/http/errors"
)

type InsightHandler struct {
	service *insightsvc.Service
	limiter *ratesvc.Limiter
}

func NewInsightHandler(service *insightsvc.Service, limiter *ratesvc.Limiter) *InsightHandler {
	return &InsightHandler{service: service, limiter: limiter}
}

func (h *InsightHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "INSIGHT_SERVICE_UNAVAILABLE", "insight service is unavailable")
		return
	}
	if !allowGenerate(w, r, h.limiter, identity.UserID) {
		return
	}

	var req dto.AnalyzeChannelRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	insight, decision, err := h.service.Analyze(r.Context(), identity.UserID, locationFromRequest(r), req.ChannelRef, req.Focus)
	if err != nil {
		if handleQuotaError(w, err) {
			return
		}
		switch {
		case errors.Is(err, insightsvc.ErrInvalidInput):
			writeBadRequest(w, "VALIDATION_ERROR", "channel_ref is required")
		case errors.Is(err, llmsvc.ErrProviderUnavailable):
			writeServiceUnavailable(w, "UPSTREAM_UNAVAILABLE", "channel analysis is temporarily unavailable")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to analyze channel")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.AnalyzeChannelResponse{
		Insight: insightResponse(insight),
		Quota:   mapQuotaDecision(decision),
	})
}

func (h *InsightHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "INSIGHT_SERVICE_UNAVAILABLE", "insight service is unavailable")
		return
	}

	insights, err := h.service.List(r.Context(), identity.UserID, limitFromQuery(r))
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list insights")
		return
	}

	resp := dto.InsightListResponse{Insights: []dto.InsightResponse{}}
	for _, insight := range insights {
		resp.Insights = append(resp.Insights, insightResponse(insight))
	}
	httperrors.Write(w, http.StatusOK, resp)
}

func insightResponse(insight model.Insight) dto.InsightResponse {
	return dto.InsightResponse{
		ID:         insight.ID,
		ChannelRef: insight.ChannelRef,
		Summary:    insight.Summary,
		Strengths:  insight.Strengths,
		Gaps:       insight.Gaps,
		CreatedAt:  insight.CreatedAt,
	}
}
