package handlers

import (
	"errors"
	"net/http"

	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/model"
	authsvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/auth"
	feedbacksvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/feedback"
	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/transport/http/dto"
	httperrors "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/transport/http/errors"
)

type FeedbackHandler struct {
	service *feedbacksvc.Service
}

func NewFeedbackHandler(service *feedbacksvc.Service) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "FEEDBACK_SERVICE_UNAVAILABLE", "feedback service is unavailable")
		return
	}

	var req dto.FeedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	entry, err := h.service.Submit(r.Context(), identity.UserID, req.Category, req.Message, req.Rating)
	if err != nil {
		if errors.Is(err, feedbacksvc.ErrInvalidInput) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid feedback payload")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to submit feedback")
		return
	}

	httperrors.Write(w, http.StatusCreated, feedbackResponse(entry))
}

func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "FEEDBACK_SERVICE_UNAVAILABLE", "feedback service is unavailable")
		return
	}

	entries, err := h.service.List(r.Context(), identity.UserID, limitFromQuery(r))
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list feedback")
		return
	}

	resp := dto.FeedbackListResponse{Feedback: []dto.FeedbackResponse{}}
	for _, entry := range entries {
		resp.Feedback = append(resp.Feedback, feedbackResponse(entry))
	}
	httperrors.Write(w, http.StatusOK, resp)
}

func feedbackResponse(entry model.Feedback) dto.FeedbackResponse {
	return dto.FeedbackResponse{
		ID:        entry.ID,
		Category:  entry.Category,
		Message:   entry.Message,
		Rating:    entry.Rating,
		CreatedAt: entry.CreatedAt,
	}
}
