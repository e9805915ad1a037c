package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/model"
	authsvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/auth"
	ideasvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/ideas"
	llmsvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/llm"
	ratesvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/rate"
	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/transport/http/dto"
	httperrors "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/transport/http/errors"
)

type IdeaHandler struct {
	service *ideasvc.Service
	limiter *ratesvc.Limiter
}

func NewIdeaHandler(service *ideasvc.Service, limiter *ratesvc.Limiter) *IdeaHandler {
	return &IdeaHandler{service: service, limiter: limiter}
}

func (h *IdeaHandler) Ideate(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "IDEA_SERVICE_UNAVAILABLE", "idea service is unavailable")
		return
	}
	if !allowGenerate(w, r, h.limiter, identity.UserID) {
		return
	}

	var req dto.IdeateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	ideas, decision, err := h.service.Ideate(r.Context(), identity.UserID, locationFromRequest(r), req.Topic, req.Platform, req.Count)
	if err != nil {
		if handleQuotaError(w, err) {
			return
		}
		switch {
		case errors.Is(err, ideasvc.ErrInvalidInput):
			writeBadRequest(w, "VALIDATION_ERROR", "topic is required")
		case errors.Is(err, llmsvc.ErrProviderUnavailable):
			writeServiceUnavailable(w, "UPSTREAM_UNAVAILABLE", "content generation is temporarily unavailable")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to generate ideas")
		}
		return
	}

	resp := dto.IdeateResponse{Quota: mapQuotaDecision(decision)}
	for _, idea := range ideas {
		resp.Ideas = append(resp.Ideas, dto.GeneratedIdeaResponse{
			Title: idea.Title,
			Angle: idea.Angle,
			Hook:  idea.Hook,
			Tags:  idea.Tags,
		})
	}
	httperrors.Write(w, http.StatusOK, resp)
}

func (h *IdeaHandler) Save(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "IDEA_SERVICE_UNAVAILABLE", "idea service is unavailable")
		return
	}

	var req dto.SaveIdeaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	idea, err := h.service.Save(r.Context(), identity.UserID, ideasvc.GeneratedIdea{
		Title: req.Title,
		Angle: req.Angle,
		Hook:  req.Hook,
		Tags:  req.Tags,
	}, req.SourcePrompt)
	if err != nil {
		if handleQuotaError(w, err) {
			return
		}
		if errors.Is(err, ideasvc.ErrInvalidInput) {
			writeBadRequest(w, "VALIDATION_ERROR", "title is required")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to save idea")
		return
	}

	httperrors.Write(w, http.StatusCreated, ideaResponse(idea))
}

func (h *IdeaHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "IDEA_SERVICE_UNAVAILABLE", "idea service is unavailable")
		return
	}

	ideas, err := h.service.List(r.Context(), identity.UserID, limitFromQuery(r))
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list ideas")
		return
	}

	resp := dto.IdeaListResponse{Ideas: []dto.IdeaResponse{}}
	for _, idea := range ideas {
		resp.Ideas = append(resp.Ideas, ideaResponse(idea))
	}
	httperrors.Write(w, http.StatusOK, resp)
}

func (h *IdeaHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "IDEA_SERVICE_UNAVAILABLE", "idea service is unavailable")
		return
	}

	ideaID, ok := idFromURL(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid idea id")
		return
	}

	idea, err := h.service.Get(r.Context(), identity.UserID, ideaID)
	if err != nil {
		if errors.Is(err, ideasvc.ErrNotFound) {
			writeNotFound(w, "IDEA_NOT_FOUND", "idea not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load idea")
		return
	}

	httperrors.Write(w, http.StatusOK, ideaResponse(idea))
}

func (h *IdeaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "IDEA_SERVICE_UNAVAILABLE", "idea service is unavailable")
		return
	}

	ideaID, ok := idFromURL(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid idea id")
		return
	}

	if err := h.service.Delete(r.Context(), identity.UserID, ideaID); err != nil {
		if errors.Is(err, ideasvc.ErrNotFound) {
			writeNotFound(w, "IDEA_NOT_FOUND", "idea not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to delete idea")
		return
	}

	httperrors.Write(w, http.StatusOK, struct {
		OK bool `json:"ok"`
	}{OK: true})
}

func ideaResponse(idea model.Idea) dto.IdeaResponse {
	return dto.IdeaResponse{
		ID:           idea.ID,
		Title:        idea.Title,
		Angle:        idea.Angle,
		Hook:         idea.Hook,
		Tags:         idea.Tags,
		SourcePrompt: idea.SourcePrompt,
		CreatedAt:    idea.CreatedAt,
	}
}

func idFromURL(r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, "id"))
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func limitFromQuery(r *http.Request) int {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
