package handlers

import (
	"errors"
	"net/http"

	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/model"
	authsvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/auth"
	llmsvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/llm"
	ratesvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/rate"
	scriptsvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/scripts"
	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/transport/http/dto"
	httperrors "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/transport/http/errors"
)

type ScriptHandler struct {
	service *scriptsvc.Service
	limiter *ratesvc.Limiter
}

func NewScriptHandler(service *scriptsvc.Service, limiter *ratesvc.Limiter) *ScriptHandler {
	return &ScriptHandler{service: service, limiter: limiter}
}

func (h *ScriptHandler) Generate(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SCRIPT_SERVICE_UNAVAILABLE", "script service is unavailable")
		return
	}
	if !allowGenerate(w, r, h.limiter, identity.UserID) {
		return
	}

	var req dto.GenerateScriptRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	script, decision, err := h.service.Generate(r.Context(), identity.UserID, locationFromRequest(r), req.Title, req.Platform, req.Tone)
	if err != nil {
		if handleQuotaError(w, err) {
			return
		}
		switch {
		case errors.Is(err, scriptsvc.ErrInvalidInput):
			writeBadRequest(w, "VALIDATION_ERROR", "title is required")
		case errors.Is(err, llmsvc.ErrProviderUnavailable):
			writeServiceUnavailable(w, "UPSTREAM_UNAVAILABLE", "content generation is temporarily unavailable")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to generate script")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.GeneratedScriptResponse{
		Title:    script.Title,
		Outline:  script.Outline,
		Body:     script.Body,
		Platform: script.Platform,
		Quota:    mapQuotaDecision(decision),
	})
}

func (h *ScriptHandler) Save(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SCRIPT_SERVICE_UNAVAILABLE", "script service is unavailable")
		return
	}

	var req dto.SaveScriptRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	script, err := h.service.Save(r.Context(), identity.UserID, scriptsvc.GeneratedScript{
		Title:    req.Title,
		Outline:  req.Outline,
		Body:     req.Body,
		Platform: req.Platform,
	})
	if err != nil {
		if handleQuotaError(w, err) {
			return
		}
		if errors.Is(err, scriptsvc.ErrInvalidInput) {
			writeBadRequest(w, "VALIDATION_ERROR", "title and body are required")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to save script")
		return
	}

	httperrors.Write(w, http.StatusCreated, scriptResponse(script))
}

func (h *ScriptHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SCRIPT_SERVICE_UNAVAILABLE", "script service is unavailable")
		return
	}

	scripts, err := h.service.List(r.Context(), identity.UserID, limitFromQuery(r))
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list scripts")
		return
	}

	resp := dto.ScriptListResponse{Scripts: []dto.ScriptResponse{}}
	for _, script := range scripts {
		resp.Scripts = append(resp.Scripts, scriptResponse(script))
	}
	httperrors.Write(w, http.StatusOK, resp)
}

func (h *ScriptHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SCRIPT_SERVICE_UNAVAILABLE", "script service is unavailable")
		return
	}

	scriptID, ok := idFromURL(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid script id")
		return
	}

	script, err := h.service.Get(r.Context(), identity.UserID, scriptID)
	if err != nil {
		if errors.Is(err, scriptsvc.ErrNotFound) {
			writeNotFound(w, "SCRIPT_NOT_FOUND", "script not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load script")
		return
	}

	httperrors.Write(w, http.StatusOK, scriptResponse(script))
}

func (h *ScriptHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SCRIPT_SERVICE_UNAVAILABLE", "script service is unavailable")
		return
	}

	scriptID, ok := idFromURL(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid script id")
		return
	}

	if err := h.service.Delete(r.Context(), identity.UserID, scriptID); err != nil {
		if errors.Is(err, scriptsvc.ErrNotFound) {
			writeNotFound(w, "SCRIPT_NOT_FOUND", "script not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to delete script")
		return
	}

	httperrors.Write(w, http.StatusOK, struct {
		OK bool `json:"ok"`
	}{OK: true})
}

func (h *ScriptHandler) Export(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SCRIPT_SERVICE_UNAVAILABLE", "script service is unavailable")
		return
	}

	scriptID, ok := idFromURL(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid script id")
		return
	}

	url, err := h.service.Export(r.Context(), identity.UserID, scriptID)
	if err != nil {
		if errors.Is(err, scriptsvc.ErrNotFound) {
			writeNotFound(w, "SCRIPT_NOT_FOUND", "script not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to export script")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ScriptExportResponse{URL: url})
}

func scriptResponse(script model.Script) dto.ScriptResponse {
	return dto.ScriptResponse{
		ID:        script.ID,
		Title:     script.Title,
		Outline:   script.Outline,
		Body:      script.Body,
		Platform:  script.Platform,
		CreatedAt: script.CreatedAt,
		UpdatedAt: script.UpdatedAt,
	}
}
