package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/auth"
	usersvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/users"
	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/transport/http/dto"
	httperrors "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/transport/http/errors"
)

type MeHandler struct {
	service *usersvc.Service
}

func NewMeHandler(service *usersvc.Service) *MeHandler {
	return &MeHandler{service: service}
}

func (h *MeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "USER_SERVICE_UNAVAILABLE", "user service is unavailable")
		return
	}

	user, err := h.service.Me(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, usersvc.ErrNotFound) {
			writeNotFound(w, "USER_NOT_FOUND", "user not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load profile")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MeResponse{
		ID:               user.ID,
		Email:            user.Email,
		DisplayName:      user.DisplayName,
		Role:             string(user.Role),
		Tier:             string(user.Tier),
		CurrentPeriodEnd: user.CurrentPeriodEnd,
		CreatedAt:        user.CreatedAt,
	})
}
