package handlers

import (
	"net/http"

	authsvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/auth"
	quotasvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/quota"
	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/transport/http/dto"
	httperrors "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/transport/http/errors"
)

type QuotaHandler struct {
	service *quotasvc.Service
}

func NewQuotaHandler(service *quotasvc.Service) *QuotaHandler {
	return &QuotaHandler{service: service}
}

func (h *QuotaHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "QUOTA_SERVICE_UNAVAILABLE", "quota service is unavailable")
		return
	}

	snapshot, err := h.service.Snapshot(r.Context(), identity.UserID, locationFromRequest(r))
	if err != nil {
		if handleQuotaError(w, err) {
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load usage")
		return
	}

	httperrors.Write(w, http.StatusOK, mapQuotaSnapshot(snapshot))
}

func mapQuotaSnapshot(snapshot quotasvc.Snapshot) dto.QuotaSnapshotResponse {
	out := dto.QuotaSnapshotResponse{
		Tier:           string(snapshot.Tier),
		DailyResetAt:   snapshot.DailyResetAt.UTC(),
		MonthlyResetAt: snapshot.MonthlyResetAt.UTC(),
	}
	for _, f := range snapshot.Features {
		out.Features = append(out.Features, dto.QuotaFeatureResponse{
			Feature:   string(f.Feature),
			Window:    string(f.Window),
			Used:      f.Used,
			Limit:     f.Limit,
			Unlimited: f.Unlimited,
		})
	}
	for _, s := range snapshot.Storage {
		out.Storage = append(out.Storage, dto.QuotaStorageResponse{
			Collection: string(s.Kind),
			Used:       s.Used,
			Limit:      s.Limit,
			Unlimited:  s.Unlimited,
		})
	}
	return out
}
