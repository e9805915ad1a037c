package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"

	authsvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/auth"
	billingsvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/billing"
	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/transport/http/dto"
	httperrors "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/transport/http/errors"
)

const webhookBodyLimit = 1 << 20

type BillingHandler struct {
	service       *billingsvc.Service
	webhookSecret string
}

func NewBillingHandler(service *billingsvc.Service, webhookSecret string) *BillingHandler {
	return &BillingHandler{service: service, webhookSecret: webhookSecret}
}

func (h *BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "BILLING_SERVICE_UNAVAILABLE", "billing service is unavailable")
		return
	}

	var req dto.CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	purchase, err := h.service.Checkout(r.Context(), identity.UserID, req.Plan)
	if err != nil {
		switch {
		case errors.Is(err, billingsvc.ErrValidation), errors.Is(err, billingsvc.ErrUnsupportedPlan):
			writeBadRequest(w, "VALIDATION_ERROR", "unsupported plan")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to start checkout")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.CheckoutResponse{
		PurchaseID: purchase.ID,
		Plan:       string(purchase.Plan),
		Provider:   purchase.Provider,
		Status:     purchase.Status,
	})
}

// Webhook confirms a purchase on the provider's payment-success callback.
// The raw body is authenticated with an HMAC-SHA256 signature before any
// parsing happens; a missing or wrong signature is rejected outright.
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "BILLING_SERVICE_UNAVAILABLE", "billing service is unavailable")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, webhookBodyLimit))
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "failed to read request body")
		return
	}

	if h.webhookSecret != "" && !h.verifySignature(body, r.Header.Get("X-Webhook-Signature")) {
		writeUnauthorized(w, "INVALID_SIGNATURE", "webhook signature verification failed")
		return
	}

	r.Body = io.NopCloser(bytes.NewReader(body))
	var req dto.BillingWebhookRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	result, err := h.service.ConfirmWebhook(r.Context(), billingsvc.WebhookInput{
		PurchaseID:   req.PurchaseID,
		Provider:     req.Provider,
		ProviderTxID: req.ProviderTxID,
		Status:       req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, billingsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid webhook payload")
		case errors.Is(err, billingsvc.ErrPurchaseNotFound):
			writeNotFound(w, "PURCHASE_NOT_FOUND", "purchase not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to process webhook")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.BillingWebhookResponse{
		PurchaseID:       result.PurchaseID,
		Plan:             string(result.Plan),
		Status:           result.Status,
		AlreadyProcessed: result.AlreadyProcessed,
	})
}

func (h *BillingHandler) verifySignature(body []byte, header string) bool {
	provided := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(header), "sha256="))
	if provided == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(h.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.ToLower(provided)))
}
