package dto

type CheckoutRequest struct {
	Plan string `json:"plan"`
}

type CheckoutResponse struct {
	PurchaseID int64  `json:"purchase_id"`
	Plan       string `json:"plan"`
	Provider   string `json:"provider"`
	Status     string `json:"status"`
}

type BillingWebhookRequest struct {
	PurchaseID   int64  `json:"purchase_id"`
	Provider     string `json:"provider"`
	ProviderTxID string `json:"provider_tx_id"`
	Status       string `json:"status"`
}

type BillingWebhookResponse struct {
	PurchaseID       int64  `json:"purchase_id"`
	Plan             string `json:"plan"`
	Status           string `json:"status"`
	AlreadyProcessed bool   `json:"already_processed"`
}
