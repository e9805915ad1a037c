package model

import (
	"time"

	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/enums"
)

type Purchase struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	Plan         enums.Tier `json:"plan"`
	Provider     string     `json:"provider"`
	ProviderTxID string     `json:"provider_tx_id,omitempty"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	ConfirmedAt  *time.Time `json:"confirmed_at,omitempty"`
}
