package model

import (
	"time"

	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/enums"
)

type User struct {
	ID               int64      `json:"id"`
	Email            string     `json:"email"`
	DisplayName      string     `json:"display_name"`
	Role             enums.Role `json:"role"`
	Tier             enums.Tier `json:"tier"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
