package dto

import "time"

type MeResponse struct {
	ID               int64      `json:"id"`
	Email            string     `json:"email"`
	DisplayName      string     `json:"display_name,omitempty"`
	Role             string     `json:"role"`
	Tier             string     `json:"tier"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}
