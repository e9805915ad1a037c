package model

import "time"

type Insight struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	ChannelRef string    `json:"channel_ref"`
	Summary    string    `json:"summary"`
	Strengths  []string  `json:"strengths,omitempty"`
	Gaps       []string  `json:"gaps,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
