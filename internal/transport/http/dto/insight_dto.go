package dto

import "time"

type AnalyzeChannelRequest struct {
	ChannelRef string `json:"channel_ref"`
	Focus      string `json:"focus,omitempty"`
}

type InsightResponse struct {
	ID         int64     `json:"id"`
	ChannelRef string    `json:"channel_ref"`
	Summary    string    `json:"summary"`
	Strengths  []string  `json:"strengths,omitempty"`
	Gaps       []string  `json:"gaps,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type AnalyzeChannelResponse struct {
	Insight InsightResponse       `json:"insight"`
	Quota   QuotaDecisionResponse `json:"quota"`
}

type InsightListResponse struct {
	Insights []InsightResponse `json:"insights"`
}
