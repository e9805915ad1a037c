package dto

import "time"

type QuotaFeatureResponse struct {
	Feature   string `json:"feature"`
	Window    string `json:"window"`
	Used      int    `json:"used"`
	Limit     int    `json:"limit"`
	Unlimited bool   `json:"unlimited"`
}

type QuotaStorageResponse struct {
	Collection string `json:"collection"`
	Used       int    `json:"used"`
	Limit      int    `json:"limit"`
	Unlimited  bool   `json:"unlimited"`
}

type QuotaSnapshotResponse struct {
	Tier           string                 `json:"tier"`
	Features       []QuotaFeatureResponse `json:"features"`
	Storage        []QuotaStorageResponse `json:"storage"`
	DailyResetAt   time.Time              `json:"daily_reset_at"`
	MonthlyResetAt time.Time              `json:"monthly_reset_at"`
}

type QuotaDecisionResponse struct {
	Feature   string `json:"feature"`
	Window    string `json:"window"`
	Used      int    `json:"used"`
	Limit     int    `json:"limit"`
	Unlimited bool   `json:"unlimited"`
}
