package dto

type TrendSearchRequest struct {
	Query    string `json:"query"`
	Platform string `json:"platform,omitempty"`
}

type TrendSearchResponse struct {
	Query    string                `json:"query"`
	Platform string                `json:"platform,omitempty"`
	Insight  string                `json:"insight"`
	Quota    QuotaDecisionResponse `json:"quota"`
}
