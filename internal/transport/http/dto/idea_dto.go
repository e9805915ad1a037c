package dto

import "time"

type IdeateRequest struct {
	Topic    string `json:"topic"`
	Platform string `json:"platform,omitempty"`
	Count    int    `json:"count,omitempty"`
}

type GeneratedIdeaResponse struct {
	Title string   `json:"title"`
	Angle string   `json:"angle,omitempty"`
	Hook  string   `json:"hook,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

type IdeateResponse struct {
	Ideas []GeneratedIdeaResponse `json:"ideas"`
	Quota QuotaDecisionResponse   `json:"quota"`
}

type SaveIdeaRequest struct {
	Title        string   `json:"title"`
	Angle        string   `json:"angle,omitempty"`
	Hook         string   `json:"hook,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	SourcePrompt string   `json:"source_prompt,omitempty"`
}

type IdeaResponse struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Angle        string    `json:"angle,omitempty"`
	Hook         string    `json:"hook,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	SourcePrompt string    `json:"source_prompt,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type IdeaListResponse struct {
	Ideas []IdeaResponse `json:"ideas"`
}
