package dto

import "time"

type GenerateScriptRequest struct {
	Title    string `json:"title"`
	Platform string `json:"platform,omitempty"`
	Tone     string `json:"tone,omitempty"`
}

type GeneratedScriptResponse struct {
	Title    string                `json:"title"`
	Outline  string                `json:"outline,omitempty"`
	Body     string                `json:"body"`
	Platform string                `json:"platform,omitempty"`
	Quota    QuotaDecisionResponse `json:"quota"`
}

type SaveScriptRequest struct {
	Title    string `json:"title"`
	Outline  string `json:"outline,omitempty"`
	Body     string `json:"body"`
	Platform string `json:"platform,omitempty"`
}

type ScriptResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Outline   string    `json:"outline,omitempty"`
	Body      string    `json:"body"`
	Platform  string    `json:"platform,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ScriptListResponse struct {
	Scripts []ScriptResponse `json:"scripts"`
}

type ScriptExportResponse struct {
	URL string `json:"url"`
}
