package model

import "time"

type Idea struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Title        string    `json:"title"`
	Angle        string    `json:"angle"`
	Hook         string    `json:"hook"`
	Tags         []string  `json:"tags,omitempty"`
	SourcePrompt string    `json:"source_prompt,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
