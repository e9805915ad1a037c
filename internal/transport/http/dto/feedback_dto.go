package dto

import "time"

type FeedbackRequest struct {
	Category string `json:"category,omitempty"`
	Message  string `json:"message"`
	Rating   *int   `json:"rating,omitempty"`
}

type FeedbackResponse struct {
	ID        int64     `json:"id"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Rating    *int      `json:"rating,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type FeedbackListResponse struct {
	Feedback []FeedbackResponse `json:"feedback"`
}
