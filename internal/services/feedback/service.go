package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/model"
)

var ErrInvalidInput = errors.New("invalid input")

const maxMessageLen = 4000

type FeedbackStore interface {
	Insert(ctx context.Context, fb model.Feedback) (model.Feedback, error)
	ListForUser(ctx context.Context, userID int64, limit int) ([]model.Feedback, error)
}

type Service struct {
	store FeedbackStore
}

func NewService(store FeedbackStore) *Service {
	return &Service{store: store}
}

func (s *Service) Submit(ctx context.Context, userID int64, category, message string, rating *int) (model.Feedback, error) {
	message = strings.TrimSpace(message)
	if message == "" || len(message) > maxMessageLen {
		return model.Feedback{}, ErrInvalidInput
	}
	if rating != nil && (*rating < 1 || *rating > 5) {
		return model.Feedback{}, ErrInvalidInput
	}

	category = strings.TrimSpace(strings.ToLower(category))
	switch category {
	case "", "general":
		category = "general"
	case "bug", "feature", "billing":
	default:
		return model.Feedback{}, ErrInvalidInput
	}

	fb, err := s.store.Insert(ctx, model.Feedback{
		UserID:   userID,
		Category: category,
		Message:  message,
		Rating:   rating,
	})
	if err != nil {
		return model.Feedback{}, fmt.Errorf("submit feedback: %w", err)
	}

	return fb, nil
}

func (s *Service) List(ctx context.Context, userID int64, limit int) ([]model.Feedback, error) {
	return s.store.ListForUser(ctx, userID, limit)
}
