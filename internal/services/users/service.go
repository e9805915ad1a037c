package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/model"
)

var ErrNotFound = errors.New("user not found")

type Store interface {
	GetByID(ctx context.Context, userID int64) (model.User, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Me(ctx context.Context, userID int64) (model.User, error) {
	if userID <= 0 {
		return model.User{}, ErrNotFound
	}

	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("load user: %w", err)
	}

	return user, nil
}
