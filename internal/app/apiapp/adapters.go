package apiapp

import (
	"context"
	"errors"

	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/enums"
	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/model"
	pgrepo "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/repo/postgres"
	authsvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/auth"
	userssvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/users"
)

// authUserStore adapts the postgres user repo to the auth service, translating
// repo sentinels into the auth package's own.
type authUserStore struct {
	repo *pgrepo.UserRepo
}

func (s *authUserStore) Create(ctx context.Context, email, passwordHash, displayName string) (authsvc.UserAccount, error) {
	rec, err := s.repo.Create(ctx, email, passwordHash, displayName)
	if err != nil {
		return authsvc.UserAccount{}, mapUserErr(err)
	}
	return accountFromRecord(rec), nil
}

func (s *authUserStore) FindByEmail(ctx context.Context, email string) (authsvc.UserAccount, error) {
	rec, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return authsvc.UserAccount{}, mapUserErr(err)
	}
	return accountFromRecord(rec), nil
}

func (s *authUserStore) GetByID(ctx context.Context, userID int64) (authsvc.UserAccount, error) {
	rec, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return authsvc.UserAccount{}, mapUserErr(err)
	}
	return accountFromRecord(rec), nil
}

func mapUserErr(err error) error {
	switch {
	case errors.Is(err, pgrepo.ErrEmailTaken):
		return authsvc.ErrEmailTaken
	case errors.Is(err, pgrepo.ErrUserNotFound):
		return authsvc.ErrUserNotFound
	default:
		return err
	}
}

func accountFromRecord(rec pgrepo.UserRecord) authsvc.UserAccount {
	return authsvc.UserAccount{
		ID:           rec.ID,
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
		DisplayName:  rec.DisplayName,
		Role:         rec.Role,
		Tier:         enums.Tier(rec.Tier),
	}
}

// userDirectory serves profile reads for the users service.
type userDirectory struct {
	repo *pgrepo.UserRepo
}

func (d *userDirectory) GetByID(ctx context.Context, userID int64) (model.User, error) {
	rec, err := d.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.User{}, userssvc.ErrNotFound
		}
		return model.User{}, err
	}
	return rec.ToModel()
}
