package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

type PlayerService interface {
	GetProfile(ctx context.Context, id string) (*entity.Profile, error)
	UpdateProfile(ctx context.Context, profile *entity.Profile) (*entity.Profile, error)
}

type profileRepo interface {
	Save(ctx context.Context, profile *entity.Profile) error
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
}

type playerService struct {
	profileRepo profileRepo
}

func NewPlayerService(profileRepo profileRepo) PlayerService {
	return &playerService{
		profileRepo: profileRepo,
	}
}

func (that *playerService) GetProfile(ctx context.Context, id string) (*entity.Profile, error) {
	if id == "" {
		return nil, apperror.ErrInvalidPlayer
	}

	profile, err := that.profileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get profile by id %w", err)
	}

	return profile, nil
}

func (that *playerService) UpdateProfile(ctx context.Context, profile *entity.Profile) (*entity.Profile, error) {
	if profile.ID == "" || profile.ID == entity.AIPlayerID {
		return nil, apperror.ErrInvalidPlayer
	}

	updated := &entity.Profile{
		ID:        profile.ID,
		Nickname:  strings.TrimSpace(profile.Nickname),
		AvatarKey: profile.AvatarKey,
	}
	if updated.AvatarKey == "" {
		updated.AvatarKey = entity.DefaultAvatarKey
	}

	if err := that.profileRepo.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("update profile %w", err)
	}

	return updated, nil
}
