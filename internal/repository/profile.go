package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

const (
	nicknamesKey = "nicknames"

	profileSaveRetries = 3
)

type ProfileRepository interface {
	Save(ctx context.Context, profile *entity.Profile) error
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
}

type dbProfile struct {
	client *redis.Client
}

func NewProfileRepository(client *redis.Client) ProfileRepository {
	return &dbProfile{
		client: client,
	}
}

func profileKey(id string) string {
	return "player:" + id
}

// Save stores the profile and claims its nickname. A nickname held by another
// player fails with ErrNicknameTaken; the previous nickname is released.
func (that *dbProfile) Save(ctx context.Context, profile *entity.Profile) error {
	key := profileKey(profile.ID)

	for range profileSaveRetries {
		err := that.client.Watch(ctx, func(tx *redis.Tx) error {
			if profile.Nickname != "" {
				owner, err := tx.HGet(ctx, nicknamesKey, profile.Nickname).Result()
				if err != nil && !errors.Is(err, redis.Nil) {
					return fmt.Errorf("failed to check nickname: %w", err)
				}
				if owner != "" && owner != profile.ID {
					return apperror.ErrNicknameTaken
				}
			}

			previous, err := tx.HGet(ctx, key, "nickname").Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return fmt.Errorf("failed to read previous nickname: %w", err)
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				if previous != "" && previous != profile.Nickname {
					pipe.HDel(ctx, nicknamesKey, previous)
				}
				if profile.Nickname != "" {
					pipe.HSet(ctx, nicknamesKey, profile.Nickname, profile.ID)
				}
				pipe.HSet(ctx, key, "id", profile.ID, "nickname", profile.Nickname, "avatar_key", profile.AvatarKey)
				return nil
			})
			return err
		}, key, nicknamesKey)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		if err != nil {
			return err
		}

		return nil
	}

	return fmt.Errorf("failed to save profile: %w", apperror.ErrConflict)
}

// GetByID returns the stored profile, or the default profile for an unknown player.
func (that *dbProfile) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	values, err := that.client.HGetAll(ctx, profileKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get profile by id: %w", err)
	}

	profile := entity.NewProfile(id)
	if len(values) == 0 {
		return profile, nil
	}

	profile.Nickname = values["nickname"]
	if avatar := values["avatar_key"]; avatar != "" {
		profile.AvatarKey = avatar
	}

	return profile, nil
}
