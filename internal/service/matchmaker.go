package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/repository"
)

var errRoomTaken = errors.New("room is no longer waiting")

type Matchmaker interface {
	CreateOrJoinRandom(ctx context.Context, playerID string, boardSize int) (string, error)
	CreateInvite(ctx context.Context, playerID string, boardSize int) (string, error)
	JoinInvite(ctx context.Context, playerID, code string) (string, error)
	CreateAIMatch(ctx context.Context, playerID string, boardSize int, level string) (string, error)
}

type matchmaker struct {
	logger *slog.Logger

	roomRepo roomRepo
}

func NewMatchmaker(logger *slog.Logger, roomRepo roomRepo) Matchmaker {
	return &matchmaker{
		logger:   logger,
		roomRepo: roomRepo,
	}
}

// CreateOrJoinRandom seats the player in the oldest waiting public room of the
// requested size, or opens a new one. Each join is a compare-and-swap on the
// room, so a room claimed by someone else in the meantime is skipped.
func (that *matchmaker) CreateOrJoinRandom(ctx context.Context, playerID string, boardSize int) (string, error) {
	log := that.logger.With("method", "CreateOrJoinRandom", "playerID", playerID)

	if playerID == "" || playerID == entity.AIPlayerID {
		return "", apperror.ErrInvalidPlayer
	}

	size := entity.ClampBoardSize(boardSize)

	candidates, err := that.roomRepo.FindWaiting(ctx, size, false)
	if err != nil {
		return "", fmt.Errorf("failed to find waiting rooms: %w", err)
	}

	for _, candidate := range candidates {
		if candidate.HasPlayer(playerID) {
			continue
		}

		room, err := that.roomRepo.Update(ctx, candidate.ID, joinWaiting(playerID, size))
		switch {
		case err == nil:
			log.Info("joined waiting room", "roomID", room.ID)
			return room.ID, nil
		case errors.Is(err, errRoomTaken), errors.Is(err, apperror.ErrRoomNotFound), errors.Is(err, apperror.ErrConflict):
			log.Debug("waiting room taken by another player", "roomID", candidate.ID)
		default:
			return "", fmt.Errorf("failed to join waiting room: %w", err)
		}
	}

	id, err := that.roomRepo.Create(ctx, entity.NewRoom(playerID, size, false))
	if err != nil {
		return "", fmt.Errorf("failed to create room: %w", err)
	}

	log.Info("created waiting room", "roomID", id, "boardSize", size)

	return id, nil
}

func joinWaiting(playerID string, boardSize int) repository.Mutation {
	return func(room *entity.Room) (repository.Action, error) {
		if !room.IsWaitingFor(boardSize, false) || room.IsFull() || room.HasPlayer(playerID) {
			return repository.ActionSkip, errRoomTaken
		}

		room.AddPlayer(playerID)

		return repository.ActionSave, nil
	}
}

// CreateInvite opens an invite-only room. Its id is the invite code.
func (that *matchmaker) CreateInvite(ctx context.Context, playerID string, boardSize int) (string, error) {
	log := that.logger.With("method", "CreateInvite", "playerID", playerID)

	if playerID == "" || playerID == entity.AIPlayerID {
		return "", apperror.ErrInvalidPlayer
	}

	id, err := that.roomRepo.Create(ctx, entity.NewRoom(playerID, boardSize, true))
	if err != nil {
		return "", fmt.Errorf("failed to create invite room: %w", err)
	}

	log.Info("created invite room", "roomID", id)

	return id, nil
}

func (that *matchmaker) JoinInvite(ctx context.Context, playerID, code string) (string, error) {
	log := that.logger.With("method", "JoinInvite", "playerID", playerID, "roomID", code)

	if playerID == "" || playerID == entity.AIPlayerID {
		return "", apperror.ErrInvalidPlayer
	}

	_, err := that.roomRepo.Update(ctx, code, func(room *entity.Room) (repository.Action, error) {
		if !room.InviteOnly {
			return repository.ActionSkip, apperror.ErrNotInviteRoom
		}

		if room.HasPlayer(playerID) {
			return repository.ActionSkip, nil
		}

		if room.IsFull() {
			return repository.ActionSkip, apperror.ErrRoomFull
		}

		room.AddPlayer(playerID)

		return repository.ActionSave, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to join invite room: %w", err)
	}

	log.Info("joined invite room")

	return code, nil
}

func (that *matchmaker) CreateAIMatch(ctx context.Context, playerID string, boardSize int, level string) (string, error) {
	log := that.logger.With("method", "CreateAIMatch", "playerID", playerID)

	if playerID == "" || playerID == entity.AIPlayerID {
		return "", apperror.ErrInvalidPlayer
	}

	if !entity.IsValidAILevel(level) {
		return "", fmt.Errorf("%w: %q", apperror.ErrInvalidAILevel, level)
	}

	id, err := that.roomRepo.Create(ctx, entity.NewAIRoom(playerID, boardSize, level))
	if err != nil {
		return "", fmt.Errorf("failed to create ai room: %w", err)
	}

	log.Info("created ai room", "roomID", id, "level", level)

	return id, nil
}
