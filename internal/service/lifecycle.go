package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/repository"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/tictactoe"
)

type Lifecycle interface {
	CheckAndFinalize(ctx context.Context, roomID string) (entity.Outcome, error)
	Leave(ctx context.Context, roomID, playerID string) error
}

type lifecycle struct {
	logger *slog.Logger

	roomRepo roomRepo
}

func NewLifecycle(logger *slog.Logger, roomRepo roomRepo) Lifecycle {
	return &lifecycle{
		logger:   logger,
		roomRepo: roomRepo,
	}
}

// CheckAndFinalize evaluates the board. A decided invite room is reset for a
// rematch with the same players; any other decided room is marked finished
// and deleted, leaving its outcome readable for a while.
func (that *lifecycle) CheckAndFinalize(ctx context.Context, roomID string) (entity.Outcome, error) {
	log := that.logger.With("method", "CheckAndFinalize", "roomID", roomID)

	var outcome entity.Outcome

	room, err := that.roomRepo.Update(ctx, roomID, func(room *entity.Room) (repository.Action, error) {
		outcome = tictactoe.Evaluate(room.Board, room.BoardSize)
		if !outcome.IsTerminal() {
			return repository.ActionSkip, nil
		}

		if room.InviteOnly {
			room.ResetBoard()
			room.Status = entity.StatusWaiting
			room.LastOutcome = outcome
			return repository.ActionSave, nil
		}

		if room.Status == entity.StatusFinished {
			return repository.ActionSkip, nil
		}

		room.Status = entity.StatusFinished
		room.LastOutcome = outcome
		return repository.ActionSave, nil
	})

	if errors.Is(err, apperror.ErrRoomNotFound) {
		stored, resultErr := that.roomRepo.GetResult(ctx, roomID)
		if resultErr != nil {
			return "", fmt.Errorf("failed to finalize room: %w", resultErr)
		}
		return stored, nil
	}

	if err != nil {
		return "", fmt.Errorf("failed to finalize room: %w", err)
	}

	if !outcome.IsTerminal() || room.InviteOnly {
		if outcome.IsTerminal() {
			log.Info("invite room reset for rematch", "outcome", outcome)
		}
		return outcome, nil
	}

	if err = that.roomRepo.SaveResult(ctx, roomID, outcome); err != nil {
		return "", fmt.Errorf("failed to keep room result: %w", err)
	}

	if err = that.roomRepo.DeleteByID(ctx, roomID); err != nil {
		return "", fmt.Errorf("failed to delete finished room: %w", err)
	}

	log.Info("game finished", "outcome", outcome)

	return outcome, nil
}

// Leave takes the player out of the room. The room is deleted once no human
// is left; otherwise it is reset and reopened for a new opponent.
func (that *lifecycle) Leave(ctx context.Context, roomID, playerID string) error {
	log := that.logger.With("method", "Leave", "roomID", roomID, "playerID", playerID)

	if playerID == "" || playerID == entity.AIPlayerID {
		return apperror.ErrInvalidPlayer
	}

	room, err := that.roomRepo.Update(ctx, roomID, func(room *entity.Room) (repository.Action, error) {
		if !room.HasPlayer(playerID) {
			return repository.ActionSkip, apperror.ErrNotInRoom
		}

		room.RemovePlayer(playerID)

		if len(room.HumanPlayers()) == 0 {
			return repository.ActionDelete, nil
		}
		return repository.ActionSave, nil
	})
	if err != nil {
		return fmt.Errorf("failed to leave room: %w", err)
	}

	if room == nil {
		log.Info("last player left, room deleted")
		return nil
	}

	log.Info("player left, room reopened")

	return nil
}
