package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/repository"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/tictactoe"
)

type GamePlay interface {
	SubmitMove(ctx context.Context, roomID, playerID string, row, col int) (entity.MoveResult, error)
	PlayAITurn(ctx context.Context, roomID string) (entity.MoveResult, error)
}

type gamePlay struct {
	logger *slog.Logger

	roomRepo roomRepo
	bot      Bot
}

func NewGamePlay(logger *slog.Logger, roomRepo roomRepo, bot Bot) GamePlay {
	return &gamePlay{
		logger:   logger,
		roomRepo: roomRepo,
		bot:      bot,
	}
}

// SubmitMove applies one move. The cell and the turn are written in the same
// transaction, so two racing submissions for one turn accept exactly one.
// A rejected move is reported as a MoveResult with a nil error.
func (that *gamePlay) SubmitMove(ctx context.Context, roomID, playerID string, row, col int) (entity.MoveResult, error) {
	log := that.logger.With("method", "SubmitMove", "roomID", roomID, "playerID", playerID, "row", row, "col", col)

	// the AI seat is played only through PlayAITurn
	if playerID == "" || playerID == entity.AIPlayerID {
		return "", apperror.ErrInvalidPlayer
	}

	var result entity.MoveResult

	_, err := that.roomRepo.Update(ctx, roomID, func(room *entity.Room) (repository.Action, error) {
		result = applyMove(room, playerID, row, col)
		if !result.IsAccepted() {
			return repository.ActionSkip, nil
		}
		return repository.ActionSave, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to submit move: %w", err)
	}

	if !result.IsAccepted() {
		log.Warn("move rejected", "result", result)
		return result, nil
	}

	log.Debug("move accepted")

	return result, nil
}

// PlayAITurn lets the AI move if it is its turn.
func (that *gamePlay) PlayAITurn(ctx context.Context, roomID string) (entity.MoveResult, error) {
	log := that.logger.With("method", "PlayAITurn", "roomID", roomID)

	var result entity.MoveResult

	_, err := that.roomRepo.Update(ctx, roomID, func(room *entity.Room) (repository.Action, error) {
		if !room.IsAIMode {
			return repository.ActionSkip, apperror.ErrNotAIRoom
		}

		symbol, ok := room.SymbolOf(entity.AIPlayerID)
		if !ok || symbol != room.Turn {
			result = entity.MoveWrongTurn
			return repository.ActionSkip, nil
		}

		if tictactoe.Evaluate(room.Board, room.BoardSize).IsTerminal() {
			result = entity.MoveGameOver
			return repository.ActionSkip, nil
		}

		cell, err := that.bot.ChooseMove(room)
		if err != nil {
			return repository.ActionSkip, fmt.Errorf("bot failed to choose a move: %w", err)
		}

		result = applyMove(room, entity.AIPlayerID, cell/room.BoardSize, cell%room.BoardSize)
		if !result.IsAccepted() {
			return repository.ActionSkip, nil
		}
		return repository.ActionSave, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to play ai turn: %w", err)
	}

	if !result.IsAccepted() {
		log.Warn("ai move rejected", "result", result)
		return result, nil
	}

	log.Debug("ai move accepted")

	return result, nil
}

// applyMove runs the move rules and marks a replayed room full again on its first move.
func applyMove(room *entity.Room, playerID string, row, col int) entity.MoveResult {
	result := tictactoe.ApplyMove(room, playerID, row, col)
	if result.IsAccepted() && room.Status == entity.StatusWaiting && room.IsFull() {
		room.Status = entity.StatusFull
	}
	return result
}
