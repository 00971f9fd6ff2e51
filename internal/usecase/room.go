package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/tictactoe"
)

type RoomUseCase interface {
	CreateOrJoinRandom(ctx context.Context, playerID string, boardSize int) (string, error)
	CreateInvite(ctx context.Context, playerID string, boardSize int) (string, error)
	JoinInvite(ctx context.Context, playerID, code string) (string, error)
	CreateAIMatch(ctx context.Context, playerID string, boardSize int, level string) (string, error)

	GetRoom(ctx context.Context, roomID string) (entity.RoomView, error)
	SubscribeRoom(ctx context.Context, roomID string, onUpdate func(entity.RoomView)) (func(), error)

	SubmitMove(ctx context.Context, roomID, playerID string, row, col int) (entity.MoveResult, error)
	PlayAITurn(ctx context.Context, roomID string) (entity.MoveResult, error)
	PollOutcome(ctx context.Context, roomID string) (entity.Outcome, error)
	LeaveRoom(ctx context.Context, roomID, playerID string) error

	Background(ctx context.Context, roomID, playerID string) error
	Foreground(roomID, playerID string) bool

	GetProfile(ctx context.Context, playerID string) (*entity.Profile, error)
	UpdateProfile(ctx context.Context, profile *entity.Profile) (*entity.Profile, error)
}

type roomRepo interface {
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	Subscribe(ctx context.Context, id string, onUpdate func(*entity.Room)) (func(), error)
}

type matchmaker interface {
	CreateOrJoinRandom(ctx context.Context, playerID string, boardSize int) (string, error)
	CreateInvite(ctx context.Context, playerID string, boardSize int) (string, error)
	JoinInvite(ctx context.Context, playerID, code string) (string, error)
	CreateAIMatch(ctx context.Context, playerID string, boardSize int, level string) (string, error)
}

type gamePlay interface {
	SubmitMove(ctx context.Context, roomID, playerID string, row, col int) (entity.MoveResult, error)
	PlayAITurn(ctx context.Context, roomID string) (entity.MoveResult, error)
}

type lifecycle interface {
	CheckAndFinalize(ctx context.Context, roomID string) (entity.Outcome, error)
	Leave(ctx context.Context, roomID, playerID string) error
}

type gracePeriod interface {
	Schedule(roomID, playerID string)
	Cancel(roomID, playerID string) bool
}

type playerService interface {
	GetProfile(ctx context.Context, id string) (*entity.Profile, error)
	UpdateProfile(ctx context.Context, profile *entity.Profile) (*entity.Profile, error)
}

type roomUseCase struct {
	logger *slog.Logger

	roomRepo      roomRepo
	matchmaker    matchmaker
	gamePlay      gamePlay
	lifecycle     lifecycle
	gracePeriod   gracePeriod
	playerService playerService
}

func NewRoomUseCase(
	logger *slog.Logger,
	roomRepo roomRepo,
	matchmaker matchmaker,
	gamePlay gamePlay,
	lifecycle lifecycle,
	gracePeriod gracePeriod,
	playerService playerService,
) RoomUseCase {
	return &roomUseCase{
		logger: logger,

		roomRepo:      roomRepo,
		matchmaker:    matchmaker,
		gamePlay:      gamePlay,
		lifecycle:     lifecycle,
		gracePeriod:   gracePeriod,
		playerService: playerService,
	}
}

func (that *roomUseCase) CreateOrJoinRandom(ctx context.Context, playerID string, boardSize int) (string, error) {
	return that.matchmaker.CreateOrJoinRandom(ctx, playerID, boardSize)
}

func (that *roomUseCase) CreateInvite(ctx context.Context, playerID string, boardSize int) (string, error) {
	return that.matchmaker.CreateInvite(ctx, playerID, boardSize)
}

func (that *roomUseCase) JoinInvite(ctx context.Context, playerID, code string) (string, error) {
	return that.matchmaker.JoinInvite(ctx, playerID, code)
}

func (that *roomUseCase) CreateAIMatch(ctx context.Context, playerID string, boardSize int, level string) (string, error) {
	return that.matchmaker.CreateAIMatch(ctx, playerID, boardSize, level)
}

func (that *roomUseCase) GetRoom(ctx context.Context, roomID string) (entity.RoomView, error) {
	room, err := that.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return entity.RoomView{}, fmt.Errorf("failed to get room: %w", err)
	}

	return entity.NewRoomView(roomID, room), nil
}

// SubscribeRoom pushes a view of the room now and after every change.
func (that *roomUseCase) SubscribeRoom(ctx context.Context, roomID string, onUpdate func(entity.RoomView)) (func(), error) {
	unsubscribe, err := that.roomRepo.Subscribe(ctx, roomID, func(room *entity.Room) {
		onUpdate(entity.NewRoomView(roomID, room))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to room: %w", err)
	}

	return unsubscribe, nil
}

// SubmitMove applies the player's move and, in an AI room, lets the AI answer.
// The AI answer never turns an accepted move into an error.
func (that *roomUseCase) SubmitMove(ctx context.Context, roomID, playerID string, row, col int) (entity.MoveResult, error) {
	log := that.logger.With("method", "SubmitMove", "roomID", roomID, "playerID", playerID)

	result, err := that.gamePlay.SubmitMove(ctx, roomID, playerID, row, col)
	if err != nil || !result.IsAccepted() {
		return result, err
	}

	room, err := that.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		log.Error("failed to read room after move", "error", err)
		return result, nil
	}

	if !room.IsAIMode || tictactoe.Evaluate(room.Board, room.BoardSize).IsTerminal() {
		return result, nil
	}

	aiResult, err := that.gamePlay.PlayAITurn(ctx, roomID)
	switch {
	case err != nil:
		log.Error("ai failed to answer", "error", err)
	case !aiResult.IsAccepted():
		log.Warn("ai answer rejected", "result", aiResult)
	}

	return result, nil
}

func (that *roomUseCase) PlayAITurn(ctx context.Context, roomID string) (entity.MoveResult, error) {
	return that.gamePlay.PlayAITurn(ctx, roomID)
}

func (that *roomUseCase) PollOutcome(ctx context.Context, roomID string) (entity.Outcome, error) {
	return that.lifecycle.CheckAndFinalize(ctx, roomID)
}

func (that *roomUseCase) LeaveRoom(ctx context.Context, roomID, playerID string) error {
	that.gracePeriod.Cancel(roomID, playerID)

	return that.lifecycle.Leave(ctx, roomID, playerID)
}

// Background starts the grace period of a player whose client went inactive.
// AI rooms keep no grace period.
func (that *roomUseCase) Background(ctx context.Context, roomID, playerID string) error {
	log := that.logger.With("method", "Background", "roomID", roomID, "playerID", playerID)

	room, err := that.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return fmt.Errorf("failed to get room: %w", err)
	}

	if !room.HasPlayer(playerID) {
		return apperror.ErrNotInRoom
	}

	if room.IsAIMode {
		log.Debug("ai room, no grace period")
		return nil
	}

	that.gracePeriod.Schedule(roomID, playerID)

	return nil
}

func (that *roomUseCase) Foreground(roomID, playerID string) bool {
	return that.gracePeriod.Cancel(roomID, playerID)
}

func (that *roomUseCase) GetProfile(ctx context.Context, playerID string) (*entity.Profile, error) {
	return that.playerService.GetProfile(ctx, playerID)
}

func (that *roomUseCase) UpdateProfile(ctx context.Context, profile *entity.Profile) (*entity.Profile, error) {
	return that.playerService.UpdateProfile(ctx, profile)
}
