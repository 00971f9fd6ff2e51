package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

var errRedisDown = errors.New("redis down")

type mockRoomRepo struct{ mock.Mock }

func (that *mockRoomRepo) GetByID(ctx context.Context, id string) (*entity.Room, error) {
	args := that.Called(ctx, id)
	room, _ := args.Get(0).(*entity.Room)
	return room, args.Error(1)
}

func (that *mockRoomRepo) Subscribe(ctx context.Context, id string, onUpdate func(*entity.Room)) (func(), error) {
	args := that.Called(ctx, id, onUpdate)
	unsubscribe, _ := args.Get(0).(func())
	return unsubscribe, args.Error(1)
}

type mockGamePlay struct{ mock.Mock }

func (that *mockGamePlay) SubmitMove(ctx context.Context, roomID, playerID string, row, col int) (entity.MoveResult, error) {
	args := that.Called(ctx, roomID, playerID, row, col)
	return args.Get(0).(entity.MoveResult), args.Error(1)
}

func (that *mockGamePlay) PlayAITurn(ctx context.Context, roomID string) (entity.MoveResult, error) {
	args := that.Called(ctx, roomID)
	return args.Get(0).(entity.MoveResult), args.Error(1)
}

type mockLifecycle struct{ mock.Mock }

func (that *mockLifecycle) CheckAndFinalize(ctx context.Context, roomID string) (entity.Outcome, error) {
	args := that.Called(ctx, roomID)
	return args.Get(0).(entity.Outcome), args.Error(1)
}

func (that *mockLifecycle) Leave(ctx context.Context, roomID, playerID string) error {
	return that.Called(ctx, roomID, playerID).Error(0)
}

type mockGracePeriod struct{ mock.Mock }

func (that *mockGracePeriod) Schedule(roomID, playerID string) {
	that.Called(roomID, playerID)
}

func (that *mockGracePeriod) Cancel(roomID, playerID string) bool {
	return that.Called(roomID, playerID).Bool(0)
}

type useCaseMocks struct {
	roomRepo    *mockRoomRepo
	gamePlay    *mockGamePlay
	lifecycle   *mockLifecycle
	gracePeriod *mockGracePeriod
}

func newRoomUseCase(t *testing.T) (RoomUseCase, useCaseMocks) {
	t.Helper()

	mocks := useCaseMocks{
		roomRepo:    &mockRoomRepo{},
		gamePlay:    &mockGamePlay{},
		lifecycle:   &mockLifecycle{},
		gracePeriod: &mockGracePeriod{},
	}

	t.Cleanup(func() {
		mocks.roomRepo.AssertExpectations(t)
		mocks.gamePlay.AssertExpectations(t)
		mocks.lifecycle.AssertExpectations(t)
		mocks.gracePeriod.AssertExpectations(t)
	})

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	return NewRoomUseCase(logger, mocks.roomRepo, nil, mocks.gamePlay, mocks.lifecycle, mocks.gracePeriod, nil), mocks
}

func TestRoomUseCase_SubmitMove(t *testing.T) {
	ctx := context.Background()

	t.Run("AI answers an accepted move", func(t *testing.T) {
		// Given: an AI room where the human move is accepted
		useCase, mocks := newRoomUseCase(t)
		room := entity.NewAIRoom("alice", 3, entity.AILevelEasy)

		mocks.gamePlay.On("SubmitMove", mock.Anything, "r1", "alice", 0, 0).Return(entity.MoveAccepted, nil).Once()
		mocks.roomRepo.On("GetByID", mock.Anything, "r1").Return(room, nil).Once()
		mocks.gamePlay.On("PlayAITurn", mock.Anything, "r1").Return(entity.MoveAccepted, nil).Once()

		// When: the human moves
		result, err := useCase.SubmitMove(ctx, "r1", "alice", 0, 0)

		// Then: the move is accepted and the AI played
		require.NoError(t, err)
		assert.Equal(t, entity.MoveAccepted, result)
	})

	t.Run("Rejected move does not wake the AI", func(t *testing.T) {
		useCase, mocks := newRoomUseCase(t)

		mocks.gamePlay.On("SubmitMove", mock.Anything, "r1", "alice", 0, 0).Return(entity.MoveCellOccupied, nil).Once()

		result, err := useCase.SubmitMove(ctx, "r1", "alice", 0, 0)

		require.NoError(t, err)
		assert.Equal(t, entity.MoveCellOccupied, result)
	})

	t.Run("Human room has no AI answer", func(t *testing.T) {
		useCase, mocks := newRoomUseCase(t)
		room := entity.NewRoom("alice", 3, false)
		room.AddPlayer("bob")

		mocks.gamePlay.On("SubmitMove", mock.Anything, "r1", "alice", 1, 1).Return(entity.MoveAccepted, nil).Once()
		mocks.roomRepo.On("GetByID", mock.Anything, "r1").Return(room, nil).Once()

		result, err := useCase.SubmitMove(ctx, "r1", "alice", 1, 1)

		require.NoError(t, err)
		assert.Equal(t, entity.MoveAccepted, result)
	})

	t.Run("Decided AI game gets no answer", func(t *testing.T) {
		useCase, mocks := newRoomUseCase(t)
		room := entity.NewAIRoom("alice", 3, entity.AILevelEasy)
		room.Board[0], room.Board[1], room.Board[2] = entity.SymbolX, entity.SymbolX, entity.SymbolX

		mocks.gamePlay.On("SubmitMove", mock.Anything, "r1", "alice", 0, 2).Return(entity.MoveAccepted, nil).Once()
		mocks.roomRepo.On("GetByID", mock.Anything, "r1").Return(room, nil).Once()

		result, err := useCase.SubmitMove(ctx, "r1", "alice", 0, 2)

		require.NoError(t, err)
		assert.Equal(t, entity.MoveAccepted, result)
	})

	t.Run("AI failure keeps the accepted move", func(t *testing.T) {
		useCase, mocks := newRoomUseCase(t)
		room := entity.NewAIRoom("alice", 3, entity.AILevelHard)

		mocks.gamePlay.On("SubmitMove", mock.Anything, "r1", "alice", 0, 0).Return(entity.MoveAccepted, nil).Once()
		mocks.roomRepo.On("GetByID", mock.Anything, "r1").Return(room, nil).Once()
		mocks.gamePlay.On("PlayAITurn", mock.Anything, "r1").Return(entity.MoveResult(""), errRedisDown).Once()

		result, err := useCase.SubmitMove(ctx, "r1", "alice", 0, 0)

		require.NoError(t, err)
		assert.Equal(t, entity.MoveAccepted, result)
	})

	t.Run("Store failure is returned", func(t *testing.T) {
		useCase, mocks := newRoomUseCase(t)

		mocks.gamePlay.On("SubmitMove", mock.Anything, "r1", "alice", 0, 0).Return(entity.MoveResult(""), errRedisDown).Once()

		_, err := useCase.SubmitMove(ctx, "r1", "alice", 0, 0)

		require.ErrorIs(t, err, errRedisDown)
	})
}

func TestRoomUseCase_Background(t *testing.T) {
	ctx := context.Background()

	t.Run("Starts the grace period in a human room", func(t *testing.T) {
		useCase, mocks := newRoomUseCase(t)
		room := entity.NewRoom("alice", 3, false)
		room.AddPlayer("bob")

		mocks.roomRepo.On("GetByID", mock.Anything, "r1").Return(room, nil).Once()
		mocks.gracePeriod.On("Schedule", "r1", "bob").Once()

		require.NoError(t, useCase.Background(ctx, "r1", "bob"))
	})

	t.Run("AI room has no grace period", func(t *testing.T) {
		useCase, mocks := newRoomUseCase(t)

		mocks.roomRepo.On("GetByID", mock.Anything, "r1").Return(entity.NewAIRoom("alice", 3, entity.AILevelEasy), nil).Once()

		require.NoError(t, useCase.Background(ctx, "r1", "alice"))
	})

	t.Run("Stranger is rejected", func(t *testing.T) {
		useCase, mocks := newRoomUseCase(t)

		mocks.roomRepo.On("GetByID", mock.Anything, "r1").Return(entity.NewRoom("alice", 3, false), nil).Once()

		err := useCase.Background(ctx, "r1", "mallory")

		require.ErrorIs(t, err, apperror.ErrNotInRoom)
	})

	t.Run("Foreground cancels", func(t *testing.T) {
		useCase, mocks := newRoomUseCase(t)

		mocks.gracePeriod.On("Cancel", "r1", "alice").Return(true).Once()

		assert.True(t, useCase.Foreground("r1", "alice"))
	})
}

func TestRoomUseCase_LeaveRoom(t *testing.T) {
	useCase, mocks := newRoomUseCase(t)

	// Given: a pending grace period for the player
	mocks.gracePeriod.On("Cancel", "r1", "alice").Return(true).Once()
	mocks.lifecycle.On("Leave", mock.Anything, "r1", "alice").Return(nil).Once()

	// When: the player leaves explicitly
	err := useCase.LeaveRoom(context.Background(), "r1", "alice")

	// Then: the timer is disarmed and the leave goes through
	require.NoError(t, err)
}

func TestRoomUseCase_SubscribeRoom(t *testing.T) {
	useCase, mocks := newRoomUseCase(t)

	room := entity.NewRoom("alice", 3, true)
	room.ID = "r1"

	mocks.roomRepo.On("Subscribe", mock.Anything, "r1", mock.Anything).
		Run(func(args mock.Arguments) {
			onUpdate := args.Get(2).(func(*entity.Room))
			onUpdate(room)
			onUpdate(nil)
		}).
		Return(func() {}, nil).
		Once()

	var views []entity.RoomView
	unsubscribe, err := useCase.SubscribeRoom(context.Background(), "r1", func(view entity.RoomView) {
		views = append(views, view)
	})

	require.NoError(t, err)
	require.NotNil(t, unsubscribe)
	require.Len(t, views, 2)
	assert.Equal(t, "r1", views[0].ID)
	assert.Len(t, views[0].Board, 3)
	assert.True(t, views[1].Deleted)
}

func TestRoomUseCase_PollOutcome(t *testing.T) {
	useCase, mocks := newRoomUseCase(t)

	mocks.lifecycle.On("CheckAndFinalize", mock.Anything, "r1").Return(entity.OutcomeTie, nil).Once()

	outcome, err := useCase.PollOutcome(context.Background(), "r1")

	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeTie, outcome)
}
