package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/repository"
	"github.com/rocketscienceinc/tictactoe-rooms/testing/suite"
)

func newMatchmaker(st *suite.Suite) (Matchmaker, repository.RoomRepository) {
	roomRepo := repository.NewRoomRepository(st.Storage, st.Room)
	return NewMatchmaker(st.Logger, roomRepo), roomRepo
}

func TestMatchmaker_CreateOrJoinRandom(t *testing.T) {
	t.Run("Second player joins the first player's room", func(t *testing.T) {
		ctx, st := suite.New(t)
		matchmaker, roomRepo := newMatchmaker(st)

		// Given: player A is waiting for a 3x3 game
		first, err := matchmaker.CreateOrJoinRandom(ctx, "alice", 3)
		require.NoError(t, err)

		// When: player B asks for a 3x3 game
		second, err := matchmaker.CreateOrJoinRandom(ctx, "bob", 3)

		// Then: both share one full room, A is X and B is O
		require.NoError(t, err)
		assert.Equal(t, first, second)

		room, err := roomRepo.GetByID(ctx, first)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusFull, room.Status)
		assert.Equal(t, []string{"alice", "bob"}, room.Players)
		assert.False(t, room.InviteOnly)
	})

	t.Run("Board size is clamped and sizes are not mixed", func(t *testing.T) {
		ctx, st := suite.New(t)
		matchmaker, roomRepo := newMatchmaker(st)

		small, err := matchmaker.CreateOrJoinRandom(ctx, "alice", 1)
		require.NoError(t, err)

		large, err := matchmaker.CreateOrJoinRandom(ctx, "bob", 42)
		require.NoError(t, err)

		assert.NotEqual(t, small, large)

		room, err := roomRepo.GetByID(ctx, small)
		require.NoError(t, err)
		assert.Equal(t, 3, room.BoardSize)

		room, err = roomRepo.GetByID(ctx, large)
		require.NoError(t, err)
		assert.Equal(t, 5, room.BoardSize)
	})

	t.Run("A player never joins their own room", func(t *testing.T) {
		ctx, st := suite.New(t)
		matchmaker, _ := newMatchmaker(st)

		first, err := matchmaker.CreateOrJoinRandom(ctx, "alice", 4)
		require.NoError(t, err)

		second, err := matchmaker.CreateOrJoinRandom(ctx, "alice", 4)
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("Invite rooms are not part of the random pool", func(t *testing.T) {
		ctx, st := suite.New(t)
		matchmaker, _ := newMatchmaker(st)

		invite, err := matchmaker.CreateInvite(ctx, "alice", 3)
		require.NoError(t, err)

		random, err := matchmaker.CreateOrJoinRandom(ctx, "bob", 3)
		require.NoError(t, err)

		assert.NotEqual(t, invite, random)
	})

	t.Run("Racing players never overfill a room", func(t *testing.T) {
		ctx, st := suite.New(t)
		matchmaker, roomRepo := newMatchmaker(st)

		// Given: one waiting room
		waiting, err := matchmaker.CreateOrJoinRandom(ctx, "host", 3)
		require.NoError(t, err)

		// When: several players race for it
		const racers = 6
		ids := make([]string, racers)
		var wg sync.WaitGroup
		for i := range racers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				id, err := matchmaker.CreateOrJoinRandom(context.WithoutCancel(ctx), "racer-"+string(rune('a'+i)), 3)
				assert.NoError(t, err)
				ids[i] = id
			}()
		}
		wg.Wait()

		// Then: exactly one racer got the seat and every room has at most two players
		joined := 0
		for _, id := range ids {
			if id == waiting {
				joined++
			}

			room, err := roomRepo.GetByID(ctx, id)
			require.NoError(t, err)
			assert.LessOrEqual(t, len(room.Players), 2)
		}
		assert.Equal(t, 1, joined)

		room, err := roomRepo.GetByID(ctx, waiting)
		require.NoError(t, err)
		assert.Len(t, room.Players, 2)
		assert.Equal(t, entity.StatusFull, room.Status)
	})

	t.Run("Empty player id", func(t *testing.T) {
		ctx, st := suite.New(t)
		matchmaker, _ := newMatchmaker(st)

		_, err := matchmaker.CreateOrJoinRandom(ctx, "", 3)

		require.ErrorIs(t, err, apperror.ErrInvalidPlayer)
	})
}

func TestMatchmaker_Invite(t *testing.T) {
	t.Run("Create then join fills the room in order", func(t *testing.T) {
		ctx, st := suite.New(t)
		matchmaker, roomRepo := newMatchmaker(st)

		// Given: player A shares an invite code
		code, err := matchmaker.CreateInvite(ctx, "alice", 4)
		require.NoError(t, err)

		// When: player B joins with it
		id, err := matchmaker.JoinInvite(ctx, "bob", code)

		// Then: the room is full with A as X and B as O
		require.NoError(t, err)
		assert.Equal(t, code, id)

		room, err := roomRepo.GetByID(ctx, code)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusFull, room.Status)
		assert.Equal(t, []string{"alice", "bob"}, room.Players)
		assert.True(t, room.InviteOnly)
		assert.Equal(t, 4, room.BoardSize)
	})

	t.Run("Joining twice is idempotent", func(t *testing.T) {
		ctx, st := suite.New(t)
		matchmaker, roomRepo := newMatchmaker(st)

		code, err := matchmaker.CreateInvite(ctx, "alice", 3)
		require.NoError(t, err)

		_, err = matchmaker.JoinInvite(ctx, "bob", code)
		require.NoError(t, err)
		id, err := matchmaker.JoinInvite(ctx, "bob", code)
		require.NoError(t, err)
		assert.Equal(t, code, id)

		room, err := roomRepo.GetByID(ctx, code)
		require.NoError(t, err)
		assert.Equal(t, []string{"alice", "bob"}, room.Players)
	})

	t.Run("Unknown code", func(t *testing.T) {
		ctx, st := suite.New(t)
		matchmaker, _ := newMatchmaker(st)

		_, err := matchmaker.JoinInvite(ctx, "bob", "no-such-room")

		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})

	t.Run("Public room cannot be joined by code", func(t *testing.T) {
		ctx, st := suite.New(t)
		matchmaker, _ := newMatchmaker(st)

		id, err := matchmaker.CreateOrJoinRandom(ctx, "alice", 3)
		require.NoError(t, err)

		_, err = matchmaker.JoinInvite(ctx, "bob", id)

		require.ErrorIs(t, err, apperror.ErrNotInviteRoom)
	})

	t.Run("Third player is turned away", func(t *testing.T) {
		ctx, st := suite.New(t)
		matchmaker, _ := newMatchmaker(st)

		code, err := matchmaker.CreateInvite(ctx, "alice", 3)
		require.NoError(t, err)
		_, err = matchmaker.JoinInvite(ctx, "bob", code)
		require.NoError(t, err)

		_, err = matchmaker.JoinInvite(ctx, "carol", code)

		require.ErrorIs(t, err, apperror.ErrRoomFull)
	})
}

func TestMatchmaker_CreateAIMatch(t *testing.T) {
	t.Run("Room is immediately playable", func(t *testing.T) {
		ctx, st := suite.New(t)
		matchmaker, roomRepo := newMatchmaker(st)

		id, err := matchmaker.CreateAIMatch(ctx, "alice", 5, entity.AILevelEasy)
		require.NoError(t, err)

		room, err := roomRepo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, []string{"alice", entity.AIPlayerID}, room.Players)
		assert.Equal(t, entity.StatusPlaying, room.Status)
		assert.True(t, room.IsAIMode)
		assert.Equal(t, entity.AILevelEasy, room.AILevel)
	})

	t.Run("Unknown level", func(t *testing.T) {
		ctx, st := suite.New(t)
		matchmaker, _ := newMatchmaker(st)

		_, err := matchmaker.CreateAIMatch(ctx, "alice", 3, "godlike")

		require.ErrorIs(t, err, apperror.ErrInvalidAILevel)
	})
}
