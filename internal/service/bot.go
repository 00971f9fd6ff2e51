package service

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/tictactoe"
)

type Bot interface {
	// ChooseMove returns the flat index of the cell the AI plays in room.
	ChooseMove(room *entity.Room) (int, error)
}

type bot struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewBot(rnd *rand.Rand) Bot {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint: gosec // it's ok
	}

	return &bot{
		rnd: rnd,
	}
}

func (that *bot) ChooseMove(room *entity.Room) (int, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if room.AILevel == entity.AILevelHard {
		symbol, _ := room.SymbolOf(entity.AIPlayerID)
		return tictactoe.HardMove(that.rnd, room.Board, room.BoardSize, symbol)
	}

	return tictactoe.EasyMove(that.rnd, room.Board)
}
