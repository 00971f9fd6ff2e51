package tictactoe

import (
	"errors"
	"math/rand"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

var ErrNoAvailableMoves = errors.New("no available moves")

// EmptyCells lists the flat indexes of free cells.
func EmptyCells(board entity.Board) []int {
	cells := make([]int, 0, len(board))
	for i, cell := range board {
		if cell == entity.EmptyCell {
			cells = append(cells, i)
		}
	}
	return cells
}

// EasyMove picks a random free cell.
func EasyMove(rnd *rand.Rand, board entity.Board) (int, error) {
	cells := EmptyCells(board)
	if len(cells) == 0 {
		return 0, ErrNoAvailableMoves
	}

	return cells[rnd.Intn(len(cells))], nil
}

// HardMove wins if it can, blocks if it must, takes the centre if free,
// and otherwise plays a random free cell.
func HardMove(rnd *rand.Rand, board entity.Board, size int, symbol entity.Symbol) (int, error) {
	if cell, ok := completingCell(board, size, symbol); ok {
		return cell, nil
	}

	if cell, ok := completingCell(board, size, symbol.Toggle()); ok {
		return cell, nil
	}

	if center := size * size / 2; center < len(board) && board[center] == entity.EmptyCell {
		return center, nil
	}

	return EasyMove(rnd, board)
}

// completingCell finds the single free cell of a line where target holds every other cell.
func completingCell(board entity.Board, size int, target entity.Symbol) (int, bool) {
	if len(board) != size*size {
		return 0, false
	}

	for _, line := range Lines(size) {
		owned, free, freeCell := 0, 0, 0
		for _, index := range line {
			switch board[index] {
			case target:
				owned++
			case entity.EmptyCell:
				free++
				freeCell = index
			}
		}

		if owned == size-1 && free == 1 {
			return freeCell, true
		}
	}

	return 0, false
}
