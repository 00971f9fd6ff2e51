package tictactoe

import "github.com/rocketscienceinc/tictactoe-rooms/internal/entity"

// Lines returns every winning line of a size x size board as flat indexes:
// rows top-to-bottom, columns left-to-right, main diagonal, anti-diagonal.
func Lines(size int) [][]int {
	lines := make([][]int, 0, 2*size+2)

	for r := 0; r < size; r++ {
		line := make([]int, size)
		for c := range line {
			line[c] = r*size + c
		}
		lines = append(lines, line)
	}

	for c := 0; c < size; c++ {
		line := make([]int, size)
		for r := range line {
			line[r] = r*size + c
		}
		lines = append(lines, line)
	}

	diagonal, anti := make([]int, size), make([]int, size)
	for i := 0; i < size; i++ {
		diagonal[i] = i*size + i
		anti[i] = i*size + (size - 1 - i)
	}

	return append(lines, diagonal, anti)
}

// Evaluate reports the winner of the board, a tie, or that the game goes on.
func Evaluate(board entity.Board, size int) entity.Outcome {
	if size <= 0 || len(board) != size*size {
		return entity.OutcomeOngoing
	}

	for _, line := range Lines(size) {
		if winner := lineOwner(board, line); winner != entity.EmptyCell {
			return entity.Outcome(winner)
		}
	}

	for _, cell := range board {
		if cell == entity.EmptyCell {
			return entity.OutcomeOngoing
		}
	}

	return entity.OutcomeTie
}

// lineOwner returns the symbol filling the whole line, or EmptyCell.
func lineOwner(board entity.Board, line []int) entity.Symbol {
	first := board[line[0]]
	if first == entity.EmptyCell {
		return entity.EmptyCell
	}

	for _, index := range line[1:] {
		if board[index] != first {
			return entity.EmptyCell
		}
	}

	return first
}
