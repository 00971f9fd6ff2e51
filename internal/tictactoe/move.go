package tictactoe

import "github.com/rocketscienceinc/tictactoe-rooms/internal/entity"

// ApplyMove claims (row, col) for playerID. On anything but MoveAccepted
// the room is left untouched; on success the cell and the turn change together.
func ApplyMove(room *entity.Room, playerID string, row, col int) entity.MoveResult {
	if len(room.Players) != 2 {
		return entity.MoveRoomNotReady
	}

	symbol, ok := room.SymbolOf(playerID)
	if !ok {
		return entity.MoveNotParticipant
	}

	if symbol != room.Turn {
		return entity.MoveWrongTurn
	}

	index, err := room.Board.Index(room.BoardSize, row, col)
	if err != nil {
		return entity.MoveInvalidCell
	}

	if room.Board[index] != entity.EmptyCell {
		return entity.MoveCellOccupied
	}

	if Evaluate(room.Board, room.BoardSize).IsTerminal() {
		return entity.MoveGameOver
	}

	room.Board[index] = symbol
	room.Turn = symbol.Toggle()

	return entity.MoveAccepted
}
