package entity

import "slices"

// RoomPatch names the fields to merge into a stored room. Nil fields are left untouched.
type RoomPatch struct {
	Players     []string
	Board       Board
	Cells       map[int]Symbol
	Turn        *Symbol
	Status      *Status
	LastOutcome *Outcome
}

// Apply merges the patch into room.
func (that RoomPatch) Apply(room *Room) error {
	if that.Players != nil {
		room.Players = slices.Clone(that.Players)
	}

	if that.Board != nil {
		if len(that.Board) != room.BoardSize*room.BoardSize {
			return ErrInvalidCell
		}
		room.Board = slices.Clone(that.Board)
	}

	for index, symbol := range that.Cells {
		if index < 0 || index >= len(room.Board) {
			return ErrInvalidCell
		}
		room.Board[index] = symbol
	}

	if that.Turn != nil {
		room.Turn = *that.Turn
	}

	if that.Status != nil {
		room.Status = *that.Status
	}

	if that.LastOutcome != nil {
		room.LastOutcome = *that.LastOutcome
	}

	return nil
}
