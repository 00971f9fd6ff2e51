package entity

// Outcome is the evaluation of a board.
type Outcome string

const (
	OutcomeX       Outcome = "X"
	OutcomeO       Outcome = "O"
	OutcomeTie     Outcome = "Tie"
	OutcomeOngoing Outcome = "ongoing"
)

// IsTerminal reports whether the outcome ends the current game.
func (that Outcome) IsTerminal() bool {
	return that == OutcomeX || that == OutcomeO || that == OutcomeTie
}

// MoveResult is the typed answer to a move submission.
type MoveResult string

const (
	MoveAccepted       MoveResult = "accepted"
	MoveWrongTurn      MoveResult = "wrong_turn"
	MoveCellOccupied   MoveResult = "cell_occupied"
	MoveRoomNotReady   MoveResult = "room_not_ready"
	MoveNotParticipant MoveResult = "not_participant"
	MoveInvalidCell    MoveResult = "invalid_cell"
	MoveGameOver       MoveResult = "game_over"
)

func (that MoveResult) IsAccepted() bool {
	return that == MoveAccepted
}
