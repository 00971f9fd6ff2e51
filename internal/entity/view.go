package entity

// RoomView is the snapshot pushed to subscribers.
type RoomView struct {
	ID          string     `json:"id"`
	Board       [][]Symbol `json:"board"`
	Turn        Symbol     `json:"turn"`
	Players     []string   `json:"players"`
	Status      Status     `json:"status"`
	BoardSize   int        `json:"board_size"`
	InviteOnly  bool       `json:"invite_only"`
	IsAIMode    bool       `json:"is_ai_mode,omitempty"`
	LastOutcome Outcome    `json:"last_outcome,omitempty"`
	Deleted     bool       `json:"deleted,omitempty"`
}

// NewRoomView projects a room for the UI. A nil room yields a deleted view of id.
func NewRoomView(id string, room *Room) RoomView {
	if room == nil {
		return RoomView{ID: id, Deleted: true}
	}

	return RoomView{
		ID:          room.ID,
		Board:       room.Board.Rows(room.BoardSize),
		Turn:        room.Turn,
		Players:     room.Players,
		Status:      room.Status,
		BoardSize:   room.BoardSize,
		InviteOnly:  room.InviteOnly,
		IsAIMode:    room.IsAIMode,
		LastOutcome: room.LastOutcome,
	}
}
