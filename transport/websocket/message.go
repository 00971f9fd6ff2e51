package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

const (
	actionRandom     = "room:random"
	actionInvite     = "room:invite"
	actionJoin       = "room:join"
	actionAI         = "room:ai"
	actionSubscribe  = "room:subscribe"
	actionUpdate     = "room:update"
	actionMove       = "room:move"
	actionOutcome    = "room:outcome"
	actionLeave      = "room:leave"
	actionBackground = "app:background"
	actionForeground = "app:foreground"
	actionUnknown    = "error"
)

type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RequestPayload struct {
	RoomID    string `json:"room_id,omitempty"`
	Code      string `json:"code,omitempty"`
	BoardSize int    `json:"board_size,omitempty"`
	Level     string `json:"level,omitempty"`
	Row       *int   `json:"row,omitempty"`
	Col       *int   `json:"col,omitempty"`
}

type ResponsePayload struct {
	RoomID  string            `json:"room_id,omitempty"`
	Room    *entity.RoomView  `json:"room,omitempty"`
	Result  entity.MoveResult `json:"result,omitempty"`
	Outcome entity.Outcome    `json:"outcome,omitempty"`
	Error   string            `json:"error,omitempty"`
}
