package rest

import "github.com/rocketscienceinc/tictactoe-rooms/internal/entity"

type createRoomRequest struct {
	BoardSize int `json:"board_size"`
}

type createAIMatchRequest struct {
	BoardSize int    `json:"board_size"`
	Level     string `json:"level" binding:"required"`
}

type moveRequest struct {
	Row *int `json:"row" binding:"required"`
	Col *int `json:"col" binding:"required"`
}

type updateProfileRequest struct {
	Nickname  string `json:"nickname" binding:"max=32"`
	AvatarKey string `json:"avatar_key" binding:"max=64"`
}

type roomResponse struct {
	RoomID string `json:"room_id"`
}

type moveResponse struct {
	Result   entity.MoveResult `json:"result"`
	Accepted bool              `json:"accepted"`
}

type outcomeResponse struct {
	Outcome entity.Outcome `json:"outcome"`
}

type foregroundResponse struct {
	Cancelled bool `json:"cancelled"`
}

type errorResponse struct {
	Error string `json:"error"`
}
