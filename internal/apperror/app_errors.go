package apperror

import "errors"

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrNotInviteRoom  = errors.New("room is not invite-only")
	ErrNotAIRoom      = errors.New("room is not an ai room")
	ErrRoomFull       = errors.New("room is already full")
	ErrNotInRoom      = errors.New("player is not in the room")
	ErrInvalidAILevel = errors.New("unknown ai level")
	ErrInvalidPlayer  = errors.New("player id is required")
	ErrNicknameTaken  = errors.New("nickname is already taken")
	ErrConflict       = errors.New("room was modified concurrently")
)
