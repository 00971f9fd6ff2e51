package repository

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

const (
	fieldID          = "id"
	fieldPlayers     = "players"
	fieldBoardSize   = "board_size"
	fieldTurn        = "turn"
	fieldStatus      = "status"
	fieldInviteOnly  = "invite_only"
	fieldAIMode      = "ai_mode"
	fieldAILevel     = "ai_level"
	fieldLastOutcome = "last_outcome"
	fieldCreatedAt   = "created_at"
	fieldVersion     = "version"

	cellFieldPrefix = "cell:"
)

func cellField(index int) string {
	return cellFieldPrefix + strconv.Itoa(index)
}

// encodeRoom flattens a room into hash fields, one field per board cell.
func encodeRoom(room *entity.Room) (map[string]string, error) {
	players, err := json.Marshal(room.Players)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal players: %w", err)
	}

	fields := map[string]string{
		fieldID:          room.ID,
		fieldPlayers:     string(players),
		fieldBoardSize:   strconv.Itoa(room.BoardSize),
		fieldTurn:        string(room.Turn),
		fieldStatus:      string(room.Status),
		fieldInviteOnly:  strconv.FormatBool(room.InviteOnly),
		fieldAIMode:      strconv.FormatBool(room.IsAIMode),
		fieldAILevel:     room.AILevel,
		fieldLastOutcome: string(room.LastOutcome),
		fieldCreatedAt:   room.CreatedAt.UTC().Format(time.RFC3339Nano),
		fieldVersion:     strconv.FormatInt(room.Version, 10),
	}

	for i, cell := range room.Board {
		fields[cellField(i)] = string(cell)
	}

	return fields, nil
}

func decodeRoom(values map[string]string) (*entity.Room, error) {
	size, err := strconv.Atoi(values[fieldBoardSize])
	if err != nil || size < entity.MinBoardSize || size > entity.MaxBoardSize {
		return nil, fmt.Errorf("invalid board size %q", values[fieldBoardSize])
	}

	var players []string
	if err = json.Unmarshal([]byte(values[fieldPlayers]), &players); err != nil {
		return nil, fmt.Errorf("failed to unmarshal players: %w", err)
	}

	version, err := strconv.ParseInt(values[fieldVersion], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid version %q: %w", values[fieldVersion], err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, values[fieldCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", values[fieldCreatedAt], err)
	}

	board := entity.NewBoard(size)
	for i := range board {
		board[i] = entity.Symbol(values[cellField(i)])
	}

	return &entity.Room{
		ID:          values[fieldID],
		Players:     players,
		Board:       board,
		BoardSize:   size,
		Turn:        entity.Symbol(values[fieldTurn]),
		Status:      entity.Status(values[fieldStatus]),
		InviteOnly:  values[fieldInviteOnly] == "true",
		IsAIMode:    values[fieldAIMode] == "true",
		AILevel:     values[fieldAILevel],
		LastOutcome: entity.Outcome(values[fieldLastOutcome]),
		CreatedAt:   createdAt,
		Version:     version,
	}, nil
}

// changedFields returns only the hash fields whose value differs between the two rooms.
func changedFields(before, after *entity.Room) (map[string]any, error) {
	old, err := encodeRoom(before)
	if err != nil {
		return nil, err
	}

	current, err := encodeRoom(after)
	if err != nil {
		return nil, err
	}

	changes := make(map[string]any)
	for field, value := range current {
		if previous, ok := old[field]; !ok || previous != value {
			changes[field] = value
		}
	}

	return changes, nil
}

func toArgs(fields map[string]string) map[string]any {
	args := make(map[string]any, len(fields))
	for field, value := range fields {
		args[field] = value
	}
	return args
}
