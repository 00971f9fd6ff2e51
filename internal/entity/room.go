package entity

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

type Symbol string

const (
	SymbolX   Symbol = "X"
	SymbolO   Symbol = "O"
	EmptyCell Symbol = ""
)

type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusFull     Status = "full"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

const (
	AILevelEasy = "easy"
	AILevelHard = "hard"

	// AIPlayerID is the sentinel participant of AI rooms.
	AIPlayerID = "AI"
)

const (
	MinBoardSize = 3
	MaxBoardSize = 5

	maxPlayers = 2
)

var ErrInvalidCell = errors.New("invalid cell index")

// Toggle returns the opposite symbol.
func (that Symbol) Toggle() Symbol {
	if that == SymbolX {
		return SymbolO
	}
	return SymbolX
}

// Board is a flat board indexed by row*size+col.
type Board []Symbol

func NewBoard(size int) Board {
	return make(Board, size*size)
}

// Index validates (row, col) against size and returns the flat index.
func (that Board) Index(size, row, col int) (int, error) {
	if row < 0 || row >= size || col < 0 || col >= size || len(that) != size*size {
		return 0, fmt.Errorf("%w: (%d, %d) on %dx%d", ErrInvalidCell, row, col, size, size)
	}
	return row*size + col, nil
}

func (that Board) IsEmpty() bool {
	for _, cell := range that {
		if cell != EmptyCell {
			return false
		}
	}
	return true
}

// Rows splits the board into boardSize rows.
func (that Board) Rows(size int) [][]Symbol {
	rows := make([][]Symbol, 0, size)
	for r := 0; r < size && (r+1)*size <= len(that); r++ {
		rows = append(rows, slices.Clone(that[r*size:(r+1)*size]))
	}
	return rows
}

type Room struct {
	ID          string    `json:"id"`
	Players     []string  `json:"players"`
	Board       Board     `json:"board"`
	BoardSize   int       `json:"board_size"`
	Turn        Symbol    `json:"turn"`
	Status      Status    `json:"status"`
	InviteOnly  bool      `json:"invite_only"`
	IsAIMode    bool      `json:"is_ai_mode,omitempty"`
	AILevel     string    `json:"ai_level,omitempty"`
	LastOutcome Outcome   `json:"last_outcome,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Version     int64     `json:"version"`
}

// ClampBoardSize forces size into [MinBoardSize, MaxBoardSize].
func ClampBoardSize(size int) int {
	return max(MinBoardSize, min(size, MaxBoardSize))
}

func IsValidAILevel(level string) bool {
	return level == AILevelEasy || level == AILevelHard
}

// NewRoom builds a waiting room seated with a single player.
func NewRoom(playerID string, boardSize int, inviteOnly bool) *Room {
	size := ClampBoardSize(boardSize)

	return &Room{
		Players:    []string{playerID},
		Board:      NewBoard(size),
		BoardSize:  size,
		Turn:       SymbolX,
		Status:     StatusWaiting,
		InviteOnly: inviteOnly,
		CreatedAt:  time.Now().UTC(),
	}
}

// NewAIRoom builds an immediately playable room against the AI.
func NewAIRoom(playerID string, boardSize int, level string) *Room {
	room := NewRoom(playerID, boardSize, false)
	room.Players = append(room.Players, AIPlayerID)
	room.Status = StatusPlaying
	room.IsAIMode = true
	room.AILevel = level

	return room
}

func (that *Room) HasPlayer(playerID string) bool {
	return slices.Contains(that.Players, playerID)
}

func (that *Room) IsFull() bool {
	return len(that.Players) >= maxPlayers
}

// SymbolOf returns the symbol of a participant: first entrant is X, second is O.
func (that *Room) SymbolOf(playerID string) (Symbol, bool) {
	switch slices.Index(that.Players, playerID) {
	case 0:
		return SymbolX, true
	case 1:
		return SymbolO, true
	default:
		return EmptyCell, false
	}
}

// HumanPlayers lists participants other than the AI sentinel.
func (that *Room) HumanPlayers() []string {
	humans := make([]string, 0, len(that.Players))
	for _, player := range that.Players {
		if player != AIPlayerID {
			humans = append(humans, player)
		}
	}
	return humans
}

// AddPlayer seats a player and marks the room full once both seats are taken.
func (that *Room) AddPlayer(playerID string) {
	that.Players = append(that.Players, playerID)
	if that.IsFull() {
		that.Status = StatusFull
	}
}

// RemovePlayer drops a player and reopens the room with a fresh board.
func (that *Room) RemovePlayer(playerID string) {
	that.Players = slices.DeleteFunc(slices.Clone(that.Players), func(id string) bool {
		return id == playerID
	})
	that.ResetBoard()
	that.Status = StatusWaiting
}

// ResetBoard empties every cell and gives the first move back to X.
func (that *Room) ResetBoard() {
	that.Board = NewBoard(that.BoardSize)
	that.Turn = SymbolX
}

// IsWaitingFor reports whether the room belongs to the waiting pool for
// the given size and kind.
func (that *Room) IsWaitingFor(boardSize int, inviteOnly bool) bool {
	return that.Status == StatusWaiting && that.BoardSize == boardSize && that.InviteOnly == inviteOnly
}

// Clone returns a deep copy of the room.
func (that *Room) Clone() *Room {
	clone := *that
	clone.Players = slices.Clone(that.Players)
	clone.Board = slices.Clone(that.Board)
	return &clone
}
