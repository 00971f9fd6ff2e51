package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

type roomUseCase interface {
	CreateOrJoinRandom(ctx context.Context, playerID string, boardSize int) (string, error)
	CreateInvite(ctx context.Context, playerID string, boardSize int) (string, error)
	JoinInvite(ctx context.Context, playerID, code string) (string, error)
	CreateAIMatch(ctx context.Context, playerID string, boardSize int, level string) (string, error)

	GetRoom(ctx context.Context, roomID string) (entity.RoomView, error)

	SubmitMove(ctx context.Context, roomID, playerID string, row, col int) (entity.MoveResult, error)
	PlayAITurn(ctx context.Context, roomID string) (entity.MoveResult, error)
	PollOutcome(ctx context.Context, roomID string) (entity.Outcome, error)
	LeaveRoom(ctx context.Context, roomID, playerID string) error

	Background(ctx context.Context, roomID, playerID string) error
	Foreground(roomID, playerID string) bool

	GetProfile(ctx context.Context, playerID string) (*entity.Profile, error)
	UpdateProfile(ctx context.Context, profile *entity.Profile) (*entity.Profile, error)
}

type Handlers struct {
	logger      *slog.Logger
	roomUseCase roomUseCase
}

func NewHandlers(logger *slog.Logger, roomUseCase roomUseCase) *Handlers {
	return &Handlers{
		logger:      logger,
		roomUseCase: roomUseCase,
	}
}

func (that *Handlers) CreateOrJoinRandom(c *gin.Context) {
	var req createRoomRequest
	if !that.bindOptional(c, &req) {
		return
	}

	roomID, err := that.roomUseCase.CreateOrJoinRandom(c.Request.Context(), c.GetString(playerIDKey), req.BoardSize)
	if err != nil {
		that.fail(c, "CreateOrJoinRandom", err)
		return
	}

	c.JSON(http.StatusOK, roomResponse{RoomID: roomID})
}

func (that *Handlers) CreateInvite(c *gin.Context) {
	var req createRoomRequest
	if !that.bindOptional(c, &req) {
		return
	}

	roomID, err := that.roomUseCase.CreateInvite(c.Request.Context(), c.GetString(playerIDKey), req.BoardSize)
	if err != nil {
		that.fail(c, "CreateInvite", err)
		return
	}

	c.JSON(http.StatusCreated, roomResponse{RoomID: roomID})
}

func (that *Handlers) JoinInvite(c *gin.Context) {
	roomID, err := that.roomUseCase.JoinInvite(c.Request.Context(), c.GetString(playerIDKey), c.Param("code"))
	if err != nil {
		that.fail(c, "JoinInvite", err)
		return
	}

	c.JSON(http.StatusOK, roomResponse{RoomID: roomID})
}

func (that *Handlers) CreateAIMatch(c *gin.Context) {
	var req createAIMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	roomID, err := that.roomUseCase.CreateAIMatch(c.Request.Context(), c.GetString(playerIDKey), req.BoardSize, req.Level)
	if err != nil {
		that.fail(c, "CreateAIMatch", err)
		return
	}

	c.JSON(http.StatusCreated, roomResponse{RoomID: roomID})
}

func (that *Handlers) GetRoom(c *gin.Context) {
	view, err := that.roomUseCase.GetRoom(c.Request.Context(), c.Param("id"))
	if err != nil {
		that.fail(c, "GetRoom", err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (that *Handlers) SubmitMove(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := that.roomUseCase.SubmitMove(c.Request.Context(), c.Param("id"), c.GetString(playerIDKey), *req.Row, *req.Col)
	if err != nil {
		that.fail(c, "SubmitMove", err)
		return
	}

	c.JSON(http.StatusOK, moveResponse{Result: result, Accepted: result.IsAccepted()})
}

func (that *Handlers) PlayAITurn(c *gin.Context) {
	result, err := that.roomUseCase.PlayAITurn(c.Request.Context(), c.Param("id"))
	if err != nil {
		that.fail(c, "PlayAITurn", err)
		return
	}

	c.JSON(http.StatusOK, moveResponse{Result: result, Accepted: result.IsAccepted()})
}

func (that *Handlers) PollOutcome(c *gin.Context) {
	outcome, err := that.roomUseCase.PollOutcome(c.Request.Context(), c.Param("id"))
	if err != nil {
		that.fail(c, "PollOutcome", err)
		return
	}

	c.JSON(http.StatusOK, outcomeResponse{Outcome: outcome})
}

func (that *Handlers) LeaveRoom(c *gin.Context) {
	if err := that.roomUseCase.LeaveRoom(c.Request.Context(), c.Param("id"), c.GetString(playerIDKey)); err != nil {
		that.fail(c, "LeaveRoom", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (that *Handlers) Background(c *gin.Context) {
	if err := that.roomUseCase.Background(c.Request.Context(), c.Param("id"), c.GetString(playerIDKey)); err != nil {
		that.fail(c, "Background", err)
		return
	}

	c.Status(http.StatusAccepted)
}

func (that *Handlers) Foreground(c *gin.Context) {
	cancelled := that.roomUseCase.Foreground(c.Param("id"), c.GetString(playerIDKey))

	c.JSON(http.StatusOK, foregroundResponse{Cancelled: cancelled})
}

func (that *Handlers) GetProfile(c *gin.Context) {
	profile, err := that.roomUseCase.GetProfile(c.Request.Context(), c.GetString(playerIDKey))
	if err != nil {
		that.fail(c, "GetProfile", err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (that *Handlers) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	profile, err := that.roomUseCase.UpdateProfile(c.Request.Context(), &entity.Profile{
		ID:        c.GetString(playerIDKey),
		Nickname:  req.Nickname,
		AvatarKey: req.AvatarKey,
	})
	if err != nil {
		that.fail(c, "UpdateProfile", err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// bindOptional binds a JSON body when one is present.
func (that *Handlers) bindOptional(c *gin.Context, req any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}

	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return false
	}

	return true
}

func (that *Handlers) fail(c *gin.Context, method string, err error) {
	status := errorStatus(err)
	log := that.logger.With("method", method, "status", status)

	if status >= http.StatusInternalServerError {
		log.Error("request failed", "error", err)
		c.JSON(status, errorResponse{Error: "store unavailable"})
		return
	}

	log.Debug("request rejected", "error", err)
	c.JSON(status, errorResponse{Error: err.Error()})
}
