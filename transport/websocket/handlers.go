package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

func (that *Server) handleRandom(ctx context.Context, sess *session, msg *Message) error {
	req, err := decodePayload(msg)
	if err != nil {
		return sess.sendErrorResponse(msg.Action, err.Error())
	}

	roomID, err := that.roomUseCase.CreateOrJoinRandom(ctx, sess.playerID, req.BoardSize)
	return that.replyRoom(sess, msg.Action, roomID, err)
}

func (that *Server) handleInvite(ctx context.Context, sess *session, msg *Message) error {
	req, err := decodePayload(msg)
	if err != nil {
		return sess.sendErrorResponse(msg.Action, err.Error())
	}

	roomID, err := that.roomUseCase.CreateInvite(ctx, sess.playerID, req.BoardSize)
	return that.replyRoom(sess, msg.Action, roomID, err)
}

func (that *Server) handleJoin(ctx context.Context, sess *session, msg *Message) error {
	req, err := decodePayload(msg)
	if err != nil {
		return sess.sendErrorResponse(msg.Action, err.Error())
	}

	code := req.Code
	if code == "" {
		code = req.RoomID
	}

	roomID, err := that.roomUseCase.JoinInvite(ctx, sess.playerID, code)
	return that.replyRoom(sess, msg.Action, roomID, err)
}

func (that *Server) handleAI(ctx context.Context, sess *session, msg *Message) error {
	req, err := decodePayload(msg)
	if err != nil {
		return sess.sendErrorResponse(msg.Action, err.Error())
	}

	roomID, err := that.roomUseCase.CreateAIMatch(ctx, sess.playerID, req.BoardSize, req.Level)
	return that.replyRoom(sess, msg.Action, roomID, err)
}

// handleSubscribe streams room:update messages for the room until the
// connection closes. Subscribing also marks the player as back in the app.
func (that *Server) handleSubscribe(ctx context.Context, sess *session, msg *Message) error {
	log := that.logger.With("method", "handleSubscribe", "playerID", sess.playerID)

	req, err := decodeRoomPayload(msg)
	if err != nil {
		return sess.sendErrorResponse(msg.Action, err.Error())
	}

	log = log.With("roomID", req.RoomID)

	that.roomUseCase.Foreground(req.RoomID, sess.playerID)

	unsubscribe, err := that.roomUseCase.SubscribeRoom(ctx, req.RoomID, func(view entity.RoomView) {
		if err := sess.sendMessage(actionUpdate, ResponsePayload{RoomID: req.RoomID, Room: &view}); err != nil {
			log.Debug("failed to push room update", "error", err)
		}
	})
	if err != nil {
		return that.replyError(sess, msg.Action, err)
	}

	sess.subscribe(req.RoomID, unsubscribe)
	log.Debug("subscribed to room")

	return nil
}

func (that *Server) handleMove(ctx context.Context, sess *session, msg *Message) error {
	req, err := decodeRoomPayload(msg)
	if err != nil {
		return sess.sendErrorResponse(msg.Action, err.Error())
	}

	if req.Row == nil || req.Col == nil {
		return sess.sendErrorResponse(msg.Action, "row and col are required")
	}

	result, err := that.roomUseCase.SubmitMove(ctx, req.RoomID, sess.playerID, *req.Row, *req.Col)
	if err != nil {
		return that.replyError(sess, msg.Action, err)
	}

	return sess.sendMessage(msg.Action, ResponsePayload{RoomID: req.RoomID, Result: result})
}

func (that *Server) handleOutcome(ctx context.Context, sess *session, msg *Message) error {
	req, err := decodeRoomPayload(msg)
	if err != nil {
		return sess.sendErrorResponse(msg.Action, err.Error())
	}

	outcome, err := that.roomUseCase.PollOutcome(ctx, req.RoomID)
	if err != nil {
		return that.replyError(sess, msg.Action, err)
	}

	return sess.sendMessage(msg.Action, ResponsePayload{RoomID: req.RoomID, Outcome: outcome})
}

func (that *Server) handleLeave(ctx context.Context, sess *session, msg *Message) error {
	req, err := decodeRoomPayload(msg)
	if err != nil {
		return sess.sendErrorResponse(msg.Action, err.Error())
	}

	sess.unsubscribe(req.RoomID)

	if err = that.roomUseCase.LeaveRoom(ctx, req.RoomID, sess.playerID); err != nil {
		return that.replyError(sess, msg.Action, err)
	}

	return sess.sendMessage(msg.Action, ResponsePayload{RoomID: req.RoomID})
}

func (that *Server) handleBackground(ctx context.Context, sess *session, msg *Message) error {
	req, err := decodeRoomPayload(msg)
	if err != nil {
		return sess.sendErrorResponse(msg.Action, err.Error())
	}

	if err = that.roomUseCase.Background(ctx, req.RoomID, sess.playerID); err != nil {
		return that.replyError(sess, msg.Action, err)
	}

	return sess.sendMessage(msg.Action, ResponsePayload{RoomID: req.RoomID})
}

func (that *Server) handleForeground(_ context.Context, sess *session, msg *Message) error {
	req, err := decodeRoomPayload(msg)
	if err != nil {
		return sess.sendErrorResponse(msg.Action, err.Error())
	}

	that.roomUseCase.Foreground(req.RoomID, sess.playerID)

	return sess.sendMessage(msg.Action, ResponsePayload{RoomID: req.RoomID})
}

func (that *Server) replyRoom(sess *session, action, roomID string, err error) error {
	if err != nil {
		return that.replyError(sess, action, err)
	}

	return sess.sendMessage(action, ResponsePayload{RoomID: roomID})
}

// replyError reports client errors back over the socket and surfaces store
// failures to the caller for logging.
func (that *Server) replyError(sess *session, action string, err error) error {
	if isClientError(err) {
		return sess.sendErrorResponse(action, err.Error())
	}

	if sendErr := sess.sendErrorResponse(action, "store unavailable"); sendErr != nil {
		return errors.Join(err, sendErr)
	}

	return err
}

func isClientError(err error) bool {
	for _, target := range []error{
		apperror.ErrRoomNotFound,
		apperror.ErrNotInviteRoom,
		apperror.ErrNotAIRoom,
		apperror.ErrRoomFull,
		apperror.ErrNotInRoom,
		apperror.ErrInvalidAILevel,
		apperror.ErrInvalidPlayer,
		apperror.ErrConflict,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

func decodePayload(msg *Message) (RequestPayload, error) {
	var req RequestPayload
	if len(msg.Payload) == 0 {
		return req, nil
	}

	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		return req, fmt.Errorf("invalid payload: %w", err)
	}

	return req, nil
}

func decodeRoomPayload(msg *Message) (RequestPayload, error) {
	req, err := decodePayload(msg)
	if err != nil {
		return req, err
	}

	if req.RoomID == "" {
		return req, errors.New("room_id is required")
	}

	return req, nil
}
