package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

const playerIDHeader = "X-Player-ID"

type roomUseCase interface {
	CreateOrJoinRandom(ctx context.Context, playerID string, boardSize int) (string, error)
	CreateInvite(ctx context.Context, playerID string, boardSize int) (string, error)
	JoinInvite(ctx context.Context, playerID, code string) (string, error)
	CreateAIMatch(ctx context.Context, playerID string, boardSize int, level string) (string, error)

	SubscribeRoom(ctx context.Context, roomID string, onUpdate func(entity.RoomView)) (func(), error)

	SubmitMove(ctx context.Context, roomID, playerID string, row, col int) (entity.MoveResult, error)
	PollOutcome(ctx context.Context, roomID string) (entity.Outcome, error)
	LeaveRoom(ctx context.Context, roomID, playerID string) error

	Background(ctx context.Context, roomID, playerID string) error
	Foreground(roomID, playerID string) bool
}

type handlerFunc func(ctx context.Context, sess *session, msg *Message) error

type Server struct {
	logger      *slog.Logger
	roomUseCase roomUseCase
	upgrader    websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, roomUseCase roomUseCase) *Server {
	server := &Server{
		logger:      logger,
		roomUseCase: roomUseCase,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionRandom] = server.handleRandom
	server.handlers[actionInvite] = server.handleInvite
	server.handlers[actionJoin] = server.handleJoin
	server.handlers[actionAI] = server.handleAI
	server.handlers[actionSubscribe] = server.handleSubscribe
	server.handlers[actionMove] = server.handleMove
	server.handlers[actionOutcome] = server.handleOutcome
	server.handlers[actionLeave] = server.handleLeave
	server.handlers[actionBackground] = server.handleBackground
	server.handlers[actionForeground] = server.handleForeground

	return server
}

// Handler serves the live sync channel on /ws.
func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.upgradeToWebSocket)

	return mux
}

func (that *Server) upgradeToWebSocket(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	playerID := req.URL.Query().Get("player_id")
	if playerID == "" {
		playerID = req.Header.Get(playerIDHeader)
	}

	if playerID == "" {
		http.Error(writer, "player id is required", http.StatusUnauthorized)
		return
	}

	if playerID == entity.AIPlayerID {
		http.Error(writer, "player id is reserved", http.StatusForbidden)
		return
	}

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	log = log.With("playerID", playerID)
	log.Info("websocket connection established")

	sess := newSession(playerID, conn)

	ctx, cancel := context.WithCancel(req.Context())
	defer cancel()

	go that.keepAlive(ctx, sess)

	if err = that.handleMessages(ctx, sess); err != nil {
		log.Debug("connection closed", "error", err)
	}

	cancel()
	that.handleDisconnect(ctx, sess)

	if err = conn.Close(); err != nil {
		log.Debug("failed to close connection", "error", err)
	}
}

// handleMessages processes client messages until the connection breaks.
func (that *Server) handleMessages(ctx context.Context, sess *session) error {
	log := that.logger.With("method", "handleMessages", "playerID", sess.playerID)

	sess.conn.SetReadLimit(maxMessageSize)
	if err := sess.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return err
	}
	sess.conn.SetPongHandler(func(string) error {
		return sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var message Message
		if err := sess.conn.ReadJSON(&message); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				log.Warn("failed to unmarshal message", "error", err)
				if err = sess.sendErrorResponse(actionUnknown, "malformed message"); err != nil {
					return err
				}
				continue
			}

			return err
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			if err := sess.sendErrorResponse(actionUnknown, "unknown action: "+message.Action); err != nil {
				return err
			}
			continue
		}

		if err := handler(ctx, sess, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

func (that *Server) keepAlive(ctx context.Context, sess *session) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sess.ping(); err != nil {
				return
			}
		}
	}
}

// handleDisconnect treats a dropped connection as the app going to the
// background in every room the player watched.
func (that *Server) handleDisconnect(ctx context.Context, sess *session) {
	log := that.logger.With("method", "handleDisconnect", "playerID", sess.playerID)

	ctx = context.WithoutCancel(ctx)

	for _, roomID := range sess.closeSubscriptions() {
		err := that.roomUseCase.Background(ctx, roomID, sess.playerID)
		switch {
		case err == nil:
			log.Info("grace period started", "roomID", roomID)
		case errors.Is(err, apperror.ErrRoomNotFound), errors.Is(err, apperror.ErrNotInRoom):
			log.Debug("room already gone", "roomID", roomID)
		default:
			log.Error("failed to start grace period", "roomID", roomID, "error", err)
		}
	}

	log.Info("player disconnected")
}
