package websocket

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	maxMessageSize = 4096
)

// session is one client connection. Writes may come from the read loop,
// the keepalive ticker and room subscriptions at the same time.
type session struct {
	playerID string
	conn     *websocket.Conn

	writeMu sync.Mutex

	subsMu        sync.Mutex
	subscriptions map[string]func()
}

func newSession(playerID string, conn *websocket.Conn) *session {
	return &session{
		playerID:      playerID,
		conn:          conn,
		subscriptions: make(map[string]func()),
	}
}

func (that *session) sendMessage(action string, payload ResponsePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	return that.writeJSON(Message{Action: action, Payload: body})
}

func (that *session) sendErrorResponse(action, errorMsg string) error {
	return that.sendMessage(action, ResponsePayload{Error: errorMsg})
}

func (that *session) writeJSON(msg Message) error {
	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err := that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err := that.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *session) ping() error {
	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	return that.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// subscribe replaces any previous subscription to the same room.
func (that *session) subscribe(roomID string, unsubscribe func()) {
	that.subsMu.Lock()
	previous, ok := that.subscriptions[roomID]
	that.subscriptions[roomID] = unsubscribe
	that.subsMu.Unlock()

	if ok {
		previous()
	}
}

func (that *session) unsubscribe(roomID string) {
	that.subsMu.Lock()
	unsubscribe, ok := that.subscriptions[roomID]
	delete(that.subscriptions, roomID)
	that.subsMu.Unlock()

	if ok {
		unsubscribe()
	}
}

// closeSubscriptions drops every subscription and returns the rooms it held.
func (that *session) closeSubscriptions() []string {
	that.subsMu.Lock()
	subscriptions := that.subscriptions
	that.subscriptions = make(map[string]func())
	that.subsMu.Unlock()

	rooms := make([]string, 0, len(subscriptions))
	for roomID, unsubscribe := range subscriptions {
		unsubscribe()
		rooms = append(rooms, roomID)
	}

	return rooms
}
