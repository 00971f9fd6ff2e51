package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
)

type leaver interface {
	Leave(ctx context.Context, roomID, playerID string) error
}

type graceEntry struct {
	timer *time.Timer
}

// GracePeriod holds the seat of an inactive player for a while before leaving for them.
type GracePeriod struct {
	logger *slog.Logger

	leaver leaver
	delay  time.Duration

	mu      sync.Mutex
	pending map[string]*graceEntry
}

func NewGracePeriod(logger *slog.Logger, leaver leaver, delay time.Duration) *GracePeriod {
	return &GracePeriod{
		logger:  logger,
		leaver:  leaver,
		delay:   delay,
		pending: make(map[string]*graceEntry),
	}
}

func graceKey(roomID, playerID string) string {
	return roomID + "/" + playerID
}

// Schedule arms a delayed leave. Scheduling the same seat again restarts the delay.
func (that *GracePeriod) Schedule(roomID, playerID string) {
	key := graceKey(roomID, playerID)

	that.mu.Lock()
	defer that.mu.Unlock()

	if previous, ok := that.pending[key]; ok {
		previous.timer.Stop()
	}

	entry := &graceEntry{}
	that.pending[key] = entry
	entry.timer = time.AfterFunc(that.delay, func() {
		that.expire(key, entry, roomID, playerID)
	})

	that.logger.Debug("grace period started", "roomID", roomID, "playerID", playerID, "delay", that.delay)
}

// Cancel disarms a pending leave and reports whether one was pending.
func (that *GracePeriod) Cancel(roomID, playerID string) bool {
	key := graceKey(roomID, playerID)

	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.pending[key]
	if !ok {
		return false
	}

	delete(that.pending, key)

	return entry.timer.Stop()
}

// Stop disarms every pending leave.
func (that *GracePeriod) Stop() {
	that.mu.Lock()
	defer that.mu.Unlock()

	for key, entry := range that.pending {
		entry.timer.Stop()
		delete(that.pending, key)
	}
}

func (that *GracePeriod) expire(key string, entry *graceEntry, roomID, playerID string) {
	log := that.logger.With("method", "expire", "roomID", roomID, "playerID", playerID)

	that.mu.Lock()
	if that.pending[key] != entry {
		that.mu.Unlock()
		return
	}
	delete(that.pending, key)
	that.mu.Unlock()

	err := that.leaver.Leave(context.Background(), roomID, playerID)
	switch {
	case err == nil:
		log.Info("grace period expired, player removed")
	case errors.Is(err, apperror.ErrRoomNotFound), errors.Is(err, apperror.ErrNotInRoom):
		log.Debug("grace period expired, player already gone")
	default:
		log.Error("failed to remove player after grace period", "error", err)
	}
}
