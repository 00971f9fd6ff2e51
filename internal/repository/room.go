package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/config"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

const (
	roomDeletedEvent = "deleted"

	subscribeRetryDelay = 100 * time.Millisecond
)

var errRoomIDTaken = errors.New("room id already exists")

// Action tells Update what to do with the room a Mutation has edited.
type Action int

const (
	// ActionSkip leaves the stored room untouched.
	ActionSkip Action = iota
	// ActionSave writes the fields the mutation changed.
	ActionSave
	// ActionDelete removes the room.
	ActionDelete
)

// Mutation edits a working copy of the stored room. Returning an error aborts with no write.
type Mutation func(room *entity.Room) (Action, error)

type RoomRepository interface {
	Create(ctx context.Context, room *entity.Room) (string, error)
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	UpdateFields(ctx context.Context, id string, patch entity.RoomPatch) error
	Update(ctx context.Context, id string, mutate Mutation) (*entity.Room, error)
	DeleteByID(ctx context.Context, id string) error
	FindWaiting(ctx context.Context, boardSize int, inviteOnly bool) ([]*entity.Room, error)
	Subscribe(ctx context.Context, id string, onUpdate func(*entity.Room)) (func(), error)
	SaveResult(ctx context.Context, id string, outcome entity.Outcome) error
	GetResult(ctx context.Context, id string) (entity.Outcome, error)
}

type dbRoom struct {
	client     *redis.Client
	maxRetries int
	resultTTL  time.Duration
}

func NewRoomRepository(client *redis.Client, cfg config.Room) RoomRepository {
	return &dbRoom{
		client:     client,
		maxRetries: max(cfg.MaxTxRetries, 1),
		resultTTL:  cfg.ResultTTL,
	}
}

func roomKey(id string) string {
	return "room:" + id
}

func roomEventsChannel(id string) string {
	return "room:" + id + ":events"
}

func roomResultKey(id string) string {
	return "room:" + id + ":result"
}

func waitingKey(boardSize int, inviteOnly bool) string {
	kind := "public"
	if inviteOnly {
		kind = "invite"
	}
	return "rooms:waiting:" + strconv.Itoa(boardSize) + ":" + kind
}

// Create stores room under a fresh id and returns it. An existing id is never overwritten.
func (that *dbRoom) Create(ctx context.Context, room *entity.Room) (string, error) {
	for range that.maxRetries {
		id := uuid.NewString()
		key := roomKey(id)

		stored := room.Clone()
		stored.ID = id
		stored.Version = 1

		fields, err := encodeRoom(stored)
		if err != nil {
			return "", err
		}

		err = that.client.Watch(ctx, func(tx *redis.Tx) error {
			exists, err := tx.Exists(ctx, key).Result()
			if err != nil {
				return err
			}
			if exists > 0 {
				return errRoomIDTaken
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.HSet(ctx, key, toArgs(fields))
				queueIndex(ctx, pipe, stored)
				return nil
			})
			return err
		}, key)

		switch {
		case err == nil:
			room.ID = id
			room.Version = stored.Version
			return id, nil
		case errors.Is(err, errRoomIDTaken), errors.Is(err, redis.TxFailedErr):
			continue
		default:
			return "", fmt.Errorf("failed to create room: %w", err)
		}
	}

	return "", fmt.Errorf("%w: could not allocate room id", apperror.ErrConflict)
}

func (that *dbRoom) GetByID(ctx context.Context, id string) (*entity.Room, error) {
	values, err := that.client.HGetAll(ctx, roomKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get room by id: %w", err)
	}

	if len(values) == 0 {
		return nil, apperror.ErrRoomNotFound
	}

	room, err := decodeRoom(values)
	if err != nil {
		return nil, fmt.Errorf("failed to decode room %s: %w", id, err)
	}

	return room, nil
}

// UpdateFields merges the named fields of patch into the stored room.
func (that *dbRoom) UpdateFields(ctx context.Context, id string, patch entity.RoomPatch) error {
	_, err := that.Update(ctx, id, func(room *entity.Room) (Action, error) {
		if err := patch.Apply(room); err != nil {
			return ActionSkip, err
		}
		return ActionSave, nil
	})

	return err
}

// Update runs mutate against the stored room inside WATCH/MULTI and retries
// when another writer commits first. Only changed hash fields are written.
// The returned room is the stored state after the update, nil if deleted.
func (that *dbRoom) Update(ctx context.Context, id string, mutate Mutation) (*entity.Room, error) {
	key := roomKey(id)

	for range that.maxRetries {
		var result *entity.Room

		err := that.client.Watch(ctx, func(tx *redis.Tx) error {
			values, err := tx.HGetAll(ctx, key).Result()
			if err != nil {
				return fmt.Errorf("failed to read room: %w", err)
			}
			if len(values) == 0 {
				return apperror.ErrRoomNotFound
			}

			current, err := decodeRoom(values)
			if err != nil {
				return fmt.Errorf("failed to decode room %s: %w", id, err)
			}

			working := current.Clone()
			action, err := mutate(working)
			if err != nil {
				return err
			}

			switch action {
			case ActionSkip:
				result = current
				return nil

			case ActionDelete:
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					queueDelete(ctx, pipe, current)
					return nil
				})
				return err

			default:
				working.ID = current.ID
				working.BoardSize = current.BoardSize
				working.CreatedAt = current.CreatedAt
				working.Version = current.Version + 1

				changes, err := changedFields(current, working)
				if err != nil {
					return err
				}

				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.HSet(ctx, key, changes)
					queueIndex(ctx, pipe, working)
					pipe.Publish(ctx, roomEventsChannel(id), working.Version)
					return nil
				})
				result = working
				return err
			}
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		if err != nil {
			return nil, err
		}

		return result, nil
	}

	return nil, fmt.Errorf("%w: room %s", apperror.ErrConflict, id)
}

// DeleteByID removes the room and its index entry. Deleting a missing room is a no-op.
func (that *dbRoom) DeleteByID(ctx context.Context, id string) error {
	_, err := that.Update(ctx, id, func(*entity.Room) (Action, error) {
		return ActionDelete, nil
	})

	if errors.Is(err, apperror.ErrRoomNotFound) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to delete room by id: %w", err)
	}

	return nil
}

// FindWaiting returns waiting rooms of the given size and kind, oldest first.
func (that *dbRoom) FindWaiting(ctx context.Context, boardSize int, inviteOnly bool) ([]*entity.Room, error) {
	index := waitingKey(boardSize, inviteOnly)

	ids, err := that.client.ZRange(ctx, index, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read waiting rooms: %w", err)
	}

	if len(ids) == 0 {
		return nil, nil
	}

	cmds := make([]*redis.MapStringStringCmd, 0, len(ids))
	_, err = that.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			cmds = append(cmds, pipe.HGetAll(ctx, roomKey(id)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load waiting rooms: %w", err)
	}

	rooms := make([]*entity.Room, 0, len(ids))
	var gone []any

	for i, cmd := range cmds {
		values := cmd.Val()
		if len(values) == 0 {
			gone = append(gone, ids[i])
			continue
		}

		room, err := decodeRoom(values)
		if err != nil {
			return nil, fmt.Errorf("failed to decode room %s: %w", ids[i], err)
		}

		if room.IsWaitingFor(boardSize, inviteOnly) {
			rooms = append(rooms, room)
		}
	}

	if len(gone) > 0 {
		if err = that.client.ZRem(ctx, index, gone...).Err(); err != nil {
			return nil, fmt.Errorf("failed to drop stale waiting rooms: %w", err)
		}
	}

	return rooms, nil
}

// Subscribe delivers the current room immediately and again after every change.
// Notifications that pile up are coalesced into one read. A deleted room is
// delivered as nil and ends the subscription.
func (that *dbRoom) Subscribe(ctx context.Context, id string, onUpdate func(*entity.Room)) (func(), error) {
	pubsub := that.client.Subscribe(ctx, roomEventsChannel(id))

	// the subscription must be live before the first read, or a write in between is lost
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to room: %w", err)
	}

	room, err := that.GetByID(ctx, id)
	if err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	messages := pubsub.Channel()
	done := make(chan struct{})

	go func() {
		onUpdate(room)

		// retry is armed while a re-read has failed, so the change is not lost
		var retry <-chan time.Time

		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-retry:
			case _, ok := <-messages:
				if !ok {
					return
				}

				for len(messages) > 0 {
					<-messages
				}
			}

			current, err := that.GetByID(ctx, id)
			if errors.Is(err, apperror.ErrRoomNotFound) {
				onUpdate(nil)
				return
			}
			if err != nil {
				retry = time.After(subscribeRetryDelay)
				continue
			}

			retry = nil
			onUpdate(current)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			_ = pubsub.Close()
		})
	}, nil
}

// SaveResult keeps the outcome of a room readable for a while after it is deleted.
func (that *dbRoom) SaveResult(ctx context.Context, id string, outcome entity.Outcome) error {
	if err := that.client.Set(ctx, roomResultKey(id), string(outcome), that.resultTTL).Err(); err != nil {
		return fmt.Errorf("failed to save room result: %w", err)
	}

	return nil
}

func (that *dbRoom) GetResult(ctx context.Context, id string) (entity.Outcome, error) {
	outcome, err := that.client.Get(ctx, roomResultKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", apperror.ErrRoomNotFound
	}

	if err != nil {
		return "", fmt.Errorf("failed to get room result: %w", err)
	}

	return entity.Outcome(outcome), nil
}

func queueIndex(ctx context.Context, pipe redis.Pipeliner, room *entity.Room) {
	index := waitingKey(room.BoardSize, room.InviteOnly)

	if room.Status == entity.StatusWaiting {
		pipe.ZAdd(ctx, index, redis.Z{Score: float64(room.CreatedAt.UnixMilli()), Member: room.ID})
		return
	}

	pipe.ZRem(ctx, index, room.ID)
}

func queueDelete(ctx context.Context, pipe redis.Pipeliner, room *entity.Room) {
	pipe.Del(ctx, roomKey(room.ID))
	pipe.ZRem(ctx, waitingKey(room.BoardSize, room.InviteOnly), room.ID)
	pipe.Publish(ctx, roomEventsChannel(room.ID), roomDeletedEvent)
}
