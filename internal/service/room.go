package service

import (
	"context"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/repository"
)

type roomRepo interface {
	Create(ctx context.Context, room *entity.Room) (string, error)
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	Update(ctx context.Context, id string, mutate repository.Mutation) (*entity.Room, error)
	DeleteByID(ctx context.Context, id string) error
	FindWaiting(ctx context.Context, boardSize int, inviteOnly bool) ([]*entity.Room, error)
	SaveResult(ctx context.Context, id string, outcome entity.Outcome) error
	GetResult(ctx context.Context, id string) (entity.Outcome, error)
}
