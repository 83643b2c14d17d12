package shop

import (
	"context"
	"fmt"
	"time"
)

type Shop struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Address   string    `db:"address"`
	CreatedAt time.Time `db:"created_at"`
}

type ErrNotFound struct {
	Key string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("shop %s not found", e.Key)
}

type Store interface {
	AddShop(ctx context.Context, s *Shop) error
	GetShop(ctx context.Context, id string) (*Shop, error)
	FindShopByName(ctx context.Context, name string) (*Shop, error)
}
