package debtor

import (
	"context"
	"fmt"
	"time"
)

// Debtor is a shop's customer who owes money. Not to be confused with staff
// accounts: a debtor logs in through /login_debtor and only sees itself.
type Debtor struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Phone        string    `db:"phone"`
	Address      string    `db:"address"`
	PasswordHash string    `db:"password_hash"` // empty disables self-service login
	ShopID       string    `db:"shop_id"`
	CreatedAt    time.Time `db:"created_at"`
}

type ErrNotFound struct {
	Key string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("debtor %s not found", e.Key)
}

type Store interface {
	AddDebtor(ctx context.Context, d *Debtor) error
	GetDebtor(ctx context.Context, id string) (*Debtor, error)
	FindDebtorByPhone(ctx context.Context, phone string) (*Debtor, error)
	ListDebtorsForShop(ctx context.Context, shopID string) ([]*Debtor, error)
	// SearchDebtors matches the query against names (fuzzy) and phones
	// (substring) within one shop.
	SearchDebtors(ctx context.Context, shopID, query string) ([]*Debtor, error)
	// RemoveDebtor deletes the debtor and all its debts. Payments stay as
	// audit history.
	RemoveDebtor(ctx context.Context, id string) error
}
