package debt

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusUnpaid Status = "UNPAID"
	StatusPaid   Status = "PAID"
)

// Debt is one outstanding charge. Amounts are whole so'm; a fully covered
// debt is removed rather than kept as a zero row.
type Debt struct {
	ID        string    `db:"id"`
	DebtorID  string    `db:"debtor_id"`
	Amount    int64     `db:"amount"`
	Note      string    `db:"note"`
	Status    Status    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

// Payment is an append-only audit row. DebtID is a weak reference: it is kept
// even after the debt it was entered against closes.
type Payment struct {
	ID        string    `db:"id"`
	DebtorID  string    `db:"debtor_id"`
	DebtID    string    `db:"debt_id"`
	Amount    int64     `db:"amount"`
	Approved  bool      `db:"approved"`
	CreatedAt time.Time `db:"created_at"`
}

type Store interface {
	AddDebt(ctx context.Context, d *Debt) error
	GetDebt(ctx context.Context, id string) (*Debt, error)
	// ListDebtsForDebtor returns all debts oldest first.
	ListDebtsForDebtor(ctx context.Context, debtorID string) ([]*Debt, error)
	// ListUnpaidForDebtor returns UNPAID debts oldest first, the allocation order.
	ListUnpaidForDebtor(ctx context.Context, debtorID string) ([]*Debt, error)
	SetDebtAmount(ctx context.Context, id string, amount int64) error
	RemoveDebt(ctx context.Context, id string) error
	RemoveDebtsForDebtor(ctx context.Context, debtorID string) error
	OutstandingForShop(ctx context.Context, shopID string) (int64, error)

	AddPayment(ctx context.Context, p *Payment) error
	GetPayment(ctx context.Context, id string) (*Payment, error)
	// ListPaymentsForDebtor returns payments newest first.
	ListPaymentsForDebtor(ctx context.Context, debtorID string) ([]*Payment, error)
	ListUnapprovedForShop(ctx context.Context, shopID string) ([]*Payment, error)
	SetPaymentApproved(ctx context.Context, id string) error
}

func NewDebt(debtorID, note string, amount int64) *Debt {
	return &Debt{
		ID:        uuid.NewString(),
		DebtorID:  debtorID,
		Amount:    amount,
		Note:      note,
		Status:    StatusUnpaid,
		CreatedAt: time.Now(),
	}
}

func NewPayment(debtorID, debtID string, amount int64, approved bool) *Payment {
	return &Payment{
		ID:        uuid.NewString(),
		DebtorID:  debtorID,
		DebtID:    debtID,
		Amount:    amount,
		Approved:  approved,
		CreatedAt: time.Now(),
	}
}
