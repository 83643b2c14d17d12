// Package ledger applies payments to a debtor's outstanding debts.
package ledger

import (
	"context"
	"fmt"

	"github.com/Javohir11011/Hisob-kitob-bot/debt"
)

type Engine struct {
	debts debt.Store
}

func New(debts debt.Store) *Engine {
	return &Engine{debts: debts}
}

type AllocationResult struct {
	AppliedTotal  int64
	Remainder     int64
	ClosedDebtIDs []string
}

// Allocate walks the debtor's UNPAID debts oldest first and applies the
// payment: a fully covered debt is removed (closed), a partially covered one
// is decremented in place. A payment larger than the total outstanding is
// capped; the excess comes back as Remainder instead of a credit balance.
func (e *Engine) Allocate(ctx context.Context, debtorID string, amount int64) (AllocationResult, error) {
	res := AllocationResult{}
	if amount <= 0 {
		return res, fmt.Errorf("non-positive payment amount %d", amount)
	}

	debts, err := e.debts.ListUnpaidForDebtor(ctx, debtorID)
	if err != nil {
		return res, fmt.Errorf("listing unpaid debts: %w", err)
	}

	remaining := amount
	for _, d := range debts {
		if remaining == 0 {
			break
		}
		applied := d.Amount
		if remaining < applied {
			applied = remaining
		}

		if applied == d.Amount {
			if err := e.debts.RemoveDebt(ctx, d.ID); err != nil {
				return res, fmt.Errorf("closing debt %s: %w", d.ID, err)
			}
			res.ClosedDebtIDs = append(res.ClosedDebtIDs, d.ID)
		} else {
			if err := e.debts.SetDebtAmount(ctx, d.ID, d.Amount-applied); err != nil {
				return res, fmt.Errorf("reducing debt %s: %w", d.ID, err)
			}
		}

		res.AppliedTotal += applied
		remaining -= applied
	}

	res.Remainder = amount - res.AppliedTotal
	return res, nil
}

// Outstanding is the debtor's total unpaid amount.
func (e *Engine) Outstanding(ctx context.Context, debtorID string) (int64, error) {
	debts, err := e.debts.ListUnpaidForDebtor(ctx, debtorID)
	if err != nil {
		return 0, fmt.Errorf("listing unpaid debts: %w", err)
	}
	var total int64
	for _, d := range debts {
		total += d.Amount
	}
	return total, nil
}

// RecordPayment writes the audit row for the requested amount, whether or not
// the allocation later caps what gets applied. Debtor-submitted payments are
// recorded unapproved and wait for the shop owner; owner-entered ones are
// approved from the start.
func (e *Engine) RecordPayment(ctx context.Context, debtorID, debtID string, amount int64, approved bool) (*debt.Payment, error) {
	p := debt.NewPayment(debtorID, debtID, amount, approved)
	if err := e.debts.AddPayment(ctx, p); err != nil {
		return nil, fmt.Errorf("recording payment: %w", err)
	}
	return p, nil
}

// Approve flips a pending debtor payment to approved and runs its allocation.
func (e *Engine) Approve(ctx context.Context, paymentID string) (AllocationResult, error) {
	p, err := e.debts.GetPayment(ctx, paymentID)
	if err != nil {
		return AllocationResult{}, fmt.Errorf("loading payment: %w", err)
	}
	if p.Approved {
		return AllocationResult{}, fmt.Errorf("payment %s is already approved", paymentID)
	}
	if err := e.debts.SetPaymentApproved(ctx, p.ID); err != nil {
		return AllocationResult{}, fmt.Errorf("approving payment: %w", err)
	}
	return e.Allocate(ctx, p.DebtorID, p.Amount)
}
