package db

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/Javohir11011/Hisob-kitob-bot/debt"
)

func (d *DBStore) AddDebt(_ context.Context, dt *debt.Debt) error {
	if dt == nil {
		return fmt.Errorf("nil debt")
	}
	if dt.ID == "" {
		dt.ID = uuid.NewString()
	}
	if dt.CreatedAt.IsZero() {
		dt.CreatedAt = time.Now()
	}
	if dt.Status == "" {
		dt.Status = debt.StatusUnpaid
	}

	sql, args, err := sq.Insert("debts").Values(dt.ID, dt.DebtorID, dt.Amount, dt.Note,
		dt.Status, dt.CreatedAt).ToSql()
	if err != nil {
		return fmt.Errorf("generating insert SQL: %w", err)
	}

	if _, err = d.db.Exec(sql, args...); err != nil {
		return newExecError("adding debt", sql, err, args...)
	}

	return nil
}

func (d *DBStore) GetDebt(_ context.Context, id string) (*debt.Debt, error) {
	sql, args, err := sq.Select("*").From("debts").Where("id=?", id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("generating select SQL: %w", err)
	}

	var debts []*debt.Debt
	if err = d.db.Select(&debts, sql, args...); err != nil {
		return nil, newExecError("selecting debt", sql, err, args...)
	}

	if len(debts) == 0 {
		return nil, fmt.Errorf("debt %s not found", id)
	}

	return debts[0], nil
}

func (d *DBStore) ListDebtsForDebtor(_ context.Context, debtorID string) ([]*debt.Debt, error) {
	sql, args, err := sq.Select("*").From("debts").Where("debtor_id=?", debtorID).
		OrderBy("created_at ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("generating list SQL: %w", err)
	}

	debts := []*debt.Debt{}
	if err = d.db.Select(&debts, sql, args...); err != nil {
		return nil, newExecError("selecting debts", sql, err, args...)
	}

	return debts, nil
}

// ListUnpaidForDebtor keeps the oldest-first order the payment allocation
// depends on.
func (d *DBStore) ListUnpaidForDebtor(_ context.Context, debtorID string) ([]*debt.Debt, error) {
	sql, args, err := sq.Select("*").From("debts").
		Where("debtor_id=? AND status=?", debtorID, debt.StatusUnpaid).
		OrderBy("created_at ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("generating list SQL: %w", err)
	}

	debts := []*debt.Debt{}
	if err = d.db.Select(&debts, sql, args...); err != nil {
		return nil, newExecError("selecting unpaid debts", sql, err, args...)
	}

	return debts, nil
}

func (d *DBStore) SetDebtAmount(_ context.Context, id string, amount int64) error {
	sql, args, err := sq.Update("debts").Set("amount", amount).Where("id=?", id).ToSql()
	if err != nil {
		return fmt.Errorf("generating update SQL: %w", err)
	}

	if _, err = d.db.Exec(sql, args...); err != nil {
		return newExecError("updating debt amount", sql, err, args...)
	}

	return nil
}

func (d *DBStore) RemoveDebt(_ context.Context, id string) error {
	sql, args, err := sq.Delete("debts").Where("id=?", id).ToSql()
	if err != nil {
		return fmt.Errorf("generating delete SQL: %w", err)
	}

	if _, err = d.db.Exec(sql, args...); err != nil {
		return newExecError("deleting debt", sql, err, args...)
	}

	return nil
}

func (d *DBStore) RemoveDebtsForDebtor(_ context.Context, debtorID string) error {
	sql, args, err := sq.Delete("debts").Where("debtor_id=?", debtorID).ToSql()
	if err != nil {
		return fmt.Errorf("generating delete SQL: %w", err)
	}

	if _, err = d.db.Exec(sql, args...); err != nil {
		return newExecError("deleting debtor debts", sql, err, args...)
	}

	return nil
}

// OutstandingForShop sums the unpaid amounts across every debtor of a shop.
func (d *DBStore) OutstandingForShop(_ context.Context, shopID string) (int64, error) {
	sql, args, err := sq.Select("COALESCE(SUM(debts.amount), 0)").From("debts").
		Join("debtors ON debtors.id = debts.debtor_id").
		Where("debtors.shop_id=? AND debts.status=?", shopID, debt.StatusUnpaid).ToSql()
	if err != nil {
		return 0, fmt.Errorf("generating sum SQL: %w", err)
	}

	var total int64
	if err = d.db.Get(&total, sql, args...); err != nil {
		return 0, newExecError("summing shop debts", sql, err, args...)
	}

	return total, nil
}

func (d *DBStore) AddPayment(_ context.Context, p *debt.Payment) error {
	if p == nil {
		return fmt.Errorf("nil payment")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	sql, args, err := sq.Insert("payments").Values(p.ID, p.DebtorID, p.DebtID, p.Amount,
		p.Approved, p.CreatedAt).ToSql()
	if err != nil {
		return fmt.Errorf("generating insert SQL: %w", err)
	}

	if _, err = d.db.Exec(sql, args...); err != nil {
		return newExecError("adding payment", sql, err, args...)
	}

	return nil
}

func (d *DBStore) GetPayment(_ context.Context, id string) (*debt.Payment, error) {
	sql, args, err := sq.Select("*").From("payments").Where("id=?", id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("generating select SQL: %w", err)
	}

	var payments []*debt.Payment
	if err = d.db.Select(&payments, sql, args...); err != nil {
		return nil, newExecError("selecting payment", sql, err, args...)
	}

	if len(payments) == 0 {
		return nil, fmt.Errorf("payment %s not found", id)
	}

	return payments[0], nil
}

func (d *DBStore) ListPaymentsForDebtor(_ context.Context, debtorID string) ([]*debt.Payment, error) {
	sql, args, err := sq.Select("*").From("payments").Where("debtor_id=?", debtorID).
		OrderBy("created_at DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("generating list SQL: %w", err)
	}

	payments := []*debt.Payment{}
	if err = d.db.Select(&payments, sql, args...); err != nil {
		return nil, newExecError("selecting payments", sql, err, args...)
	}

	return payments, nil
}

func (d *DBStore) ListUnapprovedForShop(_ context.Context, shopID string) ([]*debt.Payment, error) {
	sql, args, err := sq.Select("payments.*").From("payments").
		Join("debtors ON debtors.id = payments.debtor_id").
		Where("debtors.shop_id=? AND payments.approved=?", shopID, false).
		OrderBy("payments.created_at ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("generating list SQL: %w", err)
	}

	payments := []*debt.Payment{}
	if err = d.db.Select(&payments, sql, args...); err != nil {
		return nil, newExecError("selecting unapproved payments", sql, err, args...)
	}

	return payments, nil
}

func (d *DBStore) SetPaymentApproved(_ context.Context, id string) error {
	sql, args, err := sq.Update("payments").Set("approved", true).Where("id=?", id).ToSql()
	if err != nil {
		return fmt.Errorf("generating update SQL: %w", err)
	}

	res, err := d.db.Exec(sql, args...)
	if err != nil {
		return newExecError("approving payment", sql, err, args...)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("payment %s not found", id)
	}

	return nil
}
