package db

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/Javohir11011/Hisob-kitob-bot/debtor"
)

func (d *DBStore) AddDebtor(_ context.Context, dr *debtor.Debtor) error {
	if dr == nil {
		return fmt.Errorf("nil debtor")
	}
	if dr.ID == "" {
		dr.ID = uuid.NewString()
	}
	if dr.CreatedAt.IsZero() {
		dr.CreatedAt = time.Now()
	}

	sql, args, err := sq.Insert("debtors").Values(dr.ID, dr.Name, dr.Phone, dr.Address,
		dr.PasswordHash, dr.ShopID, dr.CreatedAt).ToSql()
	if err != nil {
		return fmt.Errorf("generating insert SQL: %w", err)
	}

	if _, err = d.db.Exec(sql, args...); err != nil {
		return newExecError("adding debtor", sql, err, args...)
	}

	return nil
}

func (d *DBStore) GetDebtor(_ context.Context, id string) (*debtor.Debtor, error) {
	sql, args, err := sq.Select("*").From("debtors").Where("id=?", id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("generating select SQL: %w", err)
	}

	var debtors []*debtor.Debtor
	if err = d.db.Select(&debtors, sql, args...); err != nil {
		return nil, newExecError("selecting debtor", sql, err, args...)
	}

	if len(debtors) == 0 {
		return nil, &debtor.ErrNotFound{Key: id}
	}

	return debtors[0], nil
}

func (d *DBStore) FindDebtorByPhone(_ context.Context, phone string) (*debtor.Debtor, error) {
	sql, args, err := sq.Select("*").From("debtors").Where("phone=?", phone).ToSql()
	if err != nil {
		return nil, fmt.Errorf("generating select SQL: %w", err)
	}

	var debtors []*debtor.Debtor
	if err = d.db.Select(&debtors, sql, args...); err != nil {
		return nil, newExecError("selecting debtor by phone", sql, err, args...)
	}

	if len(debtors) == 0 {
		return nil, &debtor.ErrNotFound{Key: phone}
	}

	return debtors[0], nil
}

func (d *DBStore) ListDebtorsForShop(_ context.Context, shopID string) ([]*debtor.Debtor, error) {
	sql, args, err := sq.Select("*").From("debtors").Where("shop_id=?", shopID).
		OrderBy("created_at ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("generating list SQL: %w", err)
	}

	debtors := []*debtor.Debtor{}
	if err = d.db.Select(&debtors, sql, args...); err != nil {
		return nil, newExecError("selecting debtors", sql, err, args...)
	}

	return debtors, nil
}

// RemoveDebtor deletes the debtor together with its debts in one transaction.
// Payment rows are left in place as history.
func (d *DBStore) RemoveDebtor(_ context.Context, id string) error {
	tx, err := d.db.Beginx()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	debtsSql, debtsArgs, err := sq.Delete("debts").Where("debtor_id=?", id).ToSql()
	if err != nil {
		return fmt.Errorf("generating delete debts SQL: %w", err)
	}
	if _, err = tx.Exec(debtsSql, debtsArgs...); err != nil {
		return newExecError("deleting debtor debts", debtsSql, err, debtsArgs...)
	}

	debtorSql, debtorArgs, err := sq.Delete("debtors").Where("id=?", id).ToSql()
	if err != nil {
		return fmt.Errorf("generating delete debtor SQL: %w", err)
	}
	if _, err = tx.Exec(debtorSql, debtorArgs...); err != nil {
		return newExecError("deleting debtor", debtorSql, err, debtorArgs...)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing debtor removal: %w", err)
	}

	return nil
}
