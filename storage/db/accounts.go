package db

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/Javohir11011/Hisob-kitob-bot/account"
	"github.com/Javohir11011/Hisob-kitob-bot/shop"
)

func (d *DBStore) AddAccount(_ context.Context, a *account.Account) error {
	if a == nil {
		return fmt.Errorf("nil account")
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	sql, args, err := sq.Insert("accounts").Values(a.ID, a.Name, a.Phone, a.PasswordHash,
		a.Role, a.ShopID, a.CreatedAt).ToSql()
	if err != nil {
		return fmt.Errorf("generating insert SQL: %w", err)
	}

	if _, err = d.db.Exec(sql, args...); err != nil {
		return newExecError("adding account", sql, err, args...)
	}

	return nil
}

func (d *DBStore) GetAccount(_ context.Context, id string) (*account.Account, error) {
	sql, args, err := sq.Select("*").From("accounts").Where("id=?", id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("generating select SQL: %w", err)
	}

	var accounts []*account.Account
	if err = d.db.Select(&accounts, sql, args...); err != nil {
		return nil, newExecError("selecting account", sql, err, args...)
	}

	if len(accounts) > 1 {
		return nil, fmt.Errorf("more than one account found (found %d)", len(accounts))
	}
	if len(accounts) == 0 {
		return nil, &account.ErrNotFound{Key: id}
	}

	return accounts[0], nil
}

func (d *DBStore) FindAccountByPhone(_ context.Context, phone string) (*account.Account, error) {
	sql, args, err := sq.Select("*").From("accounts").Where("phone=?", phone).ToSql()
	if err != nil {
		return nil, fmt.Errorf("generating select SQL: %w", err)
	}

	var accounts []*account.Account
	if err = d.db.Select(&accounts, sql, args...); err != nil {
		return nil, newExecError("selecting account by phone", sql, err, args...)
	}

	if len(accounts) == 0 {
		return nil, &account.ErrNotFound{Key: phone}
	}

	return accounts[0], nil
}

func (d *DBStore) ListAccounts(ctx context.Context, filter account.ListFilter) ([]*account.Account, error) {
	if filter.Query != "" {
		return d.searchAccounts(ctx, filter.Role, filter.Query)
	}

	baseSql := sq.Select("*").From("accounts").OrderBy("created_at ASC")
	if filter.Role != "" {
		baseSql = baseSql.Where("role=?", filter.Role)
	}
	if filter.Limit > 0 {
		baseSql = baseSql.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	sql, args, err := baseSql.ToSql()
	if err != nil {
		return nil, fmt.Errorf("generating list SQL: %w", err)
	}

	var accounts []*account.Account
	if err = d.db.Select(&accounts, sql, args...); err != nil {
		return nil, newExecError("selecting accounts", sql, err, args...)
	}

	return accounts, nil
}

func (d *DBStore) CountAccounts(_ context.Context, role account.Role) (int, error) {
	baseSql := sq.Select("COUNT(*)").From("accounts")
	if role != "" {
		baseSql = baseSql.Where("role=?", role)
	}

	sql, args, err := baseSql.ToSql()
	if err != nil {
		return 0, fmt.Errorf("generating count SQL: %w", err)
	}

	var count int
	if err = d.db.Get(&count, sql, args...); err != nil {
		return 0, newExecError("counting accounts", sql, err, args...)
	}

	return count, nil
}

func (d *DBStore) UpdateAccountField(_ context.Context, id string, field account.UpdateField, value string) error {
	var column string
	switch field {
	case account.FieldName:
		column = "name"
	case account.FieldPhone:
		column = "phone"
	case account.FieldShop:
		column = "shop_id"
	default:
		return fmt.Errorf("unknown account update field %q", field)
	}

	sql, args, err := sq.Update("accounts").Set(column, value).Where("id=?", id).ToSql()
	if err != nil {
		return fmt.Errorf("generating update SQL: %w", err)
	}

	res, err := d.db.Exec(sql, args...)
	if err != nil {
		return newExecError("updating account", sql, err, args...)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return &account.ErrNotFound{Key: id}
	}

	return nil
}

func (d *DBStore) RemoveAccount(_ context.Context, id string) error {
	sql, args, err := sq.Delete("accounts").Where("id=?", id).ToSql()
	if err != nil {
		return fmt.Errorf("generating delete SQL: %w", err)
	}

	if _, err = d.db.Exec(sql, args...); err != nil {
		return newExecError("deleting account", sql, err, args...)
	}

	return nil
}

func (d *DBStore) AddShop(_ context.Context, s *shop.Shop) error {
	if s == nil {
		return fmt.Errorf("nil shop")
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}

	sql, args, err := sq.Insert("shops").Values(s.ID, s.Name, s.Address, s.CreatedAt).ToSql()
	if err != nil {
		return fmt.Errorf("generating insert SQL: %w", err)
	}

	if _, err = d.db.Exec(sql, args...); err != nil {
		return newExecError("adding shop", sql, err, args...)
	}

	return nil
}

func (d *DBStore) GetShop(_ context.Context, id string) (*shop.Shop, error) {
	sql, args, err := sq.Select("*").From("shops").Where("id=?", id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("generating select SQL: %w", err)
	}

	var shops []*shop.Shop
	if err = d.db.Select(&shops, sql, args...); err != nil {
		return nil, newExecError("selecting shop", sql, err, args...)
	}

	if len(shops) == 0 {
		return nil, &shop.ErrNotFound{Key: id}
	}

	return shops[0], nil
}

func (d *DBStore) FindShopByName(_ context.Context, name string) (*shop.Shop, error) {
	sql, args, err := sq.Select("*").From("shops").Where("name=?", name).ToSql()
	if err != nil {
		return nil, fmt.Errorf("generating select SQL: %w", err)
	}

	var shops []*shop.Shop
	if err = d.db.Select(&shops, sql, args...); err != nil {
		return nil, newExecError("selecting shop by name", sql, err, args...)
	}

	if len(shops) == 0 {
		return nil, &shop.ErrNotFound{Key: name}
	}

	return shops[0], nil
}
