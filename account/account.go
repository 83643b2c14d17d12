package account

import (
	"context"
	"fmt"
	"time"
)

type Role string

//goland:noinspection ALL
const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleShopOwner  Role = "SHOP_OWNER"
	RoleShopHelper Role = "SHOP_HELPER"
	// RoleDebtor never appears on an Account row. It exists for sessions
	// authenticated through the debtor self-service login.
	RoleDebtor Role = "DEBTOR"
)

// Account is a staff identity: super-admin, shop owner or shop helper.
type Account struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Phone        string    `db:"phone"`
	PasswordHash string    `db:"password_hash"`
	Role         Role      `db:"role"`
	ShopID       string    `db:"shop_id"` // empty for super-admin
	CreatedAt    time.Time `db:"created_at"`
}

type ErrNotFound struct {
	Key string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("account %s not found", e.Key)
}

// UpdateField names the account fields a super-admin may edit in place.
type UpdateField string

const (
	FieldName  UpdateField = "name"
	FieldPhone UpdateField = "phone"
	FieldShop  UpdateField = "shop"
)

func ParseUpdateField(s string) (UpdateField, error) {
	switch UpdateField(s) {
	case FieldName, FieldPhone, FieldShop:
		return UpdateField(s), nil
	}
	return "", fmt.Errorf("unknown account update field %q", s)
}

type ListFilter struct {
	Role Role
	// Query matches names fuzzily and phones by substring. When set, Offset
	// and Limit are ignored.
	Query  string
	Offset int
	Limit  int
}

type Store interface {
	AddAccount(ctx context.Context, a *Account) error
	GetAccount(ctx context.Context, id string) (*Account, error)
	FindAccountByPhone(ctx context.Context, phone string) (*Account, error)
	ListAccounts(ctx context.Context, filter ListFilter) ([]*Account, error)
	CountAccounts(ctx context.Context, role Role) (int, error)
	UpdateAccountField(ctx context.Context, id string, field UpdateField, value string) error
	RemoveAccount(ctx context.Context, id string) error
}
