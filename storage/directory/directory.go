// Package directory answers "who is this phone number" across both identity
// tables.
package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/Javohir11011/Hisob-kitob-bot/account"
	"github.com/Javohir11011/Hisob-kitob-bot/debtor"
)

// Entry is a phone lookup result: exactly one of Account or Debtor is set.
type Entry struct {
	Account *account.Account
	Debtor  *debtor.Debtor
}

// Directory resolves phones by checking staff accounts first and debtors
// second. A staff account shadows a debtor registered with the same phone.
type Directory struct {
	accounts account.Store
	debtors  debtor.Store
}

func New(accounts account.Store, debtors debtor.Store) *Directory {
	return &Directory{
		accounts: accounts,
		debtors:  debtors,
	}
}

// FindByPhone returns (nil, nil) for a phone no one registered. Callers use
// that to silently drop events from strangers.
func (d *Directory) FindByPhone(ctx context.Context, phone string) (*Entry, error) {
	a, err := d.accounts.FindAccountByPhone(ctx, phone)
	if err == nil {
		return &Entry{Account: a}, nil
	}
	var accountNotFound *account.ErrNotFound
	if !errors.As(err, &accountNotFound) {
		return nil, fmt.Errorf("looking up account by phone: %w", err)
	}

	dr, err := d.debtors.FindDebtorByPhone(ctx, phone)
	if err == nil {
		return &Entry{Debtor: dr}, nil
	}
	var debtorNotFound *debtor.ErrNotFound
	if !errors.As(err, &debtorNotFound) {
		return nil, fmt.Errorf("looking up debtor by phone: %w", err)
	}

	return nil, nil
}
