package db

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Javohir11011/Hisob-kitob-bot/account"
	"github.com/Javohir11011/Hisob-kitob-bot/shop"
)

func addTestOwner(t *testing.T, dbTest *DBTest, name, phone string) *account.Account {
	a := &account.Account{
		Name:         name,
		Phone:        phone,
		PasswordHash: "hash",
		Role:         account.RoleShopOwner,
		ShopID:       "shop-1",
	}
	require.NoError(t, dbTest.db.AddAccount(context.Background(), a))
	return a
}

func TestFindAccountByPhone(t *testing.T) {
	t.Parallel()

	dbTest := NewDBTest(t)
	t.Cleanup(func() {
		dbTest.Cleanup(t)
	})

	ctx := context.Background()
	added := addTestOwner(t, dbTest, "Sardor Aliyev", "+998935554433")

	got, err := dbTest.db.FindAccountByPhone(ctx, "+998935554433")
	require.NoError(t, err)
	assert.Equal(t, added.ID, got.ID)
	assert.Equal(t, account.RoleShopOwner, got.Role)

	_, err = dbTest.db.FindAccountByPhone(ctx, "+998900000000")
	var notFound *account.ErrNotFound
	assert.True(t, errors.As(err, &notFound))
}

func TestListAccountsByQuery(t *testing.T) {
	t.Parallel()

	dbTest := NewDBTest(t)
	t.Cleanup(func() {
		dbTest.Cleanup(t)
	})

	ctx := context.Background()
	sardor := addTestOwner(t, dbTest, "Sardor Aliyev", "+998935554433")
	jasur := addTestOwner(t, dbTest, "Jasur Toshev", "+998901234567")

	tests := []struct {
		name     string
		query    string
		expected []string
	}{
		{name: "fuzzy name match", query: "sardor", expected: []string{sardor.ID}},
		{name: "misspelled name", query: "jasurr", expected: []string{jasur.ID}},
		{name: "phone substring", query: "901234", expected: []string{jasur.ID}},
		{name: "no match", query: "zzzzz", expected: nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			found, err := dbTest.db.ListAccounts(ctx, account.ListFilter{
				Role:  account.RoleShopOwner,
				Query: tc.query,
			})
			require.NoError(t, err)

			ids := make([]string, 0, len(found))
			for _, a := range found {
				ids = append(ids, a.ID)
			}
			assert.ElementsMatch(t, tc.expected, ids)
		})
	}
}

func TestListAccountsPagination(t *testing.T) {
	t.Parallel()

	dbTest := NewDBTest(t)
	t.Cleanup(func() {
		dbTest.Cleanup(t)
	})

	ctx := context.Background()
	addTestOwner(t, dbTest, "Owner One", "+998930000001")
	addTestOwner(t, dbTest, "Owner Two", "+998930000002")
	addTestOwner(t, dbTest, "Owner Three", "+998930000003")

	count, err := dbTest.db.CountAccounts(ctx, account.RoleShopOwner)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	page, err := dbTest.db.ListAccounts(ctx, account.ListFilter{
		Role:  account.RoleShopOwner,
		Limit: 2,
	})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	page, err = dbTest.db.ListAccounts(ctx, account.ListFilter{
		Role:   account.RoleShopOwner,
		Offset: 2,
		Limit:  2,
	})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestUpdateAndRemoveAccount(t *testing.T) {
	t.Parallel()

	dbTest := NewDBTest(t)
	t.Cleanup(func() {
		dbTest.Cleanup(t)
	})

	ctx := context.Background()
	a := addTestOwner(t, dbTest, "Old Name", "+998935550000")

	require.NoError(t, dbTest.db.UpdateAccountField(ctx, a.ID, account.FieldName, "New Name"))
	got, err := dbTest.db.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.Name)

	err = dbTest.db.UpdateAccountField(ctx, "missing-id", account.FieldName, "x")
	var notFound *account.ErrNotFound
	assert.True(t, errors.As(err, &notFound))

	require.NoError(t, dbTest.db.RemoveAccount(ctx, a.ID))
	_, err = dbTest.db.GetAccount(ctx, a.ID)
	assert.True(t, errors.As(err, &notFound))
}

func TestShopFindOrMissing(t *testing.T) {
	t.Parallel()

	dbTest := NewDBTest(t)
	t.Cleanup(func() {
		dbTest.Cleanup(t)
	})

	ctx := context.Background()

	s := &shop.Shop{Name: "Guliston", Address: "Yakkasaroy"}
	require.NoError(t, dbTest.db.AddShop(ctx, s))

	got, err := dbTest.db.FindShopByName(ctx, "Guliston")
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)

	_, err = dbTest.db.FindShopByName(ctx, "Yo'q Do'kon")
	var notFound *shop.ErrNotFound
	assert.True(t, errors.As(err, &notFound))
}
