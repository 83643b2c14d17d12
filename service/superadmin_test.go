package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Javohir11011/Hisob-kitob-bot/account"
	"github.com/Javohir11011/Hisob-kitob-bot/session"
	"github.com/Javohir11011/Hisob-kitob-bot/shop"
)

func seedSuperAdmin(env *testEnv) {
	_ = env.accounts.AddAccount(context.Background(), &account.Account{
		Name:         "Admin",
		Phone:        "+998900000001",
		PasswordHash: "hash:x",
		Role:         account.RoleSuperAdmin,
	})
	_ = env.sessions.Save(context.Background(), &session.Session{
		ChatID: chat,
		State:  session.StateSuperAdminMenu,
		Role:   account.RoleSuperAdmin,
		Phone:  "+998900000001",
	})
}

func TestRemoveOwnerMenuOpensSearch(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	seedSuperAdmin(env)

	env.text(chat, btnRemoveOwner)

	assert.Equal(t, session.StateSearchOwner, env.session(chat).State)
	assert.True(t, env.notifier.sawText(chat, "qidiring"))
}

func TestUpdateOwnerNameFlow(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	seedSuperAdmin(env)
	owner := env.addOwner("Sardor", "+998900000002")

	env.callback(chat, Action{Kind: ActionUpdateOwner, ID: owner.ID})
	require.Equal(t, session.StateUpdatingOwner, env.session(chat).State)

	fields := env.notifier.last(chat)
	require.Len(t, fields.Inline, 2)
	require.Len(t, fields.Inline[0], 3)
	for _, b := range fields.Inline[0] {
		assert.Equal(t, ActionUpdateField, b.Action.Kind)
	}

	env.callback(chat, Action{Kind: ActionUpdateField, ID: string(account.FieldName)})
	require.Equal(t, session.StateUpdatingOwnerField, env.session(chat).State)

	env.text(chat, "Sardorbek")

	assert.Equal(t, "Sardorbek", env.accounts.accounts[owner.ID].Name)
	assert.Equal(t, session.StateSuperAdminMenu, env.session(chat).State)
	assert.True(t, env.notifier.sawText(chat, "O'zgartirildi"))
}

func TestUpdateOwnerPhoneRevalidates(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	seedSuperAdmin(env)
	owner := env.addOwner("Sardor", "+998900000002")

	env.callback(chat, Action{Kind: ActionUpdateOwner, ID: owner.ID})
	env.callback(chat, Action{Kind: ActionUpdateField, ID: string(account.FieldPhone)})

	env.text(chat, "12345")
	assert.Equal(t, session.StateUpdatingOwnerField, env.session(chat).State)
	assert.True(t, env.notifier.sawText(chat, "formati noto'g'ri"))
	assert.Equal(t, "+998900000002", env.accounts.accounts[owner.ID].Phone)

	env.text(chat, "0907778899")
	assert.Equal(t, "+998907778899", env.accounts.accounts[owner.ID].Phone)
	assert.Equal(t, session.StateSuperAdminMenu, env.session(chat).State)
}

func TestUpdateOwnerShopFindsOrCreates(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	seedSuperAdmin(env)
	owner := env.addOwner("Sardor", "+998900000002")
	existing := &shop.Shop{Name: "Chorsu"}
	_ = env.shops.AddShop(context.Background(), existing)

	env.callback(chat, Action{Kind: ActionUpdateOwner, ID: owner.ID})
	env.callback(chat, Action{Kind: ActionUpdateField, ID: string(account.FieldShop)})
	env.text(chat, "Chorsu")
	assert.Equal(t, existing.ID, env.accounts.accounts[owner.ID].ShopID)

	// An unknown name creates the shop on the spot.
	env.callback(chat, Action{Kind: ActionUpdateOwner, ID: owner.ID})
	env.callback(chat, Action{Kind: ActionUpdateField, ID: string(account.FieldShop)})
	env.text(chat, "Yangi bozor")

	created, err := env.shops.FindShopByName(context.Background(), "Yangi bozor")
	require.NoError(t, err)
	assert.Equal(t, created.ID, env.accounts.accounts[owner.ID].ShopID)
}

func TestUpdateOwnerCancelReturnsToMenu(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	seedSuperAdmin(env)
	owner := env.addOwner("Sardor", "+998900000002")

	env.callback(chat, Action{Kind: ActionUpdateOwner, ID: owner.ID})
	env.callback(chat, Action{Kind: ActionUpdateCancel})

	s := env.session(chat)
	assert.Equal(t, session.StateSuperAdminMenu, s.State)
	assert.Equal(t, "Sardor", env.accounts.accounts[owner.ID].Name)
}

func TestStatisticsPagination(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	seedSuperAdmin(env)
	for i := 0; i < 11; i++ {
		env.addOwner(fmt.Sprintf("Owner %02d", i), fmt.Sprintf("+9989012345%02d", i))
	}

	env.text(chat, btnStats)

	first := env.notifier.last(chat)
	assert.Contains(t, first.Text, "(11 ta)")
	assert.Contains(t, first.Text, "sahifa 1")
	require.Len(t, first.Inline, 1)
	require.Len(t, first.Inline[0], 1)
	assert.Equal(t, Action{Kind: ActionStatsPage, ID: "1"}, first.Inline[0][0].Action)

	env.callback(chat, first.Inline[0][0].Action)

	second := env.notifier.last(chat)
	assert.Contains(t, second.Text, "sahifa 2")
	assert.Contains(t, second.Text, "11. 👤")
	require.Len(t, second.Inline, 1)
	require.Len(t, second.Inline[0], 1)
	assert.Equal(t, Action{Kind: ActionStatsPage, ID: strconv.Itoa(0)}, second.Inline[0][0].Action)
}

func TestAddOwnerPhoneCheckStorageError(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	seedSuperAdmin(env)

	env.text(chat, btnAddOwner)
	env.text(chat, "Jasur Toshev")

	env.accounts.findErr = errors.New("database is locked")
	env.text(chat, "0907778899")

	assert.Equal(t, session.StateAddingOwnerPhone, env.session(chat).State)
	assert.True(t, env.notifier.sawText(chat, "Xatolik yuz berdi"))
	assert.False(t, env.notifier.sawText(chat, "allaqachon ro'yxatdan"))

	env.accounts.findErr = nil
	env.text(chat, "0907778899")
	assert.Equal(t, session.StateAddingOwnerPassword, env.session(chat).State)
}
