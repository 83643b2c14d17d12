package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Javohir11011/Hisob-kitob-bot/debtor"
	"github.com/Javohir11011/Hisob-kitob-bot/session"
)

func TestSearchDebtorsNoMatchReturnsToMenu(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	owner := env.addOwner("Sardor", "+998900000002")
	_ = env.debtors.AddDebtor(context.Background(), &debtor.Debtor{
		Name: "Olim", Phone: "+998901112233", ShopID: owner.ShopID,
	})
	loginOwner(t, env, owner)

	env.text(chat, btnAddDebt)
	env.text(chat, "begona")

	s := env.session(chat)
	assert.Equal(t, session.StateShopOwnerMenu, s.State)
	assert.True(t, env.notifier.sawText(chat, "Hech narsa topilmadi"))
}

func TestSearchDebtorsSeveralMatchesOfferSelection(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	owner := env.addOwner("Sardor", "+998900000002")
	first := &debtor.Debtor{Name: "Olim Karimov", Phone: "+998901112233", ShopID: owner.ShopID}
	second := &debtor.Debtor{Name: "Olim Rashidov", Phone: "+998901112244", ShopID: owner.ShopID}
	_ = env.debtors.AddDebtor(context.Background(), first)
	_ = env.debtors.AddDebtor(context.Background(), second)
	loginOwner(t, env, owner)

	env.text(chat, btnAddDebt)
	env.text(chat, "olim")

	// Ambiguous query holds the search step open and offers one button per hit.
	require.Equal(t, session.StateSearchDebtorForDebt, env.session(chat).State)
	choices := env.notifier.last(chat)
	require.Len(t, choices.Inline, 2)
	var picked Action
	for _, row := range choices.Inline {
		require.Len(t, row, 1)
		assert.Equal(t, ActionSelectDebtor, row[0].Action.Kind)
		if row[0].Action.ID == second.ID {
			picked = row[0].Action
		}
	}
	require.Equal(t, second.ID, picked.ID)

	env.callback(chat, picked)

	s := env.session(chat)
	require.Equal(t, session.StateAddingDebtAmount, s.State)
	form, ok := s.Form.(*session.DebtForm)
	require.True(t, ok)
	assert.Equal(t, second.ID, form.DebtorID)
}

func TestSearchDebtorsSelectionForPayment(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	owner := env.addOwner("Sardor", "+998900000002")
	first := &debtor.Debtor{Name: "Olim Karimov", Phone: "+998901112233", ShopID: owner.ShopID}
	second := &debtor.Debtor{Name: "Olim Rashidov", Phone: "+998901112244", ShopID: owner.ShopID}
	_ = env.debtors.AddDebtor(context.Background(), first)
	_ = env.debtors.AddDebtor(context.Background(), second)
	loginOwner(t, env, owner)

	env.text(chat, btnCloseDebt)
	env.text(chat, "olim")
	require.Equal(t, session.StateSearchDebtorForPayment, env.session(chat).State)

	env.callback(chat, Action{Kind: ActionSelectDebtor, ID: first.ID})

	s := env.session(chat)
	require.Equal(t, session.StateAddingPaymentAmount, s.State)
	form, ok := s.Form.(*session.PaymentForm)
	require.True(t, ok)
	assert.Equal(t, first.ID, form.DebtorID)
}

func TestAddDebtorPhoneCheckStorageError(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	owner := env.addOwner("Sardor", "+998900000002")
	loginOwner(t, env, owner)

	env.text(chat, btnAddDebtor)
	env.text(chat, "Olim")

	// A storage failure must not read as "this phone is taken": the step stays
	// open and the reply is the generic apology.
	env.debtors.findErr = errors.New("disk I/O error")
	env.text(chat, "0901112233")

	assert.Equal(t, session.StateAddingDebtorPhone, env.session(chat).State)
	assert.True(t, env.notifier.sawText(chat, "Xatolik yuz berdi"))
	assert.False(t, env.notifier.sawText(chat, "allaqachon mavjud"))

	env.debtors.findErr = nil
	env.text(chat, "0901112233")
	assert.Equal(t, session.StateAddingDebtorAddress, env.session(chat).State)
}
