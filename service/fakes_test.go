package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/Javohir11011/Hisob-kitob-bot/account"
	"github.com/Javohir11011/Hisob-kitob-bot/auth"
	"github.com/Javohir11011/Hisob-kitob-bot/debt"
	"github.com/Javohir11011/Hisob-kitob-bot/debtor"
	"github.com/Javohir11011/Hisob-kitob-bot/ledger"
	"github.com/Javohir11011/Hisob-kitob-bot/session"
	"github.com/Javohir11011/Hisob-kitob-bot/shop"
	"github.com/Javohir11011/Hisob-kitob-bot/storage/directory"
)

// recordingNotifier captures every outbound message per chat.
type recordingNotifier struct {
	sent map[int64][]Message
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{sent: make(map[int64][]Message)}
}

func (n *recordingNotifier) Send(chatID int64, msg Message) error {
	n.sent[chatID] = append(n.sent[chatID], msg)
	return nil
}

func (n *recordingNotifier) last(chatID int64) Message {
	msgs := n.sent[chatID]
	if len(msgs) == 0 {
		return Message{}
	}
	return msgs[len(msgs)-1]
}

func (n *recordingNotifier) sawText(chatID int64, substr string) bool {
	for _, msg := range n.sent[chatID] {
		if strings.Contains(msg.Text, substr) {
			return true
		}
	}
	return false
}

// plainHasher makes password assertions readable in tests.
type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "hash:" + plain, nil }
func (plainHasher) Compare(plain, hash string) bool   { return "hash:"+plain == hash }

var _ auth.PasswordHasher = plainHasher{}

type fakeSessionStore struct {
	sessions map[int64]*session.Session
}

func (f *fakeSessionStore) Get(_ context.Context, chatID int64) (*session.Session, error) {
	if s, ok := f.sessions[chatID]; ok {
		copied := *s
		return &copied, nil
	}
	return session.New(chatID), nil
}

func (f *fakeSessionStore) Save(_ context.Context, s *session.Session) error {
	copied := *s
	f.sessions[s.ChatID] = &copied
	return nil
}

type fakeAccountStore struct {
	accounts map[string]*account.Account
	// findErr makes FindAccountByPhone fail, simulating a storage outage.
	findErr error
}

func (f *fakeAccountStore) AddAccount(_ context.Context, a *account.Account) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	f.accounts[a.ID] = a
	return nil
}

func (f *fakeAccountStore) GetAccount(_ context.Context, id string) (*account.Account, error) {
	if a, ok := f.accounts[id]; ok {
		return a, nil
	}
	return nil, &account.ErrNotFound{Key: id}
}

func (f *fakeAccountStore) FindAccountByPhone(_ context.Context, phone string) (*account.Account, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, a := range f.accounts {
		if a.Phone == phone {
			return a, nil
		}
	}
	return nil, &account.ErrNotFound{Key: phone}
}

func (f *fakeAccountStore) ListAccounts(_ context.Context, filter account.ListFilter) ([]*account.Account, error) {
	out := []*account.Account{}
	for _, a := range f.accounts {
		if filter.Role != "" && a.Role != filter.Role {
			continue
		}
		if filter.Query != "" &&
			!strings.Contains(strings.ToLower(a.Name), strings.ToLower(filter.Query)) &&
			!strings.Contains(a.Phone, filter.Query) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []*account.Account{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeAccountStore) CountAccounts(ctx context.Context, role account.Role) (int, error) {
	all, _ := f.ListAccounts(ctx, account.ListFilter{Role: role})
	return len(all), nil
}

func (f *fakeAccountStore) UpdateAccountField(_ context.Context, id string, field account.UpdateField, value string) error {
	a, ok := f.accounts[id]
	if !ok {
		return &account.ErrNotFound{Key: id}
	}
	switch field {
	case account.FieldName:
		a.Name = value
	case account.FieldPhone:
		a.Phone = value
	case account.FieldShop:
		a.ShopID = value
	}
	return nil
}

func (f *fakeAccountStore) RemoveAccount(_ context.Context, id string) error {
	delete(f.accounts, id)
	return nil
}

type fakeShopStore struct {
	shops map[string]*shop.Shop
}

func (f *fakeShopStore) AddShop(_ context.Context, s *shop.Shop) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	f.shops[s.ID] = s
	return nil
}

func (f *fakeShopStore) GetShop(_ context.Context, id string) (*shop.Shop, error) {
	if s, ok := f.shops[id]; ok {
		return s, nil
	}
	return nil, &shop.ErrNotFound{Key: id}
}

func (f *fakeShopStore) FindShopByName(_ context.Context, name string) (*shop.Shop, error) {
	for _, s := range f.shops {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, &shop.ErrNotFound{Key: name}
}

type fakeDebtorStore struct {
	debtors map[string]*debtor.Debtor
	debts   *fakeDebtStore
	// findErr makes FindDebtorByPhone fail, simulating a storage outage.
	findErr error
}

func (f *fakeDebtorStore) AddDebtor(_ context.Context, d *debtor.Debtor) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	f.debtors[d.ID] = d
	return nil
}

func (f *fakeDebtorStore) GetDebtor(_ context.Context, id string) (*debtor.Debtor, error) {
	if d, ok := f.debtors[id]; ok {
		return d, nil
	}
	return nil, &debtor.ErrNotFound{Key: id}
}

func (f *fakeDebtorStore) FindDebtorByPhone(_ context.Context, phone string) (*debtor.Debtor, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, d := range f.debtors {
		if d.Phone == phone {
			return d, nil
		}
	}
	return nil, &debtor.ErrNotFound{Key: phone}
}

func (f *fakeDebtorStore) ListDebtorsForShop(_ context.Context, shopID string) ([]*debtor.Debtor, error) {
	out := []*debtor.Debtor{}
	for _, d := range f.debtors {
		if d.ShopID == shopID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeDebtorStore) SearchDebtors(ctx context.Context, shopID, query string) ([]*debtor.Debtor, error) {
	all, _ := f.ListDebtorsForShop(ctx, shopID)
	out := []*debtor.Debtor{}
	for _, d := range all {
		if strings.Contains(strings.ToLower(d.Name), strings.ToLower(query)) ||
			strings.Contains(d.Phone, query) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDebtorStore) RemoveDebtor(ctx context.Context, id string) error {
	if err := f.debts.RemoveDebtsForDebtor(ctx, id); err != nil {
		return err
	}
	delete(f.debtors, id)
	return nil
}

type fakeDebtStore struct {
	debts    map[string]*debt.Debt
	payments map[string]*debt.Payment
	order    []string
	debtors  *fakeDebtorStore
}

func (f *fakeDebtStore) AddDebt(_ context.Context, d *debt.Debt) error {
	f.debts[d.ID] = d
	f.order = append(f.order, d.ID)
	return nil
}

func (f *fakeDebtStore) GetDebt(_ context.Context, id string) (*debt.Debt, error) {
	if d, ok := f.debts[id]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("debt %s not found", id)
}

func (f *fakeDebtStore) ListDebtsForDebtor(_ context.Context, debtorID string) ([]*debt.Debt, error) {
	out := []*debt.Debt{}
	for _, id := range f.order {
		if d, ok := f.debts[id]; ok && d.DebtorID == debtorID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDebtStore) ListUnpaidForDebtor(ctx context.Context, debtorID string) ([]*debt.Debt, error) {
	all, _ := f.ListDebtsForDebtor(ctx, debtorID)
	out := []*debt.Debt{}
	for _, d := range all {
		if d.Status == debt.StatusUnpaid {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDebtStore) SetDebtAmount(_ context.Context, id string, amount int64) error {
	d, ok := f.debts[id]
	if !ok {
		return fmt.Errorf("debt %s not found", id)
	}
	d.Amount = amount
	return nil
}

func (f *fakeDebtStore) RemoveDebt(_ context.Context, id string) error {
	delete(f.debts, id)
	return nil
}

func (f *fakeDebtStore) RemoveDebtsForDebtor(ctx context.Context, debtorID string) error {
	all, _ := f.ListDebtsForDebtor(ctx, debtorID)
	for _, d := range all {
		delete(f.debts, d.ID)
	}
	return nil
}

func (f *fakeDebtStore) OutstandingForShop(ctx context.Context, shopID string) (int64, error) {
	var total int64
	for _, d := range f.debts {
		if d.Status != debt.StatusUnpaid {
			continue
		}
		if dr, ok := f.debtors.debtors[d.DebtorID]; ok && dr.ShopID == shopID {
			total += d.Amount
		}
	}
	return total, nil
}

func (f *fakeDebtStore) AddPayment(_ context.Context, p *debt.Payment) error {
	f.payments[p.ID] = p
	return nil
}

func (f *fakeDebtStore) GetPayment(_ context.Context, id string) (*debt.Payment, error) {
	if p, ok := f.payments[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("payment %s not found", id)
}

func (f *fakeDebtStore) ListPaymentsForDebtor(_ context.Context, debtorID string) ([]*debt.Payment, error) {
	out := []*debt.Payment{}
	for _, p := range f.payments {
		if p.DebtorID == debtorID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeDebtStore) ListUnapprovedForShop(_ context.Context, shopID string) ([]*debt.Payment, error) {
	out := []*debt.Payment{}
	for _, p := range f.payments {
		if p.Approved {
			continue
		}
		if dr, ok := f.debtors.debtors[p.DebtorID]; ok && dr.ShopID == shopID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeDebtStore) SetPaymentApproved(_ context.Context, id string) error {
	p, ok := f.payments[id]
	if !ok {
		return fmt.Errorf("payment %s not found", id)
	}
	p.Approved = true
	return nil
}

// testEnv wires a full Service against in-memory stores.
type testEnv struct {
	svc      *Service
	notifier *recordingNotifier
	sessions *fakeSessionStore
	accounts *fakeAccountStore
	shops    *fakeShopStore
	debtors  *fakeDebtorStore
	debts    *fakeDebtStore
}

func newTestEnv() *testEnv {
	debts := &fakeDebtStore{
		debts:    make(map[string]*debt.Debt),
		payments: make(map[string]*debt.Payment),
	}
	debtors := &fakeDebtorStore{debtors: make(map[string]*debtor.Debtor), debts: debts}
	debts.debtors = debtors

	env := &testEnv{
		notifier: newRecordingNotifier(),
		sessions: &fakeSessionStore{sessions: make(map[int64]*session.Session)},
		accounts: &fakeAccountStore{accounts: make(map[string]*account.Account)},
		shops:    &fakeShopStore{shops: make(map[string]*shop.Shop)},
		debtors:  debtors,
		debts:    debts,
	}

	cfg := Config{MinAmount: 1000, SupportPhone: "+998 99 123 45 67", StatsPageSize: 10}
	env.svc = New(cfg, Stores{
		Sessions: env.sessions,
		Accounts: env.accounts,
		Shops:    env.shops,
		Debtors:  env.debtors,
		Debts:    env.debts,
	}, directory.New(env.accounts, env.debtors), ledger.New(env.debts), plainHasher{}, env.notifier)

	return env
}

func (e *testEnv) addOwner(name, phone string) *account.Account {
	sh := &shop.Shop{Name: name + " do'koni"}
	_ = e.shops.AddShop(context.Background(), sh)
	a := &account.Account{
		Name:         name,
		Phone:        phone,
		PasswordHash: "hash:secret",
		Role:         account.RoleShopOwner,
		ShopID:       sh.ID,
	}
	_ = e.accounts.AddAccount(context.Background(), a)
	return a
}

func (e *testEnv) text(chatID int64, text string) {
	_ = e.svc.HandleEvent(context.Background(), Event{ChatID: chatID, Kind: EventText, Text: text})
}

func (e *testEnv) command(chatID int64, command string) {
	_ = e.svc.HandleEvent(context.Background(), Event{ChatID: chatID, Kind: EventCommand, Command: command})
}

func (e *testEnv) callback(chatID int64, a Action) {
	_ = e.svc.HandleEvent(context.Background(), Event{ChatID: chatID, Kind: EventCallback, Action: a})
}

func (e *testEnv) session(chatID int64) *session.Session {
	s, _ := e.sessions.Get(context.Background(), chatID)
	return s
}
