// Package service holds the conversation state machines: one inbound event
// plus the persisted session produce replies and the next session state.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Javohir11011/Hisob-kitob-bot/account"
	"github.com/Javohir11011/Hisob-kitob-bot/auth"
	"github.com/Javohir11011/Hisob-kitob-bot/debt"
	"github.com/Javohir11011/Hisob-kitob-bot/debtor"
	"github.com/Javohir11011/Hisob-kitob-bot/ledger"
	"github.com/Javohir11011/Hisob-kitob-bot/phone"
	"github.com/Javohir11011/Hisob-kitob-bot/session"
	"github.com/Javohir11011/Hisob-kitob-bot/shop"
	"github.com/Javohir11011/Hisob-kitob-bot/storage/directory"
)

type Config struct {
	// MinAmount is the exclusive floor for debt and payment amounts.
	MinAmount     int64  `env:"MIN_AMOUNT" envDefault:"1000"`
	SupportPhone  string `env:"SUPPORT_PHONE" envDefault:"+998 99 123 45 67"`
	StatsPageSize int    `env:"STATS_PAGE_SIZE" envDefault:"10"`
}

// Button is one inline keyboard button.
type Button struct {
	Label  string
	Action Action
}

// Message is a transport-agnostic outbound message.
type Message struct {
	Text string
	// Keyboard replaces the reply keyboard when set.
	Keyboard [][]string
	// Inline attaches inline buttons to this message.
	Inline [][]Button
	// ContactButton adds a one-button reply keyboard requesting the user's
	// contact card.
	ContactButton string
	// RemoveKeyboard hides the current reply keyboard.
	RemoveKeyboard bool
}

type Notifier interface {
	Send(chatID int64, msg Message) error
}

// Stores bundles the persistence interfaces the flows depend on.
type Stores struct {
	Sessions session.Store
	Accounts account.Store
	Shops    shop.Store
	Debtors  debtor.Store
	Debts    debt.Store
}

type Service struct {
	cfg       Config
	stores    Stores
	directory *directory.Directory
	ledger    *ledger.Engine
	hasher    auth.PasswordHasher
	notifier  Notifier
}

func New(cfg Config, stores Stores, dir *directory.Directory, engine *ledger.Engine,
	hasher auth.PasswordHasher, notifier Notifier) *Service {
	return &Service{
		cfg:       cfg,
		stores:    stores,
		directory: dir,
		ledger:    engine,
		hasher:    hasher,
		notifier:  notifier,
	}
}

// send delivers a message, logging delivery failures. Outbound delivery is
// best effort; the session transition already happened.
func (h *Service) send(chatID int64, msg Message) {
	if err := h.notifier.Send(chatID, msg); err != nil {
		log.Printf("sending message to chat %d: %v", chatID, err)
	}
}

func (h *Service) text(chatID int64, text string) {
	h.send(chatID, Message{Text: text})
}

func (h *Service) apology(chatID int64) {
	h.text(chatID, "⚠️ Xatolik yuz berdi. Birozdan so'ng qayta urinib ko'ring.")
}

// BootstrapAdmin provisions a SUPER_ADMIN account. It backs the out-of-band
// HTTP endpoint used to seed the very first admin.
func (h *Service) BootstrapAdmin(ctx context.Context, name, rawPhone, password string) error {
	p := phone.Normalize(rawPhone)
	if !phone.Valid(p) {
		return fmt.Errorf("invalid phone %q", rawPhone)
	}

	_, err := h.stores.Accounts.FindAccountByPhone(ctx, p)
	if err == nil {
		return fmt.Errorf("account with phone %s already exists", p)
	}
	var notFound *account.ErrNotFound
	if !errors.As(err, &notFound) {
		return fmt.Errorf("checking phone %s: %w", p, err)
	}

	hash, err := h.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	if err := h.stores.Accounts.AddAccount(ctx, &account.Account{
		Name:         name,
		Phone:        p,
		PasswordHash: hash,
		Role:         account.RoleSuperAdmin,
	}); err != nil {
		return fmt.Errorf("adding admin account: %w", err)
	}

	return nil
}
