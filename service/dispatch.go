package service

import (
	"context"
	"fmt"
	"log"

	"github.com/Javohir11011/Hisob-kitob-bot/account"
	"github.com/Javohir11011/Hisob-kitob-bot/session"
)

// HandleEvent runs one inbound event through the session state machine. The
// transport serializes events per chat, so the load-mutate-save here never
// races with itself.
func (h *Service) HandleEvent(ctx context.Context, ev Event) error {
	s, err := h.stores.Sessions.Get(ctx, ev.ChatID)
	if err != nil {
		return fmt.Errorf("loading session for chat %d: %w", ev.ChatID, err)
	}

	h.route(ctx, s, ev)

	if err := h.stores.Sessions.Save(ctx, s); err != nil {
		return fmt.Errorf("saving session for chat %d: %w", ev.ChatID, err)
	}
	return nil
}

func (h *Service) route(ctx context.Context, s *session.Session, ev Event) {
	switch ev.Kind {
	case EventStart:
		h.showWelcome(s)
		return
	case EventCommand:
		h.handleCommand(ctx, s, ev.Command)
		return
	case EventText:
		if ev.Text == cancelToken && s.State.Collecting() {
			h.cancelFlow(ctx, s)
			return
		}
	}

	// Auth states pre-empt everything, then the session's flow family decides.
	// Role checks guard against a state family the session should not own; the
	// fallback re-derives both from the stored phone.
	switch s.State.Flow() {
	case session.FlowAuth:
		h.handleAuth(ctx, s, ev)
	case session.FlowDebtor:
		if s.Role == account.RoleDebtor {
			h.handleDebtorFlow(ctx, s, ev)
			return
		}
		h.recoverSession(ctx, s)
	case session.FlowSuperAdmin:
		h.handleSuperAdmin(ctx, s, ev)
	case session.FlowShopOwner:
		if s.Role == account.RoleShopOwner || s.Role == account.RoleShopHelper {
			h.handleShopFlow(ctx, s, ev)
			return
		}
		h.recoverSession(ctx, s)
	default:
		h.recoverSession(ctx, s)
	}
}

func (h *Service) showWelcome(s *session.Session) {
	h.send(s.ChatID, Message{
		Text: "👋 Assalomu alaykum! Hisob-kitob botiga xush kelibsiz.\n\n" +
			"🔐 Do'kon egasi yoki admin bo'lsangiz: /login\n" +
			"👤 Qarzdor sifatida kirish uchun: /login_debtor",
		RemoveKeyboard: true,
	})
}

func (h *Service) handleCommand(ctx context.Context, s *session.Session, command string) {
	switch command {
	case "login":
		s.Enter(session.StateAwaitingPassword)
		s.Form = &session.LoginForm{}
		h.send(s.ChatID, Message{Text: "🔑 Parolni kiriting:", Keyboard: cancelKeyboard()})
	case "login_debtor":
		s.Enter(session.StateDebtorLoginPassword)
		s.Form = &session.LoginForm{Debtor: true}
		h.send(s.ChatID, Message{Text: "🔑 Parolni kiriting:", Keyboard: cancelKeyboard()})
	case "menyu":
		h.showMenuForRole(ctx, s)
	default:
		// Unknown commands fall through silently, the UX is menu driven.
	}
}

func (h *Service) showMenuForRole(ctx context.Context, s *session.Session) {
	switch s.Role {
	case account.RoleSuperAdmin:
		h.showSuperAdminMenu(s)
	case account.RoleShopOwner, account.RoleShopHelper:
		h.showShopOwnerMenu(s)
	case account.RoleDebtor:
		h.showDebtorMenu(s)
	default:
		h.recoverSession(ctx, s)
	}
}

// cancelFlow aborts the current collection step back to the owning role's
// menu. Entering a menu state clears the form.
func (h *Service) cancelFlow(ctx context.Context, s *session.Session) {
	h.text(s.ChatID, "❌ Bekor qilindi")

	switch s.State.Flow() {
	case session.FlowSuperAdmin:
		h.showSuperAdminMenu(s)
	case session.FlowShopOwner:
		h.showShopOwnerMenu(s)
	case session.FlowDebtor:
		h.showDebtorMenu(s)
	default:
		s.Enter(session.StateNone)
		h.recoverSession(ctx, s)
	}
}

// recoverSession rebuilds a lost or inconsistent session from its phone: the
// phone is resolved against the directory and the user lands on their menu.
// Sessions without a recognizable identity are dropped silently.
func (h *Service) recoverSession(ctx context.Context, s *session.Session) {
	if s.Phone == "" {
		return
	}

	entry, err := h.directory.FindByPhone(ctx, s.Phone)
	if err != nil {
		log.Printf("recovering session for chat %d: %v", s.ChatID, err)
		h.apology(s.ChatID)
		return
	}
	if entry == nil {
		return
	}

	if entry.Account != nil {
		s.Role = entry.Account.Role
		s.DebtorID = ""
		if entry.Account.Role == account.RoleSuperAdmin {
			h.showSuperAdminMenu(s)
		} else {
			h.showShopOwnerMenu(s)
		}
		return
	}

	s.Role = account.RoleDebtor
	s.DebtorID = entry.Debtor.ID
	h.showDebtorMenu(s)
}
