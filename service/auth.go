package service

import (
	"context"
	"errors"
	"log"

	"github.com/Javohir11011/Hisob-kitob-bot/account"
	"github.com/Javohir11011/Hisob-kitob-bot/debtor"
	"github.com/Javohir11011/Hisob-kitob-bot/phone"
	"github.com/Javohir11011/Hisob-kitob-bot/session"
)

func (h *Service) handleAuth(ctx context.Context, s *session.Session, ev Event) {
	switch s.State {
	case session.StateAwaitingPassword, session.StateDebtorLoginPassword:
		h.collectLoginPassword(s, ev)
	case session.StateAwaitingPhone:
		h.finishStaffLogin(ctx, s, ev)
	case session.StateDebtorLoginPhone:
		h.finishDebtorLogin(ctx, s, ev)
	}
}

func (h *Service) collectLoginPassword(s *session.Session, ev Event) {
	if ev.Kind != EventText || ev.Text == "" {
		return
	}

	form, ok := s.Form.(*session.LoginForm)
	if !ok {
		form = &session.LoginForm{Debtor: s.State == session.StateDebtorLoginPassword}
	}
	form.Password = ev.Text

	if form.Debtor {
		s.Enter(session.StateDebtorLoginPhone)
	} else {
		s.Enter(session.StateAwaitingPhone)
	}
	s.Form = form

	h.send(s.ChatID, Message{
		Text:          "📱 Telefon raqamingizni yuboring yoki yozing:",
		ContactButton: "📱 Telefon raqamni yuborish",
	})
}

func (h *Service) eventPhone(ev Event) string {
	if ev.Kind == EventContact {
		return phone.Normalize(ev.Phone)
	}
	if ev.Kind == EventText {
		return phone.Normalize(ev.Text)
	}
	return ""
}

// finishStaffLogin resolves the phone against staff accounts. The phone is
// not format-validated here: whatever the account was registered with wins.
func (h *Service) finishStaffLogin(ctx context.Context, s *session.Session, ev Event) {
	p := h.eventPhone(ev)
	if p == "" {
		return
	}

	form, ok := s.Form.(*session.LoginForm)
	if !ok {
		s.Enter(session.StateNone)
		h.text(s.ChatID, "❌ Kirish jarayoni buzildi. /login bilan qaytadan urining.")
		return
	}

	a, err := h.stores.Accounts.FindAccountByPhone(ctx, p)
	if err != nil {
		// Only a confirmed miss counts as an authentication failure. A storage
		// error keeps the login step open for a retry.
		var notFound *account.ErrNotFound
		if !errors.As(err, &notFound) {
			log.Printf("looking up account for login: %v", err)
			h.apology(s.ChatID)
			return
		}
		s.Enter(session.StateNone)
		h.send(s.ChatID, Message{
			Text:           "❌ Bunday foydalanuvchi topilmadi. /login bilan qaytadan urining.",
			RemoveKeyboard: true,
		})
		return
	}

	if !h.hasher.Compare(form.Password, a.PasswordHash) {
		s.Enter(session.StateNone)
		h.send(s.ChatID, Message{
			Text:           "❌ Parol noto'g'ri. /login bilan qaytadan urining.",
			RemoveKeyboard: true,
		})
		return
	}

	s.Role = a.Role
	s.Phone = a.Phone
	s.DebtorID = ""
	log.Printf("staff login for chat %d role %s", s.ChatID, a.Role)

	h.text(s.ChatID, "✅ Xush kelibsiz, "+a.Name+"!")
	if a.Role == account.RoleSuperAdmin {
		h.showSuperAdminMenu(s)
		return
	}
	h.showShopOwnerMenu(s)
}

func (h *Service) finishDebtorLogin(ctx context.Context, s *session.Session, ev Event) {
	p := h.eventPhone(ev)
	if p == "" {
		return
	}

	// Debtor phones were collected by shop owners through the validated add
	// flow, so an invalid format can only be a typo worth re-prompting.
	if !phone.Valid(p) {
		h.text(s.ChatID, "❌ Telefon raqam formati noto'g'ri. Masalan: +998901234567")
		return
	}

	form, ok := s.Form.(*session.LoginForm)
	if !ok {
		s.Enter(session.StateNone)
		h.text(s.ChatID, "❌ Kirish jarayoni buzildi. /login_debtor bilan qaytadan urining.")
		return
	}

	dr, err := h.stores.Debtors.FindDebtorByPhone(ctx, p)
	if err != nil {
		var notFound *debtor.ErrNotFound
		if !errors.As(err, &notFound) {
			log.Printf("looking up debtor for login: %v", err)
			h.apology(s.ChatID)
			return
		}
		h.text(s.ChatID, "❌ Bu raqam bilan qarzdor topilmadi. Qaytadan kiriting:")
		return
	}

	if dr.PasswordHash == "" || !h.hasher.Compare(form.Password, dr.PasswordHash) {
		s.Enter(session.StateNone)
		h.send(s.ChatID, Message{
			Text:           "❌ Parol noto'g'ri. /login_debtor bilan qaytadan urining.",
			RemoveKeyboard: true,
		})
		return
	}

	s.Role = account.RoleDebtor
	s.Phone = dr.Phone
	s.DebtorID = dr.ID
	log.Printf("debtor login for chat %d", s.ChatID)

	h.text(s.ChatID, "✅ Xush kelibsiz, "+dr.Name+"!")
	h.showDebtorMenu(s)
}
