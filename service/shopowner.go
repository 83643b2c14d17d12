package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/Javohir11011/Hisob-kitob-bot/account"
	"github.com/Javohir11011/Hisob-kitob-bot/debt"
	"github.com/Javohir11011/Hisob-kitob-bot/debtor"
	"github.com/Javohir11011/Hisob-kitob-bot/ledger"
	"github.com/Javohir11011/Hisob-kitob-bot/phone"
	"github.com/Javohir11011/Hisob-kitob-bot/session"
)

func (h *Service) showShopOwnerMenu(s *session.Session) {
	s.Enter(session.StateShopOwnerMenu)
	h.send(s.ChatID, Message{
		Text:     "🏪 Do'kon menyusi",
		Keyboard: shopOwnerKeyboard(),
	})
}

// currentAccount resolves the staff account behind the session.
func (h *Service) currentAccount(ctx context.Context, s *session.Session) (*account.Account, error) {
	return h.stores.Accounts.FindAccountByPhone(ctx, s.Phone)
}

func (h *Service) handleShopFlow(ctx context.Context, s *session.Session, ev Event) {
	if ev.Kind == EventCallback {
		h.handleShopAction(ctx, s, ev.Action)
		return
	}
	if ev.Kind != EventText {
		return
	}

	switch s.State {
	case session.StateShopOwnerMenu:
		h.handleShopOwnerMenu(ctx, s, ev.Text)
	case session.StateShopOwnerProfile:
		if ev.Text == btnBack {
			h.showShopOwnerMenu(s)
		}
	case session.StateAddingDebtorName:
		h.collectDebtorName(s, ev.Text)
	case session.StateAddingDebtorPhone:
		h.collectDebtorPhone(ctx, s, ev.Text)
	case session.StateAddingDebtorAddress:
		h.collectDebtorAddress(s, ev.Text)
	case session.StateAddingDebtorPassword:
		h.createDebtor(ctx, s, ev.Text)
	case session.StateAddingHelperName:
		h.collectHelperName(s, ev.Text)
	case session.StateAddingHelperPhone:
		h.collectHelperPhone(ctx, s, ev.Text)
	case session.StateAddingHelperPassword:
		h.createHelper(ctx, s, ev.Text)
	case session.StateSearchDebtorForDebt, session.StateSearchDebtorForPayment:
		h.searchDebtors(ctx, s, ev.Text)
	case session.StateAddingDebtAmount:
		h.collectDebtAmount(s, ev.Text)
	case session.StateAddingDebtNote:
		h.createDebt(ctx, s, ev.Text)
	case session.StateAddingPaymentAmount:
		h.applyOwnerPayment(ctx, s, ev.Text)
	}
}

func (h *Service) handleShopOwnerMenu(ctx context.Context, s *session.Session, text string) {
	switch text {
	case btnDebtors:
		h.showDebtors(ctx, s)
	case btnAddDebtor:
		s.Enter(session.StateAddingDebtorName)
		s.Form = &session.DebtorForm{}
		h.send(s.ChatID, Message{Text: "👤 Qarzdorning ismini kiriting:", Keyboard: cancelKeyboard()})
	case btnAddDebt:
		s.Enter(session.StateSearchDebtorForDebt)
		h.send(s.ChatID, Message{Text: "🔍 Qarzdorni ism yoki telefon bo'yicha qidiring:", Keyboard: cancelKeyboard()})
	case btnCloseDebt:
		s.Enter(session.StateSearchDebtorForPayment)
		h.send(s.ChatID, Message{Text: "🔍 To'lov qiluvchi qarzdorni qidiring:", Keyboard: cancelKeyboard()})
	case btnPayments:
		h.showPendingPayments(ctx, s)
	case btnAddHelper:
		s.Enter(session.StateAddingHelperName)
		s.Form = &session.HelperForm{}
		h.send(s.ChatID, Message{Text: "👤 Yordamchining ismini kiriting:", Keyboard: cancelKeyboard()})
	case btnProfile:
		h.showOwnerProfile(ctx, s)
	}
}

// parseAmount parses a debt or payment amount. Anything non-numeric or at or
// below the configured floor is rejected.
func (h *Service) parseAmount(text string) (int64, bool) {
	v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil || v <= h.cfg.MinAmount {
		return 0, false
	}
	return v, true
}

func (h *Service) badAmount(chatID int64) {
	h.text(chatID, fmt.Sprintf("❌ Summa noto'g'ri. %s dan katta butun son kiriting:",
		formatMoney(h.cfg.MinAmount)))
}

func (h *Service) collectDebtorName(s *session.Session, text string) {
	form, ok := s.Form.(*session.DebtorForm)
	if !ok {
		h.showShopOwnerMenu(s)
		return
	}
	form.Name = strings.TrimSpace(text)
	s.Enter(session.StateAddingDebtorPhone)
	s.Form = form
	h.text(s.ChatID, "📱 Telefon raqamini kiriting:")
}

func (h *Service) collectDebtorPhone(ctx context.Context, s *session.Session, text string) {
	form, ok := s.Form.(*session.DebtorForm)
	if !ok {
		h.showShopOwnerMenu(s)
		return
	}

	p := phone.Normalize(text)
	if !phone.Valid(p) {
		h.text(s.ChatID, "❌ Telefon raqam formati noto'g'ri. Masalan: +998901234567")
		return
	}
	_, err := h.stores.Debtors.FindDebtorByPhone(ctx, p)
	if err == nil {
		h.text(s.ChatID, "❌ Bu raqamli qarzdor allaqachon mavjud. Boshqa raqam kiriting:")
		return
	}
	// Only a confirmed miss proves the phone is free.
	var debtorNotFound *debtor.ErrNotFound
	if !errors.As(err, &debtorNotFound) {
		log.Printf("checking debtor phone %s: %v", p, err)
		h.apology(s.ChatID)
		return
	}

	form.Phone = p
	s.Enter(session.StateAddingDebtorAddress)
	s.Form = form
	h.text(s.ChatID, "📍 Manzilini kiriting (yo'q bo'lsa -):")
}

func (h *Service) collectDebtorAddress(s *session.Session, text string) {
	form, ok := s.Form.(*session.DebtorForm)
	if !ok {
		h.showShopOwnerMenu(s)
		return
	}
	address := strings.TrimSpace(text)
	if address == "-" {
		address = ""
	}
	form.Address = address
	s.Enter(session.StateAddingDebtorPassword)
	s.Form = form
	h.text(s.ChatID, "🔑 Qarzdor uchun parol kiriting (kirishni xohlamasa -):")
}

func (h *Service) createDebtor(ctx context.Context, s *session.Session, text string) {
	form, ok := s.Form.(*session.DebtorForm)
	if !ok {
		h.showShopOwnerMenu(s)
		return
	}

	a, err := h.currentAccount(ctx, s)
	if err != nil {
		log.Printf("resolving account for chat %d: %v", s.ChatID, err)
		h.apology(s.ChatID)
		h.showShopOwnerMenu(s)
		return
	}

	// "-" leaves self-service login disabled.
	var hash string
	if text != "-" {
		hash, err = h.hasher.Hash(text)
		if err != nil {
			log.Printf("hashing debtor password: %v", err)
			h.apology(s.ChatID)
			h.showShopOwnerMenu(s)
			return
		}
	}

	if err := h.stores.Debtors.AddDebtor(ctx, &debtor.Debtor{
		Name:         form.Name,
		Phone:        form.Phone,
		Address:      form.Address,
		PasswordHash: hash,
		ShopID:       a.ShopID,
	}); err != nil {
		log.Printf("adding debtor: %v", err)
		h.apology(s.ChatID)
		h.showShopOwnerMenu(s)
		return
	}

	h.text(s.ChatID, fmt.Sprintf("✅ Qarzdor qo'shildi:\n👤 %s\n📱 %s", form.Name, form.Phone))
	h.showShopOwnerMenu(s)
}

func (h *Service) collectHelperName(s *session.Session, text string) {
	form, ok := s.Form.(*session.HelperForm)
	if !ok {
		h.showShopOwnerMenu(s)
		return
	}
	form.Name = strings.TrimSpace(text)
	s.Enter(session.StateAddingHelperPhone)
	s.Form = form
	h.text(s.ChatID, "📱 Telefon raqamini kiriting:")
}

func (h *Service) collectHelperPhone(ctx context.Context, s *session.Session, text string) {
	form, ok := s.Form.(*session.HelperForm)
	if !ok {
		h.showShopOwnerMenu(s)
		return
	}

	p := phone.Normalize(text)
	if !phone.Valid(p) {
		h.text(s.ChatID, "❌ Telefon raqam formati noto'g'ri. Masalan: +998901234567")
		return
	}
	_, err := h.stores.Accounts.FindAccountByPhone(ctx, p)
	if err == nil {
		h.text(s.ChatID, "❌ Bu raqam allaqachon ro'yxatdan o'tgan. Boshqa raqam kiriting:")
		return
	}
	var accountNotFound *account.ErrNotFound
	if !errors.As(err, &accountNotFound) {
		log.Printf("checking helper phone %s: %v", p, err)
		h.apology(s.ChatID)
		return
	}

	form.Phone = p
	s.Enter(session.StateAddingHelperPassword)
	s.Form = form
	h.text(s.ChatID, "🔑 Parol o'ylab toping:")
}

func (h *Service) createHelper(ctx context.Context, s *session.Session, text string) {
	form, ok := s.Form.(*session.HelperForm)
	if !ok {
		h.showShopOwnerMenu(s)
		return
	}

	a, err := h.currentAccount(ctx, s)
	if err != nil {
		log.Printf("resolving account for chat %d: %v", s.ChatID, err)
		h.apology(s.ChatID)
		h.showShopOwnerMenu(s)
		return
	}

	hash, err := h.hasher.Hash(text)
	if err != nil {
		log.Printf("hashing helper password: %v", err)
		h.apology(s.ChatID)
		h.showShopOwnerMenu(s)
		return
	}

	if err := h.stores.Accounts.AddAccount(ctx, &account.Account{
		Name:         form.Name,
		Phone:        form.Phone,
		PasswordHash: hash,
		Role:         account.RoleShopHelper,
		ShopID:       a.ShopID,
	}); err != nil {
		log.Printf("adding helper account: %v", err)
		h.apology(s.ChatID)
		h.showShopOwnerMenu(s)
		return
	}

	h.text(s.ChatID, fmt.Sprintf("✅ Yordamchi qo'shildi:\n👤 %s\n📱 %s", form.Name, form.Phone))
	h.showShopOwnerMenu(s)
}

// searchDebtors serves both the add-debt and the close-debt entry: zero
// matches return to the menu, a single match advances directly, several
// matches become selection buttons.
func (h *Service) searchDebtors(ctx context.Context, s *session.Session, query string) {
	a, err := h.currentAccount(ctx, s)
	if err != nil {
		log.Printf("resolving account for chat %d: %v", s.ChatID, err)
		h.apology(s.ChatID)
		h.showShopOwnerMenu(s)
		return
	}

	found, err := h.stores.Debtors.SearchDebtors(ctx, a.ShopID, strings.TrimSpace(query))
	if err != nil {
		log.Printf("searching debtors: %v", err)
		h.apology(s.ChatID)
		h.showShopOwnerMenu(s)
		return
	}

	switch len(found) {
	case 0:
		h.text(s.ChatID, "🔍 Hech narsa topilmadi.")
		h.showShopOwnerMenu(s)
	case 1:
		h.selectDebtor(ctx, s, found[0].ID)
	default:
		buttons := make([][]Button, 0, len(found))
		for _, dr := range found {
			buttons = append(buttons, []Button{{
				Label:  fmt.Sprintf("%s (%s)", dr.Name, dr.Phone),
				Action: Action{Kind: ActionSelectDebtor, ID: dr.ID},
			}})
		}
		h.send(s.ChatID, Message{Text: "👥 Qaysi qarzdor?", Inline: buttons})
	}
}

// selectDebtor advances the search state it was reached from: towards a new
// debt or towards an owner-entered payment.
func (h *Service) selectDebtor(ctx context.Context, s *session.Session, debtorID string) {
	dr, err := h.stores.Debtors.GetDebtor(ctx, debtorID)
	if err != nil {
		log.Printf("loading debtor %s: %v", debtorID, err)
		h.apology(s.ChatID)
		h.showShopOwnerMenu(s)
		return
	}

	if s.State == session.StateSearchDebtorForPayment {
		outstanding, err := h.ledger.Outstanding(ctx, dr.ID)
		if err != nil {
			log.Printf("outstanding for debtor %s: %v", dr.ID, err)
			h.apology(s.ChatID)
			h.showShopOwnerMenu(s)
			return
		}
		s.Enter(session.StateAddingPaymentAmount)
		s.Form = &session.PaymentForm{DebtorID: dr.ID}
		h.send(s.ChatID, Message{
			Text: fmt.Sprintf("👤 %s\n💰 Umumiy qarzi: %s\n\nTo'lov summasini kiriting:",
				dr.Name, formatMoney(outstanding)),
			Keyboard: cancelKeyboard(),
		})
		return
	}

	s.Enter(session.StateAddingDebtAmount)
	s.Form = &session.DebtForm{DebtorID: dr.ID}
	h.send(s.ChatID, Message{
		Text:     fmt.Sprintf("👤 %s\n\n💵 Qarz summasini kiriting:", dr.Name),
		Keyboard: cancelKeyboard(),
	})
}

func (h *Service) collectDebtAmount(s *session.Session, text string) {
	form, ok := s.Form.(*session.DebtForm)
	if !ok {
		h.showShopOwnerMenu(s)
		return
	}

	amount, ok := h.parseAmount(text)
	if !ok {
		h.badAmount(s.ChatID)
		return
	}

	form.Amount = amount
	s.Enter(session.StateAddingDebtNote)
	s.Form = form
	h.text(s.ChatID, "📝 Izoh kiriting (yo'q bo'lsa -):")
}

func (h *Service) createDebt(ctx context.Context, s *session.Session, text string) {
	form, ok := s.Form.(*session.DebtForm)
	if !ok {
		h.showShopOwnerMenu(s)
		return
	}

	note := strings.TrimSpace(text)
	if note == "-" {
		note = ""
	}

	if err := h.stores.Debts.AddDebt(ctx, debt.NewDebt(form.DebtorID, note, form.Amount)); err != nil {
		log.Printf("adding debt: %v", err)
		h.apology(s.ChatID)
		h.showShopOwnerMenu(s)
		return
	}

	h.text(s.ChatID, "✅ Qarz qo'shildi: "+formatMoney(form.Amount))
	h.showDebtorDebts(ctx, s, form.DebtorID)
	h.showShopOwnerMenu(s)
}

// applyOwnerPayment records an owner-entered payment as approved and runs the
// allocation immediately.
func (h *Service) applyOwnerPayment(ctx context.Context, s *session.Session, text string) {
	form, ok := s.Form.(*session.PaymentForm)
	if !ok {
		h.showShopOwnerMenu(s)
		return
	}

	amount, ok := h.parseAmount(text)
	if !ok {
		h.badAmount(s.ChatID)
		return
	}

	if _, err := h.ledger.RecordPayment(ctx, form.DebtorID, "", amount, true); err != nil {
		log.Printf("recording owner payment: %v", err)
		h.apology(s.ChatID)
		h.showShopOwnerMenu(s)
		return
	}

	res, err := h.ledger.Allocate(ctx, form.DebtorID, amount)
	if err != nil {
		log.Printf("allocating owner payment: %v", err)
		h.apology(s.ChatID)
		h.showShopOwnerMenu(s)
		return
	}

	h.text(s.ChatID, formatAllocation(res))
	h.showShopOwnerMenu(s)
}

func formatAllocation(res ledger.AllocationResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ To'lov qabul qilindi: %s", formatMoney(res.AppliedTotal))
	if n := len(res.ClosedDebtIDs); n > 0 {
		fmt.Fprintf(&b, "\n🎉 %d ta qarz to'liq yopildi", n)
	}
	if res.Remainder > 0 {
		fmt.Fprintf(&b, "\nℹ️ Ortiqcha %s qarzga qo'llanmadi", formatMoney(res.Remainder))
	}
	return b.String()
}

func (h *Service) handleShopAction(ctx context.Context, s *session.Session, a Action) {
	switch a.Kind {
	case ActionSelectDebtor:
		if s.State != session.StateSearchDebtorForDebt && s.State != session.StateSearchDebtorForPayment {
			return
		}
		h.selectDebtor(ctx, s, a.ID)
	case ActionShowDebts:
		h.showDebtorDebts(ctx, s, a.ID)
	case ActionAddDebt:
		s.Enter(session.StateAddingDebtAmount)
		s.Form = &session.DebtForm{DebtorID: a.ID}
		h.send(s.ChatID, Message{Text: "💵 Qarz summasini kiriting:", Keyboard: cancelKeyboard()})
	case ActionDeleteDebtor:
		if err := h.stores.Debtors.RemoveDebtor(ctx, a.ID); err != nil {
			log.Printf("removing debtor %s: %v", a.ID, err)
			h.apology(s.ChatID)
			return
		}
		h.text(s.ChatID, "🗑 Qarzdor va uning qarzlari o'chirildi.")
		h.showDebtors(ctx, s)
	case ActionApprovePay:
		h.approvePayment(ctx, s, a.ID)
	case ActionBackToDebtors:
		h.showDebtors(ctx, s)
	}
}

func (h *Service) showDebtors(ctx context.Context, s *session.Session) {
	a, err := h.currentAccount(ctx, s)
	if err != nil {
		log.Printf("resolving account for chat %d: %v", s.ChatID, err)
		h.apology(s.ChatID)
		return
	}

	debtors, err := h.stores.Debtors.ListDebtorsForShop(ctx, a.ShopID)
	if err != nil {
		log.Printf("listing debtors: %v", err)
		h.apology(s.ChatID)
		return
	}

	if len(debtors) == 0 {
		h.text(s.ChatID, "📋 Hozircha qarzdorlar yo'q.")
		return
	}

	for _, dr := range debtors {
		outstanding, err := h.ledger.Outstanding(ctx, dr.ID)
		if err != nil {
			log.Printf("outstanding for debtor %s: %v", dr.ID, err)
			continue
		}
		h.send(s.ChatID, Message{
			Text: fmt.Sprintf("👤 %s\n📱 %s\n💰 Qarzi: %s", dr.Name, dr.Phone, formatMoney(outstanding)),
			Inline: [][]Button{{
				{Label: "📜 Qarzlari", Action: Action{Kind: ActionShowDebts, ID: dr.ID}},
				{Label: "➕ Qarz", Action: Action{Kind: ActionAddDebt, ID: dr.ID}},
				{Label: "🗑", Action: Action{Kind: ActionDeleteDebtor, ID: dr.ID}},
			}},
		})
	}
}

func (h *Service) showDebtorDebts(ctx context.Context, s *session.Session, debtorID string) {
	dr, err := h.stores.Debtors.GetDebtor(ctx, debtorID)
	if err != nil {
		log.Printf("loading debtor %s: %v", debtorID, err)
		h.apology(s.ChatID)
		return
	}

	debts, err := h.stores.Debts.ListDebtsForDebtor(ctx, debtorID)
	if err != nil {
		log.Printf("listing debts for %s: %v", debtorID, err)
		h.apology(s.ChatID)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👤 %s qarzlari:\n\n", dr.Name)
	if len(debts) == 0 {
		b.WriteString("Qarzlari yo'q 🎉")
	}
	var total int64
	for i, d := range debts {
		b.WriteString(formatDebtLine(i, d) + "\n")
		total += d.Amount
	}
	if len(debts) > 0 {
		fmt.Fprintf(&b, "\n💰 Jami: %s", formatMoney(total))
	}

	h.send(s.ChatID, Message{
		Text: b.String(),
		Inline: [][]Button{{
			{Label: "⬅️ Qarzdorlar", Action: Action{Kind: ActionBackToDebtors}},
		}},
	})
}

func (h *Service) showPendingPayments(ctx context.Context, s *session.Session) {
	a, err := h.currentAccount(ctx, s)
	if err != nil {
		log.Printf("resolving account for chat %d: %v", s.ChatID, err)
		h.apology(s.ChatID)
		return
	}

	pending, err := h.stores.Debts.ListUnapprovedForShop(ctx, a.ShopID)
	if err != nil {
		log.Printf("listing pending payments: %v", err)
		h.apology(s.ChatID)
		return
	}

	if len(pending) == 0 {
		h.text(s.ChatID, "✅ Tasdiqlanmagan to'lovlar yo'q.")
		return
	}

	for _, p := range pending {
		name := p.DebtorID
		if dr, err := h.stores.Debtors.GetDebtor(ctx, p.DebtorID); err == nil {
			name = dr.Name
		}
		h.send(s.ChatID, Message{
			Text: fmt.Sprintf("💸 %s — %s (%s)", name, formatMoney(p.Amount),
				p.CreatedAt.Format("02.01.2006 15:04")),
			Inline: [][]Button{{
				{Label: "✅ Tasdiqlash", Action: Action{Kind: ActionApprovePay, ID: p.ID}},
			}},
		})
	}
}

func (h *Service) approvePayment(ctx context.Context, s *session.Session, paymentID string) {
	res, err := h.ledger.Approve(ctx, paymentID)
	if err != nil {
		log.Printf("approving payment %s: %v", paymentID, err)
		h.text(s.ChatID, "⚠️ To'lovni tasdiqlab bo'lmadi. U allaqachon tasdiqlangan bo'lishi mumkin.")
		return
	}
	h.text(s.ChatID, formatAllocation(res))
}

func (h *Service) showOwnerProfile(ctx context.Context, s *session.Session) {
	a, err := h.currentAccount(ctx, s)
	if err != nil {
		log.Printf("loading owner profile: %v", err)
		h.apology(s.ChatID)
		return
	}

	role := "Do'kon egasi"
	if a.Role == account.RoleShopHelper {
		role = "Yordamchi"
	}

	card := fmt.Sprintf("👤 %s\n📱 %s\n🎖 %s", a.Name, a.Phone, role)
	if sh, err := h.stores.Shops.GetShop(ctx, a.ShopID); err == nil {
		card += "\n🏪 " + sh.Name
		if sh.Address != "" {
			card += "\n📍 " + sh.Address
		}
	}

	s.Enter(session.StateShopOwnerProfile)
	h.send(s.ChatID, Message{Text: card, Keyboard: [][]string{{btnBack}}})
}
