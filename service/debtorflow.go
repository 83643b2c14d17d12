package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Javohir11011/Hisob-kitob-bot/session"
)

func (h *Service) showDebtorMenu(s *session.Session) {
	s.Enter(session.StateDebtorMenu)
	h.send(s.ChatID, Message{
		Text:     "👤 Qarzdor menyusi",
		Keyboard: debtorKeyboard(),
	})
}

func (h *Service) handleDebtorFlow(ctx context.Context, s *session.Session, ev Event) {
	if ev.Kind == EventCallback {
		if ev.Action.Kind == ActionPayDebt {
			h.startDebtorPayment(ctx, s, ev.Action.ID)
		}
		return
	}
	if ev.Kind != EventText {
		return
	}

	switch s.State {
	case session.StateDebtorMenu:
		h.handleDebtorMenu(ctx, s, ev.Text)
	case session.StateDebtorEnterPayment:
		h.submitDebtorPayment(ctx, s, ev.Text)
	}
}

func (h *Service) handleDebtorMenu(ctx context.Context, s *session.Session, text string) {
	switch text {
	case btnMyDebts:
		h.showMyDebts(ctx, s)
	case btnPayHistory:
		h.showPaymentHistory(ctx, s)
	case btnPay:
		h.showPayableDebts(ctx, s)
	case btnContact:
		h.text(s.ChatID, "📞 Murojaat uchun: "+h.cfg.SupportPhone)
	case btnProfile:
		h.showDebtorProfile(ctx, s)
	}
}

func (h *Service) showMyDebts(ctx context.Context, s *session.Session) {
	debts, err := h.stores.Debts.ListDebtsForDebtor(ctx, s.DebtorID)
	if err != nil {
		log.Printf("listing debts for debtor %s: %v", s.DebtorID, err)
		h.apology(s.ChatID)
		return
	}

	if len(debts) == 0 {
		h.text(s.ChatID, "🎉 Sizda qarz yo'q!")
		return
	}

	var b strings.Builder
	b.WriteString("📜 Qarzlaringiz:\n\n")
	var total int64
	for i, d := range debts {
		b.WriteString(formatDebtLine(i, d) + "\n")
		total += d.Amount
	}
	fmt.Fprintf(&b, "\n💰 Jami: %s", formatMoney(total))
	h.text(s.ChatID, b.String())
}

func (h *Service) showPaymentHistory(ctx context.Context, s *session.Session) {
	payments, err := h.stores.Debts.ListPaymentsForDebtor(ctx, s.DebtorID)
	if err != nil {
		log.Printf("listing payments for debtor %s: %v", s.DebtorID, err)
		h.apology(s.ChatID)
		return
	}

	if len(payments) == 0 {
		h.text(s.ChatID, "💸 Hali to'lovlar yo'q.")
		return
	}

	var b strings.Builder
	b.WriteString("💸 To'lov tarixi:\n\n")
	for i, p := range payments {
		status := "⏳ kutilmoqda"
		if p.Approved {
			status = "✅ tasdiqlangan"
		}
		fmt.Fprintf(&b, "%d. %s — %s (%s)\n", i+1, formatMoney(p.Amount), status,
			p.CreatedAt.Format("02.01.2006"))
	}
	h.text(s.ChatID, b.String())
}

func (h *Service) showPayableDebts(ctx context.Context, s *session.Session) {
	debts, err := h.stores.Debts.ListUnpaidForDebtor(ctx, s.DebtorID)
	if err != nil {
		log.Printf("listing unpaid debts for debtor %s: %v", s.DebtorID, err)
		h.apology(s.ChatID)
		return
	}

	if len(debts) == 0 {
		h.text(s.ChatID, "🎉 To'lanadigan qarz yo'q!")
		return
	}

	buttons := make([][]Button, 0, len(debts))
	for _, d := range debts {
		label := formatMoney(d.Amount)
		if d.Note != "" {
			label += " — " + d.Note
		}
		buttons = append(buttons, []Button{{
			Label:  label,
			Action: Action{Kind: ActionPayDebt, ID: d.ID},
		}})
	}
	h.send(s.ChatID, Message{Text: "💰 Qaysi qarzni to'laysiz?", Inline: buttons})
}

func (h *Service) startDebtorPayment(ctx context.Context, s *session.Session, debtID string) {
	d, err := h.stores.Debts.GetDebt(ctx, debtID)
	if err != nil || d.DebtorID != s.DebtorID {
		// Stale button or someone else's debt id.
		h.text(s.ChatID, "⚠️ Bu qarz topilmadi. Ro'yxatni qaytadan oching.")
		return
	}

	s.Enter(session.StateDebtorEnterPayment)
	s.Form = &session.PaymentForm{DebtorID: s.DebtorID, DebtID: d.ID}
	h.send(s.ChatID, Message{
		Text:     fmt.Sprintf("💵 Qarz: %s\n\nTo'lov summasini kiriting:", formatMoney(d.Amount)),
		Keyboard: cancelKeyboard(),
	})
}

// submitDebtorPayment records the payment unapproved. Nothing is allocated
// until the shop owner confirms it.
func (h *Service) submitDebtorPayment(ctx context.Context, s *session.Session, text string) {
	form, ok := s.Form.(*session.PaymentForm)
	if !ok {
		h.showDebtorMenu(s)
		return
	}

	amount, ok := h.parseAmount(text)
	if !ok {
		h.badAmount(s.ChatID)
		return
	}

	if _, err := h.ledger.RecordPayment(ctx, form.DebtorID, form.DebtID, amount, false); err != nil {
		log.Printf("recording debtor payment: %v", err)
		h.apology(s.ChatID)
		h.showDebtorMenu(s)
		return
	}

	h.text(s.ChatID, "⏳ To'lovingiz qabul qilindi. Do'kon egasi tasdiqlagach qarzingizdan ayiriladi.")
	h.showDebtorMenu(s)
}

func (h *Service) showDebtorProfile(ctx context.Context, s *session.Session) {
	dr, err := h.stores.Debtors.GetDebtor(ctx, s.DebtorID)
	if err != nil {
		log.Printf("loading debtor profile: %v", err)
		h.apology(s.ChatID)
		return
	}

	card := fmt.Sprintf("👤 %s\n📱 %s", dr.Name, dr.Phone)
	if dr.Address != "" {
		card += "\n📍 " + dr.Address
	}
	h.text(s.ChatID, card)
}
