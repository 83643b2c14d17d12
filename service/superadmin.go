package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/Javohir11011/Hisob-kitob-bot/account"
	"github.com/Javohir11011/Hisob-kitob-bot/phone"
	"github.com/Javohir11011/Hisob-kitob-bot/session"
	"github.com/Javohir11011/Hisob-kitob-bot/shop"
)

func (h *Service) showSuperAdminMenu(s *session.Session) {
	s.Enter(session.StateSuperAdminMenu)
	h.send(s.ChatID, Message{
		Text:     "👨‍💼 Super admin menyusi",
		Keyboard: superAdminKeyboard(),
	})
}

func (h *Service) handleSuperAdmin(ctx context.Context, s *session.Session, ev Event) {
	if ev.Kind == EventCallback {
		h.handleSuperAdminAction(ctx, s, ev.Action)
		return
	}
	if ev.Kind != EventText {
		return
	}

	switch s.State {
	case session.StateSuperAdminMenu:
		h.handleSuperAdminMenu(ctx, s, ev.Text)
	case session.StateAddingOwnerName:
		h.collectOwnerName(s, ev.Text)
	case session.StateAddingOwnerPhone:
		h.collectOwnerPhone(ctx, s, ev.Text)
	case session.StateAddingOwnerPassword:
		h.collectOwnerPassword(s, ev.Text)
	case session.StateAddingOwnerShop:
		h.collectOwnerShop(s, ev.Text)
	case session.StateAddingOwnerShopAddress:
		h.createOwner(ctx, s, ev.Text)
	case session.StateSearchOwner:
		h.searchOwners(ctx, s, ev.Text)
	case session.StateUpdatingOwner:
		// Field is picked with inline buttons only.
	case session.StateUpdatingOwnerField:
		h.applyOwnerUpdate(ctx, s, ev.Text)
	}
}

func (h *Service) handleSuperAdminMenu(ctx context.Context, s *session.Session, text string) {
	switch text {
	case btnStats:
		h.showStatistics(ctx, s, 0)
	case btnAddOwner:
		s.Enter(session.StateAddingOwnerName)
		s.Form = &session.OwnerForm{}
		h.send(s.ChatID, Message{Text: "👤 Do'kon egasining ismini kiriting:", Keyboard: cancelKeyboard()})
	case btnSearchOwner, btnSettings, btnRemoveOwner:
		// Removal goes through the same search; each result card carries a
		// delete button.
		s.Enter(session.StateSearchOwner)
		h.send(s.ChatID, Message{Text: "🔍 Ism yoki telefon raqam bo'yicha qidiring:", Keyboard: cancelKeyboard()})
	case btnProfile:
		h.showAdminProfile(ctx, s)
	}
}

func (h *Service) collectOwnerName(s *session.Session, text string) {
	form, ok := s.Form.(*session.OwnerForm)
	if !ok {
		h.showSuperAdminMenu(s)
		return
	}
	form.Name = strings.TrimSpace(text)
	s.Enter(session.StateAddingOwnerPhone)
	s.Form = form
	h.text(s.ChatID, "📱 Telefon raqamini kiriting:")
}

func (h *Service) collectOwnerPhone(ctx context.Context, s *session.Session, text string) {
	form, ok := s.Form.(*session.OwnerForm)
	if !ok {
		h.showSuperAdminMenu(s)
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
	// Only a confirmed miss proves the phone is free.
	var accountNotFound *account.ErrNotFound
	if !errors.As(err, &accountNotFound) {
		log.Printf("checking owner phone %s: %v", p, err)
		h.apology(s.ChatID)
		return
	}

	form.Phone = p
	s.Enter(session.StateAddingOwnerPassword)
	s.Form = form
	h.text(s.ChatID, "🔑 Parol o'ylab toping:")
}

func (h *Service) collectOwnerPassword(s *session.Session, text string) {
	form, ok := s.Form.(*session.OwnerForm)
	if !ok {
		h.showSuperAdminMenu(s)
		return
	}
	form.Password = text
	s.Enter(session.StateAddingOwnerShop)
	s.Form = form
	h.text(s.ChatID, "🏪 Do'kon nomini kiriting:")
}

func (h *Service) collectOwnerShop(s *session.Session, text string) {
	form, ok := s.Form.(*session.OwnerForm)
	if !ok {
		h.showSuperAdminMenu(s)
		return
	}
	form.ShopName = strings.TrimSpace(text)
	s.Enter(session.StateAddingOwnerShopAddress)
	s.Form = form
	h.text(s.ChatID, "📍 Do'kon manzilini kiriting (yo'q bo'lsa -):")
}

func (h *Service) createOwner(ctx context.Context, s *session.Session, text string) {
	form, ok := s.Form.(*session.OwnerForm)
	if !ok {
		h.showSuperAdminMenu(s)
		return
	}

	address := strings.TrimSpace(text)
	if address == "-" {
		address = ""
	}

	hash, err := h.hasher.Hash(form.Password)
	if err != nil {
		log.Printf("hashing owner password: %v", err)
		h.apology(s.ChatID)
		h.showSuperAdminMenu(s)
		return
	}

	newShop := &shop.Shop{Name: form.ShopName, Address: address}
	if err := h.stores.Shops.AddShop(ctx, newShop); err != nil {
		log.Printf("adding shop: %v", err)
		h.apology(s.ChatID)
		h.showSuperAdminMenu(s)
		return
	}

	if err := h.stores.Accounts.AddAccount(ctx, &account.Account{
		Name:         form.Name,
		Phone:        form.Phone,
		PasswordHash: hash,
		Role:         account.RoleShopOwner,
		ShopID:       newShop.ID,
	}); err != nil {
		log.Printf("adding owner account: %v", err)
		h.apology(s.ChatID)
		h.showSuperAdminMenu(s)
		return
	}

	h.text(s.ChatID, fmt.Sprintf("✅ Do'kon egasi qo'shildi:\n👤 %s\n📱 %s\n🏪 %s",
		form.Name, form.Phone, form.ShopName))
	h.showSuperAdminMenu(s)
}

func (h *Service) searchOwners(ctx context.Context, s *session.Session, query string) {
	owners, err := h.stores.Accounts.ListAccounts(ctx, account.ListFilter{
		Role:  account.RoleShopOwner,
		Query: strings.TrimSpace(query),
	})
	if err != nil {
		log.Printf("searching owners: %v", err)
		h.apology(s.ChatID)
		h.showSuperAdminMenu(s)
		return
	}

	if len(owners) == 0 {
		h.text(s.ChatID, "🔍 Hech narsa topilmadi.")
		h.showSuperAdminMenu(s)
		return
	}

	for _, a := range owners {
		card := fmt.Sprintf("👤 %s\n📱 %s", a.Name, a.Phone)
		if sh, err := h.stores.Shops.GetShop(ctx, a.ShopID); err == nil {
			card += "\n🏪 " + sh.Name
		}
		h.send(s.ChatID, Message{
			Text: card,
			Inline: [][]Button{{
				{Label: "🗑 O'chirish", Action: Action{Kind: ActionDeleteOwner, ID: a.ID}},
				{Label: "✏️ Tahrirlash", Action: Action{Kind: ActionUpdateOwner, ID: a.ID}},
			}},
		})
	}
	h.showSuperAdminMenu(s)
}

func (h *Service) handleSuperAdminAction(ctx context.Context, s *session.Session, a Action) {
	switch a.Kind {
	case ActionDeleteOwner:
		// The owner's shop and its debtors stay; only the login goes away.
		if err := h.stores.Accounts.RemoveAccount(ctx, a.ID); err != nil {
			log.Printf("removing owner %s: %v", a.ID, err)
			h.apology(s.ChatID)
			return
		}
		h.text(s.ChatID, "🗑 Do'kon egasi o'chirildi.")
		h.showSuperAdminMenu(s)
	case ActionUpdateOwner:
		s.Enter(session.StateUpdatingOwner)
		s.Form = &session.OwnerUpdateForm{OwnerID: a.ID}
		h.send(s.ChatID, Message{
			Text: "✏️ Qaysi maydonni o'zgartirasiz?",
			Inline: [][]Button{
				{
					{Label: "Ism", Action: Action{Kind: ActionUpdateField, ID: string(account.FieldName)}},
					{Label: "Telefon", Action: Action{Kind: ActionUpdateField, ID: string(account.FieldPhone)}},
					{Label: "Do'kon", Action: Action{Kind: ActionUpdateField, ID: string(account.FieldShop)}},
				},
				{{Label: cancelToken, Action: Action{Kind: ActionUpdateCancel}}},
			},
		})
	case ActionUpdateField:
		form, ok := s.Form.(*session.OwnerUpdateForm)
		if !ok || s.State != session.StateUpdatingOwner {
			h.showSuperAdminMenu(s)
			return
		}
		if _, err := account.ParseUpdateField(a.ID); err != nil {
			h.showSuperAdminMenu(s)
			return
		}
		form.Field = a.ID
		s.Enter(session.StateUpdatingOwnerField)
		s.Form = form
		h.send(s.ChatID, Message{Text: "✏️ Yangi qiymatni kiriting:", Keyboard: cancelKeyboard()})
	case ActionUpdateCancel:
		h.showSuperAdminMenu(s)
	case ActionStatsPage:
		page, err := strconv.Atoi(a.ID)
		if err != nil || page < 0 {
			return
		}
		h.showStatistics(ctx, s, page)
	}
}

func (h *Service) applyOwnerUpdate(ctx context.Context, s *session.Session, text string) {
	form, ok := s.Form.(*session.OwnerUpdateForm)
	if !ok {
		h.showSuperAdminMenu(s)
		return
	}

	field, err := account.ParseUpdateField(form.Field)
	if err != nil {
		h.showSuperAdminMenu(s)
		return
	}

	value := strings.TrimSpace(text)
	switch field {
	case account.FieldPhone:
		value = phone.Normalize(value)
		if !phone.Valid(value) {
			h.text(s.ChatID, "❌ Telefon raqam formati noto'g'ri. Qaytadan kiriting:")
			return
		}
	case account.FieldShop:
		// The shop field is edited by name: an existing shop is reused, a new
		// name creates one.
		sh, err := h.stores.Shops.FindShopByName(ctx, value)
		if err != nil {
			sh = &shop.Shop{Name: value}
			if err := h.stores.Shops.AddShop(ctx, sh); err != nil {
				log.Printf("adding shop for owner update: %v", err)
				h.apology(s.ChatID)
				h.showSuperAdminMenu(s)
				return
			}
		}
		value = sh.ID
	}

	if err := h.stores.Accounts.UpdateAccountField(ctx, form.OwnerID, field, value); err != nil {
		log.Printf("updating owner %s: %v", form.OwnerID, err)
		h.apology(s.ChatID)
		h.showSuperAdminMenu(s)
		return
	}

	h.text(s.ChatID, "✅ O'zgartirildi.")
	h.showSuperAdminMenu(s)
}

func (h *Service) showStatistics(ctx context.Context, s *session.Session, page int) {
	total, err := h.stores.Accounts.CountAccounts(ctx, account.RoleShopOwner)
	if err != nil {
		log.Printf("counting owners: %v", err)
		h.apology(s.ChatID)
		return
	}
	if total == 0 {
		h.text(s.ChatID, "📊 Hozircha do'kon egalari yo'q.")
		h.showSuperAdminMenu(s)
		return
	}

	size := h.cfg.StatsPageSize
	owners, err := h.stores.Accounts.ListAccounts(ctx, account.ListFilter{
		Role:   account.RoleShopOwner,
		Offset: page * size,
		Limit:  size,
	})
	if err != nil {
		log.Printf("listing owners page %d: %v", page, err)
		h.apology(s.ChatID)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Do'kon egalari (%d ta), sahifa %d:\n\n", total, page+1)
	for i, a := range owners {
		fmt.Fprintf(&b, "%d. 👤 %s — 📱 %s", page*size+i+1, a.Name, a.Phone)
		if sh, err := h.stores.Shops.GetShop(ctx, a.ShopID); err == nil {
			fmt.Fprintf(&b, " — 🏪 %s", sh.Name)
			if outstanding, err := h.stores.Debts.OutstandingForShop(ctx, sh.ID); err == nil {
				fmt.Fprintf(&b, "\n   💰 Umumiy qarz: %s", formatMoney(outstanding))
			}
		}
		b.WriteString("\n")
	}

	var nav []Button
	if page > 0 {
		nav = append(nav, Button{Label: "⬅️", Action: Action{Kind: ActionStatsPage, ID: strconv.Itoa(page - 1)}})
	}
	if (page+1)*size < total {
		nav = append(nav, Button{Label: "➡️", Action: Action{Kind: ActionStatsPage, ID: strconv.Itoa(page + 1)}})
	}

	msg := Message{Text: b.String()}
	if len(nav) > 0 {
		msg.Inline = [][]Button{nav}
	}
	h.send(s.ChatID, msg)
	s.Enter(session.StateSuperAdminMenu)
}

func (h *Service) showAdminProfile(ctx context.Context, s *session.Session) {
	a, err := h.stores.Accounts.FindAccountByPhone(ctx, s.Phone)
	if err != nil {
		log.Printf("loading admin profile: %v", err)
		h.apology(s.ChatID)
		return
	}
	h.text(s.ChatID, fmt.Sprintf("👤 %s\n📱 %s\n🎖 Super admin", a.Name, a.Phone))
}
