package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Javohir11011/Hisob-kitob-bot/debt"
)

// cancelToken aborts any in-progress collection step back to the role's menu.
const cancelToken = "❌ Bekor qilish"

// Reply keyboard labels. The menus are button-driven: the dispatcher matches
// these exact strings.
const (
	btnStats       = "📊 Statistika"
	btnAddOwner    = "➕ Add Shop Owner"
	btnRemoveOwner = "🗑 Remove Owner"
	btnSettings    = "⚙️ Sozlamalar"
	btnSearchOwner = "🔍 Search Owner"
	btnProfile     = "👤 Profil"

	btnDebtors   = "📋 Qarzdorlar"
	btnAddDebtor = "➕ Qarzdor qo‘shish"
	btnAddDebt   = "➕ Qarz qo‘shish"
	btnCloseDebt = "💰 Qarz yopish"
	btnPayments  = "✅ To‘lovlar"
	btnAddHelper = "➕ Add Helper"

	btnMyDebts    = "📜 Mening qarzlarim"
	btnPayHistory = "💸 To‘lov tarixi"
	btnPay        = "💰 To‘lash"
	btnContact    = "📞 Aloqa"

	btnBack = "⬅️ Orqaga qaytish"
)

func superAdminKeyboard() [][]string {
	return [][]string{
		{btnStats, btnAddOwner},
		{btnRemoveOwner, btnSearchOwner},
		{btnSettings, btnProfile},
	}
}

func shopOwnerKeyboard() [][]string {
	return [][]string{
		{btnDebtors, btnAddDebtor},
		{btnAddDebt, btnCloseDebt},
		{btnPayments, btnAddHelper},
		{btnProfile},
	}
}

func debtorKeyboard() [][]string {
	return [][]string{
		{btnMyDebts, btnPayHistory},
		{btnPay, btnContact},
		{btnProfile},
	}
}

func cancelKeyboard() [][]string {
	return [][]string{{cancelToken}}
}

// formatMoney renders whole so'm with thousands separators: 12000 -> "12 000 so'm".
func formatMoney(amount int64) string {
	digits := strconv.FormatInt(amount, 10)
	negative := strings.HasPrefix(digits, "-")
	if negative {
		digits = digits[1:]
	}

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}

	out := b.String()
	if negative {
		out = "-" + out
	}
	return out + " so'm"
}

func formatDebtLine(i int, d *debt.Debt) string {
	note := d.Note
	if note == "" {
		note = "izohsiz"
	}
	return fmt.Sprintf("%d. %s — %s (%s)", i+1, formatMoney(d.Amount), note,
		d.CreatedAt.Format("02.01.2006"))
}
