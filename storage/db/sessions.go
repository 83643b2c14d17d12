package db

import (
	"context"
	"fmt"
	"log"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/Javohir11011/Hisob-kitob-bot/account"
	"github.com/Javohir11011/Hisob-kitob-bot/session"
)

type sessionModel struct {
	ChatID    int64     `db:"chat_id"`
	State     string    `db:"state"`
	Role      string    `db:"role"`
	Phone     string    `db:"phone"`
	DebtorID  string    `db:"debtor_id"`
	Form      string    `db:"form"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Get returns the persisted session for a chat, or a fresh default one when
// the chat was never seen. It never reports "not found".
func (d *DBStore) Get(_ context.Context, chatID int64) (*session.Session, error) {
	sql, args, err := sq.Select("*").From("sessions").Where("chat_id=?", chatID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("generating select SQL: %w", err)
	}

	var models []*sessionModel
	if err = d.db.Select(&models, sql, args...); err != nil {
		return nil, newExecError("selecting session", sql, err, args...)
	}

	if len(models) == 0 {
		return session.New(chatID), nil
	}

	m := models[0]
	s := &session.Session{
		ChatID:   m.ChatID,
		State:    session.ParseState(m.State),
		Role:     account.Role(m.Role),
		Phone:    m.Phone,
		DebtorID: m.DebtorID,
	}

	// A form that fails to decode is dropped rather than wedging the chat. The
	// user restarts the flow from its menu.
	form, err := session.UnmarshalForm([]byte(m.Form))
	if err != nil {
		log.Printf("dropping undecodable form for chat %d: %v", chatID, err)
	} else {
		s.Form = form
	}

	return s, nil
}

func (d *DBStore) Save(_ context.Context, s *session.Session) error {
	if s == nil {
		return fmt.Errorf("nil session")
	}

	form, err := session.MarshalForm(s.Form)
	if err != nil {
		return fmt.Errorf("marshaling session form: %w", err)
	}

	sql, args, err := sq.Insert("sessions").
		Columns("chat_id", "state", "role", "phone", "debtor_id", "form", "updated_at").
		Values(s.ChatID, s.State.String(), string(s.Role), s.Phone, s.DebtorID, string(form), time.Now()).
		Suffix(`ON CONFLICT(chat_id) DO UPDATE SET
			state=excluded.state, role=excluded.role, phone=excluded.phone,
			debtor_id=excluded.debtor_id, form=excluded.form, updated_at=excluded.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("generating upsert SQL: %w", err)
	}

	if _, err = d.db.Exec(sql, args...); err != nil {
		return newExecError("saving session", sql, err, args...)
	}

	return nil
}
