package session

import (
	"context"

	"github.com/Javohir11011/Hisob-kitob-bot/account"
)

// Session is the persisted conversational cursor for one chat. It is created
// on first contact and never deleted; every processed event may mutate it.
type Session struct {
	ChatID int64
	State  State
	Role   account.Role
	// Phone is the authenticated identity once a login completes. It is what
	// the dispatcher uses to self-heal a session whose state got lost.
	Phone string
	// DebtorID is set by the debtor self-service login.
	DebtorID string
	// Form holds the in-progress multi-step input of the current flow, or nil.
	Form Form
}

func New(chatID int64) *Session {
	return &Session{ChatID: chatID}
}

// Enter moves the cursor to st. The form payload survives only while moving
// between collection states of the same flow; any other transition drops it,
// so a flow can never observe another flow's leftover scratch data.
func (s *Session) Enter(st State) {
	if st.Flow() != s.State.Flow() || !st.Collecting() {
		s.Form = nil
	}
	s.State = st
}

// Store is the durable chat-id to session mapping. Get never fails with "not
// found": an absent key yields a fresh default session. Save is
// last-writer-wins per key; callers serialize events per chat.
type Store interface {
	Get(ctx context.Context, chatID int64) (*Session, error)
	Save(ctx context.Context, s *Session) error
}
