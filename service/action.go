package service

import (
	"fmt"

	"github.com/oriser/regroup"
)

// ActionKind is a closed set of inline button intents. Callback payloads are
// parsed exactly once, at the transport boundary, into an Action.
type ActionKind string

const (
	// Shop-owner actions.
	ActionSelectDebtor  ActionKind = "select_debtor"
	ActionShowDebts     ActionKind = "show_debts"
	ActionAddDebt       ActionKind = "add_debt"
	ActionDeleteDebtor  ActionKind = "delete_debtor"
	ActionApprovePay    ActionKind = "approve_payment"
	ActionBackToDebtors ActionKind = "back_to_debtors"

	// Super-admin actions.
	ActionDeleteOwner  ActionKind = "delete_owner"
	ActionUpdateOwner  ActionKind = "update_owner"
	ActionUpdateField  ActionKind = "update_field"
	ActionUpdateCancel ActionKind = "update_cancel"
	ActionStatsPage    ActionKind = "stats_page"

	// Debtor actions.
	ActionPayDebt ActionKind = "pay_debt"
)

var knownActions = map[ActionKind]bool{
	ActionSelectDebtor:  true,
	ActionShowDebts:     true,
	ActionAddDebt:       true,
	ActionDeleteDebtor:  true,
	ActionApprovePay:    true,
	ActionBackToDebtors: true,
	ActionDeleteOwner:   true,
	ActionUpdateOwner:   true,
	ActionUpdateField:   true,
	ActionUpdateCancel:  true,
	ActionStatsPage:     true,
	ActionPayDebt:       true,
}

type Action struct {
	Kind ActionKind
	ID   string
}

var actionRe = regroup.MustCompile(`^(?P<kind>[a-z_]+):(?P<id>.*)$`)

type actionMatch struct {
	Kind string `regroup:"kind"`
	ID   string `regroup:"id"`
}

// ParseAction parses a callback payload of the form "kind:id". Unknown kinds
// are rejected so stale buttons from older versions cannot reach a flow.
func ParseAction(data string) (Action, error) {
	match := &actionMatch{}
	if err := actionRe.MatchToTarget(data, match); err != nil {
		return Action{}, fmt.Errorf("malformed callback payload %q: %w", data, err)
	}

	kind := ActionKind(match.Kind)
	if !knownActions[kind] {
		return Action{}, fmt.Errorf("unknown callback action %q", match.Kind)
	}

	return Action{Kind: kind, ID: match.ID}, nil
}

// Encode is the inverse of ParseAction.
func (a Action) Encode() string {
	return fmt.Sprintf("%s:%s", a.Kind, a.ID)
}
