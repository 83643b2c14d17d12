package session

import (
	"encoding/json"
	"fmt"
)

// Form is the scratch payload of an in-progress flow: the fields collected so
// far. Each flow owns its own variant, so stale data from an abandoned flow
// cannot leak into another one.
type Form interface {
	formKind() string
}

const (
	formLogin       = "login"
	formOwner       = "new_owner"
	formHelper      = "new_helper"
	formDebtor      = "new_debtor"
	formDebt        = "new_debt"
	formPayment     = "payment"
	formOwnerUpdate = "owner_update"
)

// LoginForm carries the password entered before the phone step resolves it.
type LoginForm struct {
	Password string `json:"password"`
	Debtor   bool   `json:"debtor"`
}

// OwnerForm collects a new shop owner plus their shop.
type OwnerForm struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Password    string `json:"password"`
	ShopName    string `json:"shop_name"`
	ShopAddress string `json:"shop_address"`
}

type HelperForm struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type DebtorForm struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Password string `json:"password"`
}

type DebtForm struct {
	DebtorID string `json:"debtor_id"`
	Amount   int64  `json:"amount"`
}

// PaymentForm targets either a whole debtor (owner-entered payment) or one
// picked debt (debtor self-service).
type PaymentForm struct {
	DebtorID string `json:"debtor_id"`
	DebtID   string `json:"debt_id"`
}

type OwnerUpdateForm struct {
	OwnerID string `json:"owner_id"`
	Field   string `json:"field"`
}

func (*LoginForm) formKind() string       { return formLogin }
func (*OwnerForm) formKind() string       { return formOwner }
func (*HelperForm) formKind() string      { return formHelper }
func (*DebtorForm) formKind() string      { return formDebtor }
func (*DebtForm) formKind() string        { return formDebt }
func (*PaymentForm) formKind() string     { return formPayment }
func (*OwnerUpdateForm) formKind() string { return formOwnerUpdate }

type formEnvelope struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// MarshalForm serializes a form as a tagged envelope. A nil form serializes
// to nil.
func MarshalForm(f Form) ([]byte, error) {
	if f == nil {
		return nil, nil
	}
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s form: %w", f.formKind(), err)
	}
	return json.Marshal(formEnvelope{Kind: f.formKind(), Data: data})
}

// UnmarshalForm is the inverse of MarshalForm. Empty input yields a nil form.
func UnmarshalForm(raw []byte) (Form, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var env formEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("unmarshaling form envelope: %w", err)
	}

	var f Form
	switch env.Kind {
	case formLogin:
		f = &LoginForm{}
	case formOwner:
		f = &OwnerForm{}
	case formHelper:
		f = &HelperForm{}
	case formDebtor:
		f = &DebtorForm{}
	case formDebt:
		f = &DebtForm{}
	case formPayment:
		f = &PaymentForm{}
	case formOwnerUpdate:
		f = &OwnerUpdateForm{}
	default:
		return nil, fmt.Errorf("unknown form kind %q", env.Kind)
	}
	if err := json.Unmarshal(env.Data, f); err != nil {
		return nil, fmt.Errorf("unmarshaling %s form: %w", env.Kind, err)
	}
	return f, nil
}
