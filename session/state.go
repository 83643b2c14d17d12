package session

// State is where a chat currently is in its dialogue. The set is closed: the
// dispatcher routes on the state's flow family, never on string membership.
type State int

const (
	StateNone State = iota

	// Auth flow. These pre-empt all role-based routing.
	StateAwaitingPassword
	StateAwaitingPhone
	StateDebtorLoginPassword
	StateDebtorLoginPhone

	// Super-admin flow.
	StateSuperAdminMenu
	StateAddingOwnerName
	StateAddingOwnerPhone
	StateAddingOwnerPassword
	StateAddingOwnerShop
	StateAddingOwnerShopAddress
	StateSearchOwner
	StateUpdatingOwner
	StateUpdatingOwnerField

	// Shop-owner flow (owners and helpers).
	StateShopOwnerMenu
	StateShopOwnerProfile
	StateAddingHelperName
	StateAddingHelperPhone
	StateAddingHelperPassword
	StateAddingDebtorName
	StateAddingDebtorPhone
	StateAddingDebtorAddress
	StateAddingDebtorPassword
	StateSearchDebtorForDebt
	StateAddingDebtAmount
	StateAddingDebtNote
	StateSearchDebtorForPayment
	StateAddingPaymentAmount

	// Debtor self-service flow.
	StateDebtorMenu
	StateDebtorEnterPayment
)

type Flow int

const (
	FlowNone Flow = iota
	FlowAuth
	FlowSuperAdmin
	FlowShopOwner
	FlowDebtor
)

// Flow reports which state machine owns this state.
func (s State) Flow() Flow {
	switch s {
	case StateAwaitingPassword, StateAwaitingPhone,
		StateDebtorLoginPassword, StateDebtorLoginPhone:
		return FlowAuth
	case StateSuperAdminMenu, StateAddingOwnerName, StateAddingOwnerPhone,
		StateAddingOwnerPassword, StateAddingOwnerShop, StateAddingOwnerShopAddress,
		StateSearchOwner, StateUpdatingOwner, StateUpdatingOwnerField:
		return FlowSuperAdmin
	case StateShopOwnerMenu, StateShopOwnerProfile,
		StateAddingHelperName, StateAddingHelperPhone, StateAddingHelperPassword,
		StateAddingDebtorName, StateAddingDebtorPhone, StateAddingDebtorAddress,
		StateAddingDebtorPassword, StateSearchDebtorForDebt,
		StateAddingDebtAmount, StateAddingDebtNote,
		StateSearchDebtorForPayment, StateAddingPaymentAmount:
		return FlowShopOwner
	case StateDebtorMenu, StateDebtorEnterPayment:
		return FlowDebtor
	}
	return FlowNone
}

// Collecting reports whether the state awaits a step of an in-progress form,
// search or confirmation. Menu and profile states are not collecting: entering
// them drops the form payload (see Session.Enter).
func (s State) Collecting() bool {
	switch s {
	case StateNone, StateSuperAdminMenu, StateShopOwnerMenu,
		StateShopOwnerProfile, StateDebtorMenu:
		return false
	}
	return true
}

var stateNames = map[State]string{
	StateNone:                   "",
	StateAwaitingPassword:       "awaiting_password",
	StateAwaitingPhone:          "awaiting_phone",
	StateDebtorLoginPassword:    "debtor_login_password",
	StateDebtorLoginPhone:       "debtor_login_phone",
	StateSuperAdminMenu:         "super_admin_menu",
	StateAddingOwnerName:        "adding_owner_name",
	StateAddingOwnerPhone:       "adding_owner_phone",
	StateAddingOwnerPassword:    "adding_owner_password",
	StateAddingOwnerShop:        "adding_owner_shop",
	StateAddingOwnerShopAddress: "adding_owner_shop_address",
	StateSearchOwner:            "search_owner",
	StateUpdatingOwner:          "updating_owner",
	StateUpdatingOwnerField:     "updating_owner_field",
	StateShopOwnerMenu:          "shop_owner_menu",
	StateShopOwnerProfile:       "shop_owner_profile",
	StateAddingHelperName:       "adding_helper_name",
	StateAddingHelperPhone:      "adding_helper_phone",
	StateAddingHelperPassword:   "adding_helper_password",
	StateAddingDebtorName:       "adding_debtor_name",
	StateAddingDebtorPhone:      "adding_debtor_phone",
	StateAddingDebtorAddress:    "adding_debtor_address",
	StateAddingDebtorPassword:   "adding_debtor_password",
	StateSearchDebtorForDebt:    "search_debtor_for_debt",
	StateAddingDebtAmount:       "adding_debt_amount",
	StateAddingDebtNote:         "adding_debt_note",
	StateSearchDebtorForPayment: "search_debtor_for_payment",
	StateAddingPaymentAmount:    "adding_payment_amount",
	StateDebtorMenu:             "debtor_menu",
	StateDebtorEnterPayment:     "debtor_enter_payment",
}

var statesByName = func() map[string]State {
	m := make(map[string]State, len(stateNames))
	for st, name := range stateNames {
		m[name] = st
	}
	return m
}()

func (s State) String() string {
	return stateNames[s]
}

// ParseState maps a persisted state name back to its variant. Unknown names
// come back as StateNone, which lets the dispatcher's phone fallback recover
// sessions written by older versions.
func ParseState(name string) State {
	return statesByName[name]
}
