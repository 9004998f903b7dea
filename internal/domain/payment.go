package domain

type OrderIntentItem struct {
	ItemID   string
	Quantity int
}

type OrderIntentRequest struct {
	StallID string
	Items   []OrderIntentItem
}

// OrderIntent is the gateway order the backend created for a cart.
type OrderIntent struct {
	ID       string
	Amount   Money
	Currency string
	KeyID    string
}

type WidgetOptions struct {
	Key          string
	Amount       Money
	Currency     string
	OrderID      string
	MerchantName string
	Description  string
	ThemeColor   string
	PrefillEmail string
	PrefillName  string
}

// PaymentOutcome is the single terminal result of a widget session.
type PaymentOutcome struct {
	PaymentID string
	OrderID   string
	Signature string

	Failed bool
	Reason string
}

type OrderVerification struct {
	PaymentID string
	OrderID   string
	Signature string
	StallID   string
	Items     []OrderItem
	Amount    Money
}
