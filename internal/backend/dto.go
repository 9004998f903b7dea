package backend

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/greenplate/campus-client/internal/domain"
)

// Wire shapes. Prices and amounts travel in major units.

type menuItemDTO struct {
	ItemID      string  `json:"item_id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	Category    string  `json:"category,omitempty"`
	IsAvailable bool    `json:"is_available"`
}

type stallDTO struct {
	StallID   string        `json:"stall_id"`
	StallName string        `json:"stall_name"`
	MenuItems []menuItemDTO `json:"menu_items"`
}

type menuResponse struct {
	Stalls []stallDTO `json:"stalls"`
}

type staffProfileDTO struct {
	Role    string `json:"role"`
	StallID string `json:"stall_id"`
	Email   string `json:"email"`
}

type staffMemberDTO struct {
	UID    string `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

type orderItemDTO struct {
	ItemID   string  `json:"item_id"`
	Name     string  `json:"name,omitempty"`
	Price    float64 `json:"price,omitempty"`
	Quantity int     `json:"quantity"`
}

type orderDTO struct {
	ID              string         `json:"id"`
	OrderID         string         `json:"order_id"`
	RazorpayOrderID string         `json:"razorpay_order_id"`
	UserID          string         `json:"user_id"`
	StallID         string         `json:"stall_id"`
	StallName       string         `json:"stall_name"`
	Status          string         `json:"status"`
	Items           []orderItemDTO `json:"items"`
	Amount          float64        `json:"amount"`
	TotalAmount     float64        `json:"total_amount"`
	PickupCode      string         `json:"pickup_code"`
	CreatedAt       flexTime       `json:"created_at"`
	UpdatedAt       flexTime       `json:"updated_at"`
}

type createOrderItemDTO struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

type createOrderRequest struct {
	StallID string               `json:"stall_id"`
	Items   []createOrderItemDTO `json:"items"`
}

type createOrderResponse struct {
	ID       string  `json:"id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	KeyID    string  `json:"key_id"`
}

type verifyOrderRequest struct {
	RazorpayPaymentID string         `json:"razorpay_payment_id"`
	RazorpayOrderID   string         `json:"razorpay_order_id"`
	RazorpaySignature string         `json:"razorpay_signature"`
	Items             []orderItemDTO `json:"items"`
	StallID           string         `json:"stall_id"`
	Amount            float64        `json:"amount"`
}

type addMemberRequest struct {
	Email string `json:"email"`
}

type updateEmailRequest struct {
	NewEmail string `json:"new_email"`
}

// flexTime accepts RFC 3339 strings, unix seconds, or null.
type flexTime struct {
	time.Time
}

func (t *flexTime) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		return nil
	}

	if unquoted, err := strconv.Unquote(s); err == nil {
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05"} {
			if parsed, err := time.Parse(layout, unquoted); err == nil {
				t.Time = parsed
				return nil
			}
		}
		return nil
	}

	var secs float64
	if err := json.Unmarshal(b, &secs); err == nil {
		t.Time = time.Unix(int64(secs), 0).UTC()
	}

	return nil
}

func (d menuItemDTO) toDomain() domain.MenuItem {
	return domain.MenuItem{
		ItemID:      d.ItemID,
		Name:        d.Name,
		UnitPrice:   domain.MoneyFromMajor(d.Price),
		Description: d.Description,
		ImageRef:    d.ImageURL,
		Category:    d.Category,
		IsAvailable: d.IsAvailable,
	}
}

func (d stallDTO) toDomain() domain.Stall {
	items := make([]domain.MenuItem, 0, len(d.MenuItems))
	for _, item := range d.MenuItems {
		items = append(items, item.toDomain())
	}

	return domain.Stall{StallID: d.StallID, StallName: d.StallName, Items: items}
}

func (d orderDTO) toDomain() domain.Order {
	id := d.ID
	if id == "" {
		id = d.OrderID
	}
	if id == "" {
		id = d.RazorpayOrderID
	}

	amount := d.Amount
	if amount == 0 {
		amount = d.TotalAmount
	}

	items := make([]domain.OrderItem, 0, len(d.Items))
	for _, item := range d.Items {
		items = append(items, domain.OrderItem{
			ItemID:    item.ItemID,
			Name:      item.Name,
			UnitPrice: domain.MoneyFromMajor(item.Price),
			Quantity:  item.Quantity,
		})
	}

	code := d.PickupCode
	if code == "" {
		code = id
	}

	status := domain.ParseOrderStatus(d.Status)
	if d.Status == "" {
		status = domain.StatusPaid
	}

	return domain.Order{
		ID:         id,
		Kind:       domain.OrderKindPurchase,
		Status:     status,
		StallID:    d.StallID,
		StallName:  d.StallName,
		PickupCode: code,
		OwnerUID:   d.UserID,
		CreatedAt:  d.CreatedAt.Time,
		UpdatedAt:  d.UpdatedAt.Time,
		Purchase: &domain.PurchaseDetails{
			Items:  items,
			Amount: domain.MoneyFromMajor(amount),
		},
	}
}
