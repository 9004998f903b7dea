package request

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

var (
	errNoItems           = errors.New("at least one item is required")
	errNonPositiveAmount = errors.New("amount must be positive")
)

type OrderItem struct {
	ItemID   string
	Quantity int
}

func (i OrderItem) Validate() error {
	return validation.ValidateStruct(
		&i,
		validation.Field(&i.ItemID, validation.Required),
		validation.Field(&i.Quantity, validation.Required, validation.Min(1)),
	)
}

func validateItems(items []OrderItem) error {
	if len(items) == 0 {
		return errNoItems
	}
	for n, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("items[%d]: %w", n, err)
		}
	}

	return nil
}

type CreateOrderRequest struct {
	StallID string
	Items   []OrderItem
}

func (req *CreateOrderRequest) Validate() error {
	if err := validation.ValidateStruct(
		req,
		validation.Field(&req.StallID, validation.Required),
	); err != nil {
		return err
	}

	return validateItems(req.Items)
}

type VerifyOrderRequest struct {
	PaymentID string
	OrderID   string
	Signature string
	StallID   string
	Items     []OrderItem
	Amount    int64
}

func (req *VerifyOrderRequest) Validate() error {
	if err := validation.ValidateStruct(
		req,
		validation.Field(&req.PaymentID, validation.Required),
		validation.Field(&req.OrderID, validation.Required),
		validation.Field(&req.Signature, validation.Required),
		validation.Field(&req.StallID, validation.Required),
	); err != nil {
		return err
	}
	if req.Amount <= 0 {
		return errNonPositiveAmount
	}

	return validateItems(req.Items)
}

type AddMemberRequest struct {
	Email string
}

func (req *AddMemberRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Email, validation.Required, is.Email),
	)
}

type UpdateEmailRequest struct {
	UID      string
	NewEmail string
}

func (req *UpdateEmailRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.UID, validation.Required),
		validation.Field(&req.NewEmail, validation.Required, is.Email),
	)
}
