package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidTransition = errors.New("invalid order status transition")

type OrderKind string

const (
	// OrderKindClaim is a reserved surplus deal, advanced by stall staff.
	OrderKindClaim OrderKind = "claim"
	// OrderKindPurchase is a paid menu order, advanced by the backend.
	OrderKindPurchase OrderKind = "purchase"
)

type OrderStatus string

const (
	StatusReserved  OrderStatus = "Reserved"
	StatusClaimed   OrderStatus = "Claimed"
	StatusPaid      OrderStatus = "Paid"
	StatusReady     OrderStatus = "Ready"
	StatusCompleted OrderStatus = "Completed"
)

var statusRank = map[OrderStatus]int{
	StatusReserved:  0,
	StatusClaimed:   1,
	StatusPaid:      1,
	StatusReady:     2,
	StatusCompleted: 3,
}

// ParseOrderStatus accepts the backend's spellings ("PAID", "ready", "picked_up").
// Unknown values are returned unchanged.
func ParseOrderStatus(s string) OrderStatus {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "RESERVED":
		return StatusReserved
	case "CLAIMED", "ACCEPTED":
		return StatusClaimed
	case "PAID":
		return StatusPaid
	case "READY":
		return StatusReady
	case "COMPLETED", "PICKED_UP", "PICKEDUP", "DELIVERED":
		return StatusCompleted
	}

	return OrderStatus(s)
}

// Rank orders statuses along the lifecycle. Unknown statuses rank -1.
func (s OrderStatus) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}

	return -1
}

type OrderItem struct {
	ItemID    string `json:"item_id"`
	Name      string `json:"name"`
	UnitPrice Money  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

type ClaimDetails struct {
	DealID   string
	FoodName string
}

type PurchaseDetails struct {
	Items  []OrderItem
	Amount Money
}

type Order struct {
	ID         string
	Kind       OrderKind
	Status     OrderStatus
	StallID    string
	StallName  string
	PickupCode string
	OwnerUID   string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Claim    *ClaimDetails
	Purchase *PurchaseDetails
}

func (o Order) IsActive() bool {
	return o.Status != StatusCompleted
}

// Title is a one-line description for lists.
func (o Order) Title() string {
	switch o.Kind {
	case OrderKindClaim:
		if o.Claim != nil {
			return o.Claim.FoodName
		}
	case OrderKindPurchase:
		if o.Purchase != nil {
			names := make([]string, 0, len(o.Purchase.Items))
			for _, item := range o.Purchase.Items {
				names = append(names, fmt.Sprintf("%dx %s", item.Quantity, item.Name))
			}
			return strings.Join(names, ", ")
		}
	}

	return o.ID
}

func (o *Order) Accept() error {
	return o.transition(StatusReserved, StatusClaimed)
}

func (o *Order) MarkReady() error {
	return o.transition(StatusClaimed, StatusReady)
}

func (o *Order) MarkPickedUp() error {
	return o.transition(StatusReady, StatusCompleted)
}

// CompleteManually is the counter shortcut that hands over a claim that was
// never marked ready.
func (o *Order) CompleteManually() error {
	if o.Kind != OrderKindClaim {
		return o.purchaseErr()
	}

	switch o.Status {
	case StatusReserved, StatusClaimed, StatusReady:
		o.Status = StatusCompleted
		return nil
	}

	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, StatusCompleted)
}

func (o *Order) transition(from, to OrderStatus) error {
	if o.Kind != OrderKindClaim {
		return o.purchaseErr()
	}
	if o.Status != from {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
	}

	o.Status = to

	return nil
}

func (o *Order) purchaseErr() error {
	return fmt.Errorf("%w: %s order %s is advanced by the backend", ErrInvalidTransition, o.Kind, o.ID)
}
