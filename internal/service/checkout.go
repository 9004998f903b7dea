package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/greenplate/campus-client/internal/domain"
)

type SessionReader interface {
	Session() domain.Session
}

type OrderAPI interface {
	CreateOrderIntent(ctx context.Context, req domain.OrderIntentRequest) (domain.OrderIntent, error)
	VerifyOrder(ctx context.Context, v domain.OrderVerification) error
}

type PaymentWidget interface {
	LoadSDK(ctx context.Context) error
	Open(ctx context.Context, opts domain.WidgetOptions) (domain.PaymentOutcome, error)
}

type OrderLoader interface {
	Load(ctx context.Context) error
}

// Merchant is what the payment widget shows about the seller.
type Merchant struct {
	Name        string
	Description string
	ThemeColor  string
}

type CheckoutService struct {
	session  SessionReader
	cart     *CartService
	api      OrderAPI
	widget   PaymentWidget
	orders   OrderLoader
	merchant Merchant

	inFlight atomic.Bool
}

func NewCheckoutService(session SessionReader, cart *CartService, api OrderAPI, widget PaymentWidget, orders OrderLoader, merchant Merchant) *CheckoutService {
	return &CheckoutService{
		session:  session,
		cart:     cart,
		api:      api,
		widget:   widget,
		orders:   orders,
		merchant: merchant,
	}
}

// Checkout pays for the cart. The cart is cleared only once the backend has
// verified the payment; every failure leaves it as it was.
func (s *CheckoutService) Checkout(ctx context.Context) (domain.PaymentOutcome, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return domain.PaymentOutcome{}, ErrCheckoutInProgress
	}
	defer s.inFlight.Store(false)

	lines, total, stalls := s.cart.snapshot()
	if len(lines) == 0 {
		return domain.PaymentOutcome{}, ErrEmptyCart
	}

	sess := s.session.Session()
	if !sess.IsAuthenticated() || sess.Role != domain.RoleStudent {
		return domain.PaymentOutcome{}, ErrNotAuthenticated
	}
	if len(stalls) > 1 {
		return domain.PaymentOutcome{}, ErrMultiStallCart
	}
	stallID := stalls[0]

	req := domain.OrderIntentRequest{StallID: stallID}
	for _, line := range lines {
		req.Items = append(req.Items, domain.OrderIntentItem{ItemID: line.Item.ItemID, Quantity: line.Quantity})
	}

	intent, err := s.api.CreateOrderIntent(ctx, req)
	if err != nil {
		return domain.PaymentOutcome{}, fmt.Errorf("%w: s.api.CreateOrderIntent -> %w", ErrOrderIntent, err)
	}
	if intent.Amount != total {
		zap.L().Warn("order amount differs from cart total",
			zap.String("order_id", intent.ID),
			zap.Int64("cart_total", int64(total)),
			zap.Int64("order_amount", int64(intent.Amount)))
	}

	if err := s.widget.LoadSDK(ctx); err != nil {
		return domain.PaymentOutcome{}, fmt.Errorf("s.widget.LoadSDK -> %w", err)
	}

	outcome, err := s.widget.Open(ctx, domain.WidgetOptions{
		Key:          intent.KeyID,
		Amount:       intent.Amount,
		Currency:     intent.Currency,
		OrderID:      intent.ID,
		MerchantName: s.merchant.Name,
		Description:  s.merchant.Description,
		ThemeColor:   s.merchant.ThemeColor,
		PrefillEmail: sess.Identity.Email,
		PrefillName:  sess.Identity.DisplayName,
	})
	if err != nil {
		return domain.PaymentOutcome{}, fmt.Errorf("s.widget.Open -> %w", err)
	}
	if outcome.Failed {
		zap.L().Info("payment not completed", zap.String("order_id", intent.ID), zap.String("reason", outcome.Reason))
		return outcome, &PaymentError{Reason: outcome.Reason}
	}

	items := make([]domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, domain.OrderItem{
			ItemID:    line.Item.ItemID,
			Name:      line.Item.Name,
			UnitPrice: line.Item.UnitPrice,
			Quantity:  line.Quantity,
		})
	}

	err = s.api.VerifyOrder(ctx, domain.OrderVerification{
		PaymentID: outcome.PaymentID,
		OrderID:   outcome.OrderID,
		Signature: outcome.Signature,
		StallID:   stallID,
		Items:     items,
		Amount:    total,
	})
	if err != nil {
		zap.L().Error("payment verification failed",
			zap.String("payment_id", outcome.PaymentID),
			zap.String("order_id", outcome.OrderID),
			zap.Error(err))
		return outcome, fmt.Errorf("%w: s.api.VerifyOrder -> %w", ErrVerification, err)
	}

	s.cart.Clear(ctx)
	zap.L().Info("order placed", zap.String("order_id", outcome.OrderID), zap.String("payment_id", outcome.PaymentID))

	if err := s.orders.Load(ctx); err != nil {
		zap.L().Warn("orders not refreshed after checkout", zap.Error(err))
	}

	return outcome, nil
}
