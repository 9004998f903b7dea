package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/greenplate/campus-client/internal/domain"
	"github.com/greenplate/campus-client/internal/repository"
	"github.com/greenplate/campus-client/internal/state"
)

var ErrStatusConflict = repository.ErrStatusConflict

type OrdersAPI interface {
	GetOrders(ctx context.Context) ([]domain.Order, error)
	GetPaidOrders(ctx context.Context) ([]domain.Order, error)
}

type ClaimOrderRepository interface {
	FindByID(ctx context.Context, id string) (domain.Order, error)
	FindByPickupCode(ctx context.Context, code string) (domain.Order, error)
	FindByOwner(ctx context.Context, ownerUID string) ([]domain.Order, error)
	FindByStall(ctx context.Context, stallID string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, order domain.Order, from domain.OrderStatus) error
}

type OrderState interface {
	Snapshot() state.Snapshot
	SetOrders(epoch uint64, orders []domain.Order) bool
	SetIncoming(epoch uint64, orders []domain.Order) bool
}

type OrderService struct {
	state  OrderState
	api    OrdersAPI
	claims ClaimOrderRepository
}

func NewOrderService(state OrderState, api OrdersAPI, claims ClaimOrderRepository) *OrderService {
	return &OrderService{
		state:  state,
		api:    api,
		claims: claims,
	}
}

// Load refreshes the student's orders. It does nothing for other roles.
func (s *OrderService) Load(ctx context.Context) error {
	snap := s.state.Snapshot()
	sess := snap.Session
	if sess.Role != domain.RoleStudent || !sess.IsAuthenticated() {
		return nil
	}

	purchases, err := s.api.GetOrders(ctx)
	if err != nil {
		return fmt.Errorf("s.api.GetOrders -> %w", err)
	}

	claims, err := s.claims.FindByOwner(ctx, sess.Identity.UID)
	if err != nil {
		return fmt.Errorf("s.claims.FindByOwner -> %w", err)
	}

	orders := newestFirst(append(purchases, claims...))
	if !s.state.SetOrders(snap.Epoch, orders) {
		zap.L().Debug("stale orders dropped", zap.Uint64("epoch", snap.Epoch))
	}

	return nil
}

// LoadIncoming refreshes the stall's queue: paid purchases plus local claims.
// It does nothing until the staff profile is known.
func (s *OrderService) LoadIncoming(ctx context.Context) error {
	snap := s.state.Snapshot()
	if !snap.Session.StaffReady() {
		return nil
	}
	stallID := snap.Session.StaffProfile.StallID

	paid, err := s.api.GetPaidOrders(ctx)
	if err != nil {
		return fmt.Errorf("s.api.GetPaidOrders -> %w", err)
	}

	claims, err := s.claims.FindByStall(ctx, stallID)
	if err != nil {
		return fmt.Errorf("s.claims.FindByStall -> %w", err)
	}

	queue := make([]domain.Order, 0, len(paid)+len(claims))
	for _, o := range paid {
		if o.StallID == "" || o.StallID == stallID {
			queue = append(queue, o)
		}
	}
	queue = append(queue, claims...)

	if !s.state.SetIncoming(snap.Epoch, newestFirst(queue)) {
		zap.L().Debug("stale incoming orders dropped", zap.Uint64("epoch", snap.Epoch))
	}

	return nil
}

func (s *OrderService) Accept(ctx context.Context, id string) (domain.Order, error) {
	return s.advance(ctx, id, (*domain.Order).Accept)
}

func (s *OrderService) MarkReady(ctx context.Context, id string) (domain.Order, error) {
	return s.advance(ctx, id, (*domain.Order).MarkReady)
}

func (s *OrderService) MarkPickedUp(ctx context.Context, id string) (domain.Order, error) {
	return s.advance(ctx, id, (*domain.Order).MarkPickedUp)
}

// CompleteManually hands a claim over at the counter without the ready step.
func (s *OrderService) CompleteManually(ctx context.Context, id string) (domain.Order, error) {
	return s.advance(ctx, id, (*domain.Order).CompleteManually)
}

func (s *OrderService) advance(ctx context.Context, id string, step func(*domain.Order) error) (domain.Order, error) {
	profile, err := s.staffProfile()
	if err != nil {
		return domain.Order{}, err
	}

	order, err := s.staffOrder(ctx, id, profile.StallID)
	if err != nil {
		return domain.Order{}, err
	}

	from := order.Status
	if err := step(&order); err != nil {
		return domain.Order{}, err
	}

	if err := s.claims.UpdateStatus(ctx, order, from); err != nil {
		if errors.Is(err, ErrStatusConflict) {
			return domain.Order{}, fmt.Errorf("%w: %w", ErrInvalidTransition, err)
		}
		return domain.Order{}, fmt.Errorf("s.claims.UpdateStatus -> %w", err)
	}
	zap.L().Info("order advanced", zap.String("order_id", order.ID), zap.String("from", string(from)), zap.String("to", string(order.Status)))

	if err := s.LoadIncoming(ctx); err != nil {
		zap.L().Warn("incoming orders not refreshed", zap.Error(err))
	}

	return order, nil
}

// staffOrder finds id in the stall's queue, falling back to the local claims.
func (s *OrderService) staffOrder(ctx context.Context, id, stallID string) (domain.Order, error) {
	for _, o := range s.state.Snapshot().Incoming {
		if o.ID == id && o.Kind == domain.OrderKindPurchase {
			return o, nil
		}
	}

	order, err := s.claims.FindByID(ctx, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("s.claims.FindByID -> %w", err)
	}
	if order.StallID != stallID {
		return domain.Order{}, ErrOrderNotFound
	}

	return order, nil
}

// FindByPickupCode looks up the order a student shows at the counter.
func (s *OrderService) FindByPickupCode(ctx context.Context, code string) (domain.Order, error) {
	profile, err := s.staffProfile()
	if err != nil {
		return domain.Order{}, err
	}

	code = strings.ToUpper(strings.TrimSpace(code))
	order, err := s.claims.FindByPickupCode(ctx, code)
	if err == nil {
		if order.StallID != profile.StallID {
			return domain.Order{}, ErrOrderNotFound
		}
		return order, nil
	}
	if !errors.Is(err, ErrOrderNotFound) {
		return domain.Order{}, fmt.Errorf("s.claims.FindByPickupCode -> %w", err)
	}

	for _, o := range s.state.Snapshot().Incoming {
		if strings.EqualFold(o.PickupCode, code) {
			return o, nil
		}
	}

	return domain.Order{}, ErrOrderNotFound
}

// Active returns the student's orders that are not completed yet.
func (s *OrderService) Active() []domain.Order {
	return s.filter(domain.Order.IsActive)
}

func (s *OrderService) Past() []domain.Order {
	return s.filter(func(o domain.Order) bool { return !o.IsActive() })
}

func (s *OrderService) filter(keep func(domain.Order) bool) []domain.Order {
	var out []domain.Order
	for _, o := range s.state.Snapshot().Orders {
		if keep(o) {
			out = append(out, o)
		}
	}

	return out
}

func (s *OrderService) staffProfile() (domain.StaffProfile, error) {
	sess := s.state.Snapshot().Session
	if sess.Role != domain.RoleStaff {
		return domain.StaffProfile{}, ErrStaffOnly
	}
	if sess.StaffProfile == nil {
		return domain.StaffProfile{}, ErrStaffProfilePending
	}

	return *sess.StaffProfile, nil
}

func newestFirst(orders []domain.Order) []domain.Order {
	slices.SortStableFunc(orders, func(a, b domain.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return orders
}
