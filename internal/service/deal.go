package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/greenplate/campus-client/internal/domain"
	"github.com/greenplate/campus-client/internal/repository"
	"github.com/greenplate/campus-client/internal/state"
)

const maxPickupCodeAttempts = 5

var (
	ErrInvalidDeal     = errors.New("deal is invalid")
	ErrPickupCodeTaken = repository.ErrPickupCodeTaken
	ErrDealConflict    = repository.ErrDealConflict
)

type DealRepository interface {
	Create(ctx context.Context, deal domain.Deal) (domain.Deal, error)
	FindByID(ctx context.Context, id string) (domain.Deal, error)
	FindAll(ctx context.Context) ([]domain.Deal, error)
	FindByStall(ctx context.Context, stallID string) ([]domain.Deal, error)
	Claim(ctx context.Context, prev, next domain.Deal, order domain.Order) (domain.Order, error)
}

type DealState interface {
	Snapshot() state.Snapshot
	SetDeals(epoch uint64, deals []domain.Deal) bool
}

// StallDirectory resolves a stall id to its display name.
type StallDirectory interface {
	StallName(ctx context.Context, stallID string) (string, error)
}

type DealService struct {
	state   DealState
	repo    DealRepository
	stalls  StallDirectory
	policy  domain.ClaimPolicy
	prefix  string
	orders  OrderLoader
	nowFunc func() time.Time
}

func NewDealService(state DealState, repo DealRepository, stalls StallDirectory, orders OrderLoader, policy domain.ClaimPolicy, pickupPrefix string) *DealService {
	return &DealService{
		state:   state,
		repo:    repo,
		stalls:  stalls,
		orders:  orders,
		policy:  policy,
		prefix:  strings.ToUpper(pickupPrefix),
		nowFunc: time.Now,
	}
}

// List returns every deal and caches it in the application state.
func (s *DealService) List(ctx context.Context) ([]domain.Deal, error) {
	epoch := s.state.Snapshot().Epoch

	deals, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}
	s.state.SetDeals(epoch, deals)

	return deals, nil
}

func (s *DealService) ListForStall(ctx context.Context, stallID string) ([]domain.Deal, error) {
	deals, err := s.repo.FindByStall(ctx, stallID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByStall -> %w", err)
	}

	return deals, nil
}

// Post lists a new surplus deal for the signed-in staff member's stall.
func (s *DealService) Post(ctx context.Context, deal domain.Deal) (domain.Deal, error) {
	sess := s.state.Snapshot().Session
	if sess.Role != domain.RoleStaff {
		return domain.Deal{}, ErrStaffOnly
	}
	if sess.StaffProfile == nil {
		return domain.Deal{}, ErrStaffProfilePending
	}

	if err := validateDeal(deal); err != nil {
		return domain.Deal{}, fmt.Errorf("%w: %w", ErrInvalidDeal, err)
	}

	deal.ID = ulid.Make().String()
	deal.StallID = sess.StaffProfile.StallID
	deal.StallName = deal.StallID
	if name, err := s.stalls.StallName(ctx, deal.StallID); err == nil && name != "" {
		deal.StallName = name
	} else if err != nil {
		zap.L().Warn("stall name lookup failed", zap.String("stall_id", deal.StallID), zap.Error(err))
	}
	deal.IsClaimed = false
	deal.CreatedAt = s.nowFunc().UTC()

	created, err := s.repo.Create(ctx, deal)
	if err != nil {
		return domain.Deal{}, fmt.Errorf("s.repo.Create -> %w", err)
	}
	zap.L().Info("deal posted", zap.String("deal_id", created.ID), zap.String("stall_id", created.StallID))

	return created, nil
}

// Claim reserves one unit of a deal for the signed-in student and returns
// the reserved claim order.
func (s *DealService) Claim(ctx context.Context, dealID string) (domain.Order, error) {
	sess := s.state.Snapshot().Session
	if sess.Role != domain.RoleStudent || !sess.IsAuthenticated() {
		return domain.Order{}, ErrStudentOnly
	}

	var lastErr error
	for attempt := 0; attempt < maxPickupCodeAttempts; attempt++ {
		order, err := s.claimOnce(ctx, dealID, sess.Identity.UID)
		if err == nil {
			zap.L().Info("deal claimed", zap.String("deal_id", dealID), zap.String("pickup_code", order.PickupCode))
			if err := s.orders.Load(ctx); err != nil {
				zap.L().Warn("orders not refreshed after claim", zap.Error(err))
			}
			return order, nil
		}
		if !errors.Is(err, ErrPickupCodeTaken) && !errors.Is(err, ErrDealConflict) {
			return domain.Order{}, err
		}
		lastErr = err
	}

	return domain.Order{}, fmt.Errorf("s.claimOnce -> %w", lastErr)
}

func (s *DealService) claimOnce(ctx context.Context, dealID, ownerUID string) (domain.Order, error) {
	prev, err := s.repo.FindByID(ctx, dealID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	next := prev
	if err := next.Claim(s.policy); err != nil {
		return domain.Order{}, err
	}

	now := s.nowFunc().UTC()
	order := domain.Order{
		ID:         ulid.Make().String(),
		Kind:       domain.OrderKindClaim,
		Status:     domain.StatusReserved,
		StallID:    prev.StallID,
		StallName:  prev.StallName,
		PickupCode: domain.NewPickupCode(s.prefix),
		OwnerUID:   ownerUID,
		CreatedAt:  now,
		UpdatedAt:  now,
		Claim:      &domain.ClaimDetails{DealID: prev.ID, FoodName: prev.Name},
	}

	created, err := s.repo.Claim(ctx, prev, next, order)
	if err != nil {
		return domain.Order{}, fmt.Errorf("s.repo.Claim -> %w", err)
	}

	return created, nil
}

func validateDeal(d domain.Deal) error {
	return validation.ValidateStruct(
		&d,
		validation.Field(&d.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&d.OriginalPrice, validation.Required, validation.Min(domain.Money(1))),
		validation.Field(&d.DiscountedPrice, validation.Min(domain.Money(0)), validation.Max(d.OriginalPrice)),
		validation.Field(&d.Quantity, validation.Required, validation.Min(1)),
		validation.Field(&d.TimeLeftMinutes, validation.Min(0)),
		validation.Field(&d.CarbonSavedKg, validation.Min(0.0)),
	)
}
