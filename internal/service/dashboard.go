package service

import (
	"context"
	"fmt"

	"github.com/greenplate/campus-client/internal/domain"
	"github.com/greenplate/campus-client/internal/state"
)

type DashboardState interface {
	Snapshot() state.Snapshot
}

// Stats is the summary on the staff home screen.
type Stats struct {
	StallID         string
	ActiveDeals     int
	UnitsLeft       int
	CompletedClaims int
	Queue           map[domain.OrderStatus]int
	PaidOrders      int
	CarbonSavedKg   float64
}

type DashboardService struct {
	state  DashboardState
	deals  DealRepository
	claims ClaimOrderRepository
	policy domain.ClaimPolicy
}

func NewDashboardService(state DashboardState, deals DealRepository, claims ClaimOrderRepository, policy domain.ClaimPolicy) *DashboardService {
	return &DashboardService{
		state:  state,
		deals:  deals,
		claims: claims,
		policy: policy,
	}
}

// Stats summarises the stall from its deals, claims and the loaded queue.
func (s *DashboardService) Stats(ctx context.Context) (Stats, error) {
	snap := s.state.Snapshot()
	if snap.Session.Role != domain.RoleStaff {
		return Stats{}, ErrStaffOnly
	}
	if snap.Session.StaffProfile == nil {
		return Stats{}, ErrStaffProfilePending
	}
	stallID := snap.Session.StaffProfile.StallID

	deals, err := s.deals.FindByStall(ctx, stallID)
	if err != nil {
		return Stats{}, fmt.Errorf("s.deals.FindByStall -> %w", err)
	}

	claims, err := s.claims.FindByStall(ctx, stallID)
	if err != nil {
		return Stats{}, fmt.Errorf("s.claims.FindByStall -> %w", err)
	}

	stats := Stats{
		StallID: stallID,
		Queue:   make(map[domain.OrderStatus]int),
	}
	carbon := make(map[string]float64, len(deals))

	for _, d := range deals {
		carbon[d.ID] = d.CarbonSavedKg
		if d.Available(s.policy) {
			stats.ActiveDeals++
			stats.UnitsLeft += d.Quantity
		}
	}

	for _, o := range claims {
		if o.Status != domain.StatusCompleted {
			continue
		}
		stats.CompletedClaims++
		if o.Claim != nil {
			stats.CarbonSavedKg += carbon[o.Claim.DealID]
		}
	}

	for _, o := range snap.Incoming {
		if o.IsActive() {
			stats.Queue[o.Status]++
		}
		if o.Kind == domain.OrderKindPurchase && o.Status == domain.StatusPaid {
			stats.PaidOrders++
		}
	}

	return stats, nil
}
