package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenplate/campus-client/internal/domain"
)

func TestDashboardService_Stats(t *testing.T) {
	ctx := context.Background()
	r := openRepos(t)

	deal := postDeal(t, r, 3)
	postDeal(t, r, 1)

	students := NewDealService(studentStore("alice"), r.deals, fakeStalls{}, noopLoader{}, domain.ClaimPolicyDecrement, "GP")
	claim, err := students.Claim(ctx, deal.ID)
	require.NoError(t, err)
	_, err = students.Claim(ctx, deal.ID)
	require.NoError(t, err)

	store := staffStore("sam", "north", domain.StaffRoleStaff)
	api := &fakeBackend{paid: []domain.Order{
		{ID: "order_1", Kind: domain.OrderKindPurchase, Status: domain.StatusPaid, StallID: "north"},
	}}
	orders := NewOrderService(store, api, r.orders)
	_, err = orders.CompleteManually(ctx, claim.ID)
	require.NoError(t, err)

	stats, err := NewDashboardService(store, r.deals, r.orders, domain.ClaimPolicyDecrement).Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, "north", stats.StallID)
	assert.Equal(t, 2, stats.ActiveDeals)
	assert.Equal(t, 2, stats.UnitsLeft)
	assert.Equal(t, 1, stats.CompletedClaims)
	assert.InDelta(t, 0.8, stats.CarbonSavedKg, 1e-9)
	assert.Equal(t, 1, stats.PaidOrders)
	assert.Equal(t, 1, stats.Queue[domain.StatusPaid])
	assert.Equal(t, 1, stats.Queue[domain.StatusReserved])
}

func TestDashboardService_ProfilePending(t *testing.T) {
	store := staffStore("sam", "north", domain.StaffRoleStaff)
	store.SetStaffProfile(nil)

	r := openRepos(t)
	_, err := NewDashboardService(store, r.deals, r.orders, domain.ClaimPolicyDecrement).Stats(context.Background())
	assert.ErrorIs(t, err, ErrStaffProfilePending)
}
