package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenplate/campus-client/internal/domain"
)

func seedClaim(t *testing.T, r repos, owner, stallID, code string) domain.Order {
	t.Helper()
	ctx := context.Background()

	deal, err := r.deals.Create(ctx, domain.Deal{
		ID: "deal-" + code, StallID: stallID, StallName: "North Canteen", Name: "Veg Biryani",
		OriginalPrice: 12000, DiscountedPrice: 6000, Quantity: 3,
	})
	require.NoError(t, err)

	next := deal
	require.NoError(t, next.Claim(domain.ClaimPolicyDecrement))

	order, err := r.deals.Claim(ctx, deal, next, domain.Order{
		ID: "claim-" + code, Kind: domain.OrderKindClaim, Status: domain.StatusReserved,
		StallID: stallID, StallName: "North Canteen", PickupCode: code, OwnerUID: owner,
		CreatedAt: time.Now().UTC(), Claim: &domain.ClaimDetails{DealID: deal.ID, FoodName: deal.Name},
	})
	require.NoError(t, err)

	return order
}

func TestOrderService_LoadMergesAndSorts(t *testing.T) {
	r := openRepos(t)
	store := studentStore("alice")
	claim := seedClaim(t, r, "alice", "north", "GP-1111")
	seedClaim(t, r, "bob", "north", "GP-2222")

	old := time.Now().Add(-time.Hour).UTC()
	api := &fakeBackend{orders: []domain.Order{
		{ID: "order_1", Kind: domain.OrderKindPurchase, Status: domain.StatusPaid, CreatedAt: old},
	}}

	svc := NewOrderService(store, api, r.orders)
	require.NoError(t, svc.Load(context.Background()))

	orders := store.Snapshot().Orders
	require.Len(t, orders, 2)
	assert.Equal(t, claim.ID, orders[0].ID)
	assert.Equal(t, "order_1", orders[1].ID)
}

func TestOrderService_LoadOnlyForStudents(t *testing.T) {
	r := openRepos(t)
	api := &fakeBackend{}

	svc := NewOrderService(staffStore("sam", "north", domain.StaffRoleStaff), api, r.orders)
	require.NoError(t, svc.Load(context.Background()))
	assert.Empty(t, api.Calls())
}

func TestOrderService_StaleLoadDropped(t *testing.T) {
	r := openRepos(t)
	store := studentStore("alice")
	api := &fakeBackend{orders: []domain.Order{{ID: "alice-order", Kind: domain.OrderKindPurchase, Status: domain.StatusPaid}}}
	api.onOrders = func() {
		store.Reset()
		store.SignIn(domain.Identity{UID: "bob"}, domain.RoleStudent, nil, true)
	}

	svc := NewOrderService(store, api, r.orders)
	require.NoError(t, svc.Load(context.Background()))

	snap := store.Snapshot()
	assert.Equal(t, "bob", snap.Session.Identity.UID)
	assert.Empty(t, snap.Orders)
}

func TestOrderService_LoadIncoming(t *testing.T) {
	r := openRepos(t)
	seedClaim(t, r, "alice", "north", "GP-1111")
	seedClaim(t, r, "alice", "south", "GP-2222")

	api := &fakeBackend{paid: []domain.Order{
		{ID: "order_1", Kind: domain.OrderKindPurchase, Status: domain.StatusPaid, StallID: "north"},
		{ID: "order_2", Kind: domain.OrderKindPurchase, Status: domain.StatusPaid, StallID: "south"},
	}}

	t.Run("profile pending", func(t *testing.T) {
		store := staffStore("sam", "north", domain.StaffRoleStaff)
		store.SetStaffProfile(nil)
		svc := NewOrderService(store, &fakeBackend{}, r.orders)
		require.NoError(t, svc.LoadIncoming(context.Background()))
		assert.Empty(t, store.Snapshot().Incoming)
	})

	t.Run("stall queue", func(t *testing.T) {
		store := staffStore("sam", "north", domain.StaffRoleStaff)
		svc := NewOrderService(store, api, r.orders)
		require.NoError(t, svc.LoadIncoming(context.Background()))

		var ids []string
		for _, o := range store.Snapshot().Incoming {
			ids = append(ids, o.ID)
		}
		assert.ElementsMatch(t, []string{"order_1", "claim-GP-1111"}, ids)
	})
}

func TestOrderService_ClaimLifecycle(t *testing.T) {
	ctx := context.Background()
	r := openRepos(t)
	claim := seedClaim(t, r, "alice", "north", "GP-1111")

	store := staffStore("sam", "north", domain.StaffRoleStaff)
	svc := NewOrderService(store, &fakeBackend{}, r.orders)

	_, err := svc.MarkReady(ctx, claim.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	order, err := svc.Accept(ctx, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClaimed, order.Status)

	order, err = svc.MarkReady(ctx, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReady, order.Status)

	order, err = svc.MarkPickedUp(ctx, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, order.Status)

	_, err = svc.CompleteManually(ctx, claim.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	stored, err := r.orders.FindByID(ctx, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
}

func TestOrderService_ManualCompletion(t *testing.T) {
	ctx := context.Background()
	r := openRepos(t)
	claim := seedClaim(t, r, "alice", "north", "GP-1111")

	svc := NewOrderService(staffStore("sam", "north", domain.StaffRoleStaff), &fakeBackend{}, r.orders)
	order, err := svc.CompleteManually(ctx, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, order.Status)
}

func TestOrderService_TransitionGuards(t *testing.T) {
	ctx := context.Background()
	r := openRepos(t)
	claim := seedClaim(t, r, "alice", "north", "GP-1111")

	t.Run("student", func(t *testing.T) {
		svc := NewOrderService(studentStore("alice"), &fakeBackend{}, r.orders)
		_, err := svc.Accept(ctx, claim.ID)
		assert.ErrorIs(t, err, ErrStaffOnly)
	})

	t.Run("other stall", func(t *testing.T) {
		svc := NewOrderService(staffStore("sam", "south", domain.StaffRoleStaff), &fakeBackend{}, r.orders)
		_, err := svc.Accept(ctx, claim.ID)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("purchase order", func(t *testing.T) {
		store := staffStore("sam", "north", domain.StaffRoleStaff)
		api := &fakeBackend{paid: []domain.Order{{ID: "order_1", Kind: domain.OrderKindPurchase, Status: domain.StatusPaid, StallID: "north"}}}
		svc := NewOrderService(store, api, r.orders)
		require.NoError(t, svc.LoadIncoming(ctx))

		_, err := svc.MarkReady(ctx, "order_1")
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, domain.StatusPaid, store.Snapshot().Incoming[0].Status)
	})
}

func TestOrderService_FindByPickupCode(t *testing.T) {
	ctx := context.Background()
	r := openRepos(t)
	claim := seedClaim(t, r, "alice", "north", "GP-1111")

	store := staffStore("sam", "north", domain.StaffRoleStaff)
	api := &fakeBackend{paid: []domain.Order{{ID: "order_1", Kind: domain.OrderKindPurchase, Status: domain.StatusPaid, StallID: "north", PickupCode: "order_1"}}}
	svc := NewOrderService(store, api, r.orders)
	require.NoError(t, svc.LoadIncoming(ctx))

	found, err := svc.FindByPickupCode(ctx, " gp-1111 ")
	require.NoError(t, err)
	assert.Equal(t, claim.ID, found.ID)

	found, err = svc.FindByPickupCode(ctx, "ORDER_1")
	require.NoError(t, err)
	assert.Equal(t, "order_1", found.ID)

	_, err = svc.FindByPickupCode(ctx, "GP-9999")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_ActiveAndPast(t *testing.T) {
	store := studentStore("alice")
	require.True(t, store.SetOrders(store.Epoch(), []domain.Order{
		{ID: "a", Status: domain.StatusReady},
		{ID: "b", Status: domain.StatusCompleted},
		{ID: "c", Status: domain.StatusReserved},
	}))

	svc := NewOrderService(store, &fakeBackend{}, openRepos(t).orders)
	assert.Len(t, svc.Active(), 2)
	require.Len(t, svc.Past(), 1)
	assert.Equal(t, "b", svc.Past()[0].ID)
}
