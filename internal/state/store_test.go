package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenplate/campus-client/internal/domain"
)

var (
	alice = domain.Identity{UID: "u-alice", Email: "alice@campus.edu", DisplayName: "Alice"}
	bob   = domain.Identity{UID: "u-bob", Email: "bob@campus.edu", DisplayName: "Bob"}
)

func TestStore_ResetClearsEverything(t *testing.T) {
	s := NewStore()
	s.SetOnboarded(true)
	s.SignIn(alice, domain.RoleStaff, &domain.StaffProfile{Role: domain.StaffRoleStaff, StallID: "s1"}, true)
	epoch := s.Epoch()
	require.True(t, s.SetOrders(epoch, []domain.Order{{ID: "o1"}}))
	require.True(t, s.SetDeals(epoch, []domain.Deal{{ID: "d1"}}))
	require.True(t, s.SetIncoming(epoch, []domain.Order{{ID: "o2"}}))

	s.Reset()
	snap := s.Snapshot()

	assert.Equal(t, domain.RoleNone, snap.Session.Role)
	assert.False(t, snap.Session.Verified)
	assert.False(t, snap.Session.Onboarded)
	assert.Nil(t, snap.Session.StaffProfile)
	assert.True(t, snap.Session.Identity.IsZero())
	assert.Empty(t, snap.Orders)
	assert.Empty(t, snap.Deals)
	assert.Empty(t, snap.Incoming)

	s.Reset()
	again := s.Snapshot()
	assert.Equal(t, snap.Session, again.Session)
	assert.Empty(t, again.Orders)
}

func TestStore_StaleLoadIsDropped(t *testing.T) {
	s := NewStore()
	s.SignIn(alice, domain.RoleStudent, nil, true)
	epoch := s.Epoch()

	// Alice logs out and Bob logs in before her load returns.
	s.Reset()
	s.SignIn(bob, domain.RoleStudent, nil, true)

	assert.False(t, s.SetOrders(epoch, []domain.Order{{ID: "alice-order"}}))
	assert.Empty(t, s.Snapshot().Orders)

	assert.True(t, s.SetOrders(s.Epoch(), []domain.Order{{ID: "bob-order"}}))
	assert.Equal(t, "bob-order", s.Snapshot().Orders[0].ID)
}

func TestStore_SetIdentityChangeClearsCaches(t *testing.T) {
	s := NewStore()
	s.SetIdentity(alice)
	require.True(t, s.SetOrders(s.Epoch(), []domain.Order{{ID: "o1"}}))

	s.SetIdentity(domain.Identity{UID: alice.UID, Email: alice.Email, DisplayName: "Alice B."})
	assert.Len(t, s.Snapshot().Orders, 1)

	s.SetIdentity(bob)
	assert.Empty(t, s.Snapshot().Orders)
}

func TestStore_SetRoleDropsProfileForNonStaff(t *testing.T) {
	s := NewStore()
	s.SetRole(domain.RoleStaff)
	s.SetStaffProfile(&domain.StaffProfile{Role: domain.StaffRoleManager, StallID: "s1"})
	require.True(t, s.Session().StaffReady())

	s.SetRole(domain.RoleStudent)
	assert.Nil(t, s.Session().StaffProfile)
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s := NewStore()
	s.SetStaffProfile(&domain.StaffProfile{StallID: "s1"})
	require.True(t, s.SetOrders(s.Epoch(), []domain.Order{{ID: "o1"}}))

	snap := s.Snapshot()
	snap.Session.StaffProfile.StallID = "changed"
	snap.Orders[0].ID = "changed"

	assert.Equal(t, "s1", s.Session().StaffProfile.StallID)
	assert.Equal(t, "o1", s.Snapshot().Orders[0].ID)
}

func TestStore_ObserversSeeTransitions(t *testing.T) {
	s := NewStore()

	var got []domain.Role
	s.OnChange(func(prev, next Snapshot) {
		got = append(got, next.Session.Role)
	})

	s.SetRole(domain.RoleStudent)
	s.SetRole(domain.RoleStudent)
	s.Reset()

	assert.Equal(t, []domain.Role{domain.RoleStudent, domain.RoleNone}, got)
}

func TestStore_ConcurrentMutation(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.SignIn(alice, domain.RoleStudent, nil, true)
			s.SetOrders(s.Epoch(), []domain.Order{{ID: "o"}})
		}()
		go func() {
			defer wg.Done()
			s.Reset()
			_ = s.Snapshot()
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	if snap.Session.Role == domain.RoleNone {
		assert.True(t, snap.Session.Identity.IsZero())
	}
}
