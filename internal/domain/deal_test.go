package domain

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeal_ClaimDecrement(t *testing.T) {
	d := Deal{ID: "d1", Quantity: 2}

	require.NoError(t, d.Claim(ClaimPolicyDecrement))
	assert.Equal(t, 1, d.Quantity)
	assert.False(t, d.IsClaimed)

	require.NoError(t, d.Claim(ClaimPolicyDecrement))
	assert.Equal(t, 0, d.Quantity)
	assert.True(t, d.IsClaimed)

	assert.ErrorIs(t, d.Claim(ClaimPolicyDecrement), ErrDealUnavailable)
	assert.Equal(t, 0, d.Quantity)
}

func TestDeal_ClaimSingle(t *testing.T) {
	d := Deal{ID: "d1", Quantity: 3}

	require.NoError(t, d.Claim(ClaimPolicySingle))
	assert.Equal(t, 2, d.Quantity)
	assert.True(t, d.IsClaimed)

	assert.ErrorIs(t, d.Claim(ClaimPolicySingle), ErrDealUnavailable)
	assert.Equal(t, 2, d.Quantity)
}

func TestParseClaimPolicy(t *testing.T) {
	p, err := ParseClaimPolicy("single")
	require.NoError(t, err)
	assert.Equal(t, ClaimPolicySingle, p)

	_, err = ParseClaimPolicy("first-come")
	assert.ErrorIs(t, err, ErrUnknownClaimPolicy)
}

func TestNewPickupCode(t *testing.T) {
	pattern := regexp.MustCompile(`^GP-[1-9]\d{3}$`)
	for i := 0; i < 100; i++ {
		assert.Regexp(t, pattern, NewPickupCode("GP"))
	}
}

func TestMoney(t *testing.T) {
	assert.Equal(t, Money(24000), MoneyFromMajor(240))
	assert.Equal(t, Money(1999), MoneyFromMajor(19.99))
	assert.Equal(t, 240.0, Money(24000).Major())
	assert.Equal(t, "₹240.00", Money(24000).String())
	assert.Equal(t, "-₹0.50", Money(-50).String())
}

func TestSession_Gates(t *testing.T) {
	assert.False(t, Session{}.CanReachHome())
	assert.False(t, Session{Role: RoleStudent}.CanReachHome())
	assert.True(t, Session{Role: RoleStudent, Verified: true}.CanReachHome())
	assert.False(t, Session{Role: RoleStaff, Verified: true}.CanReachHome())

	staff := Session{Role: RoleStaff, Verified: true, StaffProfile: &StaffProfile{Role: StaffRoleManager, StallID: "s1"}}
	assert.True(t, staff.CanReachHome())
	assert.True(t, staff.StaffReady())
	assert.True(t, staff.StaffProfile.IsManager())
}
