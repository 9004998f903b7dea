package domain

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

var (
	ErrDealUnavailable    = errors.New("deal is no longer available")
	ErrUnknownClaimPolicy = errors.New("unknown claim policy")
)

// ClaimPolicy decides how many people can claim units of one deal.
type ClaimPolicy string

const (
	// ClaimPolicyDecrement lets every claim take one unit until none are left.
	ClaimPolicyDecrement ClaimPolicy = "decrement"
	// ClaimPolicySingle closes the deal after its first claim.
	ClaimPolicySingle ClaimPolicy = "single"
)

func ParseClaimPolicy(s string) (ClaimPolicy, error) {
	switch p := ClaimPolicy(s); p {
	case ClaimPolicyDecrement, ClaimPolicySingle:
		return p, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownClaimPolicy, s)
}

type Nutrition struct {
	Calories int
	ProteinG int
	CarbsG   int
	FatG     int
}

type Deal struct {
	ID              string
	StallID         string
	StallName       string
	Name            string
	Description     string
	Ingredients     []string
	Nutrition       Nutrition
	CarbonSavedKg   float64
	OriginalPrice   Money
	DiscountedPrice Money
	Quantity        int
	TimeLeftMinutes int
	Tags            []string
	IsClaimed       bool
	CreatedAt       time.Time
}

func (d Deal) Available(policy ClaimPolicy) bool {
	if d.Quantity <= 0 {
		return false
	}
	if policy == ClaimPolicySingle && d.IsClaimed {
		return false
	}

	return true
}

// Claim takes one unit under policy.
func (d *Deal) Claim(policy ClaimPolicy) error {
	if !d.Available(policy) {
		return ErrDealUnavailable
	}

	d.Quantity--
	switch policy {
	case ClaimPolicySingle:
		d.IsClaimed = true
	default:
		d.IsClaimed = d.Quantity == 0
	}

	return nil
}

// ExpiresAt is when the countdown shown to students reaches zero.
func (d Deal) ExpiresAt() time.Time {
	return d.CreatedAt.Add(time.Duration(d.TimeLeftMinutes) * time.Minute)
}

func (d Deal) Savings() Money {
	return d.OriginalPrice - d.DiscountedPrice
}

// NewPickupCode returns a short code such as "GP-4821".
func NewPickupCode(prefix string) string {
	return fmt.Sprintf("%s-%04d", prefix, 1000+rand.Intn(9000))
}
