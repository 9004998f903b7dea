// Package shell decides which top-level screen the session may see.
package shell

import (
	"github.com/greenplate/campus-client/internal/domain"
	"github.com/greenplate/campus-client/internal/state"
)

type Screen int

const (
	ScreenSplash Screen = iota
	ScreenAuth
	ScreenVerification
	ScreenStaffLoading
	ScreenStudentHome
	ScreenStaffHome
)

var screenNames = map[Screen]string{
	ScreenSplash:       "splash",
	ScreenAuth:         "auth",
	ScreenVerification: "verification",
	ScreenStaffLoading: "staff-loading",
	ScreenStudentHome:  "student-home",
	ScreenStaffHome:    "staff-home",
}

func (s Screen) String() string {
	if name, ok := screenNames[s]; ok {
		return name
	}

	return "unknown"
}

// Select walks the gates in order: onboarding, role, verification and, for
// staff, the profile fetch.
func Select(snap state.Snapshot) Screen {
	sess := snap.Session

	switch {
	case !sess.Onboarded:
		return ScreenSplash
	case sess.Role == domain.RoleNone:
		return ScreenAuth
	case !sess.Verified:
		return ScreenVerification
	case sess.Role == domain.RoleStaff && !sess.StaffReady():
		return ScreenStaffLoading
	case sess.Role == domain.RoleStaff:
		return ScreenStaffHome
	}

	return ScreenStudentHome
}

type Tab struct {
	ID    string
	Label string
}

var (
	StudentTabs = []Tab{
		{ID: "deals", Label: "Home"},
		{ID: "menu", Label: "Menu"},
		{ID: "cart", Label: "Cart"},
		{ID: "orders", Label: "Orders"},
		{ID: "profile", Label: "Profile"},
	}
	StaffTabs = []Tab{
		{ID: "stats", Label: "Stats"},
		{ID: "kitchen", Label: "Kitchen"},
		{ID: "pickup", Label: "Pickup"},
		{ID: "deals", Label: "Post deal"},
		{ID: "team", Label: "Team"},
	}
)

// Tabs returns the tab bar of screen, or nil when it has none.
func Tabs(screen Screen) []Tab {
	switch screen {
	case ScreenStudentHome:
		return StudentTabs
	case ScreenStaffHome:
		return StaffTabs
	}

	return nil
}
