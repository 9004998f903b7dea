package domain

type Role string

const (
	RoleNone    Role = ""
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
)

type StaffRole string

const (
	StaffRoleManager StaffRole = "manager"
	StaffRoleStaff   StaffRole = "staff"
)

// Identity is the account signed in with the identity provider.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
}

func (i Identity) IsZero() bool {
	return i.UID == ""
}

// StaffProfile binds a staff identity to one stall.
type StaffProfile struct {
	Role    StaffRole `json:"role"`
	StallID string    `json:"stall_id"`
	Email   string    `json:"email"`
}

func (p StaffProfile) IsManager() bool {
	return p.Role == StaffRoleManager
}

type StaffMember struct {
	UID    string    `json:"uid"`
	Email  string    `json:"email"`
	Role   StaffRole `json:"role"`
	Status string    `json:"status"`
}

type Session struct {
	Role         Role
	Onboarded    bool
	Verified     bool
	Identity     Identity
	StaffProfile *StaffProfile
}

func (s Session) IsAuthenticated() bool {
	return !s.Identity.IsZero()
}

// StaffReady reports whether staff screens have everything they render from.
func (s Session) StaffReady() bool {
	return s.Role == RoleStaff && s.StaffProfile != nil
}

func (s Session) CanReachHome() bool {
	if s.Role == RoleNone || !s.Verified {
		return false
	}
	if s.Role == RoleStaff {
		return s.StaffProfile != nil
	}

	return true
}
