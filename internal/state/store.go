package state

import (
	"slices"
	"sync"

	"github.com/greenplate/campus-client/internal/domain"
)

// Snapshot is a read-only copy of the application state.
type Snapshot struct {
	Session  domain.Session
	Orders   []domain.Order
	Incoming []domain.Order
	Deals    []domain.Deal
	Epoch    uint64
}

type Observer func(prev, next Snapshot)

// Store is the single application-state object. Every mutation is a named,
// atomic operation; readers only ever see copies.
type Store struct {
	mu        sync.Mutex
	session   domain.Session
	orders    []domain.Order
	incoming  []domain.Order
	deals     []domain.Deal
	epoch     uint64
	observers []Observer
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) OnChange(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.observers = append(s.observers, o)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

func (s *Store) Session() domain.Session {
	return s.Snapshot().Session
}

func (s *Store) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.epoch
}

func (s *Store) SetRole(role domain.Role) {
	s.update(func() bool {
		if s.session.Role == role {
			return false
		}
		s.session.Role = role
		if role != domain.RoleStaff {
			s.session.StaffProfile = nil
		}
		s.bumpLocked()
		return true
	})
}

func (s *Store) SetOnboarded(onboarded bool) {
	s.update(func() bool {
		changed := s.session.Onboarded != onboarded
		s.session.Onboarded = onboarded
		return changed
	})
}

func (s *Store) SetVerified(verified bool) {
	s.update(func() bool {
		changed := s.session.Verified != verified
		s.session.Verified = verified
		return changed
	})
}

func (s *Store) SetStaffProfile(profile *domain.StaffProfile) {
	s.update(func() bool {
		if profile == nil {
			changed := s.session.StaffProfile != nil
			s.session.StaffProfile = nil
			return changed
		}
		p := *profile
		s.session.StaffProfile = &p
		return true
	})
}

// SetIdentity switches the signed-in account. A different account invalidates
// every cached collection.
func (s *Store) SetIdentity(identity domain.Identity) {
	s.update(func() bool {
		if s.session.Identity == identity {
			return false
		}
		if s.session.Identity.UID != identity.UID {
			s.clearCachesLocked()
			s.bumpLocked()
		}
		s.session.Identity = identity
		return true
	})
}

// SignIn commits the outcome of a successful login in one step.
func (s *Store) SignIn(identity domain.Identity, role domain.Role, profile *domain.StaffProfile, verified bool) {
	s.update(func() bool {
		s.clearCachesLocked()
		s.session.Identity = identity
		s.session.Role = role
		s.session.StaffProfile = nil
		if profile != nil {
			p := *profile
			s.session.StaffProfile = &p
		}
		if verified {
			s.session.Verified = true
		}
		s.bumpLocked()
		return true
	})
}

// Reset returns the state to what it was at process start. It is idempotent.
func (s *Store) Reset() {
	s.update(func() bool {
		s.session = domain.Session{}
		s.clearCachesLocked()
		s.bumpLocked()
		return true
	})
}

// SetOrders commits orders loaded under epoch. Loads started before a later
// identity change are dropped and false is returned.
func (s *Store) SetOrders(epoch uint64, orders []domain.Order) bool {
	return s.commit(epoch, func() { s.orders = slices.Clone(orders) })
}

func (s *Store) SetIncoming(epoch uint64, orders []domain.Order) bool {
	return s.commit(epoch, func() { s.incoming = slices.Clone(orders) })
}

func (s *Store) SetDeals(epoch uint64, deals []domain.Deal) bool {
	return s.commit(epoch, func() { s.deals = slices.Clone(deals) })
}

func (s *Store) commit(epoch uint64, apply func()) bool {
	applied := false
	s.update(func() bool {
		if epoch != s.epoch {
			return false
		}
		apply()
		applied = true
		return true
	})

	return applied
}

func (s *Store) update(mutate func() bool) {
	s.mu.Lock()
	prev := s.snapshotLocked()
	if !mutate() {
		s.mu.Unlock()
		return
	}
	next := s.snapshotLocked()
	observers := slices.Clone(s.observers)
	s.mu.Unlock()

	for _, o := range observers {
		o(prev, next)
	}
}

func (s *Store) clearCachesLocked() {
	s.orders = nil
	s.incoming = nil
	s.deals = nil
}

func (s *Store) bumpLocked() {
	s.epoch++
}

func (s *Store) snapshotLocked() Snapshot {
	session := s.session
	if s.session.StaffProfile != nil {
		p := *s.session.StaffProfile
		session.StaffProfile = &p
	}

	return Snapshot{
		Session:  session,
		Orders:   slices.Clone(s.orders),
		Incoming: slices.Clone(s.incoming),
		Deals:    slices.Clone(s.deals),
		Epoch:    s.epoch,
	}
}
