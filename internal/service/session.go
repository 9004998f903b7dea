package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/greenplate/campus-client/internal/domain"
)

type SessionState interface {
	Session() domain.Session
	SetOnboarded(onboarded bool)
	SetVerified(verified bool)
	Reset()
}

type MenuCache interface {
	Invalidate()
}

type SignOuter interface {
	SignOut(ctx context.Context) error
}

type SessionService struct {
	state SessionState
	idp   SignOuter
	cart  CartBinder
	menu  MenuCache
}

func NewSessionService(state SessionState, idp SignOuter, cart CartBinder, menu MenuCache) *SessionService {
	return &SessionService{
		state: state,
		idp:   idp,
		cart:  cart,
		menu:  menu,
	}
}

func (s *SessionService) CompleteOnboarding() {
	s.state.SetOnboarded(true)
}

// ConfirmVerification passes the verification screen. It only needs a role.
func (s *SessionService) ConfirmVerification() error {
	if s.state.Session().Role == domain.RoleNone {
		return ErrNoRole
	}
	s.state.SetVerified(true)

	return nil
}

// Logout always clears local state, even when the identity provider call fails.
func (s *SessionService) Logout(ctx context.Context) error {
	uid := s.state.Session().Identity.UID
	signOutErr := s.idp.SignOut(ctx)

	s.cart.Unbind()
	s.menu.Invalidate()
	s.state.Reset()
	zap.L().Info("signed out", zap.String("uid", uid))

	if signOutErr != nil {
		return fmt.Errorf("s.idp.SignOut -> %w", signOutErr)
	}

	return nil
}
