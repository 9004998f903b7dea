package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"go.uber.org/zap"

	"github.com/greenplate/campus-client/internal/domain"
)

// VerificationMode decides who sets the verified flag after sign-in.
type VerificationMode string

const (
	// VerificationManual requires the user to confirm the verification screen.
	VerificationManual VerificationMode = "manual"
	// VerificationBackend trusts the backend role check.
	VerificationBackend VerificationMode = "backend"
)

// At least 8 characters with one letter and one digit.
var passwordPolicy = regexp2.MustCompile(`^(?=.*[A-Za-z])(?=.*\d).{8,}$`, regexp2.None)

var errWeakPassword = errors.New("must be at least 8 characters and contain a letter and a digit")

type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (domain.Identity, error)
	SignUp(ctx context.Context, email, password string) (domain.Identity, error)
	Token(ctx context.Context, force bool) (string, error)
	SignOut(ctx context.Context) error
}

type AuthAPI interface {
	VerifyStudent(ctx context.Context) error
	VerifyStaff(ctx context.Context) error
	ActivateStaff(ctx context.Context) error
	GetStaffProfile(ctx context.Context) (domain.StaffProfile, error)
}

type AuthState interface {
	SignIn(identity domain.Identity, role domain.Role, profile *domain.StaffProfile, verified bool)
	Session() domain.Session
}

type CartBinder interface {
	Bind(ctx context.Context, ownerUID string) error
	Unbind()
}

// SessionLoader refreshes the data shown right after sign-in.
type SessionLoader interface {
	Load(ctx context.Context) error
	LoadIncoming(ctx context.Context) error
}

type LoginInput struct {
	Email    string
	Password string
	Role     domain.Role
	SignUp   bool
}

func (in LoginInput) Validate() error {
	return validation.ValidateStruct(
		&in,
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, validation.Required, validation.By(func(value interface{}) error {
			if !in.SignUp {
				return nil
			}
			ok, err := passwordPolicy.MatchString(value.(string))
			if err != nil || !ok {
				return errWeakPassword
			}
			return nil
		})),
		validation.Field(&in.Role, validation.Required, validation.In(domain.RoleStudent, domain.RoleStaff)),
	)
}

type AuthService struct {
	idp    IdentityProvider
	api    AuthAPI
	state  AuthState
	cart   CartBinder
	loader SessionLoader
	mode   VerificationMode
}

func NewAuthService(idp IdentityProvider, api AuthAPI, state AuthState, cart CartBinder, loader SessionLoader, mode VerificationMode) *AuthService {
	return &AuthService{
		idp:    idp,
		api:    api,
		state:  state,
		cart:   cart,
		loader: loader,
		mode:   mode,
	}
}

// Login signs in (or up) with the identity provider and runs the role check
// for in.Role. The session changes only when every step succeeds.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (domain.Session, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := in.Validate(); err != nil {
		return domain.Session{}, err
	}

	authenticate, op := s.idp.SignIn, "s.idp.SignIn"
	if in.SignUp {
		authenticate, op = s.idp.SignUp, "s.idp.SignUp"
	}

	identity, err := authenticate(ctx, in.Email, in.Password)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%s -> %w", op, err)
	}

	if _, err := s.idp.Token(ctx, true); err != nil {
		s.abandon(ctx)
		return domain.Session{}, fmt.Errorf("s.idp.Token -> %w", err)
	}

	var profile *domain.StaffProfile
	switch in.Role {
	case domain.RoleStudent:
		if err := s.api.VerifyStudent(ctx); err != nil {
			s.abandon(ctx)
			return domain.Session{}, fmt.Errorf("s.api.VerifyStudent -> %w", err)
		}
	case domain.RoleStaff:
		p, err := s.onboardStaff(ctx)
		if err != nil {
			s.abandon(ctx)
			return domain.Session{}, err
		}
		profile = &p
	}

	s.state.SignIn(identity, in.Role, profile, s.mode == VerificationBackend)
	zap.L().Info("signed in", zap.String("uid", identity.UID), zap.String("role", string(in.Role)))

	if err := s.cart.Bind(ctx, identity.UID); err != nil {
		zap.L().Warn("saved cart not restored", zap.Error(err))
	}
	if err := s.loader.Load(ctx); err != nil {
		zap.L().Warn("orders not loaded after sign-in", zap.Error(err))
	}
	if err := s.loader.LoadIncoming(ctx); err != nil {
		zap.L().Warn("incoming orders not loaded after sign-in", zap.Error(err))
	}

	return s.state.Session(), nil
}

// onboardStaff verifies the staff role, activates the account and fetches the
// profile, reporting how far it got when a step fails.
func (s *AuthService) onboardStaff(ctx context.Context) (domain.StaffProfile, error) {
	var completed []OnboardingStep
	fail := func(step OnboardingStep, err error) error {
		return &StaffOnboardingError{Step: step, Completed: completed, Err: err}
	}

	if err := s.api.VerifyStaff(ctx); err != nil {
		return domain.StaffProfile{}, fail(StepVerifyStaff, err)
	}
	completed = append(completed, StepVerifyStaff)

	if err := s.api.ActivateStaff(ctx); err != nil {
		return domain.StaffProfile{}, fail(StepActivate, err)
	}
	completed = append(completed, StepActivate)

	profile, err := s.api.GetStaffProfile(ctx)
	if err != nil {
		return domain.StaffProfile{}, fail(StepProfile, err)
	}

	return profile, nil
}

// abandon signs out of the identity provider after a failed role check so
// the next attempt starts clean.
func (s *AuthService) abandon(ctx context.Context) {
	if err := s.idp.SignOut(ctx); err != nil {
		zap.L().Warn("sign-out after failed login", zap.Error(err))
	}
}
