package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/greenplate/campus-client/internal/domain"
)

type StaffAPI interface {
	ListStaff(ctx context.Context) ([]domain.StaffMember, error)
	AddStaffMember(ctx context.Context, email string) error
	DeleteStaffMember(ctx context.Context, uid string) error
	UpdateStaffEmail(ctx context.Context, uid, newEmail string) error
}

// StaffService manages the stall team. Every operation is for managers only.
type StaffService struct {
	session SessionReader
	api     StaffAPI
}

func NewStaffService(session SessionReader, api StaffAPI) *StaffService {
	return &StaffService{
		session: session,
		api:     api,
	}
}

func (s *StaffService) ListTeam(ctx context.Context) ([]domain.StaffMember, error) {
	if err := s.requireManager(); err != nil {
		return nil, err
	}

	team, err := s.api.ListStaff(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.api.ListStaff -> %w", err)
	}

	return team, nil
}

func (s *StaffService) AddMember(ctx context.Context, email string) error {
	if err := s.requireManager(); err != nil {
		return err
	}

	email = strings.TrimSpace(email)
	if err := s.api.AddStaffMember(ctx, email); err != nil {
		return fmt.Errorf("s.api.AddStaffMember -> %w", err)
	}
	zap.L().Info("staff member added", zap.String("email", email))

	return nil
}

func (s *StaffService) RemoveMember(ctx context.Context, uid string) error {
	if err := s.requireManager(); err != nil {
		return err
	}

	if err := s.api.DeleteStaffMember(ctx, uid); err != nil {
		return fmt.Errorf("s.api.DeleteStaffMember -> %w", err)
	}
	zap.L().Info("staff member removed", zap.String("uid", uid))

	return nil
}

func (s *StaffService) UpdateEmail(ctx context.Context, uid, newEmail string) error {
	if err := s.requireManager(); err != nil {
		return err
	}

	if err := s.api.UpdateStaffEmail(ctx, uid, strings.TrimSpace(newEmail)); err != nil {
		return fmt.Errorf("s.api.UpdateStaffEmail -> %w", err)
	}

	return nil
}

func (s *StaffService) requireManager() error {
	sess := s.session.Session()
	if sess.Role != domain.RoleStaff {
		return ErrStaffOnly
	}
	if sess.StaffProfile == nil {
		return ErrStaffProfilePending
	}
	if !sess.StaffProfile.IsManager() {
		return ErrManagerOnly
	}

	return nil
}
