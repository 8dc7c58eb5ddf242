package service

import (
	"context"
	"fmt"

	"ivyresort/internal/domain"
	"ivyresort/internal/models"

	"github.com/rs/zerolog"
)

// UserService manages dashboard accounts.
type UserService struct {
	store  domain.UserStore
	logger zerolog.Logger
}

func NewUserService(store domain.UserStore, logger zerolog.Logger) *UserService {
	return &UserService{
		store:  store,
		logger: logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *UserService) Create(ctx context.Context, user *models.DashboardUser) (*models.DashboardUser, error) {
	if user.Name == "" {
		return nil, fmt.Errorf("%w: missing required field: name", ErrValidation)
	}
	if user.Email == "" {
		return nil, fmt.Errorf("%w: missing required field: email", ErrValidation)
	}
	if user.Role == "" {
		user.Role = models.RoleStaff
	}
	if !models.ValidRole(user.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, user.Role)
	}
	user.Active = true
	if err := s.store.CreateDashboardUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.DashboardUser, error) {
	return s.store.GetDashboardUser(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]*models.DashboardUser, error) {
	return s.store.ListDashboardUsers(ctx)
}

// Update merges the provided fields over the stored account. Empty
// strings and a nil active flag leave the stored values untouched.
func (s *UserService) Update(ctx context.Context, id int64, name, email, role string, active *bool) (*models.DashboardUser, error) {
	if role != "" && !models.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	current, err := s.store.GetDashboardUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != "" {
		current.Name = name
	}
	if email != "" {
		current.Email = email
	}
	if role != "" {
		current.Role = role
	}
	if active != nil {
		current.Active = *active
	}
	if err := s.store.UpdateDashboardUser(ctx, current); err != nil {
		return nil, err
	}
	return s.store.GetDashboardUser(ctx, id)
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.store.DeleteDashboardUser(ctx, id)
}
