package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"shareit/internal/database"
	"shareit/internal/models"
)

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	ListUsers(ctx context.Context) ([]*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// UserPatch carries a partial update; nil fields keep the stored value.
type UserPatch struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type UserService struct {
	store UserStore
	log   zerolog.Logger
}

func NewUserService(store UserStore, logger *zerolog.Logger) *UserService {
	return &UserService{
		store: store,
		log:   logger.With().Str("component", "user-service").Logger(),
	}
}

func (s *UserService) Create(ctx context.Context, name, email string) (*models.User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, conflictf("email %s is already in use", email)
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	user := &models.User{Name: name, Email: email}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info().Int64("user_id", user.ID).Msg("user created")
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id int64, patch UserPatch) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundf("user with id %d does not exist", id)
	}
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Email != nil {
		if err := validateEmail(*patch.Email); err != nil {
			return nil, err
		}
		if other, err := s.store.GetUserByEmail(ctx, *patch.Email); err == nil && other.ID != id {
			return nil, conflictf("email %s is already in use", *patch.Email)
		} else if err != nil && !errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
		user.Email = *patch.Email
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundf("user with id %d does not exist", id)
	}
	return user, err
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.store.ListUsers(ctx)
}

// Delete removes the user row. References from items, bookings and comments
// are left dangling, matching the storage model.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.store.DeleteUser(ctx, id)
}

func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" || !strings.Contains(email, "@") {
		return validationf("invalid email")
	}
	return nil
}
