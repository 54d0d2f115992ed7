package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AdamBeresnev/playcall/internal/store"
	users "github.com/AdamBeresnev/playcall/internal/user"
	"github.com/AdamBeresnev/playcall/internal/utils"
	"github.com/google/uuid"
	"github.com/markbates/goth"
)

type UserService struct {
	store *store.UserStore
}

func NewUserService(store *store.UserStore) *UserService {
	return &UserService{store: store}
}

type LoginInput struct {
	Name string     `validate:"required,max=50"`
	Role users.Role `validate:"required,oneof=admin player"`
}

// FindOrCreateByName logs a user in by display name. An existing user keeps
// the role they were created with.
func (s *UserService) FindOrCreateByName(ctx context.Context, name string, role users.Role) (*users.User, error) {
	input := LoginInput{Name: strings.TrimSpace(name), Role: role}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByName(ctx, input.Name)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	newUser := &users.User{
		ID:        uuid.New(),
		Name:      input.Name,
		Role:      input.Role,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, newUser); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return newUser, nil
}

// FindOrCreateByProvider maps an OAuth identity to a player.
func (s *UserService) FindOrCreateByProvider(ctx context.Context, gothUser goth.User) (*users.User, error) {
	user, err := s.store.GetUserByProvider(ctx, gothUser.Provider, gothUser.UserID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	name := utils.FirstNonEmpty(gothUser.NickName, gothUser.Name, gothUser.Email, "player")
	newUser := &users.User{
		ID:         uuid.New(),
		Name:       utils.Truncate(name, 50),
		Role:       users.RolePlayer,
		Provider:   utils.StringOrNil(gothUser.Provider),
		ProviderID: utils.StringOrNil(gothUser.UserID),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, newUser); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return newUser, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*users.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "user", id)
	}
	return user, nil
}
