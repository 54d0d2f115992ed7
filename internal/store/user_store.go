package store

import (
	"context"

	users "github.com/AdamBeresnev/playcall/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type UserStore struct {
	db *sqlx.DB
}

const (
	getUserQuery           = "SELECT * FROM users WHERE id = ?"
	getUserByNameQuery     = "SELECT * FROM users WHERE name = ? ORDER BY created_at ASC LIMIT 1"
	getUserByProviderQuery = `
        SELECT * FROM users
        WHERE provider = ?
        AND provider_id = ?
    `
	createUserQuery = `
		INSERT INTO users (id, name, role, streak, provider, provider_id, created_at) VALUES
		(:id, :name, :role, :streak, :provider, :provider_id, :created_at)
	`
	updateUserStreakQuery = "UPDATE users SET streak = ? WHERE id = ?"
)

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetUser(ctx context.Context, id uuid.UUID) (*users.User, error) {
	return getUser(ctx, s.db, getUserQuery, id)
}

func (s *UserStore) GetUserTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*users.User, error) {
	return getUser(ctx, tx, getUserQuery, id)
}

func (s *UserStore) GetUserByName(ctx context.Context, name string) (*users.User, error) {
	return getUser(ctx, s.db, getUserByNameQuery, name)
}

func (s *UserStore) GetUserByProvider(ctx context.Context, provider string, providerID string) (*users.User, error) {
	return getUser(ctx, s.db, getUserByProviderQuery, provider, providerID)
}

func getUser(ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) (*users.User, error) {
	var user users.User
	if err := sqlx.GetContext(ctx, q, &user, query, args...); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) CreateUser(ctx context.Context, user *users.User) error {
	_, err := s.db.NamedExecContext(ctx, createUserQuery, user)
	return err
}

func (s *UserStore) UpdateStreak(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, streak int) error {
	_, err := tx.ExecContext(ctx, updateUserStreakQuery, streak, id)
	return err
}
