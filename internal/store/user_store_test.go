package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	users "github.com/AdamBeresnev/playcall/internal/user"
	"github.com/AdamBeresnev/playcall/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStore(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	us := NewUserStore(database)
	ctx := context.Background()

	u := &users.User{
		ID:         uuid.New(),
		Name:       "Alice",
		Role:       users.RolePlayer,
		Provider:   utils.StringOrNil("discord"),
		ProviderID: utils.StringOrNil("1234"),
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, us.CreateUser(ctx, u))

	fetched, err := us.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", fetched.Name)
	assert.Equal(t, users.RolePlayer, fetched.Role)
	assert.Equal(t, 0, fetched.Streak)

	byName, err := us.GetUserByName(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	byProvider, err := us.GetUserByProvider(ctx, "discord", "1234")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byProvider.ID)

	_, err = us.GetUserByName(ctx, "Nobody")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	withTx(t, database, func(tx *sqlx.Tx) {
		require.NoError(t, us.UpdateStreak(ctx, tx, u.ID, 4))
		inTx, err := us.GetUserTx(ctx, tx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, inTx.Streak)
	})
}

func TestUserRoleConstraint(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	us := NewUserStore(database)
	err := us.CreateUser(context.Background(), &users.User{ID: uuid.New(), Name: "Mallory", Role: "owner", CreatedAt: time.Now().UTC()})
	assert.Error(t, err)
}
