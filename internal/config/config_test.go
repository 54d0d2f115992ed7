package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ADDR", "")
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("SESSION_LIFETIME", "")
	t.Setenv("LEADERBOARD_INTERVAL", "")

	cfg := Load()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "playcall.db", cfg.DatabasePath)
	assert.Equal(t, 24*time.Hour, cfg.SessionLifetime)
	assert.Equal(t, 10*time.Second, cfg.LeaderboardInterval)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ADDR", ":9000")
	t.Setenv("SESSION_LIFETIME", "2h")
	t.Setenv("LEADERBOARD_INTERVAL", "30")
	t.Setenv("DISCORD_KEY", "key")

	cfg := Load()
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 2*time.Hour, cfg.SessionLifetime)
	assert.Equal(t, 30*time.Second, cfg.LeaderboardInterval)
	assert.Equal(t, "key", cfg.DiscordKey)
}

func TestLoadIgnoresGarbageDurations(t *testing.T) {
	t.Setenv("LEADERBOARD_INTERVAL", "soon")
	assert.Equal(t, 10*time.Second, Load().LeaderboardInterval)
}
