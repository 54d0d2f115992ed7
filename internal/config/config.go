package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr         string
	DatabasePath string

	SessionLifetime     time.Duration
	LeaderboardInterval time.Duration

	DiscordKey         string
	DiscordSecret      string
	DiscordCallbackURL string
	GoogleKey          string
	GoogleSecret       string
	GoogleCallbackURL  string
}

// Load reads the environment. Call godotenv.Load first to pick up a .env file.
func Load() *Config {
	return &Config{
		Addr:                getEnv("ADDR", ":8080"),
		DatabasePath:        getEnv("DATABASE_PATH", "playcall.db"),
		SessionLifetime:     getDuration("SESSION_LIFETIME", 24*time.Hour),
		LeaderboardInterval: getDuration("LEADERBOARD_INTERVAL", 10*time.Second),
		DiscordKey:          os.Getenv("DISCORD_KEY"),
		DiscordSecret:       os.Getenv("DISCORD_SECRET"),
		DiscordCallbackURL:  os.Getenv("DISCORD_CALLBACK_URL"),
		GoogleKey:           os.Getenv("GOOGLE_KEY"),
		GoogleSecret:        os.Getenv("GOOGLE_SECRET"),
		GoogleCallbackURL:   os.Getenv("GOOGLE_CALLBACK_URL"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Accepts Go durations ("30s") or plain seconds ("30")
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
