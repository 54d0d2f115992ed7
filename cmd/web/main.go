package main

import (
	"log"
	"net/http"

	"github.com/AdamBeresnev/playcall/internal/config"
	"github.com/AdamBeresnev/playcall/internal/db"
	"github.com/AdamBeresnev/playcall/internal/live"
	"github.com/AdamBeresnev/playcall/internal/middleware"
	"github.com/AdamBeresnev/playcall/internal/service"
	"github.com/AdamBeresnev/playcall/internal/store"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := config.Load()

	database := db.InitDB(cfg.DatabasePath)
	defer database.Close()

	if err := db.RunMigrations(database.DB, "file://migrations"); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	middleware.InitAuth(cfg)

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.SessionLifetime
	sessionManager.Store = sqlite3store.New(database.DB)

	hub := live.NewHub()
	leaderboards := service.NewLeaderboardService(store.NewGameStore(database))
	sched, err := leaderboards.StartBroadcastScheduler(hub, cfg.LeaderboardInterval)
	if err != nil {
		log.Fatal("Failed to start leaderboard scheduler:", err)
	}
	defer sched.Shutdown()

	router := newRouter(database, sessionManager, hub)

	log.Printf("Server starting on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatal(err)
	}
}
