package main

import (
	"context"
	"net/http"
	"sort"
	"strconv"

	"github.com/AdamBeresnev/playcall/internal/game"
	"github.com/AdamBeresnev/playcall/internal/httputil"
	"github.com/AdamBeresnev/playcall/internal/live"
	"github.com/AdamBeresnev/playcall/internal/middleware"
	"github.com/AdamBeresnev/playcall/internal/outcome"
	"github.com/AdamBeresnev/playcall/internal/service"
	"github.com/AdamBeresnev/playcall/internal/store"
	users "github.com/AdamBeresnev/playcall/internal/user"
	"github.com/AdamBeresnev/playcall/views"
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
)

func newRouter(dbConn *sqlx.DB, sessionManager *scs.SessionManager, hub *live.Hub) http.Handler {
	gameStore := store.NewGameStore(dbConn)
	userStore := store.NewUserStore(dbConn)

	gameService := service.NewGameService(dbConn, gameStore, hub)
	playService := service.NewPlayService(dbConn, gameStore, userStore, hub)
	predictionService := service.NewPredictionService(dbConn, gameStore, userStore, nil)
	leaderboardService := service.NewLeaderboardService(gameStore)
	userService := service.NewUserService(userStore)

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.LoadAuthenticatedUser(sessionManager, userStore))

	// resolveGame loads the game named by the {game} URL param, id or slug
	resolveGame := func(w http.ResponseWriter, r *http.Request) (*game.Game, bool) {
		g, err := gameService.ResolveGame(r.Context(), chi.URLParam(r, "game"))
		if err != nil {
			httputil.Error(w, "Failed to get game", err)
			return nil, false
		}
		return g, true
	}

	r.Get("/login", func(w http.ResponseWriter, r *http.Request) {
		views.Render(w, r, views.LoginPage(providerNames(), ""))
	})

	r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			httputil.BadRequest(w, "Invalid form data", err)
			return
		}
		user, err := userService.FindOrCreateByName(r.Context(), r.FormValue("name"), users.Role(r.FormValue("role")))
		if err != nil {
			if httputil.StatusFor(err) == http.StatusBadRequest {
				w.WriteHeader(http.StatusBadRequest)
				views.Render(w, r, views.LoginPage(providerNames(), "Enter a name and pick a role."))
				return
			}
			httputil.InternalServerError(w, "Failed to log in", err)
			return
		}

		if err := sessionManager.RenewToken(r.Context()); err != nil {
			httputil.InternalServerError(w, "Failed to renew session", err)
			return
		}
		sessionManager.Put(r.Context(), middleware.SessionUserKey, user.ID.String())
		http.Redirect(w, r, homeFor(user), http.StatusFound)
	})

	r.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
		sessionManager.Destroy(r.Context())
		http.Redirect(w, r, "/login", http.StatusFound)
	})

	r.Get("/auth/{provider}", func(w http.ResponseWriter, r *http.Request) {
		provider := chi.URLParam(r, "provider")
		r = r.WithContext(context.WithValue(r.Context(), "provider", provider))

		gothic.BeginAuthHandler(w, r)
	})

	r.Get("/auth/{provider}/callback", func(w http.ResponseWriter, r *http.Request) {
		provider := chi.URLParam(r, "provider")
		r = r.WithContext(context.WithValue(r.Context(), "provider", provider))

		gothUser, err := gothic.CompleteUserAuth(w, r)
		if err != nil {
			httputil.BadRequest(w, "Authentication failure", err)
			return
		}

		user, err := userService.FindOrCreateByProvider(r.Context(), gothUser)
		if err != nil {
			httputil.InternalServerError(w, "Failed to find or create user", err)
			return
		}

		if err := sessionManager.RenewToken(r.Context()); err != nil {
			httputil.InternalServerError(w, "Failed to renew session", err)
			return
		}
		sessionManager.Put(r.Context(), middleware.SessionUserKey, user.ID.String())
		http.Redirect(w, r, homeFor(user), http.StatusFound)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, homeFor(middleware.GetAuthenticatedUser(r.Context())), http.StatusFound)
		})

		r.Get("/games/{game}/leaderboard", func(w http.ResponseWriter, r *http.Request) {
			g, ok := resolveGame(w, r)
			if !ok {
				return
			}
			rows, err := leaderboardService.Leaderboard(r.Context(), g.ID)
			if err != nil {
				httputil.Error(w, "Failed to get leaderboard", err)
				return
			}
			views.Render(w, r, views.LeaderboardPage(g, rows))
		})

		r.Get("/api/games/{game}/leaderboard", func(w http.ResponseWriter, r *http.Request) {
			g, ok := resolveGame(w, r)
			if !ok {
				return
			}
			rows, err := leaderboardService.Leaderboard(r.Context(), g.ID)
			if err != nil {
				httputil.Error(w, "Failed to get leaderboard", err)
				return
			}
			httputil.JSON(w, http.StatusOK, rows)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(users.RolePlayer))

			r.Get("/games", func(w http.ResponseWriter, r *http.Request) {
				games, err := gameService.ListActiveGames(r.Context())
				if err != nil {
					httputil.InternalServerError(w, "Failed to list games", err)
					return
				}
				views.Render(w, r, views.GamesPage(games, false))
			})

			r.Get("/games/{game}", func(w http.ResponseWriter, r *http.Request) {
				g, ok := resolveGame(w, r)
				if !ok {
					return
				}
				userID, _ := middleware.GetUserIDFromContext(r.Context())
				status, err := predictionService.PlayStatus(r.Context(), g.ID, userID)
				if err != nil {
					httputil.Error(w, "Failed to get play status", err)
					return
				}
				views.Render(w, r, views.PlayerGamePage(g, status))
			})

			r.Get("/api/games/{game}/play-status", func(w http.ResponseWriter, r *http.Request) {
				g, ok := resolveGame(w, r)
				if !ok {
					return
				}
				userID, _ := middleware.GetUserIDFromContext(r.Context())
				status, err := predictionService.PlayStatus(r.Context(), g.ID, userID)
				if err != nil {
					httputil.Error(w, "Failed to get play status", err)
					return
				}
				httputil.JSON(w, http.StatusOK, status)
			})

			r.Get("/ws/games/{game}", func(w http.ResponseWriter, r *http.Request) {
				g, ok := resolveGame(w, r)
				if !ok {
					return
				}
				userID, _ := middleware.GetUserIDFromContext(r.Context())
				hub.ServeWS(w, r, g.ID, userID)
			})

			r.Post("/plays/{id}/predict", func(w http.ResponseWriter, r *http.Request) {
				playID, err := uuid.Parse(chi.URLParam(r, "id"))
				if err != nil {
					httputil.BadRequest(w, "Invalid play ID", err)
					return
				}
				if err := r.ParseForm(); err != nil {
					httputil.BadRequest(w, "Invalid form data", err)
					return
				}
				predicted, err := outcome.Parse(r.FormValue("predicted_outcome"))
				if err != nil {
					httputil.Error(w, "Invalid outcome", err)
					return
				}
				userID, _ := middleware.GetUserIDFromContext(r.Context())
				useGameBreaker := r.FormValue("game_breaker") == "on"

				p, err := predictionService.SubmitPrediction(r.Context(), playID, userID, predicted, useGameBreaker)
				if err != nil {
					httputil.Error(w, "Failed to submit prediction", err)
					return
				}

				if wantsJSON(r) {
					httputil.JSON(w, http.StatusOK, p)
					return
				}
				play, err := playService.GetPlay(r.Context(), playID)
				if err != nil {
					httputil.Error(w, "Failed to get play", err)
					return
				}
				http.Redirect(w, r, "/games/"+play.GameID.String(), http.StatusSeeOther)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(users.RoleAdmin))

			r.Get("/admin/games", func(w http.ResponseWriter, r *http.Request) {
				games, err := gameService.ListGames(r.Context())
				if err != nil {
					httputil.InternalServerError(w, "Failed to list games", err)
					return
				}
				views.Render(w, r, views.GamesPage(games, true))
			})

			r.Post("/admin/games", func(w http.ResponseWriter, r *http.Request) {
				if err := r.ParseForm(); err != nil {
					httputil.BadRequest(w, "Invalid form data", err)
					return
				}
				g, err := gameService.CreateGame(r.Context(), r.FormValue("name"))
				if err != nil {
					httputil.Error(w, "Failed to create game", err)
					return
				}
				http.Redirect(w, r, "/admin/games/"+g.Slug, http.StatusSeeOther)
			})

			r.Get("/admin/games/{game}", func(w http.ResponseWriter, r *http.Request) {
				g, ok := resolveGame(w, r)
				if !ok {
					return
				}
				plays, err := playService.ListPlays(r.Context(), g.ID)
				if err != nil {
					httputil.Error(w, "Failed to list plays", err)
					return
				}
				views.Render(w, r, views.AdminGamePage(g, views.GroupDrives(plays, nil)))
			})

			r.Get("/api/games/{game}/plays", func(w http.ResponseWriter, r *http.Request) {
				g, ok := resolveGame(w, r)
				if !ok {
					return
				}
				plays, err := playService.ListPlays(r.Context(), g.ID)
				if err != nil {
					httputil.Error(w, "Failed to list plays", err)
					return
				}
				if plays == nil {
					plays = []game.Play{}
				}
				httputil.JSON(w, http.StatusOK, plays)
			})

			r.Post("/admin/games/{game}/status", func(w http.ResponseWriter, r *http.Request) {
				g, ok := resolveGame(w, r)
				if !ok {
					return
				}
				if err := r.ParseForm(); err != nil {
					httputil.BadRequest(w, "Invalid form data", err)
					return
				}
				if err := gameService.UpdateGameStatus(r.Context(), g.ID, game.GameStatus(r.FormValue("status"))); err != nil {
					httputil.Error(w, "Failed to update game status", err)
					return
				}
				http.Redirect(w, r, "/admin/games/"+g.Slug, http.StatusSeeOther)
			})

			r.Post("/admin/games/{game}/plays", func(w http.ResponseWriter, r *http.Request) {
				g, ok := resolveGame(w, r)
				if !ok {
					return
				}
				if err := r.ParseForm(); err != nil {
					httputil.BadRequest(w, "Invalid form data", err)
					return
				}
				input, err := playInputFromForm(r)
				if err != nil {
					httputil.BadRequest(w, "Quarter, down and distance must be numbers", err)
					return
				}
				play, err := playService.CreatePlay(r.Context(), g.ID, input)
				if err != nil {
					httputil.Error(w, "Failed to create play", err)
					return
				}
				if wantsJSON(r) {
					httputil.JSON(w, http.StatusCreated, play)
					return
				}
				http.Redirect(w, r, "/admin/games/"+g.Slug, http.StatusSeeOther)
			})

			r.Post("/admin/plays/{id}/lock", func(w http.ResponseWriter, r *http.Request) {
				playID, err := uuid.Parse(chi.URLParam(r, "id"))
				if err != nil {
					httputil.BadRequest(w, "Invalid play ID", err)
					return
				}
				if err := playService.LockPlay(r.Context(), playID); err != nil {
					httputil.Error(w, "Failed to lock play", err)
					return
				}
				redirectToPlayGame(w, r, playService, playID)
			})

			r.Post("/admin/plays/{id}/score", func(w http.ResponseWriter, r *http.Request) {
				resolvePlay(w, r, playService, playService.ScorePlay)
			})

			r.Post("/admin/plays/{id}/correct", func(w http.ResponseWriter, r *http.Request) {
				resolvePlay(w, r, playService, playService.CorrectPlay)
			})
		})
	})

	return r
}

// resolvePlay handles the score and correct forms, which differ only in
// the service call.
func resolvePlay(w http.ResponseWriter, r *http.Request, plays *service.PlayService, apply func(context.Context, uuid.UUID, outcome.Outcome) error) {
	playID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.BadRequest(w, "Invalid play ID", err)
		return
	}
	if err := r.ParseForm(); err != nil {
		httputil.BadRequest(w, "Invalid form data", err)
		return
	}
	actual, err := outcome.Parse(r.FormValue("outcome"))
	if err != nil {
		httputil.Error(w, "Invalid outcome", err)
		return
	}
	if err := apply(r.Context(), playID, actual); err != nil {
		httputil.Error(w, "Failed to score play", err)
		return
	}
	redirectToPlayGame(w, r, plays, playID)
}

func redirectToPlayGame(w http.ResponseWriter, r *http.Request, plays *service.PlayService, playID uuid.UUID) {
	if wantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	play, err := plays.GetPlay(r.Context(), playID)
	if err != nil {
		httputil.Error(w, "Failed to get play", err)
		return
	}
	http.Redirect(w, r, "/admin/games/"+play.GameID.String(), http.StatusSeeOther)
}

func playInputFromForm(r *http.Request) (service.PlayInput, error) {
	input := service.PlayInput{YardLine: r.FormValue("yard_line")}
	fields := []struct {
		name string
		dst  *int
	}{
		{"quarter", &input.Quarter},
		{"down", &input.Down},
		{"distance", &input.Distance},
	}
	for _, f := range fields {
		v := r.FormValue(f.name)
		if v == "" && f.name == "distance" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return input, err
		}
		*f.dst = n
	}
	return input, nil
}

func wantsJSON(r *http.Request) bool {
	return r.Header.Get("Accept") == "application/json"
}

func homeFor(user *users.User) string {
	if user != nil && user.IsAdmin() {
		return "/admin/games"
	}
	return "/games"
}

func providerNames() []string {
	names := make([]string, 0)
	for name := range goth.GetProviders() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
