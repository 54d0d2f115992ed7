package main

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/AdamBeresnev/playcall/internal/db"
	"github.com/AdamBeresnev/playcall/internal/game"
	"github.com/AdamBeresnev/playcall/internal/leaderboard"
	"github.com/AdamBeresnev/playcall/internal/live"
	"github.com/AdamBeresnev/playcall/internal/service"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	database.SetMaxOpenConns(1)
	require.NoError(t, db.RunMigrations(database.DB, "file://../../migrations"))

	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(database.DB, 0)

	srv := httptest.NewServer(newRouter(database, sessionManager, live.NewHub()))
	t.Cleanup(func() {
		srv.Close()
		database.Close()
	})
	return srv
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func postForm(t *testing.T, c *http.Client, target string, form url.Values, asJSON bool) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if asJSON {
		req.Header.Set("Accept", "application/json")
	}
	resp, err := c.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func getJSON(t *testing.T, c *http.Client, target string, v interface{}) {
	t.Helper()
	resp, err := c.Get(target)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func login(t *testing.T, srv *httptest.Server, name, role string) *http.Client {
	t.Helper()
	c := newClient(t)
	resp := postForm(t, c, srv.URL+"/login", url.Values{"name": {name}, "role": {role}}, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return c
}

func TestPredictionRoundTrip(t *testing.T) {
	srv := setupServer(t)

	admin := login(t, srv, "Ref", "admin")
	alice := login(t, srv, "Alice", "player")

	resp := postForm(t, admin, srv.URL+"/admin/games", url.Values{"name": {"Bears at Packers"}}, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	slug := strings.TrimPrefix(resp.Request.URL.Path, "/admin/games/")
	require.True(t, strings.HasPrefix(slug, "bears-at-packers-"), slug)

	resp = postForm(t, admin, srv.URL+"/admin/games/"+slug+"/plays",
		url.Values{"quarter": {"1"}, "down": {"1"}, "distance": {"10"}, "yard_line": {"OWN 25"}}, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var play game.Play
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&play))

	var status service.PlayStatus
	getJSON(t, alice, srv.URL+"/api/games/"+slug+"/play-status", &status)
	require.NotNil(t, status.Play)
	assert.Equal(t, play.ID, status.Play.ID)
	assert.True(t, status.GameBreakerAvailable)

	predictURL := srv.URL + "/plays/" + play.ID.String() + "/predict"
	resp = postForm(t, alice, predictURL, url.Values{"predicted_outcome": {"KICKOFF"}}, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postForm(t, alice, predictURL, url.Values{"predicted_outcome": {"RUN_LEFT"}, "game_breaker": {"on"}}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postForm(t, admin, predictURL, url.Values{"predicted_outcome": {"RUN_LEFT"}}, true)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "admins do not predict")

	playURL := srv.URL + "/admin/plays/" + play.ID.String()
	resp = postForm(t, alice, playURL+"/lock", nil, true)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = postForm(t, admin, playURL+"/lock", nil, true)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = postForm(t, alice, predictURL, url.Values{"predicted_outcome": {"RUN_RIGHT"}}, true)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = postForm(t, admin, playURL+"/score", url.Values{"outcome": {"RUN_LEFT"}}, true)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	var rows []leaderboard.Row
	getJSON(t, alice, srv.URL+"/api/games/"+slug+"/leaderboard", &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, "Alice", rows[0].UserName)
	assert.Equal(t, 420, rows[0].TotalPoints)

	resp = postForm(t, admin, playURL+"/correct", url.Values{"outcome": {"RUN_RIGHT"}}, true)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	getJSON(t, alice, srv.URL+"/api/games/"+slug+"/leaderboard", &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, 280, rows[0].TotalPoints)
}

func TestAnonymousRedirectsToLogin(t *testing.T) {
	srv := setupServer(t)

	resp, err := newClient(t).Get(srv.URL + "/games")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "/login", resp.Request.URL.Path)
}

func TestUnknownGame(t *testing.T) {
	srv := setupServer(t)
	alice := login(t, srv, "Alice", "player")

	resp, err := alice.Get(srv.URL + "/api/games/no-such-game/leaderboard")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
