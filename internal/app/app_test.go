package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"subway_roulette_backend/internal/config"
	"subway_roulette_backend/internal/seed"
	"subway_roulette_backend/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

type client struct {
	t      *testing.T
	router http.Handler
	token  string
}

func (c *client) do(method, path string, body interface{}) (int, envelope) {
	c.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w.Code, env
}

func decode(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	db := testutil.NewDB(t)
	require.NoError(t, seed.SeedIfEmpty(db))

	cfg := &config.Config{
		Server: config.ServerConfig{Port: "0", Mode: "test"},
		JWT:    config.JWTConfig{Secret: "app-test-secret", ExpireTime: time.Hour},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Game: config.GameConfig{
			VerificationRadiusM: 100,
			TimeLimitMinutes:    180,
			ScorePerCompletion:  100,
			ExpirySweepSeconds:  60,
		},
	}
	return New(cfg, db, nil)
}

func register(t *testing.T, c *client, name string) (uint, string) {
	t.Helper()
	email := name + "@example.com"
	code, env := c.do(http.MethodPost, "/api/register", map[string]string{
		"name": name, "email": email, "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var user struct {
		ID uint `json:"id"`
	}
	decode(t, env, &user)

	code, env = c.do(http.MethodPost, "/api/login", map[string]string{"email": email, "password": "secret1"})
	require.Equal(t, http.StatusOK, code, env.Message)
	var login struct {
		Token string `json:"token"`
	}
	decode(t, env, &login)
	require.NotEmpty(t, login.Token)
	return user.ID, login.Token
}

func TestPublicRoutes(t *testing.T) {
	a := newTestApp(t)
	c := &client{t: t, router: a.Router}

	code, _ := c.do(http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, code)

	register(t, c, "rider")

	code, _ = c.do(http.MethodPost, "/api/register", map[string]string{
		"name": "again", "email": "rider@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = c.do(http.MethodPost, "/api/register", map[string]string{"name": "x", "email": "not-an-email", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := c.do(http.MethodPost, "/api/login", map[string]string{"email": "rider@example.com", "password": "wrong!"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, env.Message, env.Error)
	assert.NotEmpty(t, env.Error)

	code, _ = c.do(http.MethodGet, "/api/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestChallengeFlow(t *testing.T) {
	a := newTestApp(t)
	c := &client{t: t, router: a.Router}

	userID, token := register(t, c, "alice")
	otherID, _ := register(t, c, "bob")
	c.token = token

	code, env := c.do(http.MethodGet, "/api/lines", nil)
	require.Equal(t, http.StatusOK, code)
	var lines []struct {
		Name         string `json:"name"`
		StationCount int    `json:"stationCount"`
	}
	decode(t, env, &lines)
	require.Len(t, lines, 4)

	code, _ = c.do(http.MethodPost, "/api/challenges", map[string]interface{}{
		"userId": otherID, "lineName": "1호선", "stationCount": 1,
	})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = c.do(http.MethodPost, "/api/challenges", map[string]interface{}{
		"userId": userID, "lineName": "1호선", "stationCount": 1,
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var created struct {
		ChallengeID uint `json:"challengeId"`
		Stations    []struct {
			ID        uint    `json:"id"`
			Name      string  `json:"name"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"stations"`
		TimeLimitMs int64 `json:"timeLimitMs"`
	}
	decode(t, env, &created)
	require.Len(t, created.Stations, 1)
	assert.EqualValues(t, 3*60*60*1000, created.TimeLimitMs)
	station := created.Stations[0]

	code, _ = c.do(http.MethodPost, "/api/challenges", map[string]interface{}{
		"userId": userID, "lineName": "2호선",
	})
	assert.Equal(t, http.StatusConflict, code)

	verify := func(lat, lng float64) (int, envelope) {
		return c.do(http.MethodPost, "/api/visits", map[string]interface{}{
			"challengeId": created.ChallengeID,
			"userId":      userID,
			"stationId":   station.ID,
			"latitude":    lat,
			"longitude":   lng,
		})
	}

	code, env = verify(station.Latitude+0.01, station.Longitude)
	require.Equal(t, http.StatusBadRequest, code)
	var far struct {
		Distance    float64 `json:"distance"`
		MaxDistance float64 `json:"maxDistance"`
		StationName string  `json:"stationName"`
	}
	decode(t, env, &far)
	assert.Equal(t, "too far from "+station.Name, env.Error)
	assert.Greater(t, far.Distance, 1000.0)
	assert.Equal(t, 100.0, far.MaxDistance)
	assert.Equal(t, station.Name, far.StationName)

	code, env = verify(station.Latitude, station.Longitude)
	require.Equal(t, http.StatusOK, code, env.Message)
	var verified struct {
		Success         bool `json:"success"`
		IsAllCompleted  bool `json:"isAllCompleted"`
		NewAchievements []struct {
			Code string `json:"code"`
		} `json:"newAchievements"`
	}
	decode(t, env, &verified)
	assert.True(t, verified.Success)
	assert.True(t, verified.IsAllCompleted)
	assert.NotEmpty(t, verified.NewAchievements)

	code, env = verify(station.Latitude, station.Longitude)
	require.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, env.Error)
	var duplicate struct {
		VisitedAt *time.Time `json:"visitedAt"`
	}
	decode(t, env, &duplicate)
	assert.NotNil(t, duplicate.VisitedAt)

	code, env = c.do(http.MethodGet, fmt.Sprintf("/api/users/%d/stats", userID), nil)
	require.Equal(t, http.StatusOK, code)
	var stats struct {
		CompletedChallenges int     `json:"completedChallenges"`
		SuccessRate         float64 `json:"successRate"`
	}
	decode(t, env, &stats)
	assert.Equal(t, 1, stats.CompletedChallenges)
	assert.Equal(t, 100.0, stats.SuccessRate)

	code, _ = c.do(http.MethodGet, fmt.Sprintf("/api/users/%d/stats", otherID), nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = c.do(http.MethodGet, fmt.Sprintf("/api/users/%d/rank", userID), nil)
	require.Equal(t, http.StatusOK, code)
	var rank struct {
		ScoreRank       *int `json:"scoreRank"`
		SuccessRateRank *int `json:"successRateRank"`
	}
	decode(t, env, &rank)
	require.NotNil(t, rank.ScoreRank)
	assert.Equal(t, 1, *rank.ScoreRank)
	assert.Nil(t, rank.SuccessRateRank)

	// 统计没有新进展时重新评估不会再解锁
	code, env = c.do(http.MethodPost, fmt.Sprintf("/api/users/%d/achievements/sync", userID), nil)
	require.Equal(t, http.StatusOK, code)
	var resynced []struct {
		Code string `json:"code"`
	}
	decode(t, env, &resynced)
	assert.Empty(t, resynced)

	code, env = c.do(http.MethodGet, "/api/leaderboard", nil)
	require.Equal(t, http.StatusOK, code)
	var board []struct {
		Rank   int  `json:"rank"`
		UserID uint `json:"userId"`
	}
	decode(t, env, &board)
	require.Len(t, board, 1)
	assert.Equal(t, userID, board[0].UserID)

	code, _ = c.do(http.MethodGet, "/api/leaderboard?type=fastest", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = c.do(http.MethodGet, fmt.Sprintf("/api/users/%d/challenges?status=completed", userID), nil)
	require.Equal(t, http.StatusOK, code)
	var page struct {
		Total int64 `json:"total"`
	}
	decode(t, env, &page)
	assert.EqualValues(t, 1, page.Total)

	code, _ = c.do(http.MethodPost, "/api/challenges/9999/fail", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = c.do(http.MethodPost, fmt.Sprintf("/api/challenges/%d/cancel", created.ChallengeID), nil)
	assert.Equal(t, http.StatusConflict, code)
}
