package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sejersbol/bullseye/internal/archery"
	"github.com/sejersbol/bullseye/internal/config"
	"github.com/sejersbol/bullseye/internal/handicap"
	"github.com/sejersbol/bullseye/internal/leaderboard"
	"github.com/sejersbol/bullseye/internal/metrics"
	"github.com/sejersbol/bullseye/internal/notifier"
	"github.com/sejersbol/bullseye/internal/processor"
	"github.com/sejersbol/bullseye/internal/pubsub"
	"github.com/sejersbol/bullseye/internal/rating"
	"github.com/sejersbol/bullseye/internal/rounds"
	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

// setupTestServer initializes a new server over the in-memory store and mock clients.
func setupTestServer(t *testing.T, notif notifier.Notifier) (*Server, *pubsub.MockPubSubClient) {
	t.Helper()

	store := rounds.NewMemory()
	table := handicap.Default()
	engine := rating.NewEngine(table)
	classifier := rating.NewClassifier()
	leaderboards := leaderboard.NewService(store, table)
	cfg := config.Config{}

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)
	ps := pubsub.NewMock()
	proc := processor.New(store, notif, metricsSvc, ps, engine)

	server := NewServer(store, metricsSvc, metricsHandler, cfg, leaderboards, engine, classifier, table, notif, proc, ps)
	return server, ps
}

func addArcher(t *testing.T, server *Server, id, name string, gender archery.Gender) {
	t.Helper()
	require.NoError(t, server.Store.UpsertArcher(archery.Archer{ID: id, Name: name, Gender: gender}))
}

// startRound drives the full HTTP lifecycle up to an in-progress round with
// every end recorded.
func startRound(t *testing.T, server *Server, archerID string, ends [][]string) string {
	t.Helper()

	rr := postJSON(t, server, "/rounds/start", map[string]any{
		"archer_id":      archerID,
		"shot_at":        time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC).Unix(),
		"distance_m":     18,
		"distance_label": "18m",
		"arrows_per_end": len(ends[0]),
		"total_ends":     len(ends),
		"round_type":     "personal",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var round archery.Round
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &round))

	for i, symbols := range ends {
		rr := postJSON(t, server, "/rounds/record-end", map[string]any{
			"round_id":  round.ID,
			"end_index": i + 1,
			"symbols":   symbols,
		})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	}
	return round.ID
}

func postJSON(t *testing.T, server *Server, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, err := http.NewRequest("POST", path, bytes.NewReader(body))
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	return rr
}

func get(t *testing.T, server *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest("GET", path, nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	return rr
}

func TestHealthCheckHandler(t *testing.T) {
	server, _ := setupTestServer(t, notifier.NewMock())

	rr := get(t, server, "/health")
	assert.Equal(t, http.StatusOK, rr.Code, "handler returned wrong status code")
	assert.Equal(t, "OK!", rr.Body.String(), "handler returned unexpected body")
}

func TestListArchersHandler(t *testing.T) {
	server, _ := setupTestServer(t, notifier.NewMock())
	addArcher(t, server, "a1", "Robin", archery.GenderMale)
	addArcher(t, server, "a2", "Marian", archery.GenderFemale)

	rr := get(t, server, "/archers")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Robin")
	assert.Contains(t, rr.Body.String(), "a2")
}

func TestListArchersIncludesBand(t *testing.T) {
	server, _ := setupTestServer(t, notifier.NewMock())
	addArcher(t, server, "a1", "Robin", archery.GenderMale)
	addArcher(t, server, "a2", "Marian", archery.GenderFemale)

	// A fresh round averaging 8.83 per arrow, inside the classifier window.
	rr := postJSON(t, server, "/rounds/start", map[string]any{
		"archer_id":      "a1",
		"distance_m":     18,
		"arrows_per_end": 3,
		"total_ends":     2,
		"round_type":     "personal",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	var round archery.Round
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &round))
	for i, symbols := range [][]string{{"X", "10", "9"}, {"9", "8", "7"}} {
		rr = postJSON(t, server, "/rounds/record-end", map[string]any{
			"round_id":  round.ID,
			"end_index": i + 1,
			"symbols":   symbols,
		})
		require.Equal(t, http.StatusOK, rr.Code)
	}
	rr = postJSON(t, server, fmt.Sprintf("/rounds/finalize?roundID=%s", round.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = get(t, server, "/archers")
	require.Equal(t, http.StatusOK, rr.Code)

	var archers []struct {
		ID   string `json:"id"`
		Band string `json:"band"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &archers))
	bands := make(map[string]string, len(archers))
	for _, archer := range archers {
		bands[archer.ID] = archer.Band
	}
	assert.Equal(t, "A+", bands["a1"])
	assert.Empty(t, bands["a2"], "no qualifying rounds means no band")
}

func TestDailyLeaderboardNotifyHandler(t *testing.T) {
	notif := notifier.NewMock()
	server, _ := setupTestServer(t, notif)
	addArcher(t, server, "a1", "Robin", archery.GenderMale)

	roundID := startRound(t, server, "a1", [][]string{{"X", "10", "9"}, {"9", "8", "7"}})
	rr := postJSON(t, server, fmt.Sprintf("/rounds/finalize?roundID=%s", roundID), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = get(t, server, "/notify/daily-leaderboard?date=2025-06-15")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	require.Len(t, notif.DailyCalls, 1, "the digest should be sent once")
	require.Len(t, notif.DailyCalls[0].Entries, 1)
	assert.Equal(t, "Robin", notif.DailyCalls[0].Entries[0].Name)

	t.Run("rejects an invalid date", func(t *testing.T) {
		rr := get(t, server, "/notify/daily-leaderboard?date=15-06-2025")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestRoundLifecycleHandlers(t *testing.T) {
	t.Run("start, record and finalize a round", func(t *testing.T) {
		server, ps := setupTestServer(t, notifier.NewMock())
		addArcher(t, server, "a1", "Robin", archery.GenderMale)

		roundID := startRound(t, server, "a1", [][]string{
			{"X", "10", "9"},
			{"9", "8", "7"},
		})

		rr := postJSON(t, server, fmt.Sprintf("/rounds/finalize?roundID=%s", roundID), nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var round archery.Round
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &round))
		assert.Equal(t, 53, round.TotalScore)
		assert.Equal(t, 1, round.TotalX)
		assert.Equal(t, 2, round.Total10)
		assert.Equal(t, archery.StatusCompleted, round.Status)

		require.Len(t, ps.SendMessageCalls, 1, "Finalization should be published")
		assert.Equal(t, string(pubsub.EventRoundFinalized), ps.SendMessageCalls[0].Topic)
	})

	t.Run("rejects a malformed score symbol", func(t *testing.T) {
		server, _ := setupTestServer(t, notifier.NewMock())
		addArcher(t, server, "a1", "Robin", archery.GenderMale)

		rr := postJSON(t, server, "/rounds/start", map[string]any{
			"archer_id":      "a1",
			"distance_m":     18,
			"arrows_per_end": 3,
			"total_ends":     1,
			"round_type":     "personal",
		})
		require.Equal(t, http.StatusOK, rr.Code)
		var round archery.Round
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &round))

		rr = postJSON(t, server, "/rounds/record-end", map[string]any{
			"round_id":  round.ID,
			"end_index": 1,
			"symbols":   []string{"X", "11", "9"},
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("finalizing an incomplete round fails", func(t *testing.T) {
		server, _ := setupTestServer(t, notifier.NewMock())
		addArcher(t, server, "a1", "Robin", archery.GenderMale)

		rr := postJSON(t, server, "/rounds/start", map[string]any{
			"archer_id":      "a1",
			"distance_m":     18,
			"arrows_per_end": 3,
			"total_ends":     2,
			"round_type":     "personal",
		})
		require.Equal(t, http.StatusOK, rr.Code)
		var round archery.Round
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &round))

		rr = postJSON(t, server, fmt.Sprintf("/rounds/finalize?roundID=%s", round.ID), nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("finalizing twice conflicts", func(t *testing.T) {
		server, _ := setupTestServer(t, notifier.NewMock())
		addArcher(t, server, "a1", "Robin", archery.GenderMale)

		roundID := startRound(t, server, "a1", [][]string{{"9", "9", "9"}})

		rr := postJSON(t, server, fmt.Sprintf("/rounds/finalize?roundID=%s", roundID), nil)
		require.Equal(t, http.StatusOK, rr.Code)

		rr = postJSON(t, server, fmt.Sprintf("/rounds/finalize?roundID=%s", roundID), nil)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("cancelling an unknown round is a 404", func(t *testing.T) {
		server, _ := setupTestServer(t, notifier.NewMock())

		rr := postJSON(t, server, "/rounds/cancel?roundID=nope", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("rejects an unknown round type", func(t *testing.T) {
		server, _ := setupTestServer(t, notifier.NewMock())
		addArcher(t, server, "a1", "Robin", archery.GenderMale)

		for _, roundType := range []string{"tournament", ""} {
			rr := postJSON(t, server, "/rounds/start", map[string]any{
				"archer_id":      "a1",
				"distance_m":     18,
				"arrows_per_end": 3,
				"total_ends":     1,
				"round_type":     roundType,
			})
			assert.Equal(t, http.StatusBadRequest, rr.Code, "round_type %q", roundType)
			assert.Contains(t, rr.Body.String(), "round_type")
		}

		list, err := server.Store.GetRoundsByArcher("a1")
		require.NoError(t, err)
		assert.Empty(t, list, "rejected rounds must not be stored")
	})
}

func TestLeaderboardHandlers(t *testing.T) {
	server, _ := setupTestServer(t, notifier.NewMock())
	addArcher(t, server, "a1", "Robin", archery.GenderMale)
	addArcher(t, server, "a2", "Marian", archery.GenderFemale)

	roundID := startRound(t, server, "a1", [][]string{{"X", "10", "9"}, {"9", "8", "7"}})
	rr := postJSON(t, server, fmt.Sprintf("/rounds/finalize?roundID=%s", roundID), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	t.Run("daily view ranks the day's rounds", func(t *testing.T) {
		rr := get(t, server, "/leaderboard/daily?date=2025-06-15&archerID=a1")
		require.Equal(t, http.StatusOK, rr.Code)

		var view leaderboard.View
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
		require.Len(t, view.Entries, 1)
		assert.Equal(t, "Robin", view.Entries[0].Name)
		require.NotNil(t, view.Mine)
		assert.Equal(t, 1, view.Mine.Rank)
	})

	t.Run("score view serves the raw best", func(t *testing.T) {
		rr := get(t, server, "/leaderboard/score")
		require.Equal(t, http.StatusOK, rr.Code)

		var view leaderboard.View
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
		require.Len(t, view.Entries, 1)
		assert.Equal(t, float64(53), view.Entries[0].Metric)
	})

	t.Run("unknown best-score group matches nothing", func(t *testing.T) {
		rr := get(t, server, "/leaderboard/best-score?group=tournament")
		require.Equal(t, http.StatusOK, rr.Code)

		var view leaderboard.View
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
		assert.Empty(t, view.Entries)
	})

	t.Run("rejects an invalid date", func(t *testing.T) {
		rr := get(t, server, "/leaderboard/daily?date=15-06-2025")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("team-weekly requires a team", func(t *testing.T) {
		rr := get(t, server, "/leaderboard/team-weekly")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestStaticTableHandlers(t *testing.T) {
	server, _ := setupTestServer(t, notifier.NewMock())

	rr := get(t, server, "/tiers")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "300")

	rr = get(t, server, "/handicaps")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "female")

	rr = get(t, server, "/bands")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "SA")
}

func TestProcessRoundsHandler(t *testing.T) {
	server, _ := setupTestServer(t, notifier.NewMock())
	addArcher(t, server, "a1", "Robin", archery.GenderMale)

	roundID := startRound(t, server, "a1", [][]string{{"X", "10", "9"}, {"9", "8", "7"}})
	rr := postJSON(t, server, fmt.Sprintf("/rounds/finalize?roundID=%s", roundID), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = get(t, server, "/process")
	assert.Equal(t, http.StatusOK, rr.Code)

	archer, err := server.Store.GetArcher("a1")
	require.NoError(t, err)
	assert.Greater(t, archer.Rating, 0, "Processing should cache the recomputed rating")
}

func TestPubSubPushHandler(t *testing.T) {
	server, _ := setupTestServer(t, notifier.NewMock())
	addArcher(t, server, "a1", "Robin", archery.GenderMale)

	roundID := startRound(t, server, "a1", [][]string{{"X", "10", "9"}, {"9", "8", "7"}})
	rr := postJSON(t, server, fmt.Sprintf("/rounds/finalize?roundID=%s", roundID), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	payload, err := msgpack.Marshal(pubsub.RoundFinalized{RoundID: roundID, ArcherID: "a1"})
	require.NoError(t, err)
	wrapper := map[string]any{
		"subscription": "projects/test/subscriptions/round-finalized",
		"message": map[string]any{
			"data": base64.StdEncoding.EncodeToString(payload),
		},
	}

	rr = postJSON(t, server, "/pubsub/push", wrapper)
	assert.Equal(t, http.StatusOK, rr.Code)

	archer, err := server.Store.GetArcher("a1")
	require.NoError(t, err)
	assert.Greater(t, archer.Rating, 0, "Push ingest should trigger processing")
}

func TestDailyLeaderboardCommandHandler(t *testing.T) {
	mockNotifier := notifier.NewMock()
	mockNotifier.FormatDailyLeaderboardResponseFunc = func(view leaderboard.View, date time.Time) (any, error) {
		return slackapi.Message{}, nil
	}
	server, _ := setupTestServer(t, mockNotifier)

	rr := postJSON(t, server, "/slack/command/daily-leaderboard", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}
