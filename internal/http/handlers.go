package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/sejersbol/bullseye/internal/archery"
	"github.com/sejersbol/bullseye/internal/leaderboard"
	"github.com/sejersbol/bullseye/internal/pubsub"
	"github.com/sejersbol/bullseye/internal/rating"
	"github.com/sejersbol/bullseye/internal/rounds"
	"github.com/slack-go/slack"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Received request to clear entire store")
		s.Store.Clear()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Store cleared!")
		log.Info("Store cleared successfully")
	}
}

// archerWithBand decorates an archer with the recent-form band computed
// from their completed rounds. The band is absent for archers with no
// qualifying rounds in the window.
type archerWithBand struct {
	archery.Archer
	Band rating.Band `json:"band,omitempty"`
}

func (s *Server) ListArchersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		archers, err := s.Store.GetAllArchers()
		if err != nil {
			http.Error(w, "Failed to get archers", http.StatusInternalServerError)
			log.Error("Failed to get archers from store", "error", err)
			return
		}

		now := time.Now()
		out := make([]archerWithBand, 0, len(archers))
		for _, archer := range archers {
			history, err := s.Store.GetCompletedRounds(rounds.RoundFilter{ArcherID: archer.ID})
			if err != nil {
				http.Error(w, "Failed to get rounds", http.StatusInternalServerError)
				log.Error("Failed to get rounds for archer", "error", err, "archerID", archer.ID)
				return
			}
			entry := archerWithBand{Archer: archer}
			if band, ok := s.Classifier.Classify(history, now); ok {
				entry.Band = band
			}
			out = append(out, entry)
		}
		writeJSON(w, out)
	}
}

func (s *Server) ListRoundsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		archerID := r.URL.Query().Get("archerID")
		if archerID != "" {
			list, err := s.Store.GetRoundsByArcher(archerID)
			if err != nil {
				http.Error(w, "Failed to get rounds", http.StatusInternalServerError)
				log.Error("Failed to get rounds from store", "error", err, "archerID", archerID)
				return
			}
			writeJSON(w, list)
			return
		}

		list, err := s.Store.GetCompletedRounds(roundFilterFromQuery(r))
		if err != nil {
			http.Error(w, "Failed to get rounds", http.StatusInternalServerError)
			log.Error("Failed to get rounds from store", "error", err)
			return
		}
		writeJSON(w, list)
	}
}

// startRoundRequest is the JSON body for /rounds/start.
type startRoundRequest struct {
	ArcherID        string `json:"archer_id"`
	ShotAt          int64  `json:"shot_at,omitempty"`
	DistanceM       int    `json:"distance_m"`
	DistanceLabel   string `json:"distance_label,omitempty"`
	ArrowsPerEnd    int    `json:"arrows_per_end"`
	TotalEnds       int    `json:"total_ends"`
	RoundType       string `json:"round_type"`
	CompetitionName string `json:"competition_name,omitempty"`
}

func (s *Server) StartRoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req startRoundRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.ArcherID == "" || req.ArrowsPerEnd <= 0 || req.TotalEnds <= 0 {
			http.Error(w, "archer_id, arrows_per_end and total_ends are required", http.StatusBadRequest)
			return
		}
		if !archery.RoundType(req.RoundType).Known() {
			http.Error(w, "Unknown round_type, want personal, club or competition", http.StatusBadRequest)
			return
		}

		if _, err := s.Store.GetArcher(req.ArcherID); err != nil {
			writeDomainError(w, err, "Failed to resolve archer")
			return
		}

		shotAt := time.Now()
		if req.ShotAt > 0 {
			shotAt = time.Unix(req.ShotAt, 0)
		}
		round := archery.NewRound(uuid.NewString(), req.ArcherID, shotAt, req.DistanceM, req.ArrowsPerEnd, req.TotalEnds, archery.RoundType(req.RoundType))
		round.DistanceLabel = req.DistanceLabel
		round.CompetitionName = req.CompetitionName

		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would create round", "roundID", round.ID, "archerID", round.ArcherID)
		} else if err := s.Store.CreateRound(round); err != nil {
			http.Error(w, "Failed to create round", http.StatusInternalServerError)
			log.Error("Failed to create round", "error", err, "archerID", req.ArcherID)
			return
		}

		log.Info("Round started", "roundID", round.ID, "archerID", round.ArcherID, "distance_m", round.DistanceM)
		writeJSON(w, round)
	}
}

// recordEndRequest is the JSON body for /rounds/record-end.
type recordEndRequest struct {
	RoundID   string              `json:"round_id"`
	EndIndex  int                 `json:"end_index"`
	Symbols   []string            `json:"symbols"`
	Positions []*archery.Position `json:"positions,omitempty"`
}

func (s *Server) RecordEndHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recordEndRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		round, err := s.Store.GetRound(req.RoundID)
		if err != nil {
			writeDomainError(w, err, "Failed to get round")
			return
		}

		if err := round.RecordEnd(req.EndIndex, req.Symbols, req.Positions); err != nil {
			if errors.Is(err, archery.ErrMalformedScore) {
				s.Metrics.IncScoresRejected()
			}
			writeDomainError(w, err, "Failed to record end")
			return
		}

		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would record end", "roundID", round.ID, "endIndex", req.EndIndex)
			writeJSON(w, round)
			return
		}

		for _, end := range round.Ends {
			if end.EndIndex != req.EndIndex {
				continue
			}
			if err := s.Store.RecordEnd(round.ID, end); err != nil {
				writeDomainError(w, err, "Failed to persist end")
				return
			}
		}
		log.Info("End recorded", "roundID", round.ID, "endIndex", req.EndIndex)
		writeJSON(w, round)
	}
}

func (s *Server) FinalizeRoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roundID := roundIDFromRequest(r)
		if roundID == "" {
			http.Error(w, "round_id is required", http.StatusBadRequest)
			return
		}

		if isDryRunFromContext(r) {
			round, err := s.Store.GetRound(roundID)
			if err != nil {
				writeDomainError(w, err, "Failed to get round")
				return
			}
			if err := round.Finalize(time.Now()); err != nil {
				writeDomainError(w, err, "Failed to finalize round")
				return
			}
			log.Info("[Dry Run] Would finalize round", "roundID", roundID, "total_score", round.TotalScore)
			writeJSON(w, round)
			return
		}

		round, err := s.Store.FinalizeRound(roundID, time.Now())
		if err != nil {
			writeDomainError(w, err, "Failed to finalize round")
			return
		}
		s.Metrics.IncRoundsFinalized()
		s.pubsub.SendMessage(pubsub.EventRoundFinalized, pubsub.RoundFinalized{
			RoundID:  round.ID,
			ArcherID: round.ArcherID,
		})

		log.Info("Round finalized", "roundID", round.ID, "total_score", round.TotalScore, "total_x", round.TotalX)
		writeJSON(w, round)
	}
}

func (s *Server) CancelRoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roundID := roundIDFromRequest(r)
		if roundID == "" {
			http.Error(w, "round_id is required", http.StatusBadRequest)
			return
		}

		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would cancel round", "roundID", roundID)
			w.Write([]byte("OK"))
			return
		}

		if err := s.Store.CancelRound(roundID); err != nil {
			writeDomainError(w, err, "Failed to cancel round")
			return
		}
		s.Metrics.IncRoundsCancelled()
		log.Info("Round cancelled", "roundID", roundID)
		w.Write([]byte("OK"))
	}
}

func (s *Server) MastersLeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := limitFromQuery(r, leaderboard.DefaultMastersLimit)
		s.serveView(w, func() (leaderboard.View, error) {
			return s.Leaderboards.Masters(limit, callerFromQuery(r))
		})
	}
}

func (s *Server) DailyLeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := time.Now()
		if dateStr := r.URL.Query().Get("date"); dateStr != "" {
			parsed, err := time.Parse("2006-01-02", dateStr)
			if err != nil {
				http.Error(w, "Invalid date, want YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			date = parsed
		}
		limit := limitFromQuery(r, leaderboard.DefaultDailyLimit)
		s.serveView(w, func() (leaderboard.View, error) {
			return s.Leaderboards.Daily(date, limit, callerFromQuery(r))
		})
	}
}

func (s *Server) ScoreLeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := limitFromQuery(r, leaderboard.DefaultScoreLimit)
		s.serveView(w, func() (leaderboard.View, error) {
			return s.Leaderboards.Score(limit, callerFromQuery(r))
		})
	}
}

func (s *Server) BestScoreLeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		group := leaderboard.TypeGroup(r.URL.Query().Get("group"))
		if group == "" {
			group = leaderboard.GroupAll
		}
		distanceM := 0
		if distStr := r.URL.Query().Get("distance"); distStr != "" {
			parsed, err := strconv.Atoi(distStr)
			if err != nil {
				http.Error(w, "Invalid distance", http.StatusBadRequest)
				return
			}
			distanceM = parsed
		}
		limit := limitFromQuery(r, leaderboard.DefaultBestLimit)
		s.serveView(w, func() (leaderboard.View, error) {
			return s.Leaderboards.BestScore(group, distanceM, limit, callerFromQuery(r))
		})
	}
}

func (s *Server) PracticeVolumeLeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		period := leaderboard.Period(r.URL.Query().Get("period"))
		if period == "" {
			period = leaderboard.PeriodWeek
		}
		limit := limitFromQuery(r, leaderboard.DefaultVolumeLimit)
		s.serveView(w, func() (leaderboard.View, error) {
			return s.Leaderboards.PracticeVolume(period, limit, callerFromQuery(r))
		})
	}
}

func (s *Server) TeamWeeklyLeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teamID := r.URL.Query().Get("teamID")
		if teamID == "" {
			http.Error(w, "teamID is required", http.StatusBadRequest)
			return
		}
		limit := limitFromQuery(r, leaderboard.DefaultTeamLimit)
		s.serveView(w, func() (leaderboard.View, error) {
			return s.Leaderboards.TeamWeekly(teamID, limit, callerFromQuery(r))
		})
	}
}

func (s *Server) TiersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.Engine.TierThresholds())
	}
}

func (s *Server) HandicapsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.Handicap.Factors())
	}
}

func (s *Server) BandsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.Classifier.Bands())
	}
}

func (s *Server) ProcessRoundsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Starting round processing...")
		isDryRun := isDryRunFromContext(r)

		s.Processor.ProcessRounds(isDryRun)

		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Round processing completed.")
		log.Info("Round processing finished.")
	}
}

func (s *Server) PubSubPushHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received pubsub push message", "body", string(bodyBytes))
		// Define a small struct to decode the incoming JSON's `data` field
		var pubsubMsg struct {
			Subscription string `json:"subscription"`
			Message      struct {
				Data string `json:"data"` // base64-encoded message payload
			} `json:"message"`
		}

		// Parse the outer JSON to get `data`
		if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		// Decode base64 to raw MessagePack bytes
		rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}
		isDryRun := isDryRunFromContext(r)
		event := pubsub.RoundFinalized{}
		s.pubsub.ProcessMessage(rawData, &event)
		log.Info("Round finalized event received", "roundID", event.RoundID, "archerID", event.ArcherID)
		s.Processor.ProcessRounds(isDryRun)
		w.Write([]byte("OK"))
	}
}

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg slack.Message) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

// DailyLeaderboardCommandHandler returns a handler for the /daily-leaderboard Slack command.
func (s *Server) DailyLeaderboardCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := time.Now()
		view, err := s.Leaderboards.Daily(date, leaderboard.DefaultDailyLimit, "")
		if err != nil {
			http.Error(w, "Failed to build leaderboard", http.StatusInternalServerError)
			log.Error("Failed to build daily leaderboard", "error", err)
			return
		}

		msg, err := s.Notifier.FormatDailyLeaderboardResponse(view, date)
		if err != nil {
			http.Error(w, "Failed to format leaderboard", http.StatusInternalServerError)
			log.Error("Failed to format daily leaderboard", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}

		respondWithSlackMsg(w, slackMsg)
	}
}

// DailyLeaderboardNotifyHandler posts the daily digest to the configured
// Slack channel. Hit by the end-of-day scheduler; accepts an optional date
// for replays.
func (s *Server) DailyLeaderboardNotifyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := time.Now()
		if dateStr := r.URL.Query().Get("date"); dateStr != "" {
			parsed, err := time.Parse("2006-01-02", dateStr)
			if err != nil {
				http.Error(w, "Invalid date, want YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			date = parsed
		}

		view, err := s.Leaderboards.Daily(date, leaderboard.DefaultDailyLimit, "")
		if err != nil {
			http.Error(w, "Failed to build leaderboard", http.StatusInternalServerError)
			log.Error("Failed to build daily leaderboard", "error", err)
			return
		}

		if err := s.Notifier.SendDailyLeaderboard(view, date, isDryRunFromContext(r)); err != nil {
			http.Error(w, "Failed to send leaderboard", http.StatusInternalServerError)
			log.Error("Failed to send daily leaderboard", "error", err)
			return
		}
		w.Write([]byte("OK"))
	}
}

// serveView runs one leaderboard query, times it and writes the result.
func (s *Server) serveView(w http.ResponseWriter, query func() (leaderboard.View, error)) {
	start := time.Now()
	view, err := query()
	s.Metrics.ObserveRankingQueryDuration(time.Since(start).Seconds())
	if err != nil {
		http.Error(w, "Failed to build leaderboard", http.StatusInternalServerError)
		log.Error("Failed to build leaderboard", "error", err)
		return
	}
	writeJSON(w, view)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

// writeDomainError maps domain sentinel errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error, msg string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, archery.ErrRoundNotFound), errors.Is(err, archery.ErrArcherNotFound):
		status = http.StatusNotFound
	case errors.Is(err, archery.ErrRoundFinalized):
		status = http.StatusConflict
	case errors.Is(err, archery.ErrMalformedScore), errors.Is(err, archery.ErrIncompleteRound):
		status = http.StatusBadRequest
	}
	log.Error(msg, "error", err)
	http.Error(w, err.Error(), status)
}

func roundIDFromRequest(r *http.Request) string {
	if id := r.URL.Query().Get("roundID"); id != "" {
		return id
	}
	var req struct {
		RoundID string `json:"round_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
		return req.RoundID
	}
	return ""
}

func limitFromQuery(r *http.Request, fallback int) int {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		return fallback
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		log.Warn("Invalid 'limit' parameter provided. Using default.", "limit_param", limitStr)
		return fallback
	}
	return limit
}

func callerFromQuery(r *http.Request) string {
	return r.URL.Query().Get("archerID")
}

func roundFilterFromQuery(r *http.Request) rounds.RoundFilter {
	filter := rounds.RoundFilter{}
	if distStr := r.URL.Query().Get("distance"); distStr != "" {
		if parsed, err := strconv.Atoi(distStr); err == nil {
			filter.DistanceM = parsed
		}
	}
	if typeStr := r.URL.Query().Get("type"); typeStr != "" {
		filter.Types = []archery.RoundType{archery.RoundType(typeStr)}
	}
	return filter
}
