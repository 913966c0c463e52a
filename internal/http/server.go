package http

import (
	"net/http"

	"github.com/sejersbol/bullseye/internal/config"
	"github.com/sejersbol/bullseye/internal/handicap"
	"github.com/sejersbol/bullseye/internal/leaderboard"
	"github.com/sejersbol/bullseye/internal/metrics"
	"github.com/sejersbol/bullseye/internal/notifier"
	"github.com/sejersbol/bullseye/internal/processor"
	"github.com/sejersbol/bullseye/internal/pubsub"
	"github.com/sejersbol/bullseye/internal/rating"
	"github.com/sejersbol/bullseye/internal/rounds"
)

func NewServer(store rounds.RoundStore, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, leaderboards *leaderboard.Service, engine *rating.Engine, classifier *rating.Classifier, table *handicap.Table, notifier notifier.Notifier, processor *processor.Processor, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Leaderboards:   leaderboards,
		Engine:         engine,
		Classifier:     classifier,
		Handicap:       table,
		Notifier:       notifier,
		Processor:      processor,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/clear", Chain(s.ClearStoreHandler(), paramsMiddleware))
	s.Router.Handle("/archers", Chain(s.ListArchersHandler(), paramsMiddleware))
	s.Router.Handle("/rounds", Chain(s.ListRoundsHandler(), paramsMiddleware))
	s.Router.Handle("/rounds/start", Chain(s.StartRoundHandler(), paramsMiddleware))
	s.Router.Handle("/rounds/record-end", Chain(s.RecordEndHandler(), paramsMiddleware))
	s.Router.Handle("/rounds/finalize", Chain(s.FinalizeRoundHandler(), paramsMiddleware))
	s.Router.Handle("/rounds/cancel", Chain(s.CancelRoundHandler(), paramsMiddleware))
	s.Router.Handle("/leaderboard/masters", Chain(s.MastersLeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/leaderboard/daily", Chain(s.DailyLeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/leaderboard/score", Chain(s.ScoreLeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/leaderboard/best-score", Chain(s.BestScoreLeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/leaderboard/practice-volume", Chain(s.PracticeVolumeLeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/leaderboard/team-weekly", Chain(s.TeamWeeklyLeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/tiers", Chain(s.TiersHandler(), paramsMiddleware))
	s.Router.Handle("/handicaps", Chain(s.HandicapsHandler(), paramsMiddleware))
	s.Router.Handle("/bands", Chain(s.BandsHandler(), paramsMiddleware))
	s.Router.Handle("/process", Chain(s.ProcessRoundsHandler(), paramsMiddleware))
	s.Router.Handle("/pubsub/push", Chain(s.PubSubPushHandler(), paramsMiddleware))
	s.Router.Handle("/slack/command/daily-leaderboard", Chain(s.DailyLeaderboardCommandHandler(), paramsMiddleware))
	s.Router.Handle("/notify/daily-leaderboard", Chain(s.DailyLeaderboardNotifyHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
