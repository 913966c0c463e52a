package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		RoundsFinalized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bullseye_rounds_finalized_total",
			Help: "The total number of rounds finalized.",
		}),
		RoundsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bullseye_rounds_cancelled_total",
			Help: "The total number of rounds cancelled.",
		}),
		ScoresRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bullseye_scores_rejected_total",
			Help: "The total number of malformed arrow symbols rejected.",
		}),
		RatingsRecomputed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bullseye_ratings_recomputed_total",
			Help: "The total number of masters rating recomputations.",
		}),
		RoundsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bullseye_rounds_processed_total",
			Help: "The total number of rounds moved through the processing pipeline.",
		}),
		NotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bullseye_notifications_sent_total",
			Help: "The total number of notifications successfully sent.",
		}),
		NotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bullseye_notifications_failed_total",
			Help: "The total number of notifications that failed to send.",
		}),
		RankingQueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bullseye_ranking_query_duration_seconds",
			Help:    "The duration of individual leaderboard queries.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bullseye_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.RoundsFinalized,
		s.RoundsCancelled,
		s.ScoresRejected,
		s.RatingsRecomputed,
		s.RoundsProcessed,
		s.NotifSent,
		s.NotifFailed,
		s.RankingQueryDuration,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncRoundsFinalized() {
	s.RoundsFinalized.Inc()
}

func (s *Service) IncRoundsCancelled() {
	s.RoundsCancelled.Inc()
}

func (s *Service) IncScoresRejected() {
	s.ScoresRejected.Inc()
}

func (s *Service) IncRatingsRecomputed() {
	s.RatingsRecomputed.Inc()
}

func (s *Service) IncRoundsProcessed() {
	s.RoundsProcessed.Inc()
}

func (s *Service) IncNotifSent() {
	s.NotifSent.Inc()
}

func (s *Service) IncNotifFailed() {
	s.NotifFailed.Inc()
}

func (s *Service) ObserveRankingQueryDuration(seconds float64) {
	s.RankingQueryDuration.Observe(seconds)
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
