package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	RoundsFinalized      prometheus.Counter
	RoundsCancelled      prometheus.Counter
	ScoresRejected       prometheus.Counter
	RatingsRecomputed    prometheus.Counter
	RoundsProcessed      prometheus.Counter
	NotifSent            prometheus.Counter
	NotifFailed          prometheus.Counter
	RankingQueryDuration prometheus.Histogram
	StartupTimeSeconds   prometheus.Gauge
}
