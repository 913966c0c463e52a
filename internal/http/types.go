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

type Server struct {
	Store          rounds.RoundStore
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Leaderboards   *leaderboard.Service
	Engine         *rating.Engine
	Classifier     *rating.Classifier
	Handicap       *handicap.Table
	Notifier       notifier.Notifier
	Processor      *processor.Processor
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}
