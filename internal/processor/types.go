package processor

import (
	"github.com/sejersbol/bullseye/internal/metrics"
	"github.com/sejersbol/bullseye/internal/pubsub"
	"github.com/sejersbol/bullseye/internal/rating"
)

// Processor handles the business logic of processing finalized rounds.
type Processor struct {
	store    Store
	pubsub   pubsub.PubSubClient
	notifier Notifier
	metrics  metrics.Metrics
	engine   *rating.Engine
}
