package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventRoundFinalized EventType = "round-finalized"
	EventRatingUpdated  EventType = "rating-updated"
	EventTierPromotion  EventType = "tier-promotion"
)

// RoundFinalized is the payload published on EventRoundFinalized.
type RoundFinalized struct {
	RoundID  string `msgpack:"round_id"`
	ArcherID string `msgpack:"archer_id"`
}

// RatingUpdate is the payload published on EventRatingUpdated.
type RatingUpdate struct {
	ArcherID string `msgpack:"archer_id"`
	Rating   int    `msgpack:"rating"`
	Tier     int    `msgpack:"tier"`
}
