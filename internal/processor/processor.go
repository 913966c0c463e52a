package processor

import (
	"github.com/charmbracelet/log"
	"github.com/sejersbol/bullseye/internal/archery"
	"github.com/sejersbol/bullseye/internal/metrics"
	"github.com/sejersbol/bullseye/internal/pubsub"
	"github.com/sejersbol/bullseye/internal/rating"
	"github.com/sejersbol/bullseye/internal/rounds"
)

// New creates a new Processor.
func New(store Store, notifier Notifier, metrics metrics.Metrics, pubsub pubsub.PubSubClient, engine *rating.Engine) *Processor {
	return &Processor{
		store:    store,
		pubsub:   pubsub,
		notifier: notifier,
		metrics:  metrics,
		engine:   engine,
	}
}

// ProcessRounds fetches rounds that need processing and advances them through the state machine.
func (p *Processor) ProcessRounds(dryRun bool) {
	log.Info("Starting round processing...")
	pending, err := p.store.GetRoundsForProcessing()
	if err != nil {
		log.Error("Failed to get rounds for processing", "error", err)
		return
	}

	if len(pending) == 0 {
		log.Info("No rounds to process.")
		return
	}

	log.Info("Found rounds to process", "count", len(pending))
	for _, round := range pending {
		p.processRound(round, dryRun)
		p.metrics.IncRoundsProcessed()
	}
	log.Info("Round processing finished.")
}

func (p *Processor) processRound(round *archery.Round, dryRun bool) {
	log.Info("Processing round", "roundID", round.ID, "initial_status", round.ProcessingStatus, "round_status", round.Status)

	// Carried across states within one pass. A round picked up mid-pipeline
	// (after a crash) skips the announcements; its rating is already persisted.
	var archer *archery.Archer
	var previousTier, newTier int
	var promoted, personalBest bool

	for {
		currentState := round.ProcessingStatus
		log.Debug("Evaluating round state", "roundID", round.ID, "status", currentState)

		switch currentState {
		case archery.ProcessingNew:
			// Cancelled rounds never feed the rating. Retire them immediately.
			if !round.CountsForRanking() {
				log.Info("Round does not count for ranking. Setting round to completed.", "roundID", round.ID)
				p.updateStatus(round, archery.ProcessingCompleted, dryRun)
				break
			}

			var err error
			archer, err = p.store.GetArcher(round.ArcherID)
			if err != nil {
				log.Error("Failed to get archer for round", "error", err, "roundID", round.ID, "archerID", round.ArcherID)
				return
			}

			history, err := p.store.GetCompletedRounds(rounds.RoundFilter{ArcherID: round.ArcherID})
			if err != nil {
				log.Error("Failed to get round history", "error", err, "roundID", round.ID, "archerID", round.ArcherID)
				return
			}

			newRating := p.engine.ComputeRating(history, archer.Gender)
			tier, ranked := p.engine.TierFor(newRating)

			if archer.RankTier != nil {
				previousTier = *archer.RankTier
			}
			newTier = tier
			// Tier 1 is the top, so a promotion moves the number down.
			promoted = ranked && (previousTier == 0 || tier < previousTier)
			personalBest = isPersonalBest(round, history)

			var tierPtr *int
			if ranked {
				tierPtr = &tier
			}
			if dryRun {
				log.Info("[Dry Run] Would update archer rating", "archerID", archer.ID, "rating", newRating, "tier", tier)
			} else {
				if err := p.store.UpdateArcherRating(archer.ID, newRating, tierPtr); err != nil {
					log.Error("Failed to update archer rating", "error", err, "archerID", archer.ID)
					return
				}
			}
			archer.Rating = newRating
			archer.RankTier = tierPtr
			p.metrics.IncRatingsRecomputed()

			if !dryRun {
				p.pubsub.SendMessage(pubsub.EventRatingUpdated, pubsub.RatingUpdate{
					ArcherID: archer.ID,
					Rating:   newRating,
					Tier:     tier,
				})
			}

			p.updateStatus(round, archery.ProcessingRated, dryRun)

		case archery.ProcessingRated:
			if archer == nil {
				// Resumed mid-pipeline. The rating is persisted; there is
				// nothing left to announce.
				log.Debug("Round resumed after rating. Skipping notifications.", "roundID", round.ID)
				p.updateStatus(round, archery.ProcessingNotified, dryRun)
				break
			}

			if promoted {
				log.Info("Archer promoted. Sending tier promotion notification.", "archerID", archer.ID, "from", previousTier, "to", newTier)
				p.notifier.SendTierPromotion(archer, previousTier, newTier, dryRun)
				if !dryRun {
					p.pubsub.SendMessage(pubsub.EventTierPromotion, pubsub.RatingUpdate{
						ArcherID: archer.ID,
						Rating:   archer.Rating,
						Tier:     newTier,
					})
				}
			}
			if personalBest {
				log.Info("New personal best. Sending notification.", "archerID", archer.ID, "roundID", round.ID, "score", round.TotalScore)
				p.notifier.SendPersonalBest(archer, round, dryRun)
			}

			p.updateStatus(round, archery.ProcessingNotified, dryRun)

		case archery.ProcessingNotified:
			log.Debug("Round notified. Marking round as complete.", "roundID", round.ID)
			p.updateStatus(round, archery.ProcessingCompleted, dryRun)

		case archery.ProcessingCompleted:
			log.Debug("Round is complete. No further processing needed.", "roundID", round.ID)
			return // End of the line for this round

		default:
			log.Warn("Unknown processing status", "status", currentState, "roundID", round.ID)
			return // Exit if status is unknown
		}

		// If the status hasn't changed, we're done with this round for now.
		if round.ProcessingStatus == currentState {
			log.Debug("Round state did not change. Finished processing for now.", "roundID", round.ID, "status", currentState)
			break
		}
	}
	log.Info("Finished processing round", "roundID", round.ID, "final_status", round.ProcessingStatus)
}

// isPersonalBest reports whether round beats every earlier completed round the
// archer shot at the same distance. The history includes the round itself.
func isPersonalBest(round *archery.Round, history []*archery.Round) bool {
	for _, other := range history {
		if other.ID == round.ID || other.DistanceM != round.DistanceM {
			continue
		}
		if other.TotalScore >= round.TotalScore {
			return false
		}
	}
	return true
}

func (p *Processor) updateStatus(round *archery.Round, newStatus archery.ProcessingStatus, dryRun bool) {
	if dryRun {
		log.Info("[Dry Run] Would update round status", "roundID", round.ID, "from", round.ProcessingStatus, "to", newStatus)
		round.ProcessingStatus = newStatus // Update in-memory for the loop
		return
	}

	err := p.store.UpdateProcessingStatus(round.ID, newStatus)
	if err != nil {
		log.Error("Failed to update processing status", "error", err, "roundID", round.ID)
	} else {
		log.Debug("Successfully updated status", "roundID", round.ID, "from", round.ProcessingStatus, "to", newStatus)
		round.ProcessingStatus = newStatus // Keep the in-memory object in sync
	}
}
