package processor

import (
	"testing"

	"github.com/sejersbol/bullseye/internal/archery"
	"github.com/sejersbol/bullseye/internal/handicap"
	"github.com/sejersbol/bullseye/internal/metrics"
	"github.com/sejersbol/bullseye/internal/notifier"
	"github.com/sejersbol/bullseye/internal/pubsub"
	"github.com/sejersbol/bullseye/internal/rating"
	"github.com/sejersbol/bullseye/internal/rounds"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProcessor() (*Processor, *rounds.MockStore, *notifier.MockNotifier, *metrics.Mock, *pubsub.MockPubSubClient) {
	store := rounds.NewMock()
	notif := notifier.NewMock()
	metr := metrics.NewMock()
	ps := pubsub.NewMock()
	engine := rating.NewEngine(handicap.Default())
	return New(store, notif, metr, ps, engine), store, notif, metr, ps
}

func completedRound(id, archerID string, distanceM, totalScore int, roundType archery.RoundType) *archery.Round {
	return &archery.Round{
		ID:               id,
		ArcherID:         archerID,
		Status:           archery.StatusCompleted,
		ProcessingStatus: archery.ProcessingCompleted,
		DistanceM:        distanceM,
		Type:             roundType,
		TotalScore:       totalScore,
	}
}

func TestProcessor_ProcessRounds(t *testing.T) {
	t.Run("first rated round promotes the archer and announces a personal best", func(t *testing.T) {
		p, store, notif, metr, ps := newTestProcessor()

		round := completedRound("r1", "a1", 70, 300, archery.RoundTypeCompetition)
		round.ProcessingStatus = archery.ProcessingNew

		store.GetRoundsForProcessingFunc = func() ([]*archery.Round, error) {
			return []*archery.Round{round}, nil
		}
		store.GetArcherFunc = func(archerID string) (*archery.Archer, error) {
			return &archery.Archer{ID: "a1", Name: "Robin", Gender: archery.GenderMale}, nil
		}
		store.GetCompletedRoundsFunc = func(filter rounds.RoundFilter) ([]*archery.Round, error) {
			return []*archery.Round{round}, nil
		}

		p.ProcessRounds(false)

		require.Len(t, store.UpdateArcherRatingCalls, 1, "Rating should be persisted once")
		assert.Equal(t, "a1", store.UpdateArcherRatingCalls[0].ArcherID)
		assert.Equal(t, 900, store.UpdateArcherRatingCalls[0].Rating)
		require.NotNil(t, store.UpdateArcherRatingCalls[0].Tier)
		assert.Equal(t, 17, *store.UpdateArcherRatingCalls[0].Tier)

		require.Len(t, notif.TierPromotionCalls, 1, "A tier promotion should be announced")
		assert.Equal(t, 0, notif.TierPromotionCalls[0].PreviousTier)
		assert.Equal(t, 17, notif.TierPromotionCalls[0].NewTier)
		require.Len(t, notif.PersonalBestCalls, 1, "The only round at a distance is a personal best")

		require.Len(t, ps.SendMessageCalls, 2, "Rating update and tier promotion should be published")
		assert.Equal(t, string(pubsub.EventRatingUpdated), ps.SendMessageCalls[0].Topic)
		update, ok := ps.SendMessageCalls[0].Data.(pubsub.RatingUpdate)
		require.True(t, ok, "Data sent to pubsub should be a RatingUpdate")
		assert.Equal(t, 900, update.Rating)
		assert.Equal(t, string(pubsub.EventTierPromotion), ps.SendMessageCalls[1].Topic)

		require.Len(t, store.UpdateProcessingStatusCalls, 3, "Status should be updated three times")
		assert.Equal(t, archery.ProcessingRated, store.UpdateProcessingStatusCalls[0].Status)
		assert.Equal(t, archery.ProcessingNotified, store.UpdateProcessingStatusCalls[1].Status)
		assert.Equal(t, archery.ProcessingCompleted, store.UpdateProcessingStatusCalls[2].Status)

		assert.Equal(t, 1, metr.RatingsRecomputed())
		assert.Equal(t, 1, metr.RoundsProcessed())
	})

	t.Run("weaker round at a known distance announces nothing", func(t *testing.T) {
		p, store, notif, _, ps := newTestProcessor()

		best := completedRound("r1", "a1", 70, 300, archery.RoundTypeCompetition)
		round := completedRound("r2", "a1", 70, 200, archery.RoundTypeCompetition)
		round.ProcessingStatus = archery.ProcessingNew
		tier := 16

		store.GetRoundsForProcessingFunc = func() ([]*archery.Round, error) {
			return []*archery.Round{round}, nil
		}
		store.GetArcherFunc = func(archerID string) (*archery.Archer, error) {
			return &archery.Archer{ID: "a1", Name: "Robin", Gender: archery.GenderMale, Rating: 900, RankTier: &tier}, nil
		}
		store.GetCompletedRoundsFunc = func(filter rounds.RoundFilter) ([]*archery.Round, error) {
			return []*archery.Round{best, round}, nil
		}

		p.ProcessRounds(false)

		require.Len(t, store.UpdateArcherRatingCalls, 1)
		assert.Equal(t, 1500, store.UpdateArcherRatingCalls[0].Rating, "Rating accumulates over the full history")
		require.NotNil(t, store.UpdateArcherRatingCalls[0].Tier)
		assert.Equal(t, 16, *store.UpdateArcherRatingCalls[0].Tier)

		require.Len(t, notif.TierPromotionCalls, 0, "Same tier is not a promotion")
		require.Len(t, notif.PersonalBestCalls, 0, "A weaker score is not a personal best")
		require.Len(t, ps.SendMessageCalls, 1, "Only the rating update should be published")
		assert.Equal(t, string(pubsub.EventRatingUpdated), ps.SendMessageCalls[0].Topic)
	})

	t.Run("cancelled round retires without touching the rating", func(t *testing.T) {
		p, store, notif, _, ps := newTestProcessor()

		round := completedRound("r1", "a1", 70, 0, archery.RoundTypePersonal)
		round.Status = archery.StatusCancelled
		round.ProcessingStatus = archery.ProcessingNew

		store.GetRoundsForProcessingFunc = func() ([]*archery.Round, error) {
			return []*archery.Round{round}, nil
		}

		p.ProcessRounds(false)

		require.Len(t, store.UpdateArcherRatingCalls, 0, "Cancelled rounds never feed the rating")
		require.Len(t, notif.TierPromotionCalls, 0)
		require.Len(t, notif.PersonalBestCalls, 0)
		require.Len(t, ps.SendMessageCalls, 0)
		require.Len(t, store.UpdateProcessingStatusCalls, 1, "Status should jump straight to completed")
		assert.Equal(t, archery.ProcessingCompleted, store.UpdateProcessingStatusCalls[0].Status)
	})

	t.Run("dry run computes but persists and publishes nothing", func(t *testing.T) {
		p, store, notif, metr, ps := newTestProcessor()

		round := completedRound("r1", "a1", 70, 300, archery.RoundTypeCompetition)
		round.ProcessingStatus = archery.ProcessingNew

		store.GetRoundsForProcessingFunc = func() ([]*archery.Round, error) {
			return []*archery.Round{round}, nil
		}
		store.GetArcherFunc = func(archerID string) (*archery.Archer, error) {
			return &archery.Archer{ID: "a1", Name: "Robin", Gender: archery.GenderMale}, nil
		}
		store.GetCompletedRoundsFunc = func(filter rounds.RoundFilter) ([]*archery.Round, error) {
			return []*archery.Round{round}, nil
		}

		p.ProcessRounds(true)

		require.Len(t, store.UpdateArcherRatingCalls, 0, "Dry run should not persist the rating")
		require.Len(t, store.UpdateProcessingStatusCalls, 0, "Dry run should not persist status changes")
		require.Len(t, ps.SendMessageCalls, 0, "Dry run should not publish events")
		require.Len(t, notif.TierPromotionCalls, 1, "The notifier handles dry run itself")
		assert.Equal(t, 1, metr.RatingsRecomputed())
	})

	t.Run("round resumed after rating skips the announcements", func(t *testing.T) {
		p, store, notif, _, ps := newTestProcessor()

		round := completedRound("r1", "a1", 70, 300, archery.RoundTypeCompetition)
		round.ProcessingStatus = archery.ProcessingRated

		store.GetRoundsForProcessingFunc = func() ([]*archery.Round, error) {
			return []*archery.Round{round}, nil
		}

		p.ProcessRounds(false)

		require.Len(t, notif.TierPromotionCalls, 0)
		require.Len(t, notif.PersonalBestCalls, 0)
		require.Len(t, ps.SendMessageCalls, 0)
		require.Len(t, store.UpdateProcessingStatusCalls, 2)
		assert.Equal(t, archery.ProcessingNotified, store.UpdateProcessingStatusCalls[0].Status)
		assert.Equal(t, archery.ProcessingCompleted, store.UpdateProcessingStatusCalls[1].Status)
	})
}
