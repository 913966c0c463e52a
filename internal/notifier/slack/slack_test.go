package slack

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sejersbol/bullseye/internal/archery"
	"github.com/sejersbol/bullseye/internal/leaderboard"
	"github.com/sejersbol/bullseye/internal/metrics"
	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSlackAPI is a mock implementation of the parts of the slack.Client that we use.
type mockSlackAPI struct {
	postMessageContextFunc func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	if m.postMessageContextFunc != nil {
		return m.postMessageContextFunc(ctx, channelID, options...)
	}
	return "C12345", "123456789.12345", nil
}

func TestSendMessage_DryRun(t *testing.T) {
	metrics := metrics.NewMock()
	// Pass nil for the api, as it shouldn't be called in dry-run mode.
	notifier := NewNotifierWithAPI(nil, "C123", metrics)

	message := slackapi.NewBlockMessage()
	_, _, err := notifier.sendMessage(message, true)
	require.NoError(t, err)
}

func TestSendMessage_Success(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			assert.Equal(t, "C123", channelID)
			return "C123", "ts123", nil
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	message := slackapi.NewBlockMessage(slackapi.NewSectionBlock(slackapi.NewTextBlockObject("plain_text", "hello", false, false), nil, nil))
	_, _, err := notifier.sendMessage(message, false)

	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 1, metrics.NotifSent())
	assert.Equal(t, 0, metrics.NotifFailed())
}

func TestSendMessage_Failure(t *testing.T) {
	postMessageCalled := false
	expectedErr := errors.New("slack API is down")
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			return "", "", expectedErr
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	message := slackapi.NewBlockMessage()
	_, _, err := notifier.sendMessage(message, false)

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 0, metrics.NotifSent())
	assert.Equal(t, 1, metrics.NotifFailed())
}

// Test one of the public methods to ensure it calls the private sender.
func TestSendTierPromotion_CallsSender(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			return "C123", "ts123", nil
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	archer := &archery.Archer{ID: "a1", Name: "Robin", Rating: 3400}

	err := notifier.SendTierPromotion(archer, 8, 7, false)
	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called via SendTierPromotion")
}

func TestFormatTierPromotion(t *testing.T) {
	client := &Notifier{channelID: "C123"}

	t.Run("formats a promotion between tiers", func(t *testing.T) {
		archer := &archery.Archer{ID: "a1", Name: "Robin", Rating: 3400}
		msg := client.formatTierPromotion(archer, 8, 7)
		require.Len(t, msg.Blocks.BlockSet, 3)

		header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
		require.True(t, ok, "First block should be a HeaderBlock")
		assert.Equal(t, "🏹 Tier promotion! 🏹", header.Text.Text)
		assert.True(t, *header.Text.Emoji)

		details, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok, "Second block should be a SectionBlock")
		assert.Equal(t, "Robin climbed from tier 8 to tier 7!\nRating: 3400", details.Text.Text)
	})

	t.Run("formats a first ranking", func(t *testing.T) {
		archer := &archery.Archer{ID: "a1", Name: "Robin", Rating: 420}
		msg := client.formatTierPromotion(archer, 0, 18)

		details, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Equal(t, "Robin climbed from unranked to tier 18!\nRating: 420", details.Text.Text)
	})
}

func TestFormatPersonalBest(t *testing.T) {
	client := &Notifier{channelID: "C123"}
	shotAt := time.Date(2025, 6, 14, 10, 0, 0, 0, time.UTC).Unix()

	t.Run("formats a practice round", func(t *testing.T) {
		archer := &archery.Archer{ID: "a1", Name: "Robin"}
		round := &archery.Round{
			ID:            "r1",
			ShotAt:        shotAt,
			DistanceLabel: "70m",
			Type:          archery.RoundTypePersonal,
			TotalScore:    312,
			TotalX:        9,
			Total10:       14,
		}

		msg := client.formatPersonalBest(archer, round)
		require.Len(t, msg.Blocks.BlockSet, 2)

		header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
		require.True(t, ok)
		assert.Equal(t, "🎯 New personal best! 🎯", header.Text.Text)

		details, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Contains(t, details.Text.Text, "Robin shot 312 points at 70m")
		assert.Contains(t, details.Text.Text, "X's: 9 | 10's: 14")
	})

	t.Run("includes the competition name when set", func(t *testing.T) {
		archer := &archery.Archer{ID: "a1", Name: "Robin"}
		round := &archery.Round{
			ID:              "r2",
			ShotAt:          shotAt,
			DistanceLabel:   "18m",
			Type:            archery.RoundTypeCompetition,
			CompetitionName: "Spring Open",
			TotalScore:      287,
		}

		msg := client.formatPersonalBest(archer, round)
		require.Len(t, msg.Blocks.BlockSet, 3)

		contextBlock, ok := msg.Blocks.BlockSet[2].(*slackapi.ContextBlock)
		require.True(t, ok, "Third block should be a ContextBlock")
		require.Len(t, contextBlock.ContextElements.Elements, 1)

		element, ok := contextBlock.ContextElements.Elements[0].(*slackapi.TextBlockObject)
		require.True(t, ok)
		assert.Equal(t, "🏆 Shot at Spring Open", element.Text)
	})
}

func TestFormatDailyLeaderboard(t *testing.T) {
	client := &Notifier{channelID: "C123"}
	date := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	t.Run("formats a ranked view", func(t *testing.T) {
		view := leaderboard.View{
			Entries: []leaderboard.Entry{
				{Rank: 1, ArcherID: "a1", Name: "Robin", Metric: 59.92, XCount: 0},
				{Rank: 2, ArcherID: "a2", Name: "Marian", Metric: 53, XCount: 1},
			},
		}

		msg := client.formatDailyLeaderboard(view, date)
		require.Len(t, msg.Blocks.BlockSet, 2)

		header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
		require.True(t, ok)
		assert.Equal(t, "🏹 Daily Leaderboard 15 Jun 🏹", header.Text.Text)

		section, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Contains(t, section.Text.Text, "1. 🥇 Robin")
		assert.Contains(t, section.Text.Text, "> Score: 59.92 | X's: 0")
		assert.Contains(t, section.Text.Text, "2. 🥈 Marian")
		assert.Contains(t, section.Text.Text, "> Score: 53.00 | X's: 1")
	})

	t.Run("formats an empty day", func(t *testing.T) {
		msg := client.formatDailyLeaderboard(leaderboard.View{}, date)
		require.Len(t, msg.Blocks.BlockSet, 2)

		message, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Equal(t, "No rounds shot today. Get out on the range!", message.Text.Text)
	})
}
