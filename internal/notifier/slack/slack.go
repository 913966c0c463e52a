package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sejersbol/bullseye/internal/archery"
	"github.com/sejersbol/bullseye/internal/leaderboard"
	"github.com/sejersbol/bullseye/internal/metrics"
	"github.com/sejersbol/bullseye/internal/notifier"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// Implement the Notifier interface
func (s *Notifier) SendTierPromotion(archer *archery.Archer, previousTier, newTier int, dryRun bool) error {
	msg := s.formatTierPromotion(archer, previousTier, newTier)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendPersonalBest(archer *archery.Archer, round *archery.Round, dryRun bool) error {
	msg := s.formatPersonalBest(archer, round)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendDailyLeaderboard(view leaderboard.View, date time.Time, dryRun bool) error {
	msg := s.formatDailyLeaderboard(view, date)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// FormatDailyLeaderboardResponse formats a daily leaderboard message for a slash command response.
func (s *Notifier) FormatDailyLeaderboardResponse(view leaderboard.View, date time.Time) (any, error) {
	return s.formatDailyLeaderboard(view, date), nil
}

// formatTierPromotion creates the Slack message for a tier promotion using Block Kit.
func (s *Notifier) formatTierPromotion(archer *archery.Archer, previousTier, newTier int) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header - The Header block itself provides bolding. No asterisks needed.
	headerText := slack.NewTextBlockObject("plain_text", "🏹 Tier promotion! 🏹", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	var fromText string
	if previousTier == 0 {
		fromText = "unranked"
	} else {
		fromText = fmt.Sprintf("tier %d", previousTier)
	}
	detailsText := fmt.Sprintf("%s climbed from %s to tier %d!\nRating: %d", archer.Name, fromText, newTier, archer.Rating)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	contextText := slack.NewTextBlockObject("plain_text", "Keep those arrows flying! 🎯", true, false)
	blocks = append(blocks, slack.NewContextBlock("", contextText))

	return slack.NewBlockMessage(blocks...)
}

// formatPersonalBest creates the Slack message for a new personal best round.
func (s *Notifier) formatPersonalBest(archer *archery.Archer, round *archery.Round) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🎯 New personal best! 🎯", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	loc, err := time.LoadLocation("Europe/Copenhagen")
	var timeStr string
	if err == nil {
		timeStr = time.Unix(round.ShotAt, 0).In(loc).Format("Monday 02 Jan, 15:04")
	} else {
		timeStr = time.Unix(round.ShotAt, 0).Format("Monday 02 Jan, 15:04")
	}
	detailsText := fmt.Sprintf("%s shot %d points at %s\nX's: %d | 10's: %d\nShot: %s",
		archer.Name,
		round.TotalScore,
		round.DistanceLabel,
		round.TotalX,
		round.Total10,
		timeStr,
	)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	if round.Type == archery.RoundTypeCompetition && round.CompetitionName != "" {
		contextText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("🏆 Shot at %s", round.CompetitionName), true, false)
		blocks = append(blocks, slack.NewContextBlock("", contextText))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatDailyLeaderboard creates a Slack message to display the daily leaderboard.
func (s *Notifier) formatDailyLeaderboard(view leaderboard.View, date time.Time) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("🏹 Daily Leaderboard %s 🏹", date.Format("02 Jan")), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(view.Entries) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No rounds shot today. Get out on the range!", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	var lines []string
	for _, entry := range view.Entries {
		var medal string
		switch entry.Rank {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		case 3:
			medal = "🥉"
		}

		lines = append(lines, fmt.Sprintf("%d. %s %s\n> Score: %.2f | X's: %d",
			entry.Rank,
			medal,
			entry.Name,
			entry.Metric,
			entry.XCount,
		))
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", strings.Join(lines, "\n"), true, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}
