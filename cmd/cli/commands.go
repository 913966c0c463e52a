package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

var (
	limit    int
	archerID string
	group    string
	distance int
	period   string
	teamID   string
	date     string
)

func init() {
	for _, cmd := range []*cobra.Command{mastersCmd, dailyCmd, scoreCmd, bestScoreCmd, practiceVolumeCmd, teamWeeklyCmd} {
		cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of entries (0 for the view default)")
		cmd.Flags().StringVar(&archerID, "archer", "", "Archer ID to resolve 'my rank' for")
	}
	dailyCmd.Flags().StringVar(&date, "date", "", "Calendar day to rank (YYYY-MM-DD, default today)")
	bestScoreCmd.Flags().StringVar(&group, "group", "all", "Round type group: practice, competition or all")
	bestScoreCmd.Flags().IntVar(&distance, "distance", 0, "Distance in meters (0 for any)")
	practiceVolumeCmd.Flags().StringVar(&period, "period", "week", "Trailing window: week or month")
	teamWeeklyCmd.Flags().StringVar(&teamID, "team", "", "Team ID to rank")
	teamWeeklyCmd.MarkFlagRequired("team")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(archersCmd)
	rootCmd.AddCommand(roundsCmd)
	rootCmd.AddCommand(mastersCmd)
	rootCmd.AddCommand(dailyCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(bestScoreCmd)
	rootCmd.AddCommand(practiceVolumeCmd)
	rootCmd.AddCommand(teamWeeklyCmd)
	rootCmd.AddCommand(tiersCmd)
	rootCmd.AddCommand(handicapsCmd)
	rootCmd.AddCommand(bandsCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health", nil)
	},
}

var archersCmd = &cobra.Command{
	Use:   "archers",
	Short: "List the archers in the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/archers", nil)
	},
}

var roundsCmd = &cobra.Command{
	Use:   "rounds",
	Short: "List completed rounds",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/rounds", nil)
	},
}

var mastersCmd = &cobra.Command{
	Use:   "masters",
	Short: "Show the masters rating leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/leaderboard/masters", viewParams())
	},
}

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Show the daily leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := viewParams()
		if date != "" {
			params.Set("date", date)
		}
		return performGetRequest("/leaderboard/daily", params)
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Show the all-time raw score leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/leaderboard/score", viewParams())
	},
}

var bestScoreCmd = &cobra.Command{
	Use:   "best-score",
	Short: "Show the best score leaderboard for a round type group",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := viewParams()
		params.Set("group", group)
		if distance > 0 {
			params.Set("distance", fmt.Sprintf("%d", distance))
		}
		return performGetRequest("/leaderboard/best-score", params)
	},
}

var practiceVolumeCmd = &cobra.Command{
	Use:   "practice-volume",
	Short: "Show the practice volume leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := viewParams()
		params.Set("period", period)
		return performGetRequest("/leaderboard/practice-volume", params)
	},
}

var teamWeeklyCmd = &cobra.Command{
	Use:   "team-weekly",
	Short: "Show the weekly leaderboard for a team",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := viewParams()
		params.Set("teamID", teamID)
		return performGetRequest("/leaderboard/team-weekly", params)
	},
}

var tiersCmd = &cobra.Command{
	Use:   "tiers",
	Short: "Show the rating thresholds per rank tier",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/tiers", nil)
	},
}

var handicapsCmd = &cobra.Command{
	Use:   "handicaps",
	Short: "Show the gender handicap factors",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/handicaps", nil)
	},
}

var bandsCmd = &cobra.Command{
	Use:   "bands",
	Short: "Show the archer rating band thresholds",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/bands", nil)
	},
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run the post-finalization processing pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/process", nil)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics", nil)
	},
}

func viewParams() url.Values {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", limit))
	}
	if archerID != "" {
		params.Set("archerID", archerID)
	}
	return params
}

func performGetRequest(endpoint string, params url.Values) error {
	url := host + endpoint
	if len(params) > 0 {
		url += "?" + params.Encode()
	}
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
