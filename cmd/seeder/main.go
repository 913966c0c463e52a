package main

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sejersbol/bullseye/internal/archery"
	"github.com/sejersbol/bullseye/internal/database"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := map[string]string{
		"DB_NAME":           "bullseye.db",
		"MIGRATIONS_DIR":    "./migrations",
		"TURSO_PRIMARY_URL": "",
		"TURSO_AUTH_TOKEN":  "",
	}
	for key := range config {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		}
	}
	return config
}

type seedArcher struct {
	id     string
	name   string
	gender archery.Gender
	// skill is the expected arrow value, used to draw plausible round scores.
	skill float64
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	db, teardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"], cfg["MIGRATIONS_DIR"])
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	log.Info("Successfully connected to the database.")

	archers := []seedArcher{
		{id: "archer-1", name: "Robin Locksley", gender: archery.GenderMale, skill: 8.6},
		{id: "archer-2", name: "Marian Fitzwalter", gender: archery.GenderFemale, skill: 8.9},
		{id: "archer-3", name: "Wilhelm Tell", gender: archery.GenderMale, skill: 9.2},
		{id: "archer-4", name: "Atalanta Schoineus", gender: archery.GenderFemale, skill: 7.8},
		{id: "archer-5", name: "Nasu Yoichi", gender: archery.GenderMale, skill: 7.1},
		{id: "archer-6", name: "Artemis Brauron", gender: archery.GenderOther, skill: 6.4},
	}

	for _, a := range archers {
		_, err := db.Exec("INSERT OR IGNORE INTO archers (id, name, gender, created_at) VALUES (?, ?, ?, ?)", a.id, a.name, string(a.gender), time.Now().Unix())
		if err != nil {
			log.Fatalf("Failed to insert archer %s: %s", a.name, err)
		}
	}
	log.Info("Ensured seed archers exist.", "count", len(archers))

	teams := map[string][]string{
		"team-longbow": {"archer-1", "archer-2", "archer-3"},
		"team-recurve": {"archer-4", "archer-5", "archer-6"},
	}
	for teamID, members := range teams {
		if _, err := db.Exec("INSERT OR IGNORE INTO teams (id, name) VALUES (?, ?)", teamID, strings.TrimPrefix(teamID, "team-")); err != nil {
			log.Fatalf("Failed to insert team %s: %s", teamID, err)
		}
		for _, archerID := range members {
			if _, err := db.Exec("INSERT OR IGNORE INTO team_members (team_id, archer_id, joined_at) VALUES (?, ?, ?)", teamID, archerID, time.Now().Unix()); err != nil {
				log.Fatalf("Failed to insert team member %s: %s", archerID, err)
			}
		}
	}
	log.Info("Ensured seed teams exist.", "count", len(teams))

	const batchSize = 100
	const roundsPerArcher = 40

	distances := []int{18, 30, 50, 70}
	types := []archery.RoundType{
		archery.RoundTypePersonal,
		archery.RoundTypePersonal,
		archery.RoundTypeClub,
		archery.RoundTypeCompetition,
	}

	totalRounds := len(archers) * roundsPerArcher
	log.Info("Preparing to insert seed rounds...", "total", totalRounds, "batch_size", batchSize)
	startTime := time.Now()

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("Failed to begin transaction: %s", err)
	}

	valueStrings := make([]string, 0, batchSize)
	valueArgs := make([]interface{}, 0, batchSize*15) // 15 columns per round

	inserted := 0
	for _, a := range archers {
		for i := 0; i < roundsPerArcher; i++ {
			shotAt := time.Now().Add(-time.Duration(rand.Intn(120*24)) * time.Hour)
			distance := distances[rand.Intn(len(distances))]
			roundType := types[rand.Intn(len(types))]
			arrowsPerEnd := 6
			totalEnds := 10
			arrows := arrowsPerEnd * totalEnds

			// Draw a round total around the archer's expected arrow value.
			score := 0
			tens := 0
			xs := 0
			for arrow := 0; arrow < arrows; arrow++ {
				value := int(a.skill + rand.NormFloat64()*1.5)
				if value > 10 {
					value = 10
				}
				if value < 0 {
					value = 0
				}
				score += value
				if value == 10 {
					tens++
					if rand.Intn(3) == 0 {
						xs++
					}
				}
			}

			competitionName := ""
			if roundType == archery.RoundTypeCompetition {
				competitionName = "Seeded Open"
			}

			valueStrings = append(valueStrings, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			valueArgs = append(valueArgs,
				uuid.NewString(),
				a.id,
				shotAt.Unix(),
				distance,
				fmt.Sprintf("%dm", distance),
				arrowsPerEnd,
				totalEnds,
				string(roundType),
				competitionName,
				string(archery.StatusCompleted),
				score,
				xs,
				tens,
				shotAt.Add(90*time.Minute).Unix(),
				string(archery.ProcessingNew),
			)
			inserted++

			if len(valueStrings) == batchSize || inserted == totalRounds {
				stmt := fmt.Sprintf(`
					INSERT INTO rounds (id, archer_id, shot_at, distance_m, distance_label, arrows_per_end,
						total_ends, round_type, competition_name, status, total_score, total_x, total_tens,
						finalized_at, processing_status)
					VALUES %s;`, strings.Join(valueStrings, ","))

				_, err := tx.Exec(stmt, valueArgs...)
				if err != nil {
					tx.Rollback()
					log.Fatalf("Failed to execute batch insert: %s", err)
				}

				// Reset for the next batch
				valueStrings = make([]string, 0, batchSize)
				valueArgs = make([]interface{}, 0, batchSize*15)
				log.Info("Inserted batch", "completed", inserted, "total", totalRounds)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		log.Fatalf("Failed to commit transaction: %s", err)
	}

	duration := time.Since(startTime)
	log.Info("Successfully inserted all seed rounds.", "duration", duration)
	log.Info("Run the /process endpoint to rate the seeded rounds.")
}
