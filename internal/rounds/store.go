package rounds

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sejersbol/bullseye/internal/archery"
)

// New creates a RoundStore backed by a sql database.
func New(db *sql.DB) RoundStore {
	return &store{
		db: db,
	}
}

func (s *store) UpsertArcher(archer archery.Archer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO archers (id, name, gender, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			gender = excluded.gender;
	`, archer.ID, archer.Name, string(archer.Gender), time.Now().Unix())
	if err != nil {
		log.Error("Failed to upsert archer", "error", err, "archerID", archer.ID)
	}
	return err
}

func (s *store) GetArcher(archerID string) (*archery.Archer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow("SELECT id, name, gender, rating, rank_tier FROM archers WHERE id = ?", archerID)
	archer, err := scanArcher(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", archery.ErrArcherNotFound, archerID)
	}
	return archer, err
}

func (s *store) GetAllArchers() ([]archery.Archer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, name, gender, rating, rank_tier FROM archers ORDER BY name")
	if err != nil {
		log.Error("Failed to query archers", "error", err)
		return nil, err
	}
	defer rows.Close()

	var archers []archery.Archer
	for rows.Next() {
		archer, err := scanArcher(rows)
		if err != nil {
			return nil, err
		}
		archers = append(archers, *archer)
	}
	return archers, rows.Err()
}

func (s *store) UpdateArcherRating(archerID string, rating int, tier *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec("UPDATE archers SET rating = ?, rank_tier = ? WHERE id = ?", rating, tier, archerID)
	if err != nil {
		log.Error("Failed to update archer rating", "error", err, "archerID", archerID)
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", archery.ErrArcherNotFound, archerID)
	}
	return nil
}

func (s *store) CreateRound(round *archery.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO rounds (id, archer_id, shot_at, distance_m, distance_label, arrows_per_end, total_ends, round_type, competition_name, status, processing_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, round.ID, round.ArcherID, round.ShotAt, round.DistanceM, round.DistanceLabel,
		round.ArrowsPerEnd, round.TotalEnds, string(round.Type), round.CompetitionName,
		string(archery.StatusInProgress), string(archery.ProcessingNew))
	if err != nil {
		log.Error("Failed to create round", "error", err, "roundID", round.ID)
	}
	return err
}

func (s *store) GetRound(roundID string) (*archery.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	return loadRound(tx, roundID)
}

// RecordEnd replaces the persisted end and its arrows in one transaction.
func (s *store) RecordEnd(roundID string, end archery.End) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var status string
	err := s.db.QueryRow("SELECT status FROM rounds WHERE id = ?", roundID).Scan(&status)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: %s", archery.ErrRoundNotFound, roundID)
	}
	if err != nil {
		return err
	}
	if archery.RoundStatus(status) != archery.StatusInProgress {
		return fmt.Errorf("%w: cannot record end on %s round", archery.ErrRoundFinalized, status)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM arrows WHERE round_id = ? AND end_index = ?", roundID, end.EndIndex); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec(`
		INSERT INTO ends (round_id, end_index, total) VALUES (?, ?, ?)
		ON CONFLICT(round_id, end_index) DO UPDATE SET total = excluded.total;
	`, roundID, end.EndIndex, end.Total); err != nil {
		tx.Rollback()
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO arrows (round_id, end_index, arrow_index, symbol, value, pos_x, pos_y)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, arrow := range end.Arrows {
		var posX, posY any
		if arrow.Position != nil {
			posX, posY = arrow.Position.X, arrow.Position.Y
		}
		if _, err := stmt.Exec(roundID, end.EndIndex, arrow.ArrowIndex, arrow.Symbol, arrow.Value, posX, posY); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// FinalizeRound recomputes the totals and flips the round to completed
// atomically. The guard on status in the UPDATE makes the transition a
// compare-and-swap: a concurrent finalize or cancel loses cleanly.
func (s *store) FinalizeRound(roundID string, now time.Time) (*archery.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}

	round, err := loadRound(tx, roundID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := round.Finalize(now); err != nil {
		tx.Rollback()
		return nil, err
	}

	result, err := tx.Exec(`
		UPDATE rounds
		SET status = ?, total_score = ?, total_x = ?, total_tens = ?, finalized_at = ?, processing_status = ?
		WHERE id = ? AND status = ?
	`, string(archery.StatusCompleted), round.TotalScore, round.TotalX, round.Total10,
		round.FinalizedAt, string(archery.ProcessingNew), roundID, string(archery.StatusInProgress))
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if affected == 0 {
		tx.Rollback()
		return nil, fmt.Errorf("%w: concurrent state change on round %s", archery.ErrRoundFinalized, roundID)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return round, nil
}

func (s *store) CancelRound(roundID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec(`
		UPDATE rounds SET status = ?, processing_status = ?
		WHERE id = ? AND status = ?
	`, string(archery.StatusCancelled), string(archery.ProcessingNew), roundID, string(archery.StatusInProgress))
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists bool
		if err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM rounds WHERE id = ?)", roundID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %s", archery.ErrRoundNotFound, roundID)
		}
		return fmt.Errorf("%w: cannot cancel round %s", archery.ErrRoundFinalized, roundID)
	}
	return nil
}

func (s *store) GetRoundsByArcher(archerID string) ([]*archery.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(roundColumns+" FROM rounds WHERE archer_id = ? ORDER BY shot_at DESC", archerID)
	if err != nil {
		log.Error("Failed to query rounds by archer", "error", err, "archerID", archerID)
		return nil, err
	}
	defer rows.Close()
	return collectRounds(rows)
}

func (s *store) GetCompletedRounds(filter RoundFilter) ([]*archery.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// An explicitly empty list can never match.
	if filter.Types != nil && len(filter.Types) == 0 {
		return nil, nil
	}
	if filter.ArcherIDs != nil && len(filter.ArcherIDs) == 0 {
		return nil, nil
	}

	query := roundColumns + " FROM rounds WHERE status = ?"
	args := []any{string(archery.StatusCompleted)}

	if filter.ArcherID != "" {
		query += " AND archer_id = ?"
		args = append(args, filter.ArcherID)
	}
	if filter.ArcherIDs != nil {
		query += " AND archer_id IN (?" + strings.Repeat(", ?", len(filter.ArcherIDs)-1) + ")"
		for _, id := range filter.ArcherIDs {
			args = append(args, id)
		}
	}
	if filter.From != 0 {
		query += " AND shot_at >= ?"
		args = append(args, filter.From)
	}
	if filter.To != 0 {
		query += " AND shot_at < ?"
		args = append(args, filter.To)
	}
	if filter.Types != nil {
		query += " AND round_type IN (?" + strings.Repeat(", ?", len(filter.Types)-1) + ")"
		for _, roundType := range filter.Types {
			args = append(args, string(roundType))
		}
	}
	if filter.DistanceM > 0 {
		query += " AND distance_m = ?"
		args = append(args, filter.DistanceM)
	}
	query += " ORDER BY shot_at ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		log.Error("Failed to query completed rounds", "error", err)
		return nil, err
	}
	defer rows.Close()
	return collectRounds(rows)
}

func (s *store) GetRoundsForProcessing() ([]*archery.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(roundColumns+`
		FROM rounds
		WHERE status != ? AND processing_status != ?
		ORDER BY finalized_at ASC
	`, string(archery.StatusInProgress), string(archery.ProcessingCompleted))
	if err != nil {
		log.Error("Failed to query rounds for processing", "error", err)
		return nil, err
	}
	defer rows.Close()
	return collectRounds(rows)
}

func (s *store) UpdateProcessingStatus(roundID string, status archery.ProcessingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("UPDATE rounds SET processing_status = ? WHERE id = ?", string(status), roundID)
	return err
}

func (s *store) UpsertTeam(team archery.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO teams (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name;
	`, team.ID, team.Name)
	return err
}

func (s *store) AddTeamMember(teamID, archerID string, joinedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO team_members (team_id, archer_id, joined_at) VALUES (?, ?, ?)
		ON CONFLICT(team_id, archer_id) DO NOTHING;
	`, teamID, archerID, joinedAt.Unix())
	return err
}

func (s *store) GetTeamMemberIDs(teamID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT archer_id FROM team_members WHERE team_id = ? ORDER BY archer_id", teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		log.Error("Failed to begin transaction for clearing store", "error", err)
		return
	}

	for _, table := range []string{"arrows", "ends", "rounds", "team_members", "teams", "archers"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			log.Error("Failed to clear table", "error", err, "table", table)
			tx.Rollback()
			return
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction for clearing store", "error", err)
	}
}

const roundColumns = `SELECT id, archer_id, shot_at, distance_m, distance_label, arrows_per_end, total_ends, round_type, competition_name, status, total_score, total_x, total_tens, finalized_at, processing_status`

type scanner interface{ Scan(...any) error }

func scanArcher(row scanner) (*archery.Archer, error) {
	var archer archery.Archer
	var gender string
	var tier sql.NullInt64
	if err := row.Scan(&archer.ID, &archer.Name, &gender, &archer.Rating, &tier); err != nil {
		return nil, err
	}
	archer.Gender = archery.Gender(gender)
	if tier.Valid {
		value := int(tier.Int64)
		archer.RankTier = &value
	}
	return &archer, nil
}

func scanRound(row scanner) (*archery.Round, error) {
	var round archery.Round
	var distanceLabel, competitionName sql.NullString
	var finalizedAt sql.NullInt64
	var roundType, status, processingStatus string

	err := row.Scan(
		&round.ID, &round.ArcherID, &round.ShotAt, &round.DistanceM, &distanceLabel,
		&round.ArrowsPerEnd, &round.TotalEnds, &roundType, &competitionName, &status,
		&round.TotalScore, &round.TotalX, &round.Total10, &finalizedAt, &processingStatus,
	)
	if err != nil {
		return nil, err
	}

	round.DistanceLabel = distanceLabel.String
	round.CompetitionName = competitionName.String
	round.FinalizedAt = finalizedAt.Int64
	round.Type = archery.RoundType(roundType)
	round.Status = archery.RoundStatus(status)
	round.ProcessingStatus = archery.ProcessingStatus(processingStatus)
	return &round, nil
}

func collectRounds(rows *sql.Rows) ([]*archery.Round, error) {
	var result []*archery.Round
	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			log.Error("Failed to scan round row", "error", err)
			return nil, err
		}
		result = append(result, round)
	}
	return result, rows.Err()
}

// loadRound fetches a round with its full end/arrow breakdown inside tx.
func loadRound(tx *sql.Tx, roundID string) (*archery.Round, error) {
	round, err := scanRound(tx.QueryRow(roundColumns+" FROM rounds WHERE id = ?", roundID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", archery.ErrRoundNotFound, roundID)
	}
	if err != nil {
		return nil, err
	}

	endRows, err := tx.Query("SELECT end_index, total FROM ends WHERE round_id = ? ORDER BY end_index", roundID)
	if err != nil {
		return nil, err
	}
	defer endRows.Close()

	for endRows.Next() {
		var end archery.End
		if err := endRows.Scan(&end.EndIndex, &end.Total); err != nil {
			return nil, err
		}
		round.Ends = append(round.Ends, end)
	}
	if err := endRows.Err(); err != nil {
		return nil, err
	}

	endByIndex := make(map[int]*archery.End, len(round.Ends))
	for i := range round.Ends {
		endByIndex[round.Ends[i].EndIndex] = &round.Ends[i]
	}

	arrowRows, err := tx.Query(`
		SELECT end_index, arrow_index, symbol, value, pos_x, pos_y
		FROM arrows WHERE round_id = ?
		ORDER BY end_index, arrow_index
	`, roundID)
	if err != nil {
		return nil, err
	}
	defer arrowRows.Close()

	for arrowRows.Next() {
		var endIndex int
		var arrow archery.ArrowResult
		var posX, posY sql.NullFloat64
		if err := arrowRows.Scan(&endIndex, &arrow.ArrowIndex, &arrow.Symbol, &arrow.Value, &posX, &posY); err != nil {
			return nil, err
		}
		if posX.Valid && posY.Valid {
			arrow.Position = &archery.Position{X: posX.Float64, Y: posY.Float64}
		}
		if end, ok := endByIndex[endIndex]; ok {
			end.Arrows = append(end.Arrows, arrow)
		}
	}
	return round, arrowRows.Err()
}
