package archery

// Gender is the category used for handicap lookup. It has no other role in
// the engine.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// RoundType distinguishes how a round was shot.
type RoundType string

const (
	RoundTypePersonal    RoundType = "personal"
	RoundTypeClub        RoundType = "club"
	RoundTypeCompetition RoundType = "competition"
)

// Known reports whether t is one of the recognized round types. Input
// surfaces must reject unknown types before a round is stored.
func (t RoundType) Known() bool {
	switch t {
	case RoundTypePersonal, RoundTypeClub, RoundTypeCompetition:
		return true
	}
	return false
}

// RoundStatus is the lifecycle state of a round. Completed and cancelled are
// terminal.
type RoundStatus string

const (
	StatusInProgress RoundStatus = "IN_PROGRESS"
	StatusCompleted  RoundStatus = "COMPLETED"
	StatusCancelled  RoundStatus = "CANCELLED"
)

// ProcessingStatus tracks how far a terminal round has moved through the
// post-finalization pipeline (rating recompute, notifications).
type ProcessingStatus string

const (
	ProcessingNew       ProcessingStatus = "NEW"
	ProcessingRated     ProcessingStatus = "RATED"
	ProcessingNotified  ProcessingStatus = "NOTIFIED"
	ProcessingCompleted ProcessingStatus = "COMPLETED"
)

// Position is where an arrow hit the target face, in face-relative
// coordinates. Optional on an ArrowResult.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ArrowResult is a single arrow within an end.
type ArrowResult struct {
	ArrowIndex int       `json:"arrow_index"`
	Symbol     string    `json:"symbol"`
	Value      int       `json:"value"`
	Position   *Position `json:"position,omitempty"`
}

// End is a group of consecutive arrows within a round.
type End struct {
	EndIndex int           `json:"end_index"`
	Arrows   []ArrowResult `json:"arrows"`
	Total    int           `json:"total"`
}

// Round is one practice or competition session of a fixed number of ends and
// arrows. Totals are derived at finalization and never hand-edited.
type Round struct {
	ID              string      `json:"id"`
	ArcherID        string      `json:"archer_id"`
	ShotAt          int64       `json:"shot_at"`
	DistanceM       int         `json:"distance_m"`
	DistanceLabel   string      `json:"distance_label,omitempty"`
	ArrowsPerEnd    int         `json:"arrows_per_end"`
	TotalEnds       int         `json:"total_ends"`
	Type            RoundType   `json:"round_type"`
	CompetitionName string      `json:"competition_name,omitempty"`
	Status          RoundStatus `json:"status"`

	Ends []End `json:"ends,omitempty"`

	TotalScore  int   `json:"total_score"`
	TotalX      int   `json:"total_x"`
	Total10     int   `json:"total_10"`
	FinalizedAt int64 `json:"finalized_at,omitempty"`

	ProcessingStatus ProcessingStatus `json:"processing_status,omitempty"`
}

// TotalArrows is the number of arrows a complete round holds.
func (r *Round) TotalArrows() int {
	return r.TotalEnds * r.ArrowsPerEnd
}

// Archer holds the performance-relevant fields of a user. Rating and
// RankTier are cached derived state; the round history is the source of
// truth.
type Archer struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Gender Gender `json:"gender"`
	Rating int    `json:"rating"`
	// RankTier is nil while the archer is unranked.
	RankTier *int `json:"rank_tier,omitempty"`
}

// Team scopes the team-weekly leaderboard to a membership set.
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TeamMember ties an archer to a team.
type TeamMember struct {
	TeamID   string `json:"team_id"`
	ArcherID string `json:"archer_id"`
	JoinedAt int64  `json:"joined_at"`
}
