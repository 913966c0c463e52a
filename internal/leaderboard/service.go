package leaderboard

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/sejersbol/bullseye/internal/archery"
	"github.com/sejersbol/bullseye/internal/rounds"
)

// Masters ranks all archers by their current masters rating. An archer
// appears once they hold a positive cached rating or any completed round:
// a rating of zero earned from real rounds still ranks, an archer with no
// history at all does not.
func (s *Service) Masters(limit int, callerID string) (View, error) {
	if limit == 0 {
		limit = DefaultMastersLimit
	}
	archers, err := s.store.GetAllArchers()
	if err != nil {
		return View{}, err
	}
	completed, err := s.store.GetCompletedRounds(rounds.RoundFilter{})
	if err != nil {
		return View{}, err
	}
	hasHistory := make(map[string]bool, len(completed))
	for _, round := range completed {
		hasHistory[round.ArcherID] = true
	}

	var candidates []Candidate
	for _, archer := range archers {
		if archer.Rating <= 0 && !hasHistory[archer.ID] {
			continue
		}
		candidates = append(candidates, Candidate{
			ArcherID: archer.ID,
			Name:     archer.Name,
			Metric:   float64(archer.Rating),
		})
	}
	return view(candidates, limit, callerID), nil
}

// Daily ranks archers by their best handicap-adjusted score on one calendar
// day. A zero date means today.
func (s *Service) Daily(date time.Time, limit int, callerID string) (View, error) {
	if limit == 0 {
		limit = DefaultDailyLimit
	}
	if date.IsZero() {
		date = s.now()
	}
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

	completed, err := s.store.GetCompletedRounds(rounds.RoundFilter{
		From: dayStart.Unix(),
		To:   dayStart.AddDate(0, 0, 1).Unix(),
	})
	if err != nil {
		return View{}, err
	}

	genders, names, err := s.archerIndex()
	if err != nil {
		return View{}, err
	}

	best := make(map[string]Candidate)
	for _, round := range completed {
		adjusted := s.handicap.Adjust(genders[round.ArcherID], round.TotalScore)
		replaceIfBetter(best, round, names[round.ArcherID], adjusted)
	}
	return view(collect(best), limit, callerID), nil
}

// Score ranks archers by the single highest raw round score ever recorded.
func (s *Service) Score(limit int, callerID string) (View, error) {
	if limit == 0 {
		limit = DefaultScoreLimit
	}
	completed, err := s.store.GetCompletedRounds(rounds.RoundFilter{})
	if err != nil {
		return View{}, err
	}
	_, names, err := s.archerIndex()
	if err != nil {
		return View{}, err
	}

	best := make(map[string]Candidate)
	for _, round := range completed {
		replaceIfBetter(best, round, names[round.ArcherID], float64(round.TotalScore))
	}
	return view(collect(best), limit, callerID), nil
}

// BestScore ranks archers by their best raw score within a round-type group,
// optionally restricted to one distance. An unknown group matches nothing:
// a malformed filter yields an empty board rather than silently widening to
// everything.
func (s *Service) BestScore(group TypeGroup, distanceM int, limit int, callerID string) (View, error) {
	if limit == 0 {
		limit = DefaultBestLimit
	}
	types, ok := typesForGroup(group)
	if !ok {
		log.Warn("Unknown round-type group requested", "group", group)
		return View{}, nil
	}

	completed, err := s.store.GetCompletedRounds(rounds.RoundFilter{
		Types:     types,
		DistanceM: distanceM,
	})
	if err != nil {
		return View{}, err
	}
	_, names, err := s.archerIndex()
	if err != nil {
		return View{}, err
	}

	best := make(map[string]Candidate)
	for _, round := range completed {
		replaceIfBetter(best, round, names[round.ArcherID], float64(round.TotalScore))
	}
	return view(collect(best), limit, callerID), nil
}

// PracticeVolume ranks archers by arrows shot within a trailing window:
// the last seven days, or the calendar month to date.
func (s *Service) PracticeVolume(period Period, limit int, callerID string) (View, error) {
	if limit == 0 {
		limit = DefaultVolumeLimit
	}
	now := s.now()

	var from time.Time
	switch period {
	case PeriodWeek:
		from = now.AddDate(0, 0, -7)
	case PeriodMonth:
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	default:
		log.Warn("Unknown practice-volume period requested", "period", period)
		return View{}, nil
	}

	return s.volumeView(rounds.RoundFilter{From: from.Unix()}, limit, callerID)
}

// TeamWeekly is the practice-volume reduction scoped to one team's members
// over the trailing seven days.
func (s *Service) TeamWeekly(teamID string, limit int, callerID string) (View, error) {
	if limit == 0 {
		limit = DefaultTeamLimit
	}
	memberIDs, err := s.store.GetTeamMemberIDs(teamID)
	if err != nil {
		return View{}, err
	}
	if len(memberIDs) == 0 {
		return View{}, nil
	}

	from := s.now().AddDate(0, 0, -teamWeeklyWindowDays)
	return s.volumeView(rounds.RoundFilter{From: from.Unix(), ArcherIDs: memberIDs}, limit, callerID)
}

func (s *Service) volumeView(filter rounds.RoundFilter, limit int, callerID string) (View, error) {
	completed, err := s.store.GetCompletedRounds(filter)
	if err != nil {
		return View{}, err
	}
	_, names, err := s.archerIndex()
	if err != nil {
		return View{}, err
	}

	byArcher := make(map[string]Candidate)
	for _, round := range completed {
		candidate, ok := byArcher[round.ArcherID]
		if !ok {
			candidate = Candidate{
				ArcherID:   round.ArcherID,
				Name:       names[round.ArcherID],
				AchievedAt: round.ShotAt,
			}
		}
		candidate.Metric += float64(round.TotalArrows())
		candidate.XCount += round.TotalX
		if round.ShotAt < candidate.AchievedAt {
			candidate.AchievedAt = round.ShotAt
		}
		byArcher[round.ArcherID] = candidate
	}
	return view(collect(byArcher), limit, callerID), nil
}

// archerIndex loads gender and display-name lookups once per query.
func (s *Service) archerIndex() (map[string]archery.Gender, map[string]string, error) {
	archers, err := s.store.GetAllArchers()
	if err != nil {
		return nil, nil, err
	}
	genders := make(map[string]archery.Gender, len(archers))
	names := make(map[string]string, len(archers))
	for _, archer := range archers {
		genders[archer.ID] = archer.Gender
		names[archer.ID] = archer.Name
	}
	return genders, names, nil
}

// replaceIfBetter keeps the best round per archer, applying the same
// tie-break fields the builder sorts on.
func replaceIfBetter(best map[string]Candidate, round *archery.Round, name string, metric float64) {
	candidate := Candidate{
		ArcherID:   round.ArcherID,
		Name:       name,
		Metric:     metric,
		XCount:     round.TotalX,
		AchievedAt: round.ShotAt,
	}
	current, ok := best[round.ArcherID]
	if !ok {
		best[round.ArcherID] = candidate
		return
	}
	if candidate.Metric > current.Metric ||
		(candidate.Metric == current.Metric && candidate.XCount > current.XCount) ||
		(candidate.Metric == current.Metric && candidate.XCount == current.XCount && candidate.AchievedAt < current.AchievedAt) {
		best[round.ArcherID] = candidate
	}
}

func typesForGroup(group TypeGroup) ([]archery.RoundType, bool) {
	switch group {
	case GroupPractice:
		return []archery.RoundType{archery.RoundTypePersonal, archery.RoundTypeClub}, true
	case GroupCompetition:
		return []archery.RoundType{archery.RoundTypeCompetition}, true
	case GroupAll:
		return nil, true
	}
	return nil, false
}

func collect(byArcher map[string]Candidate) []Candidate {
	candidates := make([]Candidate, 0, len(byArcher))
	for _, candidate := range byArcher {
		candidates = append(candidates, candidate)
	}
	return candidates
}
