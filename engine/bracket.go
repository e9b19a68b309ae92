package engine

import (
	"fmt"
	"time"
)

type MatchStatus string

const (
	StatusScheduled  MatchStatus = "scheduled"
	StatusInProgress MatchStatus = "in_progress"
	StatusCompleted  MatchStatus = "completed"
	StatusCancelled  MatchStatus = "cancelled"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal сообщает, что матч больше не ждёт результата.
func (s MatchStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type MatchFormat string

const (
	FormatBestOfOne   MatchFormat = "bo1"
	FormatBestOfThree MatchFormat = "bo3"
)

// Sentinel slot values. A slot is never empty: it holds a participant ID,
// TBD (waiting for an upstream result) or BYE (free advancement).
const (
	SlotTBD = "TBD"
	SlotBye = "BYE"
)

// Match is a single pairing inside a bracket round. The UID is derived from
// round and order (R{round}M{index+1}), so rebuilding the same bracket yields
// the same identifiers.
type Match struct {
	UID          string      `json:"uid"`
	Round        int         `json:"round"`
	Slot         int         `json:"slot"`
	ParticipantA string      `json:"participant_a"`
	ParticipantB string      `json:"participant_b"`
	ScoreA       int         `json:"score_a"`
	ScoreB       int         `json:"score_b"`
	Status       MatchStatus `json:"status"`
	WinnerID     string      `json:"winner_id,omitempty"`
	Format       MatchFormat `json:"format"`
	Maps         []string    `json:"maps,omitempty"`
	ScheduledAt  time.Time   `json:"scheduled_at"`
}

// HasParticipant reports whether id occupies one of the match slots.
func (m *Match) HasParticipant(id string) bool {
	return m.ParticipantA == id || m.ParticipantB == id
}

func matchUID(round, index int) string {
	return fmt.Sprintf("R%dM%d", round, index+1)
}

type Round struct {
	Number  int     `json:"number"`
	Matches []Match `json:"matches"`
}

// Bracket — сетка single elimination. Size всегда степень двойки, финальный
// раунд содержит ровно один матч.
type Bracket struct {
	Size       int     `json:"size"`
	ByeCount   int     `json:"bye_count"`
	Rounds     []Round `json:"rounds"`
	Completed  bool    `json:"completed"`
	ChampionID string  `json:"champion_id,omitempty"`
}

// Match returns the match at the given 1-based round number and 0-based slot
// index within the round.
func (b *Bracket) Match(roundNumber, matchIndex int) (*Match, error) {
	if roundNumber < 1 || roundNumber > len(b.Rounds) {
		return nil, fmt.Errorf("%w: round %d out of range (1..%d)", ErrMatchNotFound, roundNumber, len(b.Rounds))
	}
	round := &b.Rounds[roundNumber-1]
	if matchIndex < 0 || matchIndex >= len(round.Matches) {
		return nil, fmt.Errorf("%w: match index %d out of range for round %d", ErrMatchNotFound, matchIndex, roundNumber)
	}
	return &round.Matches[matchIndex], nil
}

// AllMatches flattens the bracket in round order.
func (b *Bracket) AllMatches() []Match {
	total := 0
	for _, r := range b.Rounds {
		total += len(r.Matches)
	}
	out := make([]Match, 0, total)
	for _, r := range b.Rounds {
		out = append(out, r.Matches...)
	}
	return out
}

// Standing is the per-participant Swiss record. Once Qualified or Eliminated
// is set the participant is excluded from all further pairings.
type Standing struct {
	ParticipantID   string   `json:"participant_id"`
	Seed            int      `json:"seed"`
	Wins            int      `json:"wins"`
	Losses          int      `json:"losses"`
	Buchholz        int      `json:"buchholz"`
	OpponentHistory []string `json:"opponent_history"`
	Qualified       bool     `json:"qualified"`
	Eliminated      bool     `json:"eliminated"`
}

// HasPlayed reports whether the participant already faced the given opponent.
func (s *Standing) HasPlayed(opponentID string) bool {
	for _, id := range s.OpponentHistory {
		if id == opponentID {
			return true
		}
	}
	return false
}

func (s *Standing) active() bool {
	return !s.Qualified && !s.Eliminated
}

// SwissBracket holds the full state of a Swiss stage: standings, all matches
// played so far and, after the transition, the embedded playoff bracket.
type SwissBracket struct {
	CurrentRound       int        `json:"current_round"`
	MaxRounds          int        `json:"max_rounds"`
	QualificationSpots int        `json:"qualification_spots"`
	WinThreshold       int        `json:"win_threshold"`
	LossThreshold      int        `json:"loss_threshold"`
	Standings          []Standing `json:"standings"`
	Matches            []Match    `json:"matches"`
	PlayoffStarted     bool       `json:"playoff_started"`
	Playoff            *Bracket   `json:"playoff,omitempty"`
}

// SwissConfig задаёт пороги свисс-этапа. Нулевые поля заменяются дефолтами.
type SwissConfig struct {
	MaxRounds          int
	QualificationSpots int
	WinThreshold       int
	LossThreshold      int
}

// DefaultSwissConfig mirrors the classic 16-team major format: first to three
// wins qualifies, three losses eliminates, top eight advance to playoffs.
func DefaultSwissConfig() SwissConfig {
	return SwissConfig{
		MaxRounds:          5,
		QualificationSpots: 8,
		WinThreshold:       3,
		LossThreshold:      3,
	}
}

func (c SwissConfig) withDefaults() SwissConfig {
	def := DefaultSwissConfig()
	if c.MaxRounds <= 0 {
		c.MaxRounds = def.MaxRounds
	}
	if c.QualificationSpots <= 0 {
		c.QualificationSpots = def.QualificationSpots
	}
	if c.WinThreshold <= 0 {
		c.WinThreshold = def.WinThreshold
	}
	if c.LossThreshold <= 0 {
		c.LossThreshold = def.LossThreshold
	}
	return c
}

// NewSwissBracket creates the initial Swiss state with zeroed standings in
// seed order. No matches are generated until the first call to NextRound.
func NewSwissBracket(roster []Participant, cfg SwissConfig) (*SwissBracket, error) {
	if err := ValidateRoster(roster); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	sorted := sortedBySeed(roster)
	standings := make([]Standing, len(sorted))
	for i, p := range sorted {
		standings[i] = Standing{
			ParticipantID:   p.ID,
			Seed:            p.Seed,
			OpponentHistory: []string{},
		}
	}

	return &SwissBracket{
		CurrentRound:       0,
		MaxRounds:          cfg.MaxRounds,
		QualificationSpots: cfg.QualificationSpots,
		WinThreshold:       cfg.WinThreshold,
		LossThreshold:      cfg.LossThreshold,
		Standings:          standings,
		Matches:            []Match{},
	}, nil
}

// MatchByUID finds a Swiss match by its identifier.
func (sb *SwissBracket) MatchByUID(uid string) (*Match, error) {
	for i := range sb.Matches {
		if sb.Matches[i].UID == uid {
			return &sb.Matches[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, uid)
}

// MatchAt finds a Swiss match by round number and slot index.
func (sb *SwissBracket) MatchAt(roundNumber, matchIndex int) (*Match, error) {
	for i := range sb.Matches {
		if sb.Matches[i].Round == roundNumber && sb.Matches[i].Slot == matchIndex {
			return &sb.Matches[i], nil
		}
	}
	return nil, fmt.Errorf("%w: round %d match %d", ErrMatchNotFound, roundNumber, matchIndex)
}

// Standing returns a pointer to the record of the given participant.
func (sb *SwissBracket) Standing(participantID string) *Standing {
	for i := range sb.Standings {
		if sb.Standings[i].ParticipantID == participantID {
			return &sb.Standings[i]
		}
	}
	return nil
}
