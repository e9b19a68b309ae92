package engine

import (
	"fmt"
	"math/bits"
	"math/rand"
	"sort"
	"time"
)

// DefaultMapPool is drawn from uniformly (without replacement) when a Swiss
// match is created. Map choice is deliberately non-deterministic — it has no
// effect on competitive correctness.
var DefaultMapPool = []string{
	"Ancient", "Anubis", "Dust II", "Inferno", "Mirage", "Nuke", "Train",
}

// SwissPairer generates Swiss rounds and performs the playoff transition.
// The random source is injected so tests can pin pairing and map draws with
// a fixed seed; the clock is injected for the same reason.
type SwissPairer struct {
	rnd     *rand.Rand
	now     func() time.Time
	mapPool []string
}

func NewSwissPairer(rnd *rand.Rand) *SwissPairer {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &SwissPairer{
		rnd:     rnd,
		now:     time.Now,
		mapPool: DefaultMapPool,
	}
}

// NextRound pairs the next Swiss round from the current standings. Every
// match of the current round must already be completed or cancelled. Returned
// matches are not appended to the bracket; the caller owns that mutation
// together with the CurrentRound increment.
func (p *SwissPairer) NextRound(sb *SwissBracket) ([]Match, error) {
	if sb.PlayoffStarted {
		return nil, fmt.Errorf("%w: swiss stage is closed", ErrPlayoffAlreadyStarted)
	}
	for i := range sb.Matches {
		m := &sb.Matches[i]
		if m.Round == sb.CurrentRound && !m.Status.Terminal() {
			return nil, fmt.Errorf("%w: match %s is still %s", ErrRoundNotComplete, m.UID, m.Status)
		}
	}

	round := sb.CurrentRound + 1
	ordered := orderedStandings(sb.Standings, func(s *Standing) bool { return s.active() })

	paired := make(map[string]bool, len(ordered))
	matches := make([]Match, 0, len(ordered)/2)
	for i, a := range ordered {
		if paired[a.ParticipantID] {
			continue
		}
		// Greedy forward scan: first unpaired candidate in score order that
		// has not faced this participant yet. If the scan exhausts the list
		// the participant sits the round out and stays pairable next round.
		for j := i + 1; j < len(ordered); j++ {
			b := ordered[j]
			if paired[b.ParticipantID] || a.HasPlayed(b.ParticipantID) {
				continue
			}
			paired[a.ParticipantID] = true
			paired[b.ParticipantID] = true
			matches = append(matches, p.newSwissMatch(sb, round, len(matches), a.ParticipantID, b.ParticipantID))
			break
		}
	}
	return matches, nil
}

// Unpaired returns the active participants a generated round left without an
// opponent, for the caller to surface.
func Unpaired(sb *SwissBracket, roundMatches []Match) []string {
	inRound := make(map[string]bool, len(roundMatches)*2)
	for i := range roundMatches {
		inRound[roundMatches[i].ParticipantA] = true
		inRound[roundMatches[i].ParticipantB] = true
	}
	var out []string
	for i := range sb.Standings {
		s := &sb.Standings[i]
		if s.active() && !inRound[s.ParticipantID] {
			out = append(out, s.ParticipantID)
		}
	}
	return out
}

func (p *SwissPairer) newSwissMatch(sb *SwissBracket, round, index int, a, b string) Match {
	// Финальный свисс-раунд играется в bo3 — ставки выше.
	format := FormatBestOfOne
	if round >= sb.MaxRounds {
		format = FormatBestOfThree
	}
	return Match{
		UID:          matchUID(round, index),
		Round:        round,
		Slot:         index,
		ParticipantA: a,
		ParticipantB: b,
		Status:       StatusScheduled,
		Format:       format,
		Maps:         p.drawMaps(format),
		ScheduledAt:  p.now().Add(time.Duration(p.rnd.Intn(24*60)) * time.Minute),
	}
}

func (p *SwissPairer) drawMaps(format MatchFormat) []string {
	count := 1
	if format == FormatBestOfThree {
		count = 3
	}
	if count > len(p.mapPool) {
		count = len(p.mapPool)
	}
	perm := p.rnd.Perm(len(p.mapPool))
	maps := make([]string, count)
	for i := 0; i < count; i++ {
		maps[i] = p.mapPool[perm[i]]
	}
	return maps
}

// StartPlayoffs closes the Swiss stage: the top qualified standings are
// seeded into an embedded single-elimination bracket of best-of-three
// matches. Round 1 pairs consecutively ([0] vs [1], [2] vs [3], …) in final
// standings order. The field is clamped to the largest power of two that
// fits, so the bracket is always structurally complete.
func (p *SwissPairer) StartPlayoffs(sb *SwissBracket) error {
	if sb.PlayoffStarted {
		return ErrPlayoffAlreadyStarted
	}

	qualified := orderedStandings(sb.Standings, func(s *Standing) bool {
		return s.Qualified || s.Wins >= sb.WinThreshold
	})

	n := sb.QualificationSpots
	if len(qualified) < n {
		n = len(qualified)
	}
	if n < 2 {
		return fmt.Errorf("%w: have %d, need at least 2", ErrNotEnoughQualified, n)
	}
	n = 1 << (bits.Len(uint(n)) - 1) // largest power of two <= n
	top := qualified[:n]

	numRounds := bits.Len(uint(n)) - 1
	start := p.now()
	playoff := &Bracket{
		Size:   n,
		Rounds: make([]Round, 0, numRounds),
	}

	firstRound := Round{Number: 1, Matches: make([]Match, 0, n/2)}
	for i := 0; i < n/2; i++ {
		firstRound.Matches = append(firstRound.Matches, Match{
			UID:          matchUID(1, i),
			Round:        1,
			Slot:         i,
			ParticipantA: top[2*i].ParticipantID,
			ParticipantB: top[2*i+1].ParticipantID,
			Status:       StatusScheduled,
			Format:       FormatBestOfThree,
			Maps:         p.drawMaps(FormatBestOfThree),
			ScheduledAt:  start.Add(time.Duration(i) * time.Hour),
		})
	}
	playoff.Rounds = append(playoff.Rounds, firstRound)
	for r := 2; r <= numRounds; r++ {
		playoff.Rounds = append(playoff.Rounds, stubRound(r, n>>uint(r), FormatBestOfThree, start))
	}

	if err := playoff.validate(); err != nil {
		return err
	}
	sb.Playoff = playoff
	sb.PlayoffStarted = true
	return nil
}

// RankedStandings returns a copy of all standings in score-group order, the
// same ordering the pairer uses.
func RankedStandings(sb *SwissBracket) []Standing {
	return orderedStandings(sb.Standings, func(*Standing) bool { return true })
}

// orderedStandings copies the standings matching the filter and sorts them
// into score groups: wins descending, Buchholz descending, seed ascending as
// the final deterministic tie-break.
func orderedStandings(standings []Standing, keep func(*Standing) bool) []Standing {
	out := make([]Standing, 0, len(standings))
	for i := range standings {
		if keep(&standings[i]) {
			out = append(out, standings[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		if out[i].Buchholz != out[j].Buchholz {
			return out[i].Buchholz > out[j].Buchholz
		}
		return out[i].Seed < out[j].Seed
	})
	return out
}
