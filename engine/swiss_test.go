package engine

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPairer(seed int64) *SwissPairer {
	p := NewSwissPairer(rand.New(rand.NewSource(seed)))
	p.now = func() time.Time {
		return time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	}
	return p
}

func setStanding(t *testing.T, sb *SwissBracket, id string, wins, losses int, history ...string) {
	t.Helper()
	s := sb.Standing(id)
	require.NotNil(t, s, "unknown standing %s", id)
	s.Wins = wins
	s.Losses = losses
	s.Buchholz = wins*buchholzWinWeight + losses*buchholzLossWeight
	s.OpponentHistory = history
}

func fourTeamSwiss(t *testing.T) *SwissBracket {
	t.Helper()
	roster := []Participant{
		{ID: "A", DisplayName: "Team A", Seed: 1},
		{ID: "B", DisplayName: "Team B", Seed: 2},
		{ID: "C", DisplayName: "Team C", Seed: 3},
		{ID: "D", DisplayName: "Team D", Seed: 4},
	}
	sb, err := NewSwissBracket(roster, DefaultSwissConfig())
	require.NoError(t, err)
	return sb
}

func TestNextRoundPairsScoreGroups(t *testing.T) {
	sb := fourTeamSwiss(t)
	sb.CurrentRound = 2
	setStanding(t, sb, "A", 2, 0, "C", "D")
	setStanding(t, sb, "B", 2, 0, "D", "C")
	setStanding(t, sb, "C", 1, 1, "A", "B")
	setStanding(t, sb, "D", 0, 2, "B", "A")

	matches, err := newTestPairer(7).NextRound(sb)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	// A and B lead their score group and have not met: they must pair.
	assert.Equal(t, "A", matches[0].ParticipantA)
	assert.Equal(t, "B", matches[0].ParticipantB)
	assert.Equal(t, "C", matches[1].ParticipantA)
	assert.Equal(t, "D", matches[1].ParticipantB)
	assert.Equal(t, 3, matches[0].Round)
	assert.Equal(t, "R3M1", matches[0].UID)
}

func TestNextRoundAvoidsRematch(t *testing.T) {
	sb := fourTeamSwiss(t)
	sb.CurrentRound = 2
	// A already played B: the engine must fall through to the next eligible
	// candidate in descending wins/buchholz order.
	setStanding(t, sb, "A", 2, 0, "B", "D")
	setStanding(t, sb, "B", 2, 0, "A", "C")
	setStanding(t, sb, "C", 1, 1, "B", "D")
	setStanding(t, sb, "D", 1, 1, "A", "C")

	matches, err := newTestPairer(7).NextRound(sb)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "A", matches[0].ParticipantA)
	assert.Equal(t, "C", matches[0].ParticipantB)
	assert.Equal(t, "B", matches[1].ParticipantA)
	assert.Equal(t, "D", matches[1].ParticipantB)

	for _, m := range matches {
		a := sb.Standing(m.ParticipantA)
		assert.False(t, a.HasPlayed(m.ParticipantB), "rematch %s vs %s", m.ParticipantA, m.ParticipantB)
	}
}

func TestNextRoundRequiresCompletedRound(t *testing.T) {
	sb := fourTeamSwiss(t)
	matches, err := newTestPairer(7).NextRound(sb)
	require.NoError(t, err)
	sb.Matches = append(sb.Matches, matches...)
	sb.CurrentRound++

	_, err = newTestPairer(7).NextRound(sb)
	assert.ErrorIs(t, err, ErrRoundNotComplete)

	// Cancelled matches count as terminal.
	for i := range sb.Matches {
		sb.Matches[i].Status = StatusCancelled
	}
	_, err = newTestPairer(7).NextRound(sb)
	assert.NoError(t, err)
}

func TestNextRoundLeavesOddParticipantUnpaired(t *testing.T) {
	sb := fourTeamSwiss(t)
	sb.Standing("D").Eliminated = true

	matches, err := newTestPairer(7).NextRound(sb)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	unpaired := Unpaired(sb, matches)
	require.Len(t, unpaired, 1)
	assert.Equal(t, "C", unpaired[0])

	// No bye win: the standing is untouched.
	s := sb.Standing("C")
	assert.Zero(t, s.Wins)
	assert.Zero(t, s.Losses)
}

func TestNextRoundFormats(t *testing.T) {
	sb := fourTeamSwiss(t)
	pairer := newTestPairer(7)

	matches, err := pairer.NextRound(sb)
	require.NoError(t, err)
	for _, m := range matches {
		assert.Equal(t, FormatBestOfOne, m.Format)
		assert.Len(t, m.Maps, 1)
		assert.True(t, m.ScheduledAt.After(pairer.now().Add(-time.Minute)))
		assert.True(t, m.ScheduledAt.Before(pairer.now().Add(24*time.Hour)))
	}

	// Final swiss round is best-of-three with three distinct maps.
	sb.CurrentRound = sb.MaxRounds - 1
	matches, err = pairer.NextRound(sb)
	require.NoError(t, err)
	for _, m := range matches {
		assert.Equal(t, FormatBestOfThree, m.Format)
		require.Len(t, m.Maps, 3)
		seen := map[string]bool{}
		for _, name := range m.Maps {
			assert.False(t, seen[name], "map %s drawn twice", name)
			seen[name] = true
		}
	}
}

func TestNextRoundDeterministicWithSeededSource(t *testing.T) {
	first, err := newTestPairer(42).NextRound(fourTeamSwiss(t))
	require.NoError(t, err)
	second, err := newTestPairer(42).NextRound(fourTeamSwiss(t))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func sixteenTeamSwiss(t *testing.T) *SwissBracket {
	t.Helper()
	sb, err := NewSwissBracket(testRoster(16), DefaultSwissConfig())
	require.NoError(t, err)
	return sb
}

func TestStartPlayoffsSeedsTopQualified(t *testing.T) {
	sb := sixteenTeamSwiss(t)
	// Final records of a finished 16-team swiss: eight sides on three wins.
	wins := map[string]int{
		"team-1": 3, "team-2": 3, "team-3": 3, "team-4": 3,
		"team-5": 3, "team-6": 3, "team-7": 3, "team-8": 3,
	}
	for i := range sb.Standings {
		s := &sb.Standings[i]
		if w, ok := wins[s.ParticipantID]; ok {
			s.Wins = w
			s.Losses = 5 - w - 2
			s.Qualified = true
		} else {
			s.Wins = 1
			s.Losses = 3
			s.Eliminated = true
		}
		s.Buchholz = s.Wins*buchholzWinWeight + s.Losses*buchholzLossWeight
	}
	// Distinct buchholz to pin ordering: team-1 strongest.
	for i := range sb.Standings {
		s := &sb.Standings[i]
		if s.Qualified {
			s.Buchholz += 16 - s.Seed
		}
	}
	sb.CurrentRound = sb.MaxRounds

	pairer := newTestPairer(9)
	require.NoError(t, pairer.StartPlayoffs(sb))

	assert.True(t, sb.PlayoffStarted)
	require.NotNil(t, sb.Playoff)
	assert.Equal(t, 8, sb.Playoff.Size)
	require.Len(t, sb.Playoff.Rounds, 3)

	// Consecutive pairing in standings order: [0] vs [1], [2] vs [3], …
	round1 := sb.Playoff.Rounds[0].Matches
	require.Len(t, round1, 4)
	assert.Equal(t, "team-1", round1[0].ParticipantA)
	assert.Equal(t, "team-2", round1[0].ParticipantB)
	assert.Equal(t, "team-7", round1[3].ParticipantA)
	assert.Equal(t, "team-8", round1[3].ParticipantB)

	for i, m := range round1 {
		assert.Equal(t, FormatBestOfThree, m.Format)
		if i > 0 {
			assert.Equal(t, time.Hour, m.ScheduledAt.Sub(round1[i-1].ScheduledAt))
		}
	}

	// Second call must be rejected.
	assert.ErrorIs(t, pairer.StartPlayoffs(sb), ErrPlayoffAlreadyStarted)
	// And the swiss stage no longer generates rounds.
	_, err := pairer.NextRound(sb)
	assert.ErrorIs(t, err, ErrPlayoffAlreadyStarted)
}

func TestStartPlayoffsClampsFieldToPowerOfTwo(t *testing.T) {
	sb := sixteenTeamSwiss(t)
	for i := range sb.Standings {
		s := &sb.Standings[i]
		if s.Seed <= 6 {
			s.Wins = 3
			s.Qualified = true
		} else {
			s.Losses = 3
			s.Eliminated = true
		}
		s.Buchholz = s.Wins*buchholzWinWeight + s.Losses*buchholzLossWeight
	}

	require.NoError(t, newTestPairer(9).StartPlayoffs(sb))
	// Six qualified: the field is clamped down to four so the embedded
	// bracket stays structurally complete.
	assert.Equal(t, 4, sb.Playoff.Size)
	require.Len(t, sb.Playoff.Rounds, 2)
}

func TestStartPlayoffsNotEnoughQualified(t *testing.T) {
	sb := fourTeamSwiss(t)
	sb.Standing("A").Qualified = true
	sb.Standing("A").Wins = 3

	err := newTestPairer(9).StartPlayoffs(sb)
	assert.ErrorIs(t, err, ErrNotEnoughQualified)
	assert.False(t, sb.PlayoffStarted)
}

func TestPlayoffResultsFlowThroughBracket(t *testing.T) {
	sb := sixteenTeamSwiss(t)
	for i := range sb.Standings {
		s := &sb.Standings[i]
		if s.Seed <= 8 {
			s.Wins = 3
			s.Qualified = true
		} else {
			s.Losses = 3
			s.Eliminated = true
		}
		s.Buchholz = s.Wins*buchholzWinWeight + s.Losses*buchholzLossWeight
	}
	require.NoError(t, newTestPairer(9).StartPlayoffs(sb))

	require.NoError(t, ApplyResult(sb.Playoff, 1, 0, 2, 1))
	require.NoError(t, ApplyResult(sb.Playoff, 1, 1, 0, 2))

	semi := sb.Playoff.Rounds[1].Matches[0]
	assert.NotEqual(t, SlotTBD, semi.ParticipantA)
	assert.NotEqual(t, SlotTBD, semi.ParticipantB)
}
