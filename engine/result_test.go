package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyResultScoreValidation(t *testing.T) {
	testCases := []struct {
		name           string
		scoreA, scoreB int
	}{
		{name: "draw", scoreA: 13, scoreB: 13},
		{name: "negative score A", scoreA: -1, scoreB: 5},
		{name: "negative score B", scoreA: 5, scoreB: -2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			bracket, err := NewSingleEliminationBuilder().Build(testRoster(4))
			require.NoError(t, err)

			err = ApplyResult(bracket, 1, 0, tc.scoreA, tc.scoreB)
			assert.ErrorIs(t, err, ErrInvalidScore)
			assert.Equal(t, StatusScheduled, bracket.Rounds[0].Matches[0].Status)
		})
	}
}

func TestApplyResultWinnerPropagation(t *testing.T) {
	bracket, err := NewSingleEliminationBuilder().Build(testRoster(8))
	require.NoError(t, err)

	// Complete round 1 so round 2 is fully populated.
	require.NoError(t, ApplyResult(bracket, 1, 0, 16, 7))
	require.NoError(t, ApplyResult(bracket, 1, 1, 16, 10))
	require.NoError(t, ApplyResult(bracket, 1, 2, 3, 16))
	require.NoError(t, ApplyResult(bracket, 1, 3, 16, 12))

	// Round 2 slot 1, score 16:14: winner goes to round 3 match 0, slot B.
	require.NoError(t, ApplyResult(bracket, 2, 1, 16, 14))
	semis := bracket.Rounds[1].Matches[1]
	final := bracket.Rounds[2].Matches[0]
	assert.Equal(t, semis.ParticipantA, semis.WinnerID)
	assert.Equal(t, semis.WinnerID, final.ParticipantB)
	assert.Equal(t, SlotTBD, final.ParticipantA)
	assert.False(t, bracket.Completed)
}

func TestApplyResultRejectsUndecidedMatch(t *testing.T) {
	bracket, err := NewSingleEliminationBuilder().Build(testRoster(4))
	require.NoError(t, err)

	// Round 2 is still TBD on both sides.
	err = ApplyResult(bracket, 2, 0, 16, 8)
	assert.ErrorIs(t, err, ErrMatchNotReady)
}

func TestApplyResultUnknownMatch(t *testing.T) {
	bracket, err := NewSingleEliminationBuilder().Build(testRoster(4))
	require.NoError(t, err)

	assert.ErrorIs(t, ApplyResult(bracket, 5, 0, 16, 8), ErrMatchNotFound)
	assert.ErrorIs(t, ApplyResult(bracket, 1, 9, 16, 8), ErrMatchNotFound)
}

func TestApplyResultAlreadyCompleted(t *testing.T) {
	bracket, err := NewSingleEliminationBuilder().Build(testRoster(4))
	require.NoError(t, err)

	require.NoError(t, ApplyResult(bracket, 1, 0, 16, 9))
	err = ApplyResult(bracket, 1, 0, 2, 16)
	assert.ErrorIs(t, err, ErrMatchAlreadyCompleted)

	// Первый результат остаётся нетронутым.
	m := bracket.Rounds[0].Matches[0]
	assert.Equal(t, 16, m.ScoreA)
	assert.Equal(t, 9, m.ScoreB)
	assert.Equal(t, "team-1", m.WinnerID)
}

func TestApplyResultCompletesBracket(t *testing.T) {
	bracket, err := NewSingleEliminationBuilder().Build(testRoster(4))
	require.NoError(t, err)

	require.NoError(t, ApplyResult(bracket, 1, 0, 16, 4))  // team-1 beats team-4
	require.NoError(t, ApplyResult(bracket, 1, 1, 11, 16)) // team-3 beats team-2
	require.NoError(t, ApplyResult(bracket, 2, 0, 16, 13)) // team-1 wins the final

	assert.True(t, bracket.Completed)
	assert.Equal(t, "team-1", bracket.ChampionID)

	// Exactly one completed match in the final round; every participant but
	// the champion lost somewhere.
	finalRound := bracket.Rounds[len(bracket.Rounds)-1]
	completed := 0
	for _, m := range finalRound.Matches {
		if m.Status == StatusCompleted {
			completed++
		}
	}
	assert.Equal(t, 1, completed)

	losers := map[string]bool{}
	for _, m := range bracket.AllMatches() {
		if m.Status != StatusCompleted {
			continue
		}
		if m.WinnerID == m.ParticipantA {
			losers[m.ParticipantB] = true
		} else {
			losers[m.ParticipantA] = true
		}
	}
	for _, p := range testRoster(4) {
		if p.ID == bracket.ChampionID {
			assert.False(t, losers[p.ID])
		} else {
			assert.True(t, losers[p.ID], "participant %s should have a loss", p.ID)
		}
	}
}

func TestApplySwissResultUpdatesStandings(t *testing.T) {
	sb, err := NewSwissBracket(testRoster(4), DefaultSwissConfig())
	require.NoError(t, err)

	pairer := newTestPairer(1)
	matches, err := pairer.NextRound(sb)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	sb.Matches = append(sb.Matches, matches...)
	sb.CurrentRound++

	m := sb.Matches[0]
	require.NoError(t, ApplySwissResult(sb, m.UID, 16, 6))

	winner := sb.Standing(m.ParticipantA)
	loser := sb.Standing(m.ParticipantB)
	assert.Equal(t, 1, winner.Wins)
	assert.Equal(t, 0, winner.Losses)
	assert.Equal(t, 0, loser.Wins)
	assert.Equal(t, 1, loser.Losses)
	assert.Equal(t, 3, winner.Buchholz)
	assert.Equal(t, 1, loser.Buchholz)
	assert.True(t, winner.HasPlayed(loser.ParticipantID))
	assert.True(t, loser.HasPlayed(winner.ParticipantID))
	assert.False(t, winner.Qualified)
	assert.False(t, loser.Eliminated)
}

func TestApplySwissResultIdempotentRejection(t *testing.T) {
	sb, err := NewSwissBracket(testRoster(4), DefaultSwissConfig())
	require.NoError(t, err)

	matches, err := newTestPairer(1).NextRound(sb)
	require.NoError(t, err)
	sb.Matches = append(sb.Matches, matches...)
	sb.CurrentRound++

	uid := sb.Matches[0].UID
	require.NoError(t, ApplySwissResult(sb, uid, 16, 6))
	snapshot := make([]Standing, len(sb.Standings))
	copy(snapshot, sb.Standings)

	err = ApplySwissResult(sb, uid, 0, 16)
	assert.ErrorIs(t, err, ErrMatchAlreadyCompleted)
	assert.Equal(t, snapshot, sb.Standings, "standings must not double-count")
}

func TestSwissThresholdsAreTerminal(t *testing.T) {
	sb, err := NewSwissBracket(testRoster(2), SwissConfig{WinThreshold: 2, LossThreshold: 2, MaxRounds: 3, QualificationSpots: 2})
	require.NoError(t, err)

	a := sb.Standings[0].ParticipantID
	b := sb.Standings[1].ParticipantID

	// Two straight wins for A qualify it and eliminate B.
	for round := 1; round <= 2; round++ {
		sb.Matches = append(sb.Matches, Match{
			UID: matchUID(round, 0), Round: round, Slot: 0,
			ParticipantA: a, ParticipantB: b,
			Status: StatusScheduled, Format: FormatBestOfOne,
		})
		sb.CurrentRound = round
		require.NoError(t, ApplySwissResult(sb, matchUID(round, 0), 16, 2))
	}

	sa := sb.Standing(a)
	sbStanding := sb.Standing(b)
	assert.True(t, sa.Qualified)
	assert.False(t, sa.Eliminated)
	assert.True(t, sbStanding.Eliminated)
	assert.False(t, sbStanding.Qualified)

	// Terminal participants never appear in later pairings.
	matches, err := newTestPairer(1).NextRound(sb)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
