package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoster(n int) []Participant {
	roster := make([]Participant, 0, n)
	for i := 1; i <= n; i++ {
		roster = append(roster, Participant{
			ID:          fmt.Sprintf("team-%d", i),
			DisplayName: fmt.Sprintf("Team %d", i),
			Seed:        i,
		})
	}
	return roster
}

func TestBuildBracketStructure(t *testing.T) {
	testCases := []struct {
		participants int
		wantSize     int
		wantRounds   int
		wantByes     int
	}{
		{participants: 2, wantSize: 2, wantRounds: 1, wantByes: 0},
		{participants: 3, wantSize: 4, wantRounds: 2, wantByes: 1},
		{participants: 4, wantSize: 4, wantRounds: 2, wantByes: 0},
		{participants: 5, wantSize: 8, wantRounds: 3, wantByes: 3},
		{participants: 8, wantSize: 8, wantRounds: 3, wantByes: 0},
		{participants: 9, wantSize: 16, wantRounds: 4, wantByes: 7},
		{participants: 16, wantSize: 16, wantRounds: 4, wantByes: 0},
	}

	builder := NewSingleEliminationBuilder()
	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%d participants", tc.participants), func(t *testing.T) {
			bracket, err := builder.Build(testRoster(tc.participants))
			require.NoError(t, err)

			assert.Equal(t, tc.wantSize, bracket.Size)
			assert.Equal(t, tc.wantByes, bracket.ByeCount)
			require.Len(t, bracket.Rounds, tc.wantRounds)
			assert.Len(t, bracket.Rounds[0].Matches, tc.wantSize/2)
			assert.Len(t, bracket.Rounds[tc.wantRounds-1].Matches, 1)

			// Every slot is populated with a participant, TBD or BYE.
			for _, round := range bracket.Rounds {
				for _, m := range round.Matches {
					assert.NotEmpty(t, m.ParticipantA, "match %s", m.UID)
					assert.NotEmpty(t, m.ParticipantB, "match %s", m.UID)
					assert.True(t, m.Status.Valid(), "match %s", m.UID)
				}
			}
		})
	}
}

func TestBuildBracketFiveTeamSeeding(t *testing.T) {
	bracket, err := NewSingleEliminationBuilder().Build(testRoster(5))
	require.NoError(t, err)

	require.Equal(t, 8, bracket.Size)
	require.Len(t, bracket.Rounds, 3)
	round1 := bracket.Rounds[0].Matches
	require.Len(t, round1, 4)

	// Top seed meets the bye occupying the lowest seed slot (position 8).
	assert.Equal(t, "team-1", round1[0].ParticipantA)
	assert.Equal(t, SlotBye, round1[0].ParticipantB)
	// The only real pairing is seed 4 vs seed 5.
	assert.Equal(t, "team-4", round1[3].ParticipantA)
	assert.Equal(t, "team-5", round1[3].ParticipantB)

	// Bye pairings complete as walkovers and advance the real entrant.
	for i := 0; i < 3; i++ {
		m := round1[i]
		assert.Equal(t, StatusCompleted, m.Status, "match %s", m.UID)
		assert.Equal(t, m.ParticipantA, m.WinnerID, "match %s", m.UID)
		assert.NotEqual(t, m.ScoreA, m.ScoreB, "match %s", m.UID)
	}
	assert.Equal(t, StatusScheduled, round1[3].Status)

	round2 := bracket.Rounds[1].Matches
	assert.Equal(t, "team-1", round2[0].ParticipantA)
	assert.Equal(t, "team-2", round2[0].ParticipantB)
	assert.Equal(t, "team-3", round2[1].ParticipantA)
	assert.Equal(t, SlotTBD, round2[1].ParticipantB)
}

func TestBuildBracketMatchUIDs(t *testing.T) {
	bracket, err := NewSingleEliminationBuilder().Build(testRoster(8))
	require.NoError(t, err)

	assert.Equal(t, "R1M1", bracket.Rounds[0].Matches[0].UID)
	assert.Equal(t, "R1M4", bracket.Rounds[0].Matches[3].UID)
	assert.Equal(t, "R2M2", bracket.Rounds[1].Matches[1].UID)
	assert.Equal(t, "R3M1", bracket.Rounds[2].Matches[0].UID)
}

func TestBuildBracketInvalidRoster(t *testing.T) {
	testCases := []struct {
		name   string
		roster []Participant
	}{
		{
			name:   "empty roster",
			roster: nil,
		},
		{
			name:   "single participant",
			roster: testRoster(1),
		},
		{
			name: "missing display name",
			roster: []Participant{
				{ID: "a", DisplayName: "Alpha", Seed: 1},
				{ID: "b", DisplayName: "   ", Seed: 2},
			},
		},
		{
			name: "duplicate seeds",
			roster: []Participant{
				{ID: "a", DisplayName: "Alpha", Seed: 1},
				{ID: "b", DisplayName: "Bravo", Seed: 1},
			},
		},
		{
			name: "duplicate ids",
			roster: []Participant{
				{ID: "a", DisplayName: "Alpha", Seed: 1},
				{ID: "a", DisplayName: "Bravo", Seed: 2},
			},
		},
		{
			name: "non-positive seed",
			roster: []Participant{
				{ID: "a", DisplayName: "Alpha", Seed: 0},
				{ID: "b", DisplayName: "Bravo", Seed: 2},
			},
		},
		{
			name: "reserved id",
			roster: []Participant{
				{ID: SlotBye, DisplayName: "Alpha", Seed: 1},
				{ID: "b", DisplayName: "Bravo", Seed: 2},
			},
		},
	}

	builder := NewSingleEliminationBuilder()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			bracket, err := builder.Build(tc.roster)
			assert.Nil(t, bracket)
			assert.ErrorIs(t, err, ErrInvalidRoster)
		})
	}
}
