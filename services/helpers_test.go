package services

import (
	"testing"
	"time"

	"github.com/bracketlab/tournament-engine/engine"
	"github.com/bracketlab/tournament-engine/models"
	"github.com/bracketlab/tournament-engine/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBracketUID(t *testing.T) {
	tests := []struct {
		uid       string
		wantRound int
		wantIndex int
		wantErr   bool
	}{
		{uid: "R1M1", wantRound: 1, wantIndex: 0},
		{uid: "R3M4", wantRound: 3, wantIndex: 3},
		{uid: "R12M16", wantRound: 12, wantIndex: 15},
		{uid: "R1M0", wantErr: true},
		{uid: "M1R1", wantErr: true},
		{uid: "garbage", wantErr: true},
		{uid: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.uid, func(t *testing.T) {
			round, index, err := parseBracketUID(tt.uid)
			if tt.wantErr {
				assert.ErrorIs(t, err, engine.ErrMatchNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRound, round)
			assert.Equal(t, tt.wantIndex, index)
		})
	}
}

func TestMapRepoError(t *testing.T) {
	assert.NoError(t, mapRepoError(nil))
	assert.ErrorIs(t, mapRepoError(repositories.ErrTournamentNotFound), ErrTournamentNotFound)
	assert.ErrorIs(t, mapRepoError(repositories.ErrBracketNotFound), ErrBracketNotGenerated)
	assert.ErrorIs(t, mapRepoError(repositories.ErrBracketVersionConflict), ErrStaleBracketState)
	assert.ErrorIs(t, mapRepoError(repositories.ErrBracketAlreadyExists), ErrBracketAlreadyExists)
}

func TestBracketDocumentRoundTrip(t *testing.T) {
	roster := []engine.Participant{
		{ID: "alpha", DisplayName: "Alpha", Seed: 1},
		{ID: "beta", DisplayName: "Beta", Seed: 2},
		{ID: "gamma", DisplayName: "Gamma", Seed: 3},
		{ID: "delta", DisplayName: "Delta", Seed: 4},
	}

	builder := engine.NewSingleEliminationBuilder()
	bracket, err := builder.Build(roster)
	require.NoError(t, err)

	doc, err := encodeBracketDocument(7, models.PhaseElimination, bracket)
	require.NoError(t, err)
	assert.Equal(t, 7, doc.TournamentID)
	assert.Equal(t, models.PhaseElimination, doc.Phase)

	decoded, swiss, err := decodeBracketDocument(doc)
	require.NoError(t, err)
	assert.Nil(t, swiss)
	assert.Equal(t, bracket.Size, decoded.Size)
	assert.Equal(t, len(bracket.Rounds), len(decoded.Rounds))
	assert.Equal(t, bracket.Rounds[0].Matches[0].UID, decoded.Rounds[0].Matches[0].UID)
}

func TestDecodeBracketDocumentUnknownPhase(t *testing.T) {
	doc := &repositories.BracketDocument{
		TournamentID: 1,
		Phase:        models.BracketPhase("groups"),
		Data:         []byte("{}"),
	}
	_, _, err := decodeBracketDocument(doc)
	assert.Error(t, err)
}

func TestProjectSwissPrefixesPlayoffUIDs(t *testing.T) {
	swiss := &engine.SwissBracket{
		CurrentRound: 1,
		Matches: []engine.Match{
			{
				UID:          "R1M1",
				Round:        1,
				ParticipantA: "alpha",
				ParticipantB: "beta",
				Status:       engine.StatusCompleted,
				ScheduledAt:  time.Now(),
			},
		},
		Playoff: &engine.Bracket{
			Size: 2,
			Rounds: []engine.Round{
				{
					Number: 1,
					Matches: []engine.Match{
						{
							UID:          "R1M1",
							Round:        1,
							ParticipantA: "alpha",
							ParticipantB: "beta",
							Status:       engine.StatusScheduled,
							ScheduledAt:  time.Now(),
						},
					},
				},
			},
		},
		PlayoffStarted: true,
	}

	rows := projectSwiss(42, swiss)
	require.Len(t, rows, 2)
	assert.Equal(t, "R1M1", rows[0].UID)
	assert.Equal(t, "PR1M1", rows[1].UID)
	for _, row := range rows {
		assert.Equal(t, 42, row.TournamentID)
		assert.Equal(t, models.PhaseSwiss, row.Phase)
	}
}
