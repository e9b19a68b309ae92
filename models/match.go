package models

import (
	"time"

	"github.com/bracketlab/tournament-engine/engine"
)

// Match — строчная проекция матча из документа сетки. Источник истины —
// JSONB-документ на турнире; таблица matches перестраивается в той же
// транзакции и служит для фильтрованных выборок (раунд, статус).
type Match struct {
	ID           int                `json:"id" db:"id"`
	TournamentID int                `json:"tournament_id" db:"tournament_id"`
	Phase        BracketPhase       `json:"phase" db:"phase"`
	UID          string             `json:"uid" db:"uid"`
	Round        int                `json:"round" db:"round"`
	Slot         int                `json:"slot" db:"slot"`
	ParticipantA string             `json:"participant_a" db:"participant_a"`
	ParticipantB string             `json:"participant_b" db:"participant_b"`
	ScoreA       int                `json:"score_a" db:"score_a"`
	ScoreB       int                `json:"score_b" db:"score_b"`
	Status       engine.MatchStatus `json:"status" db:"status"`
	WinnerID     *string            `json:"winner_id,omitempty" db:"winner_id"`
	Format       engine.MatchFormat `json:"format" db:"format"`
	Maps         []string           `json:"maps,omitempty" db:"maps"`
	ScheduledAt  time.Time          `json:"scheduled_at" db:"scheduled_at"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`
}

// MatchFromEngine maps an engine match into its projection row.
func MatchFromEngine(tournamentID int, phase BracketPhase, m engine.Match) Match {
	row := Match{
		TournamentID: tournamentID,
		Phase:        phase,
		UID:          m.UID,
		Round:        m.Round,
		Slot:         m.Slot,
		ParticipantA: m.ParticipantA,
		ParticipantB: m.ParticipantB,
		ScoreA:       m.ScoreA,
		ScoreB:       m.ScoreB,
		Status:       m.Status,
		Format:       m.Format,
		Maps:         m.Maps,
		ScheduledAt:  m.ScheduledAt,
	}
	if m.WinnerID != "" {
		winner := m.WinnerID
		row.WinnerID = &winner
	}
	return row
}
