package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/bracketlab/tournament-engine/engine"
	"github.com/bracketlab/tournament-engine/models"
	"github.com/lib/pq"
)

var ErrMatchRowNotFound = errors.New("match row not found")

// MatchRepository maintains the denormalized match projection. The bracket
// document is the source of truth; ReplaceForPhase rebuilds the rows of one
// phase inside the same transaction that saves the document.
type MatchRepository interface {
	ReplaceForPhase(ctx context.Context, exec SQLExecutor, tournamentID int, phase models.BracketPhase, matches []models.Match) error
	ListByTournament(ctx context.Context, tournamentID int, phase *models.BracketPhase, round *int, status *engine.MatchStatus) ([]*models.Match, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) ReplaceForPhase(ctx context.Context, exec SQLExecutor, tournamentID int, phase models.BracketPhase, matches []models.Match) error {
	if exec == nil {
		exec = r.db
	}

	if _, err := exec.ExecContext(ctx,
		`DELETE FROM matches WHERE tournament_id = $1 AND phase = $2`,
		tournamentID, phase); err != nil {
		return err
	}

	query := `
		INSERT INTO matches
			(tournament_id, phase, uid, round, slot, participant_a, participant_b,
			 score_a, score_b, status, winner_id, format, maps, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	for i := range matches {
		m := &matches[i]
		if _, err := exec.ExecContext(ctx, query,
			tournamentID,
			phase,
			m.UID,
			m.Round,
			m.Slot,
			m.ParticipantA,
			m.ParticipantB,
			m.ScoreA,
			m.ScoreB,
			m.Status,
			m.WinnerID,
			m.Format,
			pq.Array(m.Maps),
			m.ScheduledAt,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int, phaseFilter *models.BracketPhase, roundFilter *int, statusFilter *engine.MatchStatus) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT id, tournament_id, phase, uid, round, slot, participant_a, participant_b,
		       score_a, score_b, status, winner_id, format, maps, scheduled_at, created_at
		FROM matches
		WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	appendFilter := func(clause string, value interface{}) {
		queryBuilder.WriteString(" AND " + clause + " = $" + strconv.Itoa(len(args)+1))
		args = append(args, value)
	}
	if phaseFilter != nil {
		appendFilter("phase", *phaseFilter)
	}
	if roundFilter != nil {
		appendFilter("round", *roundFilter)
	}
	if statusFilter != nil {
		appendFilter("status", *statusFilter)
	}
	queryBuilder.WriteString(" ORDER BY phase ASC, round ASC, slot ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var m models.Match
		if scanErr := rows.Scan(
			&m.ID,
			&m.TournamentID,
			&m.Phase,
			&m.UID,
			&m.Round,
			&m.Slot,
			&m.ParticipantA,
			&m.ParticipantB,
			&m.ScoreA,
			&m.ScoreB,
			&m.Status,
			&m.WinnerID,
			&m.Format,
			pq.Array(&m.Maps),
			&m.ScheduledAt,
			&m.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}
