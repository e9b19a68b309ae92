package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bracketlab/tournament-engine/engine"
	"github.com/bracketlab/tournament-engine/models"
	"github.com/bracketlab/tournament-engine/repositories"
)

// Broadcaster is the slice of the websocket hub the services need. Satisfied
// by *engine.Hub; tests substitute a recorder.
type Broadcaster interface {
	BroadcastToRoom(room string, event engine.Event)
}

// withTransaction runs fn inside a transaction, committing on nil and rolling
// back on error or panic.
func withTransaction(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func mapRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrParticipantNotFound):
		return ErrParticipantNotFound
	case errors.Is(err, repositories.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repositories.ErrUserEmailConflict):
		return ErrUserEmailConflict
	case errors.Is(err, repositories.ErrUserNicknameConflict):
		return ErrUserNicknameConflict
	case errors.Is(err, repositories.ErrTournamentNameConflict):
		return ErrTournamentNameConflict
	case errors.Is(err, repositories.ErrParticipantSeedConflict):
		return ErrSeedConflict
	case errors.Is(err, repositories.ErrBracketNotFound):
		return ErrBracketNotGenerated
	case errors.Is(err, repositories.ErrBracketAlreadyExists):
		return ErrBracketAlreadyExists
	case errors.Is(err, repositories.ErrBracketVersionConflict):
		return ErrStaleBracketState
	default:
		return err
	}
}

// decodeBracketDocument разворачивает JSONB-документ в структуру движка
// согласно фазе.
func decodeBracketDocument(doc *repositories.BracketDocument) (*engine.Bracket, *engine.SwissBracket, error) {
	switch doc.Phase {
	case models.PhaseElimination:
		var bracket engine.Bracket
		if err := json.Unmarshal(doc.Data, &bracket); err != nil {
			return nil, nil, fmt.Errorf("failed to decode elimination bracket: %w", err)
		}
		return &bracket, nil, nil
	case models.PhaseSwiss:
		var swiss engine.SwissBracket
		if err := json.Unmarshal(doc.Data, &swiss); err != nil {
			return nil, nil, fmt.Errorf("failed to decode swiss bracket: %w", err)
		}
		return nil, &swiss, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown phase %q", ErrBracketNotGenerated, doc.Phase)
	}
}

func encodeBracketDocument(tournamentID int, phase models.BracketPhase, v interface{}) (*repositories.BracketDocument, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode bracket document: %w", err)
	}
	return &repositories.BracketDocument{
		TournamentID: tournamentID,
		Phase:        phase,
		Data:         data,
	}, nil
}

// projectElimination flattens an elimination bracket into projection rows.
func projectElimination(tournamentID int, b *engine.Bracket) []models.Match {
	all := b.AllMatches()
	rows := make([]models.Match, 0, len(all))
	for _, m := range all {
		rows = append(rows, models.MatchFromEngine(tournamentID, models.PhaseElimination, m))
	}
	return rows
}

// projectSwiss flattens a swiss bracket (and its playoff, if started) into
// projection rows. Playoff match UIDs are prefixed to stay unique within the
// tournament.
func projectSwiss(tournamentID int, sb *engine.SwissBracket) []models.Match {
	rows := make([]models.Match, 0, len(sb.Matches))
	for _, m := range sb.Matches {
		rows = append(rows, models.MatchFromEngine(tournamentID, models.PhaseSwiss, m))
	}
	if sb.Playoff != nil {
		for _, m := range sb.Playoff.AllMatches() {
			row := models.MatchFromEngine(tournamentID, models.PhaseSwiss, m)
			row.UID = "P" + row.UID
			rows = append(rows, row)
		}
	}
	return rows
}
