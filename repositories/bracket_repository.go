package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bracketlab/tournament-engine/models"
)

var (
	ErrBracketNotFound = errors.New("tournament has no bracket document")
	// ErrBracketVersionConflict сигнализирует о параллельной записи: кто-то
	// успел сохранить документ между нашим чтением и записью. Вызывающий
	// должен перечитать состояние и повторить операцию.
	ErrBracketVersionConflict = errors.New("bracket document version conflict")
	ErrBracketAlreadyExists   = errors.New("bracket document already exists")
)

// BracketDocument is the persisted progression state of one tournament: the
// raw JSON of an engine.Bracket or engine.SwissBracket plus the optimistic
// concurrency version that serializes writers per tournament.
type BracketDocument struct {
	TournamentID int
	Phase        models.BracketPhase
	Data         []byte
	Version      int
}

type BracketRepository interface {
	Get(ctx context.Context, tournamentID int) (*BracketDocument, error)
	// Create stores the initial document with version 1. Fails with
	// ErrBracketAlreadyExists if the tournament already has one.
	Create(ctx context.Context, exec SQLExecutor, doc *BracketDocument) error
	// Update persists a new revision; expectedVersion must match the stored
	// one or ErrBracketVersionConflict is returned and nothing is written.
	Update(ctx context.Context, exec SQLExecutor, doc *BracketDocument, expectedVersion int) error
}

type postgresBracketRepository struct {
	db *sql.DB
}

func NewPostgresBracketRepository(db *sql.DB) BracketRepository {
	return &postgresBracketRepository{db: db}
}

func (r *postgresBracketRepository) Get(ctx context.Context, tournamentID int) (*BracketDocument, error) {
	query := `
		SELECT bracket_phase, bracket_doc, bracket_version
		FROM tournaments
		WHERE id = $1`

	doc := &BracketDocument{TournamentID: tournamentID}
	var phase sql.NullString
	var data []byte
	err := r.db.QueryRowContext(ctx, query, tournamentID).Scan(&phase, &data, &doc.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if !phase.Valid || len(data) == 0 {
		return nil, ErrBracketNotFound
	}
	doc.Phase = models.BracketPhase(phase.String)
	doc.Data = data
	return doc, nil
}

func (r *postgresBracketRepository) Create(ctx context.Context, exec SQLExecutor, doc *BracketDocument) error {
	if exec == nil {
		exec = r.db
	}
	result, err := exec.ExecContext(ctx, `
		UPDATE tournaments
		SET bracket_phase = $1, bracket_doc = $2, bracket_version = 1
		WHERE id = $3 AND bracket_doc IS NULL`,
		doc.Phase, doc.Data, doc.TournamentID)
	if err != nil {
		return err
	}
	if err := checkAffectedRows(result, ErrBracketAlreadyExists); err != nil {
		return err
	}
	doc.Version = 1
	return nil
}

func (r *postgresBracketRepository) Update(ctx context.Context, exec SQLExecutor, doc *BracketDocument, expectedVersion int) error {
	if exec == nil {
		exec = r.db
	}
	result, err := exec.ExecContext(ctx, `
		UPDATE tournaments
		SET bracket_phase = $1, bracket_doc = $2, bracket_version = bracket_version + 1
		WHERE id = $3 AND bracket_version = $4`,
		doc.Phase, doc.Data, doc.TournamentID, expectedVersion)
	if err != nil {
		return err
	}
	if err := checkAffectedRows(result, ErrBracketVersionConflict); err != nil {
		return err
	}
	doc.Version = expectedVersion + 1
	return nil
}
