package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bracketlab/tournament-engine/engine"
	"github.com/bracketlab/tournament-engine/models"
	"github.com/bracketlab/tournament-engine/repositories"
)

// playoffUIDPrefix отличает матчи плей-офф от свисс-матчей в рамках одного
// турнира; внутри вложенной сетки UID остаются обычными R{n}M{k}.
const playoffUIDPrefix = "P"

type SubmitResultInput struct {
	MatchUID string `json:"match_uid"`
	ScoreA   int    `json:"score_a"`
	ScoreB   int    `json:"score_b"`
}

// MatchService applies reported results to the tournament's bracket document.
// Every submission follows the same shape: read the document at its current
// version, mutate it through the engine, write it back guarded by that
// version. A concurrent writer loses with ErrStaleBracketState and retries.
type MatchService interface {
	SubmitResult(ctx context.Context, tournamentID, userID int, input SubmitResultInput) (*models.Tournament, error)
	ListByTournament(ctx context.Context, tournamentID int, phase *models.BracketPhase, round *int, status *engine.MatchStatus) ([]*models.Match, error)
	Standings(ctx context.Context, tournamentID int) ([]engine.Standing, error)
}

type matchService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	bracketRepo    repositories.BracketRepository
	matchRepo      repositories.MatchRepository
	hub            Broadcaster
	logger         *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	bracketRepo repositories.BracketRepository,
	matchRepo repositories.MatchRepository,
	hub Broadcaster,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:             db,
		tournamentRepo: tournamentRepo,
		bracketRepo:    bracketRepo,
		matchRepo:      matchRepo,
		hub:            hub,
		logger:         logger,
	}
}

func (s *matchService) SubmitResult(ctx context.Context, tournamentID, userID int, input SubmitResultInput) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if tournament.OrganizerID != userID {
		return nil, ErrForbiddenOperation
	}
	if tournament.Status != models.StatusActive {
		return nil, ErrTournamentNotActive
	}

	doc, err := s.bracketRepo.Get(ctx, tournamentID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	bracket, swiss, err := decodeBracketDocument(doc)
	if err != nil {
		return nil, err
	}

	var (
		rows      []models.Match
		completed bool
	)
	switch doc.Phase {
	case models.PhaseElimination:
		roundNumber, matchIndex, parseErr := parseBracketUID(input.MatchUID)
		if parseErr != nil {
			return nil, parseErr
		}
		if err := engine.ApplyResult(bracket, roundNumber, matchIndex, input.ScoreA, input.ScoreB); err != nil {
			return nil, err
		}
		rows = projectElimination(tournamentID, bracket)
		completed = bracket.Completed
		tournament.Bracket = bracket

	case models.PhaseSwiss:
		if uid, isPlayoff := strings.CutPrefix(input.MatchUID, playoffUIDPrefix); isPlayoff {
			if swiss.Playoff == nil {
				return nil, ErrWrongBracketPhase
			}
			roundNumber, matchIndex, parseErr := parseBracketUID(uid)
			if parseErr != nil {
				return nil, parseErr
			}
			if err := engine.ApplyResult(swiss.Playoff, roundNumber, matchIndex, input.ScoreA, input.ScoreB); err != nil {
				return nil, err
			}
			completed = swiss.Playoff.Completed
		} else {
			if err := engine.ApplySwissResult(swiss, input.MatchUID, input.ScoreA, input.ScoreB); err != nil {
				return nil, err
			}
		}
		rows = projectSwiss(tournamentID, swiss)
		tournament.Swiss = swiss

	default:
		return nil, ErrWrongBracketPhase
	}

	newDoc, err := encodeBracketDocument(tournamentID, doc.Phase, docPayload(bracket, swiss))
	if err != nil {
		return nil, err
	}

	err = withTransaction(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.bracketRepo.Update(ctx, tx, newDoc, doc.Version); err != nil {
			return mapRepoError(err)
		}
		if err := s.matchRepo.ReplaceForPhase(ctx, tx, tournamentID, doc.Phase, rows); err != nil {
			return err
		}
		if completed {
			if err := s.tournamentRepo.UpdateStatus(ctx, tx, tournamentID, models.StatusCompleted); err != nil {
				return mapRepoError(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("match result applied",
		slog.Int("tournament_id", tournamentID),
		slog.String("match_uid", input.MatchUID),
		slog.Int("score_a", input.ScoreA),
		slog.Int("score_b", input.ScoreB),
	)

	room := engine.RoomID(tournamentID)
	s.hub.BroadcastToRoom(room, engine.Event{
		Type:         engine.EventMatchUpdated,
		TournamentID: tournamentID,
		Payload:      input,
	})
	if completed {
		tournament.Status = models.StatusCompleted
		s.hub.BroadcastToRoom(room, engine.Event{
			Type:         engine.EventTournamentCompleted,
			TournamentID: tournamentID,
			Payload:      docPayload(bracket, swiss),
		})
	}
	return tournament, nil
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int, phase *models.BracketPhase, round *int, status *engine.MatchStatus) ([]*models.Match, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, mapRepoError(err)
	}
	return s.matchRepo.ListByTournament(ctx, tournamentID, phase, round, status)
}

// Standings returns the current Swiss standings in score-group order.
func (s *matchService) Standings(ctx context.Context, tournamentID int) ([]engine.Standing, error) {
	doc, err := s.bracketRepo.Get(ctx, tournamentID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if doc.Phase != models.PhaseSwiss {
		return nil, ErrWrongBracketPhase
	}
	_, swiss, err := decodeBracketDocument(doc)
	if err != nil {
		return nil, err
	}
	return engine.RankedStandings(swiss), nil
}

// parseBracketUID splits a match UID of the form R{round}M{number} back into
// the 1-based round and 0-based match index the engine addresses matches by.
func parseBracketUID(uid string) (roundNumber, matchIndex int, err error) {
	var number int
	if _, scanErr := fmt.Sscanf(uid, "R%dM%d", &roundNumber, &number); scanErr != nil || number < 1 {
		return 0, 0, fmt.Errorf("%w: malformed match uid %q", engine.ErrMatchNotFound, uid)
	}
	return roundNumber, number - 1, nil
}

func docPayload(bracket *engine.Bracket, swiss *engine.SwissBracket) interface{} {
	if bracket != nil {
		return bracket
	}
	return swiss
}
