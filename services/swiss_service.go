package services

import (
	"context"
	"database/sql"
	"log/slog"
	"math/rand"

	"github.com/bracketlab/tournament-engine/engine"
	"github.com/bracketlab/tournament-engine/models"
	"github.com/bracketlab/tournament-engine/repositories"
)

// SwissService drives the Swiss stage forward: generating the next round of
// pairings and closing the stage into the playoff bracket. Both operations go
// through the same versioned document write as result submission.
type SwissService interface {
	GenerateNextRound(ctx context.Context, tournamentID, userID int) (*engine.SwissBracket, error)
	StartPlayoffs(ctx context.Context, tournamentID, userID int) (*engine.SwissBracket, error)
}

type swissService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	bracketRepo    repositories.BracketRepository
	matchRepo      repositories.MatchRepository
	pairer         *engine.SwissPairer
	hub            Broadcaster
	logger         *slog.Logger
}

func NewSwissService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	bracketRepo repositories.BracketRepository,
	matchRepo repositories.MatchRepository,
	rnd *rand.Rand,
	hub Broadcaster,
	logger *slog.Logger,
) SwissService {
	return &swissService{
		db:             db,
		tournamentRepo: tournamentRepo,
		bracketRepo:    bracketRepo,
		matchRepo:      matchRepo,
		pairer:         engine.NewSwissPairer(rnd),
		hub:            hub,
		logger:         logger,
	}
}

func (s *swissService) GenerateNextRound(ctx context.Context, tournamentID, userID int) (*engine.SwissBracket, error) {
	swiss, doc, err := s.loadSwiss(ctx, tournamentID, userID)
	if err != nil {
		return nil, err
	}

	matches, err := s.pairer.NextRound(swiss)
	if err != nil {
		return nil, err
	}
	swiss.Matches = append(swiss.Matches, matches...)
	swiss.CurrentRound++

	if unpaired := engine.Unpaired(swiss, matches); len(unpaired) > 0 {
		s.logger.Warn("swiss round left participants without an opponent",
			slog.Int("tournament_id", tournamentID),
			slog.Int("round", swiss.CurrentRound),
			slog.Any("participants", unpaired),
		)
	}

	if err := s.saveSwiss(ctx, tournamentID, swiss, doc.Version); err != nil {
		return nil, err
	}

	s.logger.Info("swiss round generated",
		slog.Int("tournament_id", tournamentID),
		slog.Int("round", swiss.CurrentRound),
		slog.Int("matches", len(matches)),
	)
	s.hub.BroadcastToRoom(engine.RoomID(tournamentID), engine.Event{
		Type:         engine.EventSwissRoundGenerated,
		TournamentID: tournamentID,
		Payload:      matches,
	})
	return swiss, nil
}

func (s *swissService) StartPlayoffs(ctx context.Context, tournamentID, userID int) (*engine.SwissBracket, error) {
	swiss, doc, err := s.loadSwiss(ctx, tournamentID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.pairer.StartPlayoffs(swiss); err != nil {
		return nil, err
	}

	if err := s.saveSwiss(ctx, tournamentID, swiss, doc.Version); err != nil {
		return nil, err
	}

	s.logger.Info("playoffs started",
		slog.Int("tournament_id", tournamentID),
		slog.Int("field", swiss.Playoff.Size),
	)
	s.hub.BroadcastToRoom(engine.RoomID(tournamentID), engine.Event{
		Type:         engine.EventPlayoffsStarted,
		TournamentID: tournamentID,
		Payload:      swiss.Playoff,
	})
	return swiss, nil
}

func (s *swissService) loadSwiss(ctx context.Context, tournamentID, userID int) (*engine.SwissBracket, *repositories.BracketDocument, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, nil, mapRepoError(err)
	}
	if tournament.OrganizerID != userID {
		return nil, nil, ErrForbiddenOperation
	}
	if tournament.Status != models.StatusActive {
		return nil, nil, ErrTournamentNotActive
	}

	doc, err := s.bracketRepo.Get(ctx, tournamentID)
	if err != nil {
		return nil, nil, mapRepoError(err)
	}
	if doc.Phase != models.PhaseSwiss {
		return nil, nil, ErrWrongBracketPhase
	}
	_, swiss, err := decodeBracketDocument(doc)
	if err != nil {
		return nil, nil, err
	}
	return swiss, doc, nil
}

func (s *swissService) saveSwiss(ctx context.Context, tournamentID int, swiss *engine.SwissBracket, expectedVersion int) error {
	newDoc, err := encodeBracketDocument(tournamentID, models.PhaseSwiss, swiss)
	if err != nil {
		return err
	}
	rows := projectSwiss(tournamentID, swiss)
	return withTransaction(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.bracketRepo.Update(ctx, tx, newDoc, expectedVersion); err != nil {
			return mapRepoError(err)
		}
		return s.matchRepo.ReplaceForPhase(ctx, tx, tournamentID, models.PhaseSwiss, rows)
	})
}
