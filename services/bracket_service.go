package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/bracketlab/tournament-engine/engine"
	"github.com/bracketlab/tournament-engine/models"
	"github.com/bracketlab/tournament-engine/repositories"
)

// BracketService builds the initial progression structure for a tournament:
// a full single-elimination bracket or a zeroed Swiss stage, depending on the
// tournament format. The engine computes the structure; this service owns
// loading the roster, the transactional save and the live broadcast.
type BracketService interface {
	Generate(ctx context.Context, tournamentID int, userID int) (*models.Tournament, error)
}

type bracketService struct {
	db              *sql.DB
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	bracketRepo     repositories.BracketRepository
	matchRepo       repositories.MatchRepository
	builder         *engine.SingleEliminationBuilder
	swissConfig     engine.SwissConfig
	hub             Broadcaster
	logger          *slog.Logger
}

func NewBracketService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	bracketRepo repositories.BracketRepository,
	matchRepo repositories.MatchRepository,
	hub Broadcaster,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		db:              db,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		bracketRepo:     bracketRepo,
		matchRepo:       matchRepo,
		builder:         engine.NewSingleEliminationBuilder(),
		swissConfig:     engine.DefaultSwissConfig(),
		hub:             hub,
		logger:          logger,
	}
}

func (s *bracketService) Generate(ctx context.Context, tournamentID int, userID int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if tournament.OrganizerID != userID {
		return nil, ErrForbiddenOperation
	}
	switch tournament.Status {
	case models.StatusRegistration, models.StatusActive:
	default:
		return nil, ErrTournamentNotActive
	}

	confirmed := models.ParticipantConfirmed
	participants, err := s.participantRepo.ListByTournament(ctx, tournamentID, &confirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to list confirmed participants for tournament %d: %w", tournamentID, err)
	}

	roster := make([]engine.Participant, 0, len(participants))
	for _, p := range participants {
		roster = append(roster, p.ToEngine())
	}

	var (
		doc   *repositories.BracketDocument
		rows  []models.Match
		event engine.Event
	)
	switch tournament.Format {
	case models.FormatSingleElimination:
		bracket, buildErr := s.builder.Build(roster)
		if buildErr != nil {
			return nil, buildErr
		}
		doc, err = encodeBracketDocument(tournamentID, models.PhaseElimination, bracket)
		if err != nil {
			return nil, err
		}
		rows = projectElimination(tournamentID, bracket)
		event = engine.Event{Type: engine.EventBracketCreated, TournamentID: tournamentID, Payload: bracket}
		tournament.Bracket = bracket

	case models.FormatSwiss:
		swiss, buildErr := engine.NewSwissBracket(roster, s.swissConfig)
		if buildErr != nil {
			return nil, buildErr
		}
		doc, err = encodeBracketDocument(tournamentID, models.PhaseSwiss, swiss)
		if err != nil {
			return nil, err
		}
		rows = projectSwiss(tournamentID, swiss)
		event = engine.Event{Type: engine.EventBracketCreated, TournamentID: tournamentID, Payload: swiss}
		tournament.Swiss = swiss

	default:
		return nil, fmt.Errorf("%w: %q", ErrTournamentInvalidFormat, tournament.Format)
	}

	err = withTransaction(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.bracketRepo.Create(ctx, tx, doc); err != nil {
			return mapRepoError(err)
		}
		if err := s.matchRepo.ReplaceForPhase(ctx, tx, tournamentID, doc.Phase, rows); err != nil {
			return err
		}
		if tournament.Status != models.StatusActive {
			if err := s.tournamentRepo.UpdateStatus(ctx, tx, tournamentID, models.StatusActive); err != nil {
				return mapRepoError(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	tournament.Status = models.StatusActive

	s.logger.Info("bracket generated",
		slog.Int("tournament_id", tournamentID),
		slog.String("format", string(tournament.Format)),
		slog.Int("participants", len(roster)),
	)
	s.hub.BroadcastToRoom(engine.RoomID(tournamentID), event)
	return tournament, nil
}
