package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/bracketlab/tournament-engine/models"
	"github.com/bracketlab/tournament-engine/repositories"
	"github.com/bracketlab/tournament-engine/storage"
	"golang.org/x/sync/errgroup"
)

type CreateTournamentInput struct {
	Name            string                  `json:"name"`
	Description     *string                 `json:"description"`
	Game            string                  `json:"game"`
	Format          models.TournamentFormat `json:"format"`
	RegDate         time.Time               `json:"reg_date"`
	StartDate       time.Time               `json:"start_date"`
	EndDate         time.Time               `json:"end_date"`
	MaxParticipants int                     `json:"max_participants"`
}

type TournamentService interface {
	Create(ctx context.Context, organizerID int, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, status *models.TournamentStatus) ([]*models.Tournament, error)
	Cancel(ctx context.Context, id int, userID int) error
	UploadLogo(ctx context.Context, id int, userID int, contentType string, reader io.Reader) (*models.Tournament, error)
	AutoUpdateStatusesByDates(ctx context.Context) error
}

type tournamentService struct {
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	bracketRepo     repositories.BracketRepository
	uploader        storage.FileUploader
	logger          *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	bracketRepo repositories.BracketRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		bracketRepo:     bracketRepo,
		uploader:        uploader,
		logger:          logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, organizerID int, input CreateTournamentInput) (*models.Tournament, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrTournamentNameRequired
	}
	switch input.Format {
	case models.FormatSingleElimination, models.FormatSwiss:
	default:
		return nil, fmt.Errorf("%w: %q", ErrTournamentInvalidFormat, input.Format)
	}
	if !input.RegDate.Before(input.StartDate) {
		return nil, ErrTournamentInvalidRegDate
	}
	if !input.StartDate.Before(input.EndDate) {
		return nil, ErrTournamentInvalidDateRange
	}
	if input.MaxParticipants <= 1 {
		return nil, ErrTournamentInvalidCapacity
	}

	tournament := &models.Tournament{
		Name:            strings.TrimSpace(input.Name),
		Description:     input.Description,
		Game:            input.Game,
		Format:          input.Format,
		OrganizerID:     organizerID,
		RegDate:         input.RegDate,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		Status:          models.StatusSoon,
		MaxParticipants: input.MaxParticipants,
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, mapRepoError(err)
	}
	return tournament, nil
}

// GetByID собирает турнир вместе со связанными данными параллельно:
// участники, проекция матчей и документ сетки.
func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	s.fillLogoURL(tournament)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		participants, err := s.participantRepo.ListByTournament(gCtx, id, nil)
		if err != nil {
			return fmt.Errorf("failed to list participants for tournament %d: %w", id, err)
		}
		tournament.Participants = make([]models.Participant, len(participants))
		for i, p := range participants {
			tournament.Participants[i] = *p
		}
		return nil
	})

	g.Go(func() error {
		matches, err := s.matchRepo.ListByTournament(gCtx, id, nil, nil, nil)
		if err != nil {
			return fmt.Errorf("failed to list matches for tournament %d: %w", id, err)
		}
		tournament.Matches = make([]models.Match, len(matches))
		for i, m := range matches {
			tournament.Matches[i] = *m
		}
		return nil
	})

	g.Go(func() error {
		doc, err := s.bracketRepo.Get(gCtx, id)
		if err != nil {
			if mapRepoError(err) == ErrBracketNotGenerated {
				return nil
			}
			return fmt.Errorf("failed to load bracket for tournament %d: %w", id, err)
		}
		bracket, swiss, err := decodeBracketDocument(doc)
		if err != nil {
			return err
		}
		tournament.Bracket = bracket
		tournament.Swiss = swiss
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context, status *models.TournamentStatus) ([]*models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, status)
	if err != nil {
		return nil, err
	}
	for _, t := range tournaments {
		s.fillLogoURL(t)
	}
	return tournaments, nil
}

func (s *tournamentService) Cancel(ctx context.Context, id int, userID int) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return mapRepoError(err)
	}
	if tournament.OrganizerID != userID {
		return ErrForbiddenOperation
	}
	if tournament.Status == models.StatusCompleted {
		return fmt.Errorf("%w: tournament is already completed", ErrValidationFailed)
	}
	return mapRepoError(s.tournamentRepo.UpdateStatus(ctx, nil, id, models.StatusCanceled))
}

func (s *tournamentService) UploadLogo(ctx context.Context, id int, userID int, contentType string, reader io.Reader) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if tournament.OrganizerID != userID {
		return nil, ErrForbiddenOperation
	}

	key := fmt.Sprintf("tournaments/%d/logo", id)
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload tournament logo: %w", err)
	}
	if err := s.tournamentRepo.UpdateLogoKey(ctx, id, &result.Key); err != nil {
		return nil, mapRepoError(err)
	}
	tournament.LogoKey = &result.Key
	s.fillLogoURL(tournament)
	return tournament, nil
}

// AutoUpdateStatusesByDates запускается планировщиком из cmd/main.go.
func (s *tournamentService) AutoUpdateStatusesByDates(ctx context.Context) error {
	updated, err := s.tournamentRepo.AutoAdvanceStatuses(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("failed to auto-advance tournament statuses: %w", err)
	}
	if updated > 0 {
		s.logger.Info("tournament statuses advanced by schedule", slog.Int64("updated", updated))
	}
	return nil
}

func (s *tournamentService) fillLogoURL(t *models.Tournament) {
	if t.LogoKey != nil && s.uploader != nil {
		if url := s.uploader.GetPublicURL(*t.LogoKey); url != "" {
			t.LogoURL = &url
		}
	}
}
