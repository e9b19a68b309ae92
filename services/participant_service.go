package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/bracketlab/tournament-engine/models"
	"github.com/bracketlab/tournament-engine/repositories"
)

type RegisterParticipantInput struct {
	DisplayName string   `json:"display_name"`
	Tag         *string  `json:"tag"`
	Members     []string `json:"members"`
	Seed        int      `json:"seed"`
}

type ParticipantService interface {
	Register(ctx context.Context, tournamentID int, input RegisterParticipantInput) (*models.Participant, error)
	Confirm(ctx context.Context, tournamentID, participantID int) error
	SetSeed(ctx context.Context, tournamentID, participantID, seed int) error
	ListByTournament(ctx context.Context, tournamentID int, status *models.ParticipantStatus) ([]*models.Participant, error)
	Withdraw(ctx context.Context, tournamentID, participantID int) error
}

type participantService struct {
	participantRepo repositories.ParticipantRepository
	tournamentRepo  repositories.TournamentRepository
}

func NewParticipantService(
	participantRepo repositories.ParticipantRepository,
	tournamentRepo repositories.TournamentRepository,
) ParticipantService {
	return &participantService{
		participantRepo: participantRepo,
		tournamentRepo:  tournamentRepo,
	}
}

func (s *participantService) Register(ctx context.Context, tournamentID int, input RegisterParticipantInput) (*models.Participant, error) {
	if strings.TrimSpace(input.DisplayName) == "" {
		return nil, fmt.Errorf("%w: display name is required", ErrValidationFailed)
	}
	if input.Seed < 0 {
		return nil, fmt.Errorf("%w: seed must be positive", ErrValidationFailed)
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if tournament.Status != models.StatusRegistration {
		return nil, ErrRegistrationNotOpen
	}

	count, err := s.participantRepo.CountByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if count >= tournament.MaxParticipants {
		return nil, ErrTournamentFull
	}

	seed := input.Seed
	if seed == 0 {
		// Порядок регистрации как дефолтный сид.
		seed = count + 1
	}

	members := input.Members
	if members == nil {
		members = []string{}
	}
	participant := &models.Participant{
		TournamentID: tournamentID,
		DisplayName:  strings.TrimSpace(input.DisplayName),
		Tag:          input.Tag,
		Members:      members,
		Seed:         seed,
		Status:       models.ParticipantPending,
	}
	if err := s.participantRepo.Create(ctx, participant); err != nil {
		return nil, mapRepoError(err)
	}
	return participant, nil
}

func (s *participantService) Confirm(ctx context.Context, tournamentID, participantID int) error {
	if err := s.requireMember(ctx, tournamentID, participantID); err != nil {
		return err
	}
	return mapRepoError(s.participantRepo.UpdateStatus(ctx, participantID, models.ParticipantConfirmed))
}

func (s *participantService) SetSeed(ctx context.Context, tournamentID, participantID, seed int) error {
	if seed <= 0 {
		return fmt.Errorf("%w: seed must be positive", ErrValidationFailed)
	}
	if err := s.requireMember(ctx, tournamentID, participantID); err != nil {
		return err
	}
	return mapRepoError(s.participantRepo.UpdateSeed(ctx, participantID, seed))
}

func (s *participantService) ListByTournament(ctx context.Context, tournamentID int, status *models.ParticipantStatus) ([]*models.Participant, error) {
	participants, err := s.participantRepo.ListByTournament(ctx, tournamentID, status)
	if err != nil {
		return nil, err
	}
	return participants, nil
}

func (s *participantService) Withdraw(ctx context.Context, tournamentID, participantID int) error {
	if err := s.requireMember(ctx, tournamentID, participantID); err != nil {
		return err
	}
	return mapRepoError(s.participantRepo.Delete(ctx, participantID))
}

// requireMember проверяет, что заявка действительно принадлежит турниру.
func (s *participantService) requireMember(ctx context.Context, tournamentID, participantID int) error {
	participant, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		return mapRepoError(err)
	}
	if participant.TournamentID != tournamentID {
		return ErrParticipantNotFound
	}
	return nil
}
