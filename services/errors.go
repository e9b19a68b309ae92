package services

import "errors"

// Общие ошибки сервисного слоя, используемые в HTTP-маппинге.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Валидация и бизнес-правила
	ErrValidationFailed           = errors.New("validation failed")
	ErrPasswordTooShort           = errors.New("password is too short")
	ErrInvalidCredentials         = errors.New("invalid email or password")
	ErrTournamentNameRequired     = errors.New("tournament name is required")
	ErrTournamentInvalidFormat    = errors.New("unsupported tournament format")
	ErrTournamentInvalidRegDate   = errors.New("tournament registration end date must be before start date")
	ErrTournamentInvalidDateRange = errors.New("tournament end date must be after start date")
	ErrTournamentInvalidCapacity  = errors.New("tournament max participants must be positive")
	ErrRegistrationNotOpen        = errors.New("tournament registration is not open")
	ErrTournamentFull             = errors.New("tournament registration is full")
	ErrTournamentNotActive        = errors.New("tournament is not active")
	ErrParticipantNotConfirmed    = errors.New("participant is not confirmed")

	// Конфликты
	ErrUserEmailConflict      = errors.New("email address is already in use")
	ErrUserNicknameConflict   = errors.New("nickname is already in use")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrSeedConflict           = errors.New("seed is already taken in this tournament")
	ErrBracketAlreadyExists   = errors.New("bracket has already been generated")
	ErrStaleBracketState      = errors.New("bracket was modified concurrently, re-fetch and retry")

	// Состояние сетки
	ErrBracketNotGenerated = errors.New("bracket has not been generated yet")
	ErrWrongBracketPhase   = errors.New("operation does not apply to this bracket phase")

	// Аутентификация и доступ
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")

	// Специфичные для сущностей
	ErrUserNotFound        = errors.New("user not found")
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrParticipantNotFound = errors.New("participant registration not found")
)
