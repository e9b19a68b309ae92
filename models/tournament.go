package models

import (
	"time"

	"github.com/bracketlab/tournament-engine/engine"
)

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusSoon         TournamentStatus = "soon"
	StatusRegistration TournamentStatus = "registration"
	StatusActive       TournamentStatus = "active"
	StatusCompleted    TournamentStatus = "completed"
	StatusCanceled     TournamentStatus = "canceled"
)

// TournamentFormat выбирает ветку движка прогрессии.
type TournamentFormat string

const (
	FormatSingleElimination TournamentFormat = "single_elimination"
	FormatSwiss             TournamentFormat = "swiss"
)

// BracketPhase помечает, какая структура лежит в документе сетки.
type BracketPhase string

const (
	PhaseNone        BracketPhase = ""
	PhaseElimination BracketPhase = "elimination"
	PhaseSwiss       BracketPhase = "swiss"
)

// Tournament представляет турнир. Документ сетки (bracket/swiss) хранится
// на строке турнира как версионируемый JSONB и загружается сервисами.
type Tournament struct {
	ID              int              `json:"id" db:"id"`
	Name            string           `json:"name" db:"name"`
	Description     *string          `json:"description,omitempty" db:"description"`
	Game            string           `json:"game" db:"game"`
	Format          TournamentFormat `json:"format" db:"format"`
	OrganizerID     int              `json:"organizer_id" db:"organizer_id"`
	RegDate         time.Time        `json:"reg_date" db:"reg_date"`
	StartDate       time.Time        `json:"start_date" db:"start_date"`
	EndDate         time.Time        `json:"end_date" db:"end_date"`
	Status          TournamentStatus `json:"status" db:"status"`
	MaxParticipants int              `json:"max_participants" db:"max_participants"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
	LogoKey         *string          `json:"-" db:"logo_key"`
	LogoURL         *string          `json:"logo_url,omitempty" db:"-"`

	// Опциональные связанные данные (не мапятся напрямую).
	Participants []Participant        `json:"participants,omitempty" db:"-"`
	Matches      []Match              `json:"matches,omitempty" db:"-"`
	Bracket      *engine.Bracket      `json:"bracket,omitempty" db:"-"`
	Swiss        *engine.SwissBracket `json:"swiss,omitempty" db:"-"`
}
