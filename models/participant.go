package models

import (
	"strconv"
	"time"

	"github.com/bracketlab/tournament-engine/engine"
)

type ParticipantStatus string

const (
	ParticipantPending   ParticipantStatus = "pending"
	ParticipantConfirmed ParticipantStatus = "confirmed"
)

// Participant — запись регистрации в турнире: команда со списком игроков или
// одиночный игрок с пустым списком. После генерации сетки состав и сиды
// считаются зафиксированными.
type Participant struct {
	ID           int               `json:"id" db:"id"`
	TournamentID int               `json:"tournament_id" db:"tournament_id"`
	DisplayName  string            `json:"display_name" db:"display_name"`
	Tag          *string           `json:"tag,omitempty" db:"tag"`
	Members      []string          `json:"members" db:"members"`
	Seed         int               `json:"seed" db:"seed"`
	Status       ParticipantStatus `json:"status" db:"status"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
}

// ToEngine converts the registration row into the engine's value type. The
// engine keys everything by the string form of the row ID.
func (p *Participant) ToEngine() engine.Participant {
	tag := ""
	if p.Tag != nil {
		tag = *p.Tag
	}
	return engine.Participant{
		ID:          strconv.Itoa(p.ID),
		DisplayName: p.DisplayName,
		Tag:         tag,
		Members:     p.Members,
		Seed:        p.Seed,
	}
}
