package engine

import (
	"fmt"
	"sort"
	"strings"
)

// Participant is a competing entity: a team with a member list or a solo
// player with an empty one. A roster is immutable once a bracket or a Swiss
// round has been generated from it.
type Participant struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Tag         string   `json:"tag,omitempty"`
	Members     []string `json:"members,omitempty"`
	Seed        int      `json:"seed"`
}

// ValidateRoster checks the input contract shared by the bracket builder and
// the Swiss stage: at least two entrants, non-empty names and IDs, unique
// positive seeds.
func ValidateRoster(roster []Participant) error {
	if len(roster) < 2 {
		return fmt.Errorf("%w: need at least 2 participants, got %d", ErrInvalidRoster, len(roster))
	}

	seenIDs := make(map[string]struct{}, len(roster))
	seenSeeds := make(map[int]struct{}, len(roster))
	for i, p := range roster {
		if p.ID == "" || p.ID == SlotTBD || p.ID == SlotBye {
			return fmt.Errorf("%w: participant %d has reserved or empty id %q", ErrInvalidRoster, i, p.ID)
		}
		if strings.TrimSpace(p.DisplayName) == "" {
			return fmt.Errorf("%w: participant %s has no display name", ErrInvalidRoster, p.ID)
		}
		if p.Seed <= 0 {
			return fmt.Errorf("%w: participant %s has non-positive seed %d", ErrInvalidRoster, p.ID, p.Seed)
		}
		if _, ok := seenIDs[p.ID]; ok {
			return fmt.Errorf("%w: duplicate participant id %s", ErrInvalidRoster, p.ID)
		}
		if _, ok := seenSeeds[p.Seed]; ok {
			return fmt.Errorf("%w: duplicate seed %d (participant %s)", ErrInvalidRoster, p.Seed, p.ID)
		}
		seenIDs[p.ID] = struct{}{}
		seenSeeds[p.Seed] = struct{}{}
	}
	return nil
}

func sortedBySeed(roster []Participant) []Participant {
	sorted := make([]Participant, len(roster))
	copy(sorted, roster)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Seed < sorted[j].Seed
	})
	return sorted
}
