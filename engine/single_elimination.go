package engine

import (
	"fmt"
	"math/bits"
	"time"
)

// SingleEliminationBuilder constructs a complete single-elimination bracket
// from a seeded roster: round 1 fully populated, every later round stubbed
// with TBD slots until upstream results arrive.
type SingleEliminationBuilder struct {
	now func() time.Time
}

func NewSingleEliminationBuilder() *SingleEliminationBuilder {
	return &SingleEliminationBuilder{now: time.Now}
}

// Build validates the roster, pads it with BYE placeholders up to the next
// power of two and pairs round 1 as seed i vs seed size-1-i, so top seeds
// cannot meet before the late rounds. BYE pairings complete immediately as
// 1:0 walkovers and the advancing participant is written into round 2.
func (b *SingleEliminationBuilder) Build(roster []Participant) (*Bracket, error) {
	if err := ValidateRoster(roster); err != nil {
		return nil, err
	}

	sorted := sortedBySeed(roster)
	n := len(sorted)
	numRounds := bits.Len(uint(n - 1)) // ceil(log2(n)) for n >= 2
	size := 1 << numRounds

	// Seed-ordered slot list padded with byes at the tail, i.e. the bye
	// positions get the worst implicit seeds (count+1..size).
	slots := make([]string, size)
	for i, p := range sorted {
		slots[i] = p.ID
	}
	for i := n; i < size; i++ {
		slots[i] = SlotBye
	}

	bracket := &Bracket{
		Size:     size,
		ByeCount: size - n,
		Rounds:   make([]Round, 0, numRounds),
	}

	start := b.now()
	firstRound := Round{Number: 1, Matches: make([]Match, 0, size/2)}
	for i := 0; i < size/2; i++ {
		firstRound.Matches = append(firstRound.Matches, Match{
			UID:          matchUID(1, i),
			Round:        1,
			Slot:         i,
			ParticipantA: slots[i],
			ParticipantB: slots[size-1-i],
			Status:       StatusScheduled,
			Format:       FormatBestOfOne,
			ScheduledAt:  start,
		})
	}
	bracket.Rounds = append(bracket.Rounds, firstRound)

	for r := 2; r <= numRounds; r++ {
		bracket.Rounds = append(bracket.Rounds, stubRound(r, size>>uint(r), FormatBestOfOne, start))
	}

	// Walkovers: a bye never reaches a slot i < size/2 (size is the smallest
	// power of two >= n), so ParticipantA is always a real entrant here.
	for i := range bracket.Rounds[0].Matches {
		m := &bracket.Rounds[0].Matches[i]
		if m.ParticipantB != SlotBye {
			continue
		}
		m.ScoreA, m.ScoreB = 1, 0
		m.Status = StatusCompleted
		m.WinnerID = m.ParticipantA
		if numRounds > 1 {
			bracket.propagateWinner(1, i, m.WinnerID)
		} else {
			bracket.Completed = true
			bracket.ChampionID = m.WinnerID
		}
	}

	if err := bracket.validate(); err != nil {
		return nil, err
	}
	return bracket, nil
}

// stubRound pre-creates a round whose participants are not yet known.
func stubRound(number, matches int, format MatchFormat, scheduledAt time.Time) Round {
	round := Round{Number: number, Matches: make([]Match, 0, matches)}
	for i := 0; i < matches; i++ {
		round.Matches = append(round.Matches, Match{
			UID:          matchUID(number, i),
			Round:        number,
			Slot:         i,
			ParticipantA: SlotTBD,
			ParticipantB: SlotTBD,
			Status:       StatusScheduled,
			Format:       format,
			ScheduledAt:  scheduledAt,
		})
	}
	return round
}

// validate enforces the structural invariants of a freshly built bracket.
// Нарушение здесь означает баг генератора, а не плохой ввод.
func (b *Bracket) validate() error {
	if b.Size < 2 || b.Size&(b.Size-1) != 0 {
		return fmt.Errorf("%w: size %d is not a power of two", ErrBracketIntegrity, b.Size)
	}
	wantRounds := bits.Len(uint(b.Size)) - 1
	if len(b.Rounds) != wantRounds {
		return fmt.Errorf("%w: %d rounds for size %d, want %d", ErrBracketIntegrity, len(b.Rounds), b.Size, wantRounds)
	}
	for ri, round := range b.Rounds {
		wantMatches := b.Size >> uint(ri+1)
		if len(round.Matches) != wantMatches {
			return fmt.Errorf("%w: round %d has %d matches, want %d", ErrBracketIntegrity, round.Number, len(round.Matches), wantMatches)
		}
		for _, m := range round.Matches {
			if m.ParticipantA == "" || m.ParticipantB == "" {
				return fmt.Errorf("%w: match %s has an empty participant slot", ErrBracketIntegrity, m.UID)
			}
			if !m.Status.Valid() {
				return fmt.Errorf("%w: match %s has invalid status %q", ErrBracketIntegrity, m.UID, m.Status)
			}
		}
	}
	if last := b.Rounds[len(b.Rounds)-1]; len(last.Matches) != 1 {
		return fmt.Errorf("%w: final round has %d matches", ErrBracketIntegrity, len(last.Matches))
	}
	return nil
}
