package engine

import "fmt"

// Коэффициенты линейного приближения Бухгольца: победа весит три очка,
// поражение одно. Настоящий Бухгольц (сумма очков соперников) сознательно
// не используется — см. DESIGN.md.
const (
	buchholzWinWeight  = 3
	buchholzLossWeight = 1
)

func validateScores(scoreA, scoreB int) error {
	if scoreA < 0 || scoreB < 0 {
		return fmt.Errorf("%w: scores must be non-negative (%d:%d)", ErrInvalidScore, scoreA, scoreB)
	}
	if scoreA == scoreB {
		return fmt.Errorf("%w: draws are not permitted (%d:%d)", ErrInvalidScore, scoreA, scoreB)
	}
	return nil
}

// checkReportable — общие предусловия для записи результата. Проверяется до
// любой мутации: либо операция применяется целиком, либо не применяется вовсе.
func checkReportable(m *Match) error {
	switch {
	case m.Status == StatusCompleted:
		return fmt.Errorf("%w: %s", ErrMatchAlreadyCompleted, m.UID)
	case m.Status == StatusCancelled:
		return fmt.Errorf("%w: %s", ErrMatchCancelled, m.UID)
	case m.ParticipantA == SlotTBD || m.ParticipantB == SlotTBD:
		return fmt.Errorf("%w: %s", ErrMatchNotReady, m.UID)
	}
	return nil
}

func completeMatch(m *Match, scoreA, scoreB int) {
	m.ScoreA = scoreA
	m.ScoreB = scoreB
	m.Status = StatusCompleted
	if scoreA > scoreB {
		m.WinnerID = m.ParticipantA
	} else {
		m.WinnerID = m.ParticipantB
	}
}

// ApplyResult records a score on a single-elimination match, decides the
// winner and propagates it into the next round: match floor(i/2), slot A for
// an even index, slot B for an odd one. Completing the final match completes
// the bracket.
func ApplyResult(b *Bracket, roundNumber, matchIndex, scoreA, scoreB int) error {
	if err := validateScores(scoreA, scoreB); err != nil {
		return err
	}
	m, err := b.Match(roundNumber, matchIndex)
	if err != nil {
		return err
	}
	if err := checkReportable(m); err != nil {
		return err
	}

	completeMatch(m, scoreA, scoreB)

	if roundNumber == len(b.Rounds) {
		b.Completed = true
		b.ChampionID = m.WinnerID
		return nil
	}
	b.propagateWinner(roundNumber, matchIndex, m.WinnerID)
	return nil
}

func (b *Bracket) propagateWinner(roundNumber, matchIndex int, winnerID string) {
	next := &b.Rounds[roundNumber].Matches[matchIndex/2]
	if matchIndex%2 == 0 {
		next.ParticipantA = winnerID
	} else {
		next.ParticipantB = winnerID
	}
}

// ApplySwissResult records a score on a Swiss match and updates both
// standings: win/loss counters, opponent history, the linear Buchholz
// approximation for every standing, and the qualification/elimination flags
// once a threshold is crossed. A completed match rejects re-application, so
// standings are never double-counted.
func ApplySwissResult(sb *SwissBracket, uid string, scoreA, scoreB int) error {
	if err := validateScores(scoreA, scoreB); err != nil {
		return err
	}
	m, err := sb.MatchByUID(uid)
	if err != nil {
		return err
	}
	if err := checkReportable(m); err != nil {
		return err
	}

	winnerID := m.ParticipantA
	loserID := m.ParticipantB
	if scoreB > scoreA {
		winnerID, loserID = loserID, winnerID
	}
	winner := sb.Standing(winnerID)
	loser := sb.Standing(loserID)
	if winner == nil || loser == nil {
		return fmt.Errorf("%w: match %s references unknown standings", ErrBracketIntegrity, uid)
	}

	completeMatch(m, scoreA, scoreB)

	winner.Wins++
	loser.Losses++
	winner.OpponentHistory = append(winner.OpponentHistory, loserID)
	loser.OpponentHistory = append(loser.OpponentHistory, winnerID)

	for i := range sb.Standings {
		s := &sb.Standings[i]
		s.Buchholz = s.Wins*buchholzWinWeight + s.Losses*buchholzLossWeight
	}

	applyThresholds(winner, sb)
	applyThresholds(loser, sb)
	return nil
}

// applyThresholds — монитор квалификации. Флаги терминальны и взаимно
// исключают друг друга.
func applyThresholds(s *Standing, sb *SwissBracket) {
	if s.Qualified || s.Eliminated {
		return
	}
	switch {
	case s.Wins >= sb.WinThreshold:
		s.Qualified = true
	case s.Losses >= sb.LossThreshold:
		s.Eliminated = true
	}
}
