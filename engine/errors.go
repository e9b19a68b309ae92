package engine

import "errors"

// Ошибки движка прогрессии. Первая группа — валидация входа (можно повторить
// запрос с исправленными данными), вторая — нарушение предусловий состояния,
// третья — структурные ошибки, которые означают баг в построении сетки.
var (
	ErrInvalidRoster = errors.New("invalid roster")
	ErrInvalidScore  = errors.New("invalid score")

	ErrMatchNotFound         = errors.New("match not found in bracket")
	ErrMatchNotReady         = errors.New("match participants are not decided yet")
	ErrMatchAlreadyCompleted = errors.New("match result already recorded")
	ErrMatchCancelled        = errors.New("match has been cancelled")
	ErrRoundNotComplete      = errors.New("current round is not complete")
	ErrPlayoffAlreadyStarted = errors.New("playoff stage already started")
	ErrNotEnoughQualified    = errors.New("not enough qualified participants for playoffs")

	ErrBracketIntegrity = errors.New("bracket failed integrity validation")
)
