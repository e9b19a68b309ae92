package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/bracketlab/tournament-engine/engine"
	"github.com/bracketlab/tournament-engine/middleware"
	"github.com/bracketlab/tournament-engine/models"
	"github.com/bracketlab/tournament-engine/services"
)

// BracketHandler exposes the progression operations: building the bracket,
// submitting results, generating Swiss rounds and starting the playoffs.
type BracketHandler struct {
	bracketService services.BracketService
	matchService   services.MatchService
	swissService   services.SwissService
}

func NewBracketHandler(
	bs services.BracketService,
	ms services.MatchService,
	ss services.SwissService,
) *BracketHandler {
	return &BracketHandler{
		bracketService: bs,
		matchService:   ms,
		swissService:   ss,
	}
}

// GenerateHandler обрабатывает POST /tournaments/{tournamentID}/bracket
func (h *BracketHandler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to generate bracket")
		return
	}

	tournament, err := h.bracketService.Generate(r.Context(), tournamentID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SubmitResultHandler обрабатывает POST /tournaments/{tournamentID}/results
func (h *BracketHandler) SubmitResultHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to submit result")
		return
	}

	var input services.SubmitResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.MatchUID == "" {
		badRequestResponse(w, r, errors.New("match_uid is required"))
		return
	}

	tournament, err := h.matchService.SubmitResult(r.Context(), tournamentID, currentUserID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// NextRoundHandler обрабатывает POST /tournaments/{tournamentID}/swiss/rounds
func (h *BracketHandler) NextRoundHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to generate round")
		return
	}

	swiss, err := h.swissService.GenerateNextRound(r.Context(), tournamentID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"swiss": swiss}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StartPlayoffsHandler обрабатывает POST /tournaments/{tournamentID}/swiss/playoffs
func (h *BracketHandler) StartPlayoffsHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to start playoffs")
		return
	}

	swiss, err := h.swissService.StartPlayoffs(r.Context(), tournamentID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"swiss": swiss}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMatchesHandler обрабатывает GET /tournaments/{tournamentID}/matches
func (h *BracketHandler) ListMatchesHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	query := r.URL.Query()
	var phase *models.BracketPhase
	if phaseStr := query.Get("phase"); phaseStr != "" {
		p := models.BracketPhase(phaseStr)
		switch p {
		case models.PhaseElimination, models.PhaseSwiss:
			phase = &p
		default:
			badRequestResponse(w, r, errors.New("invalid phase query parameter"))
			return
		}
	}
	var round *int
	if roundStr := query.Get("round"); roundStr != "" {
		n, convErr := strconv.Atoi(roundStr)
		if convErr != nil || n < 1 {
			badRequestResponse(w, r, errors.New("invalid round query parameter"))
			return
		}
		round = &n
	}
	var status *engine.MatchStatus
	if statusStr := query.Get("status"); statusStr != "" {
		s := engine.MatchStatus(statusStr)
		if !s.Valid() {
			badRequestResponse(w, r, errors.New("invalid status query parameter"))
			return
		}
		status = &s
	}

	matches, err := h.matchService.ListByTournament(r.Context(), tournamentID, phase, round, status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StandingsHandler обрабатывает GET /tournaments/{tournamentID}/standings
func (h *BracketHandler) StandingsHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.matchService.Standings(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
