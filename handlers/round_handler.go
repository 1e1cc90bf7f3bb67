package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Hirusha02/mootcourt-system/middleware"
	"github.com/Hirusha02/mootcourt-system/models"
	"github.com/Hirusha02/mootcourt-system/services"
)

type RoundHandler struct {
	roundService       services.RoundService
	eligibilityService services.EligibilityService
	logger             *slog.Logger
}

func NewRoundHandler(rs services.RoundService, es services.EligibilityService, logger *slog.Logger) *RoundHandler {
	return &RoundHandler{
		roundService:       rs,
		eligibilityService: es,
		logger:             logger,
	}
}

// CreateHandler handles POST /admin/rounds
func (h *RoundHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateRoundInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	round, err := h.roundService.CreateRound(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler handles GET /admin/rounds and GET /jury/rounds
func (h *RoundHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var filter services.ListRoundsFilter
	query := r.URL.Query()

	if stageStr := query.Get("stage"); stageStr != "" {
		stage := models.Stage(stageStr)
		filter.Stage = &stage
	}
	if teamIDStr := query.Get("team_id"); teamIDStr != "" {
		if id, err := strconv.Atoi(teamIDStr); err == nil && id > 0 {
			filter.TeamID = &id
		} else {
			badRequestResponse(w, r, errors.New("invalid team_id query parameter"))
			return
		}
	}

	rounds, err := h.roundService.ListRounds(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rounds": rounds}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListOwnHandler handles GET /jury/rounds: only the rounds assigned to the
// authenticated judge.
func (h *RoundHandler) ListOwnHandler(w http.ResponseWriter, r *http.Request) {
	judgeID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	rounds, err := h.roundService.ListRounds(r.Context(), services.ListRoundsFilter{JudgeID: &judgeID})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rounds": rounds}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /admin/rounds/{roundID}
func (h *RoundHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	round, err := h.roundService.GetRoundByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateHandler handles PATCH /admin/rounds/{roundID}
func (h *RoundHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateRoundInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	round, err := h.roundService.UpdateRound(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler handles DELETE /admin/rounds/{roundID}
func (h *RoundHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.roundService.DeleteRound(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EligibleTeamsHandler handles GET /admin/rounds/eligible_teams?stage=...
// When the bracket is inconsistent the error is logged and the client gets
// an empty list with a warning, so the admin UI degrades instead of dying.
func (h *RoundHandler) EligibleTeamsHandler(w http.ResponseWriter, r *http.Request) {
	stageStr := r.URL.Query().Get("stage")
	if stageStr == "" {
		badRequestResponse(w, r, errors.New("missing stage query parameter"))
		return
	}

	teams, err := h.eligibilityService.EligibleTeams(r.Context(), models.Stage(stageStr))
	if err != nil {
		if errors.Is(err, services.ErrBracketInconsistent) {
			h.logger.Error("eligibility query hit inconsistent bracket state",
				slog.String("stage", stageStr), slog.Any("error", err))
			writeErr := writeJSON(w, http.StatusOK, jsonResponse{
				"eligible_teams": []*models.Team{},
				"warning":        "bracket state is inconsistent; contact an operator",
			}, nil)
			if writeErr != nil {
				serverErrorResponse(w, r, writeErr)
			}
			return
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"eligible_teams": teams}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetWinnerHandler handles POST /admin/rounds/{roundID}/set_winner
func (h *RoundHandler) SetWinnerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		WinnerID int `json:"winner_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	round, err := h.roundService.SelectWinner(r.Context(), id, input.WinnerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// MissingMarksHandler handles GET /admin/rounds/missing_marks and
// GET /jury/rounds/missing_marks (scoped to the authenticated judge).
func (h *RoundHandler) MissingMarksHandler(w http.ResponseWriter, r *http.Request) {
	var judgeID *int
	role, err := middleware.GetUserRoleFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	if role == models.RoleJury {
		id, err := middleware.GetUserIDFromContext(r.Context())
		if err != nil {
			unauthorizedResponse(w, r, "authentication required")
			return
		}
		judgeID = &id
	}

	missing, err := h.roundService.MissingMarks(r.Context(), judgeID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"missing_marks": missing}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
