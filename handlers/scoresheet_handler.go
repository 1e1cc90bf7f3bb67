package handlers

import (
	"net/http"
	"strconv"

	"github.com/Hirusha02/mootcourt-system/middleware"
	"github.com/Hirusha02/mootcourt-system/repositories"
	"github.com/Hirusha02/mootcourt-system/services"
)

type ScoreSheetHandler struct {
	sheetService   services.ScoreSheetService
	scoringService services.ScoringService
}

func NewScoreSheetHandler(ss services.ScoreSheetService, sc services.ScoringService) *ScoreSheetHandler {
	return &ScoreSheetHandler{
		sheetService:   ss,
		scoringService: sc,
	}
}

// SubmitHandler handles POST /jury/oral-marks
func (h *ScoreSheetHandler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	judgeID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.SubmitScoreSheetInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	sheet, err := h.sheetService.Submit(r.Context(), judgeID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"score_sheet": sheet}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateHandler handles PATCH /jury/oral-marks/{sheetID}
func (h *ScoreSheetHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	judgeID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	sheetID, err := getIDFromURL(r, "sheetID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateScoreSheetInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	sheet, err := h.sheetService.Update(r.Context(), sheetID, judgeID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"score_sheet": sheet}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler handles GET /oral-marks?round_id=&team_id=&judge_id=
func (h *ScoreSheetHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var filter repositories.ScoreSheetFilter
	query := r.URL.Query()

	parseIntParam := func(name string) (*int, bool) {
		raw := query.Get(name)
		if raw == "" {
			return nil, true
		}
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			return nil, false
		}
		return &id, true
	}

	var ok bool
	if filter.RoundID, ok = parseIntParam("round_id"); !ok {
		badRequestResponse(w, r, errInvalidQueryParam("round_id"))
		return
	}
	if filter.TeamID, ok = parseIntParam("team_id"); !ok {
		badRequestResponse(w, r, errInvalidQueryParam("team_id"))
		return
	}
	if filter.JudgeID, ok = parseIntParam("judge_id"); !ok {
		badRequestResponse(w, r, errInvalidQueryParam("judge_id"))
		return
	}

	sheets, err := h.sheetService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"score_sheets": sheets}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AggregateHandler handles GET /admin/rounds/{roundID}/marks/{teamID}: the
// combined totals the winner decision is based on.
func (h *ScoreSheetHandler) AggregateHandler(w http.ResponseWriter, r *http.Request) {
	roundID, err := getIDFromURL(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	marks, err := h.scoringService.AggregateTeamMarks(r.Context(), roundID, teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"marks": marks}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
