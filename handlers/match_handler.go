package handlers

import (
	"net/http"

	"github.com/openbracket/tournament-engine/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

type recordResultRequest struct {
	Score1   *int `json:"score1,omitempty"`
	Score2   *int `json:"score2,omitempty"`
	WinnerID *int `json:"winner_id,omitempty"`
}

// GetMatchHandler godoc
// @Summary      Get a single match
// @Tags         matches
// @Produce      json
// @Param        matchID  path  int  true  "Match ID"
// @Success      200  {object}  models.Match
// @Router       /matches/{matchID} [get]
func (h *MatchHandler) GetMatchHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecordResultHandler godoc
// @Summary      Record or correct a match result
// @Description  Sets scores and winner, then advances winner and loser through the bracket. Corrections are rejected with 409 once a downstream match is decided.
// @Tags         matches
// @Accept       json
// @Produce      json
// @Param        matchID  path  int                  true  "Match ID"
// @Param        request  body  recordResultRequest  true  "Result"
// @Success      200  {object}  models.Match
// @Router       /matches/{matchID}/result [put]
func (h *MatchHandler) RecordResultHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req recordResultRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.RecordResult(r.Context(), matchID, services.RecordResultParams{
		Score1:   req.Score1,
		Score2:   req.Score2,
		WinnerID: req.WinnerID,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
