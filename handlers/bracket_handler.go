package handlers

import (
	"net/http"

	"github.com/openbracket/tournament-engine/models"
	"github.com/openbracket/tournament-engine/services"
)

type BracketHandler struct {
	bracketService services.BracketService
}

func NewBracketHandler(bracketService services.BracketService) *BracketHandler {
	return &BracketHandler{bracketService: bracketService}
}

type buildBracketRequest struct {
	Format   string `json:"format"`
	MaxSlots int    `json:"max_slots,omitempty"`
	Seeded   bool   `json:"seeded,omitempty"`
	Force    bool   `json:"force,omitempty"`
}

// BuildBracketHandler godoc
// @Summary      Build the bracket for a tournament
// @Description  Generates the initial bracket structure in the requested format. Fails with 409 if results already exist, unless force is set.
// @Tags         brackets
// @Accept       json
// @Produce      json
// @Param        tournamentID  path      int                  true  "Tournament ID"
// @Param        request       body      buildBracketRequest  true  "Bracket parameters"
// @Success      201  {object}  models.BracketView
// @Router       /tournaments/{tournamentID}/bracket [post]
func (h *BracketHandler) BuildBracketHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req buildBracketRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.bracketService.BuildBracket(r.Context(), services.BuildBracketParams{
		TournamentID: tournamentID,
		Format:       models.BracketFormat(req.Format),
		MaxSlots:     req.MaxSlots,
		Seeded:       req.Seeded,
		Force:        req.Force,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"bracket": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetBracketHandler godoc
// @Summary      Get the bracket view
// @Tags         brackets
// @Produce      json
// @Param        tournamentID  path  int  true  "Tournament ID"
// @Success      200  {object}  models.BracketView
// @Router       /tournaments/{tournamentID}/bracket [get]
func (h *BracketHandler) GetBracketHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.bracketService.GetBracketView(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateSwissRoundHandler godoc
// @Summary      Pair the next Swiss round
// @Description  Requires every match of the current round to be decided. 409 when the round is incomplete or the round cap is reached.
// @Tags         brackets
// @Produce      json
// @Param        tournamentID  path  int  true  "Tournament ID"
// @Success      201  {object}  models.BracketView
// @Router       /tournaments/{tournamentID}/bracket/rounds [post]
func (h *BracketHandler) GenerateSwissRoundHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.bracketService.GenerateNextSwissRound(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"bracket": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateLosersBracketHandler godoc
// @Summary      Expand the losers bracket
// @Description  Populates the remaining losers rounds of a double elimination bracket and wires the losers champion into the grand final.
// @Tags         brackets
// @Produce      json
// @Param        tournamentID  path  int  true  "Tournament ID"
// @Success      201  {object}  models.BracketView
// @Router       /tournaments/{tournamentID}/bracket/losers [post]
func (h *BracketHandler) GenerateLosersBracketHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.bracketService.GenerateLosersBracket(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"bracket": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMatchesHandler godoc
// @Summary      List tournament matches
// @Tags         matches
// @Produce      json
// @Param        tournamentID  path   int     true   "Tournament ID"
// @Param        round         query  int     false  "Filter by round"
// @Param        status        query  string  false  "Filter by status"
// @Success      200  {array}  models.Match
// @Router       /tournaments/{tournamentID}/matches [get]
func (h *BracketHandler) ListMatchesHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	round, err := queryIntParam(r, "round")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var status *models.MatchStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		st := models.MatchStatus(raw)
		status = &st
	}

	matches, err := h.bracketService.ListMatches(r.Context(), tournamentID, round, status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
