package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/openbracket/tournament-engine/services"
)

type TeamHandler struct {
	teamService services.TeamService
}

func NewTeamHandler(teamService services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

// ListRosterHandler godoc
// @Summary      List the tournament roster
// @Tags         teams
// @Produce      json
// @Param        tournamentID  path  int  true  "Tournament ID"
// @Success      200  {array}  models.Team
// @Router       /tournaments/{tournamentID}/teams [get]
func (h *TeamHandler) ListRosterHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	teams, err := h.teamService.ListRoster(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": teams}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetTeamHandler godoc
// @Summary      Get a single team
// @Tags         teams
// @Produce      json
// @Param        teamID  path  int  true  "Team ID"
// @Success      200  {object}  models.Team
// @Router       /teams/{teamID} [get]
func (h *TeamHandler) GetTeamHandler(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.teamService.GetTeam(r.Context(), teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadTeamLogoHandler godoc
// @Summary      Upload a team logo
// @Tags         teams
// @Accept       multipart/form-data
// @Produce      json
// @Param        teamID  path      int   true  "Team ID"
// @Param        logo    formData  file  true  "Logo image"
// @Success      200  {object}  models.Team
// @Security     BearerAuth
// @Router       /teams/{teamID}/logo [post]
func (h *TeamHandler) UploadTeamLogoHandler(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to parse multipart form: %w", err))
		return
	}

	file, header, err := r.FormFile("logo")
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to get logo file from form: %w", err))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		badRequestResponse(w, r, errors.New("content-type header is required for logo"))
		return
	}

	team, err := h.teamService.UploadTeamLogo(r.Context(), teamID, file, contentType)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
