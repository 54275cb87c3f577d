package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/openbracket/tournament-engine/models"
	"github.com/openbracket/tournament-engine/repositories"
	"github.com/openbracket/tournament-engine/storage"
)

type TeamService interface {
	GetTeam(ctx context.Context, teamID int) (*models.Team, error)
	ListRoster(ctx context.Context, tournamentID int) ([]*models.Team, error)
	// UploadTeamLogo stores a new logo object, points the team at it and
	// removes the previous object best-effort.
	UploadTeamLogo(ctx context.Context, teamID int, file io.Reader, contentType string) (*models.Team, error)
}

type teamService struct {
	teamRepo repositories.TeamRepository
	uploader storage.FileUploader
}

func NewTeamService(teamRepo repositories.TeamRepository, uploader storage.FileUploader) TeamService {
	return &teamService{teamRepo: teamRepo, uploader: uploader}
}

func (s *teamService) GetTeam(ctx context.Context, teamID int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	s.resolveLogo(team)
	return team, nil
}

func (s *teamService) ListRoster(ctx context.Context, tournamentID int) ([]*models.Team, error) {
	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster for tournament %d: %w", tournamentID, err)
	}
	for _, t := range teams {
		s.resolveLogo(t)
	}
	return teams, nil
}

func (s *teamService) UploadTeamLogo(ctx context.Context, teamID int, file io.Reader, contentType string) (*models.Team, error) {
	if s.uploader == nil {
		return nil, ErrLogoStorageDisabled
	}

	ext, err := extensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLogoType, contentType)
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	oldKey := team.LogoKey
	key := fmt.Sprintf("teams/logos/team_%d_%d%s", teamID, time.Now().UnixNano(), ext)

	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload logo for team %d: %w", teamID, err)
	}

	if err := s.teamRepo.UpdateLogoKey(ctx, teamID, &key); err != nil {
		if delErr := s.uploader.Delete(ctx, key); delErr != nil {
			slog.Warn("failed to delete orphaned logo object",
				slog.String("key", key), slog.Any("error", delErr))
		}
		return nil, err
	}

	// The old object is unreferenced now; a failed delete only leaks
	// storage, never breaks the team.
	if oldKey != nil && *oldKey != "" {
		if delErr := s.uploader.Delete(ctx, *oldKey); delErr != nil {
			slog.Warn("failed to delete previous logo object",
				slog.String("key", *oldKey), slog.Any("error", delErr))
		}
	}

	team.LogoKey = &key
	team.LogoURL = nil
	s.resolveLogo(team)
	return team, nil
}

func (s *teamService) resolveLogo(team *models.Team) {
	if s.uploader == nil || team.LogoKey == nil || *team.LogoKey == "" {
		return
	}
	if u := s.uploader.GetPublicURL(*team.LogoKey); u != "" {
		team.LogoURL = &u
	}
}

func extensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		return "", fmt.Errorf("no known extension for content type %q", contentType)
	}
}
