package services

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/openbracket/tournament-engine/models"
	"github.com/openbracket/tournament-engine/repositories"
	"github.com/openbracket/tournament-engine/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTeamRepo struct {
	teams map[int]*models.Team
}

func (f *fakeTeamRepo) GetByID(ctx context.Context, id int) (*models.Team, error) {
	t, ok := f.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTeamRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Team, error) {
	teams := make([]*models.Team, 0)
	for _, t := range f.teams {
		if t.TournamentID == tournamentID {
			cp := *t
			teams = append(teams, &cp)
		}
	}
	return teams, nil
}

func (f *fakeTeamRepo) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	t, ok := f.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	t.LogoKey = logoKey
	return nil
}

type fakeUploader struct {
	uploads map[string]string
	deleted []string
}

func (f *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if f.uploads == nil {
		f.uploads = make(map[string]string)
	}
	f.uploads[key] = contentType
	return &storage.UploadResult{Key: key}, nil
}

func (f *fakeUploader) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

func TestUploadTeamLogoReplacesExisting(t *testing.T) {
	old := "teams/logos/team_7_old.png"
	repo := &fakeTeamRepo{teams: map[int]*models.Team{
		7: {ID: 7, TournamentID: 1, Name: "Team 7", Seed: 1, LogoKey: &old},
	}}
	up := &fakeUploader{}
	svc := NewTeamService(repo, up)

	team, err := svc.UploadTeamLogo(context.Background(), 7, strings.NewReader("png-bytes"), "image/png")
	require.NoError(t, err)

	require.NotNil(t, team.LogoKey)
	assert.True(t, strings.HasPrefix(*team.LogoKey, "teams/logos/team_7_"))
	assert.True(t, strings.HasSuffix(*team.LogoKey, ".png"))
	assert.Equal(t, "image/png", up.uploads[*team.LogoKey])

	// The repo points at the new object and the old one was removed.
	require.NotNil(t, repo.teams[7].LogoKey)
	assert.Equal(t, *team.LogoKey, *repo.teams[7].LogoKey)
	assert.Equal(t, []string{old}, up.deleted)

	require.NotNil(t, team.LogoURL)
	assert.Equal(t, "https://cdn.example.com/"+*team.LogoKey, *team.LogoURL)
}

func TestUploadTeamLogoRejectsUnknownContentType(t *testing.T) {
	repo := &fakeTeamRepo{teams: map[int]*models.Team{
		7: {ID: 7, TournamentID: 1, Name: "Team 7", Seed: 1},
	}}
	up := &fakeUploader{}
	svc := NewTeamService(repo, up)

	_, err := svc.UploadTeamLogo(context.Background(), 7, strings.NewReader("exe-bytes"), "application/octet-stream")
	assert.ErrorIs(t, err, ErrUnsupportedLogoType)
	assert.Empty(t, up.uploads)
}

func TestUploadTeamLogoWithoutStorageConfigured(t *testing.T) {
	repo := &fakeTeamRepo{teams: map[int]*models.Team{
		7: {ID: 7, TournamentID: 1, Name: "Team 7", Seed: 1},
	}}
	svc := NewTeamService(repo, nil)

	_, err := svc.UploadTeamLogo(context.Background(), 7, strings.NewReader("png-bytes"), "image/png")
	assert.ErrorIs(t, err, ErrLogoStorageDisabled)
}

func TestUploadTeamLogoUnknownTeam(t *testing.T) {
	repo := &fakeTeamRepo{teams: map[int]*models.Team{}}
	up := &fakeUploader{}
	svc := NewTeamService(repo, up)

	_, err := svc.UploadTeamLogo(context.Background(), 99, strings.NewReader("png-bytes"), "image/png")
	assert.ErrorIs(t, err, ErrTeamNotFound)
	assert.Empty(t, up.uploads)
}

func TestExtensionFromContentType(t *testing.T) {
	testCases := []struct {
		contentType string
		ext         string
		wantErr     bool
	}{
		{contentType: "image/jpeg", ext: ".jpg"},
		{contentType: "image/jpg", ext: ".jpg"},
		{contentType: "image/png", ext: ".png"},
		{contentType: "image/gif", ext: ".gif"},
		{contentType: "image/webp", ext: ".webp"},
		{contentType: "text/html", wantErr: true},
		{contentType: "", wantErr: true},
	}

	for _, tc := range testCases {
		ext, err := extensionFromContentType(tc.contentType)
		if tc.wantErr {
			assert.Error(t, err, tc.contentType)
			continue
		}
		require.NoError(t, err, tc.contentType)
		assert.Equal(t, tc.ext, ext)
	}
}
