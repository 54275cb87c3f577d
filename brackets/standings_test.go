package brackets

import (
	"testing"

	"github.com/openbracket/tournament-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decidedMatch(team1, team2, winner int) *models.Match {
	return &models.Match{
		Team1ID:  intPtr(team1),
		Team2ID:  intPtr(team2),
		WinnerID: intPtr(winner),
		Status:   models.MatchStatusCompleted,
	}
}

func TestComputeStandingsOrdering(t *testing.T) {
	teams := testTeams(4)
	matches := []*models.Match{
		decidedMatch(1, 2, 2),
		decidedMatch(3, 4, 3),
		decidedMatch(2, 3, 2),
		decidedMatch(1, 4, 1),
	}

	standings := ComputeStandings(teams, matches)
	require.Len(t, standings, 4)

	// Team 2 has two wins, teams 1 and 3 one each, team 4 none. The tie
	// between 1 and 3 breaks on seed.
	assert.Equal(t, []int{2, 1, 3, 4}, []int{
		standings[0].TeamID, standings[1].TeamID, standings[2].TeamID, standings[3].TeamID,
	})
	assert.Equal(t, 1, standings[0].Rank)
	assert.Equal(t, 2*PointsPerWin, standings[0].Points)
	assert.Equal(t, 2, standings[0].Wins)
	assert.Equal(t, 2, standings[1].Played)
	assert.Equal(t, 1, standings[1].Losses)
	assert.Equal(t, 4, standings[3].Rank)
	assert.Equal(t, 0, standings[3].Points)
}

func TestComputeStandingsIgnoresUndecided(t *testing.T) {
	teams := testTeams(2)
	open := &models.Match{Team1ID: intPtr(1), Team2ID: intPtr(2), Status: models.MatchStatusScheduled}

	standings := ComputeStandings(teams, []*models.Match{open})
	require.Len(t, standings, 2)
	assert.Equal(t, 0, standings[0].Played)
	assert.Equal(t, 0, standings[1].Played)
	// Seed order decides the blank table.
	assert.Equal(t, 1, standings[0].TeamID)
}

func TestComputeStandingsCountsByes(t *testing.T) {
	teams := testTeams(3)
	bye := &models.Match{
		Team1ID:  intPtr(3),
		WinnerID: intPtr(3),
		IsBye:    true,
		Status:   models.MatchStatusCompleted,
	}

	standings := ComputeStandings(teams, []*models.Match{bye})
	require.Len(t, standings, 3)
	assert.Equal(t, 3, standings[0].TeamID)
	assert.Equal(t, 1, standings[0].Played)
	assert.Equal(t, 1, standings[0].Wins)
	assert.Equal(t, PointsPerWin, standings[0].Points)
}

func TestComputeStandingsLeaderboard(t *testing.T) {
	teams := testTeams(3)
	score := func(teamID, points int) *models.Match {
		return &models.Match{
			Section: models.SectionLeaderboard,
			Team1ID: intPtr(teamID),
			Score1:  intPtr(points),
			Status:  models.MatchStatusCompleted,
		}
	}
	matches := []*models.Match{score(1, 120), score(2, 305), score(3, 120)}

	standings := ComputeStandings(teams, matches)
	require.Len(t, standings, 3)
	assert.Equal(t, 2, standings[0].TeamID)
	assert.Equal(t, 305, standings[0].Points)
	// Equal scores fall back to seed order.
	assert.Equal(t, 1, standings[1].TeamID)
	assert.Equal(t, 3, standings[2].TeamID)
}

func TestComputeStandingsDeterministic(t *testing.T) {
	teams := testTeams(6)
	matches := []*models.Match{
		decidedMatch(1, 2, 1),
		decidedMatch(3, 4, 4),
		decidedMatch(5, 6, 5),
	}

	first := ComputeStandings(teams, matches)
	for i := 0; i < 10; i++ {
		again := ComputeStandings(teams, matches)
		assert.Equal(t, first, again)
	}
}
