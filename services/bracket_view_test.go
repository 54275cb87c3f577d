package services

import (
	"testing"

	"github.com/openbracket/tournament-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viewTeams(n int) []*models.Team {
	teams := make([]*models.Team, n)
	for i := 0; i < n; i++ {
		teams[i] = &models.Team{ID: i + 1, TournamentID: 1, Name: string(rune('A' + i)), Seed: i + 1}
	}
	return teams
}

func TestAssembleSingleEliminationView(t *testing.T) {
	bracket := &models.Bracket{TournamentID: 1, Format: models.FormatSingleElimination, MaxSlots: 4}
	teams := viewTeams(4)

	// Semi-final 1 is decided, the final waits on both feeders.
	matches := []*models.Match{
		{
			ID: 1, Section: models.SectionWinners, Round: 1, MatchNumber: 1,
			Team1ID: intPtr(1), Team2ID: intPtr(4), WinnerID: intPtr(1),
			Status: models.MatchStatusCompleted, NextMatchID: intPtr(3), WinnerToSlot: intPtr(1),
		},
		{
			ID: 2, Section: models.SectionWinners, Round: 1, MatchNumber: 2,
			Team1ID: intPtr(2), Team2ID: intPtr(3),
			Status: models.MatchStatusScheduled, NextMatchID: intPtr(3), WinnerToSlot: intPtr(2),
		},
		{
			ID: 3, Section: models.SectionWinners, Round: 2, MatchNumber: 1,
			Team1ID: intPtr(1),
			Status:  models.MatchStatusScheduled,
		},
	}

	view := assembleBracketView(bracket, teams, matches)
	require.Len(t, view.Rounds, 2)
	assert.Equal(t, "Semi-Final", view.Rounds[0].Name)
	assert.Equal(t, "Final", view.Rounds[1].Name)
	require.Len(t, view.Rounds[0].Matches, 2)
	require.Len(t, view.Rounds[1].Matches, 1)

	semi1 := view.Rounds[0].Matches[0]
	assert.Equal(t, models.SlotTeam, semi1.Slot1.Kind)
	require.NotNil(t, semi1.Slot1.Team)
	assert.Equal(t, 1, semi1.Slot1.Team.ID)
	require.NotNil(t, semi1.Winner)
	assert.Equal(t, 1, semi1.Winner.ID)

	final := view.Rounds[1].Matches[0]
	// Slot 1 holds the decided winner, slot 2 shows its pending source.
	assert.Equal(t, models.SlotTeam, final.Slot1.Kind)
	assert.Equal(t, models.SlotTBD, final.Slot2.Kind)
	require.NotNil(t, final.Slot2.SourceMatchID)
	assert.Equal(t, 2, *final.Slot2.SourceMatchID)
	assert.Equal(t, models.SourceWinner, final.Slot2.SourceKind)
}

func TestAssembleDoubleEliminationView(t *testing.T) {
	bracket := &models.Bracket{TournamentID: 1, Format: models.FormatDoubleElimination, MaxSlots: 4}
	teams := viewTeams(4)

	matches := []*models.Match{
		{
			ID: 1, Section: models.SectionWinners, Round: 1, MatchNumber: 1,
			Team1ID: intPtr(1), Team2ID: intPtr(4),
			Status: models.MatchStatusScheduled,
			NextMatchID: intPtr(3), WinnerToSlot: intPtr(1),
			LoserNextMatchID: intPtr(4), LoserToSlot: intPtr(1),
		},
		{
			ID: 2, Section: models.SectionWinners, Round: 1, MatchNumber: 2,
			Team1ID: intPtr(2), Team2ID: intPtr(3),
			Status: models.MatchStatusScheduled,
			NextMatchID: intPtr(3), WinnerToSlot: intPtr(2),
			LoserNextMatchID: intPtr(4), LoserToSlot: intPtr(2),
		},
		{
			ID: 3, Section: models.SectionWinners, Round: 2, MatchNumber: 1,
			Status: models.MatchStatusScheduled, NextMatchID: intPtr(5), WinnerToSlot: intPtr(1),
		},
		{
			ID: 4, Section: models.SectionLosers, Round: 1, MatchNumber: 1,
			Status: models.MatchStatusScheduled,
		},
		{
			ID: 5, Section: models.SectionGrandFinal, Round: 1, MatchNumber: 1,
			Status: models.MatchStatusScheduled,
		},
	}

	view := assembleBracketView(bracket, teams, matches)
	require.Len(t, view.WinnersRounds, 2)
	require.Len(t, view.LosersRounds, 1)
	assert.Equal(t, "Losers Round 1", view.LosersRounds[0].Name)
	require.NotNil(t, view.GrandFinal)
	assert.Nil(t, view.Rounds)

	// The losers match shows both loser sources.
	lb := view.LosersRounds[0].Matches[0]
	assert.Equal(t, models.SlotTBD, lb.Slot1.Kind)
	assert.Equal(t, models.SourceLoser, lb.Slot1.SourceKind)
	require.NotNil(t, lb.Slot1.SourceMatchID)
	assert.Equal(t, 1, *lb.Slot1.SourceMatchID)

	// The grand final waits on the winners final.
	assert.Equal(t, models.SlotTBD, view.GrandFinal.Slot1.Kind)
	assert.Equal(t, models.SourceWinner, view.GrandFinal.Slot1.SourceKind)
	// No one feeds slot 2 until the losers bracket is expanded.
	assert.Equal(t, models.SlotBye, view.GrandFinal.Slot2.Kind)
}

func TestAssembleGroupStageView(t *testing.T) {
	bracket := &models.Bracket{TournamentID: 1, Format: models.FormatGroupStage, MaxSlots: 4, GroupCount: intPtr(2)}
	teams := viewTeams(4)

	group := func(n int) *int { return intPtr(n) }
	matches := []*models.Match{
		{
			ID: 1, Section: models.SectionGroup, Round: 1, MatchNumber: 1, GroupNumber: group(1),
			Team1ID: intPtr(1), Team2ID: intPtr(3), WinnerID: intPtr(1),
			Status: models.MatchStatusCompleted,
		},
		{
			ID: 2, Section: models.SectionGroup, Round: 1, MatchNumber: 1, GroupNumber: group(2),
			Team1ID: intPtr(2), Team2ID: intPtr(4),
			Status: models.MatchStatusScheduled,
		},
	}

	view := assembleBracketView(bracket, teams, matches)
	require.Len(t, view.Groups, 2)

	g1 := view.Groups[0]
	assert.Equal(t, "Group A", g1.Name)
	require.Len(t, g1.Teams, 2)
	require.Len(t, g1.Matches, 1)
	require.Len(t, g1.Standings, 2)
	assert.Equal(t, 1, g1.Standings[0].TeamID)
	assert.Equal(t, 3, g1.Standings[0].Points)

	g2 := view.Groups[1]
	assert.Equal(t, "Group B", g2.Name)
	assert.Equal(t, 0, g2.Standings[0].Points)
}

func TestAssembleLeaderboardView(t *testing.T) {
	bracket := &models.Bracket{TournamentID: 1, Format: models.FormatLeaderboard, MaxSlots: 3}
	teams := viewTeams(3)

	matches := []*models.Match{
		{ID: 1, Section: models.SectionLeaderboard, Round: 1, MatchNumber: 1, Team1ID: intPtr(1), Score1: intPtr(50), Status: models.MatchStatusCompleted},
		{ID: 2, Section: models.SectionLeaderboard, Round: 1, MatchNumber: 2, Team1ID: intPtr(2), Score1: intPtr(80), Status: models.MatchStatusCompleted},
		{ID: 3, Section: models.SectionLeaderboard, Round: 1, MatchNumber: 3, Team1ID: intPtr(3), Status: models.MatchStatusScheduled},
	}

	view := assembleBracketView(bracket, teams, matches)
	assert.Nil(t, view.Rounds)
	assert.Nil(t, view.Groups)
	require.Len(t, view.Standings, 3)
	assert.Equal(t, 2, view.Standings[0].TeamID)
	assert.Equal(t, 80, view.Standings[0].Points)
	assert.Equal(t, 1, view.Standings[0].Rank)
}
