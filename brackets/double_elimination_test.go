package brackets

import (
	"context"
	"testing"

	"github.com/openbracket/tournament-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWinnersFeedTarget(t *testing.T) {
	testCases := []struct {
		name             string
		maxSlots         int
		wbRound, wbMatch int
		lbRound, lbMatch int
		slot             int
	}{
		{name: "8 slots R1M1", maxSlots: 8, wbRound: 1, wbMatch: 1, lbRound: 1, lbMatch: 1, slot: 1},
		{name: "8 slots R1M2", maxSlots: 8, wbRound: 1, wbMatch: 2, lbRound: 1, lbMatch: 1, slot: 2},
		{name: "8 slots R1M3", maxSlots: 8, wbRound: 1, wbMatch: 3, lbRound: 1, lbMatch: 2, slot: 1},
		{name: "8 slots R1M4", maxSlots: 8, wbRound: 1, wbMatch: 4, lbRound: 1, lbMatch: 2, slot: 2},
		// Even winners rounds drop in reversed order.
		{name: "8 slots R2M1", maxSlots: 8, wbRound: 2, wbMatch: 1, lbRound: 2, lbMatch: 2, slot: 2},
		{name: "8 slots R2M2", maxSlots: 8, wbRound: 2, wbMatch: 2, lbRound: 2, lbMatch: 1, slot: 2},
		{name: "8 slots R3M1", maxSlots: 8, wbRound: 3, wbMatch: 1, lbRound: 4, lbMatch: 1, slot: 2},
		{name: "16 slots R2M3", maxSlots: 16, wbRound: 2, wbMatch: 3, lbRound: 2, lbMatch: 2, slot: 2},
		{name: "16 slots R3M1", maxSlots: 16, wbRound: 3, wbMatch: 1, lbRound: 4, lbMatch: 1, slot: 2},
		{name: "16 slots R4M1", maxSlots: 16, wbRound: 4, wbMatch: 1, lbRound: 6, lbMatch: 1, slot: 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lbRound, lbMatch, slot := WinnersFeedTarget(tc.maxSlots, tc.wbRound, tc.wbMatch)
			assert.Equal(t, tc.lbRound, lbRound)
			assert.Equal(t, tc.lbMatch, lbMatch)
			assert.Equal(t, tc.slot, slot)
		})
	}
}

func TestLosersRoundSizes(t *testing.T) {
	// Every team except the champion loses exactly once somewhere, so the
	// losers bracket of N slots must hold N-2 matches in total.
	for _, maxSlots := range []int{4, 8, 16, 32} {
		total := 0
		for lr := 1; lr <= TotalLosersRounds(maxSlots); lr++ {
			count := MatchesInLosersRound(maxSlots, lr)
			assert.Positive(t, count, "maxSlots=%d round=%d", maxSlots, lr)
			total += count
		}
		assert.Equal(t, maxSlots-2, total, "maxSlots=%d", maxSlots)
	}

	assert.Equal(t, 2, TotalLosersRounds(4))
	assert.Equal(t, 4, TotalLosersRounds(8))
	assert.Equal(t, 6, TotalLosersRounds(16))
}

func TestDoubleEliminationInitialStructure(t *testing.T) {
	gen := NewDoubleEliminationGenerator()
	matches, err := gen.GenerateBracket(context.Background(), GenerateBracketParams{
		TournamentID: 1,
		Teams:        testTeams(8),
		MaxSlots:     8,
		Seeded:       true,
	})
	require.NoError(t, err)

	// 7 winners matches, 2 losers round-1 matches, 1 grand final shell.
	require.Len(t, matches, 10)

	sections := map[models.BracketSection]int{}
	for _, m := range matches {
		sections[m.Section]++
	}
	assert.Equal(t, 7, sections[models.SectionWinners])
	assert.Equal(t, 2, sections[models.SectionLosers])
	assert.Equal(t, 1, sections[models.SectionGrandFinal])

	byUID := map[string]*BracketMatch{}
	for _, m := range matches {
		byUID[m.UID] = m
	}

	l1m1 := byUID["L-R1M1"]
	require.NotNil(t, l1m1)
	require.NotNil(t, l1m1.SourceMatch1UID)
	require.NotNil(t, l1m1.SourceMatch2UID)
	assert.Equal(t, "W-R1M1", *l1m1.SourceMatch1UID)
	assert.Equal(t, "W-R1M2", *l1m1.SourceMatch2UID)
	assert.Equal(t, models.SourceLoser, l1m1.Source1Kind)
	assert.Equal(t, models.SourceLoser, l1m1.Source2Kind)

	gf := byUID[GrandFinalUID]
	require.NotNil(t, gf)
	require.NotNil(t, gf.SourceMatch1UID)
	assert.Equal(t, "W-R3M1", *gf.SourceMatch1UID)
	assert.Equal(t, models.SourceWinner, gf.Source1Kind)
	assert.Nil(t, gf.SourceMatch2UID)
}

func TestDoubleEliminationRejectsSmallBrackets(t *testing.T) {
	gen := NewDoubleEliminationGenerator()
	_, err := gen.GenerateBracket(context.Background(), GenerateBracketParams{
		Teams:    testTeams(2),
		MaxSlots: 2,
	})
	assert.ErrorIs(t, err, ErrInvalidSlotCount)
}

func TestExpandLosersBracketFullField(t *testing.T) {
	gen := NewDoubleEliminationGenerator()
	generated, err := gen.GenerateBracket(context.Background(), GenerateBracketParams{
		TournamentID: 1,
		Teams:        testTeams(8),
		MaxSlots:     8,
		Seeded:       true,
	})
	require.NoError(t, err)

	_, index := materialize(generated)
	existing := make([]*models.Match, 0, len(index))
	for _, m := range index {
		existing = append(existing, m)
	}

	expansion, err := ExpandLosersBracket(8, existing)
	require.NoError(t, err)
	assert.Equal(t, "L-R4M1", expansion.LosersChampionUID)

	// Rounds 2, 3 and 4 hold 2+1+1 matches.
	require.Len(t, expansion.Matches, 4)
	perRound := map[int]int{}
	for _, m := range expansion.Matches {
		perRound[m.Round]++
		assert.Equal(t, models.SectionLosers, m.Section)
		assert.False(t, m.IsBye)
	}
	assert.Equal(t, map[int]int{2: 2, 3: 1, 4: 1}, perRound)

	byUID := map[string]*BracketMatch{}
	for _, m := range expansion.Matches {
		byUID[m.UID] = m
	}

	// Entry round 2 consumes the round-1 survivors and the reversed
	// winners round-2 losers.
	l2m1 := byUID["L-R2M1"]
	require.NotNil(t, l2m1.SourceMatch1UID)
	require.NotNil(t, l2m1.SourceMatch2UID)
	assert.Equal(t, "L-R1M1", *l2m1.SourceMatch1UID)
	assert.Equal(t, models.SourceWinner, l2m1.Source1Kind)
	assert.Equal(t, "W-R2M2", *l2m1.SourceMatch2UID)
	assert.Equal(t, models.SourceLoser, l2m1.Source2Kind)

	// Losers final takes the consolidation winner and the winners final
	// loser.
	l4m1 := byUID["L-R4M1"]
	require.NotNil(t, l4m1.SourceMatch1UID)
	require.NotNil(t, l4m1.SourceMatch2UID)
	assert.Equal(t, "L-R3M1", *l4m1.SourceMatch1UID)
	assert.Equal(t, "W-R3M1", *l4m1.SourceMatch2UID)
	assert.Equal(t, models.SourceLoser, l4m1.Source2Kind)
}

func TestExpandLosersBracketBackfillsDecidedLosers(t *testing.T) {
	gen := NewDoubleEliminationGenerator()
	generated, err := gen.GenerateBracket(context.Background(), GenerateBracketParams{
		TournamentID: 1,
		Teams:        testTeams(8),
		MaxSlots:     8,
		Seeded:       true,
	})
	require.NoError(t, err)

	byUID, index := materialize(generated)

	// Play winners round 1 and round 2 match 2 before expanding: the
	// round-2 loser is already known and must appear as a concrete team.
	decide := func(uid string, winnerID int) {
		m := byUID[uid]
		m.WinnerID = intPtr(winnerID)
		m.Status = models.MatchStatusCompleted
		_, advErr := Advance(m, index)
		require.NoError(t, advErr)
	}
	decide("W-R1M1", 1)
	decide("W-R1M2", 4)
	decide("W-R1M3", 2)
	decide("W-R1M4", 3)
	decide("W-R2M2", 2) // team 3 drops to the losers bracket

	existing := make([]*models.Match, 0, len(index))
	for _, m := range index {
		existing = append(existing, m)
	}

	expansion, err := ExpandLosersBracket(8, existing)
	require.NoError(t, err)

	created := map[string]*BracketMatch{}
	for _, m := range expansion.Matches {
		created[m.UID] = m
	}

	// W-R2M2's loser (team 3) lands directly in L-R2M1 slot 2, and the
	// source reference is kept so the persisted link still exists if the
	// winners result is later corrected.
	l2m1 := created["L-R2M1"]
	require.NotNil(t, l2m1.Team2ID)
	assert.Equal(t, 3, *l2m1.Team2ID)
	require.NotNil(t, l2m1.SourceMatch2UID)
	assert.Equal(t, "W-R2M2", *l2m1.SourceMatch2UID)
	assert.Equal(t, models.SourceLoser, l2m1.Source2Kind)

	// The undecided winners round-2 match 1 still feeds by reference.
	l2m2 := created["L-R2M2"]
	assert.Nil(t, l2m2.Team2ID)
	require.NotNil(t, l2m2.SourceMatch2UID)
	assert.Equal(t, "W-R2M1", *l2m2.SourceMatch2UID)
}

func TestCorrectionAfterLosersExpansion(t *testing.T) {
	gen := NewDoubleEliminationGenerator()
	generated, err := gen.GenerateBracket(context.Background(), GenerateBracketParams{
		TournamentID: 1,
		Teams:        testTeams(8),
		MaxSlots:     8,
		Seeded:       true,
	})
	require.NoError(t, err)

	byUID, index := materialize(generated)

	decide := func(uid string, winnerID int) {
		m := byUID[uid]
		m.WinnerID = intPtr(winnerID)
		m.Status = models.MatchStatusCompleted
		_, advErr := Advance(m, index)
		require.NoError(t, advErr)
	}
	decide("W-R1M1", 1)
	decide("W-R1M2", 4)
	decide("W-R1M3", 2)
	decide("W-R1M4", 3)
	decide("W-R2M2", 2)

	existing := make([]*models.Match, 0, len(index))
	for _, m := range index {
		existing = append(existing, m)
	}

	expansion, err := ExpandLosersBracket(8, existing)
	require.NoError(t, err)
	materializeExpansion(byUID, index, expansion)

	// The already-decided winners match must carry the loser link even
	// though its loser was placed as a concrete team during expansion.
	w2m2 := byUID["W-R2M2"]
	require.NotNil(t, w2m2.LoserNextMatchID)
	assert.Equal(t, byUID["L-R2M1"].ID, *w2m2.LoserNextMatchID)

	// Correct the result: team 3 won after all, so team 2 drops down.
	w2m2.WinnerID = intPtr(3)
	changed, err := Advance(w2m2, index)
	require.NoError(t, err)
	assert.NotEmpty(t, changed)

	l2m1 := byUID["L-R2M1"]
	require.NotNil(t, l2m1.Team2ID)
	assert.Equal(t, 2, *l2m1.Team2ID)

	// The winner edge is rewritten too: slot 2 of the winners final now
	// holds team 3.
	w3m1 := byUID["W-R3M1"]
	require.NotNil(t, w3m1.Team2ID)
	assert.Equal(t, 3, *w3m1.Team2ID)
}

func TestExpandLosersBracketSparseField(t *testing.T) {
	// 5 teams in 8 slots: three byes upstream mean dead losers slots, which
	// must degrade to byes instead of waiting forever.
	gen := NewDoubleEliminationGenerator()
	generated, err := gen.GenerateBracket(context.Background(), GenerateBracketParams{
		TournamentID: 1,
		Teams:        testTeams(5),
		MaxSlots:     8,
		Seeded:       true,
	})
	require.NoError(t, err)

	_, index := materialize(generated)
	existing := make([]*models.Match, 0, len(index))
	for _, m := range index {
		existing = append(existing, m)
	}

	expansion, err := ExpandLosersBracket(8, existing)
	require.NoError(t, err)

	for _, m := range expansion.Matches {
		if m.IsBye {
			// A bye here must still resolve eventually: either it already
			// has its occupant, or it waits on exactly one source.
			occupied := m.Team1ID != nil || m.SourceMatch1UID != nil
			empty := m.Team2ID == nil && m.SourceMatch2UID == nil
			assert.True(t, occupied || empty, "bye %s has an inconsistent slot layout", m.UID)
		}
	}
}
