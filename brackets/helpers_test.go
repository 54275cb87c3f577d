package brackets

import (
	"fmt"

	"github.com/openbracket/tournament-engine/models"
)

// testTeams returns n teams with ids 1..n seeded in id order.
func testTeams(n int) []*models.Team {
	teams := make([]*models.Team, n)
	for i := 0; i < n; i++ {
		teams[i] = &models.Team{
			ID:           i + 1,
			TournamentID: 1,
			Name:         fmt.Sprintf("Team %d", i+1),
			Seed:         i + 1,
		}
	}
	return teams
}

// materialize assigns database-style ids to builder output and wires the
// forward links the way the persistence layer does, so progression can be
// exercised without a database.
func materialize(generated []*BracketMatch) (map[string]*models.Match, map[int]*models.Match) {
	byUID := make(map[string]*models.Match, len(generated))
	index := make(map[int]*models.Match, len(generated))

	for i, bm := range generated {
		uid := bm.UID
		m := &models.Match{
			ID:           i + 1,
			TournamentID: 1,
			Section:      bm.Section,
			Round:        bm.Round,
			MatchNumber:  bm.OrderInRound,
			GroupNumber:  bm.GroupNumber,
			Team1ID:      bm.Team1ID,
			Team2ID:      bm.Team2ID,
			WinnerID:     bm.WinnerID,
			IsBye:        bm.IsBye,
			Status:       models.MatchStatusScheduled,
			BracketUID:   &uid,
		}
		if bm.WinnerID != nil {
			m.Status = models.MatchStatusCompleted
		}
		byUID[uid] = m
		index[m.ID] = m
	}

	link := func(sourceUID, kind string, targetID, slot int) {
		src := byUID[sourceUID]
		if src == nil {
			return
		}
		if kind == models.SourceLoser {
			src.LoserNextMatchID = intPtr(targetID)
			src.LoserToSlot = intPtr(slot)
		} else {
			src.NextMatchID = intPtr(targetID)
			src.WinnerToSlot = intPtr(slot)
		}
	}

	for _, bm := range generated {
		target := byUID[bm.UID]
		if bm.SourceMatch1UID != nil {
			link(*bm.SourceMatch1UID, bm.Source1Kind, target.ID, 1)
		}
		if bm.SourceMatch2UID != nil {
			link(*bm.SourceMatch2UID, bm.Source2Kind, target.ID, 2)
		}
	}

	return byUID, index
}

// materializeExpansion adds later losers rounds to an already materialized
// bracket, wiring their links and the losers champion's path into the
// grand final the way the service persists an expansion.
func materializeExpansion(byUID map[string]*models.Match, index map[int]*models.Match, expansion *LosersExpansion) {
	nextID := len(index) + 1
	for _, bm := range expansion.Matches {
		uid := bm.UID
		m := &models.Match{
			ID:           nextID,
			TournamentID: 1,
			Section:      bm.Section,
			Round:        bm.Round,
			MatchNumber:  bm.OrderInRound,
			Team1ID:      bm.Team1ID,
			Team2ID:      bm.Team2ID,
			WinnerID:     bm.WinnerID,
			IsBye:        bm.IsBye,
			Status:       models.MatchStatusScheduled,
			BracketUID:   &uid,
		}
		if bm.WinnerID != nil {
			m.Status = models.MatchStatusCompleted
		}
		byUID[uid] = m
		index[m.ID] = m
		nextID++
	}

	link := func(sourceUID, kind string, targetID, slot int) {
		src := byUID[sourceUID]
		if src == nil {
			return
		}
		if kind == models.SourceLoser {
			src.LoserNextMatchID = intPtr(targetID)
			src.LoserToSlot = intPtr(slot)
		} else {
			src.NextMatchID = intPtr(targetID)
			src.WinnerToSlot = intPtr(slot)
		}
	}

	for _, bm := range expansion.Matches {
		target := byUID[bm.UID]
		if bm.SourceMatch1UID != nil {
			link(*bm.SourceMatch1UID, bm.Source1Kind, target.ID, 1)
		}
		if bm.SourceMatch2UID != nil {
			link(*bm.SourceMatch2UID, bm.Source2Kind, target.ID, 2)
		}
	}

	if gf, champ := byUID[GrandFinalUID], byUID[expansion.LosersChampionUID]; gf != nil && champ != nil {
		champ.NextMatchID = intPtr(gf.ID)
		champ.WinnerToSlot = intPtr(2)
	}
}
