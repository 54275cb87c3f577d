package brackets

import (
	"sort"

	"github.com/openbracket/tournament-engine/models"
)

// PointsPerWin is fixed; draws are not supported anywhere in the engine.
const PointsPerWin = 3

// ComputeStandings derives the ranked table for the given teams from the
// decided matches. Pure: identical inputs always produce the identical
// ordering. Ranking key is points, then total wins, then the original
// seed order, never anything random at read time.
//
// Leaderboard entries (score holders without opponents) rank by their
// accumulated Score1 instead of win points.
func ComputeStandings(teams []*models.Team, matches []*models.Match) []models.Standing {
	rows := make(map[int]*models.Standing, len(teams))
	order := make([]int, 0, len(teams))
	for _, t := range teams {
		rows[t.ID] = &models.Standing{TeamID: t.ID, Seed: t.Seed, Team: t}
		order = append(order, t.ID)
	}

	for _, m := range matches {
		if m.Section == models.SectionLeaderboard {
			if row, ok := rows[deref(m.Team1ID)]; ok && m.Score1 != nil {
				row.Points = *m.Score1
				row.GroupNumber = m.GroupNumber
			}
			continue
		}
		if !m.Decided() {
			continue
		}
		winner, ok := rows[*m.WinnerID]
		if !ok {
			continue
		}
		winner.Played++
		winner.Wins++
		winner.Points += PointsPerWin
		winner.GroupNumber = m.GroupNumber
		if loserID := m.LoserID(); loserID != nil {
			if loser, ok := rows[*loserID]; ok {
				loser.Played++
				loser.Losses++
				loser.GroupNumber = m.GroupNumber
			}
		}
	}

	standings := make([]models.Standing, 0, len(order))
	for _, id := range order {
		standings = append(standings, *rows[id])
	}
	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Points != standings[j].Points {
			return standings[i].Points > standings[j].Points
		}
		if standings[i].Wins != standings[j].Wins {
			return standings[i].Wins > standings[j].Wins
		}
		return standings[i].Seed < standings[j].Seed
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
