package brackets

import (
	"context"
	"fmt"

	"github.com/openbracket/tournament-engine/models"
)

// DefaultSwissRounds caps Swiss play; small fields are further capped at
// teamCount-1 so nobody can run out of fresh opponents prematurely.
const DefaultSwissRounds = 5

func SwissRoundCap(teamCount int) int {
	if cap := teamCount - 1; cap < DefaultSwissRounds {
		return cap
	}
	return DefaultSwissRounds
}

type SwissGenerator struct{}

func NewSwissGenerator() BracketGenerator {
	return &SwissGenerator{}
}

func (g *SwissGenerator) GetName() string {
	return "Swiss"
}

// GenerateBracket creates round 1 only: rounds 2+ are paired on demand
// from live standings once the previous round completes.
func (g *SwissGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error) {
	if len(params.Teams) < 2 {
		return nil, ErrInsufficientTeams
	}

	teams := orderTeams(params)
	ids := make([]int, len(teams))
	for i, t := range teams {
		ids[i] = t.ID
	}

	pairs, byeTeam := PairSwissRound(ids, func(a, b int) bool { return false })
	return SwissRoundMatches(1, pairs, byeTeam), nil
}

// SwissRoundMatches materializes one Swiss round from pairings. The bye
// recipient, if any, gets an auto-won bye match so the free win shows up
// in the standings.
func SwissRoundMatches(round int, pairs [][2]int, byeTeam *int) []*BracketMatch {
	matches := make([]*BracketMatch, 0, len(pairs)+1)
	for i, p := range pairs {
		matches = append(matches, &BracketMatch{
			UID:          fmt.Sprintf("S-R%dM%d", round, i+1),
			Section:      models.SectionWinners,
			Round:        round,
			OrderInRound: i + 1,
			Team1ID:      intPtr(p[0]),
			Team2ID:      intPtr(p[1]),
		})
	}
	if byeTeam != nil {
		matches = append(matches, &BracketMatch{
			UID:          fmt.Sprintf("S-R%dM%d", round, len(pairs)+1),
			Section:      models.SectionWinners,
			Round:        round,
			OrderInRound: len(pairs) + 1,
			Team1ID:      byeTeam,
			IsBye:        true,
			WinnerID:     byeTeam,
		})
	}
	return matches
}

// PairSwissRound pairs teams in ranking order, avoiding rematches when any
// rematch-free perfect pairing exists (backtracking over the ranked list,
// nearest neighbours first). When no such pairing exists the straight
// consecutive pairing is used and a rematch is accepted. With an odd team
// count the lowest-ranked team sits out with a bye.
func PairSwissRound(ranked []int, played func(a, b int) bool) ([][2]int, *int) {
	pool := make([]int, len(ranked))
	copy(pool, ranked)

	var byeTeam *int
	if len(pool)%2 == 1 {
		byeTeam = intPtr(pool[len(pool)-1])
		pool = pool[:len(pool)-1]
	}

	if pairs, ok := pairWithoutRematch(pool, played); ok {
		return pairs, byeTeam
	}

	// Guaranteed rematch: fall back to consecutive pairing.
	pairs := make([][2]int, 0, len(pool)/2)
	for i := 0; i < len(pool); i += 2 {
		pairs = append(pairs, [2]int{pool[i], pool[i+1]})
	}
	return pairs, byeTeam
}

func pairWithoutRematch(pool []int, played func(a, b int) bool) ([][2]int, bool) {
	if len(pool) == 0 {
		return nil, true
	}
	first := pool[0]
	for i := 1; i < len(pool); i++ {
		opponent := pool[i]
		if played(first, opponent) {
			continue
		}
		rest := make([]int, 0, len(pool)-2)
		rest = append(rest, pool[1:i]...)
		rest = append(rest, pool[i+1:]...)
		if tail, ok := pairWithoutRematch(rest, played); ok {
			return append([][2]int{{first, opponent}}, tail...), true
		}
	}
	return nil, false
}
