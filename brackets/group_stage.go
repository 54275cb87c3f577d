package brackets

import (
	"context"
	"fmt"

	"github.com/openbracket/tournament-engine/models"
)

const DefaultGroupCount = 4

// GroupCountFor keeps every group at two teams or more.
func GroupCountFor(teamCount int) int {
	count := DefaultGroupCount
	if teamCount/2 < count {
		count = teamCount / 2
	}
	if count < 1 {
		count = 1
	}
	return count
}

// GroupName renders group numbers as letters: Group A, Group B, ...
func GroupName(number int) string {
	return fmt.Sprintf("Group %c", 'A'+number-1)
}

type GroupStageGenerator struct{}

func NewGroupStageGenerator() BracketGenerator {
	return &GroupStageGenerator{}
}

func (g *GroupStageGenerator) GetName() string {
	return "GroupStage"
}

// GenerateBracket distributes teams round-robin across the groups (team i
// into group i mod groupCount, so sizes differ by at most one) and lays
// out a single round robin inside each group with the circle method:
// m*(m-1)/2 matches for a group of m teams, spread over m-1 rounds.
func (g *GroupStageGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error) {
	if len(params.Teams) < 2 {
		return nil, ErrInsufficientTeams
	}

	teams := orderTeams(params)
	groupCount := GroupCountFor(len(teams))

	groups := make([][]int, groupCount)
	for i, t := range teams {
		groups[i%groupCount] = append(groups[i%groupCount], t.ID)
	}

	var matches []*BracketMatch
	for gi, members := range groups {
		groupNumber := gi + 1
		for _, bm := range roundRobinMatches(groupNumber, members) {
			matches = append(matches, bm)
		}
	}
	return matches, nil
}

// roundRobinMatches pairs every team against every other exactly once.
// Odd-sized groups rotate around a phantom seat whose "matches" are
// simply skipped.
func roundRobinMatches(groupNumber int, members []int) []*BracketMatch {
	rotation := make([]int, len(members))
	copy(rotation, members)

	const phantom = 0
	if len(rotation)%2 == 1 {
		rotation = append(rotation, phantom)
	}
	n := len(rotation)

	var matches []*BracketMatch
	for round := 1; round <= n-1; round++ {
		numberInRound := 0
		for i := 0; i < n/2; i++ {
			t1, t2 := rotation[i], rotation[n-1-i]
			if t1 == phantom || t2 == phantom {
				continue
			}
			numberInRound++
			matches = append(matches, &BracketMatch{
				UID:          fmt.Sprintf("G%d-R%dM%d", groupNumber, round, numberInRound),
				Section:      models.SectionGroup,
				Round:        round,
				OrderInRound: numberInRound,
				GroupNumber:  intPtr(groupNumber),
				Team1ID:      intPtr(t1),
				Team2ID:      intPtr(t2),
			})
		}
		// Rotate everyone but the first seat.
		rotation = append(rotation[:1], append([]int{rotation[n-1]}, rotation[1:n-1]...)...)
	}
	return matches
}
