package brackets

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/openbracket/tournament-engine/models"
)

type node struct {
	teamID    *int
	sourceUID *string
	bye       bool
}

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error) {
	if len(params.Teams) < 2 {
		return nil, ErrInsufficientTeams
	}
	if !isPowerOfTwo(params.MaxSlots) || params.MaxSlots < len(params.Teams) {
		return nil, ErrInvalidSlotCount
	}

	teams := orderTeams(params)
	return buildEliminationTree(teams, params.MaxSlots, models.SectionWinners, "W-")
}

// seedPositions spreads the ordered team list across the round-1 slots so
// that byes (positions beyond the live team count) fall against the top of
// the order instead of stacking into dead sub-trees.
func seedPositions(bracketSize int) []int {
	positions := []int{0}
	for len(positions) < bracketSize {
		doubled := len(positions) * 2
		next := make([]int, 0, doubled)
		for _, seat := range positions {
			next = append(next, seat, doubled-1-seat)
		}
		positions = next
	}
	return positions
}

// buildEliminationTree lays out a full elimination tree of maxSlots leaf
// slots: exactly maxSlots-1 matches over ceil(log2(maxSlots)) rounds.
// Byes with a known occupant are decided on the spot and the occupant is
// written straight into the downstream slot; byes whose occupant is still
// an upstream winner keep a source reference and are decided by the
// progression engine when that winner arrives.
func buildEliminationTree(teams []*models.Team, maxSlots int, section models.BracketSection, uidPrefix string) ([]*BracketMatch, error) {
	numRounds := int(math.Ceil(math.Log2(float64(maxSlots))))

	current := make([]*node, maxSlots)
	for pos, seat := range seedPositions(maxSlots) {
		if seat < len(teams) {
			current[pos] = &node{teamID: intPtr(teams[seat].ID)}
		} else {
			current[pos] = &node{bye: true}
		}
	}

	matches := make([]*BracketMatch, 0, maxSlots-1)

	for r := 1; r <= numRounds; r++ {
		next := make([]*node, 0, len(current)/2)

		for i := 0; i < len(current); i += 2 {
			n1, n2 := current[i], current[i+1]
			// Keep the occupied side in slot 1 for byes.
			if n1.bye && !n2.bye {
				n1, n2 = n2, n1
			}

			uid := fmt.Sprintf("%sR%dM%d", uidPrefix, r, i/2+1)
			bm := &BracketMatch{
				UID:          uid,
				Section:      section,
				Round:        r,
				OrderInRound: i/2 + 1,
			}

			switch {
			case n2.bye && n1.teamID != nil:
				bm.IsBye = true
				bm.Team1ID = n1.teamID
				bm.WinnerID = n1.teamID
				next = append(next, &node{teamID: n1.teamID})
			case n2.bye && n1.sourceUID != nil:
				// Occupant unknown until the upstream match is decided.
				bm.IsBye = true
				bm.SourceMatch1UID = n1.sourceUID
				bm.Source1Kind = models.SourceWinner
				next = append(next, &node{sourceUID: strPtr(uid)})
			case n1.bye && n2.bye:
				bm.IsBye = true
				next = append(next, &node{bye: true})
			default:
				if n1.teamID != nil {
					bm.Team1ID = n1.teamID
				} else {
					bm.SourceMatch1UID = n1.sourceUID
					bm.Source1Kind = models.SourceWinner
				}
				if n2.teamID != nil {
					bm.Team2ID = n2.teamID
				} else {
					bm.SourceMatch2UID = n2.sourceUID
					bm.Source2Kind = models.SourceWinner
				}
				next = append(next, &node{sourceUID: strPtr(uid)})
			}

			matches = append(matches, bm)
		}
		current = next
	}

	if len(current) != 1 {
		return nil, fmt.Errorf("elimination tree did not converge to a single champion node (got %d)", len(current))
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Round != matches[j].Round {
			return matches[i].Round < matches[j].Round
		}
		return matches[i].OrderInRound < matches[j].OrderInRound
	})
	return matches, nil
}
