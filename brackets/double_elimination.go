package brackets

import (
	"context"
	"fmt"
	"math"

	"github.com/openbracket/tournament-engine/models"
)

const GrandFinalUID = "GF"

type DoubleEliminationGenerator struct{}

func NewDoubleEliminationGenerator() BracketGenerator {
	return &DoubleEliminationGenerator{}
}

func (g *DoubleEliminationGenerator) GetName() string {
	return "DoubleElimination"
}

// GenerateBracket builds the winners bracket, the first losers round (fed
// by winners round 1) and the grand final shell. Later losers rounds are
// populated by ExpandLosersBracket on explicit operator action.
func (g *DoubleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error) {
	if len(params.Teams) < 2 {
		return nil, ErrInsufficientTeams
	}
	// A two-slot double elimination collapses into a plain rematch; the
	// format needs at least two winners rounds to mean anything.
	if !isPowerOfTwo(params.MaxSlots) || params.MaxSlots < 4 || params.MaxSlots < len(params.Teams) {
		return nil, ErrInvalidSlotCount
	}

	teams := orderTeams(params)
	winners, err := buildEliminationTree(teams, params.MaxSlots, models.SectionWinners, "W-")
	if err != nil {
		return nil, err
	}

	byUID := make(map[string]*BracketMatch, len(winners))
	for _, m := range winners {
		byUID[m.UID] = m
	}

	matches := winners

	// Losers round 1: loser of W-R1M(2i-1) vs loser of W-R1M(2i). A bye
	// upstream never produces a loser, so its slot stays permanently
	// empty and the losers match degrades to a bye itself.
	for i := 1; i <= params.MaxSlots/4; i++ {
		bm := &BracketMatch{
			UID:          losersUID(1, i),
			Section:      models.SectionLosers,
			Round:        1,
			OrderInRound: i,
		}
		applyFeeds(bm,
			loserFeedOf(byUID[fmt.Sprintf("W-R1M%d", 2*i-1)]),
			loserFeedOf(byUID[fmt.Sprintf("W-R1M%d", 2*i)]))
		matches = append(matches, bm)
	}

	// Grand final shell: winners champion in slot 1, losers champion in
	// slot 2 once the full losers bracket exists.
	numRounds := int(math.Log2(float64(params.MaxSlots)))
	matches = append(matches, &BracketMatch{
		UID:             GrandFinalUID,
		Section:         models.SectionGrandFinal,
		Round:           1,
		OrderInRound:    1,
		SourceMatch1UID: strPtr(fmt.Sprintf("W-R%dM1", numRounds)),
		Source1Kind:     models.SourceWinner,
	})

	return matches, nil
}

func losersUID(round, match int) string {
	return fmt.Sprintf("L-R%dM%d", round, match)
}

// WinnersFeedTarget is the static winners-to-losers feed mapping: the
// loser of winners round wbRound, match wbMatch drops into the returned
// losers-bracket coordinates. Round 1 pairs losers among themselves; every
// later winners round feeds slot 2 of one "entry" losers round, with the
// match order reversed on even winners rounds so teams from the same
// quarter of the tree do not meet again immediately.
func WinnersFeedTarget(maxSlots, wbRound, wbMatch int) (lbRound, lbMatch, slot int) {
	if wbRound == 1 {
		return 1, (wbMatch + 1) / 2, 2 - wbMatch%2
	}
	lbRound = 2 * (wbRound - 1)
	count := maxSlots >> uint(wbRound)
	if wbRound%2 == 0 {
		return lbRound, count + 1 - wbMatch, 2
	}
	return lbRound, wbMatch, 2
}

// wbMatchFeeding inverts WinnersFeedTarget for an entry losers round:
// which winners match drops its loser into losers match lbMatch.
func wbMatchFeeding(maxSlots, lbRound, lbMatch int) int {
	wbRound := lbRound/2 + 1
	count := maxSlots >> uint(wbRound)
	if wbRound%2 == 0 {
		return count + 1 - lbMatch
	}
	return lbMatch
}

// MatchesInLosersRound gives the size of each losers round for a full
// bracket of maxSlots slots. Losers rounds run 1..2*(log2(maxSlots)-1),
// alternating entry rounds (fresh winners-bracket losers drop in) and
// consolidation rounds (losers-bracket survivors pair up).
func MatchesInLosersRound(maxSlots, lbRound int) int {
	if lbRound == 1 {
		return maxSlots / 4
	}
	if lbRound%2 == 0 {
		return maxSlots >> uint(lbRound/2+1)
	}
	return maxSlots >> uint((lbRound-1)/2+2)
}

// TotalLosersRounds for a bracket of maxSlots slots.
func TotalLosersRounds(maxSlots int) int {
	return 2 * (int(math.Log2(float64(maxSlots))) - 1)
}

// feed is one resolved input to a losers match: a concrete team, a
// reference to a pending upstream outcome, or a permanently dead slot.
type feed struct {
	teamID    *int
	sourceUID *string
	kind      string
	dead      bool
}

func loserFeedOf(src *BracketMatch) feed {
	if src == nil || src.IsBye {
		return feed{dead: true}
	}
	return feed{sourceUID: strPtr(src.UID), kind: models.SourceLoser}
}

// applyFeeds fills a match from two resolved feeds, degrading to a bye
// when a side is permanently empty and deciding the match outright when
// the surviving side is already concrete. A feed may carry a team and a
// source reference at once; both are kept, so the slot is usable now and
// the link still exists for result corrections.
func applyFeeds(bm *BracketMatch, f1, f2 feed) {
	if f1.dead && !f2.dead {
		f1, f2 = f2, f1
	}

	if f2.dead {
		bm.IsBye = true
		bm.Team1ID = f1.teamID
		bm.WinnerID = f1.teamID
		bm.SourceMatch1UID = f1.sourceUID
		bm.Source1Kind = f1.kind
		return
	}

	bm.Team1ID = f1.teamID
	bm.SourceMatch1UID = f1.sourceUID
	bm.Source1Kind = f1.kind
	bm.Team2ID = f2.teamID
	bm.SourceMatch2UID = f2.sourceUID
	bm.Source2Kind = f2.kind
}

// LosersExpansion is the output of ExpandLosersBracket: the losers rounds
// beyond the initial feed, plus the UID of the losers final whose winner
// belongs in the grand final's slot 2.
type LosersExpansion struct {
	Matches           []*BracketMatch
	LosersChampionUID string
}

// ExpandLosersBracket builds losers rounds 2..2*(k-1) for an existing
// double-elimination bracket. Slots whose upstream outcome is already
// known (decided matches, byes) are filled with concrete teams on the
// spot; everything else keeps a source reference for the progression
// engine. Safe to call before any winners result exists.
func ExpandLosersBracket(maxSlots int, existing []*models.Match) (*LosersExpansion, error) {
	if !isPowerOfTwo(maxSlots) || maxSlots < 4 {
		return nil, ErrInvalidSlotCount
	}

	byUID := make(map[string]*models.Match, len(existing))
	// fed marks matches that some upstream row still feeds, so an empty
	// undecided bye can be told apart from a permanently dead one.
	fed := make(map[int]bool)
	for _, m := range existing {
		if m.BracketUID != nil {
			byUID[*m.BracketUID] = m
		}
		if m.NextMatchID != nil {
			fed[*m.NextMatchID] = true
		}
		if m.LoserNextMatchID != nil {
			fed[*m.LoserNextMatchID] = true
		}
	}

	// Outcomes of matches created during this expansion, for cascading
	// byes: later rounds consume earlier rounds within the same call.
	created := make(map[string]*BracketMatch)

	// Decided outcomes yield a concrete team AND keep the source reference:
	// the persistence layer wires links from the references, and without
	// the link a later correction upstream could not re-flow down here.
	resolve := func(uid, kind string) feed {
		if m, ok := byUID[uid]; ok {
			if kind == models.SourceLoser {
				if m.IsBye {
					return feed{dead: true}
				}
				if m.Decided() {
					return feed{teamID: m.LoserID(), sourceUID: strPtr(uid), kind: kind}
				}
			} else {
				if m.Decided() {
					return feed{teamID: m.WinnerID, sourceUID: strPtr(uid), kind: kind}
				}
				if m.IsBye && m.Team1ID == nil && !fed[m.ID] {
					return feed{dead: true}
				}
			}
			return feed{sourceUID: strPtr(uid), kind: kind}
		}
		if bm, ok := created[uid]; ok {
			if bm.IsBye && bm.Team1ID == nil && bm.SourceMatch1UID == nil {
				return feed{dead: true}
			}
			if bm.WinnerID != nil {
				return feed{teamID: bm.WinnerID, sourceUID: strPtr(uid), kind: kind}
			}
			return feed{sourceUID: strPtr(uid), kind: kind}
		}
		return feed{dead: true}
	}

	total := TotalLosersRounds(maxSlots)
	expansion := &LosersExpansion{LosersChampionUID: losersUID(total, 1)}

	for lr := 2; lr <= total; lr++ {
		count := MatchesInLosersRound(maxSlots, lr)
		for i := 1; i <= count; i++ {
			var f1, f2 feed
			if lr%2 == 0 {
				// Entry round: losers-bracket survivor vs fresh loser
				// dropping from the winners bracket.
				f1 = resolve(losersUID(lr-1, i), models.SourceWinner)
				wbRound := lr/2 + 1
				f2 = resolve(fmt.Sprintf("W-R%dM%d", wbRound, wbMatchFeeding(maxSlots, lr, i)), models.SourceLoser)
			} else {
				// Consolidation round: pair the previous round's winners.
				f1 = resolve(losersUID(lr-1, 2*i-1), models.SourceWinner)
				f2 = resolve(losersUID(lr-1, 2*i), models.SourceWinner)
			}

			bm := &BracketMatch{
				UID:          losersUID(lr, i),
				Section:      models.SectionLosers,
				Round:        lr,
				OrderInRound: i,
			}
			applyFeeds(bm, f1, f2)
			created[bm.UID] = bm
			expansion.Matches = append(expansion.Matches, bm)
		}
	}

	return expansion, nil
}
