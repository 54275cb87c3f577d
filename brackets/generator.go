package brackets

import (
	"context"
	"math/rand"

	"github.com/openbracket/tournament-engine/models"
)

// GenerateBracketParams carries everything a generator needs to lay out
// the initial structure for one tournament.
type GenerateBracketParams struct {
	TournamentID int
	Teams        []*models.Team
	// MaxSlots is the bracket capacity. For elimination formats it must be
	// a power of two; unfilled slots become byes.
	MaxSlots int
	// Seeded preserves the given team order. When false the list is
	// shuffled before round-1 placement.
	Seeded bool
	// Rand overrides the shuffle source; nil uses the global source.
	// Tests inject a fixed seed here.
	Rand *rand.Rand
}

// BracketMatch is one match of the generated structure, identified by a
// UID local to the bracket ("W-R1M2", "L-R3M1", "GF", ...). Source UIDs
// record which earlier match feeds each slot; the persistence layer turns
// them into forward links once database ids exist.
type BracketMatch struct {
	UID          string
	Section      models.BracketSection
	Round        int
	OrderInRound int
	GroupNumber  *int

	Team1ID *int
	Team2ID *int

	SourceMatch1UID *string
	Source1Kind     string
	SourceMatch2UID *string
	Source2Kind     string

	IsBye bool
	// WinnerID is pre-assigned for byes whose occupant is known at build
	// time; the occupant's advancement is already reflected in the
	// downstream match's team slot.
	WinnerID *int
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error)

	GetName() string
}

// NewGenerator dispatches on the closed format tag. Adding a format means
// adding a case here and a generator implementing the interface.
func NewGenerator(format models.BracketFormat) (BracketGenerator, error) {
	switch format {
	case models.FormatSingleElimination:
		return NewSingleEliminationGenerator(), nil
	case models.FormatDoubleElimination:
		return NewDoubleEliminationGenerator(), nil
	case models.FormatSwiss:
		return NewSwissGenerator(), nil
	case models.FormatGroupStage:
		return NewGroupStageGenerator(), nil
	case models.FormatLeaderboard:
		return NewLeaderboardGenerator(), nil
	default:
		return nil, ErrInvalidFormat
	}
}

func orderTeams(params GenerateBracketParams) []*models.Team {
	teams := make([]*models.Team, len(params.Teams))
	copy(teams, params.Teams)
	if params.Seeded {
		return teams
	}
	shuffle := rand.Shuffle
	if params.Rand != nil {
		shuffle = params.Rand.Shuffle
	}
	shuffle(len(teams), func(i, j int) {
		teams[i], teams[j] = teams[j], teams[i]
	})
	return teams
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func intPtr(v int) *int { return &v }

func strPtr(s string) *string { return &s }
