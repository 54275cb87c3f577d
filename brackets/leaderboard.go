package brackets

import (
	"context"
	"fmt"

	"github.com/openbracket/tournament-engine/models"
)

type LeaderboardGenerator struct{}

func NewLeaderboardGenerator() BracketGenerator {
	return &LeaderboardGenerator{}
}

func (g *LeaderboardGenerator) GetName() string {
	return "Leaderboard"
}

// GenerateBracket creates one score-holder entry per team. Entries have no
// opponent and never a winner; score submissions write Score1 and the
// standings rank by it.
func (g *LeaderboardGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error) {
	if len(params.Teams) < 2 {
		return nil, ErrInsufficientTeams
	}

	entries := make([]*BracketMatch, 0, len(params.Teams))
	for i, t := range params.Teams {
		entries = append(entries, &BracketMatch{
			UID:          fmt.Sprintf("E%d", i+1),
			Section:      models.SectionLeaderboard,
			Round:        1,
			OrderInRound: i + 1,
			Team1ID:      intPtr(t.ID),
		})
	}
	return entries, nil
}
