package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/openbracket/tournament-engine/brackets"
	"github.com/openbracket/tournament-engine/models"
	"github.com/openbracket/tournament-engine/repositories"
	"golang.org/x/sync/errgroup"
)

// LogoURLResolver turns a stored logo key into a public URL.
// storage.FileUploader satisfies it; view assembly needs nothing else from
// the uploader.
type LogoURLResolver interface {
	GetPublicURL(key string) string
}

// GetBracketView assembles the full serializable snapshot for one
// tournament: bracket row, roster and matches are fetched in parallel, then
// every slot is resolved to a team, a TBD reference or a bye marker.
func (s *bracketService) GetBracketView(ctx context.Context, tournamentID int) (*models.BracketView, error) {
	var (
		bracket *models.Bracket
		teams   []*models.Team
		matches []*models.Match
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := s.bracketRepo.GetByTournamentID(gCtx, nil, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrBracketNotFound) {
				return ErrBracketNotFound
			}
			return fmt.Errorf("failed to fetch bracket for tournament %d: %w", tournamentID, err)
		}
		bracket = b
		return nil
	})
	g.Go(func() error {
		t, err := s.teamRepo.ListByTournament(gCtx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to fetch teams for tournament %d: %w", tournamentID, err)
		}
		teams = t
		return nil
	})
	g.Go(func() error {
		m, err := s.matchRepo.ListByTournament(gCtx, nil, tournamentID, nil, nil)
		if err != nil {
			return fmt.Errorf("failed to fetch matches for tournament %d: %w", tournamentID, err)
		}
		matches = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.populateLogoURLs(teams)
	return assembleBracketView(bracket, teams, matches), nil
}

func (s *bracketService) populateLogoURLs(teams []*models.Team) {
	if s.uploader == nil {
		return
	}
	for _, t := range teams {
		if t.LogoKey != nil && *t.LogoKey != "" {
			if u := s.uploader.GetPublicURL(*t.LogoKey); u != "" {
				t.LogoURL = &u
			}
		}
	}
}

// viewAssembler carries the shared lookup state while one snapshot is built.
type viewAssembler struct {
	teamByID map[int]*models.Team
	// feederOf maps (match id, slot) to the upstream match filling it, for
	// rendering TBD slots with their source.
	feederOf map[[2]int]feederRef
}

type feederRef struct {
	matchID int
	kind    string
}

func assembleBracketView(bracket *models.Bracket, teams []*models.Team, matches []*models.Match) *models.BracketView {
	a := &viewAssembler{
		teamByID: make(map[int]*models.Team, len(teams)),
		feederOf: make(map[[2]int]feederRef),
	}
	for _, t := range teams {
		a.teamByID[t.ID] = t
	}
	for _, m := range matches {
		if m.NextMatchID != nil && m.WinnerToSlot != nil {
			a.feederOf[[2]int{*m.NextMatchID, *m.WinnerToSlot}] = feederRef{matchID: m.ID, kind: models.SourceWinner}
		}
		if m.LoserNextMatchID != nil && m.LoserToSlot != nil {
			a.feederOf[[2]int{*m.LoserNextMatchID, *m.LoserToSlot}] = feederRef{matchID: m.ID, kind: models.SourceLoser}
		}
	}

	view := &models.BracketView{
		TournamentID: bracket.TournamentID,
		Format:       bracket.Format,
	}

	switch bracket.Format {
	case models.FormatSingleElimination:
		view.Rounds = a.roundViews(sectionMatches(matches, models.SectionWinners), brackets.RoundName)

	case models.FormatDoubleElimination:
		view.WinnersRounds = a.roundViews(sectionMatches(matches, models.SectionWinners), brackets.RoundName)
		view.LosersRounds = a.roundViews(sectionMatches(matches, models.SectionLosers), func(round, _ int) string {
			return brackets.LosersRoundName(round)
		})
		if gf := sectionMatches(matches, models.SectionGrandFinal); len(gf) > 0 {
			mv := a.matchView(gf[0])
			view.GrandFinal = &mv
		}

	case models.FormatSwiss:
		view.Rounds = a.roundViews(matches, func(round, _ int) string {
			return fmt.Sprintf("Round %d", round)
		})
		view.Standings = brackets.ComputeStandings(teams, matches)

	case models.FormatGroupStage:
		view.Groups = a.groupViews(teams, matches)

	case models.FormatLeaderboard:
		view.Standings = brackets.ComputeStandings(teams, matches)
	}

	return view
}

func sectionMatches(matches []*models.Match, section models.BracketSection) []*models.Match {
	out := make([]*models.Match, 0, len(matches))
	for _, m := range matches {
		if m.Section == section {
			out = append(out, m)
		}
	}
	return out
}

func (a *viewAssembler) roundViews(matches []*models.Match, name func(round, totalRounds int) string) []models.RoundView {
	totalRounds := 0
	byRound := make(map[int][]*models.Match)
	for _, m := range matches {
		byRound[m.Round] = append(byRound[m.Round], m)
		if m.Round > totalRounds {
			totalRounds = m.Round
		}
	}

	rounds := make([]models.RoundView, 0, totalRounds)
	for r := 1; r <= totalRounds; r++ {
		group := byRound[r]
		if len(group) == 0 {
			continue
		}
		sort.Slice(group, func(i, j int) bool { return group[i].MatchNumber < group[j].MatchNumber })
		rv := models.RoundView{
			Round:   r,
			Name:    name(r, totalRounds),
			Matches: make([]models.MatchView, 0, len(group)),
		}
		for _, m := range group {
			rv.Matches = append(rv.Matches, a.matchView(m))
		}
		rounds = append(rounds, rv)
	}
	return rounds
}

func (a *viewAssembler) groupViews(teams []*models.Team, matches []*models.Match) []models.GroupView {
	byGroup := make(map[int][]*models.Match)
	memberGroup := make(map[int]int)
	maxGroup := 0
	for _, m := range matches {
		if m.GroupNumber == nil {
			continue
		}
		n := *m.GroupNumber
		byGroup[n] = append(byGroup[n], m)
		if n > maxGroup {
			maxGroup = n
		}
		if m.Team1ID != nil {
			memberGroup[*m.Team1ID] = n
		}
		if m.Team2ID != nil {
			memberGroup[*m.Team2ID] = n
		}
	}

	groups := make([]models.GroupView, 0, maxGroup)
	for n := 1; n <= maxGroup; n++ {
		groupMatches := byGroup[n]
		sort.Slice(groupMatches, func(i, j int) bool {
			if groupMatches[i].Round != groupMatches[j].Round {
				return groupMatches[i].Round < groupMatches[j].Round
			}
			return groupMatches[i].MatchNumber < groupMatches[j].MatchNumber
		})

		var groupTeams []*models.Team
		for _, t := range teams {
			if memberGroup[t.ID] == n {
				groupTeams = append(groupTeams, t)
			}
		}

		gv := models.GroupView{
			Number:  n,
			Name:    brackets.GroupName(n),
			Teams:   make([]models.Team, 0, len(groupTeams)),
			Matches: make([]models.MatchView, 0, len(groupMatches)),
		}
		for _, t := range groupTeams {
			gv.Teams = append(gv.Teams, *t)
		}
		for _, m := range groupMatches {
			gv.Matches = append(gv.Matches, a.matchView(m))
		}
		gv.Standings = brackets.ComputeStandings(groupTeams, groupMatches)
		groups = append(groups, gv)
	}
	return groups
}

func (a *viewAssembler) matchView(m *models.Match) models.MatchView {
	mv := models.MatchView{
		ID:          m.ID,
		Round:       m.Round,
		MatchNumber: m.MatchNumber,
		GroupNumber: m.GroupNumber,
		Slot1:       a.slotView(m, 1, m.Team1ID),
		Slot2:       a.slotView(m, 2, m.Team2ID),
		Score1:      m.Score1,
		Score2:      m.Score2,
		IsBye:       m.IsBye,
		Status:      m.Status,
	}
	if m.WinnerID != nil {
		mv.Winner = a.teamByID[*m.WinnerID]
	}
	return mv
}

func (a *viewAssembler) slotView(m *models.Match, slot int, teamID *int) models.SlotView {
	if teamID != nil {
		return models.SlotView{Kind: models.SlotTeam, Team: a.teamByID[*teamID]}
	}
	if ref, ok := a.feederOf[[2]int{m.ID, slot}]; ok {
		id := ref.matchID
		return models.SlotView{Kind: models.SlotTBD, SourceMatchID: &id, SourceKind: ref.kind}
	}
	return models.SlotView{Kind: models.SlotBye}
}
