package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/openbracket/tournament-engine/brackets"
	"github.com/openbracket/tournament-engine/models"
	"github.com/openbracket/tournament-engine/repositories"
)

// BracketNotifier is told about every committed bracket mutation so live
// viewers can refetch. Implementations must not block.
type BracketNotifier interface {
	NotifyBracketChanged(tournamentID int)
}

type BuildBracketParams struct {
	TournamentID int
	Format       models.BracketFormat
	// MaxSlots is optional; zero picks the smallest capacity that fits the
	// roster (next power of two for elimination trees).
	MaxSlots int
	// Seeded keeps the roster's seed order for placement instead of
	// shuffling.
	Seeded bool
	// Force discards an existing bracket, recorded results included.
	Force bool

	// Rand overrides the shuffle source, injected by tests.
	Rand *rand.Rand
}

type BracketService interface {
	BuildBracket(ctx context.Context, params BuildBracketParams) (*models.BracketView, error)
	GetBracketView(ctx context.Context, tournamentID int) (*models.BracketView, error)
	GenerateNextSwissRound(ctx context.Context, tournamentID int) (*models.BracketView, error)
	GenerateLosersBracket(ctx context.Context, tournamentID int) (*models.BracketView, error)
	ListMatches(ctx context.Context, tournamentID int, round *int, status *models.MatchStatus) ([]*models.Match, error)
}

type bracketService struct {
	db          *sql.DB
	bracketRepo repositories.BracketRepository
	matchRepo   repositories.MatchRepository
	teamRepo    repositories.TeamRepository
	uploader    LogoURLResolver
	notifier    BracketNotifier
}

func NewBracketService(
	db *sql.DB,
	bracketRepo repositories.BracketRepository,
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	uploader LogoURLResolver,
	notifier BracketNotifier,
) BracketService {
	return &bracketService{
		db:          db,
		bracketRepo: bracketRepo,
		matchRepo:   matchRepo,
		teamRepo:    teamRepo,
		uploader:    uploader,
		notifier:    notifier,
	}
}

func (s *bracketService) BuildBracket(ctx context.Context, params BuildBracketParams) (*models.BracketView, error) {
	if !params.Format.Valid() {
		return nil, ErrUnsupportedFormat
	}

	teams, err := s.teamRepo.ListByTournament(ctx, params.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for tournament %d: %w", params.TournamentID, err)
	}
	if len(teams) < 2 {
		return nil, ErrNotEnoughTeams
	}

	maxSlots := params.MaxSlots
	if maxSlots == 0 {
		maxSlots = len(teams)
		if params.Format.Tree() {
			maxSlots = nextPowerOfTwo(len(teams))
			if params.Format == models.FormatDoubleElimination && maxSlots < 4 {
				maxSlots = 4
			}
		}
	}

	generator, err := brackets.NewGenerator(params.Format)
	if err != nil {
		return nil, ErrUnsupportedFormat
	}

	generated, err := generator.GenerateBracket(ctx, brackets.GenerateBracketParams{
		TournamentID: params.TournamentID,
		Teams:        teams,
		MaxSlots:     maxSlots,
		Seeded:       params.Seeded,
		Rand:         params.Rand,
	})
	if err != nil {
		return nil, mapGeneratorError(err)
	}

	bracket := &models.Bracket{
		TournamentID: params.TournamentID,
		Format:       params.Format,
		MaxSlots:     maxSlots,
	}
	switch params.Format {
	case models.FormatSwiss:
		bracket.SwissRoundCap = intPtr(brackets.SwissRoundCap(len(teams)))
	case models.FormatGroupStage:
		bracket.GroupCount = intPtr(brackets.GroupCountFor(len(teams)))
	}

	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		if lockErr := repositories.AcquireTournamentLock(ctx, tx, params.TournamentID); lockErr != nil {
			return lockErr
		}

		existing, getErr := s.bracketRepo.GetByTournamentID(ctx, tx, params.TournamentID)
		if getErr != nil && !errors.Is(getErr, repositories.ErrBracketNotFound) {
			return getErr
		}
		if existing != nil {
			// Status-based so score-only leaderboard results count as
			// recorded results too; bye auto-wins do not.
			completed, countErr := s.matchRepo.CountCompleted(ctx, tx, params.TournamentID)
			if countErr != nil {
				return countErr
			}
			if completed > 0 && !params.Force {
				return ErrBracketHasResults
			}
			if delErr := s.matchRepo.DeleteByTournament(ctx, tx, params.TournamentID); delErr != nil {
				return delErr
			}
			if delErr := s.bracketRepo.DeleteByTournament(ctx, tx, params.TournamentID); delErr != nil {
				return delErr
			}
		}

		if createErr := s.bracketRepo.Create(ctx, tx, bracket); createErr != nil {
			if errors.Is(createErr, repositories.ErrBracketExists) {
				return ErrBracketAlreadyExists
			}
			return createErr
		}
		return s.persistGeneratedMatches(ctx, tx, params.TournamentID, generated)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("bracket built",
		slog.Int("tournament_id", params.TournamentID),
		slog.String("format", string(params.Format)),
		slog.Int("max_slots", maxSlots),
		slog.Int("matches", len(generated)))

	s.notify(params.TournamentID)
	return s.GetBracketView(ctx, params.TournamentID)
}

// persistGeneratedMatches stores builder output in two passes: first every
// match row keyed by its bracket UID, then the forward links, which need
// database ids on both ends.
func (s *bracketService) persistGeneratedMatches(ctx context.Context, tx *sql.Tx, tournamentID int, generated []*brackets.BracketMatch) error {
	dbIDByUID := make(map[string]int, len(generated))

	for _, bm := range generated {
		uid := bm.UID
		match := &models.Match{
			TournamentID: tournamentID,
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
			match.Status = models.MatchStatusCompleted
		}
		if err := s.matchRepo.Create(ctx, tx, match); err != nil {
			return fmt.Errorf("failed to create match %s: %w", uid, err)
		}
		dbIDByUID[uid] = match.ID
	}

	return s.wireSourceLinks(ctx, tx, generated, dbIDByUID)
}

// wireSourceLinks turns each match's source references into forward links
// stored on the upstream row: winner sources set next_match_id, loser
// sources set loser_next_match_id.
func (s *bracketService) wireSourceLinks(ctx context.Context, tx *sql.Tx, generated []*brackets.BracketMatch, dbIDByUID map[string]int) error {
	link := func(sourceUID string, kind string, targetID, slot int) error {
		sourceID, ok := dbIDByUID[sourceUID]
		if !ok {
			return fmt.Errorf("source match %s was not persisted", sourceUID)
		}
		if kind == models.SourceLoser {
			return s.matchRepo.UpdateLoserNextMatchInfo(ctx, tx, sourceID, &targetID, &slot)
		}
		return s.matchRepo.UpdateNextMatchInfo(ctx, tx, sourceID, &targetID, &slot)
	}

	for _, bm := range generated {
		targetID, ok := dbIDByUID[bm.UID]
		if !ok {
			continue
		}
		if bm.SourceMatch1UID != nil {
			if err := link(*bm.SourceMatch1UID, bm.Source1Kind, targetID, 1); err != nil {
				return err
			}
		}
		if bm.SourceMatch2UID != nil {
			if err := link(*bm.SourceMatch2UID, bm.Source2Kind, targetID, 2); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *bracketService) GenerateNextSwissRound(ctx context.Context, tournamentID int) (*models.BracketView, error) {
	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for tournament %d: %w", tournamentID, err)
	}

	var newRound int
	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		if lockErr := repositories.AcquireTournamentLock(ctx, tx, tournamentID); lockErr != nil {
			return lockErr
		}

		bracket, getErr := s.bracketRepo.GetByTournamentID(ctx, tx, tournamentID)
		if getErr != nil {
			if errors.Is(getErr, repositories.ErrBracketNotFound) {
				return ErrBracketNotFound
			}
			return getErr
		}
		if bracket.Format != models.FormatSwiss {
			return ErrFormatHasNoRounds
		}

		matches, listErr := s.matchRepo.ListByTournament(ctx, tx, tournamentID, nil, nil)
		if listErr != nil {
			return listErr
		}

		currentRound := 0
		for _, m := range matches {
			if m.Round > currentRound {
				currentRound = m.Round
			}
		}
		if !brackets.RoundComplete(matches, currentRound) {
			return ErrRoundIncomplete
		}
		if bracket.SwissRoundCap != nil && currentRound >= *bracket.SwissRoundCap {
			return ErrSwissCapReached
		}

		standings := brackets.ComputeStandings(teams, matches)
		ranked := make([]int, len(standings))
		for i, st := range standings {
			ranked[i] = st.TeamID
		}

		played := playedFunc(matches)
		pairs, byeTeam := brackets.PairSwissRound(ranked, played)
		newRound = currentRound + 1

		generated := brackets.SwissRoundMatches(newRound, pairs, byeTeam)
		return s.persistGeneratedMatches(ctx, tx, tournamentID, generated)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("swiss round generated",
		slog.Int("tournament_id", tournamentID),
		slog.Int("round", newRound))

	s.notify(tournamentID)
	return s.GetBracketView(ctx, tournamentID)
}

// playedFunc builds the rematch predicate from match history. Byes do not
// count: sitting out twice is allowed, playing someone twice is not.
func playedFunc(matches []*models.Match) func(a, b int) bool {
	type pair struct{ lo, hi int }
	seen := make(map[pair]bool)
	for _, m := range matches {
		if m.IsBye || m.Team1ID == nil || m.Team2ID == nil {
			continue
		}
		a, b := *m.Team1ID, *m.Team2ID
		if a > b {
			a, b = b, a
		}
		seen[pair{a, b}] = true
	}
	return func(a, b int) bool {
		if a > b {
			a, b = b, a
		}
		return seen[pair{a, b}]
	}
}

func (s *bracketService) GenerateLosersBracket(ctx context.Context, tournamentID int) (*models.BracketView, error) {
	err := runInTx(ctx, s.db, func(tx *sql.Tx) error {
		if lockErr := repositories.AcquireTournamentLock(ctx, tx, tournamentID); lockErr != nil {
			return lockErr
		}

		bracket, getErr := s.bracketRepo.GetByTournamentID(ctx, tx, tournamentID)
		if getErr != nil {
			if errors.Is(getErr, repositories.ErrBracketNotFound) {
				return ErrBracketNotFound
			}
			return getErr
		}
		if bracket.Format != models.FormatDoubleElimination {
			return ErrFormatHasNoRounds
		}
		if bracket.LosersGenerated {
			return ErrLosersAlreadyBuilt
		}

		existing, listErr := s.matchRepo.ListByTournament(ctx, tx, tournamentID, nil, nil)
		if listErr != nil {
			return listErr
		}

		expansion, expErr := brackets.ExpandLosersBracket(bracket.MaxSlots, existing)
		if expErr != nil {
			return expErr
		}

		// Existing rows keep their database ids in the UID map so the new
		// rounds can link back into winners matches and losers round 1.
		dbIDByUID := make(map[string]int, len(existing)+len(expansion.Matches))
		for _, m := range existing {
			if m.BracketUID != nil {
				dbIDByUID[*m.BracketUID] = m.ID
			}
		}

		for _, bm := range expansion.Matches {
			uid := bm.UID
			match := &models.Match{
				TournamentID: tournamentID,
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
				match.Status = models.MatchStatusCompleted
			}
			if createErr := s.matchRepo.Create(ctx, tx, match); createErr != nil {
				return fmt.Errorf("failed to create match %s: %w", uid, createErr)
			}
			dbIDByUID[uid] = match.ID
		}

		if wireErr := s.wireSourceLinks(ctx, tx, expansion.Matches, dbIDByUID); wireErr != nil {
			return wireErr
		}

		// The losers champion takes slot 2 of the grand final.
		gfID, ok := dbIDByUID[brackets.GrandFinalUID]
		if !ok {
			return fmt.Errorf("grand final match missing for tournament %d", tournamentID)
		}
		championID, ok := dbIDByUID[expansion.LosersChampionUID]
		if !ok {
			return fmt.Errorf("losers final %s was not persisted", expansion.LosersChampionUID)
		}
		if linkErr := s.matchRepo.UpdateNextMatchInfo(ctx, tx, championID, &gfID, intPtr(2)); linkErr != nil {
			return linkErr
		}

		// Outcomes already known at expansion time cascade through the
		// freshly wired links: decided winners matches drop their losers
		// into the entry rounds, auto-won byes advance their occupants.
		if backfillErr := s.backfillDecided(ctx, tx, tournamentID); backfillErr != nil {
			return backfillErr
		}

		return s.bracketRepo.SetLosersGenerated(ctx, tx, bracket.ID)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("losers bracket generated", slog.Int("tournament_id", tournamentID))

	s.notify(tournamentID)
	return s.GetBracketView(ctx, tournamentID)
}

// backfillDecided re-reads the tournament now that all links exist and
// advances every decided match. Slot writes are idempotent, so matches whose
// outcome already reached downstream are skipped without touching rows.
func (s *bracketService) backfillDecided(ctx context.Context, tx *sql.Tx, tournamentID int) error {
	matches, err := s.matchRepo.ListByTournament(ctx, tx, tournamentID, nil, nil)
	if err != nil {
		return err
	}

	index := make(map[int]*models.Match, len(matches))
	for _, m := range matches {
		index[m.ID] = m
	}

	for _, m := range matches {
		if !m.Decided() {
			continue
		}
		changed, advErr := brackets.Advance(m, index)
		if advErr != nil {
			return advErr
		}
		for _, c := range changed {
			if updErr := s.matchRepo.UpdateTeams(ctx, tx, c); updErr != nil {
				return updErr
			}
		}
	}
	return nil
}

func (s *bracketService) ListMatches(ctx context.Context, tournamentID int, round *int, status *models.MatchStatus) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, nil, tournamentID, round, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	return matches, nil
}

func (s *bracketService) notify(tournamentID int) {
	if s.notifier != nil {
		s.notifier.NotifyBracketChanged(tournamentID)
	}
}

func mapGeneratorError(err error) error {
	switch {
	case errors.Is(err, brackets.ErrInsufficientTeams):
		return ErrNotEnoughTeams
	case errors.Is(err, brackets.ErrInvalidSlotCount):
		return ErrInvalidSlotCount
	case errors.Is(err, brackets.ErrInvalidFormat):
		return ErrUnsupportedFormat
	default:
		return err
	}
}
