package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openbracket/tournament-engine/brackets"
	"github.com/openbracket/tournament-engine/models"
	"github.com/openbracket/tournament-engine/repositories"
)

type RecordResultParams struct {
	Score1 *int
	Score2 *int
	// WinnerID is authoritative when set; otherwise the winner is derived
	// from the scores. Leaderboard entries take Score1 only.
	WinnerID *int
}

type MatchService interface {
	GetMatch(ctx context.Context, matchID int) (*models.Match, error)
	// RecordResult records or corrects the outcome of a match and advances
	// winner and loser through their bracket links in the same transaction.
	RecordResult(ctx context.Context, matchID int, params RecordResultParams) (*models.Match, error)
}

type matchService struct {
	db        *sql.DB
	matchRepo repositories.MatchRepository
	notifier  BracketNotifier
}

func NewMatchService(db *sql.DB, matchRepo repositories.MatchRepository, notifier BracketNotifier) MatchService {
	return &matchService{db: db, matchRepo: matchRepo, notifier: notifier}
}

func (s *matchService) GetMatch(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (s *matchService) RecordResult(ctx context.Context, matchID int, params RecordResultParams) (*models.Match, error) {
	var updated *models.Match

	err := runInTx(ctx, s.db, func(tx *sql.Tx) error {
		// Plain read first, just to learn the tournament id. The advisory
		// lock must come before any row lock: progression touches downstream
		// rows, and taking a row lock first can deadlock against a
		// concurrent submission for a downstream match of the same bracket.
		match, err := s.matchRepo.GetByID(ctx, tx, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return err
		}

		// One writer per tournament: serializes concurrent results for
		// different matches of the same bracket.
		if err := repositories.AcquireTournamentLock(ctx, tx, match.TournamentID); err != nil {
			return err
		}

		// Re-fetch under the row lock; the row may have changed between the
		// plain read and the advisory lock grant.
		match, err = s.matchRepo.GetByIDForUpdate(ctx, tx, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return err
		}

		if match.Section == models.SectionLeaderboard {
			if err := applyLeaderboardScore(match, params); err != nil {
				return err
			}
			if err := s.matchRepo.UpdateResult(ctx, tx, match); err != nil {
				return err
			}
			updated = match
			return nil
		}

		if match.IsBye {
			return ErrMatchIsBye
		}
		if !match.Ready() {
			return ErrMatchNotReady
		}

		winnerID, err := resolveWinner(match, params)
		if err != nil {
			return err
		}

		match.Score1 = params.Score1
		match.Score2 = params.Score2
		match.WinnerID = &winnerID
		match.Status = models.MatchStatusCompleted

		matches, err := s.matchRepo.ListByTournament(ctx, tx, match.TournamentID, nil, nil)
		if err != nil {
			return err
		}
		index := make(map[int]*models.Match, len(matches))
		for _, m := range matches {
			index[m.ID] = m
		}
		// The locked row replaces its stale listed copy.
		index[match.ID] = match

		changed, err := brackets.Advance(match, index)
		if err != nil {
			if errors.Is(err, brackets.ErrDownstreamDecided) {
				return ErrDownstreamAlreadyDecided
			}
			return err
		}

		if err := s.matchRepo.UpdateResult(ctx, tx, match); err != nil {
			return err
		}
		for _, c := range changed {
			if err := s.matchRepo.UpdateTeams(ctx, tx, c); err != nil {
				return err
			}
		}

		updated = match
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("match result recorded",
		slog.Int("match_id", updated.ID),
		slog.Int("tournament_id", updated.TournamentID),
		slog.Any("winner_id", updated.WinnerID))

	if s.notifier != nil {
		s.notifier.NotifyBracketChanged(updated.TournamentID)
	}
	return updated, nil
}

// applyLeaderboardScore handles score-only submissions: leaderboard entries
// have no opponent and never a winner.
func applyLeaderboardScore(match *models.Match, params RecordResultParams) error {
	if params.Score1 == nil {
		return ErrScoreRequired
	}
	if params.WinnerID != nil || params.Score2 != nil {
		return fmt.Errorf("%w: leaderboard entries take a single score", ErrValidationFailed)
	}
	match.Score1 = params.Score1
	match.Status = models.MatchStatusCompleted
	return nil
}

// resolveWinner picks the winner from an explicit WinnerID or, failing that,
// from the score comparison. Tied scores without an explicit winner are
// rejected rather than guessed.
func resolveWinner(match *models.Match, params RecordResultParams) (int, error) {
	if params.WinnerID != nil {
		if !match.HasTeam(*params.WinnerID) {
			return 0, ErrInvalidWinner
		}
		return *params.WinnerID, nil
	}

	if params.Score1 == nil || params.Score2 == nil {
		return 0, ErrAmbiguousResult
	}
	switch {
	case *params.Score1 > *params.Score2:
		return *match.Team1ID, nil
	case *params.Score2 > *params.Score1:
		return *match.Team2ID, nil
	default:
		return 0, ErrAmbiguousResult
	}
}
