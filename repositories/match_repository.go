package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/openbracket/tournament-engine/models"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchTournamentInvalid = errors.New("match tournament conflict or invalid")
	ErrMatchTeamInvalid       = errors.New("match team conflict or invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	// GetByIDForUpdate row-locks the match inside the caller's transaction.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, round *int, status *models.MatchStatus) ([]*models.Match, error)
	// UpdateResult persists scores, winner and status.
	UpdateResult(ctx context.Context, exec SQLExecutor, match *models.Match) error
	// UpdateTeams persists progression's slot writes (and the auto-decided
	// winner of an occupied bye).
	UpdateTeams(ctx context.Context, exec SQLExecutor, match *models.Match) error
	UpdateNextMatchInfo(ctx context.Context, exec SQLExecutor, matchID int, nextMatchID, winnerToSlot *int) error
	UpdateLoserNextMatchInfo(ctx context.Context, exec SQLExecutor, matchID int, loserNextMatchID, loserToSlot *int) error
	// CountCompleted counts matches with a recorded result, byes excluded.
	// Keyed on status rather than winner_id so score-only results
	// (leaderboard entries never have a winner) are counted too.
	CountCompleted(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `id, tournament_id, section, round, match_number, group_number,
	       team1_id, team2_id, score1, score2, winner_id, is_bye, status,
	       bracket_uid, next_match_id, winner_to_slot, loser_next_match_id, loser_to_slot, created_at`

func (r *postgresMatchRepository) scanMatch(rowScanner interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var m models.Match
	err := rowScanner.Scan(
		&m.ID, &m.TournamentID, &m.Section, &m.Round, &m.MatchNumber, &m.GroupNumber,
		&m.Team1ID, &m.Team2ID, &m.Score1, &m.Score2, &m.WinnerID, &m.IsBye, &m.Status,
		&m.BracketUID, &m.NextMatchID, &m.WinnerToSlot, &m.LoserNextMatchID, &m.LoserToSlot, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches
			(tournament_id, section, round, match_number, group_number,
			 team1_id, team2_id, score1, score2, winner_id, is_bye, status,
			 bracket_uid, next_match_id, winner_to_slot, loser_next_match_id, loser_to_slot)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		match.TournamentID, match.Section, match.Round, match.MatchNumber, match.GroupNumber,
		match.Team1ID, match.Team2ID, match.Score1, match.Score2, match.WinnerID, match.IsBye, match.Status,
		match.BracketUID, match.NextMatchID, match.WinnerToSlot, match.LoserNextMatchID, match.LoserToSlot,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return r.scanMatch(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1 FOR UPDATE`
	return r.scanMatch(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, roundFilter *int, statusFilter *models.MatchStatus) ([]*models.Match, error) {
	executor := r.getExecutor(exec)

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	placeholderIndex := 2

	if roundFilter != nil {
		queryBuilder.WriteString(" AND round = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *roundFilter)
		placeholderIndex++
	}
	if statusFilter != nil {
		queryBuilder.WriteString(" AND status = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *statusFilter)
		placeholderIndex++
	}

	queryBuilder.WriteString(" ORDER BY section ASC, round ASC, match_number ASC")

	rows, err := executor.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, scanErr := r.scanMatch(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches
		SET score1 = $1, score2 = $2, winner_id = $3, status = $4
		WHERE id = $5`
	result, err := executor.ExecContext(ctx, query,
		match.Score1, match.Score2, match.WinnerID, match.Status, match.ID)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateTeams(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches
		SET team1_id = $1, team2_id = $2, winner_id = $3, status = $4
		WHERE id = $5`
	result, err := executor.ExecContext(ctx, query,
		match.Team1ID, match.Team2ID, match.WinnerID, match.Status, match.ID)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateNextMatchInfo(ctx context.Context, exec SQLExecutor, matchID int, nextMatchID, winnerToSlot *int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE matches SET next_match_id = $1, winner_to_slot = $2 WHERE id = $3`
	result, err := executor.ExecContext(ctx, query, nextMatchID, winnerToSlot, matchID)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateLoserNextMatchInfo(ctx context.Context, exec SQLExecutor, matchID int, loserNextMatchID, loserToSlot *int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE matches SET loser_next_match_id = $1, loser_to_slot = $2 WHERE id = $3`
	result, err := executor.ExecContext(ctx, query, loserNextMatchID, loserToSlot, matchID)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) CountCompleted(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	executor := r.getExecutor(exec)
	query := `SELECT COUNT(*) FROM matches WHERE tournament_id = $1 AND status = $2 AND is_bye = FALSE`
	var count int
	if err := executor.QueryRowContext(ctx, query, tournamentID, models.MatchStatusCompleted).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *postgresMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM matches WHERE tournament_id = $1`, tournamentID)
	return err
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" { // foreign_key_violation
		switch {
		case strings.Contains(pqErr.Constraint, "tournament"):
			return ErrMatchTournamentInvalid
		case strings.Contains(pqErr.Constraint, "team"):
			return ErrMatchTeamInvalid
		}
	}
	return err
}
