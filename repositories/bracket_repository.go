package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/openbracket/tournament-engine/models"
)

var (
	ErrBracketNotFound = errors.New("bracket not found")
	ErrBracketExists   = errors.New("bracket already exists for tournament")
)

type BracketRepository interface {
	Create(ctx context.Context, exec SQLExecutor, bracket *models.Bracket) error
	GetByTournamentID(ctx context.Context, exec SQLExecutor, tournamentID int) (*models.Bracket, error)
	SetLosersGenerated(ctx context.Context, exec SQLExecutor, bracketID int) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresBracketRepository struct {
	db *sql.DB
}

func NewPostgresBracketRepository(db *sql.DB) BracketRepository {
	return &postgresBracketRepository{db: db}
}

func (r *postgresBracketRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresBracketRepository) Create(ctx context.Context, exec SQLExecutor, bracket *models.Bracket) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO brackets (tournament_id, format, max_slots, swiss_round_cap, group_count, losers_generated)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	err := executor.QueryRowContext(ctx, query,
		bracket.TournamentID, bracket.Format, bracket.MaxSlots,
		bracket.SwissRoundCap, bracket.GroupCount, bracket.LosersGenerated,
	).Scan(&bracket.ID, &bracket.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrBracketExists
		}
		return err
	}
	return nil
}

func (r *postgresBracketRepository) GetByTournamentID(ctx context.Context, exec SQLExecutor, tournamentID int) (*models.Bracket, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, format, max_slots, swiss_round_cap, group_count, losers_generated, created_at
		FROM brackets
		WHERE tournament_id = $1`

	var b models.Bracket
	err := executor.QueryRowContext(ctx, query, tournamentID).Scan(
		&b.ID, &b.TournamentID, &b.Format, &b.MaxSlots,
		&b.SwissRoundCap, &b.GroupCount, &b.LosersGenerated, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBracketNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *postgresBracketRepository) SetLosersGenerated(ctx context.Context, exec SQLExecutor, bracketID int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE brackets SET losers_generated = TRUE WHERE id = $1`, bracketID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrBracketNotFound)
}

func (r *postgresBracketRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM brackets WHERE tournament_id = $1`, tournamentID)
	return err
}
