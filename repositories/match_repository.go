package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmc5391/tabletoptracker/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrMatchEventInvalid  = errors.New("match event conflict or invalid")
	ErrMatchPlayerInvalid = errors.New("match player conflict or invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByEvent(ctx context.Context, eventID int, statusFilter *models.MatchStatus) ([]*models.Match, error)
	CountByEvent(ctx context.Context, exec SQLExecutor, eventID int) (int, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, id, p1Score, p2Score int) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	DeleteByEvent(ctx context.Context, exec SQLExecutor, eventID int) error
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

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches (event_id, round, date, status, p1_id, p2_id, p1_score, p2_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		match.EventID,
		match.Round,
		match.Date,
		match.Status,
		match.Player1ID,
		match.Player2ID,
		match.Player1Score,
		match.Player2Score,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, event_id, round, date, status, p1_id, p2_id, p1_score, p2_score, created_at
		FROM matches
		WHERE id = $1`

	match := &models.Match{}
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&match.ID,
		&match.EventID,
		&match.Round,
		&match.Date,
		&match.Status,
		&match.Player1ID,
		&match.Player2ID,
		&match.Player1Score,
		&match.Player2Score,
		&match.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByEvent(ctx context.Context, eventID int, statusFilter *models.MatchStatus) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT id, event_id, round, date, status, p1_id, p2_id, p1_score, p2_score, created_at
		FROM matches
		WHERE event_id = $1`)

	args := []interface{}{eventID}
	if statusFilter != nil {
		queryBuilder.WriteString(" AND status = $")
		queryBuilder.WriteString(strconv.Itoa(len(args) + 1))
		args = append(args, *statusFilter)
	}
	queryBuilder.WriteString(" ORDER BY round ASC, id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for event %d: %w", eventID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var match models.Match
		if scanErr := rows.Scan(
			&match.ID,
			&match.EventID,
			&match.Round,
			&match.Date,
			&match.Status,
			&match.Player1ID,
			&match.Player2ID,
			&match.Player1Score,
			&match.Player2Score,
			&match.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, &match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) CountByEvent(ctx context.Context, exec SQLExecutor, eventID int) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches WHERE event_id = $1`, eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches for event %d: %w", eventID, err)
	}
	return count, nil
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, id, p1Score, p2Score int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches
		SET p1_score = $1, p2_score = $2, status = $3
		WHERE id = $4`

	result, err := executor.ExecContext(ctx, query, p1Score, p2Score, models.MatchStatusCompleted, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) DeleteByEvent(ctx context.Context, exec SQLExecutor, eventID int) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, `DELETE FROM matches WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("failed to delete matches of event %d: %w", eventID, err)
	}
	return nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "matches_event_id_fkey":
			return ErrMatchEventInvalid
		case "matches_p1_id_fkey", "matches_p2_id_fkey":
			return ErrMatchPlayerInvalid
		}
	}
	return err
}
