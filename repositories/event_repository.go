package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmc5391/tabletoptracker/models"
	"github.com/lib/pq"
)

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrEventMemberNotFound = errors.New("event member not found")
	ErrEventMemberConflict = errors.New("user is already a member of this event")
	ErrEventUserInvalid    = errors.New("event member user conflict or invalid")
)

type EventRepository interface {
	Create(ctx context.Context, exec SQLExecutor, event *models.Event) error
	GetByID(ctx context.Context, id int) (*models.Event, error)
	ListByUser(ctx context.Context, userID int) ([]*models.Event, error)
	Update(ctx context.Context, exec SQLExecutor, event *models.Event) error
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error

	// LockForUpdate takes a row lock on the event inside the given
	// transaction. All mutating operations on an event acquire this lock
	// first, which serializes them per event.
	LockForUpdate(ctx context.Context, exec SQLExecutor, id int) error

	AddAdmin(ctx context.Context, exec SQLExecutor, eventID, userID int) error
	AddPlayer(ctx context.Context, exec SQLExecutor, eventID, userID int) error
	RemovePlayer(ctx context.Context, exec SQLExecutor, eventID, userID int) error
	RemoveAllMembers(ctx context.Context, exec SQLExecutor, eventID int) error
	ListAdmins(ctx context.Context, eventID int) ([]models.User, error)
	ListPlayers(ctx context.Context, exec SQLExecutor, eventID int) ([]models.User, error)
	GetRole(ctx context.Context, eventID, userID int) (models.EventRole, error)
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

func (r *postgresEventRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresEventRepository) Create(ctx context.Context, exec SQLExecutor, event *models.Event) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO events (name, start_date, end_date)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		event.Name,
		event.StartDate,
		event.EndDate,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

func (r *postgresEventRepository) GetByID(ctx context.Context, id int) (*models.Event, error) {
	query := `
		SELECT id, name, start_date, end_date, logo_key, created_at
		FROM events
		WHERE id = $1`

	event := &models.Event{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.Name,
		&event.StartDate,
		&event.EndDate,
		&event.LogoKey,
		&event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to scan event by id %d: %w", id, err)
	}
	return event, nil
}

func (r *postgresEventRepository) ListByUser(ctx context.Context, userID int) ([]*models.Event, error) {
	query := `
		SELECT DISTINCT e.id, e.name, e.start_date, e.end_date, e.logo_key, e.created_at
		FROM events e
		LEFT JOIN event_admins ea ON ea.event_id = e.id AND ea.user_id = $1
		LEFT JOIN event_players ep ON ep.event_id = e.id AND ep.user_id = $1
		WHERE ea.user_id IS NOT NULL OR ep.user_id IS NOT NULL
		ORDER BY e.start_date DESC, e.id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events for user %d: %w", userID, err)
	}
	defer rows.Close()

	events := make([]*models.Event, 0)
	for rows.Next() {
		var event models.Event
		if scanErr := rows.Scan(
			&event.ID,
			&event.Name,
			&event.StartDate,
			&event.EndDate,
			&event.LogoKey,
			&event.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", scanErr)
		}
		events = append(events, &event)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during event rows iteration: %w", err)
	}
	return events, nil
}

func (r *postgresEventRepository) Update(ctx context.Context, exec SQLExecutor, event *models.Event) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE events
		SET name = $1, start_date = $2, end_date = $3
		WHERE id = $4`

	result, err := executor.ExecContext(ctx, query, event.Name, event.StartDate, event.EndDate, event.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	query := `UPDATE events SET logo_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, logoKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) LockForUpdate(ctx context.Context, exec SQLExecutor, id int) error {
	var lockedID int
	err := exec.QueryRowContext(ctx, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, id).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to lock event %d: %w", id, err)
	}
	return nil
}

func (r *postgresEventRepository) AddAdmin(ctx context.Context, exec SQLExecutor, eventID, userID int) error {
	executor := r.getExecutor(exec)
	query := `INSERT INTO event_admins (event_id, user_id) VALUES ($1, $2)`
	_, err := executor.ExecContext(ctx, query, eventID, userID)
	return r.handleMemberError(err)
}

func (r *postgresEventRepository) AddPlayer(ctx context.Context, exec SQLExecutor, eventID, userID int) error {
	executor := r.getExecutor(exec)
	query := `INSERT INTO event_players (event_id, user_id) VALUES ($1, $2)`
	_, err := executor.ExecContext(ctx, query, eventID, userID)
	return r.handleMemberError(err)
}

func (r *postgresEventRepository) RemovePlayer(ctx context.Context, exec SQLExecutor, eventID, userID int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM event_players WHERE event_id = $1 AND user_id = $2`
	result, err := executor.ExecContext(ctx, query, eventID, userID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrEventMemberNotFound)
}

func (r *postgresEventRepository) RemoveAllMembers(ctx context.Context, exec SQLExecutor, eventID int) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, `DELETE FROM event_players WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("failed to remove players of event %d: %w", eventID, err)
	}
	if _, err := executor.ExecContext(ctx, `DELETE FROM event_admins WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("failed to remove admins of event %d: %w", eventID, err)
	}
	return nil
}

func (r *postgresEventRepository) ListAdmins(ctx context.Context, eventID int) ([]models.User, error) {
	query := `
		SELECT u.id, u.name, u.email, u.created_at
		FROM users u
		JOIN event_admins ea ON ea.user_id = u.id
		WHERE ea.event_id = $1
		ORDER BY u.name ASC, u.id ASC`
	return r.queryUsers(ctx, r.db, query, eventID)
}

func (r *postgresEventRepository) ListPlayers(ctx context.Context, exec SQLExecutor, eventID int) ([]models.User, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT u.id, u.name, u.email, u.created_at
		FROM users u
		JOIN event_players ep ON ep.user_id = u.id
		WHERE ep.event_id = $1
		ORDER BY u.name ASC, u.id ASC`
	return r.queryUsers(ctx, executor, query, eventID)
}

func (r *postgresEventRepository) GetRole(ctx context.Context, eventID, userID int) (models.EventRole, error) {
	query := `
		SELECT CASE
			WHEN EXISTS (SELECT 1 FROM event_admins WHERE event_id = $1 AND user_id = $2) THEN 'admin'
			WHEN EXISTS (SELECT 1 FROM event_players WHERE event_id = $1 AND user_id = $2) THEN 'player'
			ELSE 'none'
		END`

	var role string
	if err := r.db.QueryRowContext(ctx, query, eventID, userID).Scan(&role); err != nil {
		return models.EventRoleNone, fmt.Errorf("failed to resolve role for user %d in event %d: %w", userID, eventID, err)
	}
	return models.EventRole(role), nil
}

func (r *postgresEventRepository) queryUsers(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) ([]models.User, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query event members: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var user models.User
		if scanErr := rows.Scan(&user.ID, &user.Name, &user.Email, &user.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan event member row: %w", scanErr)
		}
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during event member rows iteration: %w", err)
	}
	return users, nil
}

func (r *postgresEventRepository) handleMemberError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "event_players_event_id_user_id_key", "event_admins_event_id_user_id_key":
			return ErrEventMemberConflict
		case "event_players_user_id_fkey", "event_admins_user_id_fkey":
			return ErrEventUserInvalid
		case "event_players_event_id_fkey", "event_admins_event_id_fkey":
			return ErrEventNotFound
		}
	}
	return err
}
