package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const monitorColumns = `id, name, feed_url, sheet_id, is_active, last_check, created_at, updated_at`

type monitorRepository struct {
	db  *DB
	now func() time.Time
}

var _ MonitorRepository = (*monitorRepository)(nil)

func NewMonitorRepository(db *DB) MonitorRepository {
	return &monitorRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMonitor(s rowScanner) (*Monitor, error) {
	var m Monitor
	var lastCheck sql.NullTime

	err := s.Scan(&m.ID, &m.Name, &m.FeedURL, &m.SheetID, &m.IsActive, &lastCheck, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if lastCheck.Valid {
		t := lastCheck.Time
		m.LastCheck = &t
	}

	return &m, nil
}

func (r *monitorRepository) GetMonitor(ctx context.Context, id string) (*Monitor, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+monitorColumns+` FROM monitors WHERE id = ?`, id)

	m, err := scanMonitor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get monitor: %w", err)
	}

	return m, nil
}

func (r *monitorRepository) ListMonitors(ctx context.Context) ([]Monitor, error) {
	return r.list(ctx, `SELECT `+monitorColumns+` FROM monitors ORDER BY created_at, name`)
}

func (r *monitorRepository) ListActiveMonitors(ctx context.Context) ([]Monitor, error) {
	return r.list(ctx, `SELECT `+monitorColumns+` FROM monitors WHERE is_active = 1 ORDER BY created_at, name`)
}

func (r *monitorRepository) list(ctx context.Context, query string) ([]Monitor, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list monitors: %w", err)
	}
	defer rows.Close()

	var monitors []Monitor
	for rows.Next() {
		m, err := scanMonitor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan monitor row: %w", err)
		}
		monitors = append(monitors, *m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monitor rows: %w", err)
	}

	return monitors, nil
}

func (r *monitorRepository) CreateMonitor(ctx context.Context, name, feedURL, sheetID string) (*Monitor, error) {
	now := r.now()
	id := uuid.NewString()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO monitors (id, name, feed_url, sheet_id, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?)
	`, id, name, feedURL, sheetID, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", ErrMonitorExists, name)
		}
		return nil, fmt.Errorf("failed to create monitor: %w", err)
	}

	return &Monitor{
		ID:        id,
		Name:      name,
		FeedURL:   feedURL,
		SheetID:   sheetID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// UpsertMonitor inserts or updates a monitor keyed by name.
func (r *monitorRepository) UpsertMonitor(ctx context.Context, name, feedURL, sheetID string, active bool) (*Monitor, error) {
	now := r.now()

	var id string
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO monitors (id, name, feed_url, sheet_id, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			feed_url = excluded.feed_url,
			sheet_id = excluded.sheet_id,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at
		RETURNING id
	`, uuid.NewString(), name, feedURL, sheetID, active, now, now).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert monitor: %w", err)
	}

	m, err := r.GetMonitor(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrMonitorNotFound, id)
	}

	return m, nil
}

func (r *monitorRepository) SetMonitorActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE monitors
		SET is_active = ?, updated_at = ?
		WHERE id = ?
	`, active, r.now(), id)
	if err != nil {
		return fmt.Errorf("failed to set monitor active status: %w", err)
	}

	return requireAffected(res, id)
}

func (r *monitorRepository) RecordLastCheck(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE monitors
		SET last_check = ?
		WHERE id = ?
	`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to record last check: %w", err)
	}

	return requireAffected(res, id)
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrMonitorNotFound, id)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
