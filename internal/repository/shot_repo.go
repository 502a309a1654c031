package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"brewlink/internal/models"
)

// ErrShotNotFound is returned when the requested shot is not archived.
var ErrShotNotFound = errors.New("shot not found")

type ShotSQLite struct {
	db *sql.DB
}

func NewShotSQLite(db *sql.DB) *ShotSQLite {
	return &ShotSQLite{db: db}
}

const (
	insertShotSQL = `
		INSERT INTO shots (id, profile, started_at, duration_s, samples)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			profile=excluded.profile,
			started_at=excluded.started_at,
			duration_s=excluded.duration_s,
			samples=excluded.samples
	`

	selectShotSQL = `
		SELECT id, profile, started_at, duration_s, samples
		FROM shots WHERE id=?
	`

	listShotsSQL = `
		SELECT id, profile, started_at, duration_s, samples
		FROM shots ORDER BY started_at DESC LIMIT ?
	`
)

// Save archives a shot; samples are stored as one JSON column.
func (r *ShotSQLite) Save(ctx context.Context, rec models.ShotRecord) error {
	samples, err := json.Marshal(rec.Samples)
	if err != nil {
		return fmt.Errorf("marshal shot samples: %w", err)
	}

	startedAt := rec.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now().UTC()
	} else {
		startedAt = startedAt.UTC()
	}

	_, err = r.db.ExecContext(ctx, insertShotSQL,
		rec.ID,
		rec.Profile,
		startedAt,
		rec.DurationS,
		string(samples),
	)
	return err
}

// Get loads a single archived shot by ID.
func (r *ShotSQLite) Get(ctx context.Context, id string) (models.ShotRecord, error) {
	row := r.db.QueryRowContext(ctx, selectShotSQL, id)
	rec, err := scanShot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ShotRecord{}, ErrShotNotFound
	}
	return rec, err
}

// List returns the most recent shots, newest first.
func (r *ShotSQLite) List(ctx context.Context, limit int) ([]models.ShotRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, listShotsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.ShotRecord
	for rows.Next() {
		rec, err := scanShot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShot(row rowScanner) (models.ShotRecord, error) {
	var rec models.ShotRecord
	var samplesJSON string
	if err := row.Scan(&rec.ID, &rec.Profile, &rec.StartedAt, &rec.DurationS, &samplesJSON); err != nil {
		return models.ShotRecord{}, err
	}
	if err := json.Unmarshal([]byte(samplesJSON), &rec.Samples); err != nil {
		return models.ShotRecord{}, fmt.Errorf("unmarshal shot samples: %w", err)
	}
	rec.StartedAt = rec.StartedAt.UTC()
	return rec, nil
}
