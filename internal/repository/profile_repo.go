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

// ErrProfileNotFound is returned when no curve is stored for a profile name.
var ErrProfileNotFound = errors.New("profile not found")

type ProfileSQLite struct {
	db *sql.DB
}

func NewProfileSQLite(db *sql.DB) *ProfileSQLite {
	return &ProfileSQLite{db: db}
}

const (
	upsertProfileSQL = `
		INSERT INTO profiles (name, curve, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			curve=excluded.curve,
			updated_at=excluded.updated_at
	`

	selectProfileSQL = `SELECT curve FROM profiles WHERE name=?`

	listProfilesSQL = `SELECT name FROM profiles ORDER BY name`
)

// Save stores a profile's target curve as one JSON column.
func (r *ProfileSQLite) Save(ctx context.Context, name string, curve []models.TargetCurvePoint) error {
	raw, err := json.Marshal(curve)
	if err != nil {
		return fmt.Errorf("marshal target curve: %w", err)
	}
	_, err = r.db.ExecContext(ctx, upsertProfileSQL, name, string(raw), time.Now().UTC())
	return err
}

// Get loads a profile's target curve.
func (r *ProfileSQLite) Get(ctx context.Context, name string) ([]models.TargetCurvePoint, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, selectProfileSQL, name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	var curve []models.TargetCurvePoint
	if err := json.Unmarshal([]byte(raw), &curve); err != nil {
		return nil, fmt.Errorf("unmarshal target curve: %w", err)
	}
	return curve, nil
}

// List returns the stored profile names.
func (r *ProfileSQLite) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, listProfilesSQL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
