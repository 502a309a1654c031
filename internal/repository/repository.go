package repository

import (
	"context"
	"database/sql"
	"time"

	"brewlink/internal/models"

	dbinit "brewlink/internal/repository/db"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

// ShotRepo is the archive of recorded shots.
type ShotRepo interface {
	Save(ctx context.Context, rec models.ShotRecord) error
	Get(ctx context.Context, id string) (models.ShotRecord, error)
	List(ctx context.Context, limit int) ([]models.ShotRecord, error)
}

// ProfileRepo stores brew profiles' target curves.
type ProfileRepo interface {
	Save(ctx context.Context, name string, curve []models.TargetCurvePoint) error
	Get(ctx context.Context, name string) ([]models.TargetCurvePoint, error)
	List(ctx context.Context) ([]string, error)
}

// EventRepo is the append-only session event log.
type EventRepo interface {
	Append(ctx context.Context, e models.SessionEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.SessionEvent, error)
}

type Repository struct {
	Shots    ShotRepo
	Profiles ProfileRepo
	Events   EventRepo
	Auth     Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Shots:    NewShotSQLite(db),
		Profiles: NewProfileSQLite(db),
		Events:   NewEventSQLite(db),
		Auth:     NewUserRepository(db),
	}
}

// InitDB opens the SQLite file and bootstraps the schema.
func InitDB(path string) (*sql.DB, error) {
	return dbinit.InitDB(path)
}
