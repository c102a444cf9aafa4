package repository

import (
	"context"
	"database/sql"
	"time"

	"sterilizer_control/internal/models"
	"sterilizer_control/internal/repository/db"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.Operator, error)
}

// CycleRepo is the append-only audit store of terminated cycles.
type CycleRepo interface {
	Append(ctx context.Context, s models.CycleSummary) error
	List(ctx context.Context, from, to time.Time, result string) ([]models.CycleSummary, error)
}

// EventRepo is the append-only audit store of alarm events.
type EventRepo interface {
	Append(ctx context.Context, e models.ErrorEvent) error
	List(ctx context.Context, from, to time.Time, code string) ([]models.ErrorEvent, error)
}

// VacuumRepo is the append-only audit store of leak test results.
type VacuumRepo interface {
	Append(ctx context.Context, r models.VacuumTestResult) error
	List(ctx context.Context, from, to time.Time) ([]models.VacuumTestResult, error)
}

type Repository struct {
	Cycles CycleRepo
	Events EventRepo
	Vacuum VacuumRepo
	Auth   Authorization
}

func NewRepository(conn *sql.DB) *Repository {
	return &Repository{
		Cycles: NewCycleSQLite(conn),
		Events: NewEventSQLite(conn),
		Vacuum: NewVacuumSQLite(conn),
		Auth:   NewOperatorRepository(conn),
	}
}

// InitDB opens the SQLite file and ensures schema; see the db subpackage.
func InitDB(path string) (*sql.DB, error) {
	return db.InitDB(path)
}

// sqliteTimeLayout is the TIMESTAMP format persisted by all repos.
const sqliteTimeLayout = "2006-01-02 15:04:05"
