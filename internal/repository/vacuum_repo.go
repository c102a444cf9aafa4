package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"sterilizer_control/internal/models"

	"github.com/google/uuid"
)

type VacuumSQLite struct {
	conn *sql.DB
}

func NewVacuumSQLite(conn *sql.DB) *VacuumSQLite { return &VacuumSQLite{conn: conn} }

var _ VacuumRepo = (*VacuumSQLite)(nil)

// Append inserts a completed leak test result.
func (r *VacuumSQLite) Append(ctx context.Context, res models.VacuumTestResult) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	_, err := r.conn.ExecContext(ctx, `
		INSERT INTO vacuum_tests (id, started_at, ended_at, passed, leak_rate_mpa_min)
		VALUES (?, ?, ?, ?, ?)
	`,
		res.ID,
		res.StartedAt.UTC().Format(sqliteTimeLayout),
		res.EndedAt.UTC().Format(sqliteTimeLayout),
		res.Passed,
		res.LeakRateMPaMin,
	)
	return err
}

// List returns leak tests within [from, to] on ended_at, newest first.
func (r *VacuumSQLite) List(ctx context.Context, from, to time.Time) ([]models.VacuumTestResult, error) {
	var (
		conds []string
		args  []any
	)
	if !from.IsZero() {
		conds = append(conds, "ended_at >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		conds = append(conds, "ended_at <= ?")
		args = append(args, to.UTC())
	}

	q := `SELECT id, started_at, ended_at, passed, leak_rate_mpa_min FROM vacuum_tests`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY ended_at DESC"

	rows, err := r.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.VacuumTestResult, 0, 16)
	for rows.Next() {
		var res models.VacuumTestResult
		if err := rows.Scan(&res.ID, &res.StartedAt, &res.EndedAt, &res.Passed, &res.LeakRateMPaMin); err != nil {
			return nil, err
		}
		res.StartedAt = res.StartedAt.UTC()
		res.EndedAt = res.EndedAt.UTC()
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
