package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"sterilizer_control/internal/models"

	"github.com/google/uuid"
)

type CycleSQLite struct {
	conn *sql.DB
}

func NewCycleSQLite(conn *sql.DB) *CycleSQLite { return &CycleSQLite{conn: conn} }

var _ CycleRepo = (*CycleSQLite)(nil)

const insertCycleSQL = `
	INSERT INTO cycle_history
		(id, program_id, program_name, started_at, ended_at, duration_s, result, primary_error, peak_temp_c, peak_pressure_mpa, errors)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// Append inserts a terminated cycle record. A missing ID is generated.
func (r *CycleSQLite) Append(ctx context.Context, s models.CycleSummary) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	var errorsJSON *string
	if len(s.Errors) > 0 {
		if b, err := json.Marshal(s.Errors); err == nil {
			str := string(b)
			errorsJSON = &str
		}
	}
	_, err := r.conn.ExecContext(ctx, insertCycleSQL,
		s.ID,
		s.ProgramID,
		s.ProgramName,
		s.StartedAt.UTC().Format(sqliteTimeLayout),
		s.EndedAt.UTC().Format(sqliteTimeLayout),
		s.DurationS,
		string(s.Result),
		string(s.PrimaryErrorCode),
		s.PeakTempC,
		s.PeakPressureMPa,
		errorsJSON,
	)
	return err
}

// List returns cycles filtered by [from, to] on ended_at and/or result,
// newest first.
func (r *CycleSQLite) List(ctx context.Context, from, to time.Time, result string) ([]models.CycleSummary, error) {
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
	if result = strings.ToLower(strings.TrimSpace(result)); result != "" {
		conds = append(conds, "result = ?")
		args = append(args, result)
	}

	q := `SELECT id, program_id, program_name, started_at, ended_at, duration_s, result, primary_error, peak_temp_c, peak_pressure_mpa, errors FROM cycle_history`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY ended_at DESC"

	rows, err := r.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.CycleSummary, 0, 32)
	for rows.Next() {
		var (
			s          models.CycleSummary
			result     string
			primary    sql.NullString
			errorsJSON sql.NullString
		)
		if err := rows.Scan(
			&s.ID, &s.ProgramID, &s.ProgramName, &s.StartedAt, &s.EndedAt,
			&s.DurationS, &result, &primary, &s.PeakTempC, &s.PeakPressureMPa, &errorsJSON,
		); err != nil {
			return nil, err
		}
		s.Result = models.CycleResult(result)
		if primary.Valid {
			s.PrimaryErrorCode = models.ErrorCode(primary.String)
		}
		if errorsJSON.Valid && errorsJSON.String != "" {
			_ = json.Unmarshal([]byte(errorsJSON.String), &s.Errors)
		}
		s.StartedAt = s.StartedAt.UTC()
		s.EndedAt = s.EndedAt.UTC()
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
