package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"sterilizer_control/internal/models"

	"github.com/google/uuid"
)

type EventSQLite struct {
	conn *sql.DB
}

func NewEventSQLite(conn *sql.DB) *EventSQLite { return &EventSQLite{conn: conn} }

var _ EventRepo = (*EventSQLite)(nil)

// Append inserts an alarm event. Missing ID or timestamp are filled in.
func (r *EventSQLite) Append(ctx context.Context, e models.ErrorEvent) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	_, err := r.conn.ExecContext(ctx, `
		INSERT INTO error_events (id, occurred_at, code, message)
		VALUES (?, ?, ?, ?)
	`,
		e.ID,
		e.OccurredAt.UTC().Format(sqliteTimeLayout),
		string(e.Code),
		e.Message,
	)
	return err
}

// List returns events filtered by [from, to] (inclusive) and/or code,
// oldest first.
func (r *EventSQLite) List(ctx context.Context, from, to time.Time, code string) ([]models.ErrorEvent, error) {
	var (
		conds []string
		args  []any
	)
	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC())
	}
	if code = strings.ToUpper(strings.TrimSpace(code)); code != "" {
		conds = append(conds, "code = ?")
		args = append(args, code)
	}

	q := `SELECT id, occurred_at, code, message FROM error_events`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at ASC"

	rows, err := r.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.ErrorEvent, 0, 64)
	for rows.Next() {
		var (
			e    models.ErrorEvent
			code string
		)
		if err := rows.Scan(&e.ID, &e.OccurredAt, &code, &e.Message); err != nil {
			return nil, err
		}
		e.Code = models.ErrorCode(code)
		e.OccurredAt = e.OccurredAt.UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
