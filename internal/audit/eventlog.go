// Package audit is an append-only log of workflow events: attempts
// submitted, essays dispatched, certificates issued. It exists so the manual
// review loop has a trail to reconcile against.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

type Event struct {
	Offset    int64  `json:"offset"`
	Type      string `json:"type"` // e.g. essay.submitted
	Key       string `json:"key"`  // natural key: attempt/submission/certificate ID
	DataJSON  string `json:"data"`
	CreatedAt int64  `json:"created_at"`
}

type EventLog struct{ db *sql.DB }

func NewEventLog(db *sql.DB) *EventLog { return &EventLog{db: db} }

// Record marshals data and appends one row. Append-only by construction;
// there is no update or delete path.
func (l *EventLog) Record(ctx context.Context, typ, key string, data any) error {
	buf, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at) VALUES ($1,$2,$3,$4)`,
		typ, key, string(buf), time.Now().Unix())
	return err
}

// Tail returns the most recent events of a type, newest first.
func (l *EventLog) Tail(ctx context.Context, typ string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT offset, typ, key, data, created_at FROM event_log
		 WHERE typ=$1 ORDER BY offset DESC LIMIT $2`, typ, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Offset, &e.Type, &e.Key, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
