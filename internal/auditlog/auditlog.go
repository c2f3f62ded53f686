// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package auditlog persists a record of every handshake outcome to a
// local sqlite database, so an operator can answer "why was this client
// booted" after the fact without having kept the server's log output.
package auditlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/openbc-project/handshaked/internal/handshake"
	"github.com/openbc-project/handshaked/pkg/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS handshake_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	remote_addr TEXT NOT NULL,
	round INTEGER NOT NULL,
	result TEXT NOT NULL,
	accepted INTEGER NOT NULL,
	occurred_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_handshake_events_occurred_at ON handshake_events(occurred_at);
`

// Event is one row of the audit log.
type Event struct {
	ID         int64  `db:"id"`
	RemoteAddr string `db:"remote_addr"`
	Round      int    `db:"round"`
	Result     string `db:"result"`
	Accepted   bool   `db:"accepted"`
	OccurredAt int64  `db:"occurred_at"`
}

// Log wraps a sqlite-backed connection pool. Every query goes through
// sqlhooks, which logs a warning for any audit query slower than
// slowQueryThreshold.
type Log struct {
	db *sqlx.DB
}

// Open opens (creating if necessary) the sqlite database at path and
// ensures the schema above exists.
func Open(path string) (*Log, error) {
	db, err := sqlx.Connect(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("auditlog: opening %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("auditlog: creating schema: %w", err)
	}

	return &Log{db: db}, nil
}

// Close releases the underlying database connection.
func (l *Log) Close() error {
	return l.db.Close()
}

// Record writes one handshake outcome. now is passed in rather than
// read from time.Now() so callers (and tests) control the timestamp
// precisely.
func (l *Log) Record(ctx context.Context, remoteAddr string, round int, result handshake.Result, accepted bool, now time.Time) error {
	query, args, err := sq.Insert("handshake_events").
		Columns("remote_addr", "round", "result", "accepted", "occurred_at").
		Values(remoteAddr, round, result.String(), boolToInt(accepted), now.Unix()).
		ToSql()
	if err != nil {
		return fmt.Errorf("auditlog: building insert: %w", err)
	}

	if _, err := l.db.ExecContext(ctx, query, args...); err != nil {
		log.Errorf("auditlog: recording event for %s: %v", remoteAddr, err)
		return fmt.Errorf("auditlog: inserting event: %w", err)
	}
	return nil
}

// RecentFailures returns the most recent non-OK, non-EmptyDir events,
// most recent first, capped at limit rows.
func (l *Log) RecentFailures(ctx context.Context, limit int) ([]Event, error) {
	query, args, err := sq.Select("id", "remote_addr", "round", "result", "accepted", "occurred_at").
		From("handshake_events").
		Where(sq.And{
			sq.NotEq{"result": handshake.OK.String()},
			sq.NotEq{"result": handshake.EmptyDir.String()},
		}).
		OrderBy("occurred_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("auditlog: building query: %w", err)
	}

	var events []Event
	if err := l.db.SelectContext(ctx, &events, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("auditlog: querying recent failures: %w", err)
	}
	return events, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
