// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package auditlog

import (
	"context"
	"database/sql"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/openbc-project/handshaked/pkg/log"
	"github.com/qustavo/sqlhooks/v2"
)

const driverName = "sqlite3-audited"

type queryTimerKey struct{}

// timingHooks logs any audit-log query slower than the threshold below.
// The audit log sits off the hot path of the handshake itself, so a
// slow write here should never affect a client's connect latency, but
// it is worth knowing about if the underlying disk is struggling.
type timingHooks struct{}

const slowQueryThreshold = 50 * time.Millisecond

func (timingHooks) Before(ctx context.Context, query string, args ...interface{}) (context.Context, error) {
	return context.WithValue(ctx, queryTimerKey{}, time.Now()), nil
}

func (timingHooks) After(ctx context.Context, query string, args ...interface{}) (context.Context, error) {
	if start, ok := ctx.Value(queryTimerKey{}).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > slowQueryThreshold {
			log.Warnf("auditlog: slow query (%s): %s", elapsed, query)
		}
	}
	return ctx, nil
}

func init() {
	sql.Register(driverName, sqlhooks.Wrap(&sqlite3.SQLiteDriver{}, timingHooks{}))
}
