// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package auditlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/openbc-project/handshaked/internal/handshake"
	"github.com/stretchr/testify/require"
)

func TestRecordAndQueryRecentFailures(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	l, err := Open(dbPath)
	require.NoError(t, err)
	defer l.Close()

	ctx := context.Background()
	now := time.Unix(1700000000, 0)

	require.NoError(t, l.Record(ctx, "10.0.0.1:4000", 0, handshake.OK, true, now))
	require.NoError(t, l.Record(ctx, "10.0.0.2:4000", 1, handshake.FileMismatch, false, now.Add(time.Second)))

	failures, err := l.RecentFailures(ctx, 10)
	require.NoError(t, err)
	require.Len(t, failures, 1)
	require.Equal(t, "10.0.0.2:4000", failures[0].RemoteAddr)
	require.Equal(t, "FILE_MISMATCH", failures[0].Result)
	require.False(t, failures[0].Accepted)
}
