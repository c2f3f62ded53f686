// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package reload

import (
	"context"
	"errors"
	"testing"

	"github.com/openbc-project/handshaked/internal/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerLoadsInitialManifest(t *testing.T) {
	calls := 0
	load := func(ctx context.Context, location string) (*manifest.Manifest, error) {
		calls++
		return &manifest.Manifest{VersionHash: uint32(calls)}, nil
	}

	m, err := NewManager(context.Background(), "irrelevant", load)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), m.Current().VersionHash)
}

func TestNewManagerFailsFastOnLoadError(t *testing.T) {
	load := func(ctx context.Context, location string) (*manifest.Manifest, error) {
		return nil, errors.New("boom")
	}

	_, err := NewManager(context.Background(), "irrelevant", load)
	assert.Error(t, err)
}

func TestReloadOnceReplacesCurrentManifest(t *testing.T) {
	calls := 0
	load := func(ctx context.Context, location string) (*manifest.Manifest, error) {
		calls++
		return &manifest.Manifest{VersionHash: uint32(calls)}, nil
	}

	m, err := NewManager(context.Background(), "irrelevant", load)
	require.NoError(t, err)
	require.Equal(t, uint32(1), m.Current().VersionHash)

	m.reloadOnce(context.Background())
	assert.Equal(t, uint32(2), m.Current().VersionHash)
}

func TestReloadOnceKeepsCurrentManifestOnError(t *testing.T) {
	calls := 0
	load := func(ctx context.Context, location string) (*manifest.Manifest, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("transient failure")
		}
		return &manifest.Manifest{VersionHash: uint32(calls)}, nil
	}

	var lastErr error
	m, err := NewManager(context.Background(), "irrelevant", load)
	require.NoError(t, err)
	m.onError = func(e error) { lastErr = e }

	m.reloadOnce(context.Background())
	require.Error(t, lastErr)
	assert.Equal(t, uint32(1), m.Current().VersionHash, "a failed reload must not clobber the last-known-good manifest")
}
