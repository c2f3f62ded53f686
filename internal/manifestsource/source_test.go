// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package manifestsource

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureDoc = `{
	"version_string_hash": "0x01020304",
	"directories": [
		{"dir_name_hash": "0x1f5b6a6e", "recursive": false, "files": [{"name_hash": "0x7e0cb5a6", "content_hash": "0x373eb677"}]},
		{"dir_name_hash": "0x1f5b6a6e", "recursive": false, "files": [{"name_hash": "0x4a6a5a2f", "content_hash": "0x8501e6a1"}]},
		{"dir_name_hash": "0x2f6d5f0a", "recursive": true, "files": []},
		{"dir_name_hash": "0x3a7c8e02", "recursive": false, "files": [{"name_hash": "0x6b8d9f14", "content_hash": "0x0badf00d"}]}
	]
}`

func TestLoadFromLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(fixtureDoc), 0o644))

	m, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, m.Directories, 4)
}

func TestParseS3URI(t *testing.T) {
	bucket, key, ok := parseS3URI("s3://my-bucket/manifests/prod.json")
	assert.True(t, ok)
	assert.Equal(t, "my-bucket", bucket)
	assert.Equal(t, "manifests/prod.json", key)

	_, _, ok = parseS3URI("/local/path")
	assert.False(t, ok)
}
