// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package manifest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDoc = `{
	"version_string_hash": "0x01020304",
	"directories": [
		{
			"dir_name_hash": "0x1f5b6a6e",
			"recursive": false,
			"files": [
				{"name_hash": "0x7e0cb5a6", "content_hash": "0x373eb677"}
			]
		},
		{
			"dir_name_hash": "0x1f5b6a6e",
			"recursive": false,
			"files": [
				{"name_hash": "0x4a6a5a2f", "content_hash": "0x8501e6a1"}
			]
		},
		{
			"dir_name_hash": "0x2f6d5f0a",
			"recursive": true,
			"files": [],
			"subdirs": [
				{
					"name_hash": "0x5c9a3b11",
					"files": [
						{"name_hash": "0x1a2b3c4d", "content_hash": "0xdeadbeef"}
					]
				}
			]
		},
		{
			"dir_name_hash": "0x3a7c8e02",
			"recursive": false,
			"files": [
				{"name_hash": "0x6b8d9f14", "content_hash": "0x0badf00d"}
			]
		}
	]
}`

func TestLoadValidDocument(t *testing.T) {
	m, err := Load(strings.NewReader(validDoc))
	require.NoError(t, err)
	require.Len(t, m.Directories, 4)

	assert.Equal(t, uint32(0x01020304), m.VersionHash)

	dir2 := m.Directories[2]
	assert.True(t, dir2.Recursive)
	require.Len(t, dir2.Subdirs, 1)
	assert.Equal(t, uint32(0x5c9a3b11), dir2.Subdirs[0].NameHash)
	assert.Equal(t, uint32(0xDEADBEEF), dir2.Subdirs[0].Files[0].ContentHash)
}

func TestLoadRejectsMissingHexPrefix(t *testing.T) {
	doc := strings.Replace(validDoc, `"0x01020304"`, `"01020304"`, 1)
	_, err := Load(strings.NewReader(doc))
	assert.Error(t, err)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	doc := strings.Replace(validDoc, `"version_string_hash"`, `"bogus_field": true, "version_string_hash"`, 1)
	_, err := Load(strings.NewReader(doc))
	assert.Error(t, err)
}

func TestLoadRejectsMalformedHash(t *testing.T) {
	doc := strings.Replace(validDoc, "0x373eb677", "not-hex!", 1)
	_, err := Load(strings.NewReader(doc))
	assert.Error(t, err)
}

func TestLoadRejectsTooManyDirectories(t *testing.T) {
	doc := strings.Replace(validDoc, `"directories": [`, `"directories": [
		{"dir_name_hash":"0x00000001","recursive":false,"files":[]},`, 1)
	_, err := Load(strings.NewReader(doc))
	assert.Error(t, err)
}

func TestLoadParsesFinalRound(t *testing.T) {
	doc := strings.Replace(validDoc, `]
}`, `],
	"final_round": {
		"dir_name_hash": "0x7a1b2c3d",
		"recursive": false,
		"files": [
			{"name_hash": "0x11223344", "content_hash": "0x55667788"}
		]
	}
}`, 1)

	m, err := Load(strings.NewReader(doc))
	require.NoError(t, err)
	require.NotNil(t, m.FinalRound)
	assert.Equal(t, uint32(0x7a1b2c3d), m.FinalRound.DirNameHash)
	assert.Equal(t, uint32(0x55667788), m.FinalRound.Files[0].ContentHash)
}
