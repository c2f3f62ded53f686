// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package manifest

import (
	"testing"

	"github.com/openbc-project/handshaked/internal/checksum"
	"github.com/stretchr/testify/assert"
)

func TestDirectoryFindFile(t *testing.T) {
	dir := DirectoryEntry{
		Files: []FileEntry{
			{NameHash: checksum.NameHash("App.pyc"), ContentHash: 0x373EB677},
			{NameHash: checksum.NameHash("Autoexec.pyc"), ContentHash: 0x8501E6A1},
		},
	}

	f, ok := dir.FindFile(checksum.NameHash("App.pyc"))
	assert.True(t, ok)
	assert.Equal(t, uint32(0x373EB677), f.ContentHash)

	_, ok = dir.FindFile(checksum.NameHash("Missing.pyc"))
	assert.False(t, ok)
}

func TestDirectoryFindSubdir(t *testing.T) {
	dir := DirectoryEntry{
		Subdirs: []SubdirectoryEntry{
			{NameHash: checksum.NameHash("fighters"), Files: []FileEntry{{NameHash: checksum.NameHash("Hornet.pyc"), ContentHash: 1}}},
		},
	}

	s, ok := dir.FindSubdir(checksum.NameHash("fighters"))
	assert.True(t, ok)
	assert.Equal(t, checksum.NameHash("fighters"), s.NameHash)

	f, ok := s.FindFile(checksum.NameHash("Hornet.pyc"))
	assert.True(t, ok)
	assert.Equal(t, uint32(1), f.ContentHash)

	_, ok = dir.FindSubdir(checksum.NameHash("bombers"))
	assert.False(t, ok)
}

func TestManifestDirectory(t *testing.T) {
	m := &Manifest{Directories: make([]DirectoryEntry, 4)}

	_, ok := m.Directory(2)
	assert.True(t, ok)

	_, ok = m.Directory(4)
	assert.False(t, ok, "round index 4 is out of range for a 4-entry manifest")

	_, ok = m.Directory(-1)
	assert.False(t, ok)
}
