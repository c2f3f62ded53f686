// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package handshake

import (
	"testing"

	"github.com/openbc-project/handshaked/internal/checksum"
	"github.com/openbc-project/handshaked/internal/manifest"
	"github.com/stretchr/testify/assert"
)

func TestValidateHappyPath(t *testing.T) {
	dir := &manifest.DirectoryEntry{
		Files: []manifest.FileEntry{{NameHash: checksum.NameHash("App.pyc"), ContentHash: 0x373EB677}},
	}
	resp := &ChecksumResponse{
		DirHash: checksum.NameHash("scripts/"),
		Files:   []FileResult{{NameHash: checksum.NameHash("App.pyc"), ContentHash: 0x373EB677}},
	}

	assert.Equal(t, OK, Validate(resp, checksum.NameHash("scripts/"), dir))
}

func TestValidateExtraFileTolerated(t *testing.T) {
	dir := &manifest.DirectoryEntry{
		Files: []manifest.FileEntry{{NameHash: checksum.NameHash("App.pyc"), ContentHash: 0x373EB677}},
	}
	resp := &ChecksumResponse{
		DirHash: checksum.NameHash("scripts/"),
		Files: []FileResult{
			{NameHash: checksum.NameHash("App.pyc"), ContentHash: 0x373EB677},
			{NameHash: checksum.NameHash("Mod.pyc"), ContentHash: 0xDEADBEEF},
		},
	}

	assert.Equal(t, OK, Validate(resp, checksum.NameHash("scripts/"), dir))
}

func TestValidateTamperedFileFails(t *testing.T) {
	dir := &manifest.DirectoryEntry{
		Files: []manifest.FileEntry{{NameHash: checksum.NameHash("App.pyc"), ContentHash: 0x373EB677}},
	}
	resp := &ChecksumResponse{
		DirHash: checksum.NameHash("scripts/"),
		Files:   []FileResult{{NameHash: checksum.NameHash("App.pyc"), ContentHash: 0xBAD}},
	}

	assert.Equal(t, FileMismatch, Validate(resp, checksum.NameHash("scripts/"), dir))
}

func TestValidateMissingMandatoryFileFails(t *testing.T) {
	dir := &manifest.DirectoryEntry{
		Files: []manifest.FileEntry{{NameHash: checksum.NameHash("App.pyc"), ContentHash: 0x373EB677}},
	}
	resp := &ChecksumResponse{
		DirHash: checksum.NameHash("scripts/"),
		Files:   []FileResult{},
	}

	assert.Equal(t, FileMissing, Validate(resp, checksum.NameHash("scripts/"), dir))
}

func TestValidateDirHashMismatch(t *testing.T) {
	dir := &manifest.DirectoryEntry{}
	resp := &ChecksumResponse{DirHash: 0x12345678}

	assert.Equal(t, DirMismatch, Validate(resp, 0x00000000, dir))
}

func TestValidateEmptyDirMatchesEmptyManifest(t *testing.T) {
	dir := &manifest.DirectoryEntry{}
	resp := &ChecksumResponse{Empty: true}

	assert.Equal(t, EmptyDir, Validate(resp, 0, dir))
}

func TestValidateEmptyResponseAgainstNonEmptyManifestFails(t *testing.T) {
	dir := &manifest.DirectoryEntry{Files: []manifest.FileEntry{{NameHash: checksum.NameHash("App.pyc"), ContentHash: 1}}}
	resp := &ChecksumResponse{Empty: true}

	assert.Equal(t, FileMissing, Validate(resp, 0, dir))
}

func TestValidateRecursiveRoundChecksSubdirs(t *testing.T) {
	dir := &manifest.DirectoryEntry{
		Recursive: true,
		Subdirs: []manifest.SubdirectoryEntry{
			{NameHash: checksum.NameHash("fighters"), Files: []manifest.FileEntry{{NameHash: checksum.NameHash("Hornet.pyc"), ContentHash: 0xAAAA}}},
		},
	}
	resp := &ChecksumResponse{
		DirHash: checksum.NameHash("scripts/ships"),
		Subdirs: []SubdirResult{
			{NameHash: checksum.NameHash("fighters"), Files: []FileResult{
				{NameHash: checksum.NameHash("Hornet.pyc"), ContentHash: 0xAAAA},
			}},
		},
	}

	assert.Equal(t, OK, Validate(resp, checksum.NameHash("scripts/ships"), dir))
}

func TestValidateMissingMandatorySubdirFails(t *testing.T) {
	dir := &manifest.DirectoryEntry{
		Recursive: true,
		Subdirs: []manifest.SubdirectoryEntry{
			{NameHash: checksum.NameHash("fighters"), Files: []manifest.FileEntry{{NameHash: checksum.NameHash("Hornet.pyc"), ContentHash: 0xAAAA}}},
		},
	}
	resp := &ChecksumResponse{DirHash: checksum.NameHash("scripts/ships")}

	assert.Equal(t, FileMissing, Validate(resp, checksum.NameHash("scripts/ships"), dir))
}

func TestValidateTamperedSubdirFileFails(t *testing.T) {
	dir := &manifest.DirectoryEntry{
		Recursive: true,
		Subdirs: []manifest.SubdirectoryEntry{
			{NameHash: checksum.NameHash("fighters"), Files: []manifest.FileEntry{{NameHash: checksum.NameHash("Hornet.pyc"), ContentHash: 0xAAAA}}},
		},
	}
	resp := &ChecksumResponse{
		DirHash: checksum.NameHash("scripts/ships"),
		Subdirs: []SubdirResult{
			{NameHash: checksum.NameHash("fighters"), Files: []FileResult{
				{NameHash: checksum.NameHash("Hornet.pyc"), ContentHash: 0xBADC0DE},
			}},
		},
	}

	assert.Equal(t, FileMismatch, Validate(resp, checksum.NameHash("scripts/ships"), dir))
}
