// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package manifest holds the expected-hash tree the handshake validates
// checksum responses against: four top-level directories, each with a
// fixed set of files and, for the recursive round, a fixed set of
// subdirectories.
package manifest

// Capacity caps mirror the historical fixed-size containers: a manifest
// that would exceed any of these on load is rejected rather than
// silently truncated.
const (
	MaxDirs     = 4
	MaxFiles    = 256
	MaxSubdirs  = 8
	MaxSubFiles = 128
)

// FileEntry is one expected file: the hash of its name and the content
// hash it must match. The manifest never carries a plaintext filename —
// only the hashes a checksum response can be compared against directly.
type FileEntry struct {
	NameHash    uint32
	ContentHash uint32
}

// SubdirectoryEntry is one expected subdirectory within a recursive
// directory: its own name hash and the files expected inside it.
type SubdirectoryEntry struct {
	NameHash uint32
	Files    []FileEntry
}

// DirectoryEntry is one of the four top-level rounds: its files, and,
// when Recursive is set, its subdirectories.
type DirectoryEntry struct {
	DirNameHash uint32
	Recursive   bool
	Files       []FileEntry
	Subdirs     []SubdirectoryEntry
}

// Manifest is the full expected-hash tree loaded for one server
// instance. VersionHash is carried through from the source document but
// is not itself checked by the validator; it exists for operators to
// confirm which manifest a running server loaded.
//
// FinalRound, when present, is the expected file set for the optional
// 0xFF "Scripts/Multiplayer" round. It is kept separate from
// Directories because that array's length is pinned at four by the
// mandatory round count; the final round is optional and has no round
// index of its own.
type Manifest struct {
	VersionHash uint32
	Directories []DirectoryEntry
	FinalRound  *DirectoryEntry
}
