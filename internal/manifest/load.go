// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package manifest

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/openbc-project/handshaked/pkg/log"
	"github.com/openbc-project/handshaked/pkg/schema"
)

// docFile, docSubdir and docDirectory mirror the on-disk JSON shape.
// Hashes are encoded as "0x"-prefixed hex strings rather than JSON
// numbers so a 32-bit value round-trips without precision loss through
// any strict JSON decoder. The document never carries a plaintext name
// anywhere — only the hashes a checksum response can be compared
// against directly.
type docFile struct {
	NameHash    string `json:"name_hash"`
	ContentHash string `json:"content_hash"`
}

type docSubdir struct {
	NameHash string    `json:"name_hash"`
	Files    []docFile `json:"files"`
}

type docDirectory struct {
	DirNameHash string      `json:"dir_name_hash"`
	Recursive   bool        `json:"recursive"`
	Files       []docFile   `json:"files"`
	Subdirs     []docSubdir `json:"subdirs,omitempty"`
}

type document struct {
	VersionStringHash string         `json:"version_string_hash"`
	Directories       []docDirectory `json:"directories"`
	FinalRound        *docDirectory  `json:"final_round,omitempty"`
}

// Load parses and validates a manifest document, enforcing the fixed
// capacity caps along the way. Validation happens against the embedded
// JSON schema first so a malformed document is rejected with a schema
// error before any capacity or hex-decoding error is considered.
func Load(r io.Reader) (*Manifest, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("manifest: reading document: %w", err)
	}

	if err := schema.Validate(schema.Manifest, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("manifest: schema validation: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("manifest: decoding document: %w", err)
	}

	if len(doc.Directories) != MaxDirs {
		return nil, fmt.Errorf("manifest: %d directories, expected exactly %d", len(doc.Directories), MaxDirs)
	}

	versionHash, err := decodeHash(doc.VersionStringHash)
	if err != nil {
		return nil, fmt.Errorf("manifest: version_string_hash: %w", err)
	}

	m := &Manifest{VersionHash: versionHash}
	for _, d := range doc.Directories {
		dir, err := convertDirectory(d)
		if err != nil {
			return nil, err
		}
		m.Directories = append(m.Directories, dir)
	}

	if doc.FinalRound != nil {
		dir, err := convertDirectory(*doc.FinalRound)
		if err != nil {
			return nil, fmt.Errorf("manifest: final_round: %w", err)
		}
		m.FinalRound = &dir
	}

	log.Debugf("manifest: loaded %d directories, version_string_hash=0x%08x", len(m.Directories), m.VersionHash)
	return m, nil
}

func convertDirectory(d docDirectory) (DirectoryEntry, error) {
	if len(d.Files) > MaxFiles {
		return DirectoryEntry{}, fmt.Errorf("manifest: directory %q has %d files, exceeds cap of %d", d.DirNameHash, len(d.Files), MaxFiles)
	}
	if len(d.Subdirs) > MaxSubdirs {
		return DirectoryEntry{}, fmt.Errorf("manifest: directory %q has %d subdirs, exceeds cap of %d", d.DirNameHash, len(d.Subdirs), MaxSubdirs)
	}

	dirNameHash, err := decodeHash(d.DirNameHash)
	if err != nil {
		return DirectoryEntry{}, fmt.Errorf("manifest: dir_name_hash: %w", err)
	}

	dir := DirectoryEntry{
		DirNameHash: dirNameHash,
		Recursive:   d.Recursive,
	}

	for _, f := range d.Files {
		entry, err := convertFile(f)
		if err != nil {
			return DirectoryEntry{}, fmt.Errorf("manifest: directory %q: %w", d.DirNameHash, err)
		}
		dir.Files = append(dir.Files, entry)
	}

	for _, s := range d.Subdirs {
		if len(s.Files) > MaxSubFiles {
			return DirectoryEntry{}, fmt.Errorf("manifest: subdir %q has %d files, exceeds cap of %d", s.NameHash, len(s.Files), MaxSubFiles)
		}
		subNameHash, err := decodeHash(s.NameHash)
		if err != nil {
			return DirectoryEntry{}, fmt.Errorf("manifest: subdir name_hash: %w", err)
		}
		sub := SubdirectoryEntry{NameHash: subNameHash}
		for _, f := range s.Files {
			entry, err := convertFile(f)
			if err != nil {
				return DirectoryEntry{}, fmt.Errorf("manifest: subdir %q: %w", s.NameHash, err)
			}
			sub.Files = append(sub.Files, entry)
		}
		dir.Subdirs = append(dir.Subdirs, sub)
	}

	return dir, nil
}

func convertFile(f docFile) (FileEntry, error) {
	nameHash, err := decodeHash(f.NameHash)
	if err != nil {
		return FileEntry{}, fmt.Errorf("name_hash %q: %w", f.NameHash, err)
	}
	contentHash, err := decodeHash(f.ContentHash)
	if err != nil {
		return FileEntry{}, fmt.Errorf("content_hash %q: %w", f.ContentHash, err)
	}
	return FileEntry{NameHash: nameHash, ContentHash: contentHash}, nil
}

// decodeHash parses a "0x"-prefixed 8-digit hex string into the u32 it
// encodes, per spec.md's hash-string-literal wire shape.
func decodeHash(s string) (uint32, error) {
	if !strings.HasPrefix(s, "0x") {
		return 0, fmt.Errorf("hash %q missing required 0x prefix", s)
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return 0, fmt.Errorf("invalid hex %q: %w", s, err)
	}
	if len(raw) != 4 {
		return 0, fmt.Errorf("hash %q must encode exactly 4 bytes, got %d", s, len(raw))
	}
	return uint32(raw[0])<<24 | uint32(raw[1])<<16 | uint32(raw[2])<<8 | uint32(raw[3]), nil
}
