// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package handshake

import (
	"github.com/openbc-project/handshaked/internal/manifest"
)

// Result is the outcome of validating a checksum response against a
// manifest directory.
type Result int

const (
	// OK means every mandatory file (and, for a recursive round, every
	// mandatory subdirectory and its files) matched in a response that did
	// not set the empty flag. A response with no files is OK when the
	// manifest directory expects none.
	OK Result = iota
	// EmptyDir means the client reported the directory as empty and the
	// manifest agrees it should be empty. This is a success outcome
	// distinct from OK so operators can tell the two apart in logs.
	EmptyDir
	// DirMismatch means the directory name hash the client echoed back
	// does not match the name hash of the directory this round asked
	// about.
	DirMismatch
	// FileMissing means a file (or subdirectory) the manifest requires
	// was absent from the response entirely.
	FileMissing
	// FileMismatch means a file present in the response has a content
	// hash that does not match the manifest's expectation.
	FileMismatch
	// ParseError means the response frame itself could not be decoded.
	ParseError
)

// String names a Result the way log lines and audit records reference
// it.
func (r Result) String() string {
	switch r {
	case OK:
		return "OK"
	case EmptyDir:
		return "EMPTY_DIR"
	case DirMismatch:
		return "DIR_MISMATCH"
	case FileMissing:
		return "FILE_MISSING"
	case FileMismatch:
		return "FILE_MISMATCH"
	case ParseError:
		return "PARSE_ERROR"
	default:
		return "UNKNOWN"
	}
}

// Validate checks a parsed checksum response against the expected
// directory entry for the round it answers. Extra files and
// subdirectories the manifest does not know about are tolerated (a
// client ahead of the manifest is not treated as tampering); anything
// the manifest requires that the response lacks or disagrees with is
// not.
//
// Evaluation stops at the first failure, in this order: the empty-flag
// short-circuit, the directory name hash, per-file content mismatches,
// missing mandatory files, per-subdirectory validation, and missing
// mandatory subdirectories.
func Validate(resp *ChecksumResponse, expectedDirNameHash uint32, dir *manifest.DirectoryEntry) Result {
	if resp.Empty {
		if len(dir.Files) > 0 {
			return FileMissing
		}
		return EmptyDir
	}

	if resp.DirHash != expectedDirNameHash {
		return DirMismatch
	}

	if result := validateFiles(resp.Files, dir.Files); result != OK {
		return result
	}

	if len(dir.Subdirs) == 0 {
		return OK
	}

	for _, respSub := range resp.Subdirs {
		manifestSub, found := dir.FindSubdir(respSub.NameHash)
		if !found {
			continue // extra subdirectory, tolerated
		}
		if result := validateFiles(respSub.Files, manifestSub.Files); result != OK {
			return result
		}
	}

	for _, manifestSub := range dir.Subdirs {
		if !subdirPresent(resp.Subdirs, manifestSub.NameHash) {
			return FileMissing
		}
	}

	return OK
}

// validateFiles checks one set of response files against one set of
// manifest files: extras are tolerated, content mismatches fail
// immediately, and any manifest file absent from the response fails
// after all present files have been checked.
func validateFiles(respFiles []FileResult, manifestFiles []manifest.FileEntry) Result {
	for _, rf := range respFiles {
		if !fileNameHashKnown(manifestFiles, rf.NameHash) {
			continue // extra file, tolerated
		}
		expected := expectedHashFor(manifestFiles, rf.NameHash)
		if rf.ContentHash != expected {
			return FileMismatch
		}
	}

	for _, mf := range manifestFiles {
		if !responseHasFile(respFiles, mf) {
			return FileMissing
		}
	}

	return OK
}

func fileNameHashKnown(files []manifest.FileEntry, nameHash uint32) bool {
	for _, f := range files {
		if f.NameHash == nameHash {
			return true
		}
	}
	return false
}

func expectedHashFor(files []manifest.FileEntry, nameHash uint32) uint32 {
	for _, f := range files {
		if f.NameHash == nameHash {
			return f.ContentHash
		}
	}
	return 0
}

func responseHasFile(respFiles []FileResult, mf manifest.FileEntry) bool {
	for _, rf := range respFiles {
		if rf.NameHash == mf.NameHash {
			return true
		}
	}
	return false
}

func subdirPresent(respSubdirs []SubdirResult, nameHash uint32) bool {
	for _, s := range respSubdirs {
		if s.NameHash == nameHash {
			return true
		}
	}
	return false
}
