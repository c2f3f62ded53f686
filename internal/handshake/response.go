// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package handshake

import (
	"errors"

	"github.com/openbc-project/handshaked/internal/wire"
)

// ErrMalformedResponse is returned by ParseChecksumResponse for any
// frame that does not fit the expected shape: wrong opcode, a buffer
// that runs out before a declared count is satisfied, or a count that
// implies more than ParseChecksumResponse is willing to read.
var ErrMalformedResponse = errors.New("handshake: malformed checksum response")

// FileResult is one file entry in a checksum response: the hash of its
// name and the hash of its content, exactly as the client computed
// them.
type FileResult struct {
	NameHash    uint32
	ContentHash uint32
}

// SubdirResult is one subdirectory entry in a recursive checksum
// response.
type SubdirResult struct {
	NameHash uint32
	Files    []FileResult
}

// ChecksumResponse is a parsed client response to a checksum request.
// RefHash is carried through from the wire but is never itself checked
// by Validate; operators can still log it to correlate a response with
// a particular client build.
type ChecksumResponse struct {
	Round   byte
	RefHash uint32
	DirHash uint32
	Empty   bool
	Files   []FileResult
	Subdirs []SubdirResult
}

// maxResponseFiles, maxResponseSubdirs and maxSubdirFiles bound how much
// a single parse call will read, mirroring the fixed-capacity response
// containers of the original protocol.
const (
	maxResponseFiles   = 256
	maxResponseSubdirs = 8
	maxSubdirFiles     = 128
)

// isRecursiveRound reports whether round carries subdirectory data.
// Only round 2 and the optional final round walk a directory tree; the
// client never sends subdirs for any other round regardless of what the
// manifest for that round happens to contain.
func isRecursiveRound(round byte) bool {
	return round == 2 || round == FinalRound
}

// ParseChecksumResponse decodes a raw checksum response frame.
func ParseChecksumResponse(frame []byte) (*ChecksumResponse, error) {
	r := wire.NewReader(frame)

	op, ok := r.ReadU8()
	if !ok || Opcode(op) != OpChecksumResponse {
		return nil, ErrMalformedResponse
	}

	round, ok := r.ReadU8()
	if !ok {
		return nil, ErrMalformedResponse
	}

	refHash, ok := r.ReadU32()
	if !ok {
		return nil, ErrMalformedResponse
	}

	dirHash, ok := r.ReadU32()
	if !ok {
		return nil, ErrMalformedResponse
	}

	empty, ok := r.ReadBit()
	if !ok {
		return nil, ErrMalformedResponse
	}

	resp := &ChecksumResponse{Round: round, RefHash: refHash, DirHash: dirHash, Empty: empty}
	if empty {
		return resp, nil
	}

	files, err := readFileList(r, maxResponseFiles)
	if err != nil {
		return nil, err
	}
	resp.Files = files

	if !isRecursiveRound(round) {
		return resp, nil
	}

	subdirCount, ok := r.ReadU16()
	if !ok {
		return nil, ErrMalformedResponse
	}
	if int(subdirCount) > maxResponseSubdirs {
		return nil, ErrMalformedResponse
	}

	resp.Subdirs = make([]SubdirResult, 0, subdirCount)
	for i := uint16(0); i < subdirCount; i++ {
		nameHash, ok := r.ReadU32()
		if !ok {
			return nil, ErrMalformedResponse
		}
		subFiles, err := readFileList(r, maxSubdirFiles)
		if err != nil {
			return nil, err
		}
		resp.Subdirs = append(resp.Subdirs, SubdirResult{NameHash: nameHash, Files: subFiles})
	}

	return resp, nil
}

func readFileList(r *wire.Buffer, max int) ([]FileResult, error) {
	count, ok := r.ReadU16()
	if !ok {
		return nil, ErrMalformedResponse
	}
	if int(count) > max {
		return nil, ErrMalformedResponse
	}

	files := make([]FileResult, 0, count)
	for i := uint16(0); i < count; i++ {
		nameHash, ok := r.ReadU32()
		if !ok {
			return nil, ErrMalformedResponse
		}
		contentHash, ok := r.ReadU32()
		if !ok {
			return nil, ErrMalformedResponse
		}
		files = append(files, FileResult{NameHash: nameHash, ContentHash: contentHash})
	}
	return files, nil
}
