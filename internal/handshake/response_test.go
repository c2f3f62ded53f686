// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package handshake

import (
	"testing"

	"github.com/openbc-project/handshaked/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildNonRecursiveResponseFrame(t *testing.T, round byte, refHash, dirHash uint32, files []FileResult) []byte {
	t.Helper()
	buf := make([]byte, 4096)
	w := wire.NewWriter(buf)
	require.True(t, w.WriteU8(byte(OpChecksumResponse)))
	require.True(t, w.WriteU8(round))
	require.True(t, w.WriteU32(refHash))
	require.True(t, w.WriteU32(dirHash))
	require.True(t, w.WriteBit(false)) // not empty
	require.True(t, w.WriteU16(uint16(len(files))))
	for _, f := range files {
		require.True(t, w.WriteU32(f.NameHash))
		require.True(t, w.WriteU32(f.ContentHash))
	}
	return buf[:w.Pos()]
}

func TestParseChecksumResponseNonRecursive(t *testing.T) {
	frame := buildNonRecursiveResponseFrame(t, 0, 0xAAAAAAAA, 0x4DAFCB2F, []FileResult{
		{NameHash: 0x373EB677, ContentHash: 0x11223344},
	})

	resp, err := ParseChecksumResponse(frame)
	require.NoError(t, err)
	assert.Equal(t, byte(0), resp.Round)
	assert.False(t, resp.Empty)
	require.Len(t, resp.Files, 1)
	assert.Equal(t, uint32(0x373EB677), resp.Files[0].NameHash)
	assert.Nil(t, resp.Subdirs)
}

func TestParseChecksumResponseEmpty(t *testing.T) {
	buf := make([]byte, 16)
	w := wire.NewWriter(buf)
	require.True(t, w.WriteU8(byte(OpChecksumResponse)))
	require.True(t, w.WriteU8(3))
	require.True(t, w.WriteU32(0))
	require.True(t, w.WriteU32(0x12345678))
	require.True(t, w.WriteBit(true)) // empty

	resp, err := ParseChecksumResponse(buf[:w.Pos()])
	require.NoError(t, err)
	assert.True(t, resp.Empty)
	assert.Nil(t, resp.Files)
}

func TestParseChecksumResponseRecursive(t *testing.T) {
	buf := make([]byte, 4096)
	w := wire.NewWriter(buf)
	require.True(t, w.WriteU8(byte(OpChecksumResponse)))
	require.True(t, w.WriteU8(2)) // round 2 is recursive
	require.True(t, w.WriteU32(0))
	require.True(t, w.WriteU32(0xAABBCCDD))
	require.True(t, w.WriteBit(false))
	require.True(t, w.WriteU16(0)) // no direct files
	require.True(t, w.WriteU16(1)) // one subdir
	require.True(t, w.WriteU32(0x11111111))
	require.True(t, w.WriteU16(1)) // one file in subdir
	require.True(t, w.WriteU32(0x22222222))
	require.True(t, w.WriteU32(0x33333333))

	resp, err := ParseChecksumResponse(buf[:w.Pos()])
	require.NoError(t, err)
	require.Len(t, resp.Subdirs, 1)
	assert.Equal(t, uint32(0x11111111), resp.Subdirs[0].NameHash)
	require.Len(t, resp.Subdirs[0].Files, 1)
	assert.Equal(t, uint32(0x22222222), resp.Subdirs[0].Files[0].NameHash)
}

func TestParseChecksumResponseRejectsWrongOpcode(t *testing.T) {
	buf := []byte{0x99, 0x00, 0, 0, 0, 0, 0, 0, 0, 0, 0x00, 0x00}
	_, err := ParseChecksumResponse(buf)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestParseChecksumResponseRejectsTruncatedFrame(t *testing.T) {
	buf := []byte{byte(OpChecksumResponse), 0x00}
	_, err := ParseChecksumResponse(buf)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestParseChecksumResponseRejectsOversizedFileCount(t *testing.T) {
	buf := make([]byte, 16)
	w := wire.NewWriter(buf)
	require.True(t, w.WriteU8(byte(OpChecksumResponse)))
	require.True(t, w.WriteU8(0))
	require.True(t, w.WriteU32(0))
	require.True(t, w.WriteU32(0))
	require.True(t, w.WriteBit(false))
	require.True(t, w.WriteU16(300)) // exceeds maxResponseFiles

	_, err := ParseChecksumResponse(buf[:w.Pos()])
	assert.ErrorIs(t, err, ErrMalformedResponse)
}
