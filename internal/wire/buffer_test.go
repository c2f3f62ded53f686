// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTripScalars(t *testing.T) {
	buf := make([]byte, 32)
	w := NewWriter(buf)

	require.True(t, w.WriteU8(0x20))
	require.True(t, w.WriteU16(8))
	require.True(t, w.WriteU32(0xDEADBEEF))
	require.True(t, w.WriteI32(-12345))
	require.True(t, w.WriteF32(3.5))

	r := NewReader(buf)
	v8, ok := r.ReadU8()
	require.True(t, ok)
	assert.Equal(t, uint8(0x20), v8)

	v16, ok := r.ReadU16()
	require.True(t, ok)
	assert.Equal(t, uint16(8), v16)

	v32, ok := r.ReadU32()
	require.True(t, ok)
	assert.Equal(t, uint32(0xDEADBEEF), v32)

	vi32, ok := r.ReadI32()
	require.True(t, ok)
	assert.Equal(t, int32(-12345), vi32)

	vf32, ok := r.ReadF32()
	require.True(t, ok)
	assert.Equal(t, float32(3.5), vf32)
}

func TestWriteBitPacksLeastSignificantFirst(t *testing.T) {
	buf := make([]byte, 8)
	w := NewWriter(buf)

	require.True(t, w.WriteBit(true))
	require.True(t, w.WriteBit(false))
	require.True(t, w.WriteBit(true))
	require.True(t, w.WriteU8(0xAB)) // finalises the partial byte first

	assert.Equal(t, byte(0x05), buf[0]) // bits 0 and 2 set
	assert.Equal(t, byte(0xAB), buf[1])
}

func TestTrailingBitConsumesWholeByte(t *testing.T) {
	buf := make([]byte, 4)
	w := NewWriter(buf)

	require.True(t, w.WriteU8(0x01))
	require.True(t, w.WriteBit(true))
	assert.Equal(t, 2, w.Pos(), "a lone trailing bit already occupies a whole byte")

	// The next byte-aligned write starts on a fresh byte after the bit
	// byte.
	require.True(t, w.WriteU8(0x02))
	assert.Equal(t, 3, w.Pos())
	assert.Equal(t, byte(0x01), buf[1])
}

func TestReadBitRoundTrip(t *testing.T) {
	buf := make([]byte, 4)
	w := NewWriter(buf)
	require.True(t, w.WriteBit(true))
	require.True(t, w.WriteBit(false))
	require.True(t, w.WriteBit(false))
	require.True(t, w.WriteBit(true))

	r := NewReader(buf)
	b0, ok := r.ReadBit()
	require.True(t, ok)
	b1, ok := r.ReadBit()
	require.True(t, ok)
	b2, ok := r.ReadBit()
	require.True(t, ok)
	b3, ok := r.ReadBit()
	require.True(t, ok)

	assert.Equal(t, []bool{true, false, false, true}, []bool{b0, b1, b2, b3})
}

func TestLengthPrefixedStringRoundTrip(t *testing.T) {
	buf := make([]byte, 32)
	w := NewWriter(buf)
	require.True(t, w.WriteLengthPrefixedString("App.pyc"))

	r := NewReader(buf)
	got, ok := r.ReadLengthPrefixedString()
	require.True(t, ok)
	assert.Equal(t, "App.pyc", got)
}

func TestShortBufferFailsWithoutPartialCommit(t *testing.T) {
	buf := make([]byte, 1)
	w := NewWriter(buf)
	require.True(t, w.WriteU8(0xFF))
	assert.False(t, w.WriteU8(0x00), "buffer has no room left")
	assert.Equal(t, 1, w.Pos())

	buf2 := make([]byte, 3)
	w2 := NewWriter(buf2)
	assert.False(t, w2.WriteU32(1), "u32 does not fit in 3 bytes")
	assert.Equal(t, 0, w2.Pos(), "failing write must not partially commit")
}

func TestChecksumRequestRound0WireBytes(t *testing.T) {
	// Happy-path bytes from the checksum request for round 0: opcode
	// 0x20, round 0, "scripts/" length-prefixed, "App.pyc"
	// length-prefixed, trailing recursive=false bit.
	buf := make([]byte, 64)
	w := NewWriter(buf)
	require.True(t, w.WriteU8(0x20))
	require.True(t, w.WriteU8(0x00))
	require.True(t, w.WriteLengthPrefixedString("scripts/"))
	require.True(t, w.WriteLengthPrefixedString("App.pyc"))
	require.True(t, w.WriteBit(false))

	want := []byte{
		0x20, 0x00,
		0x08, 0x00, 's', 'c', 'r', 'i', 'p', 't', 's', '/',
		0x07, 0x00, 'A', 'p', 'p', '.', 'p', 'y', 'c',
		0x00,
	}
	assert.Equal(t, want, buf[:w.Pos()])
}
