// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wire implements the mixed byte/bit frame codec shared by every
// handshake message. All multi-byte integers are little-endian on the
// wire; float32 is IEEE-754 binary32 little-endian; byte strings are
// length-prefixed by a u16, with no terminator.
package wire

import (
	"math"
)

// Buffer is a byte slice paired with a byte cursor and a bit cursor
// within the current partial byte. It is a value type: callers that want
// a Buffer to accumulate state across calls must keep it by reference
// (e.g. pass a *Buffer), since copying a Buffer copies its cursor too.
type Buffer struct {
	buf     []byte
	pos     int
	bitPos  uint8 // 0 when no partial byte is pending
	bitByte byte  // byte the reader is currently taking bits from
}

// NewWriter wraps buf for writing starting at offset 0.
func NewWriter(buf []byte) *Buffer {
	return &Buffer{buf: buf}
}

// NewReader wraps buf for reading starting at offset 0.
func NewReader(buf []byte) *Buffer {
	return &Buffer{buf: buf}
}

// Pos returns the number of bytes written so far. A partially filled bit
// byte counts as one whole byte.
func (b *Buffer) Pos() int { return b.pos }

// flushBits closes any partially filled bit byte so the next write starts
// on a fresh byte; its unused bits stay zero. The bit byte itself is
// already on the wire, because WriteBit commits it when its first bit is
// written. This is the "boundary rule" from the wire contract: a
// trailing write_bit not followed by another write_bit still consumes
// one whole byte.
func (b *Buffer) flushBits() bool {
	b.bitPos = 0
	return true
}

// WriteBit writes a single bit into the next available bit position,
// least-significant bit first. The first bit of a byte commits that whole
// byte to the wire; the following seven bits fill it in.
func (b *Buffer) WriteBit(v bool) bool {
	if b.bitPos == 0 {
		if b.pos >= len(b.buf) {
			return false
		}
		b.buf[b.pos] = 0
		b.pos++
	}
	if v {
		b.buf[b.pos-1] |= 1 << b.bitPos
	}
	b.bitPos = (b.bitPos + 1) % 8
	return true
}

// WriteU8 writes a single byte, finalising any pending bit byte first.
func (b *Buffer) WriteU8(v uint8) bool {
	if !b.flushBits() {
		return false
	}
	if b.pos >= len(b.buf) {
		return false
	}
	b.buf[b.pos] = v
	b.pos++
	return true
}

// WriteU16 writes a little-endian u16.
func (b *Buffer) WriteU16(v uint16) bool {
	if !b.flushBits() {
		return false
	}
	if b.pos+2 > len(b.buf) {
		return false
	}
	b.buf[b.pos] = byte(v)
	b.buf[b.pos+1] = byte(v >> 8)
	b.pos += 2
	return true
}

// WriteU32 writes a little-endian u32.
func (b *Buffer) WriteU32(v uint32) bool {
	if !b.flushBits() {
		return false
	}
	if b.pos+4 > len(b.buf) {
		return false
	}
	b.buf[b.pos] = byte(v)
	b.buf[b.pos+1] = byte(v >> 8)
	b.buf[b.pos+2] = byte(v >> 16)
	b.buf[b.pos+3] = byte(v >> 24)
	b.pos += 4
	return true
}

// WriteI32 writes a little-endian i32.
func (b *Buffer) WriteI32(v int32) bool {
	return b.WriteU32(uint32(v))
}

// WriteF32 writes an IEEE-754 binary32 little-endian float.
func (b *Buffer) WriteF32(v float32) bool {
	return b.WriteU32(math.Float32bits(v))
}

// WriteBytes writes a raw byte string with no length prefix and no
// terminator; callers that need a length-prefixed string call WriteU16
// with the length first.
func (b *Buffer) WriteBytes(src []byte) bool {
	if !b.flushBits() {
		return false
	}
	if b.pos+len(src) > len(b.buf) {
		return false
	}
	copy(b.buf[b.pos:], src)
	b.pos += len(src)
	return true
}

// WriteLengthPrefixedString writes a u16 length followed by the raw
// bytes of s, the shape used for every string field in the handshake.
func (b *Buffer) WriteLengthPrefixedString(s string) bool {
	if len(s) > math.MaxUint16 {
		return false
	}
	if !b.WriteU16(uint16(len(s))) {
		return false
	}
	return b.WriteBytes([]byte(s))
}

// discardBits drops any pending partial read byte, moving the byte
// cursor to the start of the next whole byte. Mirrors flushBits on the
// read side.
func (b *Buffer) discardBits() bool {
	if b.bitPos == 0 {
		return true
	}
	b.bitPos = 0
	b.bitByte = 0
	return true
}

// ReadBit reads a single bit, least-significant bit first, from the
// current partial byte, consuming a fresh byte from the wire when
// needed.
func (b *Buffer) ReadBit() (bool, bool) {
	if b.bitPos == 0 {
		if b.pos >= len(b.buf) {
			return false, false
		}
		b.bitByte = b.buf[b.pos]
		b.pos++
	}
	v := (b.bitByte>>b.bitPos)&1 != 0
	b.bitPos++
	if b.bitPos == 8 {
		b.bitPos = 0
		b.bitByte = 0
	}
	return v, true
}

// ReadU8 reads a single byte, discarding any pending partial read byte.
func (b *Buffer) ReadU8() (uint8, bool) {
	if !b.discardBits() {
		return 0, false
	}
	if b.pos >= len(b.buf) {
		return 0, false
	}
	v := b.buf[b.pos]
	b.pos++
	return v, true
}

// ReadU16 reads a little-endian u16.
func (b *Buffer) ReadU16() (uint16, bool) {
	if !b.discardBits() {
		return 0, false
	}
	if b.pos+2 > len(b.buf) {
		return 0, false
	}
	v := uint16(b.buf[b.pos]) | uint16(b.buf[b.pos+1])<<8
	b.pos += 2
	return v, true
}

// ReadU32 reads a little-endian u32.
func (b *Buffer) ReadU32() (uint32, bool) {
	if !b.discardBits() {
		return 0, false
	}
	if b.pos+4 > len(b.buf) {
		return 0, false
	}
	v := uint32(b.buf[b.pos]) | uint32(b.buf[b.pos+1])<<8 |
		uint32(b.buf[b.pos+2])<<16 | uint32(b.buf[b.pos+3])<<24
	b.pos += 4
	return v, true
}

// ReadI32 reads a little-endian i32.
func (b *Buffer) ReadI32() (int32, bool) {
	v, ok := b.ReadU32()
	return int32(v), ok
}

// ReadF32 reads an IEEE-754 binary32 little-endian float.
func (b *Buffer) ReadF32() (float32, bool) {
	v, ok := b.ReadU32()
	if !ok {
		return 0, false
	}
	return math.Float32frombits(v), true
}

// ReadBytes reads exactly n raw bytes.
func (b *Buffer) ReadBytes(n int) ([]byte, bool) {
	if !b.discardBits() {
		return nil, false
	}
	if n < 0 || b.pos+n > len(b.buf) {
		return nil, false
	}
	out := make([]byte, n)
	copy(out, b.buf[b.pos:b.pos+n])
	b.pos += n
	return out, true
}

// ReadLengthPrefixedString reads a u16 length followed by that many raw
// bytes, returned as a string with no encoding transformation applied.
func (b *Buffer) ReadLengthPrefixedString() (string, bool) {
	n, ok := b.ReadU16()
	if !ok {
		return "", false
	}
	raw, ok := b.ReadBytes(int(n))
	if !ok {
		return "", false
	}
	return string(raw), true
}
