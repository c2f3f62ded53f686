// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package checksum

import (
	"encoding/binary"
	"io"
	"os"
)

// ContentHash computes the rotate-XOR fingerprint of file contents.
//
// The input is walked as little-endian 32-bit words; the word at index 1
// (bytes 4..7) is skipped, because compiled script files embed a
// compile-time timestamp there and skipping it makes identical bytecode
// hash identically regardless of when it was compiled. Each non-skipped
// word is XORed into the running hash and the hash is rotated left by
// one bit. Trailing bytes (len % 4) are sign-extended to 32 bits before
// being folded in the same way.
func ContentHash(data []byte) uint32 {
	var hash uint32
	dwordCount := len(data) / 4

	for i := 0; i < dwordCount; i++ {
		if i == 1 {
			continue
		}
		word := binary.LittleEndian.Uint32(data[i*4:])
		hash ^= word
		hash = hash<<1 | hash>>31
	}

	tail := data[dwordCount*4:]
	for _, b := range tail {
		extended := uint32(int32(int8(b)))
		hash ^= extended
		hash = hash<<1 | hash>>31
	}

	return hash
}

// ContentHashReader hashes the full contents of r without requiring the
// caller to buffer the whole file themselves.
func ContentHashReader(r io.Reader) (uint32, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	return ContentHash(data), nil
}

// ContentHashFile hashes the file at path. It mirrors the historical
// file_hash_from_path contract: the returned ok is false on any read
// failure, since 0 is itself a valid hash value and cannot signal error
// on its own.
func ContentHashFile(path string) (hash uint32, ok bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	return ContentHash(data), true
}
