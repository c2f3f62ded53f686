// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package handshake implements the four-round (plus optional final)
// content-addressed checksum exchange, the message builders for the
// surrounding connection-setup messages, and the response parser and
// validator that decide whether a connecting client's scripts match the
// server's expectations.
package handshake

// Opcode identifies the first byte of every message this package
// builds or parses.
type Opcode byte

const (
	OpSettings           Opcode = 0x00
	OpGameInit           Opcode = 0x01
	OpBootPlayer         Opcode = 0x04
	OpUICollisionSetting Opcode = 0x16
	OpDeletePlayerUI     Opcode = 0x17
	OpDeletePlayerAnim   Opcode = 0x18
	OpChecksumRequest    Opcode = 0x20
	OpChecksumResponse   Opcode = 0x21
	OpMissionInit        Opcode = 0x35
)

// FinalRound is the round index used for the optional fifth exchange
// that checksums the multiplayer-only script tree. It is out of band
// with the 0..3 range of the four mandatory rounds.
const FinalRound byte = 0xFF
