// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package handshake

import (
	"fmt"

	"github.com/openbc-project/handshaked/internal/checksum"
	"github.com/openbc-project/handshaked/internal/manifest"
	"github.com/openbc-project/handshaked/pkg/log"
)

// Transport is the minimal send/receive contract the driver needs from
// a connection. Callers supply their own implementation (a TCP
// connection framed by length prefix, a test double, whatever the
// surrounding server uses); the driver itself never touches a socket.
type Transport interface {
	Send(frame []byte) error
	Receive() ([]byte, error)
}

// BootReason values are written into BuildBootPlayer. The numbering
// matches the full five-value reason enum the handshake wire format
// defines. The driver itself sends no boot frame; cmd/openbc-handshaked
// boots every rejected client with BootReasonChecksumFailed.
const (
	BootReasonGeneric        uint8 = 0
	BootReasonVersion        uint8 = 1
	BootReasonFull           uint8 = 2
	BootReasonBanned         uint8 = 3
	BootReasonChecksumFailed uint8 = 4

	BootReasonParseError = BootReasonGeneric
)

// Outcome is the result of running the full handshake against one
// client.
type Outcome struct {
	// Result is OK only if every mandatory round (and, when FinalRound
	// was requested, the final round too) validated successfully.
	Result Result
	// Round is the round index that produced Result, or -1 if every
	// round succeeded.
	Round int
}

// Driver runs the checksum exchange for a single connecting client: it
// sends each round's request, waits for and validates the response, and
// stops at the first failure.
type Driver struct {
	Transport  Transport
	Manifest   *manifest.Manifest
	FinalRound bool
}

// Run executes rounds 0 through 3 in order and, if FinalRound is set,
// the optional multiplayer-script round after them. It returns as soon
// as a round fails; callers are expected to boot the client on any
// non-success Outcome.
func (d *Driver) Run() (Outcome, error) {
	for i, round := range Rounds() {
		dir, ok := d.Manifest.Directory(i)
		if !ok {
			return Outcome{Result: ParseError, Round: i}, fmt.Errorf("handshake: manifest has no directory for round %d", i)
		}

		result, err := d.runRound(round, dir)
		if err != nil {
			return Outcome{Result: ParseError, Round: i}, err
		}
		if result != OK && result != EmptyDir {
			log.Warnf("handshake: round %d failed: %s", i, result)
			return Outcome{Result: result, Round: i}, nil
		}
	}

	if d.FinalRound {
		dir := d.Manifest.FinalRound
		if dir == nil {
			return Outcome{Result: ParseError, Round: int(FinalRound)}, fmt.Errorf("handshake: manifest has no final_round entry to validate the optional round against")
		}

		result, err := d.runRound(finalRoundDefinition, dir)
		if err != nil {
			return Outcome{Result: ParseError, Round: int(FinalRound)}, err
		}
		if result != OK && result != EmptyDir {
			log.Warnf("handshake: final round failed: %s", result)
			return Outcome{Result: result, Round: int(FinalRound)}, nil
		}
	}

	return Outcome{Result: OK, Round: -1}, nil
}

func (d *Driver) runRound(round RoundDefinition, dir *manifest.DirectoryEntry) (Result, error) {
	req, err := buildChecksumRequestFrame(round)
	if err != nil {
		return ParseError, err
	}
	if err := d.Transport.Send(req); err != nil {
		return ParseError, err
	}

	frame, err := d.Transport.Receive()
	if err != nil {
		return ParseError, err
	}

	resp, err := ParseChecksumResponse(frame)
	if err != nil {
		return ParseError, nil
	}

	expectedDirHash := checksum.NameHash(round.Directory)
	return Validate(resp, expectedDirHash, dir), nil
}
