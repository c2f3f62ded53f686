// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package handshake

import (
	"errors"
	"math"

	"github.com/openbc-project/handshaked/internal/wire"
)

// ErrMessageTooLarge is returned by a builder when a variable-length
// field (a directory name, filter, map name or player name) would not
// fit in the message's maximum wire size.
var ErrMessageTooLarge = errors.New("handshake: message exceeds maximum wire size")

// maxMessageSize bounds every builder's scratch buffer. It is far above
// any message this package actually produces; it exists so a builder
// fails cleanly on pathological input instead of silently truncating.
const maxMessageSize = 4096

// BuildChecksumRequest builds the wire bytes asking a client to hash the
// directory named by round r (0..3).
func BuildChecksumRequest(r RoundDefinition) ([]byte, error) {
	return buildChecksumRequestFrame(r)
}

// BuildChecksumRequestFinal builds the wire bytes for the optional
// multiplayer-script round.
func BuildChecksumRequestFinal() ([]byte, error) {
	return buildChecksumRequestFrame(finalRoundDefinition)
}

func buildChecksumRequestFrame(r RoundDefinition) ([]byte, error) {
	buf := make([]byte, maxMessageSize)
	w := wire.NewWriter(buf)

	ok := w.WriteU8(byte(OpChecksumRequest)) &&
		w.WriteU8(r.Round) &&
		w.WriteLengthPrefixedString(r.Directory) &&
		w.WriteLengthPrefixedString(r.Filter) &&
		w.WriteBit(r.Recursive)
	if !ok {
		return nil, ErrMessageTooLarge
	}
	return buf[:w.Pos()], nil
}

// BuildSettings builds the game-settings message sent once the handshake
// succeeds: game clock, collision/friendly-fire toggles, the player's
// slot, and the map name. checksumFlag is always written as false; the
// field exists on the wire but the server never sets it, since by the
// time Settings is sent the checksum exchange has already completed.
func BuildSettings(gameTime float32, collisionEnabled, friendlyFireEnabled bool, slot uint8, mapName string) ([]byte, error) {
	if len(mapName) > math.MaxUint16 {
		return nil, ErrMessageTooLarge
	}

	buf := make([]byte, maxMessageSize)
	w := wire.NewWriter(buf)

	ok := w.WriteU8(byte(OpSettings)) &&
		w.WriteF32(gameTime) &&
		w.WriteBit(collisionEnabled) &&
		w.WriteBit(friendlyFireEnabled) &&
		w.WriteU8(slot) &&
		w.WriteU16(uint16(len(mapName))) &&
		w.WriteBytes([]byte(mapName)) &&
		w.WriteBit(false)
	if !ok {
		return nil, ErrMessageTooLarge
	}
	return buf[:w.Pos()], nil
}

// BuildGameInit builds the one-byte message that tells a client the game
// world is ready to instantiate.
func BuildGameInit() ([]byte, error) {
	buf := make([]byte, 1)
	w := wire.NewWriter(buf)
	if !w.WriteU8(byte(OpGameInit)) {
		return nil, ErrMessageTooLarge
	}
	return buf[:w.Pos()], nil
}

// NoLimit is used for MissionInit's timeLimit and fragLimit parameters
// to mean "this mission has no such limit".
const NoLimit uint8 = 0xFF

// BuildMissionInit builds the mission-parameters message. timeLimit and
// fragLimit are each a single byte; the sentinel value NoLimit means the
// corresponding limit does not apply. When timeLimit is not NoLimit, an
// absolute end time follows it on the wire.
func BuildMissionInit(playerLimit, systemIndex, timeLimit uint8, endTime int32, fragLimit uint8) ([]byte, error) {
	buf := make([]byte, maxMessageSize)
	w := wire.NewWriter(buf)

	ok := w.WriteU8(byte(OpMissionInit)) &&
		w.WriteU8(playerLimit) &&
		w.WriteU8(systemIndex) &&
		w.WriteU8(timeLimit)
	if ok && timeLimit != NoLimit {
		ok = w.WriteI32(endTime)
	}
	if ok {
		ok = w.WriteU8(fragLimit)
	}
	if !ok {
		return nil, ErrMessageTooLarge
	}
	return buf[:w.Pos()], nil
}

// BuildUICollisionSetting builds the message toggling the collision
// warning indicator in the player's HUD.
func BuildUICollisionSetting(enabled bool) ([]byte, error) {
	buf := make([]byte, maxMessageSize)
	w := wire.NewWriter(buf)

	ok := w.WriteU8(byte(OpUICollisionSetting)) && w.WriteBit(enabled)
	if !ok {
		return nil, ErrMessageTooLarge
	}
	return buf[:w.Pos()], nil
}

// BuildBootPlayer builds the two-byte message disconnecting a client
// with the given reason code.
func BuildBootPlayer(reason uint8) ([]byte, error) {
	buf := make([]byte, 2)
	w := wire.NewWriter(buf)

	ok := w.WriteU8(byte(OpBootPlayer)) && w.WriteU8(reason)
	if !ok {
		return nil, ErrMessageTooLarge
	}
	return buf[:w.Pos()], nil
}

// BuildDeletePlayerUI builds the two-byte message removing a player's
// UI elements for the given game slot.
func BuildDeletePlayerUI(gameSlot uint8) ([]byte, error) {
	buf := make([]byte, 2)
	w := wire.NewWriter(buf)

	ok := w.WriteU8(byte(OpDeletePlayerUI)) && w.WriteU8(gameSlot)
	if !ok {
		return nil, ErrMessageTooLarge
	}
	return buf[:w.Pos()], nil
}

// BuildDeletePlayerAnim builds the message removing a player's
// animation state by name. This message is provisional: it was
// supplemented from the historical tool sources rather than observed in
// any captured packet trace, and its wire shape may need revision if a
// trace ever surfaces.
func BuildDeletePlayerAnim(playerName string) ([]byte, error) {
	if len(playerName) > math.MaxUint16 {
		return nil, ErrMessageTooLarge
	}

	buf := make([]byte, maxMessageSize)
	w := wire.NewWriter(buf)

	ok := w.WriteU8(byte(OpDeletePlayerAnim)) && w.WriteLengthPrefixedString(playerName)
	if !ok {
		return nil, ErrMessageTooLarge
	}
	return buf[:w.Pos()], nil
}
