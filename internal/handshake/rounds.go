// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package handshake

// RoundDefinition describes one checksum round: the directory the
// client is asked to hash, the file filter within it, and whether the
// exchange also covers subdirectories.
type RoundDefinition struct {
	Round     byte
	Directory string
	Filter    string
	Recursive bool
}

// rounds holds the four mandatory rounds, in order. Rounds 0 and 1 name
// "scripts/" with a trailing slash because that is the directory itself;
// rounds 2 and 3 name a path below it and carry no trailing slash. This
// asymmetry is load-bearing: a client and server that disagree on it
// will compute different directory name hashes and every round 2/3
// exchange will fail with DirMismatch.
var rounds = [4]RoundDefinition{
	{Round: 0, Directory: "scripts/", Filter: "App.pyc", Recursive: false},
	{Round: 1, Directory: "scripts/", Filter: "Autoexec.pyc", Recursive: false},
	{Round: 2, Directory: "scripts/ships", Filter: "*.pyc", Recursive: true},
	{Round: 3, Directory: "scripts/mainmenu", Filter: "*.pyc", Recursive: false},
}

// finalRoundDefinition is the optional fifth exchange covering the
// multiplayer-only script tree. It carries two discrepancies against
// the naming convention used by rounds 0-3: the directory is spelled
// with a capital "Scripts" rather than lowercase, and it has no
// trailing slash despite naming a root-like path segment the way
// rounds 0 and 1 do. Both are preserved because the historical client
// reproduces them exactly; normalising either one here would make this
// server's final-round hash disagree with every real client.
var finalRoundDefinition = RoundDefinition{
	Round:     FinalRound,
	Directory: "Scripts/Multiplayer",
	Filter:    "*.pyc",
	Recursive: true,
}

// Round returns the definition for round index i (0..3).
func Round(i int) (RoundDefinition, bool) {
	if i < 0 || i >= len(rounds) {
		return RoundDefinition{}, false
	}
	return rounds[i], true
}

// Rounds returns the four mandatory round definitions in order.
func Rounds() [4]RoundDefinition {
	return rounds
}

// FinalRoundDefinition returns the optional final round's definition.
func FinalRoundDefinition() RoundDefinition {
	return finalRoundDefinition
}
