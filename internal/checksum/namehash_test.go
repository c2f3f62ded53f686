// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package checksum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameHashVectors(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want uint32
	}{
		{"empty string", "", 0x00000000},
		{"version string", "60", 0x7E0CE243},
		{"app script", "App.pyc", 0x373EB677},
		{"scripts dir", "scripts", 0x4DAFCB2F},
		{"autoexec script", "Autoexec.pyc", 0x8501E6A1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, NameHash(c.in))
		})
	}
}

func TestNameHashCaseSensitive(t *testing.T) {
	assert.NotEqual(t, NameHash("ships"), NameHash("Ships"))
}

func TestNameHashDeterministic(t *testing.T) {
	s := "scripts/mainmenu"
	assert.Equal(t, NameHash(s), NameHash(s))
}

func TestNameHashBytesMatchesString(t *testing.T) {
	s := "scripts/ships"
	assert.Equal(t, NameHash(s), NameHashBytes([]byte(s)))
}

func TestVerifyTables(t *testing.T) {
	assert.True(t, VerifyTables(), "embedded substitution tables must reproduce the fixed version-string hash")
}
