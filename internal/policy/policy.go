// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package policy lets an operator override the default severity of a
// validation result without a code change: an expr-lang expression per
// result name decides whether that result should still boot the player.
package policy

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/openbc-project/handshaked/internal/handshake"
)

// Env is the variable set exposed to a severity expression.
type Env struct {
	// Round is the round index the result came from (0..3, or the
	// value of handshake.FinalRound for the optional round).
	Round int
	// Result is the string form of the handshake.Result being judged.
	Result string
}

// defaultShouldBoot is applied to any result with no configured
// override: every outcome except OK and EmptyDir boots the player.
func defaultShouldBoot(result handshake.Result) bool {
	return result != handshake.OK && result != handshake.EmptyDir
}

// Policy evaluates whether a given round's result should boot the
// connecting player, consulting per-result expr-lang overrides before
// falling back to the default severity.
type Policy struct {
	programs map[string]*vm.Program
}

// Compile builds a Policy from a map of result name to expr-lang boolean
// expression, e.g. {"FILE_MISMATCH": "Round != 2"} to tolerate a
// mismatch only on round 2. Every expression is compiled eagerly so a
// typo in the configuration is reported at startup, not on a client's
// first failure.
func Compile(overrides map[string]string) (*Policy, error) {
	p := &Policy{programs: make(map[string]*vm.Program, len(overrides))}

	for name, src := range overrides {
		program, err := expr.Compile(src, expr.Env(Env{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("policy: compiling override for %s: %w", name, err)
		}
		p.programs[name] = program
	}

	return p, nil
}

// ShouldBoot reports whether result, observed on the given round,
// should disconnect the player. A compiled override for result's name
// takes precedence; any evaluation error falls back to the default
// severity rather than failing the handshake on a policy bug.
func (p *Policy) ShouldBoot(round int, result handshake.Result) bool {
	program, ok := p.programs[result.String()]
	if !ok {
		return defaultShouldBoot(result)
	}

	out, err := expr.Run(program, Env{Round: round, Result: result.String()})
	if err != nil {
		return defaultShouldBoot(result)
	}

	boot, ok := out.(bool)
	if !ok {
		return defaultShouldBoot(result)
	}
	return boot
}
