// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package metrics exposes prometheus counters for the handshake's
// outcomes, broken down by round and result, so an operator can see
// which round is failing and how often without reading logs.
package metrics

import (
	"strconv"

	"github.com/openbc-project/handshaked/internal/handshake"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RoundOutcomes counts every validated round, labelled by round
	// index and result name.
	RoundOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "openbc_handshaked",
			Name:      "round_outcomes_total",
			Help:      "Count of checksum round validations by round index and result.",
		},
		[]string{"round", "result"},
	)

	// HandshakesCompleted counts full handshakes, labelled by whether
	// the client was ultimately accepted or booted.
	HandshakesCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "openbc_handshaked",
			Name:      "handshakes_completed_total",
			Help:      "Count of completed handshakes by final disposition.",
		},
		[]string{"disposition"},
	)

	// ManifestReloads counts manifest (re)loads, labelled by outcome.
	ManifestReloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "openbc_handshaked",
			Name:      "manifest_reloads_total",
			Help:      "Count of manifest load attempts by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(RoundOutcomes, HandshakesCompleted, ManifestReloads)
}

// ObserveRound records one round's validation outcome.
func ObserveRound(round int, result handshake.Result) {
	RoundOutcomes.WithLabelValues(roundLabel(round), result.String()).Inc()
}

// ObserveHandshake records the final disposition of a completed
// handshake: "accepted" when the client was let in, "booted" otherwise.
func ObserveHandshake(accepted bool) {
	disposition := "booted"
	if accepted {
		disposition = "accepted"
	}
	HandshakesCompleted.WithLabelValues(disposition).Inc()
}

// ObserveManifestReload records a manifest load attempt.
func ObserveManifestReload(err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	ManifestReloads.WithLabelValues(outcome).Inc()
}

func roundLabel(round int) string {
	if round == int(handshake.FinalRound) {
		return "final"
	}
	if round < 0 {
		return "none"
	}
	return strconv.Itoa(round)
}
