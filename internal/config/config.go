// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config loads and validates the server's JSON configuration
// file.
package config

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/openbc-project/handshaked/pkg/log"
	"github.com/openbc-project/handshaked/pkg/schema"
)

// ServerConfig is the full set of configuration keys read from disk.
// Every field mirrors one property of schemas/config.schema.json.
type ServerConfig struct {
	// Addr is the listen address for the diagnostics HTTP server.
	Addr string `json:"addr"`
	// ManifestPath is a local path or s3:// URI the expected-hash
	// manifest is loaded from.
	ManifestPath string `json:"manifest-path"`
	// ManifestReloadIntervalSeconds is how often the manifest is
	// re-loaded from ManifestPath; 0 disables periodic reload.
	ManifestReloadIntervalSeconds int `json:"manifest-reload-interval-seconds"`
	// User is the user to drop privileges to after binding listen
	// sockets.
	User string `json:"user"`
	// Group is the group to drop privileges to after binding listen
	// sockets.
	Group string `json:"group"`
	// LogLevel is one of debug, info, warn, error, crit.
	LogLevel string `json:"log-level"`
	// AuditDB is the path to the sqlite database audit events are
	// recorded to.
	AuditDB string `json:"audit-db"`
	// SeverityPolicy holds optional expr-lang expressions overriding the
	// default result-to-severity mapping, keyed by result name.
	SeverityPolicy map[string]string `json:"severity-policy"`
}

// Keys holds the configuration currently in effect. It is populated by
// Init and is safe to read (but not to write) once Init has returned.
var Keys = ServerConfig{
	Addr:                          ":8090",
	ManifestReloadIntervalSeconds: 300,
	LogLevel:                      "info",
	AuditDB:                       "./handshaked-audit.db",
}

// Init reads and validates the configuration file at flagConfigFile,
// overwriting Keys with its contents. A missing file is not an error:
// the defaults above remain in effect, matching the behaviour expected
// of a server that should still start with a reasonable configuration
// out of the box.
func Init(flagConfigFile string) error {
	raw, err := os.ReadFile(flagConfigFile)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warnf("config: %s does not exist, using defaults", flagConfigFile)
			return nil
		}
		return err
	}

	if err := schema.Validate(schema.Config, bytes.NewReader(raw)); err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&Keys); err != nil {
		return err
	}

	return nil
}
