// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package diagserver exposes a small HTTP surface alongside the
// handshake listener: a health check, the prometheus scrape endpoint,
// and a human-readable summary of the manifest currently loaded.
package diagserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/openbc-project/handshaked/internal/checksum"
	"github.com/openbc-project/handshaked/internal/manifest"
	"github.com/openbc-project/handshaked/pkg/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ManifestProvider returns the manifest currently in effect. It is an
// interface rather than a *manifest.Manifest field so the server always
// reflects the latest hot-reloaded manifest without needing to be
// rewired on every reload.
type ManifestProvider interface {
	Current() *manifest.Manifest
}

// Server is the diagnostics HTTP server.
type Server struct {
	httpServer *http.Server
	manifests  ManifestProvider
}

// New builds a diagnostics server listening on addr. It does not start
// listening until ListenAndServe is called.
func New(addr string, manifests ManifestProvider) *Server {
	s := &Server{manifests: manifests}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/manifest/summary", s.handleManifestSummary).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           handlers.CombinedLoggingHandler(log.ErrWriter, r),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// ListenAndServe starts the server; it blocks until the server stops or
// errors, matching the net/http.Server contract.
func (s *Server) ListenAndServe() error {
	log.Infof("diagserver: listening on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.httpServer.Shutdown(context.Background())
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	m := s.manifests.Current()
	if m == nil {
		http.Error(w, "manifest not loaded", http.StatusServiceUnavailable)
		return
	}
	if !checksum.VerifyTables() {
		http.Error(w, "substitution tables failed self-check", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type directorySummary struct {
	DirNameHash string `json:"dir_name_hash"`
	Recursive   bool   `json:"recursive"`
	FileCount   int    `json:"file_count"`
	SubdirCount int    `json:"subdir_count"`
}

type manifestSummary struct {
	VersionHash string             `json:"version_hash"`
	Directories []directorySummary `json:"directories"`
}

func (s *Server) handleManifestSummary(w http.ResponseWriter, r *http.Request) {
	m := s.manifests.Current()
	if m == nil {
		http.Error(w, "manifest not loaded", http.StatusServiceUnavailable)
		return
	}

	summary := manifestSummary{VersionHash: hex32(m.VersionHash)}
	for _, d := range m.Directories {
		summary.Directories = append(summary.Directories, directorySummary{
			DirNameHash: hex32(d.DirNameHash),
			Recursive:   d.Recursive,
			FileCount:   len(d.Files),
			SubdirCount: len(d.Subdirs),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(summary); err != nil {
		log.Errorf("diagserver: encoding manifest summary: %v", err)
	}
}

func hex32(v uint32) string {
	const hextable = "0123456789abcdef"
	out := make([]byte, 8)
	for i := 0; i < 8; i++ {
		shift := uint(28 - i*4)
		out[i] = hextable[(v>>shift)&0xF]
	}
	return string(out)
}
