// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package reload keeps a running server's manifest current: it watches
// the manifest's source path for changes when that source is a local
// file, and separately re-runs a periodic self-check of the checksum
// substitution tables so a corrupted binary is caught even when nothing
// ever touches the manifest file.
package reload

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	gocron "github.com/go-co-op/gocron/v2"
	"github.com/openbc-project/handshaked/internal/checksum"
	"github.com/openbc-project/handshaked/internal/manifest"
	"github.com/openbc-project/handshaked/internal/metrics"
	"github.com/openbc-project/handshaked/pkg/log"
)

// Loader fetches the current manifest from wherever it is configured to
// live. manifestsource.Load satisfies this signature.
type Loader func(ctx context.Context, location string) (*manifest.Manifest, error)

// Manager holds the manifest currently in effect and keeps it up to
// date. It satisfies diagserver.ManifestProvider.
type Manager struct {
	location string
	load     Loader

	current atomic.Pointer[manifest.Manifest]

	watcher   *fsnotify.Watcher
	scheduler gocron.Scheduler

	mu      sync.Mutex
	onError func(error)
}

// NewManager creates a Manager that loads from location using load. The
// initial manifest is fetched synchronously so callers can fail startup
// immediately on a bad manifest rather than discovering it later.
func NewManager(ctx context.Context, location string, load Loader) (*Manager, error) {
	m := &Manager{location: location, load: load, onError: func(err error) {
		log.Errorf("reload: %v", err)
	}}

	initial, err := load(ctx, location)
	if err != nil {
		return nil, err
	}
	m.current.Store(initial)

	return m, nil
}

// Current returns the manifest currently in effect. Safe for concurrent
// use from any number of handshake goroutines.
func (m *Manager) Current() *manifest.Manifest {
	return m.current.Load()
}

// WatchFile starts watching location for filesystem change events and
// reloads the manifest whenever one arrives. It is a no-op (with a
// logged notice) when location is not a local path, since fsnotify has
// nothing to watch for a remote manifest source.
func (m *Manager) WatchFile(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(m.location); err != nil {
		w.Close()
		log.Warnf("reload: not watching %q for changes: %s", m.location, err)
		return nil
	}
	m.watcher = w

	go m.watchLoop(ctx, w)
	return nil
}

func (m *Manager) watchLoop(ctx context.Context, w *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			m.onError(err)
		case e, ok := <-w.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			log.Infof("reload: manifest source changed (%s), reloading", e)
			m.reloadOnce(ctx)
		}
	}
}

// StartPeriodicSelfCheck schedules a recurring job that re-verifies the
// checksum substitution tables and re-loads the manifest on the given
// interval, as a backstop for deployments where the manifest source
// cannot be watched (e.g. S3).
func (m *Manager) StartPeriodicSelfCheck(ctx context.Context, every gocron.JobDefinition) error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = s.NewJob(every, gocron.NewTask(func() {
		if !checksum.VerifyTables() {
			m.onError(errTablesCorrupted)
			return
		}
		m.reloadOnce(ctx)
	}))
	if err != nil {
		return err
	}

	m.scheduler = s
	s.Start()
	return nil
}

func (m *Manager) reloadOnce(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, err := m.load(ctx, m.location)
	metrics.ObserveManifestReload(err)
	if err != nil {
		m.onError(err)
		return
	}
	m.current.Store(next)
}

// Close stops the file watcher and scheduler, if either was started.
func (m *Manager) Close() error {
	if m.watcher != nil {
		m.watcher.Close()
	}
	if m.scheduler != nil {
		return m.scheduler.Shutdown()
	}
	return nil
}

var errTablesCorrupted = tablesCorruptedError{}

type tablesCorruptedError struct{}

func (tablesCorruptedError) Error() string {
	return "reload: checksum substitution tables failed self-verification"
}
