// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package store

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// RealityWatcher hot-reloads the reality table when the backing file
// changes. A malformed rewrite is logged and the previous table is
// kept, so a bad edit never degrades a running service.
type RealityWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	store   *Store
}

// NewRealityWatcher watches the directory containing path. Watching
// the directory rather than the file survives editors and config
// tools that replace the file via rename.
func NewRealityWatcher(path string, st *Store) (*RealityWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	return &RealityWatcher{watcher: w, path: path, store: st}, nil
}

// Run processes events until ctx is cancelled or the watcher closes.
func (rw *RealityWatcher) Run(ctx context.Context) {
	defer rw.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-rw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(rw.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			rw.reload()
		case err, ok := <-rw.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Reality watcher error", "error", err)
		}
	}
}

func (rw *RealityWatcher) reload() {
	refs, err := LoadReferences(rw.path)
	if err != nil {
		slog.Warn("Reality reload failed, keeping previous table", "path", rw.path, "error", err)
		return
	}
	rw.store.ReplaceReality(refs)
	slog.Info("Reality table reloaded", "path", rw.path, "count", len(refs))
}
