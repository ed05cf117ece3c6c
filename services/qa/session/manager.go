// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package session maps caller-chosen session ids to conversation
// threads. Sessions are ephemeral: they live in memory, have no
// expiry policy, and disappear on restart or reset.
package session

import (
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/AleutianAI/groundline/services/llm"
)

// Manager owns the session id -> thread table.
//
// Creation is serialized per key through singleflight so two
// concurrent first requests for the same id share one thread, while
// unrelated sessions never contend on a creation lock.
type Manager struct {
	systemPrompt string

	mu      sync.RWMutex
	threads map[string]*llm.Thread
	group   singleflight.Group
}

// NewManager builds a manager whose threads are seeded with
// systemPrompt.
func NewManager(systemPrompt string) *Manager {
	return &Manager{
		systemPrompt: systemPrompt,
		threads:      make(map[string]*llm.Thread),
	}
}

// GetOrCreate returns the thread for sessionID, creating it on first
// use. Every caller with the same id gets the same thread.
func (m *Manager) GetOrCreate(sessionID string) *llm.Thread {
	m.mu.RLock()
	th, ok := m.threads[sessionID]
	m.mu.RUnlock()
	if ok {
		return th
	}

	v, _, _ := m.group.Do(sessionID, func() (any, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if th, ok := m.threads[sessionID]; ok {
			return th, nil
		}
		th := llm.NewThread(m.systemPrompt)
		m.threads[sessionID] = th
		slog.Debug("Created session thread", "session_id", sessionID)
		return th, nil
	})
	return v.(*llm.Thread)
}

// Reset discards the thread for sessionID. Unknown ids are a no-op,
// so reset is idempotent and safe to retry.
func (m *Manager) Reset(sessionID string) {
	m.mu.Lock()
	_, existed := m.threads[sessionID]
	delete(m.threads, sessionID)
	m.mu.Unlock()
	if existed {
		slog.Info("Session reset", "session_id", sessionID)
	}
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.threads)
}
