// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package session

import (
	"fmt"
	"sync"
	"testing"
)

func TestGetOrCreateReturnsSameThread(t *testing.T) {
	m := NewManager("sys")
	a := m.GetOrCreate("alice")
	b := m.GetOrCreate("alice")
	if a != b {
		t.Error("same session id must return the same thread")
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	m := NewManager("sys")
	a := m.GetOrCreate("alice")
	b := m.GetOrCreate("bob")
	if a == b {
		t.Fatal("distinct session ids must get distinct threads")
	}
	a.Append("q1", "a1")
	if b.Len() != 1 {
		t.Errorf("appending to one session leaked into another: len=%d", b.Len())
	}
}

func TestResetIsIdempotent(t *testing.T) {
	m := NewManager("sys")
	th := m.GetOrCreate("alice")
	th.Append("q", "a")

	m.Reset("alice")
	m.Reset("alice")
	m.Reset("never-existed")

	fresh := m.GetOrCreate("alice")
	if fresh == th {
		t.Error("reset must discard the old thread")
	}
	if fresh.Len() != 1 {
		t.Errorf("thread after reset should only hold the system prompt, len=%d", fresh.Len())
	}
}

func TestConcurrentCreateSingleThreadPerKey(t *testing.T) {
	m := NewManager("sys")
	const workers = 64
	threads := make([]any, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			threads[i] = m.GetOrCreate("shared")
		}(i)
	}
	wg.Wait()
	for i := 1; i < workers; i++ {
		if threads[i] != threads[0] {
			t.Fatal("concurrent creates for one id must converge on one thread")
		}
	}
	if m.Count() != 1 {
		t.Errorf("expected 1 session, got %d", m.Count())
	}
}

func TestConcurrentDistinctSessions(t *testing.T) {
	m := NewManager("sys")
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.GetOrCreate(fmt.Sprintf("session-%d", i))
		}(i)
	}
	wg.Wait()
	if m.Count() != 32 {
		t.Errorf("expected 32 sessions, got %d", m.Count())
	}
}
