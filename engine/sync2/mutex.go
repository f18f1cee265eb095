// Package sync2 provides the concurrency primitives wrapper (C8): a scoped
// lock, a 1-slot overwrite queue, and an ISR-to-task signal (notifications
// coalesce into one pending wakeup; no count is kept), all
// defined purely in terms of goroutines, channels and sync.Mutex — standing
// in for the real-time executive's mutex/queue/signal primitives named in
// spec §4.8.
package sync2

import "sync"

// Mutex wraps sync.Mutex with a scoped-acquisition helper that guarantees
// release on every exit path, including a panicking caller (C8's "scoped
// lock with guaranteed release").
type Mutex struct {
	mu sync.Mutex
}

// Guard acquires the lock and returns the matching release function.
// Callers defer the release immediately:
//
//	release := m.Guard()
//	defer release()
func (m *Mutex) Guard() (release func()) {
	m.mu.Lock()
	return m.mu.Unlock
}
