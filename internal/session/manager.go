package session

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/joestump/blockprompt/internal/block"
	"github.com/joestump/blockprompt/internal/metrics"
)

// Manager keeps editing sessions in memory, keyed by id.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewManager() *Manager {
	return &Manager{sessions: map[string]*Session{}, now: time.Now}
}

// Create starts a session holding a copy of blocks.
func (m *Manager) Create(templateID, model string, blocks []block.Instance) *Session {
	s := newSession(templateID, model, blocks, m.now)
	m.mu.Lock()
	m.sessions[s.ID] = s
	n := len(m.sessions)
	m.mu.Unlock()
	metrics.SessionsActive.Set(float64(n))
	return s
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, ErrNotFound)
	}
	return s, nil
}

// Delete ends a session. Generations still in flight for it are discarded.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	n := len(m.sessions)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %q: %w", id, ErrNotFound)
	}
	s.close()
	metrics.SessionsActive.Set(float64(n))
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep ends sessions idle for longer than idle. Sessions with blocks
// pending are kept. Returns the number of sessions removed.
func (m *Manager) Sweep(idle time.Duration) int {
	cutoff := m.now().Add(-idle)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.busy() || s.idleSince().After(cutoff) {
			continue
		}
		expired = append(expired, s)
		delete(m.sessions, id)
	}
	n := len(m.sessions)
	m.mu.Unlock()

	for _, s := range expired {
		s.close()
	}
	metrics.SessionsActive.Set(float64(n))
	return len(expired)
}

// StartSweeper runs Sweep on the given cron schedule until the returned
// stop function is called.
func (m *Manager) StartSweeper(schedule string, idle time.Duration) (func(), error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if n := m.Sweep(idle); n > 0 {
			log.Printf("session: swept %d idle sessions", n)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("session sweep schedule %q: %w", schedule, err)
	}
	c.Start()
	return func() { <-c.Stop().Done() }, nil
}
