package session

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Manager tracks when each session was last seen and sweeps idle sessions
// after the configured TTL. Stores register cleanup callbacks so that an
// expired session's cart, likes, comments and view state all disappear
// together. Session state is process-local; a restart ends every session.
type Manager struct {
	mu       sync.Mutex
	lastSeen map[string]time.Time
	ttl      time.Duration
	onExpire []func(sessionID string)
	logger   *zap.Logger
	stop     chan struct{}
	stopOnce sync.Once
}

// NewManager creates a session manager with the given idle TTL.
func NewManager(ttl time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		lastSeen: make(map[string]time.Time),
		ttl:      ttl,
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

// Touch records activity for a session, creating it on first sight.
func (m *Manager) Touch(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSeen[sessionID] = time.Now()
}

// OnExpire registers a cleanup callback invoked for every swept session.
// Callbacks must be registered before Start.
func (m *Manager) OnExpire(fn func(sessionID string)) {
	m.onExpire = append(m.onExpire, fn)
}

// Start launches the sweep loop. It runs until Stop is called.
func (m *Manager) Start() {
	interval := m.ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.sweep()
			case <-m.stop:
				return
			}
		}
	}()
}

// Stop terminates the sweep loop.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *Manager) sweep() {
	cutoff := time.Now().Add(-m.ttl)

	m.mu.Lock()
	var expired []string
	for id, seen := range m.lastSeen {
		if seen.Before(cutoff) {
			expired = append(expired, id)
			delete(m.lastSeen, id)
		}
	}
	m.mu.Unlock()

	for _, id := range expired {
		for _, fn := range m.onExpire {
			fn(id)
		}
	}

	if len(expired) > 0 {
		m.logger.Info("Swept idle sessions", zap.Int("count", len(expired)))
	}
}
