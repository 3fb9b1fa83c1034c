package connectors

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sqlgate/sqlgate/core/config"
	"github.com/sqlgate/sqlgate/core/infrastructure/logging"
	sharederrors "github.com/sqlgate/sqlgate/core/shared/errors"
)

// Health is the probe result for one profile
type Health struct {
	Connected bool
	Healthy   bool
	LastError error
}

// sessionSlot owns at most one live connector. Its mutex serializes
// acquisition so concurrent requests never race-create duplicate
// sessions for the same key.
type sessionSlot struct {
	mu   sync.Mutex
	conn Connector
}

// Manager owns the live sessions, one per (profile, database) key.
// Acquisition is serialized per slot; requests against different
// profiles share no lock beyond the map lookup.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*sessionSlot
	dial     func(profile *config.Profile, database string) (Connector, error)
}

// NewManager creates an empty session manager
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*sessionSlot),
		dial:     NewConnector,
	}
}

func sessionKey(profile *config.Profile, database string) string {
	if database == "" {
		database = profile.DefaultDatabase
	}
	return profile.Name + "/" + database
}

func (m *Manager) slot(key string) *sessionSlot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[key]
	if !ok {
		s = &sessionSlot{}
		m.sessions[key] = s
	}
	return s
}

// Acquire returns a usable session for the profile, establishing one on
// first use and reusing it thereafter. A single immediate connect
// attempt is made; on failure the slot stays empty so the next call
// retries.
func (m *Manager) Acquire(ctx context.Context, profile *config.Profile, database string) (Connector, error) {
	slot := m.slot(sessionKey(profile, database))

	slot.mu.Lock()
	defer slot.mu.Unlock()

	if slot.conn != nil {
		return slot.conn, nil
	}

	conn, err := m.dial(profile, database)
	if err != nil {
		return nil, sharederrors.WrapError(
			sharederrors.ErrCodeConnectionFailed,
			"failed to connect to server profile '"+profile.Name+"'",
			err,
		)
	}

	slot.conn = conn
	return conn, nil
}

// Discard tears down the session for the key so the next Acquire
// reconnects. Used when a session errored mid-query and may be poisoned.
func (m *Manager) Discard(profile *config.Profile, database string) {
	log := logging.New("connectors")
	slot := m.slot(sessionKey(profile, database))

	slot.mu.Lock()
	defer slot.mu.Unlock()

	if slot.conn != nil {
		log.Warnf("Discarding session for profile '%s'", profile.Name)
		if err := slot.conn.Close(); err != nil {
			log.Debugf("Error closing discarded session: %v", err)
		}
		slot.conn = nil
	}
}

// HealthCheck probes the profile's default-database session with a
// lightweight round-trip. A session that fails the probe is discarded so
// the next Acquire reconnects.
func (m *Manager) HealthCheck(ctx context.Context, profile *config.Profile) Health {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	conn, err := m.Acquire(probeCtx, profile, "")
	if err != nil {
		return Health{Connected: false, Healthy: false, LastError: err}
	}

	if err := conn.Ping(probeCtx); err != nil {
		m.Discard(profile, "")
		return Health{Connected: true, Healthy: false, LastError: err}
	}

	return Health{Connected: true, Healthy: true}
}

// WarmUp eagerly connects all profiles in parallel. Unreachable backends
// are logged and skipped, not fatal: the health check is the retry
// mechanism for later requests.
func (m *Manager) WarmUp(ctx context.Context, profiles []*config.Profile) {
	if len(profiles) == 0 {
		return
	}

	log := logging.New("connectors")
	log.Infof("Warming up %d profile(s)", len(profiles))

	g, gctx := errgroup.WithContext(ctx)
	for _, profile := range profiles {
		profile := profile
		g.Go(func() error {
			if _, err := m.Acquire(gctx, profile, ""); err != nil {
				log.Warnf("Profile '%s' unreachable at startup: %v", profile.Name, err)
				return nil
			}
			log.Infof("Profile '%s' connected", profile.Name)
			return nil
		})
	}
	g.Wait()
}

// CloseAll closes all sessions in parallel, collecting and returning all
// errors.
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*sessionSlot)
	m.mu.Unlock()

	if len(sessions) == 0 {
		return nil
	}

	log := logging.New("connectors")
	log.Debugf("Closing %d session(s)...", len(sessions))

	var wg sync.WaitGroup
	errChan := make(chan error, len(sessions))

	for key, slot := range sessions {
		wg.Add(1)
		go func(key string, slot *sessionSlot) {
			defer wg.Done()
			slot.mu.Lock()
			defer slot.mu.Unlock()
			if slot.conn == nil {
				return
			}
			if err := slot.conn.Close(); err != nil {
				errChan <- err
			} else {
				log.Debugf("  Session '%s' closed", key)
			}
			slot.conn = nil
		}(key, slot)
	}

	wg.Wait()
	close(errChan)

	return collectErrors(errChan)
}

// Count returns the number of tracked session slots
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// collectErrors collects all errors from a channel and combines them
func collectErrors(errChan <-chan error) error {
	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return errors.Join(errs...)
}
