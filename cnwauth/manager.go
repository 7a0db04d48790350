package cnwauth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// CoreController stops the dependent core process (the VPN engine) when the
// license becomes invalid.
type CoreController interface {
	Stop(ctx context.Context) error
}

// ProxyController clears system proxy state when the license becomes invalid.
type ProxyController interface {
	Clear(ctx context.Context) error
}

// Publisher notifies the surrounding application of auth state changes.
// See the events subpackage for a Watermill-backed implementation.
type Publisher interface {
	PublishLogoutRequested(ctx context.Context) error
	PublishUserMessage(ctx context.Context, text string) error
}

// Manager is the top-level orchestrator: it drives the login flow, periodic
// revalidation, and the teardown sequence when the server rejects the
// session.
type Manager struct {
	client       *OnlineClient
	sessions     *SessionStore
	fingerprints *Fingerprinter
	core         CoreController
	proxy        ProxyController
	publisher    Publisher
	log          zerolog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithOnlineClient sets the protocol client. Required.
func WithOnlineClient(c *OnlineClient) ManagerOption {
	return func(m *Manager) {
		m.client = c
	}
}

// WithSessionStore sets the session store. Required.
func WithSessionStore(s *SessionStore) ManagerOption {
	return func(m *Manager) {
		m.sessions = s
	}
}

// WithFingerprinter sets the fingerprint generator used by DeviceID.
func WithFingerprinter(f *Fingerprinter) ManagerOption {
	return func(m *Manager) {
		m.fingerprints = f
	}
}

// WithCoreController sets the VPN/core process controller invoked on
// teardown.
func WithCoreController(c CoreController) ManagerOption {
	return func(m *Manager) {
		m.core = c
	}
}

// WithProxyController sets the system proxy controller invoked on teardown.
func WithProxyController(p ProxyController) ManagerOption {
	return func(m *Manager) {
		m.proxy = p
	}
}

// WithPublisher sets the event publisher notified on teardown.
func WithPublisher(p Publisher) ManagerOption {
	return func(m *Manager) {
		m.publisher = p
	}
}

// WithManagerLogger sets the logger for flow and teardown diagnostics.
func WithManagerLogger(log zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = log
	}
}

// NewManager creates a Manager. Collaborators that were not configured are
// simply skipped where they would be invoked.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(m)
	}
	if m.fingerprints == nil {
		m.fingerprints = NewFingerprinter(WithFingerprintLogger(m.log))
	}
	return m
}

// DeviceID returns the cached hardware fingerprint for this machine.
func (m *Manager) DeviceID(ctx context.Context) string {
	return m.fingerprints.DeviceFingerprint(ctx)
}

// IsLoggedIn reports whether a session is currently held.
func (m *Manager) IsLoggedIn() bool {
	return m.sessions != nil && m.sessions.IsLoggedIn()
}

// DisplayName returns the display name of the current session, or "".
func (m *Manager) DisplayName() string {
	if m.sessions == nil {
		return ""
	}
	return m.sessions.DisplayName()
}

// Login validates a freshly entered license key and, on success, persists
// the session. Empty input is rejected locally with ErrEmptyCredential and
// never reaches the network. Any outcome other than success leaves the
// session cleared; the result's Message is usable for display either way.
func (m *Manager) Login(ctx context.Context, credential string) (*LoginResult, error) {
	if m.client == nil || m.sessions == nil {
		return nil, fmt.Errorf("online client and session store are required for Login")
	}
	if strings.TrimSpace(credential) == "" {
		return nil, ErrEmptyCredential
	}

	res := m.client.Login(ctx, credential)
	if res.Outcome != OutcomeValid {
		m.sessions.Clear()
		return res, res.Err
	}

	m.sessions.save(credential, res.DisplayName)
	m.log.Info().Str("name", res.DisplayName).Msg("login succeeded")
	return res, nil
}

// Logout clears the session. Idempotent.
func (m *Manager) Logout(_ context.Context) {
	if m.sessions == nil {
		return
	}
	m.sessions.Clear()
	m.log.Info().Msg("logged out")
}

// RevalidateOnce re-checks the stored credential against the server. Skipped
// entirely when no session is held. On an explicit rejection it runs the
// teardown sequence; on an inconclusive answer it leaves the session alone.
func (m *Manager) RevalidateOnce(ctx context.Context) Outcome {
	if m.sessions == nil || !m.sessions.IsLoggedIn() {
		m.log.Debug().Msg("no session, skipping revalidation")
		return OutcomeIndeterminate
	}

	outcome, resp := m.client.Validate(ctx, m.sessions.Credential())
	switch outcome {
	case OutcomeValid:
		if name := resp.Name(); name != "" {
			m.sessions.UpdateDisplayName(name)
		}
		m.log.Debug().Msg("revalidation passed")
	case OutcomeInvalid:
		m.log.Warn().Msg("revalidation failed, tearing down session")
		m.teardown(ctx)
	default:
		m.log.Info().Msg("revalidation inconclusive, keeping session")
	}
	return outcome
}

// teardown runs the corrective sequence for an invalidated license, in fixed
// order: stop the core, clear the system proxy, clear the session, publish
// the logout event, publish the user message. A failing step is logged and
// never prevents the steps after it.
func (m *Manager) teardown(ctx context.Context) {
	if m.core != nil {
		if err := m.core.Stop(ctx); err != nil {
			m.log.Error().Err(err).Msg("stop core process")
		}
	}
	if m.proxy != nil {
		if err := m.proxy.Clear(ctx); err != nil {
			m.log.Error().Err(err).Msg("clear system proxy")
		}
	}
	m.sessions.Clear()
	if m.publisher != nil {
		if err := m.publisher.PublishLogoutRequested(ctx); err != nil {
			m.log.Error().Err(err).Msg("publish logout event")
		}
		if err := m.publisher.PublishUserMessage(ctx, MsgAuthExpired); err != nil {
			m.log.Error().Err(err).Msg("publish user message")
		}
	}
}

// RegisterTasks wires the standard periodic tasks into a Scheduler:
// revalidation, session persistence, and expired temp-file pruning (only
// when cfg.TempDir is set).
func (m *Manager) RegisterTasks(s *Scheduler, cfg Config) {
	s.AddTask("auth-revalidate", cfg.RevalidateInterval, func(ctx context.Context) error {
		m.RevalidateOnce(ctx)
		return nil
	})
	s.AddTask("persist-session", cfg.PersistInterval, func(ctx context.Context) error {
		m.sessions.Persist()
		return nil
	})
	if cfg.TempDir != "" {
		s.AddTask("prune-temp-files", cfg.PruneInterval, func(ctx context.Context) error {
			DeleteExpiredFiles(cfg.TempDir, time.Now().Add(-cfg.PruneMaxAge), m.log)
			return nil
		})
	}
}
