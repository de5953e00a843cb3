package usecase

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/arklim/riskdash-client/internal/core/domain"
	"github.com/arklim/riskdash-client/internal/core/port"
	"github.com/arklim/riskdash-client/internal/state"
)

// Telemetry receives operational counters from the coordinators. The
// concrete implementation lives in infra/telemetry; a nil value disables
// instrumentation.
type Telemetry interface {
	ObserveSessionCheck(result string)
	ObserveSessionCheckSuppressed()
	ObservePoll(result string)
	ObservePollSuppressed()
	ObserveAlert(priority string)
	SetUnread(count int)
}

type nopTelemetry struct{}

func (nopTelemetry) ObserveSessionCheck(string)     {}
func (nopTelemetry) ObserveSessionCheckSuppressed() {}
func (nopTelemetry) ObservePoll(string)             {}
func (nopTelemetry) ObservePollSuppressed()         {}
func (nopTelemetry) ObserveAlert(string)            {}
func (nopTelemetry) SetUnread(int)                  {}

// SessionCoordinator drives the session lifecycle: it performs the single
// network round trip that establishes identity, enforces the
// at-most-one-in-flight check, and orchestrates the ordered logout teardown.
// It is the only writer of the SessionStore.
type SessionCoordinator struct {
	sessions      *state.SessionStore
	notifications *state.NotificationStore
	api           port.SessionAPI
	cache         port.DataCache
	tel           Telemetry
	logger        *zap.Logger

	// checking is the in-flight latch for CheckSession. It is never
	// exposed; release happens in a deferred block so a panicking or
	// failing check can not leave the UI stuck on a loading screen.
	checking atomic.Bool
}

// NewSessionCoordinator constructs a SessionCoordinator.
func NewSessionCoordinator(sessions *state.SessionStore, notifications *state.NotificationStore, api port.SessionAPI, cache port.DataCache, logger *zap.Logger) *SessionCoordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionCoordinator{
		sessions:      sessions,
		notifications: notifications,
		api:           api,
		cache:         cache,
		tel:           nopTelemetry{},
		logger:        logger,
	}
}

// WithTelemetry injects metric collectors.
func (c *SessionCoordinator) WithTelemetry(tel Telemetry) *SessionCoordinator {
	if tel != nil {
		c.tel = tel
	}
	return c
}

// CheckSession asks the backend who is currently authenticated and settles
// the store accordingly. Overlapping calls are collapsed: while a check is
// in flight every further call returns immediately, so N views mounting at
// once still produce exactly one backend round trip.
//
// The contract is fail-closed: any failure to confirm identity, from a
// network error to a malformed response, lands in the anonymous state and is
// never surfaced as a distinct error. Whatever happens, the store ends up
// with loading=false and initialized=true.
func (c *SessionCoordinator) CheckSession(ctx context.Context) {
	if !c.checking.CompareAndSwap(false, true) {
		c.tel.ObserveSessionCheckSuppressed()
		c.logger.Debug("session check already in flight, skipping")
		return
	}
	defer func() {
		c.sessions.SetLoading(false)
		c.sessions.SetInitialized()
		c.checking.Store(false)
	}()

	c.sessions.SetLoading(true)

	identity, err := c.api.CurrentIdentity(ctx)
	if err != nil || identity == nil {
		if err != nil {
			c.logger.Debug("session check failed, treating as anonymous", zap.Error(err))
		}
		c.sessions.SetIdentity(nil)
		c.tel.ObserveSessionCheck("anonymous")
		return
	}

	c.sessions.SetIdentity(identity)
	c.tel.ObserveSessionCheck("authenticated")
	c.logger.Info("session established",
		zap.String("user_id", identity.ID),
		zap.String("role", string(identity.Role)),
	)
}

// Login authenticates with the backend and, on success, installs the
// returned identity. Login failures are the one session error callers do
// observe, since the user explicitly asked for the operation.
func (c *SessionCoordinator) Login(ctx context.Context, creds domain.Credentials) (*domain.Identity, error) {
	identity, err := c.api.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	c.sessions.SetIdentity(identity)
	c.logger.Info("login succeeded", zap.String("user_id", identity.ID))
	return identity, nil
}

// Register creates an account and installs the returned identity.
func (c *SessionCoordinator) Register(ctx context.Context, reg domain.Registration) (*domain.Identity, error) {
	identity, err := c.api.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	c.sessions.SetIdentity(identity)
	c.logger.Info("registration succeeded", zap.String("user_id", identity.ID))
	return identity, nil
}

// Logout tears the session down in order: revoke the remote session
// (best-effort), clear local session state, clear local notifications,
// invalidate cached server data, release the loading flag. The network call
// is the only step allowed to fail; local teardown always completes, so the
// UI never shows a logged-in user whose server session is already gone.
func (c *SessionCoordinator) Logout(ctx context.Context) {
	c.sessions.SetLoading(true)

	if err := c.api.Logout(ctx); err != nil {
		c.logger.Warn("remote logout failed, proceeding with local teardown", zap.Error(err))
	}

	c.sessions.Reset()
	if c.notifications != nil {
		c.notifications.Clear()
	}
	c.tel.SetUnread(0)
	if c.cache != nil {
		if err := c.cache.InvalidateAll(ctx); err != nil {
			c.logger.Warn("cache invalidation failed", zap.Error(err))
		}
	}
	c.sessions.SetLoading(false)

	c.logger.Info("logout complete")
}

// HandleUnauthorized reacts to an asynchronous unauthorized signal raised by
// any outbound request, for example an expired session discovered
// mid-navigation. It resets the session store immediately and locally; no
// network round trip is made or waited for.
func (c *SessionCoordinator) HandleUnauthorized() {
	snap := c.sessions.Snapshot()
	if snap.Authenticated {
		c.logger.Info("unauthorized signal received, dropping session")
	}
	c.sessions.Reset()
}
