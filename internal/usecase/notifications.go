package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/riskdash-client/internal/core/domain"
	"github.com/arklim/riskdash-client/internal/core/port"
	"github.com/arklim/riskdash-client/internal/state"
)

// DefaultPollInterval matches the cadence the dashboard polls the backend at.
const DefaultPollInterval = 10 * time.Second

// NotificationSyncEngine keeps the notification store synchronized with the
// backend. It polls on a fixed interval while a session is authenticated,
// detects newly arrived records against the previous snapshot, and raises
// transient alerts for unread high and medium priority arrivals. It is the
// only writer of the NotificationStore.
type NotificationSyncEngine struct {
	store    *state.NotificationStore
	sessions *state.SessionStore
	api      port.NotificationAPI
	alerter  port.Alerter
	tel      Telemetry
	logger   *zap.Logger
	interval time.Duration

	// polling is the in-flight latch: a slow poll and a timer-triggered
	// poll must never interleave store writes.
	polling atomic.Bool

	// mu guards the new-item detection state below. firstFetch suppresses
	// alerts on the first successful poll so page load does not replay
	// history; it is consumed then even if the poll returned nothing.
	mu         sync.Mutex
	prevIDs    map[string]struct{}
	firstFetch bool
}

// NewNotificationSyncEngine constructs an engine with the default interval.
func NewNotificationSyncEngine(store *state.NotificationStore, sessions *state.SessionStore, api port.NotificationAPI, alerter port.Alerter, logger *zap.Logger) *NotificationSyncEngine {
	if alerter == nil {
		alerter = port.NopAlerter{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationSyncEngine{
		store:      store,
		sessions:   sessions,
		api:        api,
		alerter:    alerter,
		tel:        nopTelemetry{},
		logger:     logger,
		interval:   DefaultPollInterval,
		prevIDs:    make(map[string]struct{}),
		firstFetch: true,
	}
}

// WithInterval overrides the polling cadence.
func (e *NotificationSyncEngine) WithInterval(interval time.Duration) *NotificationSyncEngine {
	if interval > 0 {
		e.interval = interval
	}
	return e
}

// WithTelemetry injects metric collectors.
func (e *NotificationSyncEngine) WithTelemetry(tel Telemetry) *NotificationSyncEngine {
	if tel != nil {
		e.tel = tel
	}
	return e
}

// Poll fetches the full notification list once and reconciles the store.
// Overlapping calls are collapsed by the in-flight latch. Failures are
// logged and swallowed: the previous snapshot stays intact, and the next
// tick retries. Polling runs unattended, so nothing propagates to callers.
func (e *NotificationSyncEngine) Poll(ctx context.Context) {
	if !e.polling.CompareAndSwap(false, true) {
		e.tel.ObservePollSuppressed()
		return
	}
	defer e.polling.Store(false)

	list, err := e.api.List(ctx)
	if err != nil {
		e.logger.Warn("notification poll failed", zap.Error(err))
		e.tel.ObservePoll("failure")
		return
	}

	e.mu.Lock()
	first := e.firstFetch
	e.firstFetch = false
	prev := e.prevIDs
	e.mu.Unlock()

	if !first {
		for _, n := range list.Notifications {
			if _, seen := prev[n.ID]; seen || n.Read {
				continue
			}
			switch n.Priority {
			case domain.NotificationPriorityHigh:
				e.alerter.Urgent(n.Title, n.Message)
				e.tel.ObserveAlert("high")
			case domain.NotificationPriorityMedium:
				e.alerter.Notice(n.Title, n.Message)
				e.tel.ObserveAlert("medium")
			}
		}
	}

	e.store.ReplaceAll(list.Notifications, list.UnreadCount)
	e.tel.SetUnread(e.store.Snapshot().UnreadCount)
	e.tel.ObservePoll("success")

	// The previous-ID set is replaced even when the result was empty or
	// the store update was a no-op; skipping it would make already-seen
	// IDs look new again on a later poll.
	ids := make(map[string]struct{}, len(list.Notifications))
	for _, n := range list.Notifications {
		ids[n.ID] = struct{}{}
	}
	e.mu.Lock()
	e.prevIDs = ids
	e.mu.Unlock()
}

// Fetch refreshes the notification list on demand, outside the timer.
func (e *NotificationSyncEngine) Fetch(ctx context.Context) {
	e.Poll(ctx)
}

// Run polls immediately and then on every tick until the context is
// cancelled or authentication is lost. The authenticated flag is re-read at
// fire time, not only at schedule time, so a revoked session stops the loop
// even when cancellation lags behind.
func (e *NotificationSyncEngine) Run(ctx context.Context) {
	if !e.sessions.Snapshot().Authenticated {
		return
	}
	e.Poll(ctx)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !e.sessions.Snapshot().Authenticated {
				return
			}
			e.Poll(ctx)
		}
	}
}

// Watch ties the polling loop to the session lifecycle: it subscribes to the
// session store, starts a polling goroutine whenever authentication appears,
// and cancels it when authentication disappears. The returned function
// detaches the watcher and stops any live loop.
func (e *NotificationSyncEngine) Watch(ctx context.Context) func() {
	var mu sync.Mutex
	var cancel context.CancelFunc
	gen := 0

	start := func() {
		mu.Lock()
		defer mu.Unlock()
		if cancel != nil {
			return
		}
		runCtx, stopRun := context.WithCancel(ctx)
		cancel = stopRun
		gen++
		myGen := gen
		go func() {
			defer stopRun()
			e.Run(runCtx)
			mu.Lock()
			if gen == myGen {
				cancel = nil
			}
			mu.Unlock()
		}()
	}

	stop := func() {
		mu.Lock()
		if cancel != nil {
			cancel()
			cancel = nil
		}
		mu.Unlock()
	}

	unsubscribe := e.sessions.Subscribe(func(snap state.SessionSnapshot) {
		if snap.Authenticated {
			start()
		} else {
			stop()
		}
	})

	if e.sessions.Snapshot().Authenticated {
		start()
	}

	return func() {
		unsubscribe()
		stop()
	}
}

// MarkAsRead confirms the read state with the backend and then applies it
// locally. On failure the local state is left untouched and a transient
// notice is raised; the next successful poll reconciles any drift.
func (e *NotificationSyncEngine) MarkAsRead(ctx context.Context, id string) {
	if _, err := e.api.MarkRead(ctx, id); err != nil {
		e.logger.Warn("mark notification read failed", zap.String("notification_id", id), zap.Error(err))
		e.alerter.Warn("Failed to mark as read", "The notification will stay unread until the next sync.")
		return
	}
	e.store.MarkRead(id)
	e.tel.SetUnread(e.store.Snapshot().UnreadCount)
}

// MarkAllAsRead confirms with the backend and then clears the local unread
// state.
func (e *NotificationSyncEngine) MarkAllAsRead(ctx context.Context) {
	if err := e.api.MarkAllRead(ctx); err != nil {
		e.logger.Warn("mark all notifications read failed", zap.Error(err))
		e.alerter.Warn("Failed to mark all as read", "Unread notifications were left untouched.")
		return
	}
	e.store.MarkAllRead()
	e.tel.SetUnread(0)
}

// Delete removes a single notification remotely and then locally.
func (e *NotificationSyncEngine) Delete(ctx context.Context, id string) {
	if err := e.api.Delete(ctx, id); err != nil {
		e.logger.Warn("delete notification failed", zap.String("notification_id", id), zap.Error(err))
		e.alerter.Warn("Failed to delete notification", "The notification was kept.")
		return
	}
	e.store.Remove(id)
	e.tel.SetUnread(e.store.Snapshot().UnreadCount)
}

// ClearAll removes every notification remotely and then locally.
func (e *NotificationSyncEngine) ClearAll(ctx context.Context) {
	if err := e.api.DeleteAll(ctx); err != nil {
		e.logger.Warn("clear notifications failed", zap.Error(err))
		e.alerter.Warn("Failed to clear notifications", "Existing notifications were kept.")
		return
	}
	e.store.Clear()
	e.tel.SetUnread(0)
}
