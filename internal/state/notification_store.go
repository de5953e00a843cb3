package state

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/riskdash-client/internal/core/domain"
)

// NotificationSnapshot is an immutable view of the notification state.
// Notifications are ordered newest first.
type NotificationSnapshot struct {
	Notifications []domain.Notification
	UnreadCount   int
	LastSynced    *time.Time
}

// NotificationStore holds the notification list, the unread counter, and the
// last successful sync time. Every mutation keeps the invariant
// UnreadCount == number of unread items; no intermediate state where the two
// disagree is observable.
type NotificationStore struct {
	mu         sync.RWMutex
	items      []domain.Notification
	unread     int
	lastSynced *time.Time

	logger *zap.Logger
	now    func() time.Time

	subMu   sync.Mutex
	subs    map[int]func(NotificationSnapshot)
	nextSub int
}

// NewNotificationStore returns an empty notification store.
func NewNotificationStore(logger *zap.Logger) *NotificationStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationStore{
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		subs:   make(map[int]func(NotificationSnapshot)),
	}
}

// WithClock overrides the internal clock for deterministic tests.
func (s *NotificationStore) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// ReplaceAll swaps in a full snapshot from the backend and stamps the sync
// time. The unread counter is recomputed from the items themselves; a
// mismatching server tally is logged and ignored so the counter invariant
// holds no matter what the backend reports.
func (s *NotificationStore) ReplaceAll(items []domain.Notification, serverUnread int) {
	copied := make([]domain.Notification, len(items))
	copy(copied, items)

	unread := 0
	for _, n := range copied {
		if !n.Read {
			unread++
		}
	}

	s.mu.Lock()
	s.items = copied
	s.unread = unread
	synced := s.now()
	s.lastSynced = &synced
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if serverUnread != unread {
		s.logger.Warn("server unread count disagrees with items",
			zap.Int("server_unread", serverUnread),
			zap.Int("derived_unread", unread),
		)
	}

	s.notify(snap)
}

// Add inserts a notification at the head of the list. Inserting an ID that
// is already present is a no-op.
func (s *NotificationStore) Add(n domain.Notification) {
	s.mu.Lock()
	for _, existing := range s.items {
		if existing.ID == n.ID {
			s.mu.Unlock()
			return
		}
	}
	s.items = append([]domain.Notification{n}, s.items...)
	if !n.Read {
		s.unread++
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// MarkRead marks a single notification as read. Already-read or unknown IDs
// leave the counter untouched.
func (s *NotificationStore) MarkRead(id string) {
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		if !s.items[i].Read {
			s.items[i].Read = true
			if s.unread > 0 {
				s.unread--
			}
		}
		break
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// MarkAllRead marks every notification as read and zeroes the counter.
func (s *NotificationStore) MarkAllRead() {
	s.mu.Lock()
	for i := range s.items {
		s.items[i].Read = true
	}
	s.unread = 0
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// Remove deletes a notification by ID, decrementing the unread counter only
// when the removed record was unread.
func (s *NotificationStore) Remove(id string) {
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		if !s.items[i].Read && s.unread > 0 {
			s.unread--
		}
		s.items = append(s.items[:i], s.items[i+1:]...)
		break
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// Clear drops every notification and resets the counter. The sync timestamp
// is cleared as well: a wiped store has no meaningful "last synced" moment.
func (s *NotificationStore) Clear() {
	s.mu.Lock()
	s.items = nil
	s.unread = 0
	s.lastSynced = nil
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// Snapshot returns a copy of the current notification state.
func (s *NotificationStore) Snapshot() NotificationSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe registers a listener invoked with a fresh snapshot after every
// mutation. The returned function removes the subscription.
func (s *NotificationStore) Subscribe(fn func(NotificationSnapshot)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *NotificationStore) snapshotLocked() NotificationSnapshot {
	snap := NotificationSnapshot{UnreadCount: s.unread}
	snap.Notifications = make([]domain.Notification, len(s.items))
	copy(snap.Notifications, s.items)
	if s.lastSynced != nil {
		synced := *s.lastSynced
		snap.LastSynced = &synced
	}
	return snap
}

func (s *NotificationStore) notify(snap NotificationSnapshot) {
	s.subMu.Lock()
	listeners := make([]func(NotificationSnapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.subMu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}
