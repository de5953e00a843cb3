package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/arklim/riskdash-client/internal/core/domain"
	"github.com/arklim/riskdash-client/internal/state"
)

type fakeNotificationAPI struct {
	mu        sync.Mutex
	lists     []domain.NotificationList
	listErr   error
	listCalls int

	markReadErr    error
	markAllReadErr error
	deleteErr      error
	deleteAllErr   error
}

// List returns the queued results in order, repeating the last one once the
// queue runs dry.
func (f *fakeNotificationAPI) List(ctx context.Context) (domain.NotificationList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return domain.NotificationList{}, f.listErr
	}
	if len(f.lists) == 0 {
		return domain.NotificationList{}, nil
	}
	list := f.lists[0]
	if len(f.lists) > 1 {
		f.lists = f.lists[1:]
	}
	return list, nil
}

func (f *fakeNotificationAPI) MarkRead(ctx context.Context, id string) (*domain.Notification, error) {
	if f.markReadErr != nil {
		return nil, f.markReadErr
	}
	return &domain.Notification{ID: id, Read: true}, nil
}

func (f *fakeNotificationAPI) MarkAllRead(ctx context.Context) error { return f.markAllReadErr }

func (f *fakeNotificationAPI) Delete(ctx context.Context, id string) error { return f.deleteErr }

func (f *fakeNotificationAPI) DeleteAll(ctx context.Context) error { return f.deleteAllErr }

func (f *fakeNotificationAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

type alertRecord struct {
	level string
	title string
}

type recordingAlerter struct {
	mu      sync.Mutex
	records []alertRecord
}

func (r *recordingAlerter) Urgent(title, message string) { r.record("urgent", title) }
func (r *recordingAlerter) Notice(title, message string) { r.record("notice", title) }
func (r *recordingAlerter) Warn(title, message string)   { r.record("warn", title) }

func (r *recordingAlerter) record(level, title string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, alertRecord{level: level, title: title})
}

func (r *recordingAlerter) all() []alertRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]alertRecord, len(r.records))
	copy(out, r.records)
	return out
}

func notif(id string, priority domain.NotificationPriority, read bool) domain.Notification {
	return domain.Notification{
		ID:        id,
		Type:      domain.NotificationTypeTransaction,
		Title:     "title " + id,
		Message:   "message " + id,
		Priority:  priority,
		Read:      read,
		CreatedAt: time.Now().UTC(),
	}
}

func listOf(items ...domain.Notification) domain.NotificationList {
	unread := 0
	for _, n := range items {
		if !n.Read {
			unread++
		}
	}
	return domain.NotificationList{Notifications: items, UnreadCount: unread}
}

func newTestEngine(api *fakeNotificationAPI, alerter *recordingAlerter) (*NotificationSyncEngine, *state.NotificationStore) {
	store := state.NewNotificationStore(nil)
	sessions := state.NewSessionStore()
	return NewNotificationSyncEngine(store, sessions, api, alerter, nil), store
}

func TestPoll_FirstFetchNeverAlerts(t *testing.T) {
	api := &fakeNotificationAPI{lists: []domain.NotificationList{
		listOf(notif("a", domain.NotificationPriorityHigh, false), notif("b", domain.NotificationPriorityMedium, false)),
	}}
	alerter := &recordingAlerter{}
	engine, store := newTestEngine(api, alerter)

	engine.Poll(context.Background())

	if got := alerter.all(); len(got) != 0 {
		t.Fatalf("first poll must not alert, got %+v", got)
	}
	snap := store.Snapshot()
	if len(snap.Notifications) != 2 || snap.UnreadCount != 2 {
		t.Fatalf("store must still absorb the first poll, got %+v", snap)
	}
}

func TestPoll_AlertsOnlyForNewUnreadArrivals(t *testing.T) {
	api := &fakeNotificationAPI{lists: []domain.NotificationList{
		listOf(notif("a", domain.NotificationPriorityHigh, false), notif("b", domain.NotificationPriorityMedium, false)),
		listOf(notif("a", domain.NotificationPriorityHigh, false), notif("b", domain.NotificationPriorityMedium, false), notif("c", domain.NotificationPriorityHigh, false)),
	}}
	alerter := &recordingAlerter{}
	engine, _ := newTestEngine(api, alerter)

	ctx := context.Background()
	engine.Poll(ctx)
	engine.Poll(ctx)

	got := alerter.all()
	if len(got) != 1 {
		t.Fatalf("expected exactly one alert for the new arrival, got %+v", got)
	}
	if got[0].level != "urgent" || got[0].title != "title c" {
		t.Fatalf("expected urgent alert for c, got %+v", got[0])
	}

	// A third identical poll must stay silent.
	engine.Poll(ctx)
	if got := alerter.all(); len(got) != 1 {
		t.Fatalf("unchanged poll must not alert again, got %+v", got)
	}
}

func TestPoll_MediumRaisesNoticeLowAndReadStaySilent(t *testing.T) {
	api := &fakeNotificationAPI{lists: []domain.NotificationList{
		listOf(notif("a", domain.NotificationPriorityLow, false)),
		listOf(
			notif("a", domain.NotificationPriorityLow, false),
			notif("b", domain.NotificationPriorityMedium, false),
			notif("c", domain.NotificationPriorityLow, false),
			notif("d", domain.NotificationPriorityHigh, true),
		),
	}}
	alerter := &recordingAlerter{}
	engine, _ := newTestEngine(api, alerter)

	ctx := context.Background()
	engine.Poll(ctx)
	engine.Poll(ctx)

	got := alerter.all()
	if len(got) != 1 {
		t.Fatalf("expected a single notice, got %+v", got)
	}
	if got[0].level != "notice" || got[0].title != "title b" {
		t.Fatalf("expected notice for b, got %+v", got[0])
	}
}

func TestPoll_FirstFetchConsumedEvenWhenEmpty(t *testing.T) {
	api := &fakeNotificationAPI{lists: []domain.NotificationList{
		listOf(),
		listOf(notif("a", domain.NotificationPriorityHigh, false)),
	}}
	alerter := &recordingAlerter{}
	engine, _ := newTestEngine(api, alerter)

	ctx := context.Background()
	engine.Poll(ctx)
	engine.Poll(ctx)

	got := alerter.all()
	if len(got) != 1 || got[0].level != "urgent" {
		t.Fatalf("arrival after an empty first poll must alert, got %+v", got)
	}
}

func TestPoll_PreviousIDsTrackTheLastSuccessfulPoll(t *testing.T) {
	api := &fakeNotificationAPI{lists: []domain.NotificationList{
		listOf(notif("a", domain.NotificationPriorityHigh, false)),
		listOf(),
		listOf(notif("a", domain.NotificationPriorityHigh, false)),
	}}
	alerter := &recordingAlerter{}
	engine, store := newTestEngine(api, alerter)

	ctx := context.Background()
	engine.Poll(ctx)
	engine.Poll(ctx)

	if snap := store.Snapshot(); len(snap.Notifications) != 0 {
		t.Fatalf("empty poll must clear the store, got %+v", snap)
	}

	// The record disappeared and came back; against the latest snapshot it
	// is a new arrival again.
	engine.Poll(ctx)
	got := alerter.all()
	if len(got) != 1 || got[0].title != "title a" {
		t.Fatalf("expected re-arrival alert for a, got %+v", got)
	}
}

func TestPoll_FailureKeepsSnapshotAndDetectionState(t *testing.T) {
	api := &fakeNotificationAPI{lists: []domain.NotificationList{
		listOf(notif("a", domain.NotificationPriorityHigh, false)),
	}}
	alerter := &recordingAlerter{}
	engine, store := newTestEngine(api, alerter)

	ctx := context.Background()
	engine.Poll(ctx)

	api.mu.Lock()
	api.listErr = errors.New("gateway timeout")
	api.mu.Unlock()
	engine.Poll(ctx)

	snap := store.Snapshot()
	if len(snap.Notifications) != 1 || snap.UnreadCount != 1 {
		t.Fatalf("failed poll must leave the snapshot intact, got %+v", snap)
	}

	// Recovery with the same items must not alert: the failed poll did not
	// reset detection state.
	api.mu.Lock()
	api.listErr = nil
	api.lists = []domain.NotificationList{listOf(notif("a", domain.NotificationPriorityHigh, false))}
	api.mu.Unlock()
	engine.Poll(ctx)

	if got := alerter.all(); len(got) != 0 {
		t.Fatalf("recovery with known items must stay silent, got %+v", got)
	}
}

func TestRun_ReturnsImmediatelyWhenAnonymous(t *testing.T) {
	api := &fakeNotificationAPI{}
	engine, _ := newTestEngine(api, &recordingAlerter{})

	done := make(chan struct{})
	go func() {
		engine.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run must return without polling when the session is anonymous")
	}
	if api.calls() != 0 {
		t.Fatalf("anonymous Run must not poll, got %d calls", api.calls())
	}
}

func TestRun_PollsImmediatelyThenOnTicks(t *testing.T) {
	api := &fakeNotificationAPI{lists: []domain.NotificationList{listOf()}}
	store := state.NewNotificationStore(nil)
	sessions := state.NewSessionStore()
	sessions.SetIdentity(managerIdentity())
	engine := NewNotificationSyncEngine(store, sessions, api, nil, nil).WithInterval(5 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		engine.Run(ctx)
		close(done)
	}()

	waitFor(t, time.Second, func() bool { return api.calls() >= 3 })
	cancel()
	<-done
}

func TestRun_StopsWhenAuthenticationIsLost(t *testing.T) {
	api := &fakeNotificationAPI{lists: []domain.NotificationList{listOf()}}
	store := state.NewNotificationStore(nil)
	sessions := state.NewSessionStore()
	sessions.SetIdentity(managerIdentity())
	engine := NewNotificationSyncEngine(store, sessions, api, nil, nil).WithInterval(5 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		engine.Run(context.Background())
		close(done)
	}()

	waitFor(t, time.Second, func() bool { return api.calls() >= 1 })
	sessions.Reset()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run must stop once the session turns anonymous")
	}
}

func TestWatch_FollowsSessionLifecycle(t *testing.T) {
	api := &fakeNotificationAPI{lists: []domain.NotificationList{listOf()}}
	store := state.NewNotificationStore(nil)
	sessions := state.NewSessionStore()
	engine := NewNotificationSyncEngine(store, sessions, api, nil, nil).WithInterval(5 * time.Millisecond)

	stop := engine.Watch(context.Background())
	defer stop()

	if api.calls() != 0 {
		t.Fatalf("watch must not poll before authentication")
	}

	sessions.SetIdentity(managerIdentity())
	waitFor(t, time.Second, func() bool { return api.calls() >= 1 })

	sessions.Reset()
	// Give the loop a moment to observe the reset, then confirm it stopped.
	waitFor(t, time.Second, func() bool {
		before := api.calls()
		time.Sleep(30 * time.Millisecond)
		return api.calls() == before
	})

	// Re-authentication starts a fresh loop.
	before := api.calls()
	sessions.SetIdentity(managerIdentity())
	waitFor(t, time.Second, func() bool { return api.calls() > before })
}

func TestMarkAsRead_ServerFirst(t *testing.T) {
	api := &fakeNotificationAPI{lists: []domain.NotificationList{
		listOf(notif("a", domain.NotificationPriorityHigh, false)),
	}}
	alerter := &recordingAlerter{}
	engine, store := newTestEngine(api, alerter)
	engine.Poll(context.Background())

	api.markReadErr = errors.New("server error")
	engine.MarkAsRead(context.Background(), "a")

	if got := store.Snapshot().UnreadCount; got != 1 {
		t.Fatalf("failed mark must leave local state untouched, got unread %d", got)
	}
	warns := alerter.all()
	if len(warns) != 1 || warns[0].level != "warn" {
		t.Fatalf("failed mark must raise a warning, got %+v", warns)
	}

	api.markReadErr = nil
	engine.MarkAsRead(context.Background(), "a")
	if got := store.Snapshot().UnreadCount; got != 0 {
		t.Fatalf("confirmed mark must apply locally, got unread %d", got)
	}
}

func TestMarkAllAsRead_AppliesAfterConfirmation(t *testing.T) {
	api := &fakeNotificationAPI{lists: []domain.NotificationList{
		listOf(notif("a", domain.NotificationPriorityHigh, false), notif("b", domain.NotificationPriorityLow, false)),
	}}
	engine, store := newTestEngine(api, &recordingAlerter{})
	engine.Poll(context.Background())

	engine.MarkAllAsRead(context.Background())

	snap := store.Snapshot()
	if snap.UnreadCount != 0 {
		t.Fatalf("expected unread 0, got %d", snap.UnreadCount)
	}
	for _, n := range snap.Notifications {
		if !n.Read {
			t.Fatalf("expected every item read, got %+v", n)
		}
	}
}

func TestDelete_RemovesLocallyOnlyOnSuccess(t *testing.T) {
	api := &fakeNotificationAPI{lists: []domain.NotificationList{
		listOf(notif("a", domain.NotificationPriorityHigh, false)),
	}}
	alerter := &recordingAlerter{}
	engine, store := newTestEngine(api, alerter)
	engine.Poll(context.Background())

	api.deleteErr = errors.New("server error")
	engine.Delete(context.Background(), "a")
	if got := len(store.Snapshot().Notifications); got != 1 {
		t.Fatalf("failed delete must keep the item, got %d items", got)
	}

	api.deleteErr = nil
	engine.Delete(context.Background(), "a")
	if got := len(store.Snapshot().Notifications); got != 0 {
		t.Fatalf("confirmed delete must remove the item, got %d items", got)
	}
}

func TestClearAll_EmptiesStore(t *testing.T) {
	api := &fakeNotificationAPI{lists: []domain.NotificationList{
		listOf(notif("a", domain.NotificationPriorityHigh, false), notif("b", domain.NotificationPriorityLow, true)),
	}}
	engine, store := newTestEngine(api, &recordingAlerter{})
	engine.Poll(context.Background())

	engine.ClearAll(context.Background())

	snap := store.Snapshot()
	if len(snap.Notifications) != 0 || snap.UnreadCount != 0 {
		t.Fatalf("expected empty store, got %+v", snap)
	}
}
