package state

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/arklim/riskdash-client/internal/core/domain"
)

func testNotification(id string, read bool, priority domain.NotificationPriority) domain.Notification {
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

func unreadIn(items []domain.Notification) int {
	count := 0
	for _, n := range items {
		if !n.Read {
			count++
		}
	}
	return count
}

func TestNotificationStore_ReplaceAllDerivesCountAndStampsSync(t *testing.T) {
	store := NewNotificationStore(nil)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.WithClock(func() time.Time { return now })

	items := []domain.Notification{
		testNotification("n1", false, domain.NotificationPriorityHigh),
		testNotification("n2", true, domain.NotificationPriorityLow),
	}
	// Server tally deliberately wrong; the store trusts the items.
	store.ReplaceAll(items, 5)

	snap := store.Snapshot()
	if snap.UnreadCount != 1 {
		t.Fatalf("expected unread 1, got %d", snap.UnreadCount)
	}
	if snap.LastSynced == nil || !snap.LastSynced.Equal(now) {
		t.Fatalf("expected last synced %v, got %v", now, snap.LastSynced)
	}
}

func TestNotificationStore_AddDeduplicatesByID(t *testing.T) {
	store := NewNotificationStore(nil)
	store.Add(testNotification("n1", false, domain.NotificationPriorityHigh))
	store.Add(testNotification("n1", false, domain.NotificationPriorityHigh))

	snap := store.Snapshot()
	if len(snap.Notifications) != 1 {
		t.Fatalf("duplicate insert must be a no-op, got %d items", len(snap.Notifications))
	}
	if snap.UnreadCount != 1 {
		t.Fatalf("expected unread 1, got %d", snap.UnreadCount)
	}
}

func TestNotificationStore_AddPrependsNewest(t *testing.T) {
	store := NewNotificationStore(nil)
	store.Add(testNotification("old", false, domain.NotificationPriorityLow))
	store.Add(testNotification("new", false, domain.NotificationPriorityLow))

	snap := store.Snapshot()
	if snap.Notifications[0].ID != "new" {
		t.Fatalf("expected newest first, got %s", snap.Notifications[0].ID)
	}
}

func TestNotificationStore_MarkReadIdempotent(t *testing.T) {
	store := NewNotificationStore(nil)
	store.ReplaceAll([]domain.Notification{
		testNotification("n1", false, domain.NotificationPriorityHigh),
	}, 1)

	store.MarkRead("n1")
	if got := store.Snapshot().UnreadCount; got != 0 {
		t.Fatalf("expected unread 0 after mark read, got %d", got)
	}

	store.MarkRead("n1")
	if got := store.Snapshot().UnreadCount; got != 0 {
		t.Fatalf("marking an already-read id must not change the count, got %d", got)
	}

	store.MarkRead("unknown")
	if got := store.Snapshot().UnreadCount; got != 0 {
		t.Fatalf("marking an unknown id must not change the count, got %d", got)
	}
}

func TestNotificationStore_RemoveAdjustsUnreadOnlyForUnread(t *testing.T) {
	store := NewNotificationStore(nil)
	store.ReplaceAll([]domain.Notification{
		testNotification("unread", false, domain.NotificationPriorityHigh),
		testNotification("read", true, domain.NotificationPriorityLow),
	}, 1)

	store.Remove("read")
	if got := store.Snapshot().UnreadCount; got != 1 {
		t.Fatalf("removing a read item must keep unread at 1, got %d", got)
	}

	store.Remove("unread")
	snap := store.Snapshot()
	if snap.UnreadCount != 0 {
		t.Fatalf("removing an unread item must decrement, got %d", snap.UnreadCount)
	}
	if len(snap.Notifications) != 0 {
		t.Fatalf("expected empty store, got %d items", len(snap.Notifications))
	}
}

func TestNotificationStore_ClearResetsEverything(t *testing.T) {
	store := NewNotificationStore(nil)
	store.ReplaceAll([]domain.Notification{
		testNotification("n1", false, domain.NotificationPriorityHigh),
	}, 1)

	store.Clear()

	snap := store.Snapshot()
	if len(snap.Notifications) != 0 || snap.UnreadCount != 0 {
		t.Fatalf("expected empty state after clear, got %+v", snap)
	}
	if snap.LastSynced != nil {
		t.Fatalf("expected sync timestamp cleared, got %v", snap.LastSynced)
	}
}

// TestNotificationStore_UnreadInvariantUnderRandomMutations drives the store
// through random mutation sequences and checks the counter invariant after
// every step.
func TestNotificationStore_UnreadInvariantUnderRandomMutations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for seq := 0; seq < 50; seq++ {
		store := NewNotificationStore(nil)
		nextID := 0

		for step := 0; step < 40; step++ {
			snap := store.Snapshot()

			switch rng.Intn(6) {
			case 0:
				size := rng.Intn(6)
				items := make([]domain.Notification, 0, size)
				for i := 0; i < size; i++ {
					nextID++
					items = append(items, testNotification(fmt.Sprintf("n%d", nextID), rng.Intn(2) == 0, domain.NotificationPriorityLow))
				}
				store.ReplaceAll(items, unreadIn(items))
			case 1:
				nextID++
				store.Add(testNotification(fmt.Sprintf("n%d", nextID), rng.Intn(2) == 0, domain.NotificationPriorityLow))
			case 2:
				if len(snap.Notifications) > 0 {
					store.MarkRead(snap.Notifications[rng.Intn(len(snap.Notifications))].ID)
				}
			case 3:
				store.MarkAllRead()
			case 4:
				if len(snap.Notifications) > 0 {
					store.Remove(snap.Notifications[rng.Intn(len(snap.Notifications))].ID)
				}
			case 5:
				store.Clear()
			}

			after := store.Snapshot()
			if want := unreadIn(after.Notifications); after.UnreadCount != want {
				t.Fatalf("seq %d step %d: unread count %d disagrees with items (%d unread)",
					seq, step, after.UnreadCount, want)
			}
		}
	}
}
