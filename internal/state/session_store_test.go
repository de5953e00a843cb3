package state

import (
	"testing"

	"github.com/arklim/riskdash-client/internal/core/domain"
)

func testIdentity(id string) *domain.Identity {
	return &domain.Identity{
		ID:        id,
		Email:     id + "@example.com",
		FirstName: "Test",
		LastName:  "User",
		Role:      domain.RoleCustomer,
		Status:    domain.AccountStatusActive,
	}
}

func TestSessionStore_SetIdentityDerivesAuthenticated(t *testing.T) {
	store := NewSessionStore()

	store.SetIdentity(testIdentity("u1"))
	snap := store.Snapshot()
	if !snap.Authenticated {
		t.Fatalf("expected authenticated after SetIdentity")
	}
	if snap.Identity == nil || snap.Identity.ID != "u1" {
		t.Fatalf("expected identity u1, got %+v", snap.Identity)
	}

	store.SetIdentity(nil)
	snap = store.Snapshot()
	if snap.Authenticated {
		t.Fatalf("expected anonymous after SetIdentity(nil)")
	}
	if snap.Identity != nil {
		t.Fatalf("expected no identity, got %+v", snap.Identity)
	}
}

func TestSessionStore_ResetKeepsInitialized(t *testing.T) {
	store := NewSessionStore()
	store.SetIdentity(testIdentity("u1"))
	store.SetLoading(true)
	store.SetInitialized()

	store.Reset()

	snap := store.Snapshot()
	if snap.Identity != nil || snap.Authenticated {
		t.Fatalf("expected anonymous state after reset, got %+v", snap)
	}
	if snap.Loading {
		t.Fatalf("expected loading cleared after reset")
	}
	if !snap.Initialized {
		t.Fatalf("reset must not revert initialized")
	}
}

func TestSessionStore_SnapshotIsolation(t *testing.T) {
	store := NewSessionStore()
	store.SetIdentity(testIdentity("u1"))

	snap := store.Snapshot()
	snap.Identity.Email = "mutated@example.com"

	if got := store.Snapshot().Identity.Email; got != "u1@example.com" {
		t.Fatalf("snapshot mutation leaked into store: %s", got)
	}
}

func TestSessionStore_SubscribeAndUnsubscribe(t *testing.T) {
	store := NewSessionStore()

	var seen []SessionSnapshot
	unsubscribe := store.Subscribe(func(snap SessionSnapshot) {
		seen = append(seen, snap)
	})

	store.SetIdentity(testIdentity("u1"))
	store.SetLoading(true)

	if len(seen) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(seen))
	}
	if !seen[0].Authenticated {
		t.Fatalf("first snapshot should be authenticated")
	}
	if !seen[1].Loading {
		t.Fatalf("second snapshot should be loading")
	}

	unsubscribe()
	store.Reset()

	if len(seen) != 2 {
		t.Fatalf("unsubscribed listener still notified, got %d snapshots", len(seen))
	}
}
