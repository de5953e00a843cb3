package port

import (
	"context"

	"github.com/arklim/riskdash-client/internal/core/domain"
)

// SessionAPI abstracts the backend session endpoints. Implementations speak
// whatever transport the deployment uses; the coordinators only depend on
// these shapes.
type SessionAPI interface {
	// CurrentIdentity asks the backend who, if anyone, is currently
	// authenticated using ambient credentials. Any failure means "no
	// session" to callers.
	CurrentIdentity(ctx context.Context) (*domain.Identity, error)
	Login(ctx context.Context, creds domain.Credentials) (*domain.Identity, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.Identity, error)
	Logout(ctx context.Context) error
}

// NotificationAPI abstracts the backend notification endpoints.
type NotificationAPI interface {
	List(ctx context.Context) (domain.NotificationList, error)
	MarkRead(ctx context.Context, id string) (*domain.Notification, error)
	MarkAllRead(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}
