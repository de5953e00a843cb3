package port

import (
	"context"
	"time"
)

// DataCache is the cached-server-data collaborator the logout flow must be
// able to wipe. Screens outside this core park fetched responses here; the
// core itself only ever issues InvalidateAll.
type DataCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	InvalidateAll(ctx context.Context) error
}
