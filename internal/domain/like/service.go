package like

import (
	"context"
	"time"

	"github.com/flipit/flipit-session-go/internal/domain/auth"
)

// Coordinator owns the liked-item set of one session. All reads and writes
// of the set go through it.
type Coordinator interface {
	// IsLiked is a local lookup; it never blocks on the backend.
	IsLiked(itemID int64) bool

	// ToggleLike flips the item optimistically, confirms with the backend and
	// rolls back on failure. It returns the resulting liked flag.
	ToggleLike(ctx context.Context, itemID int64) (bool, error)

	// Refresh replaces the set with the backend's view.
	Refresh(ctx context.Context) error

	// BulkStatus asks the backend about many items without touching the set.
	BulkStatus(ctx context.Context, itemIDs []int64) (map[int64]bool, error)

	// Snapshot returns the liked ids in ascending order.
	Snapshot() []int64
}

// Registry hands out one Coordinator per user session
type Registry interface {
	Acquire(ctx context.Context, session auth.Session) (Coordinator, error)
	// Reload returns the session's coordinator with a freshly loaded set.
	Reload(ctx context.Context, session auth.Session) (Coordinator, error)
	End(userID string)
	Sweep(idle time.Duration) int
	RefreshAll(ctx context.Context) error
	Len() int
}
