package like

import (
	"context"

	"github.com/flipit/flipit-session-go/internal/domain/auth"
)

// Backend is the durable record of like relationships for one session.
// Implementations wrap their failures so that errors.Is(err, ErrBackend)
// holds.
type Backend interface {
	Like(ctx context.Context, itemID int64) error
	Unlike(ctx context.Context, itemID int64) error
	FetchAll(ctx context.Context) ([]Item, error)
	CheckStatus(ctx context.Context, itemIDs []int64) (map[int64]bool, error)
}

// BackendFactory binds a Backend to an authenticated session
type BackendFactory func(session auth.Session) Backend
