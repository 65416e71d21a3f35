package marketplace

import (
	"context"
	"fmt"
	"net/http"

	"github.com/flipit/flipit-session-go/internal/domain/auth"
	"github.com/flipit/flipit-session-go/internal/domain/like"
)

// likesBackend is the marketplace likes API seen by one session
type likesBackend struct {
	client *Client
	token  string
}

// LikesBackend returns a like.BackendFactory that calls the marketplace
// with each session's bearer token
func (c *Client) LikesBackend() like.BackendFactory {
	return func(session auth.Session) like.Backend {
		return &likesBackend{client: c, token: session.Token}
	}
}

type checkStatusRequest struct {
	ItemIDs []int64 `json:"item_ids"`
}

// Like records a like for the item
func (b *likesBackend) Like(ctx context.Context, itemID int64) error {
	return b.client.do(ctx, b.token, http.MethodPost, fmt.Sprintf("/likes/%d", itemID), nil, nil)
}

// Unlike removes the like for the item
func (b *likesBackend) Unlike(ctx context.Context, itemID int64) error {
	return b.client.do(ctx, b.token, http.MethodDelete, fmt.Sprintf("/likes/%d", itemID), nil, nil)
}

// FetchAll lists every item the user has liked
func (b *likesBackend) FetchAll(ctx context.Context) ([]like.Item, error) {
	var items []like.Item
	if err := b.client.do(ctx, b.token, http.MethodGet, "/likes", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CheckStatus returns the liked flag for each id; ids missing from the
// response are reported as not liked
func (b *likesBackend) CheckStatus(ctx context.Context, itemIDs []int64) (map[int64]bool, error) {
	statuses := make(map[int64]bool, len(itemIDs))
	if err := b.client.do(ctx, b.token, http.MethodPost, "/likes/status", checkStatusRequest{ItemIDs: itemIDs}, &statuses); err != nil {
		return nil, err
	}
	for _, id := range itemIDs {
		if _, ok := statuses[id]; !ok {
			statuses[id] = false
		}
	}
	return statuses, nil
}
