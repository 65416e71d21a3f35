package postgresql

import (
	"context"
	"fmt"

	"github.com/flipit/flipit-session-go/internal/domain/auth"
	"github.com/flipit/flipit-session-go/internal/domain/like"
	"github.com/flipit/flipit-session-go/internal/pkg/database"
)

// LikeRepository stores like relationships in the marketplace database
type LikeRepository struct {
	db *database.DB
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *database.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// EnsureSchema creates the item_likes table if it is missing
func (r *LikeRepository) EnsureSchema(ctx context.Context) error {
	return WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		if _, err := q.Exec(ctx, `
			CREATE TABLE IF NOT EXISTS item_likes (
				user_id    TEXT        NOT NULL,
				item_id    BIGINT      NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				PRIMARY KEY (user_id, item_id)
			)
		`); err != nil {
			return fmt.Errorf("failed to create item_likes: %w", err)
		}

		if _, err := q.Exec(ctx, `
			CREATE INDEX IF NOT EXISTS idx_item_likes_item_id ON item_likes (item_id)
		`); err != nil {
			return fmt.Errorf("failed to index item_likes: %w", err)
		}
		return nil
	})
}

// Backend returns a like.BackendFactory scoped to each session's user
func (r *LikeRepository) Backend() like.BackendFactory {
	return func(session auth.Session) like.Backend {
		return &userLikes{db: r.db, userID: session.UserID}
	}
}

type userLikes struct {
	db     *database.DB
	userID string
}

// Like inserts the like; liking twice is a no-op
func (u *userLikes) Like(ctx context.Context, itemID int64) error {
	q := GetQuerier(ctx, u.db)

	query := `
		INSERT INTO item_likes (user_id, item_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, item_id) DO NOTHING
	`
	if _, err := q.Exec(ctx, query, u.userID, itemID); err != nil {
		return fmt.Errorf("%w: failed to like item %d: %w", like.ErrBackend, itemID, err)
	}
	return nil
}

// Unlike deletes the like; unliking twice is a no-op
func (u *userLikes) Unlike(ctx context.Context, itemID int64) error {
	q := GetQuerier(ctx, u.db)

	query := `DELETE FROM item_likes WHERE user_id = $1 AND item_id = $2`
	if _, err := q.Exec(ctx, query, u.userID, itemID); err != nil {
		return fmt.Errorf("%w: failed to unlike item %d: %w", like.ErrBackend, itemID, err)
	}
	return nil
}

// FetchAll lists the user's likes, newest first
func (u *userLikes) FetchAll(ctx context.Context) ([]like.Item, error) {
	q := GetQuerier(ctx, u.db)

	query := `
		SELECT item_id, created_at
		FROM item_likes
		WHERE user_id = $1
		ORDER BY created_at DESC, item_id
	`
	rows, err := q.Query(ctx, query, u.userID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list likes: %w", like.ErrBackend, err)
	}
	defer rows.Close()

	var items []like.Item
	for rows.Next() {
		var item like.Item
		if err := rows.Scan(&item.ID, &item.LikedAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan like: %w", like.ErrBackend, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate likes: %w", like.ErrBackend, err)
	}

	return items, nil
}

// CheckStatus reports which of itemIDs the user has liked
func (u *userLikes) CheckStatus(ctx context.Context, itemIDs []int64) (map[int64]bool, error) {
	statuses := make(map[int64]bool, len(itemIDs))
	for _, id := range itemIDs {
		statuses[id] = false
	}
	if len(itemIDs) == 0 {
		return statuses, nil
	}

	q := GetQuerier(ctx, u.db)

	query := `SELECT item_id FROM item_likes WHERE user_id = $1 AND item_id = ANY($2)`
	rows, err := q.Query(ctx, query, u.userID, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to check like status: %w", like.ErrBackend, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: failed to scan like status: %w", like.ErrBackend, err)
		}
		statuses[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate like status: %w", like.ErrBackend, err)
	}

	return statuses, nil
}
