package like

import "time"

// Item is a marketplace item the user has liked. Only ID is guaranteed.
type Item struct {
	ID      int64     `json:"id"`
	Title   string    `json:"title,omitempty"`
	LikedAt time.Time `json:"liked_at,omitempty"`
}

// Phase tells subscribers why a liked flag changed
type Phase string

const (
	PhaseOptimistic Phase = "optimistic"
	PhaseRollback   Phase = "rollback"
)

// Change events published on the session stream
const (
	EventChanged   = "like.changed"
	EventRefreshed = "like.refreshed"
)
