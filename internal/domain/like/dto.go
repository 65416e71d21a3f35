package like

// ============= Request DTOs =============

// BulkStatusRequest asks for the liked flag of several items
type BulkStatusRequest struct {
	ItemIDs []int64 `json:"item_ids"`
}

// ============= Response DTOs =============

// StatusResponse is the liked flag of a single item
type StatusResponse struct {
	ItemID int64 `json:"item_id"`
	Liked  bool  `json:"liked"`
}

// ListResponse lists the liked ids of the session
type ListResponse struct {
	ItemIDs []int64 `json:"item_ids"`
	Total   int     `json:"total"`
}

// BulkStatusResponse maps item ids to liked flags
type BulkStatusResponse struct {
	Statuses map[int64]bool `json:"statuses"`
}

// ============= SSE Event =============

// ChangedEvent is published whenever a liked flag changes locally
type ChangedEvent struct {
	ItemID int64 `json:"item_id"`
	Liked  bool  `json:"liked"`
	Phase  Phase `json:"phase"`
}

// RefreshedEvent is published after the set was replaced
type RefreshedEvent struct {
	Count int `json:"count"`
}
