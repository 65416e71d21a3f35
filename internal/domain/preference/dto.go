package preference

// ============= Request DTOs =============

// ToggleRequest sets a single preference key
type ToggleRequest struct {
	Value *bool `json:"value"`
}

// ============= Response DTOs =============

// PreferenceItem is one key/value pair with its cascade position
type PreferenceItem struct {
	Key     Key  `json:"key"`
	Enabled bool `json:"enabled"`
	Parent  *Key `json:"parent,omitempty"`
}

// StateResponse lists every preference in display order
type StateResponse struct {
	Preferences []PreferenceItem `json:"preferences"`
	Values      map[Key]bool     `json:"values"`
}

// NewStateResponse builds a StateResponse from s
func NewStateResponse(s State) StateResponse {
	keys := AllKeys()
	items := make([]PreferenceItem, len(keys))
	for i, k := range keys {
		item := PreferenceItem{Key: k, Enabled: s[k]}
		if p, ok := ParentOf(k); ok {
			parent := p
			item.Parent = &parent
		}
		items[i] = item
	}
	return StateResponse{
		Preferences: items,
		Values:      s.Clone(),
	}
}
