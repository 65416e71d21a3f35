package preference

import "errors"

// Preference domain errors
var (
	ErrUnknownKey = errors.New("unknown notification preference key")
)
