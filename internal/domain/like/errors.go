package like

import "errors"

// Like domain errors
var (
	ErrAuthRequired   = errors.New("authentication required")
	ErrBackend        = errors.New("likes backend error")
	ErrInvalidItemID  = errors.New("invalid item id")
	ErrTooManyItemIDs = errors.New("too many item ids")
)
