package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, snapshot slots and the
// registry client return these (optionally wrapped) so services can translate
// them into domain errors.
//
// - ErrNotFound: record or snapshot does not exist
// - ErrConflict: a uniqueness constraint rejected the write
// - ErrCorrupt: stored bytes could not be decoded
// - ErrUnavailable: backing service or resource temporarily unavailable
//
// For validation failures use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrCorrupt     = errors.New("corrupt")
	ErrUnavailable = errors.New("unavailable")
)
