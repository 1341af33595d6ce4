// Package state persists the team state carried between rounds.
package state

import "errors"

var (
	// ErrStateCorrupt is returned alongside a first-round state when stored
	// data exists but cannot be decoded.
	ErrStateCorrupt = errors.New("team state corrupt")
	// ErrPersistence wraps any failure to durably write the team state.
	ErrPersistence = errors.New("team state not persisted")
)
