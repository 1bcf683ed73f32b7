package model

import "errors"

// Sentinel errors for game state transitions.
var (
	ErrGameComplete   = errors.New("game is already complete")
	ErrRoundMismatch  = errors.New("guess does not match the current round")
	ErrInvalidSession = errors.New("invalid game session")
)
