package service

import "errors"

// Sentinel errors returned by the game flow.
var (
	ErrNotEnoughLocations = errors.New("not enough locations to start a game")
	ErrGameNotComplete    = errors.New("game is not complete")
	ErrAlreadyAssociated  = errors.New("game is already associated with a player")
	ErrNoLocations        = errors.New("no locations available")
	ErrInvalidInput       = errors.New("invalid input")
)
