package game

import "errors"

var (
	// ErrInvalidInput means the answer is not one of Yes, No, Sometimes, Unknown.
	ErrInvalidInput = errors.New("invalid answer")

	// ErrInvalidState means the operation is not allowed in the game's current state.
	ErrInvalidState = errors.New("invalid game state")

	// ErrUpstream wraps transport, auth and quota failures from the questioner.
	ErrUpstream = errors.New("questioner unavailable")

	ErrSessionNotFound = errors.New("game not found")
	ErrSessionBusy     = errors.New("game is processing another turn")
)
