package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a session ID has no live game.
	ErrSessionNotFound = errors.New("session not found")
	// ErrPlayerNotFound is returned when a named player is not in the game.
	ErrPlayerNotFound = errors.New("player not found in game")
	// ErrGameFull is returned when a join would exceed the player capacity.
	ErrGameFull = errors.New("game is full")
	// ErrNameRequired is returned when a join request carries no player name.
	ErrNameRequired = errors.New("player name required")
	// ErrNoQuestion indicates the question source produced nothing usable.
	ErrNoQuestion = errors.New("no question available")
)
