package game

import "time"

// Session binds an opaque identifier to exactly one game for its lifetime.
type Session struct {
	ID        string
	Game      *Game
	CreatedAt time.Time
}
