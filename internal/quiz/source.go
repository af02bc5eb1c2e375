package quiz

import (
	"context"

	"trivia-party-service/internal/domain"
)

// Source fetches raw question records from a backing provider (HTTP API,
// question bank, cache). A failing or empty source is never fatal to a game;
// callers absorb errors as "no questions".
type Source interface {
	Fetch(ctx context.Context, limit int, difficulty domain.Tier, category string) ([]domain.RawQuestion, error)
}
