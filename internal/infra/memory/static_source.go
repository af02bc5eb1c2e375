package memory

import (
	"context"

	"trivia-party-service/internal/domain"
)

// StaticSource serves questions from a fixed in-memory list (useful for
// tests and the demo command). Records with an empty difficulty or category
// match any request.
type StaticSource struct {
	records []domain.RawQuestion
}

func NewStaticSource(records []domain.RawQuestion) *StaticSource {
	return &StaticSource{records: records}
}

func (s *StaticSource) Fetch(_ context.Context, limit int, difficulty domain.Tier, category string) ([]domain.RawQuestion, error) {
	out := make([]domain.RawQuestion, 0, limit)
	for _, record := range s.records {
		if record.Difficulty != "" && difficulty != "" && record.Difficulty != string(difficulty) {
			continue
		}
		if record.Category != "" && category != "" && record.Category != category {
			continue
		}
		out = append(out, record)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
