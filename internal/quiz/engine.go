package quiz

import (
	"context"
	"log"
	"math/rand"

	"trivia-party-service/internal/domain"
)

// Engine orchestrates question generation against a Source. It holds no
// per-game state; games pass their own category allow-list on each call.
type Engine struct {
	source Source
}

func NewEngine(source Source) *Engine {
	return &Engine{source: source}
}

// GenerateSingle fetches exactly one question for the tier, scoped to a
// randomly chosen category from the allow-list when one is configured.
func (e *Engine) GenerateSingle(ctx context.Context, tier domain.Tier, categories []string) (domain.Question, error) {
	category := ""
	if len(categories) > 0 {
		category = categories[rand.Intn(len(categories))]
	}

	raws, err := e.source.Fetch(ctx, 1, tier, category)
	if err != nil {
		log.Printf("quiz: fetch failed (tier=%s category=%q): %v", tier, category, err)
		return domain.Question{}, domain.ErrNoQuestion
	}
	if len(raws) == 0 {
		return domain.Question{}, domain.ErrNoQuestion
	}
	return NewQuestion(raws[0], tier), nil
}

// GenerateBatch fans a request out across the category list, dividing count
// evenly (at least one per category), then shuffles the combined result and
// truncates it to count. A failing sub-batch contributes zero questions.
func (e *Engine) GenerateBatch(ctx context.Context, count int, tier domain.Tier, categories []string) []domain.Question {
	if count <= 0 {
		return nil
	}
	if len(categories) == 0 {
		categories = []string{""}
	}

	perCategory := count / len(categories)
	if perCategory < 1 {
		perCategory = 1
	}

	questions := make([]domain.Question, 0, count)
	for _, category := range categories {
		raws, err := e.source.Fetch(ctx, perCategory, tier, category)
		if err != nil {
			log.Printf("quiz: batch fetch failed (tier=%s category=%q): %v", tier, category, err)
			continue
		}
		for _, raw := range raws {
			questions = append(questions, NewQuestion(raw, tier))
		}
	}

	rand.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
	if len(questions) > count {
		questions = questions[:count]
	}
	return questions
}

// GenerateMixed builds a shuffled pool with the requested number of
// questions per tier, for batch-drawn game modes.
func (e *Engine) GenerateMixed(ctx context.Context, easy, normal, hard int, categories []string) []domain.Question {
	pool := e.GenerateBatch(ctx, easy, domain.TierEasy, categories)
	pool = append(pool, e.GenerateBatch(ctx, normal, domain.TierNormal, categories)...)
	pool = append(pool, e.GenerateBatch(ctx, hard, domain.TierHard, categories)...)

	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return pool
}
