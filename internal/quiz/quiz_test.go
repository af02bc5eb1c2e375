package quiz_test

import (
	"context"
	"errors"
	"testing"

	"trivia-party-service/internal/domain"
	"trivia-party-service/internal/quiz"
)

type stubSource struct {
	records map[string][]domain.RawQuestion // keyed by category
	fail    bool
	calls   int
}

func (s *stubSource) Fetch(_ context.Context, limit int, _ domain.Tier, category string) ([]domain.RawQuestion, error) {
	s.calls++
	if s.fail {
		return nil, errors.New("upstream down")
	}
	records := s.records[category]
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func record(text string) domain.RawQuestion {
	return domain.RawQuestion{
		Question:   text,
		Answer:     "right",
		BadAnswers: []string{"wrong1", "wrong2", "wrong3"},
	}
}

func TestNewQuestionOptionsAndMultiplier(t *testing.T) {
	q := quiz.NewQuestion(record("q"), domain.TierHard)

	if len(q.Options) != 4 {
		t.Fatalf("expected 4 options, got %d", len(q.Options))
	}
	found := false
	for _, opt := range q.Options {
		if opt == q.Answer {
			found = true
		}
	}
	if !found {
		t.Fatalf("correct answer missing from options: %+v", q.Options)
	}
	if q.Multiplier != 3 {
		t.Fatalf("expected hard multiplier 3, got %d", q.Multiplier)
	}
}

func TestNewQuestionUnknownTierScoresZero(t *testing.T) {
	q := quiz.NewQuestion(record("q"), domain.Tier("legendary"))
	if q.Multiplier != 0 {
		t.Fatalf("unknown tier should have zero multiplier, got %d", q.Multiplier)
	}
	if len(q.Options) != 4 {
		t.Fatalf("question should still be usable, got %d options", len(q.Options))
	}
}

func TestPickTierHonorsExclusiveWeight(t *testing.T) {
	ratios := domain.DifficultyRatios{Easy: 5}
	for i := 0; i < 50; i++ {
		if tier := quiz.PickTier(ratios); tier != domain.TierEasy {
			t.Fatalf("expected easy with exclusive weight, got %s", tier)
		}
	}
}

func TestPickTierZeroWeightsFallBackToEqual(t *testing.T) {
	seen := map[domain.Tier]bool{}
	for i := 0; i < 500; i++ {
		seen[quiz.PickTier(domain.DifficultyRatios{})] = true
	}
	for _, tier := range []domain.Tier{domain.TierEasy, domain.TierNormal, domain.TierHard} {
		if !seen[tier] {
			t.Fatalf("equal fallback never produced %s", tier)
		}
	}
}

func TestGenerateSingleEmptySource(t *testing.T) {
	engine := quiz.NewEngine(&stubSource{records: map[string][]domain.RawQuestion{}})

	_, err := engine.GenerateSingle(context.Background(), domain.TierNormal, nil)
	if err != domain.ErrNoQuestion {
		t.Fatalf("expected ErrNoQuestion, got %v", err)
	}
}

func TestGenerateSingleFailureAbsorbed(t *testing.T) {
	engine := quiz.NewEngine(&stubSource{fail: true})

	_, err := engine.GenerateSingle(context.Background(), domain.TierNormal, []string{"history"})
	if err != domain.ErrNoQuestion {
		t.Fatalf("expected ErrNoQuestion on upstream failure, got %v", err)
	}
}

func TestGenerateBatchFansOutPerCategory(t *testing.T) {
	source := &stubSource{records: map[string][]domain.RawQuestion{
		"art":     {record("a1"), record("a2")},
		"science": {record("s1"), record("s2")},
	}}
	engine := quiz.NewEngine(source)

	questions := engine.GenerateBatch(context.Background(), 4, domain.TierEasy, []string{"art", "science"})
	if len(questions) != 4 {
		t.Fatalf("expected 4 questions, got %d", len(questions))
	}
	if source.calls != 2 {
		t.Fatalf("expected one fetch per category, got %d", source.calls)
	}
}

func TestGenerateBatchTruncates(t *testing.T) {
	source := &stubSource{records: map[string][]domain.RawQuestion{
		"art":     {record("a1"), record("a2")},
		"science": {record("s1"), record("s2")},
		"sport":   {record("p1"), record("p2")},
	}}
	engine := quiz.NewEngine(source)

	// 2 requested over 3 categories still fetches at least one from each,
	// then truncates the shuffled pool.
	questions := engine.GenerateBatch(context.Background(), 2, domain.TierEasy, []string{"art", "science", "sport"})
	if len(questions) != 2 {
		t.Fatalf("expected truncation to 2, got %d", len(questions))
	}
}

func TestGenerateMixedSurvivesFailingSource(t *testing.T) {
	engine := quiz.NewEngine(&stubSource{fail: true})

	pool := engine.GenerateMixed(context.Background(), 3, 4, 3, nil)
	if len(pool) != 0 {
		t.Fatalf("expected empty pool from failing source, got %d", len(pool))
	}
}

func TestGenerateMixedCombinesTiers(t *testing.T) {
	source := &stubSource{records: map[string][]domain.RawQuestion{
		"": {record("q1"), record("q2"), record("q3"), record("q4")},
	}}
	engine := quiz.NewEngine(source)

	pool := engine.GenerateMixed(context.Background(), 2, 2, 2, nil)
	if len(pool) != 6 {
		t.Fatalf("expected 6 questions, got %d", len(pool))
	}
	tiers := map[domain.Tier]int{}
	for _, q := range pool {
		tiers[q.Tier]++
	}
	if tiers[domain.TierEasy] != 2 || tiers[domain.TierNormal] != 2 || tiers[domain.TierHard] != 2 {
		t.Fatalf("unexpected tier distribution: %v", tiers)
	}
}
