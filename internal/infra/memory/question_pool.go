package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"trivia-party-service/internal/domain"
	"trivia-party-service/internal/quiz"
)

// PoolSource batches upstream fetches and hands questions out one at a time.
// Each (difficulty, category) pair keeps its own pool with a TTL so stale
// questions age out; refills are deduplicated with singleflight.
type PoolSource struct {
	upstream  quiz.Source
	batchSize int
	ttl       time.Duration
	clock     func() time.Time
	sf        singleflight.Group

	mu    sync.Mutex
	pools map[string]poolEntry
}

type poolEntry struct {
	records   []domain.RawQuestion
	expiresAt time.Time
}

func NewPoolSource(upstream quiz.Source, batchSize int, ttl time.Duration) *PoolSource {
	if batchSize < 1 {
		batchSize = 10
	}
	return &PoolSource{
		upstream:  upstream,
		batchSize: batchSize,
		ttl:       ttl,
		clock:     time.Now,
		pools:     make(map[string]poolEntry),
	}
}

func (p *PoolSource) Fetch(ctx context.Context, limit int, difficulty domain.Tier, category string) ([]domain.RawQuestion, error) {
	key := poolKey(difficulty, category)

	if records := p.take(key, limit); len(records) > 0 {
		return records, nil
	}

	_, err, _ := p.sf.Do(key, func() (interface{}, error) {
		// Re-check in case another goroutine refilled while we waited.
		if p.peek(key) {
			return nil, nil
		}

		batch := p.batchSize
		if limit > batch {
			batch = limit
		}
		records, err := p.upstream.Fetch(ctx, batch, difficulty, category)
		if err != nil {
			return nil, err
		}

		p.mu.Lock()
		p.pools[key] = poolEntry{
			records:   records,
			expiresAt: p.clock().Add(p.ttlWithJitter()),
		}
		p.mu.Unlock()
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	return p.take(key, limit), nil
}

func (p *PoolSource) take(key string, limit int) []domain.RawQuestion {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.pools[key]
	if !ok || !entry.expiresAt.After(p.clock()) || len(entry.records) == 0 {
		return nil
	}

	n := limit
	if n > len(entry.records) {
		n = len(entry.records)
	}
	taken := entry.records[:n]
	entry.records = entry.records[n:]
	p.pools[key] = entry
	return taken
}

func (p *PoolSource) peek(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	entry, ok := p.pools[key]
	return ok && entry.expiresAt.After(p.clock()) && len(entry.records) > 0
}

func (p *PoolSource) ttlWithJitter() time.Duration {
	if p.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(p.ttl) / 10
	return p.ttl + time.Duration(rand.Int63n(jitterMax+1))
}

func poolKey(difficulty domain.Tier, category string) string {
	if category == "" {
		category = "any"
	}
	return string(difficulty) + ":" + category
}
