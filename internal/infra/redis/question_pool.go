package redis

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"trivia-party-service/internal/domain"
	"trivia-party-service/internal/quiz"
)

// PoolSource caches fetched questions in redis lists, one list per
// (difficulty, category) pair:
//
//	RPUSH trivia:pool:{difficulty}:{category} {json raw question}
//
// Draws pop from the list; on a miss the pool is refilled from the upstream
// source under singleflight so concurrent sessions trigger one fetch.
type PoolSource struct {
	client    *redis.Client
	upstream  quiz.Source
	batchSize int
	ttl       time.Duration
	sf        singleflight.Group
}

func NewPoolSource(client *redis.Client, upstream quiz.Source, batchSize int, ttl time.Duration) *PoolSource {
	if batchSize < 1 {
		batchSize = 10
	}
	return &PoolSource{
		client:    client,
		upstream:  upstream,
		batchSize: batchSize,
		ttl:       ttl,
	}
}

func (p *PoolSource) Fetch(ctx context.Context, limit int, difficulty domain.Tier, category string) ([]domain.RawQuestion, error) {
	key := p.key(difficulty, category)

	records, err := p.pop(ctx, key, limit)
	if err != nil {
		// Redis being down degrades to direct upstream fetches.
		log.Printf("redis: pool read failed, fetching direct: %v", err)
		return p.upstream.Fetch(ctx, limit, difficulty, category)
	}
	if len(records) > 0 {
		return records, nil
	}

	_, err, _ = p.sf.Do(key, func() (interface{}, error) {
		batch := p.batchSize
		if limit > batch {
			batch = limit
		}
		fresh, err := p.upstream.Fetch(ctx, batch, difficulty, category)
		if err != nil {
			return nil, err
		}

		pipe := p.client.Pipeline()
		for _, record := range fresh {
			data, err := json.Marshal(record)
			if err != nil {
				continue
			}
			pipe.RPush(ctx, key, data)
		}
		if p.ttl > 0 {
			pipe.Expire(ctx, key, p.ttlWithJitter())
		}
		_, _ = pipe.Exec(ctx)
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	records, err = p.pop(ctx, key, limit)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (p *PoolSource) pop(ctx context.Context, key string, limit int) ([]domain.RawQuestion, error) {
	values, err := p.client.LPopCount(ctx, key, limit).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	records := make([]domain.RawQuestion, 0, len(values))
	for _, value := range values {
		var record domain.RawQuestion
		if err := json.Unmarshal([]byte(value), &record); err != nil {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func (p *PoolSource) key(difficulty domain.Tier, category string) string {
	if category == "" {
		category = "any"
	}
	return "trivia:pool:" + string(difficulty) + ":" + category
}

func (p *PoolSource) ttlWithJitter() time.Duration {
	jitterMax := int64(p.ttl) / 10
	return p.ttl + time.Duration(rand.Int63n(jitterMax+1))
}
