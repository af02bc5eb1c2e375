package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-party-service/internal/domain"
)

// BankSource draws random questions from a Postgres question bank. Rows
// store the full raw record as JSONB, mirroring what the trivia API returns.
type BankSource struct {
	pool *pgxpool.Pool
}

func NewBankSource(pool *pgxpool.Pool) *BankSource {
	return &BankSource{pool: pool}
}

func (b *BankSource) Fetch(ctx context.Context, limit int, difficulty domain.Tier, category string) ([]domain.RawQuestion, error) {
	rows, err := b.pool.Query(ctx,
		`SELECT data FROM questions
		 WHERE difficulty = $1 AND ($2 = '' OR category = $2)
		 ORDER BY random() LIMIT $3`,
		string(difficulty), category, limit)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	records := make([]domain.RawQuestion, 0, limit)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		var record domain.RawQuestion
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, fmt.Errorf("unmarshal question: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
