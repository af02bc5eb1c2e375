package trivia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"trivia-party-service/internal/domain"
)

// DefaultBaseURL points at the public quizzAPI instance.
const DefaultBaseURL = "https://quizzapi.jomoreschi.fr/api/v2"

// Client fetches questions from the quizzAPI HTTP endpoint. It implements
// quiz.Source; callers treat any failure as "no questions".
type Client struct {
	baseURL string
	hc      *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: timeout},
	}
}

type quizResponse struct {
	Quizzes []quizRecord `json:"quizzes"`
}

type quizRecord struct {
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	BadAnswers []string `json:"badAnswers"`
	Category   string   `json:"category"`
	Difficulty string   `json:"difficulty"`
}

func (c *Client) Fetch(ctx context.Context, limit int, difficulty domain.Tier, category string) ([]domain.RawQuestion, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if difficulty != "" {
		query.Set("difficulty", string(difficulty))
	}
	if category != "" {
		query.Set("category", category)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/quiz?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch questions: unexpected status %d", resp.StatusCode)
	}

	var payload quizResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}

	records := make([]domain.RawQuestion, 0, len(payload.Quizzes))
	for _, q := range payload.Quizzes {
		records = append(records, domain.RawQuestion{
			Question:   q.Question,
			Answer:     q.Answer,
			BadAnswers: q.BadAnswers,
			Category:   q.Category,
			Difficulty: q.Difficulty,
		})
	}
	return records, nil
}
