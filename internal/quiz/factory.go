package quiz

import (
	"math/rand"

	"trivia-party-service/internal/domain"
)

// NewQuestion turns a raw record into a typed question for the given tier.
// The option list is the correct answer plus the distractors, shuffled so
// the correct index is not positionally predictable.
func NewQuestion(raw domain.RawQuestion, tier domain.Tier) domain.Question {
	options := make([]string, 0, len(raw.BadAnswers)+1)
	options = append(options, raw.Answer)
	options = append(options, raw.BadAnswers...)

	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return domain.Question{
		Text:       raw.Question,
		Answer:     raw.Answer,
		Options:    options,
		Tier:       tier,
		Multiplier: tier.Multiplier(),
	}
}
