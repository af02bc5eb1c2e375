package quiz

import (
	"math/rand"

	"trivia-party-service/internal/domain"
)

// PickTier draws a difficulty tier by weighted random choice. Negative
// weights count as zero; if every weight is zero the draw falls back to an
// equal three-way split.
func PickTier(ratios domain.DifficultyRatios) domain.Tier {
	weights := [3]int{ratios.Easy, ratios.Normal, ratios.Hard}
	tiers := [3]domain.Tier{domain.TierEasy, domain.TierNormal, domain.TierHard}

	total := 0
	for i, w := range weights {
		if w < 0 {
			weights[i] = 0
			continue
		}
		total += w
	}
	if total == 0 {
		weights = [3]int{1, 1, 1}
		total = 3
	}

	n := rand.Intn(total)
	for i, w := range weights {
		if n < w {
			return tiers[i]
		}
		n -= w
	}
	return domain.TierNormal
}
