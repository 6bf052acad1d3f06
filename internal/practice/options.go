package practice

import (
	"math/rand/v2"

	"github.com/vytor/wordflash/internal/models"
)

// DefaultOptionCount is the nominal number of multiple-choice options.
const DefaultOptionCount = 4

// MultipleChoiceOptions returns the correct back text plus up to count-1
// distinct distractors from the other cards, shuffled. The list is shorter
// than count when there are not enough distinct distractors.
func MultipleChoiceOptions(correct models.Card, pool []models.Card, count int, rng *rand.Rand) []string {
	if count <= 0 {
		count = DefaultOptionCount
	}

	seen := map[string]bool{correct.BackText: true}
	var distractors []string
	for _, c := range pool {
		if c.ID == correct.ID || c.BackText == "" || seen[c.BackText] {
			continue
		}
		seen[c.BackText] = true
		distractors = append(distractors, c.BackText)
	}

	if rng != nil {
		rng.Shuffle(len(distractors), func(i, j int) {
			distractors[i], distractors[j] = distractors[j], distractors[i]
		})
	}
	if len(distractors) > count-1 {
		distractors = distractors[:count-1]
	}

	options := append([]string{correct.BackText}, distractors...)
	if rng != nil {
		rng.Shuffle(len(options), func(i, j int) {
			options[i], options[j] = options[j], options[i]
		})
	}
	return options
}
