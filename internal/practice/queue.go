// Package practice builds practice queues of due (card, exercise) pairs and
// drives a learner through them.
package practice

import (
	"math/rand/v2"
	"time"

	"github.com/vytor/wordflash/internal/models"
)

// Preferences control which exercises a session offers.
type Preferences struct {
	// Enabled lists the exercise types to offer. Empty means all types.
	Enabled []models.ExerciseType `json:"enabled"`
	// Language restricts the session to one language code when set.
	Language string `json:"language,omitempty"`
	// MaxItems caps the queue length when positive.
	MaxItems int `json:"max_items,omitempty"`
	// Shuffle randomizes queue order.
	Shuffle bool `json:"shuffle,omitempty"`
}

// DefaultPreferences enables every exercise type.
func DefaultPreferences() Preferences {
	return Preferences{Enabled: models.AllExerciseTypes()}
}

func (p Preferences) enabledTypes() []models.ExerciseType {
	if len(p.Enabled) == 0 {
		return models.AllExerciseTypes()
	}
	// Keep canonical order regardless of the order given.
	want := make(map[models.ExerciseType]bool, len(p.Enabled))
	for _, t := range p.Enabled {
		want[t] = true
	}
	var out []models.ExerciseType
	for _, t := range models.AllExerciseTypes() {
		if want[t] {
			out = append(out, t)
		}
	}
	return out
}

// IsExerciseDue reports whether exerciseType is due for card at now. A scored
// exercise follows its own NextReview. The card's NextReview only decides for
// cards that have no scores at all; once any exercise is scored, exercises
// never practiced are due right away.
func IsExerciseDue(card models.Card, exerciseType models.ExerciseType, now time.Time) bool {
	if score, ok := card.Score(exerciseType); ok {
		return score.IsDue(now)
	}
	if len(card.ExerciseScores) > 0 {
		return true
	}
	return card.NextReview == nil || !card.NextReview.After(now)
}

// IsApplicable reports whether exerciseType makes sense for the card's data.
func IsApplicable(card models.Card, exerciseType models.ExerciseType) bool {
	return card.Supports(exerciseType)
}

// DueExercises lists the enabled, applicable and due exercise types of card
// in canonical order.
func DueExercises(card models.Card, prefs Preferences, now time.Time) []models.ExerciseType {
	var out []models.ExerciseType
	for _, t := range prefs.enabledTypes() {
		if IsApplicable(card, t) && IsExerciseDue(card, t, now) {
			out = append(out, t)
		}
	}
	return out
}

// BuildQueue expands the due cards into practice items. Order follows the
// input card order unless prefs.Shuffle is set, in which case rng is used.
// rng may be nil when shuffling is off.
func BuildQueue(cards []models.Card, prefs Preferences, now time.Time, rng *rand.Rand) []models.PracticeItem {
	var queue []models.PracticeItem
	for _, card := range cards {
		if prefs.Language != "" && card.Language != prefs.Language {
			continue
		}
		for _, t := range DueExercises(card, prefs, now) {
			queue = append(queue, models.PracticeItem{Card: card, ExerciseType: t})
		}
	}

	if prefs.Shuffle && rng != nil {
		rng.Shuffle(len(queue), func(i, j int) {
			queue[i], queue[j] = queue[j], queue[i]
		})
	}
	if prefs.MaxItems > 0 && len(queue) > prefs.MaxItems {
		queue = queue[:prefs.MaxItems]
	}
	return queue
}
