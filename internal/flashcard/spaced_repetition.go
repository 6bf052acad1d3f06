package flashcard

import (
	"math"
	"time"

	"github.com/vytor/wordflash/internal/models"
)

const (
	// BaseIntervalDays is the interval after a first correct answer and after any miss.
	BaseIntervalDays = 1
	// MaxIntervalDays caps interval growth.
	MaxIntervalDays = 365
)

// ApplyExerciseResult records one attempt on an exercise score and schedules
// its next review.
//
// A miss collapses the interval to one day. A correct answer grows the interval
// by a multiplier between 1.5 and 2.5 depending on the success rate, and always
// by at least one day.
func ApplyExerciseResult(score models.ExerciseScore, correct bool, now time.Time) models.ExerciseScore {
	interval := BaseIntervalDays
	if correct {
		score.CorrectCount++
		score.ConsecutiveCorrect++
		if score.IntervalDays > 0 {
			multiplier := 1.5 + score.SuccessRate()
			interval = int(math.Ceil(float64(score.IntervalDays) * multiplier))
			if interval <= score.IntervalDays {
				interval = score.IntervalDays + 1
			}
		}
		if interval > MaxIntervalDays {
			interval = MaxIntervalDays
		}
	} else {
		score.IncorrectCount++
		score.ConsecutiveCorrect = 0
	}

	practiced := now
	next := now.Add(time.Duration(interval) * 24 * time.Hour)
	score.IntervalDays = interval
	score.LastPracticed = &practiced
	score.NextReview = &next
	return score
}

// ApplyToCard updates the card's score for exerciseType and its aggregate
// counters, then moves the card's own NextReview to the earliest review among
// the exercises the card supports. The input card is not modified.
func ApplyToCard(card models.Card, exerciseType models.ExerciseType, correct bool, now time.Time) models.Card {
	card = card.Clone()
	if card.ExerciseScores == nil {
		card.ExerciseScores = make(map[models.ExerciseType]models.ExerciseScore)
	}

	score, ok := card.ExerciseScores[exerciseType]
	if !ok {
		score = models.ExerciseScore{Type: exerciseType}
	}
	card.ExerciseScores[exerciseType] = ApplyExerciseResult(score, correct, now)

	card.ReviewCount++
	if correct {
		card.CorrectCount++
	}
	card.NextReview = NextCardReview(card, now)
	card.UpdatedAt = now
	return card
}

// NextCardReview returns the earliest moment any supported exercise of card
// becomes due. A supported exercise without a score is due at now, so a card
// with unpracticed exercises stays in review. A card with no scores keeps its
// own NextReview.
func NextCardReview(card models.Card, now time.Time) *time.Time {
	if len(card.ExerciseScores) == 0 {
		return card.NextReview
	}
	var earliest *time.Time
	for _, t := range models.AllExerciseTypes() {
		if !card.Supports(t) {
			continue
		}
		at := now
		if s, ok := card.Score(t); ok && s.NextReview != nil {
			at = *s.NextReview
		}
		if earliest == nil || at.Before(*earliest) {
			earliest = &at
		}
	}
	return earliest
}
