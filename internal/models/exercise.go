package models

import "time"

// ExerciseType is one mode of testing a card.
type ExerciseType string

const (
	ExerciseReadingRecognition  ExerciseType = "readingRecognition"
	ExerciseReverseRecognition  ExerciseType = "reverseRecognition"
	ExerciseWritingTranslation  ExerciseType = "writingTranslation"
	ExerciseReverseWriting      ExerciseType = "reverseWriting"
	ExerciseMultipleChoiceText  ExerciseType = "multipleChoiceText"
	ExerciseMultipleChoiceIcon  ExerciseType = "multipleChoiceIcon"
	ExerciseConjugationPractice ExerciseType = "conjugationPractice"
)

// AllExerciseTypes lists every exercise type in queue expansion order.
func AllExerciseTypes() []ExerciseType {
	return []ExerciseType{
		ExerciseReadingRecognition,
		ExerciseReverseRecognition,
		ExerciseWritingTranslation,
		ExerciseReverseWriting,
		ExerciseMultipleChoiceText,
		ExerciseMultipleChoiceIcon,
		ExerciseConjugationPractice,
	}
}

func (t ExerciseType) Valid() bool {
	for _, known := range AllExerciseTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// IsMultipleChoice reports whether the exercise presents a list of options.
func (t ExerciseType) IsMultipleChoice() bool {
	return t == ExerciseMultipleChoiceText || t == ExerciseMultipleChoiceIcon
}

// IsTyping reports whether the exercise expects free-text input.
func (t ExerciseType) IsTyping() bool {
	return t == ExerciseWritingTranslation || t == ExerciseReverseWriting
}

type MasteryLevel string

const (
	MasteryNew       MasteryLevel = "new"
	MasteryLearning  MasteryLevel = "learning"
	MasteryGood      MasteryLevel = "good"
	MasteryMastered  MasteryLevel = "mastered"
	MasteryDifficult MasteryLevel = "difficult"
)

// ExerciseScore is the mastery record of one card for one exercise type.
type ExerciseScore struct {
	Type               ExerciseType `json:"type"`
	CorrectCount       int          `json:"correct_count"`
	IncorrectCount     int          `json:"incorrect_count"`
	ConsecutiveCorrect int          `json:"consecutive_correct"`
	IntervalDays       int          `json:"interval_days"`
	LastPracticed      *time.Time   `json:"last_practiced,omitempty"`
	NextReview         *time.Time   `json:"next_review,omitempty"`
}

func (s ExerciseScore) Attempts() int {
	return s.CorrectCount + s.IncorrectCount
}

// SuccessRate is correct/attempts, 0 when never attempted.
func (s ExerciseScore) SuccessRate() float64 {
	total := s.Attempts()
	if total == 0 {
		return 0
	}
	return float64(s.CorrectCount) / float64(total)
}

// MasteryLevel classifies the score for display.
func (s ExerciseScore) MasteryLevel() MasteryLevel {
	rate := s.SuccessRate()
	switch {
	case s.Attempts() == 0:
		return MasteryNew
	case s.Attempts() >= 3 && rate < 0.5:
		return MasteryDifficult
	case s.CorrectCount >= 5 && rate >= 0.9:
		return MasteryMastered
	case rate >= 0.7:
		return MasteryGood
	default:
		return MasteryLearning
	}
}

// IsDue reports whether the exercise may be practiced at now.
func (s ExerciseScore) IsDue(now time.Time) bool {
	return s.NextReview == nil || !s.NextReview.After(now)
}
