package models

import "time"

// PracticeItem is one (card, exercise type) unit of a session queue.
type PracticeItem struct {
	Card         Card         `json:"card"`
	ExerciseType ExerciseType `json:"exercise_type"`
}

// Equal compares items by card identity and exercise type.
func (p PracticeItem) Equal(other PracticeItem) bool {
	return p.Card.ID == other.Card.ID && p.ExerciseType == other.ExerciseType
}

// SessionRecord is the persisted summary of a finished practice session.
type SessionRecord struct {
	ID              int64     `json:"id"`
	StartedAt       time.Time `json:"started_at"`
	DurationSeconds float64   `json:"duration_seconds"`
	CardsReviewed   int       `json:"cards_reviewed"`
	CorrectCount    int       `json:"correct_count"`
	IncorrectCount  int       `json:"incorrect_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// Accuracy returns correct/(correct+incorrect), 0 without attempts.
func (r SessionRecord) Accuracy() float64 {
	total := r.CorrectCount + r.IncorrectCount
	if total == 0 {
		return 0
	}
	return float64(r.CorrectCount) / float64(total)
}

type SessionFilter struct {
	Since *time.Time
	Limit int
}
