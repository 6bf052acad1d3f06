package practice

import (
	"time"

	"github.com/vytor/wordflash/internal/models"
)

type AnswerState string

const (
	AnswerPending  AnswerState = "pending"
	AnswerAnswered AnswerState = "answered"
)

// State is an immutable snapshot of a practice session.
type State struct {
	Active                bool                  `json:"active"`
	NoDueItems            bool                  `json:"no_due_items"`
	Queue                 []models.PracticeItem `json:"queue"`
	CurrentIndex          int                   `json:"current_index"`
	AnswerState           AnswerState           `json:"answer_state"`
	CurrentAnswerCorrect  *bool                 `json:"current_answer_correct"`
	CorrectCount          int                   `json:"correct_count"`
	IncorrectCount        int                   `json:"incorrect_count"`
	Reviewed              int                   `json:"reviewed"`
	UserInput             string                `json:"user_input"`
	MultipleChoiceOptions []string              `json:"multiple_choice_options"`
	SessionStartTime      time.Time             `json:"session_start_time"`
}

func (s State) TotalCount() int {
	return len(s.Queue)
}

// CurrentItem returns the item under CurrentIndex while the session is active.
func (s State) CurrentItem() (models.PracticeItem, bool) {
	if !s.Active || s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Queue) {
		return models.PracticeItem{}, false
	}
	return s.Queue[s.CurrentIndex], true
}

func (s State) clone() State {
	out := s
	if s.Queue != nil {
		out.Queue = append([]models.PracticeItem(nil), s.Queue...)
	}
	if s.MultipleChoiceOptions != nil {
		out.MultipleChoiceOptions = append([]string(nil), s.MultipleChoiceOptions...)
	}
	if s.CurrentAnswerCorrect != nil {
		v := *s.CurrentAnswerCorrect
		out.CurrentAnswerCorrect = &v
	}
	return out
}

// Stats are the derived, read-only views of a session.
type Stats struct {
	TotalCount     int           `json:"total_count"`
	CurrentIndex   int           `json:"current_index"`
	RemainingCount int           `json:"remaining_count"`
	CorrectCount   int           `json:"correct_count"`
	IncorrectCount int           `json:"incorrect_count"`
	Reviewed       int           `json:"reviewed"`
	Progress       float64       `json:"progress"`
	Accuracy       float64       `json:"accuracy"`
	Duration       time.Duration `json:"duration"`
}

func statsFor(s State, now time.Time) Stats {
	st := Stats{
		TotalCount:     s.TotalCount(),
		CurrentIndex:   s.CurrentIndex,
		CorrectCount:   s.CorrectCount,
		IncorrectCount: s.IncorrectCount,
		Reviewed:       s.Reviewed,
	}
	if st.TotalCount > 0 {
		st.Progress = float64(s.CurrentIndex+1) / float64(st.TotalCount)
		st.RemainingCount = st.TotalCount - s.CurrentIndex - 1
	}
	if attempts := s.CorrectCount + s.IncorrectCount; attempts > 0 {
		st.Accuracy = float64(s.CorrectCount) / float64(attempts)
	}
	if !s.SessionStartTime.IsZero() {
		st.Duration = now.Sub(s.SessionStartTime)
	}
	return st
}

// CompletionReport is handed to the completion callback when a session ends.
type CompletionReport struct {
	CardsReviewed  int           `json:"cards_reviewed"`
	CorrectCount   int           `json:"correct_count"`
	IncorrectCount int           `json:"incorrect_count"`
	StartedAt      time.Time     `json:"started_at"`
	Duration       time.Duration `json:"duration"`
}
