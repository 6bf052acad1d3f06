package models

import (
	"encoding/json"
	"strings"
	"time"
)

type Card struct {
	ID             string                         `json:"id"`
	FrontText      string                         `json:"front_text"`
	BackText       string                         `json:"back_text"`
	Language       string                         `json:"language"`
	IconName       string                         `json:"icon_name,omitempty"`
	WordData       WordData                       `json:"-"`
	ExerciseScores map[ExerciseType]ExerciseScore `json:"exercise_scores"`
	NextReview     *time.Time                     `json:"next_review"`
	ReviewCount    int                            `json:"review_count"`
	CorrectCount   int                            `json:"correct_count"`
	CreatedAt      time.Time                      `json:"created_at"`
	UpdatedAt      time.Time                      `json:"updated_at"`
}

// Clone returns a copy of the card whose score map can be mutated without
// affecting the original.
func (c Card) Clone() Card {
	out := c
	if c.ExerciseScores != nil {
		out.ExerciseScores = make(map[ExerciseType]ExerciseScore, len(c.ExerciseScores))
		for k, v := range c.ExerciseScores {
			out.ExerciseScores[k] = v
		}
	}
	return out
}

// Supports reports whether the card carries the data exerciseType needs.
// Icon exercises need an icon; conjugation practice needs inflection data.
func (c Card) Supports(exerciseType ExerciseType) bool {
	switch exerciseType {
	case ExerciseMultipleChoiceIcon:
		return strings.TrimSpace(c.IconName) != ""
	case ExerciseConjugationPractice:
		return hasInflectionData(c.WordData)
	default:
		return true
	}
}

func hasInflectionData(w WordData) bool {
	switch d := w.(type) {
	case VerbData:
		return d.SeparablePrefix != "" || d.Auxiliary != "" ||
			len(d.PresentForms) > 0 || len(d.PastForms) > 0
	case NounData:
		return d.Gender != ""
	case AdjectiveData:
		return d.Comparative != "" || d.Superlative != ""
	default:
		// Adverbs and cards without word data have nothing to inflect.
		return false
	}
}

// Score returns the score recorded for the exercise type, if any.
func (c Card) Score(t ExerciseType) (ExerciseScore, bool) {
	s, ok := c.ExerciseScores[t]
	return s, ok
}

type cardJSON struct {
	cardAlias
	WordData json.RawMessage `json:"word_data,omitempty"`
}

type cardAlias Card

func (c Card) MarshalJSON() ([]byte, error) {
	wd, err := EncodeWordData(c.WordData)
	if err != nil {
		return nil, err
	}
	return json.Marshal(cardJSON{cardAlias: cardAlias(c), WordData: wd})
}

func (c *Card) UnmarshalJSON(data []byte) error {
	var aux cardJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	wd, err := DecodeWordData(aux.WordData)
	if err != nil {
		return err
	}
	*c = Card(aux.cardAlias)
	c.WordData = wd
	return nil
}

// CardFilter narrows card listings.
type CardFilter struct {
	Language string
	Limit    int
	Offset   int
}
