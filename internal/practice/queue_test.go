package practice_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/practice"
)

var now = time.Date(2026, 5, 4, 18, 30, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func newCard(id, front, back string) models.Card {
	return models.Card{ID: id, FrontText: front, BackText: back, Language: "de"}
}

func readingOnly() *practice.Preferences {
	return &practice.Preferences{Enabled: []models.ExerciseType{models.ExerciseReadingRecognition}}
}

func TestBuildQueue_FreshCardGetsEveryApplicableType(t *testing.T) {
	c := newCard("1", "Haus", "house")

	queue := practice.BuildQueue([]models.Card{c}, practice.DefaultPreferences(), now, nil)

	var types []models.ExerciseType
	for _, item := range queue {
		assert.Equal(t, "1", item.Card.ID)
		types = append(types, item.ExerciseType)
	}
	assert.Equal(t, []models.ExerciseType{
		models.ExerciseReadingRecognition,
		models.ExerciseReverseRecognition,
		models.ExerciseWritingTranslation,
		models.ExerciseReverseWriting,
		models.ExerciseMultipleChoiceText,
	}, types, "icon and conjugation exercises need extra card data")
}

func TestBuildQueue_FutureCardWithoutScoresExcluded(t *testing.T) {
	c := newCard("1", "Haus", "house")
	c.NextReview = ptr(now.Add(24 * time.Hour))

	queue := practice.BuildQueue([]models.Card{c}, practice.DefaultPreferences(), now, nil)

	assert.Empty(t, queue)
}

func TestBuildQueue_PerExerciseDueOverridesCard(t *testing.T) {
	c := newCard("1", "Haus", "house")
	c.NextReview = ptr(now.Add(24 * time.Hour))
	c.ExerciseScores = map[models.ExerciseType]models.ExerciseScore{
		models.ExerciseReadingRecognition: {
			Type:       models.ExerciseReadingRecognition,
			NextReview: ptr(now.Add(-time.Hour)),
		},
		models.ExerciseWritingTranslation: {
			Type:       models.ExerciseWritingTranslation,
			NextReview: ptr(now.Add(48 * time.Hour)),
		},
	}

	queue := practice.BuildQueue([]models.Card{c}, practice.DefaultPreferences(), now, nil)

	var types []models.ExerciseType
	for _, item := range queue {
		types = append(types, item.ExerciseType)
	}
	assert.Equal(t, []models.ExerciseType{
		models.ExerciseReadingRecognition,
		models.ExerciseReverseRecognition,
		models.ExerciseReverseWriting,
		models.ExerciseMultipleChoiceText,
	}, types, "scored exercises follow their own dates and unscored ones are due")
}

func TestDueExercises_UnscoredTypeDueAfterPartialSession(t *testing.T) {
	c := newCard("1", "Haus", "house")
	c.NextReview = ptr(now.Add(24 * time.Hour))
	c.ExerciseScores = map[models.ExerciseType]models.ExerciseScore{
		models.ExerciseReadingRecognition: {
			Type:       models.ExerciseReadingRecognition,
			NextReview: ptr(now.Add(24 * time.Hour)),
		},
	}
	prefs := practice.Preferences{Enabled: []models.ExerciseType{
		models.ExerciseReadingRecognition,
		models.ExerciseReverseRecognition,
	}}

	due := practice.DueExercises(c, prefs, now)

	assert.Equal(t, []models.ExerciseType{models.ExerciseReverseRecognition}, due)
}

func TestBuildQueue_DueExactlyNow(t *testing.T) {
	c := newCard("1", "Haus", "house")
	c.NextReview = ptr(now)

	queue := practice.BuildQueue([]models.Card{c}, *readingOnly(), now, nil)

	assert.Len(t, queue, 1)
}

func TestBuildQueue_StableOrder(t *testing.T) {
	cards := []models.Card{newCard("b", "Baum", "tree"), newCard("a", "Apfel", "apple"), newCard("c", "Katze", "cat")}

	queue := practice.BuildQueue(cards, *readingOnly(), now, nil)

	require.Len(t, queue, 3)
	assert.Equal(t, "b", queue[0].Card.ID)
	assert.Equal(t, "a", queue[1].Card.ID)
	assert.Equal(t, "c", queue[2].Card.ID)
}

func TestBuildQueue_LanguageAndLimit(t *testing.T) {
	nl := newCard("nl", "huis", "house")
	nl.Language = "nl"
	cards := []models.Card{newCard("1", "Haus", "house"), nl, newCard("2", "Baum", "tree"), newCard("3", "Katze", "cat")}

	prefs := practice.Preferences{Enabled: []models.ExerciseType{models.ExerciseReadingRecognition}, Language: "de", MaxItems: 2}
	queue := practice.BuildQueue(cards, prefs, now, nil)

	require.Len(t, queue, 2)
	assert.Equal(t, "1", queue[0].Card.ID)
	assert.Equal(t, "2", queue[1].Card.ID)
}

func TestBuildQueue_ShuffleKeepsItems(t *testing.T) {
	cards := []models.Card{newCard("1", "a", "a"), newCard("2", "b", "b"), newCard("3", "c", "c"), newCard("4", "d", "d")}
	prefs := practice.Preferences{Enabled: []models.ExerciseType{models.ExerciseReadingRecognition}, Shuffle: true}

	queue := practice.BuildQueue(cards, prefs, now, rand.New(rand.NewPCG(1, 2)))

	ids := map[string]bool{}
	for _, item := range queue {
		ids[item.Card.ID] = true
	}
	assert.Len(t, ids, 4)
}

func TestIsApplicable(t *testing.T) {
	base := newCard("1", "gehen", "to go")

	withIcon := base
	withIcon.IconName = "directions_walk"

	tests := []struct {
		name     string
		card     models.Card
		exercise models.ExerciseType
		expected bool
	}{
		{"reading always", base, models.ExerciseReadingRecognition, true},
		{"icon missing", base, models.ExerciseMultipleChoiceIcon, false},
		{"icon present", withIcon, models.ExerciseMultipleChoiceIcon, true},
		{"conjugation without word data", base, models.ExerciseConjugationPractice, false},
		{"verb with auxiliary", withWordData(base, models.VerbData{Auxiliary: "sein"}), models.ExerciseConjugationPractice, true},
		{"verb with present forms", withWordData(base, models.VerbData{PresentForms: []string{"gehe", "gehst"}}), models.ExerciseConjugationPractice, true},
		{"verb without inflection fields", withWordData(base, models.VerbData{IsRegular: ptr(false)}), models.ExerciseConjugationPractice, false},
		{"noun with gender", withWordData(base, models.NounData{Gender: "der"}), models.ExerciseConjugationPractice, true},
		{"noun without gender", withWordData(base, models.NounData{Plural: "Hunde"}), models.ExerciseConjugationPractice, false},
		{"adjective with comparative", withWordData(base, models.AdjectiveData{Comparative: "schneller"}), models.ExerciseConjugationPractice, true},
		{"adjective empty", withWordData(base, models.AdjectiveData{}), models.ExerciseConjugationPractice, false},
		{"adverb never", withWordData(base, models.AdverbData{UsageNote: "formal"}), models.ExerciseConjugationPractice, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, practice.IsApplicable(tt.card, tt.exercise))
		})
	}
}

func withWordData(c models.Card, w models.WordData) models.Card {
	c.WordData = w
	return c
}

func TestMultipleChoiceOptions(t *testing.T) {
	correct := newCard("1", "Hund", "dog")
	pool := []models.Card{
		correct,
		newCard("2", "Katze", "cat"),
		newCard("3", "Kater", "cat"),
		newCard("4", "Hündchen", "dog"),
		newCard("5", "Maus", "mouse"),
		newCard("6", "Vogel", "bird"),
	}

	options := practice.MultipleChoiceOptions(correct, pool, 4, rand.New(rand.NewPCG(7, 7)))

	assert.Len(t, options, 4)
	count := 0
	seen := map[string]bool{}
	for _, o := range options {
		if o == "dog" {
			count++
		}
		assert.False(t, seen[o], "option %q repeated", o)
		seen[o] = true
	}
	assert.Equal(t, 1, count, "correct answer must appear exactly once")
}

func TestMultipleChoiceOptions_ShortPool(t *testing.T) {
	correct := newCard("1", "Hund", "dog")
	pool := []models.Card{correct, newCard("2", "Katze", "cat"), newCard("3", "Köter", "dog")}

	options := practice.MultipleChoiceOptions(correct, pool, 4, nil)

	assert.ElementsMatch(t, []string{"dog", "cat"}, options)
}
