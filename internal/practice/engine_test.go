package practice_test

import (
	"bytes"
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/practice"
)

// harness records every side effect of an engine.
type harness struct {
	engine        *practice.Engine
	updates       []models.Card
	completions   []practice.CompletionReport
	activeOnDone  []bool
	notifications int
	updateErr     error
	completeErr   error
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{}
	h.engine = practice.NewEngine(practice.EngineConfig{
		UpdateCard: func(ctx context.Context, card models.Card) error {
			h.updates = append(h.updates, card)
			return h.updateErr
		},
		OnComplete: func(ctx context.Context, report practice.CompletionReport) error {
			h.completions = append(h.completions, report)
			h.activeOnDone = append(h.activeOnDone, h.engine.State().Active)
			return h.completeErr
		},
		Observer: func(practice.State) { h.notifications++ },
		Now:      func() time.Time { return now },
		Rand:     rand.New(rand.NewPCG(42, 42)),
		Logger:   logger.New(logger.WithOutput(&bytes.Buffer{}), logger.WithLevel(logger.ERROR)),
	})
	return h
}

func cardsN(n int) []models.Card {
	out := make([]models.Card, n)
	for i := range out {
		id := string(rune('a' + i))
		out[i] = newCard(id, "front "+id, "back "+id)
	}
	return out
}

func TestEngine_StartInitialState(t *testing.T) {
	h := newHarness(t)

	st, err := h.engine.Start(context.Background(), cardsN(3), readingOnly())

	require.NoError(t, err)
	assert.True(t, st.Active)
	assert.False(t, st.NoDueItems)
	assert.Equal(t, 3, st.TotalCount())
	assert.Equal(t, 0, st.CurrentIndex)
	assert.Equal(t, practice.AnswerPending, st.AnswerState)
	assert.Nil(t, st.CurrentAnswerCorrect)
	assert.Nil(t, st.MultipleChoiceOptions)
	assert.Equal(t, now, st.SessionStartTime)
	assert.Equal(t, 1, h.notifications)
}

func TestEngine_StartWithNoDueItems(t *testing.T) {
	h := newHarness(t)
	cards := make([]models.Card, 47)
	for i := range cards {
		cards[i] = newCard(string(rune('A'+i)), "f", "b")
		cards[i].NextReview = ptr(now.Add(24 * time.Hour))
	}

	st, err := h.engine.Start(context.Background(), cards, nil)

	require.NoError(t, err)
	assert.False(t, st.Active)
	assert.True(t, st.NoDueItems)
	assert.Empty(t, h.completions)
}

func TestEngine_StartWithoutSource(t *testing.T) {
	h := newHarness(t)

	_, err := h.engine.Start(context.Background(), nil, nil)

	assert.ErrorIs(t, err, practice.ErrNoCardSource)
}

func TestEngine_SingleItemSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.engine.Start(ctx, cardsN(1), readingOnly())
	require.NoError(t, err)

	h.engine.CheckAnswer(true)
	st, err := h.engine.ConfirmAnswerAndAdvance(ctx, true)

	require.NoError(t, err)
	assert.False(t, st.Active)
	require.Len(t, h.completions, 1)
	assert.Equal(t, 1, h.completions[0].CardsReviewed)
	assert.Equal(t, 1, h.completions[0].CorrectCount)
	assert.Equal(t, 0, h.completions[0].IncorrectCount)
	assert.Equal(t, []bool{true}, h.activeOnDone, "completion must observe an active session")
	require.Len(t, h.updates, 1)
	score, ok := h.updates[0].Score(models.ExerciseReadingRecognition)
	require.True(t, ok)
	assert.Equal(t, 1, score.CorrectCount)

	report, ok := h.engine.LastReport()
	require.True(t, ok)
	assert.Equal(t, 1, report.CorrectCount)
}

func TestEngine_ConfirmAdvances(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.engine.Start(ctx, cardsN(3), readingOnly())
	require.NoError(t, err)

	st := h.engine.CheckAnswer(false)
	assert.Equal(t, practice.AnswerAnswered, st.AnswerState)
	require.NotNil(t, st.CurrentAnswerCorrect)
	assert.False(t, *st.CurrentAnswerCorrect)

	st, err = h.engine.ConfirmAnswerAndAdvance(ctx, false)
	require.NoError(t, err)

	assert.True(t, st.Active)
	assert.Equal(t, 1, st.CurrentIndex)
	assert.Equal(t, practice.AnswerPending, st.AnswerState)
	assert.Nil(t, st.CurrentAnswerCorrect)
	assert.Equal(t, 1, st.IncorrectCount)
	assert.Len(t, h.updates, 1, "exactly one persistence call per outcome")
}

func TestEngine_InvalidOperationsAreNoOps(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// Nothing active yet.
	h.engine.CheckAnswer(true)
	_, err := h.engine.Skip(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, h.notifications)

	_, err = h.engine.Start(ctx, cardsN(2), readingOnly())
	require.NoError(t, err)

	// Confirm before check and override before check do nothing.
	st, err := h.engine.ConfirmAnswerAndAdvance(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 0, st.CurrentIndex)
	st = h.engine.OverrideAnswer(true)
	assert.Nil(t, st.CurrentAnswerCorrect)

	h.engine.CheckAnswer(true)
	st = h.engine.CheckAnswer(false)
	require.NotNil(t, st.CurrentAnswerCorrect)
	assert.True(t, *st.CurrentAnswerCorrect, "second check must not replace the first")

	// Answered items cannot be skipped.
	st, err = h.engine.Skip(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, st.CurrentIndex)
	assert.Equal(t, 0, st.IncorrectCount)
	assert.Empty(t, h.updates)
}

func TestEngine_OverrideThenConfirm(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.engine.Start(ctx, cardsN(2), readingOnly())
	require.NoError(t, err)

	h.engine.CheckAnswer(false)
	st := h.engine.OverrideAnswer(true)
	require.NotNil(t, st.CurrentAnswerCorrect)
	assert.True(t, *st.CurrentAnswerCorrect)
	assert.Equal(t, 0, st.CorrectCount, "override does not count until confirmed")

	st, err = h.engine.ConfirmAnswerAndAdvance(ctx, *st.CurrentAnswerCorrect)
	require.NoError(t, err)
	assert.Equal(t, 1, st.CorrectCount)
	assert.Equal(t, 0, st.IncorrectCount)
}

func TestEngine_SkipEverything(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	const m = 5
	_, err := h.engine.Start(ctx, cardsN(m), readingOnly())
	require.NoError(t, err)

	var st practice.State
	for i := 0; i < m; i++ {
		st, err = h.engine.Skip(ctx)
		require.NoError(t, err)
	}

	assert.False(t, st.Active)
	require.Len(t, h.completions, 1)
	assert.Equal(t, m, h.completions[0].CardsReviewed)
	assert.Equal(t, m, h.completions[0].IncorrectCount)
	assert.Len(t, h.updates, m)
}

func TestEngine_PersistenceErrorPropagatesAfterAdvance(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.engine.Start(ctx, cardsN(2), readingOnly())
	require.NoError(t, err)
	h.updateErr = errors.New("disk full")

	h.engine.CheckAnswer(true)
	st, err := h.engine.ConfirmAnswerAndAdvance(ctx, true)

	require.Error(t, err)
	assert.ErrorIs(t, err, h.updateErr)
	assert.Equal(t, 1, st.CurrentIndex, "state advances even when persistence fails")
	assert.Equal(t, 1, st.CorrectCount)
}

func TestEngine_CompletionErrorSwallowed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.completeErr = errors.New("history unavailable")
	_, err := h.engine.Start(ctx, cardsN(1), readingOnly())
	require.NoError(t, err)

	st, err := h.engine.Skip(ctx)

	require.NoError(t, err)
	assert.False(t, st.Active)
	assert.Len(t, h.completions, 1)
}

func TestEngine_CompletionPanicRecovered(t *testing.T) {
	ctx := context.Background()
	engine := practice.NewEngine(practice.EngineConfig{
		OnComplete: func(context.Context, practice.CompletionReport) error { panic("boom") },
		Now:        func() time.Time { return now },
		Logger:     logger.New(logger.WithOutput(&bytes.Buffer{})),
	})
	_, err := engine.Start(ctx, cardsN(1), readingOnly())
	require.NoError(t, err)

	st := engine.End(ctx)

	assert.False(t, st.Active)
}

func TestEngine_EndEarly(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.engine.Start(ctx, cardsN(3), readingOnly())
	require.NoError(t, err)
	h.engine.CheckAnswer(true)
	_, err = h.engine.ConfirmAnswerAndAdvance(ctx, true)
	require.NoError(t, err)
	before := h.notifications

	st := h.engine.End(ctx)

	assert.False(t, st.Active)
	assert.Empty(t, st.Queue)
	assert.Equal(t, 0, st.CorrectCount)
	assert.Equal(t, before+1, h.notifications, "end notifies exactly once")
	require.Len(t, h.completions, 1)
	assert.Equal(t, 1, h.completions[0].CardsReviewed)

	h.engine.End(ctx)
	assert.Len(t, h.completions, 1, "ending twice fires completion once")
}

func TestEngine_RemoveBeforeCurrentKeepsCurrentItem(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	prefs := &practice.Preferences{Enabled: []models.ExerciseType{
		models.ExerciseReadingRecognition, models.ExerciseReverseRecognition,
	}}
	// Queue: a/read, a/rev, b/read, b/rev, c/read, c/rev
	_, err := h.engine.Start(ctx, cardsN(3), prefs)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		h.engine.CheckAnswer(true)
		_, err = h.engine.ConfirmAnswerAndAdvance(ctx, true)
		require.NoError(t, err)
	}
	before := h.engine.State()
	current, ok := before.CurrentItem()
	require.True(t, ok)
	require.Equal(t, "b", current.Card.ID)
	require.Equal(t, 3, before.CurrentIndex)
	updatesBefore := len(h.updates)

	st, err := h.engine.RemoveCard(ctx, "a")

	require.NoError(t, err)
	assert.Equal(t, 1, st.CurrentIndex, "index drops by the two removed entries")
	after, ok := st.CurrentItem()
	require.True(t, ok)
	assert.True(t, current.Equal(after))
	assert.Equal(t, 4, st.TotalCount())
	assert.Len(t, h.updates, updatesBefore, "removing a non-current card records nothing")
}

func TestEngine_RemoveAfterCurrent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.engine.Start(ctx, cardsN(3), readingOnly())
	require.NoError(t, err)

	st, err := h.engine.RemoveCard(ctx, "c")

	require.NoError(t, err)
	assert.Equal(t, 0, st.CurrentIndex)
	item, _ := st.CurrentItem()
	assert.Equal(t, "a", item.Card.ID)
	assert.Equal(t, 2, st.TotalCount())
	assert.Equal(t, 0, st.IncorrectCount)
}

func TestEngine_RemoveCurrentRecordsOneMiss(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	prefs := &practice.Preferences{Enabled: []models.ExerciseType{
		models.ExerciseReadingRecognition, models.ExerciseReverseRecognition,
	}}
	_, err := h.engine.Start(ctx, cardsN(2), prefs)
	require.NoError(t, err)

	st, err := h.engine.RemoveCard(ctx, "a")

	require.NoError(t, err)
	assert.True(t, st.Active)
	assert.Equal(t, 1, st.IncorrectCount, "one miss regardless of entry count")
	assert.Equal(t, 2, st.TotalCount())
	assert.Equal(t, 0, st.CurrentIndex)
	item, _ := st.CurrentItem()
	assert.Equal(t, "b", item.Card.ID)
	require.Len(t, h.updates, 1)
	assert.Equal(t, "a", h.updates[0].ID)
}

func TestEngine_RemoveLastCardEndsOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.engine.Start(ctx, cardsN(1), readingOnly())
	require.NoError(t, err)
	before := h.notifications

	st, err := h.engine.RemoveCard(ctx, "a")

	require.NoError(t, err)
	assert.False(t, st.Active)
	assert.Equal(t, before+1, h.notifications, "exactly one notification")
	require.Len(t, h.completions, 1)
	assert.Equal(t, 1, h.completions[0].CardsReviewed)
	assert.Equal(t, []bool{true}, h.activeOnDone)
}

func TestEngine_RemoveCurrentAtTailEnds(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.engine.Start(ctx, cardsN(2), readingOnly())
	require.NoError(t, err)
	h.engine.CheckAnswer(true)
	_, err = h.engine.ConfirmAnswerAndAdvance(ctx, true)
	require.NoError(t, err)

	st, err := h.engine.RemoveCard(ctx, "b")

	require.NoError(t, err)
	assert.False(t, st.Active)
	require.Len(t, h.completions, 1)
	assert.Equal(t, 2, h.completions[0].CardsReviewed)
}

func TestEngine_LaterItemsSeeEarlierUpdates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	prefs := &practice.Preferences{Enabled: []models.ExerciseType{
		models.ExerciseReadingRecognition, models.ExerciseReverseRecognition,
	}}
	_, err := h.engine.Start(ctx, cardsN(1), prefs)
	require.NoError(t, err)

	h.engine.CheckAnswer(true)
	_, err = h.engine.ConfirmAnswerAndAdvance(ctx, true)
	require.NoError(t, err)
	_, err = h.engine.Skip(ctx)
	require.NoError(t, err)

	require.Len(t, h.updates, 2)
	last := h.updates[1]
	assert.Len(t, last.ExerciseScores, 2, "second update must carry the first exercise's score")
	assert.Equal(t, 2, last.ReviewCount)
}

func TestEngine_EndedSessionLeavesUnpracticedExerciseDue(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	prefs := practice.Preferences{Enabled: []models.ExerciseType{
		models.ExerciseReadingRecognition,
		models.ExerciseReverseRecognition,
	}}
	_, err := h.engine.Start(ctx, cardsN(1), &prefs)
	require.NoError(t, err)

	h.engine.CheckAnswer(true)
	_, err = h.engine.ConfirmAnswerAndAdvance(ctx, true)
	require.NoError(t, err)
	h.engine.End(ctx)

	require.Len(t, h.updates, 1)
	updated := h.updates[0]
	require.NotNil(t, updated.NextReview)
	assert.False(t, updated.NextReview.After(now), "card stays in review while an exercise is unpracticed")
	assert.Contains(t, practice.DueExercises(updated, prefs, now), models.ExerciseReverseRecognition)
	assert.NotContains(t, practice.DueExercises(updated, prefs, now), models.ExerciseReadingRecognition)
}

func TestEngine_MultipleChoiceOptionsGenerated(t *testing.T) {
	h := newHarness(t)
	prefs := &practice.Preferences{Enabled: []models.ExerciseType{models.ExerciseMultipleChoiceText}}

	st, err := h.engine.Start(context.Background(), cardsN(6), prefs)

	require.NoError(t, err)
	require.Len(t, st.MultipleChoiceOptions, practice.DefaultOptionCount)
	assert.Contains(t, st.MultipleChoiceOptions, "back a")
}

func TestEngine_UserInputClearedOnAdvance(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	prefs := &practice.Preferences{Enabled: []models.ExerciseType{models.ExerciseWritingTranslation}}
	_, err := h.engine.Start(ctx, cardsN(2), prefs)
	require.NoError(t, err)

	st := h.engine.SetUserInput("bck a")
	assert.Equal(t, "bck a", st.UserInput)
	h.engine.CheckAnswer(false)
	st, err = h.engine.ConfirmAnswerAndAdvance(ctx, false)
	require.NoError(t, err)

	assert.Empty(t, st.UserInput)
}

func TestEngine_UserInputOnlyForTypingExercises(t *testing.T) {
	h := newHarness(t)
	_, err := h.engine.Start(context.Background(), cardsN(1), readingOnly())
	require.NoError(t, err)
	before := h.notifications

	st := h.engine.SetUserInput("house")

	assert.Empty(t, st.UserInput)
	assert.Equal(t, before, h.notifications, "ignored input must not notify")
}

func TestEngine_RestartFromSource(t *testing.T) {
	ctx := context.Background()
	calls := 0
	engine := practice.NewEngine(practice.EngineConfig{
		Source: func(context.Context) ([]models.Card, error) {
			calls++
			return cardsN(2), nil
		},
		Now:    func() time.Time { return now },
		Logger: logger.New(logger.WithOutput(&bytes.Buffer{})),
	})
	_, err := engine.Start(ctx, nil, readingOnly())
	require.NoError(t, err)
	engine.CheckAnswer(true)
	_, err = engine.ConfirmAnswerAndAdvance(ctx, true)
	require.NoError(t, err)

	st, err := engine.Restart(ctx)

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.True(t, st.Active)
	assert.Equal(t, 0, st.CurrentIndex)
	assert.Equal(t, 0, st.CorrectCount)
	assert.Equal(t, 2, st.TotalCount())
}

func TestEngine_RestartWithoutSourceUsesUpdatedCards(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.engine.Start(ctx, cardsN(2), readingOnly())
	require.NoError(t, err)
	h.engine.CheckAnswer(true)
	_, err = h.engine.ConfirmAnswerAndAdvance(ctx, true)
	require.NoError(t, err)

	st, err := h.engine.Restart(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, st.TotalCount(), "the reviewed card is no longer due")
	item, _ := st.CurrentItem()
	assert.Equal(t, "b", item.Card.ID)
}

func TestEngine_Stats(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.engine.Start(ctx, cardsN(4), readingOnly())
	require.NoError(t, err)
	h.engine.CheckAnswer(true)
	_, err = h.engine.ConfirmAnswerAndAdvance(ctx, true)
	require.NoError(t, err)
	_, err = h.engine.Skip(ctx)
	require.NoError(t, err)

	stats := h.engine.Stats()

	assert.Equal(t, 4, stats.TotalCount)
	assert.Equal(t, 2, stats.CurrentIndex)
	assert.Equal(t, 1, stats.RemainingCount)
	assert.InDelta(t, 0.75, stats.Progress, 1e-9)
	assert.InDelta(t, 0.5, stats.Accuracy, 1e-9)
	assert.Equal(t, time.Duration(0), stats.Duration)
}
