package practice

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/vytor/wordflash/internal/flashcard"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
)

// ErrNoCardSource is returned when a session is started without cards and no
// source is configured.
var ErrNoCardSource = errors.New("practice: no cards given and no card source configured")

// UpdateCardFunc persists a card after one of its exercises was resolved.
type UpdateCardFunc func(ctx context.Context, card models.Card) error

// CompleteFunc is called once when a session ends.
type CompleteFunc func(ctx context.Context, report CompletionReport) error

// CardSource loads the cards a session is built from.
type CardSource func(ctx context.Context) ([]models.Card, error)

type EngineConfig struct {
	UpdateCard  UpdateCardFunc
	OnComplete  CompleteFunc
	Source      CardSource
	Observer    func(State)
	OptionCount int
	Now         func() time.Time
	Rand        *rand.Rand
	Logger      *logger.Logger
}

// Engine drives a single practice session. It is not safe for concurrent use:
// callers must not start another operation on the same Engine while one is
// in flight.
type Engine struct {
	cfg        EngineConfig
	log        *logger.Logger
	state      State
	prefs      Preferences
	cards      []models.Card
	latest     map[string]models.Card
	lastReport *CompletionReport
}

func NewEngine(cfg EngineConfig) *Engine {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed))
	}
	if cfg.OptionCount <= 0 {
		cfg.OptionCount = DefaultOptionCount
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}
	return &Engine{
		cfg:    cfg,
		log:    log.WithPrefix("practice"),
		prefs:  DefaultPreferences(),
		latest: make(map[string]models.Card),
	}
}

// State returns a snapshot of the current session.
func (e *Engine) State() State {
	return e.state.clone()
}

func (e *Engine) Stats() Stats {
	return statsFor(e.state, e.cfg.Now())
}

// LastReport returns the report of the most recently ended session.
func (e *Engine) LastReport() (CompletionReport, bool) {
	if e.lastReport == nil {
		return CompletionReport{}, false
	}
	return *e.lastReport, true
}

// Start builds the queue and begins a session. When cards is nil the
// configured source is used. A nil prefs enables every exercise type.
func (e *Engine) Start(ctx context.Context, cards []models.Card, prefs *Preferences) (State, error) {
	if cards == nil {
		if e.cfg.Source == nil {
			return e.State(), ErrNoCardSource
		}
		loaded, err := e.cfg.Source(ctx)
		if err != nil {
			return e.State(), fmt.Errorf("load practice cards: %w", err)
		}
		cards = loaded
	}
	if prefs != nil {
		e.prefs = *prefs
	} else {
		e.prefs = DefaultPreferences()
	}
	e.begin(cards)
	e.notify()
	return e.State(), nil
}

// Restart rebuilds the queue from the card source, or from the cards of the
// previous start with their latest updates, and resets all counters.
func (e *Engine) Restart(ctx context.Context) (State, error) {
	var cards []models.Card
	if e.cfg.Source != nil {
		loaded, err := e.cfg.Source(ctx)
		if err != nil {
			return e.State(), fmt.Errorf("reload practice cards: %w", err)
		}
		cards = loaded
	} else {
		cards = make([]models.Card, len(e.cards))
		for i, c := range e.cards {
			if l, ok := e.latest[c.ID]; ok {
				c = l
			}
			cards[i] = c
		}
	}
	e.log.Debug("restarting session with %d cards", len(cards))
	e.begin(cards)
	e.notify()
	return e.State(), nil
}

func (e *Engine) begin(cards []models.Card) {
	now := e.cfg.Now()
	e.cards = append([]models.Card(nil), cards...)
	e.latest = make(map[string]models.Card, len(cards))
	for _, c := range cards {
		e.latest[c.ID] = c
	}

	queue := BuildQueue(e.cards, e.prefs, now, e.cfg.Rand)
	if len(queue) == 0 {
		e.log.Info("no due items among %d cards", len(cards))
		e.state = State{NoDueItems: true}
		return
	}

	e.state = State{
		Active:           true,
		Queue:            queue,
		AnswerState:      AnswerPending,
		SessionStartTime: now,
	}
	e.prepareCurrent()
	e.log.Info("session started: items=%d cards=%d", len(queue), len(cards))
}

// CheckAnswer records the learner's answer for the current item.
func (e *Engine) CheckAnswer(isCorrect bool) State {
	if !e.state.Active || e.state.AnswerState != AnswerPending {
		e.log.Debug("check answer ignored: active=%t answer_state=%s", e.state.Active, e.state.AnswerState)
		return e.State()
	}
	e.state.CurrentAnswerCorrect = &isCorrect
	e.state.AnswerState = AnswerAnswered
	e.notify()
	return e.State()
}

// OverrideAnswer replaces the checked answer before it is confirmed.
func (e *Engine) OverrideAnswer(isCorrect bool) State {
	if !e.state.Active || e.state.AnswerState != AnswerAnswered {
		e.log.Debug("override ignored: active=%t answer_state=%s", e.state.Active, e.state.AnswerState)
		return e.State()
	}
	e.state.CurrentAnswerCorrect = &isCorrect
	e.notify()
	return e.State()
}

// SetUserInput stores typed text for the current item. Only typing
// exercises take input.
func (e *Engine) SetUserInput(text string) State {
	if !e.state.Active || e.state.AnswerState != AnswerPending {
		return e.State()
	}
	if item := e.state.Queue[e.state.CurrentIndex]; !item.ExerciseType.IsTyping() {
		e.log.Debug("input ignored for %s exercise", item.ExerciseType)
		return e.State()
	}
	e.state.UserInput = text
	e.notify()
	return e.State()
}

// ConfirmAnswerAndAdvance persists markedCorrect for the current item and
// moves on, ending the session after the last item. A persistence error is
// returned after the session has already advanced.
func (e *Engine) ConfirmAnswerAndAdvance(ctx context.Context, markedCorrect bool) (State, error) {
	if !e.state.Active || e.state.AnswerState != AnswerAnswered {
		e.log.Debug("confirm ignored: active=%t answer_state=%s", e.state.Active, e.state.AnswerState)
		return e.State(), nil
	}
	return e.resolveCurrent(ctx, markedCorrect)
}

// Skip records the current, unanswered item as incorrect and moves on.
// Answered items cannot be skipped.
func (e *Engine) Skip(ctx context.Context) (State, error) {
	if !e.state.Active || e.state.AnswerState != AnswerPending {
		e.log.Debug("skip ignored: active=%t answer_state=%s", e.state.Active, e.state.AnswerState)
		return e.State(), nil
	}
	return e.resolveCurrent(ctx, false)
}

func (e *Engine) resolveCurrent(ctx context.Context, correct bool) (State, error) {
	item := e.state.Queue[e.state.CurrentIndex]
	err := e.recordOutcome(ctx, item, correct)

	if e.state.CurrentIndex+1 >= len(e.state.Queue) {
		e.finish(ctx)
	} else {
		e.state.CurrentIndex++
		e.prepareCurrent()
	}
	e.notify()
	return e.State(), err
}

// RemoveCard drops every queue entry of cardID. When the current item
// belongs to the card, one incorrect outcome is recorded first. Removing
// entries before the current position keeps the current item in place.
func (e *Engine) RemoveCard(ctx context.Context, cardID string) (State, error) {
	if !e.state.Active {
		return e.State(), nil
	}

	idx := e.state.CurrentIndex
	current := e.state.Queue[idx]
	currentRemoved := current.Card.ID == cardID

	kept := make([]models.PracticeItem, 0, len(e.state.Queue))
	removedBefore := 0
	for i, item := range e.state.Queue {
		if item.Card.ID != cardID {
			kept = append(kept, item)
			continue
		}
		if i < idx {
			removedBefore++
		}
	}
	if len(kept) == len(e.state.Queue) {
		return e.State(), nil
	}

	var err error
	if currentRemoved {
		err = e.recordOutcome(ctx, current, false)
	}
	e.log.Debug("removing card %s: entries=%d before_current=%d", cardID, len(e.state.Queue)-len(kept), removedBefore)

	e.state.Queue = kept
	newIdx := idx - removedBefore

	switch {
	case len(kept) == 0:
		e.finish(ctx)
	case currentRemoved && newIdx >= len(kept):
		e.finish(ctx)
	case currentRemoved:
		e.state.CurrentIndex = newIdx
		e.prepareCurrent()
	default:
		e.state.CurrentIndex = newIdx
	}
	e.notify()
	return e.State(), err
}

// End terminates the session early. The completion callback still fires.
func (e *Engine) End(ctx context.Context) State {
	if !e.state.Active {
		return e.State()
	}
	e.finish(ctx)
	e.notify()
	return e.State()
}

// recordOutcome applies the scheduling rule to the item's card, counts the
// outcome and persists the card.
func (e *Engine) recordOutcome(ctx context.Context, item models.PracticeItem, correct bool) error {
	card, ok := e.latest[item.Card.ID]
	if !ok {
		card = item.Card
	}
	updated := flashcard.ApplyToCard(card, item.ExerciseType, correct, e.cfg.Now())
	e.latest[updated.ID] = updated
	for i := range e.state.Queue {
		if e.state.Queue[i].Card.ID == updated.ID {
			e.state.Queue[i].Card = updated
		}
	}

	if correct {
		e.state.CorrectCount++
	} else {
		e.state.IncorrectCount++
	}
	e.state.Reviewed++

	if e.cfg.UpdateCard == nil {
		return nil
	}
	if err := e.cfg.UpdateCard(ctx, updated); err != nil {
		e.log.Error("failed to persist card %s (%s): %v", updated.ID, item.ExerciseType, err)
		return fmt.Errorf("persist card %s: %w", updated.ID, err)
	}
	return nil
}

// prepareCurrent resets per-item state for the item under CurrentIndex.
func (e *Engine) prepareCurrent() {
	e.state.AnswerState = AnswerPending
	e.state.CurrentAnswerCorrect = nil
	e.state.UserInput = ""
	e.state.MultipleChoiceOptions = nil

	item := e.state.Queue[e.state.CurrentIndex]
	if item.ExerciseType.IsMultipleChoice() {
		e.state.MultipleChoiceOptions = MultipleChoiceOptions(item.Card, e.cards, e.cfg.OptionCount, e.cfg.Rand)
	}
}

// finish reports completion while the session still reads as active, then
// tears the session down.
func (e *Engine) finish(ctx context.Context) {
	now := e.cfg.Now()
	report := CompletionReport{
		CardsReviewed:  e.state.Reviewed,
		CorrectCount:   e.state.CorrectCount,
		IncorrectCount: e.state.IncorrectCount,
		StartedAt:      e.state.SessionStartTime,
		Duration:       now.Sub(e.state.SessionStartTime),
	}
	e.lastReport = &report
	e.fireCompletion(ctx, report)

	e.log.Info("session ended: reviewed=%d correct=%d incorrect=%d duration=%v",
		report.CardsReviewed, report.CorrectCount, report.IncorrectCount, report.Duration)
	e.state = State{}
}

func (e *Engine) fireCompletion(ctx context.Context, report CompletionReport) {
	if e.cfg.OnComplete == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("session completion callback panicked: %v", r)
		}
	}()
	if err := e.cfg.OnComplete(ctx, report); err != nil {
		e.log.Warn("session completion callback failed: %v", err)
	}
}

func (e *Engine) notify() {
	if e.cfg.Observer != nil {
		e.cfg.Observer(e.State())
	}
}
