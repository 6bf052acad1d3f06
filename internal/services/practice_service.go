package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/wordflash/internal/errors"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/practice"
	"github.com/vytor/wordflash/internal/repository"
)

// StartSessionRequest describes a new practice session. Without CardIDs the
// session is built from every card due for review.
type StartSessionRequest struct {
	Preferences practice.Preferences `json:"preferences"`
	CardIDs     []string             `json:"card_ids,omitempty"`
}

// SessionView is what clients see of a running or finished session.
type SessionView struct {
	ID     string                     `json:"id"`
	State  practice.State             `json:"state"`
	Stats  practice.Stats             `json:"stats"`
	Report *practice.CompletionReport `json:"report,omitempty"`
}

// PracticeService manages practice sessions and their history
type PracticeService interface {
	Start(ctx context.Context, req StartSessionRequest) (SessionView, error)
	Get(ctx context.Context, id string) (SessionView, error)
	CheckAnswer(ctx context.Context, id string, correct bool) (SessionView, error)
	OverrideAnswer(ctx context.Context, id string, correct bool) (SessionView, error)
	SetUserInput(ctx context.Context, id string, text string) (SessionView, error)
	Confirm(ctx context.Context, id string, correct bool) (SessionView, error)
	Skip(ctx context.Context, id string) (SessionView, error)
	RemoveCard(ctx context.Context, id string, cardID string) (SessionView, error)
	Restart(ctx context.Context, id string) (SessionView, error)
	// End stops the session, records it and forgets it.
	End(ctx context.Context, id string) (SessionView, error)
	History(ctx context.Context, filter models.SessionFilter) ([]models.SessionRecord, error)
}

// PracticeOptions carry the configured session defaults.
type PracticeOptions struct {
	OptionCount int
	MaxItems    int
	// SessionTTL evicts sessions untouched for longer than this when a new
	// session starts. Zero keeps sessions until End.
	SessionTTL  time.Duration
	Now         func() time.Time
}

type session struct {
	mu      sync.Mutex
	engine  *practice.Engine
	touched time.Time
}

type practiceService struct {
	cards    repository.CardRepository
	sessions repository.SessionRepository
	opts     PracticeOptions

	mu       sync.RWMutex
	registry map[string]*session
}

// NewPracticeService creates a new PracticeService
func NewPracticeService(cards repository.CardRepository, sessions repository.SessionRepository, opts PracticeOptions) PracticeService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &practiceService{
		cards:    cards,
		sessions: sessions,
		opts:     opts,
		registry: make(map[string]*session),
	}
}

func (s *practiceService) Start(ctx context.Context, req StartSessionRequest) (SessionView, error) {
	log := logger.FromContext(ctx)
	s.evictIdle(ctx)

	prefs := req.Preferences
	for _, t := range prefs.Enabled {
		if !t.Valid() {
			return SessionView{}, errors.NewValidationError("preferences.enabled", "unknown exercise type "+string(t))
		}
	}
	if prefs.MaxItems < 0 {
		return SessionView{}, errors.NewValidationError("preferences.max_items", "cannot be negative")
	}
	if prefs.MaxItems == 0 {
		prefs.MaxItems = s.opts.MaxItems
	}

	id := uuid.NewString()
	cfg := practice.EngineConfig{
		UpdateCard:  s.cards.Update,
		OnComplete:  s.recordSession,
		OptionCount: s.opts.OptionCount,
		Now:         s.opts.Now,
		Logger:      logger.Default().WithField("session_id", id),
	}

	var cards []models.Card
	if len(req.CardIDs) > 0 {
		loaded, err := s.loadCards(ctx, req.CardIDs)
		if err != nil {
			return SessionView{}, err
		}
		cards = loaded
	} else {
		language := prefs.Language
		cfg.Source = func(ctx context.Context) ([]models.Card, error) {
			return s.cards.ReviewCards(ctx, s.opts.Now(), language)
		}
	}

	sess := &session{engine: practice.NewEngine(cfg), touched: s.opts.Now()}
	if _, err := sess.engine.Start(ctx, cards, &prefs); err != nil {
		log.Error("failed to start session: %v", err)
		return SessionView{}, errors.NewInternalError(err)
	}

	s.mu.Lock()
	s.registry[id] = sess
	s.mu.Unlock()

	view := s.view(id, sess.engine)
	log.Info("practice session %s started: items=%d no_due=%t", id, view.State.TotalCount(), view.State.NoDueItems)
	return view, nil
}

func (s *practiceService) loadCards(ctx context.Context, ids []string) ([]models.Card, error) {
	cards := make([]models.Card, 0, len(ids))
	for _, id := range ids {
		card, err := s.cards.Get(ctx, id)
		if err != nil {
			return nil, errors.NewInternalError(err)
		}
		if card == nil {
			return nil, errors.NewNotFoundError("card", id)
		}
		cards = append(cards, *card)
	}
	return cards, nil
}

// recordSession stores the summary of a finished session.
func (s *practiceService) recordSession(ctx context.Context, report practice.CompletionReport) error {
	if report.CardsReviewed == 0 {
		return nil
	}
	_, err := s.sessions.Insert(ctx, models.SessionRecord{
		StartedAt:       report.StartedAt,
		DurationSeconds: report.Duration.Seconds(),
		CardsReviewed:   report.CardsReviewed,
		CorrectCount:    report.CorrectCount,
		IncorrectCount:  report.IncorrectCount,
		CreatedAt:       s.opts.Now(),
	})
	return err
}

func (s *practiceService) lookup(id string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.registry[id]
	if !ok {
		return nil, errors.NewNotFoundError("practice session", id)
	}
	return sess, nil
}

// do runs fn under the session's lock and renders the resulting view.
// Persistence errors are reported alongside the advanced state.
func (s *practiceService) do(ctx context.Context, id string, fn func(*practice.Engine) error) (SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return SessionView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touched = s.opts.Now()

	if err := fn(sess.engine); err != nil {
		logger.FromContext(ctx).Error("practice session %s: %v", id, err)
		return s.view(id, sess.engine), errors.NewInternalError(err)
	}
	return s.view(id, sess.engine), nil
}

// evictIdle forgets sessions untouched for longer than the TTL. A session
// still running is ended first so its progress reaches the history.
func (s *practiceService) evictIdle(ctx context.Context) {
	if s.opts.SessionTTL <= 0 {
		return
	}
	cutoff := s.opts.Now().Add(-s.opts.SessionTTL)

	s.mu.RLock()
	all := make(map[string]*session, len(s.registry))
	for id, sess := range s.registry {
		all[id] = sess
	}
	s.mu.RUnlock()

	log := logger.FromContext(ctx)
	for id, sess := range all {
		sess.mu.Lock()
		if sess.touched.Before(cutoff) {
			wasActive := sess.engine.State().Active
			sess.engine.End(ctx)
			s.mu.Lock()
			delete(s.registry, id)
			s.mu.Unlock()
			log.Info("practice session %s evicted after %v idle: was_active=%t", id, s.opts.SessionTTL, wasActive)
		}
		sess.mu.Unlock()
	}
}

func (s *practiceService) view(id string, e *practice.Engine) SessionView {
	v := SessionView{ID: id, State: e.State(), Stats: e.Stats()}
	if !v.State.Active {
		if r, ok := e.LastReport(); ok {
			v.Report = &r
		}
	}
	return v
}

func (s *practiceService) Get(ctx context.Context, id string) (SessionView, error) {
	return s.do(ctx, id, func(*practice.Engine) error { return nil })
}

func (s *practiceService) CheckAnswer(ctx context.Context, id string, correct bool) (SessionView, error) {
	return s.do(ctx, id, func(e *practice.Engine) error {
		e.CheckAnswer(correct)
		return nil
	})
}

func (s *practiceService) OverrideAnswer(ctx context.Context, id string, correct bool) (SessionView, error) {
	return s.do(ctx, id, func(e *practice.Engine) error {
		e.OverrideAnswer(correct)
		return nil
	})
}

func (s *practiceService) SetUserInput(ctx context.Context, id string, text string) (SessionView, error) {
	return s.do(ctx, id, func(e *practice.Engine) error {
		e.SetUserInput(text)
		return nil
	})
}

func (s *practiceService) Confirm(ctx context.Context, id string, correct bool) (SessionView, error) {
	return s.do(ctx, id, func(e *practice.Engine) error {
		_, err := e.ConfirmAnswerAndAdvance(ctx, correct)
		return err
	})
}

func (s *practiceService) Skip(ctx context.Context, id string) (SessionView, error) {
	return s.do(ctx, id, func(e *practice.Engine) error {
		_, err := e.Skip(ctx)
		return err
	})
}

func (s *practiceService) RemoveCard(ctx context.Context, id string, cardID string) (SessionView, error) {
	return s.do(ctx, id, func(e *practice.Engine) error {
		_, err := e.RemoveCard(ctx, cardID)
		return err
	})
}

func (s *practiceService) Restart(ctx context.Context, id string) (SessionView, error) {
	return s.do(ctx, id, func(e *practice.Engine) error {
		_, err := e.Restart(ctx)
		return err
	})
}

func (s *practiceService) End(ctx context.Context, id string) (SessionView, error) {
	view, err := s.do(ctx, id, func(e *practice.Engine) error {
		e.End(ctx)
		return nil
	})
	if err != nil {
		return view, err
	}

	s.mu.Lock()
	delete(s.registry, id)
	s.mu.Unlock()
	logger.FromContext(ctx).Info("practice session %s closed", id)
	return view, nil
}

func (s *practiceService) History(ctx context.Context, filter models.SessionFilter) ([]models.SessionRecord, error) {
	if filter.Limit < 0 {
		return nil, errors.NewBadRequestError("limit cannot be negative")
	}
	records, err := s.sessions.List(ctx, filter)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list practice history: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if records == nil {
		records = []models.SessionRecord{}
	}
	return records, nil
}
