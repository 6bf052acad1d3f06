package services

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/vytor/wordflash/internal/duplicates"
	"github.com/vytor/wordflash/internal/errors"
	"github.com/vytor/wordflash/internal/jobs"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
	"github.com/vytor/wordflash/internal/worker"
)

// DuplicateService finds duplicate cards on demand or in the background
type DuplicateService interface {
	// Find scans the whole collection synchronously. An empty preset uses
	// the configured default.
	Find(ctx context.Context, preset string) (models.DuplicateReport, error)
	// FindForCard compares one stored card against the rest.
	FindForCard(ctx context.Context, id, preset string) ([]models.DuplicateMatch, error)
	// Check compares a card that has not been saved yet against the collection.
	Check(ctx context.Context, in CardInput, preset string) ([]models.DuplicateMatch, error)
	EnqueueScan(ctx context.Context, preset string) error
	LastReport() (models.DuplicateReport, bool)
}

type duplicateService struct {
	repo          repository.CardRepository
	queue         jobs.JobQueue
	defaultPreset string
	now           func() time.Time

	mu   sync.RWMutex
	last *models.DuplicateReport
}

// NewDuplicateService creates a new DuplicateService
func NewDuplicateService(repo repository.CardRepository, queue jobs.JobQueue, defaultPreset string) DuplicateService {
	if defaultPreset == "" {
		defaultPreset = duplicates.PresetStandard
	}
	return &duplicateService{repo: repo, queue: queue, defaultPreset: defaultPreset, now: time.Now}
}

func (s *duplicateService) detector(preset string) (*duplicates.Detector, string, error) {
	if preset == "" {
		preset = s.defaultPreset
	}
	cfg, err := duplicates.PresetByName(preset)
	if err != nil {
		return nil, preset, errors.NewValidationError("preset", err.Error())
	}
	d, err := duplicates.NewDetector(cfg)
	if err != nil {
		return nil, preset, errors.NewInternalError(err)
	}
	return d, preset, nil
}

func (s *duplicateService) allCards(ctx context.Context) ([]models.Card, error) {
	cards, err := s.repo.List(ctx, models.CardFilter{})
	if err != nil {
		logger.FromContext(ctx).Error("failed to load cards for duplicate check: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return cards, nil
}

func (s *duplicateService) Find(ctx context.Context, preset string) (models.DuplicateReport, error) {
	d, preset, err := s.detector(preset)
	if err != nil {
		return models.DuplicateReport{}, err
	}
	cards, err := s.allCards(ctx)
	if err != nil {
		return models.DuplicateReport{}, err
	}

	report := models.DuplicateReport{
		Preset:      preset,
		CardCount:   len(cards),
		Matches:     d.FindAllDuplicates(cards),
		GeneratedAt: s.now(),
	}
	s.store(report)
	logger.FromContext(ctx).Debug("duplicate scan: preset=%s, cards=%d, flagged=%d", preset, len(cards), len(report.Matches))
	return report, nil
}

func (s *duplicateService) FindForCard(ctx context.Context, id, preset string) ([]models.DuplicateMatch, error) {
	d, _, err := s.detector(preset)
	if err != nil {
		return nil, err
	}
	card, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if card == nil {
		return nil, errors.NewNotFoundError("card", id)
	}
	cards, err := s.allCards(ctx)
	if err != nil {
		return nil, err
	}
	return nonNil(d.FindDuplicates(*card, cards)), nil
}

func (s *duplicateService) Check(ctx context.Context, in CardInput, preset string) ([]models.DuplicateMatch, error) {
	in = in.normalized()
	if err := validateInput(in); err != nil {
		return nil, err
	}
	d, _, err := s.detector(preset)
	if err != nil {
		return nil, err
	}
	cards, err := s.allCards(ctx)
	if err != nil {
		return nil, err
	}
	candidate := models.Card{FrontText: in.FrontText, BackText: in.BackText, Language: in.Language}
	return nonNil(d.FindDuplicates(candidate, cards)), nil
}

func (s *duplicateService) EnqueueScan(ctx context.Context, preset string) error {
	log := logger.FromContext(ctx)
	_, preset, err := s.detector(preset)
	if err != nil {
		return err
	}

	if err := s.queue.EnqueueDuplicateScan(preset, s.store); err != nil {
		if stderrors.Is(err, worker.ErrQueueFull) {
			return errors.NewConflictError("too many duplicate scans queued, try again later")
		}
		log.Error("failed to queue duplicate scan: %v", err)
		return errors.NewInternalError(err)
	}
	log.Info("duplicate scan queued: preset=%s", preset)
	return nil
}

func (s *duplicateService) LastReport() (models.DuplicateReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return models.DuplicateReport{}, false
	}
	return *s.last, true
}

func (s *duplicateService) store(report models.DuplicateReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &report
}

func nonNil(matches []models.DuplicateMatch) []models.DuplicateMatch {
	if matches == nil {
		return []models.DuplicateMatch{}
	}
	return matches
}
