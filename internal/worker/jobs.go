package worker

import (
	"context"
	"time"

	"github.com/vytor/wordflash/internal/duplicates"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
)

// DuplicateScanJob compares every stored card against every other and hands
// the resulting report to Store.
type DuplicateScanJob struct {
	Cards  repository.CardRepository
	Preset string
	Store  func(models.DuplicateReport)
	Now    func() time.Time
}

func (j *DuplicateScanJob) Name() string { return "duplicate_scan" }

func (j *DuplicateScanJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("preset", j.Preset)

	cfg, err := duplicates.PresetByName(j.Preset)
	if err != nil {
		return err
	}
	detector, err := duplicates.NewDetector(cfg)
	if err != nil {
		return err
	}

	cards, err := j.Cards.List(ctx, models.CardFilter{})
	if err != nil {
		log.Error("failed to load cards: %v", err)
		return err
	}
	if err := ctx.Err(); err != nil {
		log.Warn("scan cancelled before comparing: %v", err)
		return err
	}

	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	matches := detector.FindAllDuplicates(cards)
	log.Info("scanned %d cards, %d with duplicates (fuzzy_threshold=%.2f)", len(cards), len(matches), detector.Config().FuzzyThreshold)
	if log.Enabled(logger.DEBUG) {
		for id, m := range matches {
			log.Debug("card %s: %d matches, best=%s", id, len(m), m[0].Reason)
		}
	}

	j.Store(models.DuplicateReport{
		Preset:      j.Preset,
		CardCount:   len(cards),
		Matches:     matches,
		GeneratedAt: now(),
	})
	return nil
}
