package jobs

import (
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
	"github.com/vytor/wordflash/internal/worker"
)

// WorkerQueue implements JobQueue using worker pools
type WorkerQueue struct {
	scanPool *worker.Pool
	cardRepo repository.CardRepository
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(scanPool *worker.Pool, cardRepo repository.CardRepository) JobQueue {
	return &WorkerQueue{scanPool: scanPool, cardRepo: cardRepo}
}

func (q *WorkerQueue) EnqueueDuplicateScan(preset string, store func(models.DuplicateReport)) error {
	err := q.scanPool.Submit(&worker.DuplicateScanJob{
		Cards:  q.cardRepo,
		Preset: preset,
		Store:  store,
	})
	if err != nil {
		return err
	}
	logger.Default().WithPrefix("jobs").Debug("duplicate scan queued: preset=%s, pending=%d", preset, q.scanPool.QueueSize())
	return nil
}
