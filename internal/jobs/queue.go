package jobs

import "github.com/vytor/wordflash/internal/models"

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	// EnqueueDuplicateScan schedules a full-collection duplicate scan and
	// hands the report to store once it is done.
	EnqueueDuplicateScan(preset string, store func(models.DuplicateReport)) error
}
