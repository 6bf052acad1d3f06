package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/vytor/wordflash/internal/models"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueDuplicateScan(preset string, store func(models.DuplicateReport)) error {
	args := m.Called(preset, store)
	return args.Error(0)
}
