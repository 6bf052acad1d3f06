package api

import (
	"context"

	"github.com/vytor/wordflash/internal/services"
)

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

type Server struct {
	CardService      services.CardService
	DuplicateService services.DuplicateService
	PracticeService  services.PracticeService
	Health           HealthChecker
}
