package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vytor/wordflash/internal/models"
)

// ErrNotFound is returned by mutations that target a missing row.
var ErrNotFound = errors.New("record not found")

// CardRepository handles card data access
type CardRepository interface {
	Insert(ctx context.Context, card models.Card) error
	InsertBatch(ctx context.Context, cards []models.Card) error
	Get(ctx context.Context, id string) (*models.Card, error)
	List(ctx context.Context, filter models.CardFilter) ([]models.Card, error)
	Count(ctx context.Context, filter models.CardFilter) (int, error)
	Update(ctx context.Context, card models.Card) error
	Delete(ctx context.Context, id string) error
	// ReviewCards returns cards whose card-level review date is absent or not
	// after now, optionally restricted to one language.
	ReviewCards(ctx context.Context, now time.Time, language string) ([]models.Card, error)
}

// SessionRepository stores summaries of finished practice sessions
type SessionRepository interface {
	Insert(ctx context.Context, record models.SessionRecord) (int64, error)
	List(ctx context.Context, filter models.SessionFilter) ([]models.SessionRecord, error)
}
