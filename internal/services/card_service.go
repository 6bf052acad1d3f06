package services

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/wordflash/internal/errors"
	"github.com/vytor/wordflash/internal/flashcard"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
)

// CardInput is the writable part of a card.
type CardInput struct {
	FrontText string          `json:"front_text" validate:"required,max=500"`
	BackText  string          `json:"back_text" validate:"required,max=500"`
	Language  string          `json:"language" validate:"required,min=2,max=16"`
	IconName  string          `json:"icon_name" validate:"omitempty,max=64"`
	WordData  json.RawMessage `json:"word_data,omitempty"`
}

func (in CardInput) normalized() CardInput {
	in.FrontText = strings.TrimSpace(in.FrontText)
	in.BackText = strings.TrimSpace(in.BackText)
	in.Language = strings.ToLower(strings.TrimSpace(in.Language))
	in.IconName = strings.TrimSpace(in.IconName)
	return in
}

// CardPage is one page of a card listing plus the unpaged total.
type CardPage struct {
	Cards []models.Card `json:"cards"`
	Total int           `json:"total"`
}

// CardService handles card-related business logic
type CardService interface {
	Create(ctx context.Context, in CardInput) (*models.Card, error)
	Import(ctx context.Context, in []CardInput) ([]models.Card, error)
	Get(ctx context.Context, id string) (*models.Card, error)
	List(ctx context.Context, filter models.CardFilter) (CardPage, error)
	Update(ctx context.Context, id string, in CardInput) (*models.Card, error)
	Delete(ctx context.Context, id string) error
}

type cardService struct {
	repo repository.CardRepository
	now  func() time.Time
}

// NewCardService creates a new CardService
func NewCardService(repo repository.CardRepository) CardService {
	return &cardService{repo: repo, now: time.Now}
}

func (s *cardService) build(in CardInput) (models.Card, error) {
	in = in.normalized()
	if err := validateInput(in); err != nil {
		return models.Card{}, err
	}
	wd, err := models.DecodeWordData(in.WordData)
	if err != nil {
		return models.Card{}, errors.NewValidationError("word_data", err.Error())
	}
	now := s.now().UTC()
	return models.Card{
		ID:             uuid.NewString(),
		FrontText:      in.FrontText,
		BackText:       in.BackText,
		Language:       in.Language,
		IconName:       in.IconName,
		WordData:       wd,
		ExerciseScores: map[models.ExerciseType]models.ExerciseScore{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (s *cardService) Create(ctx context.Context, in CardInput) (*models.Card, error) {
	log := logger.FromContext(ctx)

	card, err := s.build(in)
	if err != nil {
		log.Debug("rejected card input: %v", err)
		return nil, err
	}
	if err := s.repo.Insert(ctx, card); err != nil {
		log.Error("failed to insert card: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("card created: id=%s, language=%s, word_kind=%s", card.ID, card.Language, models.WordKind(card.WordData))
	return &card, nil
}

func (s *cardService) Import(ctx context.Context, in []CardInput) ([]models.Card, error) {
	log := logger.FromContext(ctx)
	if len(in) == 0 {
		return nil, errors.NewBadRequestError("no cards to import")
	}

	cards := make([]models.Card, 0, len(in))
	for _, input := range in {
		card, err := s.build(input)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	if err := s.repo.InsertBatch(ctx, cards); err != nil {
		log.Error("failed to import %d cards: %v", len(cards), err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("imported %d cards", len(cards))
	return cards, nil
}

func (s *cardService) Get(ctx context.Context, id string) (*models.Card, error) {
	card, err := s.repo.Get(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get card: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if card == nil {
		return nil, errors.NewNotFoundError("card", id)
	}
	return card, nil
}

func (s *cardService) List(ctx context.Context, filter models.CardFilter) (CardPage, error) {
	log := logger.FromContext(ctx)
	if filter.Limit < 0 || filter.Offset < 0 {
		return CardPage{}, errors.NewBadRequestError("limit and offset cannot be negative")
	}

	cards, err := s.repo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list cards: %v", err)
		return CardPage{}, errors.NewInternalError(err)
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error("failed to count cards: %v", err)
		return CardPage{}, errors.NewInternalError(err)
	}
	if cards == nil {
		cards = []models.Card{}
	}
	return CardPage{Cards: cards, Total: total}, nil
}

// Update replaces the writable fields. Review progress is kept.
func (s *cardService) Update(ctx context.Context, id string, in CardInput) (*models.Card, error) {
	log := logger.FromContext(ctx)

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	fresh, err := s.build(in)
	if err != nil {
		return nil, err
	}

	updated := existing.Clone()
	updated.FrontText = fresh.FrontText
	updated.BackText = fresh.BackText
	updated.Language = fresh.Language
	updated.IconName = fresh.IconName
	updated.WordData = fresh.WordData
	updated.UpdatedAt = fresh.UpdatedAt
	// New word data or an icon can open exercises that were never practiced.
	updated.NextReview = flashcard.NextCardReview(updated, fresh.UpdatedAt)

	if err := s.repo.Update(ctx, updated); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewNotFoundError("card", id)
		}
		log.Error("failed to update card: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return &updated, nil
}

func (s *cardService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NewNotFoundError("card", id)
		}
		logger.FromContext(ctx).Error("failed to delete card: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}
