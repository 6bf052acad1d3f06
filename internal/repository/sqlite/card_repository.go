package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

var cardColumns = []string{
	"id", "front_text", "back_text", "language", "icon_name", "word_data",
	"exercise_scores", "next_review", "review_count", "correct_count", "created_at", "updated_at",
}

const insertCardSQL = `
INSERT INTO cards (id, front_text, back_text, language, icon_name, word_data, exercise_scores, next_review, review_count, correct_count, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func insertArgs(c models.Card, row encodedCard) []any {
	return []any{c.ID, c.FrontText, c.BackText, c.Language, c.IconName, row.wordData, row.scores, row.nextReview,
		c.ReviewCount, c.CorrectCount, c.CreatedAt.UTC(), c.UpdatedAt.UTC()}
}

type cardRepository struct {
	db *sql.DB
}

// NewCardRepository creates a new CardRepository implementation
func NewCardRepository(db *sql.DB) repository.CardRepository {
	return &cardRepository{db: db}
}

func (r *cardRepository) Insert(ctx context.Context, c models.Card) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("inserting card: id=%s, language=%s", c.ID, c.Language)

	row, err := encodeCard(c)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, insertCardSQL, insertArgs(c, row)...)
	if err != nil {
		log.Error("failed to insert card: %v", err)
		return err
	}
	log.Debug("card inserted: id=%s", c.ID)
	return nil
}

func (r *cardRepository) InsertBatch(ctx context.Context, cards []models.Card) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("inserting %d cards", len(cards))

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, insertCardSQL)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, c := range cards {
			row, err := encodeCard(c)
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx, insertArgs(c, row)...); err != nil {
				log.Error("failed to insert card %s: %v", c.ID, err)
				return fmt.Errorf("insert card %s: %w", c.ID, err)
			}
		}
		return nil
	})
}

func (r *cardRepository) Get(ctx context.Context, id string) (*models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("getting card: id=%s", id)

	query, args, err := sqlBuilder.Select(cardColumns...).From("cards").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	c, err := scanCard(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("card not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get card: %v", err)
		return nil, err
	}
	return &c, nil
}

func (r *cardRepository) List(ctx context.Context, filter models.CardFilter) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("listing cards: language=%s, limit=%d, offset=%d", filter.Language, filter.Limit, filter.Offset)

	query := sqlBuilder.Select(cardColumns...).From("cards")
	if filter.Language != "" {
		query = query.Where(squirrel.Eq{"language": filter.Language})
	}
	query = query.OrderBy("created_at ASC", "id ASC")
	// SQLite only accepts OFFSET after a LIMIT.
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
		if filter.Offset > 0 {
			query = query.Offset(uint64(filter.Offset))
		}
	}

	return r.queryCards(ctx, log, query)
}

func (r *cardRepository) Count(ctx context.Context, filter models.CardFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	query := sqlBuilder.Select("COUNT(*)").From("cards")
	if filter.Language != "" {
		query = query.Where(squirrel.Eq{"language": filter.Language})
	}
	q, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}
	var count int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&count); err != nil {
		log.Error("failed to count cards: %v", err)
		return 0, err
	}
	return count, nil
}

func (r *cardRepository) Update(ctx context.Context, c models.Card) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("updating card: id=%s, reviews=%d, scores=%d", c.ID, c.ReviewCount, len(c.ExerciseScores))

	row, err := encodeCard(c)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE cards
SET front_text = ?, back_text = ?, language = ?, icon_name = ?, word_data = ?, exercise_scores = ?,
    next_review = ?, review_count = ?, correct_count = ?, updated_at = ?
WHERE id = ?
`, c.FrontText, c.BackText, c.Language, c.IconName, row.wordData, row.scores,
		row.nextReview, c.ReviewCount, c.CorrectCount, c.UpdatedAt.UTC(), c.ID)
	if err != nil {
		log.Error("failed to update card: %v", err)
		return err
	}
	return requireAffected(res, c.ID)
}

func (r *cardRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("deleting card: id=%s", id)

	res, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete card: %v", err)
		return err
	}
	return requireAffected(res, id)
}

func (r *cardRepository) ReviewCards(ctx context.Context, now time.Time, language string) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("fetching review cards: language=%s", language)

	query := sqlBuilder.Select(cardColumns...).From("cards").
		Where(squirrel.Or{
			squirrel.Eq{"next_review": nil},
			squirrel.LtOrEq{"next_review": now.UTC()},
		})
	if language != "" {
		query = query.Where(squirrel.Eq{"language": language})
	}
	query = query.OrderBy("created_at ASC", "id ASC")

	cards, err := r.queryCards(ctx, log, query)
	if err != nil {
		return nil, err
	}
	log.Debug("found %d review cards", len(cards))
	return cards, nil
}

func (r *cardRepository) queryCards(ctx context.Context, log *logger.Logger, query squirrel.SelectBuilder) ([]models.Card, error) {
	q, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		log.Error("failed to query cards: %v", err)
		return nil, err
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			log.Error("failed to scan card row: %v", err)
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

type encodedCard struct {
	wordData   sql.NullString
	scores     string
	nextReview sql.NullTime
}

func encodeCard(c models.Card) (encodedCard, error) {
	var out encodedCard
	wd, err := models.EncodeWordData(c.WordData)
	if err != nil {
		return out, err
	}
	if wd != nil {
		out.wordData = sql.NullString{String: string(wd), Valid: true}
	}

	scores := c.ExerciseScores
	if scores == nil {
		scores = map[models.ExerciseType]models.ExerciseScore{}
	}
	b, err := json.Marshal(scores)
	if err != nil {
		return out, fmt.Errorf("encode exercise scores for card %s: %w", c.ID, err)
	}
	out.scores = string(b)

	if c.NextReview != nil {
		out.nextReview = sql.NullTime{Time: c.NextReview.UTC(), Valid: true}
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(s rowScanner) (models.Card, error) {
	var (
		c          models.Card
		wordData   sql.NullString
		scores     string
		nextReview sql.NullTime
	)
	if err := s.Scan(&c.ID, &c.FrontText, &c.BackText, &c.Language, &c.IconName, &wordData,
		&scores, &nextReview, &c.ReviewCount, &c.CorrectCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return c, err
	}

	if wordData.Valid {
		wd, err := models.DecodeWordData([]byte(wordData.String))
		if err != nil {
			return c, fmt.Errorf("card %s: %w", c.ID, err)
		}
		c.WordData = wd
	}
	if scores != "" {
		if err := json.Unmarshal([]byte(scores), &c.ExerciseScores); err != nil {
			return c, fmt.Errorf("card %s: decode exercise scores: %w", c.ID, err)
		}
	}
	if nextReview.Valid {
		t := nextReview.Time
		c.NextReview = &t
	}
	return c, nil
}
