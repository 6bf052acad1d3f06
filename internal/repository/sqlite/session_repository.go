package sqlite

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
)

type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository implementation
func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Insert(ctx context.Context, rec models.SessionRecord) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("inserting session: reviewed=%d, correct=%d, incorrect=%d", rec.CardsReviewed, rec.CorrectCount, rec.IncorrectCount)

	query, args, err := sqlBuilder.Insert("practice_sessions").
		Columns("started_at", "duration_seconds", "cards_reviewed", "correct_count", "incorrect_count", "created_at").
		Values(rec.StartedAt.UTC(), rec.DurationSeconds, rec.CardsReviewed, rec.CorrectCount, rec.IncorrectCount, rec.CreatedAt.UTC()).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to insert session: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	log.Debug("session inserted: id=%d", id)
	return id, nil
}

func (r *sessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.SessionRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	query := sqlBuilder.
		Select("id", "started_at", "duration_seconds", "cards_reviewed", "correct_count", "incorrect_count", "created_at").
		From("practice_sessions")
	if filter.Since != nil {
		query = query.Where(squirrel.GtOrEq{"started_at": filter.Since.UTC()})
	}
	query = query.OrderBy("started_at DESC", "id DESC")
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	q, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		log.Error("failed to list sessions: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.SessionRecord
	for rows.Next() {
		var rec models.SessionRecord
		if err := rows.Scan(&rec.ID, &rec.StartedAt, &rec.DurationSeconds, &rec.CardsReviewed,
			&rec.CorrectCount, &rec.IncorrectCount, &rec.CreatedAt); err != nil {
			log.Error("failed to scan session row: %v", err)
			return nil, err
		}
		out = append(out, rec)
	}
	log.Debug("listed %d sessions", len(out))
	return out, rows.Err()
}
