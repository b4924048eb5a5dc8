package persistence

import (
	"context"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/projectshelf/internal/domain/analytics"
	"github.com/khoahotran/projectshelf/pkg/apperror"
	"github.com/khoahotran/projectshelf/pkg/logger"
)

type postgresAnalyticsRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresAnalyticsRepo(db *pgxpool.Pool, logger logger.Logger) analytics.Repository {
	return &postgresAnalyticsRepo{db: db, logger: logger}
}

// Append inserts the event. Re-delivering the same event id is a no-op, so the consumer can
// retry after a failed commit.
func (r *postgresAnalyticsRepo) Append(ctx context.Context, e *analytics.Event) error {
	metadataBytes, err := json.Marshal(e.Metadata)
	if err != nil {
		return apperror.NewInternal("failed to marshal event metadata", err)
	}
	query := `
		INSERT INTO analytics (id, user_id, event_type, page_path, visitor_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`
	_, err = r.db.Exec(ctx, query,
		e.ID, e.UserID, e.EventType, e.PagePath, e.VisitorID, metadataBytes, e.CreatedAt,
	)
	if err != nil {
		return apperror.NewInternal("failed to append analytics event", err)
	}
	return nil
}

func (r *postgresAnalyticsRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]analytics.Event, error) {
	builder := psql.Select("id", "user_id", "event_type", "page_path", "visitor_id", "metadata", "created_at").
		From("analytics").
		Where(sq.Eq{"user_id": ownerID}).
		OrderBy("created_at ASC", "id ASC")
	if !from.IsZero() {
		builder = builder.Where(sq.GtOrEq{"created_at": from})
	}
	if !to.IsZero() {
		builder = builder.Where(sq.Lt{"created_at": to})
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build analytics query", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query analytics", err)
	}
	defer rows.Close()

	events := make([]analytics.Event, 0)
	for rows.Next() {
		var e analytics.Event
		var metadataBytes []byte
		if err := rows.Scan(&e.ID, &e.UserID, &e.EventType, &e.PagePath, &e.VisitorID, &metadataBytes, &e.CreatedAt); err != nil {
			return nil, apperror.NewInternal("failed to scan analytics row", err)
		}
		if err := json.Unmarshal(metadataBytes, &e.Metadata); err != nil {
			r.logger.Warn("Failed to unmarshal event metadata", zap.String("event_id", e.ID.String()), zap.Error(err))
		}
		if e.Metadata == nil {
			e.Metadata = map[string]any{}
		}
		e.CreatedAt = e.CreatedAt.UTC()
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating analytics rows", err)
	}
	return events, nil
}
