package persistence

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/projectshelf/internal/domain/casestudy"
	"github.com/khoahotran/projectshelf/pkg/apperror"
)

// ---- timelines

type postgresTimelineRepo struct {
	db *pgxpool.Pool
}

func NewPostgresTimelineRepo(db *pgxpool.Pool) casestudy.TimelineRepository {
	return &postgresTimelineRepo{db: db}
}

func (r *postgresTimelineRepo) ListByCaseStudy(ctx context.Context, caseStudyID uuid.UUID, order casestudy.TimelineOrder) ([]casestudy.TimelineEntry, error) {
	// date is read as text so it round-trips as YYYY-MM-DD.
	sql, args, err := psql.Select("id", "case_study_id", "title", "description", "date::text", "order_index").
		From("timelines").
		Where(sq.Eq{"case_study_id": caseStudyID}).
		OrderBy(append(order.SQL(), "id")...).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build timelines query", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query timelines", err)
	}
	defer rows.Close()

	entries := make([]casestudy.TimelineEntry, 0)
	for rows.Next() {
		var e casestudy.TimelineEntry
		if err := rows.Scan(&e.ID, &e.CaseStudyID, &e.Title, &e.Description, &e.Date, &e.OrderIndex); err != nil {
			return nil, apperror.NewInternal("failed to scan timeline row", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating timeline rows", err)
	}
	return entries, nil
}

// Upsert writes all entries in one transaction. An id that already belongs to another case
// study fails the whole batch with Conflict.
func (r *postgresTimelineRepo) Upsert(ctx context.Context, caseStudyID uuid.UUID, entries []casestudy.TimelineEntry) error {
	if len(entries) == 0 {
		return nil
	}
	query := `
		INSERT INTO timelines (id, case_study_id, title, description, date, order_index)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			date = EXCLUDED.date,
			order_index = EXCLUDED.order_index
		WHERE timelines.case_study_id = EXCLUDED.case_study_id
	`
	batch := &pgx.Batch{}
	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		d, err := time.Parse("2006-01-02", e.Date)
		if err != nil {
			return apperror.NewInvalidInput("timeline date must be YYYY-MM-DD", err)
		}
		batch.Queue(query, e.ID, caseStudyID, e.Title, e.Description, d, e.OrderIndex)
		ids = append(ids, e.ID)
	}
	return sendBatch(ctx, r.db, batch, "timeline", ids)
}

func (r *postgresTimelineRepo) DeleteByIDs(ctx context.Context, caseStudyID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `DELETE FROM timelines WHERE case_study_id = $1 AND id = ANY($2)`, caseStudyID, ids)
	if err != nil {
		return apperror.NewInternal("failed to delete timelines", err)
	}
	return nil
}

// ---- outcomes

type postgresOutcomeRepo struct {
	db *pgxpool.Pool
}

func NewPostgresOutcomeRepo(db *pgxpool.Pool) casestudy.OutcomeRepository {
	return &postgresOutcomeRepo{db: db}
}

func (r *postgresOutcomeRepo) ListByCaseStudy(ctx context.Context, caseStudyID uuid.UUID) ([]casestudy.Outcome, error) {
	query := `
		SELECT id, case_study_id, title, description, metrics, order_index
		FROM outcomes
		WHERE case_study_id = $1
		ORDER BY order_index ASC, id
	`
	rows, err := r.db.Query(ctx, query, caseStudyID)
	if err != nil {
		return nil, apperror.NewInternal("failed to query outcomes", err)
	}
	defer rows.Close()

	outcomes := make([]casestudy.Outcome, 0)
	for rows.Next() {
		var o casestudy.Outcome
		if err := rows.Scan(&o.ID, &o.CaseStudyID, &o.Title, &o.Description, &o.Metrics, &o.OrderIndex); err != nil {
			return nil, apperror.NewInternal("failed to scan outcome row", err)
		}
		if o.Metrics == nil {
			o.Metrics = []string{}
		}
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating outcome rows", err)
	}
	return outcomes, nil
}

func (r *postgresOutcomeRepo) Upsert(ctx context.Context, caseStudyID uuid.UUID, outcomes []casestudy.Outcome) error {
	if len(outcomes) == 0 {
		return nil
	}
	query := `
		INSERT INTO outcomes (id, case_study_id, title, description, metrics, order_index)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			metrics = EXCLUDED.metrics,
			order_index = EXCLUDED.order_index
		WHERE outcomes.case_study_id = EXCLUDED.case_study_id
	`
	batch := &pgx.Batch{}
	ids := make([]uuid.UUID, 0, len(outcomes))
	for _, o := range outcomes {
		batch.Queue(query, o.ID, caseStudyID, o.Title, o.Description, orEmpty(o.Metrics), o.OrderIndex)
		ids = append(ids, o.ID)
	}
	return sendBatch(ctx, r.db, batch, "outcome", ids)
}

func (r *postgresOutcomeRepo) DeleteByIDs(ctx context.Context, caseStudyID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `DELETE FROM outcomes WHERE case_study_id = $1 AND id = ANY($2)`, caseStudyID, ids)
	if err != nil {
		return apperror.NewInternal("failed to delete outcomes", err)
	}
	return nil
}

// sendBatch runs one upsert per id inside a transaction. A statement that touches no row hit the
// ownership guard of ON CONFLICT, and rolls the batch back with Conflict.
func sendBatch(ctx context.Context, db *pgxpool.Pool, batch *pgx.Batch, what string, ids []uuid.UUID) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return apperror.NewInternal("failed to begin "+what+" upsert", err)
	}
	defer tx.Rollback(ctx)

	if err := execBatch(tx.SendBatch(ctx, batch), what, ids); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return apperror.NewInternal("failed to commit "+what+" upsert", err)
	}
	return nil
}

func execBatch(br pgx.BatchResults, what string, ids []uuid.UUID) error {
	defer br.Close()
	for _, id := range ids {
		tag, err := br.Exec()
		if err != nil {
			return apperror.NewInternal("failed to upsert "+what+"s", err)
		}
		if tag.RowsAffected() == 0 {
			return apperror.NewConflict(what, "id", id.String())
		}
	}
	if err := br.Close(); err != nil {
		return apperror.NewInternal("failed to upsert "+what+"s", err)
	}
	return nil
}
