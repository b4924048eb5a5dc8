package persistence

import (
	"context"
	"encoding/json"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/projectshelf/internal/domain/casestudy"
	"github.com/khoahotran/projectshelf/pkg/apperror"
	"github.com/khoahotran/projectshelf/pkg/logger"
)

type postgresCaseStudyRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresCaseStudyRepo(db *pgxpool.Pool, logger logger.Logger) casestudy.Repository {
	return &postgresCaseStudyRepo{db: db, logger: logger}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const caseStudyColumns = `id, user_id, title, description, overview, challenge, solution, outcome, cover_image,
	tools, technologies, duration, role, team_size, video_url, live_url, github_url, client, industry,
	featured, order_index, images, needs_repair, created_at, updated_at`

func scanCaseStudy(row pgx.Row, l logger.Logger) (*casestudy.CaseStudy, error) {
	cs := &casestudy.CaseStudy{}
	var imagesBytes []byte

	err := row.Scan(
		&cs.ID, &cs.OwnerID, &cs.Title, &cs.Description, &cs.Overview, &cs.Challenge,
		&cs.Solution, &cs.Outcome, &cs.CoverImage, &cs.Tools, &cs.Technologies,
		&cs.Duration, &cs.Role, &cs.TeamSize, &cs.VideoURL, &cs.LiveURL, &cs.GithubURL,
		&cs.Client, &cs.Industry, &cs.Featured, &cs.OrderIndex, &imagesBytes,
		&cs.NeedsRepair, &cs.CreatedAt, &cs.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("case study", "")
		}
		return nil, apperror.NewInternal("failed to scan case study row", err)
	}

	images, err := casestudy.NormalizeImages(imagesBytes)
	if err != nil {
		l.Warn("Failed to decode case study images", zap.String("case_study_id", cs.ID.String()), zap.Error(err))
		images = []casestudy.MediaItem{}
	}
	cs.Images = images
	if cs.Tools == nil {
		cs.Tools = []string{}
	}
	if cs.Technologies == nil {
		cs.Technologies = []string{}
	}
	return cs, nil
}

func scanCaseStudies(rows pgx.Rows, l logger.Logger) ([]*casestudy.CaseStudy, error) {
	defer rows.Close()
	items := make([]*casestudy.CaseStudy, 0)
	for rows.Next() {
		cs, err := scanCaseStudy(rows, l)
		if err != nil {
			return nil, err
		}
		items = append(items, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating case study rows", err)
	}
	return items, nil
}

func marshalImages(images []casestudy.MediaItem) ([]byte, error) {
	if images == nil {
		images = []casestudy.MediaItem{}
	}
	b, err := json.Marshal(images)
	if err != nil {
		return nil, apperror.NewInternal("failed to marshal case study images", err)
	}
	return b, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (r *postgresCaseStudyRepo) Save(ctx context.Context, cs *casestudy.CaseStudy) error {
	imagesBytes, err := marshalImages(cs.Images)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO case_studies (` + caseStudyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
	`
	_, err = r.db.Exec(ctx, query,
		cs.ID, cs.OwnerID, cs.Title, cs.Description, cs.Overview, cs.Challenge,
		cs.Solution, cs.Outcome, cs.CoverImage, orEmpty(cs.Tools), orEmpty(cs.Technologies),
		cs.Duration, cs.Role, cs.TeamSize, cs.VideoURL, cs.LiveURL, cs.GithubURL,
		cs.Client, cs.Industry, cs.Featured, cs.OrderIndex, imagesBytes,
		cs.NeedsRepair, cs.CreatedAt, cs.UpdatedAt,
	)
	if err != nil {
		return apperror.NewInternal("failed to save case study", err)
	}
	return nil
}

func (r *postgresCaseStudyRepo) Update(ctx context.Context, cs *casestudy.CaseStudy) error {
	imagesBytes, err := marshalImages(cs.Images)
	if err != nil {
		return err
	}

	query := `
		UPDATE case_studies SET
			title = $3, description = $4, overview = $5, challenge = $6, solution = $7, outcome = $8,
			cover_image = $9, tools = $10, technologies = $11, duration = $12, role = $13, team_size = $14,
			video_url = $15, live_url = $16, github_url = $17, client = $18, industry = $19,
			featured = $20, order_index = $21, images = $22, needs_repair = $23, updated_at = $24
		WHERE id = $1 AND user_id = $2
	`
	cmdTag, err := r.db.Exec(ctx, query,
		cs.ID, cs.OwnerID, cs.Title, cs.Description, cs.Overview, cs.Challenge, cs.Solution, cs.Outcome,
		cs.CoverImage, orEmpty(cs.Tools), orEmpty(cs.Technologies), cs.Duration, cs.Role, cs.TeamSize,
		cs.VideoURL, cs.LiveURL, cs.GithubURL, cs.Client, cs.Industry,
		cs.Featured, cs.OrderIndex, imagesBytes, cs.NeedsRepair, cs.UpdatedAt,
	)
	if err != nil {
		return apperror.NewInternal("failed to update case study", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("case study", cs.ID.String())
	}
	return nil
}

// Delete removes the case study; timelines and outcomes go with it through ON DELETE CASCADE.
func (r *postgresCaseStudyRepo) Delete(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM case_studies WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return apperror.NewInternal("failed to delete case study", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("case study", id.String())
	}
	return nil
}

func (r *postgresCaseStudyRepo) FindByID(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) (*casestudy.CaseStudy, error) {
	query := `SELECT ` + caseStudyColumns + ` FROM case_studies WHERE id = $1 AND user_id = $2`
	cs, err := scanCaseStudy(r.db.QueryRow(ctx, query, id, ownerID), r.logger)
	if apperror.IsNotFound(err) {
		return nil, apperror.NewNotFound("case study", id.String())
	}
	return cs, err
}

func (r *postgresCaseStudyRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*casestudy.CaseStudy, error) {
	builder := psql.Select(caseStudyColumns).
		From("case_studies").
		Where(sq.Eq{"user_id": ownerID}).
		OrderBy("order_index ASC", "created_at DESC")

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build list case studies query", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query case studies by owner", err)
	}
	return scanCaseStudies(rows, r.logger)
}

func (r *postgresCaseStudyRepo) SetFeatured(ctx context.Context, id uuid.UUID, ownerID uuid.UUID, featured bool) error {
	query := `UPDATE case_studies SET featured = $3, updated_at = NOW() WHERE id = $1 AND user_id = $2`
	cmdTag, err := r.db.Exec(ctx, query, id, ownerID, featured)
	if err != nil {
		return apperror.NewInternal("failed to set featured", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("case study", id.String())
	}
	return nil
}

// SetOrder assigns order_index 0..n-1 following ids. Either every id belongs to the owner and
// all rows are updated, or nothing changes.
func (r *postgresCaseStudyRepo) SetOrder(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return apperror.NewInternal("failed to begin reorder", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE case_studies AS cs SET order_index = o.idx - 1, updated_at = NOW()
		FROM unnest($2::uuid[]) WITH ORDINALITY AS o(id, idx)
		WHERE cs.id = o.id AND cs.user_id = $1
	`
	cmdTag, err := tx.Exec(ctx, query, ownerID, ids)
	if err != nil {
		return apperror.NewInternal("failed to reorder case studies", err)
	}
	if cmdTag.RowsAffected() != int64(len(ids)) {
		return apperror.NewNotFound("case study", "one or more ids")
	}

	if err := tx.Commit(ctx); err != nil {
		return apperror.NewInternal("failed to commit reorder", err)
	}
	return nil
}

func (r *postgresCaseStudyRepo) MarkNeedsRepair(ctx context.Context, id uuid.UUID, ownerID uuid.UUID, needsRepair bool) error {
	query := `UPDATE case_studies SET needs_repair = $3 WHERE id = $1 AND user_id = $2`
	cmdTag, err := r.db.Exec(ctx, query, id, ownerID, needsRepair)
	if err != nil {
		return apperror.NewInternal("failed to flag case study", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("case study", id.String())
	}
	return nil
}
