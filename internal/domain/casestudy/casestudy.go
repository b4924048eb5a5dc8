package casestudy

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/khoahotran/projectshelf/pkg/validator"
)

type CaseStudy struct {
	ID           uuid.UUID   `json:"id"`
	OwnerID      uuid.UUID   `json:"user_id"`
	Title        string      `json:"title" validate:"required,max=200"`
	Description  string      `json:"description" validate:"required"`
	Overview     string      `json:"overview" validate:"required"`
	Challenge    string      `json:"challenge" validate:"required"`
	Solution     string      `json:"solution" validate:"required"`
	Outcome      string      `json:"outcome" validate:"required"`
	CoverImage   string      `json:"cover_image" validate:"omitempty,url"`
	Tools        []string    `json:"tools" validate:"min=1,dive,required"`
	Technologies []string    `json:"technologies" validate:"min=1,dive,required"`
	Duration     string      `json:"duration" validate:"required"`
	Role         string      `json:"role" validate:"required"`
	TeamSize     int         `json:"team_size" validate:"min=1"`
	VideoURL     string      `json:"video_url" validate:"omitempty,url"`
	LiveURL      string      `json:"live_url" validate:"omitempty,url"`
	GithubURL    string      `json:"github_url" validate:"omitempty,url"`
	Client       string      `json:"client"`
	Industry     string      `json:"industry"`
	Featured     bool        `json:"featured"`
	OrderIndex   int         `json:"order_index"`
	Images       []MediaItem `json:"images" validate:"dive"`
	// NeedsRepair is set when an update stored the parent row but a child write failed.
	NeedsRepair bool      `json:"needs_repair"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasLinks reports whether any external link is set.
func (c *CaseStudy) HasLinks() bool {
	return c.LiveURL != "" || c.GithubURL != "" || c.VideoURL != ""
}

type TimelineEntry struct {
	ID          uuid.UUID `json:"id"`
	CaseStudyID uuid.UUID `json:"case_study_id"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description" validate:"required"`
	// Date is a calendar date, YYYY-MM-DD.
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	OrderIndex int    `json:"order_index"`
}

type Outcome struct {
	ID          uuid.UUID `json:"id"`
	CaseStudyID uuid.UUID `json:"case_study_id"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description" validate:"required"`
	Metrics     []string  `json:"metrics"`
	OrderIndex  int       `json:"order_index"`
}

// Aggregate is a case study with its child collections. Children are never nil.
type Aggregate struct {
	CaseStudy CaseStudy       `json:"case_study"`
	Timelines []TimelineEntry `json:"timelines"`
	Outcomes  []Outcome       `json:"outcomes"`
}

// Validate checks the parent and every child, returning one *validator.ValidationError
// with paths such as "title" or "timelines[1].date".
func (a *Aggregate) Validate() error {
	fields := map[string]string{}

	if err := collect(fields, "", validator.Struct(&a.CaseStudy)); err != nil {
		return err
	}
	for i := range a.Timelines {
		if err := collect(fields, fmt.Sprintf("timelines[%d].", i), validator.Struct(&a.Timelines[i])); err != nil {
			return err
		}
	}
	for i := range a.Outcomes {
		if err := collect(fields, fmt.Sprintf("outcomes[%d].", i), validator.Struct(&a.Outcomes[i])); err != nil {
			return err
		}
	}

	if len(fields) > 0 {
		return &validator.ValidationError{Errors: fields}
	}
	return nil
}

// collect merges field errors into dst and returns err only when it is not a validation error.
func collect(dst map[string]string, prefix string, err error) error {
	if err == nil {
		return nil
	}
	f := validator.Fields(err)
	if f == nil {
		return err
	}
	for k, v := range f {
		dst[prefix+k] = v
	}
	return nil
}

type Repository interface {
	Save(ctx context.Context, cs *CaseStudy) error
	Update(ctx context.Context, cs *CaseStudy) error
	Delete(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) (*CaseStudy, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*CaseStudy, error)
	SetFeatured(ctx context.Context, id uuid.UUID, ownerID uuid.UUID, featured bool) error
	SetOrder(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) error
	MarkNeedsRepair(ctx context.Context, id uuid.UUID, ownerID uuid.UUID, needsRepair bool) error
}

type TimelineRepository interface {
	ListByCaseStudy(ctx context.Context, caseStudyID uuid.UUID, order TimelineOrder) ([]TimelineEntry, error)
	Upsert(ctx context.Context, caseStudyID uuid.UUID, entries []TimelineEntry) error
	DeleteByIDs(ctx context.Context, caseStudyID uuid.UUID, ids []uuid.UUID) error
}

type OutcomeRepository interface {
	ListByCaseStudy(ctx context.Context, caseStudyID uuid.UUID) ([]Outcome, error)
	Upsert(ctx context.Context, caseStudyID uuid.UUID, outcomes []Outcome) error
	DeleteByIDs(ctx context.Context, caseStudyID uuid.UUID, ids []uuid.UUID) error
}
