package casestudy

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/khoahotran/projectshelf/internal/domain/casestudy"
	"github.com/khoahotran/projectshelf/pkg/apperror"
)

type ListCaseStudiesUseCase struct {
	caseStudyRepo casestudy.Repository
}

func NewListCaseStudiesUseCase(repo casestudy.Repository) *ListCaseStudiesUseCase {
	return &ListCaseStudiesUseCase{caseStudyRepo: repo}
}

type ListCaseStudiesInput struct {
	OwnerID uuid.UUID
}

type ListCaseStudiesOutput struct {
	CaseStudies []*casestudy.CaseStudy
}

func (uc *ListCaseStudiesUseCase) Execute(ctx context.Context, input ListCaseStudiesInput) (*ListCaseStudiesOutput, error) {
	items, err := uc.caseStudyRepo.ListByOwner(ctx, input.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("list case studies failed: %w", err)
	}
	return &ListCaseStudiesOutput{CaseStudies: items}, nil
}

// GetCaseStudyUseCase loads the full aggregate for its owner, e.g. to open an edit session.
type GetCaseStudyUseCase struct {
	caseStudyRepo casestudy.Repository
	timelineRepo  casestudy.TimelineRepository
	outcomeRepo   casestudy.OutcomeRepository
	order         casestudy.TimelineOrder
}

func NewGetCaseStudyUseCase(
	csRepo casestudy.Repository,
	tlRepo casestudy.TimelineRepository,
	ocRepo casestudy.OutcomeRepository,
	order casestudy.TimelineOrder,
) *GetCaseStudyUseCase {
	return &GetCaseStudyUseCase{caseStudyRepo: csRepo, timelineRepo: tlRepo, outcomeRepo: ocRepo, order: order}
}

type GetCaseStudyInput struct {
	OwnerID     uuid.UUID
	CaseStudyID uuid.UUID
}

type GetCaseStudyOutput struct {
	Aggregate casestudy.Aggregate
}

func (uc *GetCaseStudyUseCase) Execute(ctx context.Context, input GetCaseStudyInput) (*GetCaseStudyOutput, error) {
	ctx, span := tracer.Start(ctx, "GetCaseStudy")
	defer span.End()

	cs, err := uc.caseStudyRepo.FindByID(ctx, input.CaseStudyID, input.OwnerID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	agg := casestudy.Aggregate{CaseStudy: *cs}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := uc.timelineRepo.ListByCaseStudy(gctx, cs.ID, uc.order)
		agg.Timelines = t
		return err
	})
	g.Go(func() error {
		o, err := uc.outcomeRepo.ListByCaseStudy(gctx, cs.ID)
		agg.Outcomes = o
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("load case study children failed: %w", err)
	}
	if agg.Timelines == nil {
		agg.Timelines = []casestudy.TimelineEntry{}
	}
	if agg.Outcomes == nil {
		agg.Outcomes = []casestudy.Outcome{}
	}
	return &GetCaseStudyOutput{Aggregate: agg}, nil
}

type DeleteCaseStudyUseCase struct {
	caseStudyRepo casestudy.Repository
}

func NewDeleteCaseStudyUseCase(repo casestudy.Repository) *DeleteCaseStudyUseCase {
	return &DeleteCaseStudyUseCase{caseStudyRepo: repo}
}

type DeleteCaseStudyInput struct {
	OwnerID     uuid.UUID
	CaseStudyID uuid.UUID
}

// Execute deletes the parent; children go with it through ON DELETE CASCADE.
func (uc *DeleteCaseStudyUseCase) Execute(ctx context.Context, input DeleteCaseStudyInput) error {
	return uc.caseStudyRepo.Delete(ctx, input.CaseStudyID, input.OwnerID)
}

type SetFeaturedUseCase struct {
	caseStudyRepo casestudy.Repository
}

func NewSetFeaturedUseCase(repo casestudy.Repository) *SetFeaturedUseCase {
	return &SetFeaturedUseCase{caseStudyRepo: repo}
}

type SetFeaturedInput struct {
	OwnerID     uuid.UUID
	CaseStudyID uuid.UUID
	Featured    bool
}

func (uc *SetFeaturedUseCase) Execute(ctx context.Context, input SetFeaturedInput) error {
	return uc.caseStudyRepo.SetFeatured(ctx, input.CaseStudyID, input.OwnerID, input.Featured)
}

type ReorderCaseStudiesUseCase struct {
	caseStudyRepo casestudy.Repository
}

func NewReorderCaseStudiesUseCase(repo casestudy.Repository) *ReorderCaseStudiesUseCase {
	return &ReorderCaseStudiesUseCase{caseStudyRepo: repo}
}

type ReorderCaseStudiesInput struct {
	OwnerID uuid.UUID
	// IDs in display order; position becomes order_index.
	IDs []uuid.UUID
}

func (uc *ReorderCaseStudiesUseCase) Execute(ctx context.Context, input ReorderCaseStudiesInput) error {
	if len(input.IDs) == 0 {
		return apperror.NewValidationFailed(map[string]string{"ids": "Must contain at least 1 item(s)"})
	}
	seen := make(map[uuid.UUID]struct{}, len(input.IDs))
	for _, id := range input.IDs {
		if _, dup := seen[id]; dup {
			return apperror.NewInvalidInput(fmt.Sprintf("case study %s listed twice", id), nil)
		}
		seen[id] = struct{}{}
	}
	return uc.caseStudyRepo.SetOrder(ctx, input.OwnerID, input.IDs)
}
