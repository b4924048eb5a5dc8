package casestudy

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/projectshelf/internal/domain/casestudy"
	"github.com/khoahotran/projectshelf/pkg/apperror"
	"github.com/khoahotran/projectshelf/pkg/logger"
	"github.com/khoahotran/projectshelf/pkg/validator"
)

var tracer = otel.Tracer("casestudy_usecase")

// SaveCaseStudyUseCase writes a whole aggregate. The parent and children live in separate
// tables without a shared transaction, so a failed child write is compensated: a new parent
// is deleted again, an updated parent is flagged needs_repair.
type SaveCaseStudyUseCase struct {
	caseStudyRepo casestudy.Repository
	timelineRepo  casestudy.TimelineRepository
	outcomeRepo   casestudy.OutcomeRepository
	logger        logger.Logger
}

func NewSaveCaseStudyUseCase(
	csRepo casestudy.Repository,
	tlRepo casestudy.TimelineRepository,
	ocRepo casestudy.OutcomeRepository,
	log logger.Logger,
) *SaveCaseStudyUseCase {
	return &SaveCaseStudyUseCase{
		caseStudyRepo: csRepo,
		timelineRepo:  tlRepo,
		outcomeRepo:   ocRepo,
		logger:        log,
	}
}

type SaveCaseStudyInput struct {
	OwnerID uuid.UUID
	// CaseStudyID is uuid.Nil for a create.
	CaseStudyID      uuid.UUID
	Aggregate        casestudy.Aggregate
	RemovedTimelines []uuid.UUID
	RemovedOutcomes  []uuid.UUID
}

type SaveCaseStudyOutput struct {
	CaseStudyID uuid.UUID
	Created     bool
}

func (uc *SaveCaseStudyUseCase) Execute(ctx context.Context, input SaveCaseStudyInput) (*SaveCaseStudyOutput, error) {
	ctx, span := tracer.Start(ctx, "SaveCaseStudy")
	defer span.End()

	agg := input.Aggregate
	if err := agg.Validate(); err != nil {
		if fields := validator.Fields(err); fields != nil {
			return nil, apperror.NewValidationFailed(fields)
		}
		return nil, apperror.NewInvalidInput("case study is invalid", err)
	}

	var (
		out *SaveCaseStudyOutput
		err error
	)
	if input.CaseStudyID == uuid.Nil {
		out, err = uc.create(ctx, input.OwnerID, agg)
	} else {
		out, err = uc.update(ctx, input)
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("case_study_id", out.CaseStudyID.String()))
	return out, nil
}

func (uc *SaveCaseStudyUseCase) create(ctx context.Context, ownerID uuid.UUID, agg casestudy.Aggregate) (*SaveCaseStudyOutput, error) {
	now := time.Now().UTC()

	cs := agg.CaseStudy
	cs.ID = uuid.New()
	cs.OwnerID = ownerID
	cs.Featured = false
	cs.OrderIndex = 0
	cs.NeedsRepair = false
	cs.CreatedAt = now
	cs.UpdatedAt = now

	if err := uc.caseStudyRepo.Save(ctx, &cs); err != nil {
		return nil, fmt.Errorf("save case study failed: %w", err)
	}

	if err := uc.writeChildren(ctx, cs.ID, agg, true); err != nil {
		if delErr := uc.caseStudyRepo.Delete(ctx, cs.ID, ownerID); delErr != nil {
			uc.logger.Error("Failed to roll back case study after child write failure", delErr,
				zap.String("case_study_id", cs.ID.String()),
				zap.NamedError("cause", err),
			)
			return nil, apperror.NewPartialWrite(
				fmt.Sprintf("case study %s was stored without its timeline or outcomes", cs.ID), err)
		}
		return nil, apperror.NewInternal("failed to create case study", err)
	}

	return &SaveCaseStudyOutput{CaseStudyID: cs.ID, Created: true}, nil
}

func (uc *SaveCaseStudyUseCase) update(ctx context.Context, input SaveCaseStudyInput) (*SaveCaseStudyOutput, error) {
	existing, err := uc.caseStudyRepo.FindByID(ctx, input.CaseStudyID, input.OwnerID)
	if err != nil {
		return nil, err
	}

	cs := input.Aggregate.CaseStudy
	cs.ID = existing.ID
	cs.OwnerID = existing.OwnerID
	cs.Featured = existing.Featured
	cs.OrderIndex = existing.OrderIndex
	cs.NeedsRepair = false
	cs.CreatedAt = existing.CreatedAt
	cs.UpdatedAt = time.Now().UTC()

	if err := uc.caseStudyRepo.Update(ctx, &cs); err != nil {
		return nil, fmt.Errorf("update case study failed: %w", err)
	}

	childErr := uc.writeChildren(ctx, cs.ID, input.Aggregate, false)
	if childErr == nil && len(input.RemovedTimelines) > 0 {
		childErr = uc.timelineRepo.DeleteByIDs(ctx, cs.ID, input.RemovedTimelines)
	}
	if childErr == nil && len(input.RemovedOutcomes) > 0 {
		childErr = uc.outcomeRepo.DeleteByIDs(ctx, cs.ID, input.RemovedOutcomes)
	}
	if childErr != nil {
		if markErr := uc.caseStudyRepo.MarkNeedsRepair(ctx, cs.ID, cs.OwnerID, true); markErr != nil {
			uc.logger.Error("Failed to flag case study for repair", markErr, zap.String("case_study_id", cs.ID.String()))
		}
		uc.logger.Warn("Case study updated with incomplete children",
			zap.String("case_study_id", cs.ID.String()),
			zap.Error(childErr),
		)
		return nil, apperror.NewPartialWrite(
			fmt.Sprintf("case study %s was updated but its timeline or outcomes were not", cs.ID), childErr)
	}

	return &SaveCaseStudyOutput{CaseStudyID: cs.ID}, nil
}

// writeChildren upserts timelines and outcomes in their list order. With fresh every child gets a
// new id, so ids sent with a new case study can never address rows of another one.
func (uc *SaveCaseStudyUseCase) writeChildren(ctx context.Context, caseStudyID uuid.UUID, agg casestudy.Aggregate, fresh bool) error {
	if len(agg.Timelines) > 0 {
		entries := make([]casestudy.TimelineEntry, len(agg.Timelines))
		for i, t := range agg.Timelines {
			if fresh || t.ID == uuid.Nil {
				t.ID = uuid.New()
			}
			t.CaseStudyID = caseStudyID
			t.OrderIndex = i
			entries[i] = t
		}
		if err := uc.timelineRepo.Upsert(ctx, caseStudyID, entries); err != nil {
			return fmt.Errorf("save timelines failed: %w", err)
		}
	}
	if len(agg.Outcomes) > 0 {
		outcomes := make([]casestudy.Outcome, len(agg.Outcomes))
		for i, o := range agg.Outcomes {
			if fresh || o.ID == uuid.Nil {
				o.ID = uuid.New()
			}
			o.CaseStudyID = caseStudyID
			o.OrderIndex = i
			if o.Metrics == nil {
				o.Metrics = []string{}
			}
			outcomes[i] = o
		}
		if err := uc.outcomeRepo.Upsert(ctx, caseStudyID, outcomes); err != nil {
			return fmt.Errorf("save outcomes failed: %w", err)
		}
	}
	return nil
}
