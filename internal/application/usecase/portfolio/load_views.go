// Package portfolio assembles the public read models of a portfolio and its case studies.
package portfolio

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/khoahotran/projectshelf/internal/domain/casestudy"
	"github.com/khoahotran/projectshelf/internal/domain/profile"
	"github.com/khoahotran/projectshelf/pkg/apperror"
	"github.com/khoahotran/projectshelf/pkg/logger"
)

var tracer = otel.Tracer("portfolio_usecase")

// CaseStudyView is one case study with its owner's profile, ready for rendering.
type CaseStudyView struct {
	Profile   *profile.Profile
	Aggregate casestudy.Aggregate
}

// PortfolioView is a profile and all its case studies ordered by order_index.
type PortfolioView struct {
	Profile     *profile.Profile
	CaseStudies []*casestudy.CaseStudy
}

// Featured returns the featured case studies in display order.
func (v *PortfolioView) Featured() []*casestudy.CaseStudy {
	out := make([]*casestudy.CaseStudy, 0)
	for _, cs := range v.CaseStudies {
		if cs.Featured {
			out = append(out, cs)
		}
	}
	return out
}

// Regular returns the non-featured case studies in display order.
func (v *PortfolioView) Regular() []*casestudy.CaseStudy {
	out := make([]*casestudy.CaseStudy, 0)
	for _, cs := range v.CaseStudies {
		if !cs.Featured {
			out = append(out, cs)
		}
	}
	return out
}

type LoadCaseStudyViewUseCase struct {
	profileRepo   profile.Repository
	caseStudyRepo casestudy.Repository
	timelineRepo  casestudy.TimelineRepository
	outcomeRepo   casestudy.OutcomeRepository
	order         casestudy.TimelineOrder
	logger        logger.Logger
}

func NewLoadCaseStudyViewUseCase(
	pRepo profile.Repository,
	csRepo casestudy.Repository,
	tlRepo casestudy.TimelineRepository,
	ocRepo casestudy.OutcomeRepository,
	order casestudy.TimelineOrder,
	log logger.Logger,
) *LoadCaseStudyViewUseCase {
	return &LoadCaseStudyViewUseCase{
		profileRepo:   pRepo,
		caseStudyRepo: csRepo,
		timelineRepo:  tlRepo,
		outcomeRepo:   ocRepo,
		order:         order,
		logger:        log,
	}
}

type LoadCaseStudyViewInput struct {
	Username    string
	CaseStudyID uuid.UUID
}

// Execute returns NotFound for every failure, including store errors and a case study that
// belongs to someone else, so public pages never tell those cases apart.
func (uc *LoadCaseStudyViewUseCase) Execute(ctx context.Context, input LoadCaseStudyViewInput) (*CaseStudyView, error) {
	ctx, span := tracer.Start(ctx, "LoadCaseStudyView")
	defer span.End()
	span.SetAttributes(
		attribute.String("username", input.Username),
		attribute.String("case_study_id", input.CaseStudyID.String()),
	)

	view, err := uc.load(ctx, input)
	if err != nil {
		span.RecordError(err)
		if !apperror.IsNotFound(err) {
			uc.logger.Warn("Case study view failed to load",
				zap.String("username", input.Username),
				zap.String("case_study_id", input.CaseStudyID.String()),
				zap.Error(err),
			)
		}
		return nil, apperror.NewNotFound("case study", input.CaseStudyID.String())
	}
	return view, nil
}

func (uc *LoadCaseStudyViewUseCase) load(ctx context.Context, input LoadCaseStudyViewInput) (*CaseStudyView, error) {
	p, err := uc.profileRepo.FindByUsername(ctx, profile.NormalizeUsername(input.Username))
	if err != nil {
		return nil, err
	}

	// Scoped to the profile's id: a case study of another owner is simply not found.
	cs, err := uc.caseStudyRepo.FindByID(ctx, input.CaseStudyID, p.ID)
	if err != nil {
		return nil, err
	}

	var (
		timelines []casestudy.TimelineEntry
		outcomes  []casestudy.Outcome
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		timelines, err = uc.timelineRepo.ListByCaseStudy(gctx, cs.ID, uc.order)
		return err
	})
	g.Go(func() error {
		var err error
		outcomes, err = uc.outcomeRepo.ListByCaseStudy(gctx, cs.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if timelines == nil {
		timelines = []casestudy.TimelineEntry{}
	}
	if outcomes == nil {
		outcomes = []casestudy.Outcome{}
	}
	if cs.Images == nil {
		cs.Images = []casestudy.MediaItem{}
	}
	return &CaseStudyView{
		Profile:   p,
		Aggregate: casestudy.Aggregate{CaseStudy: *cs, Timelines: timelines, Outcomes: outcomes},
	}, nil
}

type LoadPortfolioViewUseCase struct {
	profileRepo   profile.Repository
	caseStudyRepo casestudy.Repository
	logger        logger.Logger
}

func NewLoadPortfolioViewUseCase(pRepo profile.Repository, csRepo casestudy.Repository, log logger.Logger) *LoadPortfolioViewUseCase {
	return &LoadPortfolioViewUseCase{profileRepo: pRepo, caseStudyRepo: csRepo, logger: log}
}

type LoadPortfolioViewInput struct {
	Username string
}

// Execute collapses every failure to NotFound, like LoadCaseStudyViewUseCase.
func (uc *LoadPortfolioViewUseCase) Execute(ctx context.Context, input LoadPortfolioViewInput) (*PortfolioView, error) {
	ctx, span := tracer.Start(ctx, "LoadPortfolioView")
	defer span.End()
	span.SetAttributes(attribute.String("username", input.Username))

	view, err := uc.load(ctx, input)
	if err != nil {
		span.RecordError(err)
		if !apperror.IsNotFound(err) {
			uc.logger.Warn("Portfolio view failed to load",
				zap.String("username", input.Username),
				zap.Error(err),
			)
		}
		return nil, apperror.NewNotFound("profile", input.Username)
	}
	span.SetAttributes(attribute.Int("case_study_count", len(view.CaseStudies)))
	return view, nil
}

func (uc *LoadPortfolioViewUseCase) load(ctx context.Context, input LoadPortfolioViewInput) (*PortfolioView, error) {
	p, err := uc.profileRepo.FindByUsername(ctx, profile.NormalizeUsername(input.Username))
	if err != nil {
		return nil, err
	}

	items, err := uc.caseStudyRepo.ListByOwner(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*casestudy.CaseStudy{}
	}
	return &PortfolioView{Profile: p, CaseStudies: items}, nil
}
