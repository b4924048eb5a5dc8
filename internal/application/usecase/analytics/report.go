package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/khoahotran/projectshelf/internal/domain/analytics"
	"github.com/khoahotran/projectshelf/internal/domain/casestudy"
	"github.com/khoahotran/projectshelf/pkg/apperror"
)

const (
	topPagesLimit       = 5
	recentActivityLimit = 10
)

const defaultMaxRangeDays = 366

type GetReportUseCase struct {
	repo        analytics.Repository
	defaultDays int
	maxDays     int
	now         func() time.Time
}

// NewGetReportUseCase builds the report use case. maxDays caps an explicit range; values below
// one fall back to a year.
func NewGetReportUseCase(repo analytics.Repository, defaultDays, maxDays int) *GetReportUseCase {
	if maxDays < 1 {
		maxDays = defaultMaxRangeDays
	}
	return &GetReportUseCase{repo: repo, defaultDays: defaultDays, maxDays: maxDays, now: time.Now}
}

type GetReportInput struct {
	OwnerID uuid.UUID
	// Start and End are calendar days, inclusive. Zero values select the default range.
	Start time.Time
	End   time.Time
}

type Report struct {
	Start           string                    `json:"start"`
	End             string                    `json:"end"`
	Overview        analytics.Overview        `json:"overview"`
	Series          []analytics.DailyPoint    `json:"series"`
	TopPages        []analytics.PageStat      `json:"top_pages"`
	Insights        analytics.Insights        `json:"insights"`
	InsightsDisplay analytics.InsightsDisplay `json:"insights_display"`
	RecentActivity  []analytics.Activity      `json:"recent_activity"`
}

func (uc *GetReportUseCase) Execute(ctx context.Context, input GetReportInput) (*Report, error) {
	ctx, span := tracer.Start(ctx, "GetReport")
	defer span.End()

	rng := analytics.LastDays(uc.now().UTC(), uc.defaultDays)
	if !input.Start.IsZero() {
		rng.Start = input.Start
	}
	if !input.End.IsZero() {
		rng.End = input.End
	}
	if rng.End.Before(rng.Start) {
		return nil, apperror.NewValidationFailed(map[string]string{"end": "Must not be before start"})
	}

	from, to := rng.Bounds()
	if days := int(to.Sub(from).Round(24*time.Hour) / (24 * time.Hour)); days > uc.maxDays {
		return nil, apperror.NewValidationFailed(map[string]string{
			"end": fmt.Sprintf("Range must not exceed %d days", uc.maxDays),
		})
	}
	span.SetAttributes(attribute.String("from", from.String()), attribute.String("to", to.String()))

	events, err := uc.repo.ListByOwner(ctx, input.OwnerID, from, to)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list analytics events failed: %w", err)
	}

	insights := analytics.ComputeInsights(events)
	return &Report{
		Start:           rng.Start.Format(analytics.DateLayout),
		End:             rng.End.Format(analytics.DateLayout),
		Overview:        analytics.ComputeOverview(events),
		Series:          analytics.ComputeDailySeries(events, rng.Start, rng.End),
		TopPages:        analytics.TopPages(events, topPagesLimit),
		Insights:        insights.Rounded(),
		InsightsDisplay: insights.Display(),
		RecentActivity:  analytics.RecentActivity(events, recentActivityLimit),
	}, nil
}

type GetDashboardStatsUseCase struct {
	repo          analytics.Repository
	caseStudyRepo casestudy.Repository
	now           func() time.Time
}

func NewGetDashboardStatsUseCase(repo analytics.Repository, csRepo casestudy.Repository) *GetDashboardStatsUseCase {
	return &GetDashboardStatsUseCase{repo: repo, caseStudyRepo: csRepo, now: time.Now}
}

func (uc *GetDashboardStatsUseCase) Execute(ctx context.Context, ownerID uuid.UUID) (*analytics.DashboardStats, error) {
	events, err := uc.repo.ListByOwner(ctx, ownerID, time.Time{}, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("list analytics events failed: %w", err)
	}
	items, err := uc.caseStudyRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list case studies failed: %w", err)
	}
	stats := analytics.ComputeDashboardStats(events, len(items), uc.now().UTC())
	return &stats, nil
}
