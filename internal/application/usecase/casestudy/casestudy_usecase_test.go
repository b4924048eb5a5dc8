package casestudy

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/projectshelf/internal/domain/casestudy"
	"github.com/khoahotran/projectshelf/internal/testutil/memstore"
	"github.com/khoahotran/projectshelf/pkg/apperror"
	"github.com/khoahotran/projectshelf/pkg/logger"
)

func validAggregate() casestudy.Aggregate {
	return casestudy.Aggregate{
		CaseStudy: casestudy.CaseStudy{
			Title: "Checkout redesign", Description: "d", Overview: "o", Challenge: "c",
			Solution: "s", Outcome: "r", Duration: "3 months", Role: "Lead", TeamSize: 3,
			Tools: []string{"Figma"}, Technologies: []string{"Go"}, Images: []casestudy.MediaItem{},
			Featured: true, OrderIndex: 7,
		},
		Timelines: []casestudy.TimelineEntry{
			{ID: uuid.New(), Title: "Kickoff", Description: "Initial meeting", Date: "2024-01-05"},
			{ID: uuid.New(), Title: "Launch", Description: "Shipped", Date: "2024-03-01"},
		},
		Outcomes: []casestudy.Outcome{
			{ID: uuid.New(), Title: "Conversion", Description: "up", Metrics: []string{"+12%"}},
		},
	}
}

func newSave(st *memstore.Store) *SaveCaseStudyUseCase {
	return NewSaveCaseStudyUseCase(st.CaseStudies(), st.Timelines(), st.Outcomes(), logger.NewNopLogger())
}

func newGet(st *memstore.Store) *GetCaseStudyUseCase {
	return NewGetCaseStudyUseCase(st.CaseStudies(), st.Timelines(), st.Outcomes(), casestudy.OrderByDate)
}

func TestCreateInsertsParentThenChildren(t *testing.T) {
	st := memstore.New()
	owner := uuid.New()
	ctx := context.Background()

	out, err := newSave(st).Execute(ctx, SaveCaseStudyInput{OwnerID: owner, Aggregate: validAggregate()})
	require.NoError(t, err)
	assert.True(t, out.Created)

	got, err := newGet(st).Execute(ctx, GetCaseStudyInput{OwnerID: owner, CaseStudyID: out.CaseStudyID})
	require.NoError(t, err)
	assert.False(t, got.Aggregate.CaseStudy.Featured, "new case studies are never featured")
	assert.Equal(t, 0, got.Aggregate.CaseStudy.OrderIndex)
	assert.Equal(t, owner, got.Aggregate.CaseStudy.OwnerID)
	require.Len(t, got.Aggregate.Timelines, 2)
	assert.Equal(t, "Kickoff", got.Aggregate.Timelines[0].Title)
	require.Len(t, got.Aggregate.Outcomes, 1)
	assert.Equal(t, []string{"+12%"}, got.Aggregate.Outcomes[0].Metrics)
}

func TestCreateAssignsMissingChildIDs(t *testing.T) {
	st := memstore.New()
	owner := uuid.New()
	ctx := context.Background()
	agg := validAggregate()
	agg.Timelines[0].ID = uuid.Nil
	agg.Timelines[1].ID = uuid.Nil
	agg.Outcomes[0].ID = uuid.Nil

	out, err := newSave(st).Execute(ctx, SaveCaseStudyInput{OwnerID: owner, Aggregate: agg})
	require.NoError(t, err)

	got, err := newGet(st).Execute(ctx, GetCaseStudyInput{OwnerID: owner, CaseStudyID: out.CaseStudyID})
	require.NoError(t, err)
	require.Len(t, got.Aggregate.Timelines, 2)
	assert.NotEqual(t, uuid.Nil, got.Aggregate.Timelines[0].ID)
	assert.NotEqual(t, got.Aggregate.Timelines[0].ID, got.Aggregate.Timelines[1].ID)
	require.Len(t, got.Aggregate.Outcomes, 1)
	assert.NotEqual(t, uuid.Nil, got.Aggregate.Outcomes[0].ID)
}

func TestCreateRejectsInvalidAggregate(t *testing.T) {
	st := memstore.New()
	agg := validAggregate()
	agg.CaseStudy.Title = ""
	agg.Timelines[1].Date = ""

	_, err := newSave(st).Execute(context.Background(), SaveCaseStudyInput{OwnerID: uuid.New(), Aggregate: agg})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Contains(t, appErr.Fields, "title")
	assert.Contains(t, appErr.Fields, "timelines[1].date")
}

func TestCreateCompensatesChildFailure(t *testing.T) {
	st := memstore.New()
	owner := uuid.New()
	st.Fail("outcomes.Upsert", nil)

	_, err := newSave(st).Execute(context.Background(), SaveCaseStudyInput{OwnerID: owner, Aggregate: validAggregate()})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrInternal)

	list, err := st.CaseStudies().ListByOwner(context.Background(), owner)
	require.NoError(t, err)
	assert.Empty(t, list, "the parent is removed again")
}

func TestCreateReportsPartialWriteWhenRollbackFails(t *testing.T) {
	st := memstore.New()
	st.Fail("timelines.Upsert", nil)
	st.Fail("case_studies.Delete", nil)

	_, err := newSave(st).Execute(context.Background(), SaveCaseStudyInput{OwnerID: uuid.New(), Aggregate: validAggregate()})

	assert.ErrorIs(t, err, apperror.ErrPartialWrite)
	assert.ErrorIs(t, err, memstore.ErrInjected)
}

func TestUpdateUpsertsAndDeletesRemoved(t *testing.T) {
	st := memstore.New()
	owner := uuid.New()
	ctx := context.Background()
	save := newSave(st)

	created, err := save.Execute(ctx, SaveCaseStudyInput{OwnerID: owner, Aggregate: validAggregate()})
	require.NoError(t, err)
	require.NoError(t, st.CaseStudies().SetFeatured(ctx, created.CaseStudyID, owner, true))

	stored, err := newGet(st).Execute(ctx, GetCaseStudyInput{OwnerID: owner, CaseStudyID: created.CaseStudyID})
	require.NoError(t, err)
	agg := stored.Aggregate
	removed := agg.Timelines[0].ID
	agg.Timelines = agg.Timelines[1:]
	agg.Timelines[0].Title = "Go live"
	agg.CaseStudy.Title = "Checkout v2"

	_, err = save.Execute(ctx, SaveCaseStudyInput{
		OwnerID: owner, CaseStudyID: created.CaseStudyID, Aggregate: agg,
		RemovedTimelines: []uuid.UUID{removed},
	})
	require.NoError(t, err)

	got, err := newGet(st).Execute(ctx, GetCaseStudyInput{OwnerID: owner, CaseStudyID: created.CaseStudyID})
	require.NoError(t, err)
	assert.Equal(t, "Checkout v2", got.Aggregate.CaseStudy.Title)
	assert.True(t, got.Aggregate.CaseStudy.Featured, "update keeps featured")
	require.Len(t, got.Aggregate.Timelines, 1)
	assert.Equal(t, "Go live", got.Aggregate.Timelines[0].Title)
	assert.Equal(t, agg.Timelines[0].ID, got.Aggregate.Timelines[0].ID, "update keeps child ids")
}

func TestCreateIgnoresClientChildIDs(t *testing.T) {
	st := memstore.New()
	ctx := context.Background()
	firstOwner, secondOwner := uuid.New(), uuid.New()

	first, err := newSave(st).Execute(ctx, SaveCaseStudyInput{OwnerID: firstOwner, Aggregate: validAggregate()})
	require.NoError(t, err)
	firstAgg, err := newGet(st).Execute(ctx, GetCaseStudyInput{OwnerID: firstOwner, CaseStudyID: first.CaseStudyID})
	require.NoError(t, err)

	agg := validAggregate()
	agg.Timelines[0].ID = firstAgg.Aggregate.Timelines[0].ID
	agg.Timelines[0].Title = "Overwritten"
	agg.Outcomes[0].ID = firstAgg.Aggregate.Outcomes[0].ID

	out, err := newSave(st).Execute(ctx, SaveCaseStudyInput{OwnerID: secondOwner, Aggregate: agg})
	require.NoError(t, err)

	got, err := newGet(st).Execute(ctx, GetCaseStudyInput{OwnerID: secondOwner, CaseStudyID: out.CaseStudyID})
	require.NoError(t, err)
	require.Len(t, got.Aggregate.Timelines, 2, "no entry is dropped")
	require.Len(t, got.Aggregate.Outcomes, 1)
	assert.NotEqual(t, firstAgg.Aggregate.Timelines[0].ID, got.Aggregate.Timelines[0].ID)
	assert.NotEqual(t, firstAgg.Aggregate.Outcomes[0].ID, got.Aggregate.Outcomes[0].ID)

	again, err := newGet(st).Execute(ctx, GetCaseStudyInput{OwnerID: firstOwner, CaseStudyID: first.CaseStudyID})
	require.NoError(t, err)
	assert.Equal(t, firstAgg.Aggregate.Timelines, again.Aggregate.Timelines)
}

func TestUpdateWithForeignChildIDIsReported(t *testing.T) {
	st := memstore.New()
	owner := uuid.New()
	ctx := context.Background()
	save := newSave(st)

	other, err := save.Execute(ctx, SaveCaseStudyInput{OwnerID: uuid.New(), Aggregate: validAggregate()})
	require.NoError(t, err)
	otherTimelines, err := st.Timelines().ListByCaseStudy(ctx, other.CaseStudyID, casestudy.OrderByIndex)
	require.NoError(t, err)

	mine, err := save.Execute(ctx, SaveCaseStudyInput{OwnerID: owner, Aggregate: validAggregate()})
	require.NoError(t, err)

	agg := validAggregate()
	agg.Timelines[0].ID = otherTimelines[0].ID
	_, err = save.Execute(ctx, SaveCaseStudyInput{OwnerID: owner, CaseStudyID: mine.CaseStudyID, Aggregate: agg})
	assert.ErrorIs(t, err, apperror.ErrPartialWrite)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	after, err := st.Timelines().ListByCaseStudy(ctx, other.CaseStudyID, casestudy.OrderByIndex)
	require.NoError(t, err)
	assert.Equal(t, otherTimelines, after)
}

func TestUpdateFlagsNeedsRepairOnChildFailure(t *testing.T) {
	st := memstore.New()
	owner := uuid.New()
	ctx := context.Background()
	save := newSave(st)

	created, err := save.Execute(ctx, SaveCaseStudyInput{OwnerID: owner, Aggregate: validAggregate()})
	require.NoError(t, err)

	st.Fail("timelines.DeleteByIDs", nil)
	_, err = save.Execute(ctx, SaveCaseStudyInput{
		OwnerID: owner, CaseStudyID: created.CaseStudyID, Aggregate: validAggregate(),
		RemovedTimelines: []uuid.UUID{uuid.New()},
	})
	assert.ErrorIs(t, err, apperror.ErrPartialWrite)

	cs, err := st.CaseStudies().FindByID(ctx, created.CaseStudyID, owner)
	require.NoError(t, err)
	assert.True(t, cs.NeedsRepair)
}

func TestUpdateOfForeignCaseStudyIsNotFound(t *testing.T) {
	st := memstore.New()
	ctx := context.Background()
	created, err := newSave(st).Execute(ctx, SaveCaseStudyInput{OwnerID: uuid.New(), Aggregate: validAggregate()})
	require.NoError(t, err)

	_, err = newSave(st).Execute(ctx, SaveCaseStudyInput{
		OwnerID: uuid.New(), CaseStudyID: created.CaseStudyID, Aggregate: validAggregate(),
	})
	assert.True(t, apperror.IsNotFound(err))
}

func TestReorderAndFeature(t *testing.T) {
	st := memstore.New()
	owner := uuid.New()
	ctx := context.Background()
	save := newSave(st)

	a, err := save.Execute(ctx, SaveCaseStudyInput{OwnerID: owner, Aggregate: validAggregate()})
	require.NoError(t, err)
	b, err := save.Execute(ctx, SaveCaseStudyInput{OwnerID: owner, Aggregate: validAggregate()})
	require.NoError(t, err)

	require.NoError(t, NewReorderCaseStudiesUseCase(st.CaseStudies()).Execute(ctx, ReorderCaseStudiesInput{
		OwnerID: owner, IDs: []uuid.UUID{b.CaseStudyID, a.CaseStudyID},
	}))
	require.NoError(t, NewSetFeaturedUseCase(st.CaseStudies()).Execute(ctx, SetFeaturedInput{
		OwnerID: owner, CaseStudyID: a.CaseStudyID, Featured: true,
	}))

	out, err := NewListCaseStudiesUseCase(st.CaseStudies()).Execute(ctx, ListCaseStudiesInput{OwnerID: owner})
	require.NoError(t, err)
	require.Len(t, out.CaseStudies, 2)
	assert.Equal(t, b.CaseStudyID, out.CaseStudies[0].ID)
	assert.True(t, out.CaseStudies[1].Featured)

	err = NewReorderCaseStudiesUseCase(st.CaseStudies()).Execute(ctx, ReorderCaseStudiesInput{
		OwnerID: owner, IDs: []uuid.UUID{a.CaseStudyID, a.CaseStudyID},
	})
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
}

func TestDeleteRemovesChildren(t *testing.T) {
	st := memstore.New()
	owner := uuid.New()
	ctx := context.Background()
	created, err := newSave(st).Execute(ctx, SaveCaseStudyInput{OwnerID: owner, Aggregate: validAggregate()})
	require.NoError(t, err)

	require.NoError(t, NewDeleteCaseStudyUseCase(st.CaseStudies()).Execute(ctx, DeleteCaseStudyInput{OwnerID: owner, CaseStudyID: created.CaseStudyID}))

	tl, err := st.Timelines().ListByCaseStudy(ctx, created.CaseStudyID, casestudy.OrderByIndex)
	require.NoError(t, err)
	assert.Empty(t, tl)

	_, err = newGet(st).Execute(ctx, GetCaseStudyInput{OwnerID: owner, CaseStudyID: created.CaseStudyID})
	assert.True(t, apperror.IsNotFound(err))
}
