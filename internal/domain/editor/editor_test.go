package editor

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/khoahotran/projectshelf/internal/domain/casestudy"
	"github.com/stretchr/testify/suite"
)

func strp(s string) *string { return &s }

type EditorSuite struct {
	suite.Suite
	owner uuid.UUID
	now   time.Time
	s     *Session
}

func TestEditorSuite(t *testing.T) {
	suite.Run(t, new(EditorSuite))
}

func (st *EditorSuite) SetupTest() {
	st.owner = uuid.New()
	st.now = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	st.s = NewCreateSession(st.owner, st.now)
}

func (st *EditorSuite) fillRequired() {
	for field, v := range map[string]any{
		"title": "Checkout", "description": "d", "overview": "o", "challenge": "c",
		"solution": "s", "outcome": "r", "duration": "3 months", "role": "Lead", "team_size": float64(3),
	} {
		st.Require().NoError(st.s.EditField(field, v))
	}
	_, err := st.s.AddTool("Figma")
	st.Require().NoError(err)
	_, err = st.s.AddTechnology("Go")
	st.Require().NoError(err)
}

func (st *EditorSuite) TestNewCreateSessionDefaults() {
	st.Equal(StateEditing, st.s.State)
	st.Equal(TabOverview, st.s.ActiveTab)
	st.Equal(1, st.s.Draft.CaseStudy.TeamSize)
	st.NotNil(st.s.Draft.Timelines)
	st.NotNil(st.s.Draft.Outcomes)
}

func (st *EditorSuite) TestCommitTimelineRoundTrip() {
	st.Require().NoError(st.s.StageTimelineDraft(TimelinePatch{Title: strp("Kickoff"), Description: strp("Initial meeting")}))
	st.Require().NoError(st.s.StageTimelineDraft(TimelinePatch{Date: strp("2024-01-05")}))

	ok, err := st.s.CommitTimelineDraft()
	st.Require().NoError(err)
	st.True(ok)

	st.Require().Len(st.s.Draft.Timelines, 1)
	e := st.s.Draft.Timelines[0]
	st.Equal("Kickoff", e.Title)
	st.Equal("Initial meeting", e.Description)
	st.Equal("2024-01-05", e.Date)
	st.NotEqual(uuid.Nil, e.ID)
	st.Equal(TimelineDraft{}, st.s.PendingTimeline, "staging slot is cleared")
}

func (st *EditorSuite) TestCommitTimelineMissingDateIsNoop() {
	st.Require().NoError(st.s.StageTimelineDraft(TimelinePatch{Title: strp("Kickoff"), Description: strp("Initial meeting")}))

	ok, err := st.s.CommitTimelineDraft()

	st.NoError(err)
	st.False(ok)
	st.Empty(st.s.Draft.Timelines)
	st.Equal(NoticeTimelineIncomplete, st.s.Notice)
	st.Equal("Kickoff", st.s.PendingTimeline.Title, "staged values are kept")
}

func (st *EditorSuite) TestCommittedIDsAreFresh() {
	for i := 0; i < 2; i++ {
		st.Require().NoError(st.s.StageTimelineDraft(TimelinePatch{Title: strp("t"), Description: strp("d"), Date: strp("2024-01-01")}))
		_, err := st.s.CommitTimelineDraft()
		st.Require().NoError(err)
	}
	st.NotEqual(st.s.Draft.Timelines[0].ID, st.s.Draft.Timelines[1].ID)
	st.Equal(1, st.s.Draft.Timelines[1].OrderIndex)
}

func (st *EditorSuite) TestRemoveInCreateModeRecordsNothing() {
	st.Require().NoError(st.s.StageTimelineDraft(TimelinePatch{Title: strp("t"), Description: strp("d"), Date: strp("2024-01-01")}))
	_, _ = st.s.CommitTimelineDraft()

	st.Require().NoError(st.s.RemoveTimelineEntry(st.s.Draft.Timelines[0].ID))
	st.Empty(st.s.Draft.Timelines)
	st.Empty(st.s.RemovedTimelines)
	st.ErrorIs(st.s.RemoveTimelineEntry(uuid.New()), ErrEntryNotFound)
}

func (st *EditorSuite) TestRemoveInEditModeRecordsPersistedIDs() {
	csID := uuid.New()
	t1 := casestudy.TimelineEntry{ID: uuid.New(), CaseStudyID: csID, Title: "a", Description: "b", Date: "2024-01-01"}
	t2 := casestudy.TimelineEntry{ID: uuid.New(), CaseStudyID: csID, Title: "c", Description: "d", Date: "2024-01-02", OrderIndex: 1}
	o1 := casestudy.Outcome{ID: uuid.New(), CaseStudyID: csID, Title: "o", Description: "d", Metrics: []string{"+20%"}}
	s := NewEditSession(st.owner, casestudy.Aggregate{
		CaseStudy: casestudy.CaseStudy{ID: csID, OwnerID: st.owner},
		Timelines: []casestudy.TimelineEntry{t1, t2},
		Outcomes:  []casestudy.Outcome{o1},
	}, st.now)

	st.Require().NoError(s.RemoveTimelineEntry(t1.ID))
	st.Require().NoError(s.RemoveOutcome(o1.ID))

	st.Equal([]uuid.UUID{t1.ID}, s.RemovedTimelines)
	st.Equal([]uuid.UUID{o1.ID}, s.RemovedOutcomes)
	st.Equal(0, s.Draft.Timelines[0].OrderIndex, "remaining entries are reindexed")

	st.Require().NoError(s.StageTimelineDraft(TimelinePatch{Title: strp("n"), Description: strp("n"), Date: strp("2024-02-01")}))
	_, _ = s.CommitTimelineDraft()
	fresh := s.Draft.Timelines[len(s.Draft.Timelines)-1]
	st.Equal(csID, fresh.CaseStudyID)
	st.Require().NoError(s.RemoveTimelineEntry(fresh.ID))
	st.Equal([]uuid.UUID{t1.ID}, s.RemovedTimelines, "unsaved entries need no delete")
}

func (st *EditorSuite) TestOutcomeStagingAndMetrics() {
	st.Require().NoError(st.s.StageOutcomeDraft(OutcomePatch{Title: strp("Conversion")}))
	ok, err := st.s.AddMetricToOutcome(uuid.Nil, "+12% conversion")
	st.Require().NoError(err)
	st.True(ok)

	ok, err = st.s.CommitOutcomeDraft()
	st.Require().NoError(err)
	st.False(ok)
	st.Equal(NoticeOutcomeIncomplete, st.s.Notice)

	st.Require().NoError(st.s.StageOutcomeDraft(OutcomePatch{Description: strp("Checkout got faster")}))
	ok, err = st.s.CommitOutcomeDraft()
	st.Require().NoError(err)
	st.True(ok)

	out := st.s.Draft.Outcomes[0]
	st.Equal([]string{"+12% conversion"}, out.Metrics)
	st.Empty(st.s.PendingOutcome.Metrics)

	ok, err = st.s.AddMetricToOutcome(out.ID, "-30% drop-off")
	st.Require().NoError(err)
	st.True(ok)

	ok, err = st.s.AddMetricToOutcome(out.ID, "+12% conversion")
	st.Require().NoError(err)
	st.False(ok, "duplicates are rejected")
	st.Equal(NoticeDuplicateValue, st.s.Notice)

	st.Require().NoError(st.s.RemoveMetricFromOutcome(out.ID, "+12% conversion"))
	st.Equal([]string{"-30% drop-off"}, st.s.Draft.Outcomes[0].Metrics)

	_, err = st.s.AddMetricToOutcome(uuid.New(), "x")
	st.ErrorIs(err, ErrEntryNotFound)
}

func (st *EditorSuite) TestRemoveByValueDropsLegacyDuplicates() {
	st.s.Draft.CaseStudy.Tools = []string{"Figma", "Jira", "Figma"}
	st.Require().NoError(st.s.RemoveTool("Figma"))
	st.Equal([]string{"Jira"}, st.s.Draft.CaseStudy.Tools)
}

func (st *EditorSuite) TestToolsAndTechnologiesRejectEmptyAndDuplicates() {
	ok, _ := st.s.AddTool("  ")
	st.False(ok)
	st.Equal(NoticeEmptyValue, st.s.Notice)

	ok, _ = st.s.AddTool("Figma")
	st.True(ok)
	ok, _ = st.s.AddTool("Figma")
	st.False(ok)

	ok, _ = st.s.AddTechnology("Go")
	st.True(ok)
	st.Require().NoError(st.s.RemoveTechnology("Go"))
	st.Empty(st.s.Draft.CaseStudy.Technologies)
}

func (st *EditorSuite) TestEditFieldHandlesTypes() {
	st.NoError(st.s.EditField("title", "Hello"))
	st.Equal("Hello", st.s.Draft.CaseStudy.Title)

	st.NoError(st.s.EditField("team_size", "4"))
	st.Equal(4, st.s.Draft.CaseStudy.TeamSize)
	st.ErrorIs(st.s.EditField("team_size", 2.5), ErrInvalidValue)
	st.ErrorIs(st.s.EditField("title", 3), ErrInvalidValue)
	st.ErrorIs(st.s.EditField("featured", "true"), ErrUnknownField)
	st.ErrorIs(st.s.SetActiveTab("settings"), ErrUnknownTab)
	st.NoError(st.s.SetActiveTab(TabMedia))
}

func (st *EditorSuite) TestMediaItems() {
	ok, err := st.s.AddMediaItem(casestudy.MediaItem{URL: "https://cdn.test/demo.mp4"})
	st.Require().NoError(err)
	st.True(ok)
	item := st.s.Draft.CaseStudy.Images[0]
	st.Equal(casestudy.MediaVideo, item.Type)
	st.NotEmpty(item.ID)

	ok, _ = st.s.AddMediaItem(item)
	st.False(ok)

	st.NoError(st.s.RemoveMediaItem(item.ID))
	st.Empty(st.s.Draft.CaseStudy.Images)
	st.ErrorIs(st.s.RemoveMediaItem("missing"), ErrEntryNotFound)
}

func (st *EditorSuite) TestSubmitStateTransitions() {
	err := st.s.BeginSubmit()
	st.Error(err)
	st.Equal(StateFailed, st.s.State)
	st.Contains(st.s.FieldErrors, "title")
	st.Contains(st.s.FieldErrors, "tools")

	st.fillRequired()
	st.Equal(StateEditing, st.s.State, "editing after a failure returns to editing")
	st.NotContains(st.s.FieldErrors, "title")

	st.Require().NoError(st.s.BeginSubmit())
	st.Equal(StateSubmitting, st.s.State)
	st.ErrorIs(st.s.EditField("title", "x"), ErrNotEditable)

	st.Require().NoError(st.s.Fail("Failed to create case study"))
	st.Equal(StateFailed, st.s.State)
	st.True(st.s.Editable())

	st.Require().NoError(st.s.BeginSubmit())
	id := uuid.New()
	st.Require().NoError(st.s.Succeed(id))
	st.Equal(StateSuccess, st.s.State)
	st.Equal(id, st.s.CaseStudyID)
	st.False(st.s.Editable())
	st.ErrorIs(st.s.Succeed(id), ErrNotSubmitting)
}
