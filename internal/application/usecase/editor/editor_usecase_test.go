package editor

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	casestudyuc "github.com/khoahotran/projectshelf/internal/application/usecase/casestudy"
	"github.com/khoahotran/projectshelf/internal/domain/casestudy"
	"github.com/khoahotran/projectshelf/internal/domain/editor"
	"github.com/khoahotran/projectshelf/internal/testutil/memstore"
	"github.com/khoahotran/projectshelf/pkg/apperror"
	"github.com/khoahotran/projectshelf/pkg/logger"
)

type countingRecorder struct {
	results []string
}

func (r *countingRecorder) EditorSubmitted(mode, result string) {
	r.results = append(r.results, mode+":"+result)
}

type EditorUseCaseSuite struct {
	suite.Suite
	ctx      context.Context
	st       *memstore.Store
	owner    uuid.UUID
	recorder *countingRecorder
	uc       *EditorUseCase
}

func TestEditorUseCaseSuite(t *testing.T) {
	suite.Run(t, new(EditorUseCaseSuite))
}

func (s *EditorUseCaseSuite) SetupTest() {
	s.ctx = context.Background()
	s.st = memstore.New()
	s.owner = uuid.New()
	s.recorder = &countingRecorder{}
	log := logger.NewNopLogger()
	s.uc = NewEditorUseCase(
		s.st.EditorSessions(),
		casestudyuc.NewGetCaseStudyUseCase(s.st.CaseStudies(), s.st.Timelines(), s.st.Outcomes(), casestudy.OrderByIndex),
		casestudyuc.NewSaveCaseStudyUseCase(s.st.CaseStudies(), s.st.Timelines(), s.st.Outcomes(), log),
		s.recorder,
		log,
	)
}

func (s *EditorUseCaseSuite) ref(sess *editor.Session) SessionRef {
	return SessionRef{OwnerID: s.owner, SessionID: sess.ID}
}

func (s *EditorUseCaseSuite) fill(ref SessionRef) {
	_, err := s.uc.Apply(s.ctx, ref, func(sess *editor.Session) error {
		for field, v := range map[string]any{
			"title": "Checkout", "description": "d", "overview": "o", "challenge": "c",
			"solution": "s", "outcome": "r", "duration": "3 months", "role": "Lead",
		} {
			if err := sess.EditField(field, v); err != nil {
				return err
			}
		}
		if _, err := sess.AddTool("Figma"); err != nil {
			return err
		}
		_, err := sess.AddTechnology("Go")
		return err
	})
	s.Require().NoError(err)
}

func (s *EditorUseCaseSuite) addTimeline(ref SessionRef, title, date string) {
	_, err := s.uc.Apply(s.ctx, ref, func(sess *editor.Session) error {
		if err := sess.StageTimelineDraft(editor.TimelinePatch{Title: &title, Description: &title, Date: &date}); err != nil {
			return err
		}
		_, err := sess.CommitTimelineDraft()
		return err
	})
	s.Require().NoError(err)
}

func (s *EditorUseCaseSuite) TestCreateFlow() {
	sess, err := s.uc.Open(s.ctx, OpenSessionInput{OwnerID: s.owner})
	s.Require().NoError(err)
	s.Equal(editor.ModeCreate, sess.Mode)

	ref := s.ref(sess)
	s.fill(ref)
	s.addTimeline(ref, "Kickoff", "2024-01-05")

	done, err := s.uc.Submit(s.ctx, ref)
	s.Require().NoError(err)
	s.Equal(editor.StateSuccess, done.State)
	s.NotEqual(uuid.Nil, done.CaseStudyID)
	s.Equal([]string{"create:success"}, s.recorder.results)

	_, err = s.uc.Get(s.ctx, ref)
	s.True(apperror.IsNotFound(err), "session is closed after success")

	stored, err := s.st.Timelines().ListByCaseStudy(s.ctx, done.CaseStudyID, casestudy.OrderByIndex)
	s.Require().NoError(err)
	s.Len(stored, 1)
}

func (s *EditorUseCaseSuite) TestSubmitInvalidKeepsSessionFailed() {
	sess, err := s.uc.Open(s.ctx, OpenSessionInput{OwnerID: s.owner})
	s.Require().NoError(err)

	_, err = s.uc.Submit(s.ctx, s.ref(sess))
	s.ErrorIs(err, apperror.ErrValidation)

	stored, err := s.uc.Get(s.ctx, s.ref(sess))
	s.Require().NoError(err)
	s.Equal(editor.StateFailed, stored.State)
	s.Contains(stored.FieldErrors, "title")
	s.Equal([]string{"create:invalid"}, s.recorder.results)

	s.fill(s.ref(sess))
	stored, err = s.uc.Get(s.ctx, s.ref(sess))
	s.Require().NoError(err)
	s.Equal(editor.StateEditing, stored.State)
}

func (s *EditorUseCaseSuite) TestStoreFailureLeavesNotice() {
	sess, err := s.uc.Open(s.ctx, OpenSessionInput{OwnerID: s.owner})
	s.Require().NoError(err)
	s.fill(s.ref(sess))
	s.st.Fail("case_studies.Save", nil)

	_, err = s.uc.Submit(s.ctx, s.ref(sess))
	s.Require().Error(err)

	stored, err := s.uc.Get(s.ctx, s.ref(sess))
	s.Require().NoError(err)
	s.Equal(editor.StateFailed, stored.State)
	s.Equal("Failed to create case study", stored.Notice)
	s.Equal("Checkout", stored.Draft.CaseStudy.Title, "draft survives for retry")

	s.st.Clear("case_studies.Save")
	done, err := s.uc.Submit(s.ctx, s.ref(sess))
	s.Require().NoError(err)
	s.Equal(editor.StateSuccess, done.State)
}

func (s *EditorUseCaseSuite) TestEditFlowDeletesRemovedChildren() {
	created, err := s.uc.Open(s.ctx, OpenSessionInput{OwnerID: s.owner})
	s.Require().NoError(err)
	s.fill(s.ref(created))
	s.addTimeline(s.ref(created), "Kickoff", "2024-01-05")
	s.addTimeline(s.ref(created), "Launch", "2024-03-01")
	done, err := s.uc.Submit(s.ctx, s.ref(created))
	s.Require().NoError(err)

	edit, err := s.uc.Open(s.ctx, OpenSessionInput{OwnerID: s.owner, CaseStudyID: done.CaseStudyID})
	s.Require().NoError(err)
	s.Equal(editor.ModeEdit, edit.Mode)
	s.Require().Len(edit.Draft.Timelines, 2)

	first := edit.Draft.Timelines[0].ID
	_, err = s.uc.Apply(s.ctx, s.ref(edit), func(sess *editor.Session) error {
		return sess.RemoveTimelineEntry(first)
	})
	s.Require().NoError(err)

	_, err = s.uc.Submit(s.ctx, s.ref(edit))
	s.Require().NoError(err)

	stored, err := s.st.Timelines().ListByCaseStudy(s.ctx, done.CaseStudyID, casestudy.OrderByIndex)
	s.Require().NoError(err)
	s.Require().Len(stored, 1)
	s.Equal("Launch", stored[0].Title)
	s.Equal(0, stored[0].OrderIndex)
}

func (s *EditorUseCaseSuite) TestOpenForeignCaseStudy() {
	_, err := s.uc.Open(s.ctx, OpenSessionInput{OwnerID: s.owner, CaseStudyID: uuid.New()})
	s.True(apperror.IsNotFound(err))
}

func (s *EditorUseCaseSuite) TestDomainErrorsAreMapped() {
	sess, err := s.uc.Open(s.ctx, OpenSessionInput{OwnerID: s.owner})
	s.Require().NoError(err)

	_, err = s.uc.Apply(s.ctx, s.ref(sess), func(sess *editor.Session) error {
		return sess.EditField("featured", true)
	})
	s.ErrorIs(err, apperror.ErrInvalidInput)

	_, err = s.uc.Apply(s.ctx, s.ref(sess), func(sess *editor.Session) error {
		return sess.RemoveTimelineEntry(uuid.New())
	})
	s.True(apperror.IsNotFound(err))

	_, err = s.uc.Apply(s.ctx, SessionRef{OwnerID: uuid.New(), SessionID: sess.ID}, func(*editor.Session) error { return nil })
	s.True(apperror.IsNotFound(err), "sessions are scoped to their owner")

	s.NoError(s.uc.Discard(s.ctx, s.ref(sess)))
	_, err = s.uc.Get(s.ctx, s.ref(sess))
	s.True(apperror.IsNotFound(err))
}
