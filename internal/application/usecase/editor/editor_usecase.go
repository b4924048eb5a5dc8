// Package editor drives persisted case study editor sessions: each request loads the
// session, applies one command to it and stores it again.
package editor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	casestudyuc "github.com/khoahotran/projectshelf/internal/application/usecase/casestudy"
	"github.com/khoahotran/projectshelf/internal/domain/editor"
	"github.com/khoahotran/projectshelf/pkg/apperror"
	"github.com/khoahotran/projectshelf/pkg/logger"
	"github.com/khoahotran/projectshelf/pkg/validator"
)

var tracer = otel.Tracer("editor_usecase")

// SubmitRecorder counts submit outcomes; *metrics.Metrics implements it.
type SubmitRecorder interface {
	EditorSubmitted(mode, result string)
}

type nopRecorder struct{}

func (nopRecorder) EditorSubmitted(string, string) {}

// Command mutates a loaded session.
type Command func(s *editor.Session) error

type EditorUseCase struct {
	sessions editor.Repository
	getCase  *casestudyuc.GetCaseStudyUseCase
	saveCase *casestudyuc.SaveCaseStudyUseCase
	recorder SubmitRecorder
	logger   logger.Logger
	now      func() time.Time
}

func NewEditorUseCase(
	sessions editor.Repository,
	getCase *casestudyuc.GetCaseStudyUseCase,
	saveCase *casestudyuc.SaveCaseStudyUseCase,
	recorder SubmitRecorder,
	log logger.Logger,
) *EditorUseCase {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &EditorUseCase{
		sessions: sessions,
		getCase:  getCase,
		saveCase: saveCase,
		recorder: recorder,
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type OpenSessionInput struct {
	OwnerID uuid.UUID
	// CaseStudyID opens an edit session; uuid.Nil opens a create session.
	CaseStudyID uuid.UUID
}

func (uc *EditorUseCase) Open(ctx context.Context, input OpenSessionInput) (*editor.Session, error) {
	ctx, span := tracer.Start(ctx, "OpenSession")
	defer span.End()

	var s *editor.Session
	if input.CaseStudyID == uuid.Nil {
		s = editor.NewCreateSession(input.OwnerID, uc.now())
	} else {
		out, err := uc.getCase.Execute(ctx, casestudyuc.GetCaseStudyInput{OwnerID: input.OwnerID, CaseStudyID: input.CaseStudyID})
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		s = editor.NewEditSession(input.OwnerID, out.Aggregate, uc.now())
	}

	if err := uc.sessions.Save(ctx, s); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("save editor session failed: %w", err)
	}
	span.SetAttributes(attribute.String("session_id", s.ID.String()), attribute.String("mode", string(s.Mode)))
	return s, nil
}

type SessionRef struct {
	OwnerID   uuid.UUID
	SessionID uuid.UUID
}

func (uc *EditorUseCase) Get(ctx context.Context, ref SessionRef) (*editor.Session, error) {
	return uc.sessions.Find(ctx, ref.SessionID, ref.OwnerID)
}

// Apply runs cmd against the stored session and saves the result. No-op commands still save,
// since they leave a notice on the session.
func (uc *EditorUseCase) Apply(ctx context.Context, ref SessionRef, cmd Command) (*editor.Session, error) {
	s, err := uc.sessions.Find(ctx, ref.SessionID, ref.OwnerID)
	if err != nil {
		return nil, err
	}
	if err := cmd(s); err != nil {
		return nil, mapDomainError(err)
	}
	s.UpdatedAt = uc.now()
	if err := uc.sessions.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("save editor session failed: %w", err)
	}
	return s, nil
}

// Submit validates the draft and writes it. A validation failure leaves the session in the
// failed state with field errors; a store failure leaves it failed with a notice. On success
// the session is closed and returned in the success state.
func (uc *EditorUseCase) Submit(ctx context.Context, ref SessionRef) (*editor.Session, error) {
	ctx, span := tracer.Start(ctx, "SubmitSession")
	defer span.End()

	s, err := uc.sessions.Find(ctx, ref.SessionID, ref.OwnerID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("mode", string(s.Mode)))

	if err := s.BeginSubmit(); err != nil {
		if !errors.Is(err, editor.ErrNotEditable) {
			uc.recorder.EditorSubmitted(string(s.Mode), "invalid")
			if saveErr := uc.sessions.Save(ctx, s); saveErr != nil {
				uc.logger.Error("Failed to save editor session", saveErr, zap.String("session_id", s.ID.String()))
			}
		}
		if fields := validator.Fields(err); fields != nil {
			return s, apperror.NewValidationFailed(fields)
		}
		return nil, mapDomainError(err)
	}

	out, err := uc.saveCase.Execute(ctx, casestudyuc.SaveCaseStudyInput{
		OwnerID:          s.OwnerID,
		CaseStudyID:      s.CaseStudyID,
		Aggregate:        s.Draft,
		RemovedTimelines: s.RemovedTimelines,
		RemovedOutcomes:  s.RemovedOutcomes,
	})
	if err != nil {
		span.RecordError(err)
		uc.recorder.EditorSubmitted(string(s.Mode), "failed")
		_ = s.Fail(failureNotice(s.Mode))
		if saveErr := uc.sessions.Save(ctx, s); saveErr != nil {
			uc.logger.Error("Failed to save editor session", saveErr, zap.String("session_id", s.ID.String()))
		}
		return s, err
	}

	_ = s.Succeed(out.CaseStudyID)
	uc.recorder.EditorSubmitted(string(s.Mode), "success")
	if err := uc.sessions.Delete(ctx, s.ID, s.OwnerID); err != nil {
		uc.logger.Warn("Failed to close editor session", zap.String("session_id", s.ID.String()), zap.Error(err))
	}
	uc.logger.Info("Case study saved from editor",
		zap.String("case_study_id", out.CaseStudyID.String()),
		zap.String("mode", string(s.Mode)),
	)
	return s, nil
}

func (uc *EditorUseCase) Discard(ctx context.Context, ref SessionRef) error {
	return uc.sessions.Delete(ctx, ref.SessionID, ref.OwnerID)
}

func failureNotice(m editor.Mode) string {
	if m == editor.ModeEdit {
		return "Failed to update case study"
	}
	return "Failed to create case study"
}

func mapDomainError(err error) error {
	switch {
	case errors.Is(err, editor.ErrNotEditable), errors.Is(err, editor.ErrNotSubmitting):
		return apperror.NewAppError(apperror.ErrConflict, "Editor session is closed", err.Error(), err)
	case errors.Is(err, editor.ErrEntryNotFound):
		return apperror.NewAppError(apperror.ErrNotFound, "Entry not found", err.Error(), err)
	case errors.Is(err, editor.ErrUnknownField), errors.Is(err, editor.ErrInvalidValue), errors.Is(err, editor.ErrUnknownTab):
		return apperror.NewInvalidInput(err.Error(), err)
	}
	return err
}
