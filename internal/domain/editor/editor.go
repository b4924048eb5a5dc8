// Package editor holds the case study editor: a draft aggregate with staging slots for a new
// timeline entry and a new outcome, edited tab by tab and validated only on submit.
package editor

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/khoahotran/projectshelf/internal/domain/casestudy"
	"github.com/khoahotran/projectshelf/pkg/validator"
)

type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

type State string

const (
	StateEditing    State = "editing"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

type Tab string

const (
	TabOverview  Tab = "overview"
	TabTimelines Tab = "timelines"
	TabMedia     Tab = "media"
	TabTools     Tab = "tools"
	TabOutcomes  Tab = "outcomes"
)

var (
	ErrNotEditable   = errors.New("editor session is not editable in its current state")
	ErrNotSubmitting = errors.New("editor session is not submitting")
	ErrUnknownField  = errors.New("unknown editor field")
	ErrInvalidValue  = errors.New("invalid value for field")
	ErrUnknownTab    = errors.New("unknown editor tab")
	ErrEntryNotFound = errors.New("entry not found in draft")
)

// Notices surfaced for no-op operations.
const (
	NoticeTimelineIncomplete = "Title, description and date are required to add a timeline entry"
	NoticeOutcomeIncomplete  = "Title and description are required to add an outcome"
	NoticeEmptyValue         = "Value cannot be empty"
	NoticeDuplicateValue     = "Value is already in the list"
)

type TimelineDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

type OutcomeDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Metrics     []string `json:"metrics"`
}

// Session is one open editor. It is owned by a single user and persisted between requests.
type Session struct {
	ID          uuid.UUID           `json:"id"`
	OwnerID     uuid.UUID           `json:"owner_id"`
	Mode        Mode                `json:"mode"`
	CaseStudyID uuid.UUID           `json:"case_study_id"`
	State       State               `json:"state"`
	ActiveTab   Tab                 `json:"active_tab"`
	Draft       casestudy.Aggregate `json:"draft"`

	PendingTimeline TimelineDraft `json:"pending_timeline"`
	PendingOutcome  OutcomeDraft  `json:"pending_outcome"`

	RemovedTimelines []uuid.UUID `json:"removed_timelines"`
	RemovedOutcomes  []uuid.UUID `json:"removed_outcomes"`
	// Ids loaded from the store in edit mode; only these produce deletes on removal.
	PersistedTimelines []uuid.UUID `json:"persisted_timelines"`
	PersistedOutcomes  []uuid.UUID `json:"persisted_outcomes"`

	FieldErrors map[string]string `json:"field_errors,omitempty"`
	Notice      string            `json:"notice,omitempty"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func NewCreateSession(ownerID uuid.UUID, now time.Time) *Session {
	return &Session{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Mode:      ModeCreate,
		State:     StateEditing,
		ActiveTab: TabOverview,
		Draft: casestudy.Aggregate{
			CaseStudy: casestudy.CaseStudy{
				OwnerID:      ownerID,
				TeamSize:     1,
				Tools:        []string{},
				Technologies: []string{},
				Images:       []casestudy.MediaItem{},
			},
			Timelines: []casestudy.TimelineEntry{},
			Outcomes:  []casestudy.Outcome{},
		},
		PendingOutcome:   OutcomeDraft{Metrics: []string{}},
		RemovedTimelines: []uuid.UUID{},
		RemovedOutcomes:  []uuid.UUID{},
		UpdatedAt:        now,
	}
}

func NewEditSession(ownerID uuid.UUID, agg casestudy.Aggregate, now time.Time) *Session {
	s := NewCreateSession(ownerID, now)
	s.Mode = ModeEdit
	s.CaseStudyID = agg.CaseStudy.ID
	s.Draft = agg
	if s.Draft.Timelines == nil {
		s.Draft.Timelines = []casestudy.TimelineEntry{}
	}
	if s.Draft.Outcomes == nil {
		s.Draft.Outcomes = []casestudy.Outcome{}
	}
	if s.Draft.CaseStudy.Images == nil {
		s.Draft.CaseStudy.Images = []casestudy.MediaItem{}
	}
	for _, t := range s.Draft.Timelines {
		s.PersistedTimelines = append(s.PersistedTimelines, t.ID)
	}
	for _, o := range s.Draft.Outcomes {
		s.PersistedOutcomes = append(s.PersistedOutcomes, o.ID)
	}
	return s
}

// Editable is true while the draft may change: editing, or after a failed submit.
func (s *Session) Editable() bool {
	return s.State == StateEditing || s.State == StateFailed
}

// touch is called by every mutation; a failed session returns to editing.
func (s *Session) touch() error {
	if !s.Editable() {
		return ErrNotEditable
	}
	s.State = StateEditing
	s.Notice = ""
	return nil
}

func (s *Session) SetActiveTab(tab Tab) error {
	switch tab {
	case TabOverview, TabTimelines, TabMedia, TabTools, TabOutcomes:
	default:
		return ErrUnknownTab
	}
	if err := s.touch(); err != nil {
		return err
	}
	s.ActiveTab = tab
	return nil
}

// BeginSubmit moves editing → validating, then either → submitting, or → failed with field
// errors recorded. The returned error is the *validator.ValidationError on failure.
func (s *Session) BeginSubmit() error {
	if !s.Editable() {
		return ErrNotEditable
	}
	s.State = StateValidating
	s.Notice = ""
	if err := s.Draft.Validate(); err != nil {
		s.State = StateFailed
		s.FieldErrors = validator.Fields(err)
		return err
	}
	s.FieldErrors = nil
	s.State = StateSubmitting
	return nil
}

// Succeed closes the session after the store accepted the draft.
func (s *Session) Succeed(caseStudyID uuid.UUID) error {
	if s.State != StateSubmitting {
		return ErrNotSubmitting
	}
	s.State = StateSuccess
	s.CaseStudyID = caseStudyID
	s.RemovedTimelines = []uuid.UUID{}
	s.RemovedOutcomes = []uuid.UUID{}
	return nil
}

// Fail records a store failure; the draft stays intact so the user can retry.
func (s *Session) Fail(notice string) error {
	if s.State != StateSubmitting {
		return ErrNotSubmitting
	}
	s.State = StateFailed
	s.Notice = notice
	return nil
}

// Repository persists open sessions between requests.
type Repository interface {
	Save(ctx context.Context, s *Session) error
	Find(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) (*Session, error)
	Delete(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error
}
