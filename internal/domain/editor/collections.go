package editor

import (
	"strings"

	"github.com/google/uuid"
	"github.com/khoahotran/projectshelf/internal/domain/casestudy"
)

// TimelinePatch is a partial update of the staged timeline entry; nil fields are kept.
type TimelinePatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
}

type OutcomePatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func (s *Session) StageTimelineDraft(p TimelinePatch) error {
	if err := s.touch(); err != nil {
		return err
	}
	if p.Title != nil {
		s.PendingTimeline.Title = *p.Title
	}
	if p.Description != nil {
		s.PendingTimeline.Description = *p.Description
	}
	if p.Date != nil {
		s.PendingTimeline.Date = *p.Date
	}
	return nil
}

// CommitTimelineDraft appends the staged entry with a fresh id. With a missing field it does
// nothing except set Notice, and reports false.
func (s *Session) CommitTimelineDraft() (bool, error) {
	if err := s.touch(); err != nil {
		return false, err
	}
	d := s.PendingTimeline
	if blank(d.Title) || blank(d.Description) || blank(d.Date) {
		s.Notice = NoticeTimelineIncomplete
		return false, nil
	}
	s.Draft.Timelines = append(s.Draft.Timelines, casestudy.TimelineEntry{
		ID:          uuid.New(),
		CaseStudyID: s.CaseStudyID,
		Title:       d.Title,
		Description: d.Description,
		Date:        d.Date,
		OrderIndex:  len(s.Draft.Timelines),
	})
	s.PendingTimeline = TimelineDraft{}
	return true, nil
}

func (s *Session) RemoveTimelineEntry(id uuid.UUID) error {
	if err := s.touch(); err != nil {
		return err
	}
	idx := -1
	for i, t := range s.Draft.Timelines {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrEntryNotFound
	}
	s.Draft.Timelines = append(s.Draft.Timelines[:idx], s.Draft.Timelines[idx+1:]...)
	for i := range s.Draft.Timelines {
		s.Draft.Timelines[i].OrderIndex = i
	}
	if s.Mode == ModeEdit && containsID(s.PersistedTimelines, id) && !containsID(s.RemovedTimelines, id) {
		s.RemovedTimelines = append(s.RemovedTimelines, id)
	}
	return nil
}

func (s *Session) StageOutcomeDraft(p OutcomePatch) error {
	if err := s.touch(); err != nil {
		return err
	}
	if p.Title != nil {
		s.PendingOutcome.Title = *p.Title
	}
	if p.Description != nil {
		s.PendingOutcome.Description = *p.Description
	}
	return nil
}

func (s *Session) CommitOutcomeDraft() (bool, error) {
	if err := s.touch(); err != nil {
		return false, err
	}
	d := s.PendingOutcome
	if blank(d.Title) || blank(d.Description) {
		s.Notice = NoticeOutcomeIncomplete
		return false, nil
	}
	metrics := d.Metrics
	if metrics == nil {
		metrics = []string{}
	}
	s.Draft.Outcomes = append(s.Draft.Outcomes, casestudy.Outcome{
		ID:          uuid.New(),
		CaseStudyID: s.CaseStudyID,
		Title:       d.Title,
		Description: d.Description,
		Metrics:     metrics,
		OrderIndex:  len(s.Draft.Outcomes),
	})
	s.PendingOutcome = OutcomeDraft{Metrics: []string{}}
	return true, nil
}

func (s *Session) RemoveOutcome(id uuid.UUID) error {
	if err := s.touch(); err != nil {
		return err
	}
	idx := -1
	for i, o := range s.Draft.Outcomes {
		if o.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrEntryNotFound
	}
	s.Draft.Outcomes = append(s.Draft.Outcomes[:idx], s.Draft.Outcomes[idx+1:]...)
	for i := range s.Draft.Outcomes {
		s.Draft.Outcomes[i].OrderIndex = i
	}
	if s.Mode == ModeEdit && containsID(s.PersistedOutcomes, id) && !containsID(s.RemovedOutcomes, id) {
		s.RemovedOutcomes = append(s.RemovedOutcomes, id)
	}
	return nil
}

// metricsOf resolves an outcome's metric list; uuid.Nil addresses the staged outcome.
func (s *Session) metricsOf(outcomeID uuid.UUID) (*[]string, error) {
	if outcomeID == uuid.Nil {
		return &s.PendingOutcome.Metrics, nil
	}
	for i := range s.Draft.Outcomes {
		if s.Draft.Outcomes[i].ID == outcomeID {
			return &s.Draft.Outcomes[i].Metrics, nil
		}
	}
	return nil, ErrEntryNotFound
}

// AddMetricToOutcome appends a metric. Empty and duplicate values are rejected with a notice.
func (s *Session) AddMetricToOutcome(outcomeID uuid.UUID, metric string) (bool, error) {
	if err := s.touch(); err != nil {
		return false, err
	}
	list, err := s.metricsOf(outcomeID)
	if err != nil {
		return false, err
	}
	return s.addValue(list, metric), nil
}

// RemoveMetricFromOutcome removes every metric equal to the value.
func (s *Session) RemoveMetricFromOutcome(outcomeID uuid.UUID, metric string) error {
	if err := s.touch(); err != nil {
		return err
	}
	list, err := s.metricsOf(outcomeID)
	if err != nil {
		return err
	}
	*list = removeValue(*list, metric)
	return nil
}

func (s *Session) AddTool(tool string) (bool, error) {
	if err := s.touch(); err != nil {
		return false, err
	}
	ok := s.addValue(&s.Draft.CaseStudy.Tools, tool)
	if ok {
		delete(s.FieldErrors, "tools")
	}
	return ok, nil
}

func (s *Session) RemoveTool(tool string) error {
	if err := s.touch(); err != nil {
		return err
	}
	s.Draft.CaseStudy.Tools = removeValue(s.Draft.CaseStudy.Tools, tool)
	return nil
}

func (s *Session) AddTechnology(tech string) (bool, error) {
	if err := s.touch(); err != nil {
		return false, err
	}
	ok := s.addValue(&s.Draft.CaseStudy.Technologies, tech)
	if ok {
		delete(s.FieldErrors, "technologies")
	}
	return ok, nil
}

func (s *Session) RemoveTechnology(tech string) error {
	if err := s.touch(); err != nil {
		return err
	}
	s.Draft.CaseStudy.Technologies = removeValue(s.Draft.CaseStudy.Technologies, tech)
	return nil
}

// AddMediaItem appends a gallery item; an item with an id already present is ignored.
func (s *Session) AddMediaItem(item casestudy.MediaItem) (bool, error) {
	if err := s.touch(); err != nil {
		return false, err
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Type == "" {
		item.Type = casestudy.InferMediaType(item.URL)
	}
	for _, m := range s.Draft.CaseStudy.Images {
		if m.ID == item.ID {
			s.Notice = NoticeDuplicateValue
			return false, nil
		}
	}
	s.Draft.CaseStudy.Images = append(s.Draft.CaseStudy.Images, item)
	return true, nil
}

func (s *Session) RemoveMediaItem(id string) error {
	if err := s.touch(); err != nil {
		return err
	}
	out := s.Draft.CaseStudy.Images[:0]
	found := false
	for _, m := range s.Draft.CaseStudy.Images {
		if m.ID == id {
			found = true
			continue
		}
		out = append(out, m)
	}
	if !found {
		return ErrEntryNotFound
	}
	s.Draft.CaseStudy.Images = out
	return nil
}

func (s *Session) addValue(list *[]string, v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		s.Notice = NoticeEmptyValue
		return false
	}
	for _, existing := range *list {
		if existing == v {
			s.Notice = NoticeDuplicateValue
			return false
		}
	}
	*list = append(*list, v)
	return true
}

func removeValue(list []string, v string) []string {
	out := make([]string, 0, len(list))
	for _, existing := range list {
		if existing != v {
			out = append(out, existing)
		}
	}
	return out
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
