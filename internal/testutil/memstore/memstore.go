// Package memstore provides in-memory repositories for usecase and handler tests.
// Every repository can be told to fail a named operation.
package memstore

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/khoahotran/projectshelf/internal/domain/analytics"
	"github.com/khoahotran/projectshelf/internal/domain/casestudy"
	"github.com/khoahotran/projectshelf/internal/domain/editor"
	"github.com/khoahotran/projectshelf/internal/domain/media"
	"github.com/khoahotran/projectshelf/internal/domain/profile"
	"github.com/khoahotran/projectshelf/internal/domain/user"
	"github.com/khoahotran/projectshelf/pkg/apperror"
)

var ErrInjected = errors.New("injected store failure")

// Failures maps an operation name such as "timelines.Upsert" to the error it should return.
type Failures struct {
	mu   sync.Mutex
	errs map[string]error
}

func (f *Failures) Fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errs == nil {
		f.errs = map[string]error{}
	}
	if err == nil {
		err = ErrInjected
	}
	f.errs[op] = err
}

func (f *Failures) Clear(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.errs, op)
}

func (f *Failures) check(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errs[op]
}

// Store bundles every repository over shared state.
type Store struct {
	Failures

	mu         sync.Mutex
	users      map[uuid.UUID]user.User
	profiles   map[uuid.UUID]profile.Profile
	caseStudy  map[uuid.UUID]casestudy.CaseStudy
	timelines  map[uuid.UUID]casestudy.TimelineEntry
	outcomes   map[uuid.UUID]casestudy.Outcome
	events     []analytics.Event
	mediaItems map[uuid.UUID]media.Media
	sessions   map[uuid.UUID][]byte
}

func New() *Store {
	return &Store{
		users:      map[uuid.UUID]user.User{},
		profiles:   map[uuid.UUID]profile.Profile{},
		caseStudy:  map[uuid.UUID]casestudy.CaseStudy{},
		timelines:  map[uuid.UUID]casestudy.TimelineEntry{},
		outcomes:   map[uuid.UUID]casestudy.Outcome{},
		mediaItems: map[uuid.UUID]media.Media{},
		sessions:   map[uuid.UUID][]byte{},
	}
}

func (s *Store) Users() *UserRepo                { return &UserRepo{s} }
func (s *Store) Profiles() *ProfileRepo          { return &ProfileRepo{s} }
func (s *Store) CaseStudies() *CaseStudyRepo     { return &CaseStudyRepo{s} }
func (s *Store) Timelines() *TimelineRepo        { return &TimelineRepo{s} }
func (s *Store) Outcomes() *OutcomeRepo          { return &OutcomeRepo{s} }
func (s *Store) Analytics() *AnalyticsRepo       { return &AnalyticsRepo{s} }
func (s *Store) Media() *MediaRepo               { return &MediaRepo{s} }
func (s *Store) EditorSessions() *EditorSessions { return &EditorSessions{s} }

// ---- users

type UserRepo struct{ s *Store }

func (r *UserRepo) Save(_ context.Context, u *user.User) error {
	if err := r.s.check("users.Save"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return apperror.NewConflict("user", "email", u.Email)
		}
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if err := r.s.check("users.Delete"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.users, id)
	return nil
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("user", email)
}

func (r *UserRepo) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperror.NewNotFound("user", id.String())
	}
	return &u, nil
}

// ---- profiles

type ProfileRepo struct{ s *Store }

func (r *ProfileRepo) Save(_ context.Context, p *profile.Profile) error {
	if err := r.s.check("profiles.Save"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.profiles {
		if existing.Username == p.Username {
			return apperror.NewConflict("profile", "username", p.Username)
		}
	}
	r.s.profiles[p.ID] = *p
	return nil
}

func (r *ProfileRepo) Update(_ context.Context, p *profile.Profile) error {
	if err := r.s.check("profiles.Update"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[p.ID]; !ok {
		return apperror.NewNotFound("profile", p.ID.String())
	}
	for id, existing := range r.s.profiles {
		if id != p.ID && existing.Username == p.Username {
			return apperror.NewConflict("profile", "username", p.Username)
		}
	}
	r.s.profiles[p.ID] = *p
	return nil
}

func (r *ProfileRepo) FindByID(_ context.Context, id uuid.UUID) (*profile.Profile, error) {
	if err := r.s.check("profiles.FindByID"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, apperror.NewNotFound("profile", id.String())
	}
	return &p, nil
}

func (r *ProfileRepo) FindByUsername(_ context.Context, username string) (*profile.Profile, error) {
	if err := r.s.check("profiles.FindByUsername"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.profiles {
		if p.Username == username {
			cp := p
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("profile", username)
}

func (r *ProfileRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	if err := r.s.check("profiles.ExistsByUsername"); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.profiles {
		if p.Username == username {
			return true, nil
		}
	}
	return false, nil
}

// ---- case studies

type CaseStudyRepo struct{ s *Store }

func (r *CaseStudyRepo) Save(_ context.Context, cs *casestudy.CaseStudy) error {
	if err := r.s.check("case_studies.Save"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.caseStudy[cs.ID] = cloneCaseStudy(*cs)
	return nil
}

func (r *CaseStudyRepo) Update(_ context.Context, cs *casestudy.CaseStudy) error {
	if err := r.s.check("case_studies.Update"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.caseStudy[cs.ID]
	if !ok || existing.OwnerID != cs.OwnerID {
		return apperror.NewNotFound("case study", cs.ID.String())
	}
	r.s.caseStudy[cs.ID] = cloneCaseStudy(*cs)
	return nil
}

func (r *CaseStudyRepo) Delete(_ context.Context, id, ownerID uuid.UUID) error {
	if err := r.s.check("case_studies.Delete"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.caseStudy[id]
	if !ok || existing.OwnerID != ownerID {
		return apperror.NewNotFound("case study", id.String())
	}
	delete(r.s.caseStudy, id)
	for tid, t := range r.s.timelines {
		if t.CaseStudyID == id {
			delete(r.s.timelines, tid)
		}
	}
	for oid, o := range r.s.outcomes {
		if o.CaseStudyID == id {
			delete(r.s.outcomes, oid)
		}
	}
	return nil
}

func (r *CaseStudyRepo) FindByID(_ context.Context, id, ownerID uuid.UUID) (*casestudy.CaseStudy, error) {
	if err := r.s.check("case_studies.FindByID"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cs, ok := r.s.caseStudy[id]
	if !ok || cs.OwnerID != ownerID {
		return nil, apperror.NewNotFound("case study", id.String())
	}
	cp := cloneCaseStudy(cs)
	return &cp, nil
}

func (r *CaseStudyRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*casestudy.CaseStudy, error) {
	if err := r.s.check("case_studies.ListByOwner"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*casestudy.CaseStudy, 0)
	for _, cs := range r.s.caseStudy {
		if cs.OwnerID == ownerID {
			cp := cloneCaseStudy(cs)
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *CaseStudyRepo) SetFeatured(_ context.Context, id, ownerID uuid.UUID, featured bool) error {
	if err := r.s.check("case_studies.SetFeatured"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cs, ok := r.s.caseStudy[id]
	if !ok || cs.OwnerID != ownerID {
		return apperror.NewNotFound("case study", id.String())
	}
	cs.Featured = featured
	r.s.caseStudy[id] = cs
	return nil
}

func (r *CaseStudyRepo) SetOrder(_ context.Context, ownerID uuid.UUID, ids []uuid.UUID) error {
	if err := r.s.check("case_studies.SetOrder"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		cs, ok := r.s.caseStudy[id]
		if !ok || cs.OwnerID != ownerID {
			return apperror.NewNotFound("case study", id.String())
		}
	}
	for i, id := range ids {
		cs := r.s.caseStudy[id]
		cs.OrderIndex = i
		r.s.caseStudy[id] = cs
	}
	return nil
}

func (r *CaseStudyRepo) MarkNeedsRepair(_ context.Context, id, ownerID uuid.UUID, needsRepair bool) error {
	if err := r.s.check("case_studies.MarkNeedsRepair"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cs, ok := r.s.caseStudy[id]
	if !ok || cs.OwnerID != ownerID {
		return apperror.NewNotFound("case study", id.String())
	}
	cs.NeedsRepair = needsRepair
	r.s.caseStudy[id] = cs
	return nil
}

func cloneCaseStudy(cs casestudy.CaseStudy) casestudy.CaseStudy {
	cs.Tools = append([]string{}, cs.Tools...)
	cs.Technologies = append([]string{}, cs.Technologies...)
	cs.Images = append([]casestudy.MediaItem{}, cs.Images...)
	return cs
}

// ---- timelines

type TimelineRepo struct{ s *Store }

func (r *TimelineRepo) ListByCaseStudy(_ context.Context, caseStudyID uuid.UUID, order casestudy.TimelineOrder) ([]casestudy.TimelineEntry, error) {
	if err := r.s.check("timelines.ListByCaseStudy"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]casestudy.TimelineEntry, 0)
	for _, t := range r.s.timelines {
		if t.CaseStudyID == caseStudyID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	casestudy.SortTimeline(out, order)
	return out, nil
}

func (r *TimelineRepo) Upsert(_ context.Context, caseStudyID uuid.UUID, entries []casestudy.TimelineEntry) error {
	if err := r.s.check("timelines.Upsert"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range entries {
		if cur, ok := r.s.timelines[t.ID]; ok && cur.CaseStudyID != caseStudyID {
			return apperror.NewConflict("timeline", "id", t.ID.String())
		}
	}
	for _, t := range entries {
		t.CaseStudyID = caseStudyID
		r.s.timelines[t.ID] = t
	}
	return nil
}

func (r *TimelineRepo) DeleteByIDs(_ context.Context, caseStudyID uuid.UUID, ids []uuid.UUID) error {
	if err := r.s.check("timelines.DeleteByIDs"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		if t, ok := r.s.timelines[id]; ok && t.CaseStudyID == caseStudyID {
			delete(r.s.timelines, id)
		}
	}
	return nil
}

// ---- outcomes

type OutcomeRepo struct{ s *Store }

func (r *OutcomeRepo) ListByCaseStudy(_ context.Context, caseStudyID uuid.UUID) ([]casestudy.Outcome, error) {
	if err := r.s.check("outcomes.ListByCaseStudy"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]casestudy.Outcome, 0)
	for _, o := range r.s.outcomes {
		if o.CaseStudyID == caseStudyID {
			o.Metrics = append([]string{}, o.Metrics...)
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (r *OutcomeRepo) Upsert(_ context.Context, caseStudyID uuid.UUID, outcomes []casestudy.Outcome) error {
	if err := r.s.check("outcomes.Upsert"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range outcomes {
		if cur, ok := r.s.outcomes[o.ID]; ok && cur.CaseStudyID != caseStudyID {
			return apperror.NewConflict("outcome", "id", o.ID.String())
		}
	}
	for _, o := range outcomes {
		o.CaseStudyID = caseStudyID
		o.Metrics = append([]string{}, o.Metrics...)
		r.s.outcomes[o.ID] = o
	}
	return nil
}

func (r *OutcomeRepo) DeleteByIDs(_ context.Context, caseStudyID uuid.UUID, ids []uuid.UUID) error {
	if err := r.s.check("outcomes.DeleteByIDs"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		if o, ok := r.s.outcomes[id]; ok && o.CaseStudyID == caseStudyID {
			delete(r.s.outcomes, id)
		}
	}
	return nil
}

// ---- analytics

type AnalyticsRepo struct{ s *Store }

func (r *AnalyticsRepo) Append(_ context.Context, e *analytics.Event) error {
	if err := r.s.check("analytics.Append"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.events = append(r.s.events, *e)
	return nil
}

func (r *AnalyticsRepo) ListByOwner(_ context.Context, ownerID uuid.UUID, from, to time.Time) ([]analytics.Event, error) {
	if err := r.s.check("analytics.ListByOwner"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]analytics.Event, 0)
	for _, e := range r.s.events {
		if e.UserID != ownerID {
			continue
		}
		if !from.IsZero() && e.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && !e.CreatedAt.Before(to) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Events returns a copy of everything appended so far.
func (r *AnalyticsRepo) Events() []analytics.Event {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]analytics.Event{}, r.s.events...)
}

// ---- media

type MediaRepo struct{ s *Store }

func (r *MediaRepo) Save(_ context.Context, m *media.Media) error {
	if err := r.s.check("media.Save"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.mediaItems[m.ID] = *m
	return nil
}

func (r *MediaRepo) Update(_ context.Context, m *media.Media) error {
	if err := r.s.check("media.Update"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.mediaItems[m.ID]; !ok {
		return apperror.NewNotFound("media", m.ID.String())
	}
	r.s.mediaItems[m.ID] = *m
	return nil
}

func (r *MediaRepo) Delete(_ context.Context, id, ownerID uuid.UUID) error {
	if err := r.s.check("media.Delete"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.mediaItems[id]
	if !ok || m.OwnerID != ownerID {
		return apperror.NewNotFound("media", id.String())
	}
	delete(r.s.mediaItems, id)
	return nil
}

func (r *MediaRepo) FindByID(_ context.Context, id, ownerID uuid.UUID) (*media.Media, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.mediaItems[id]
	if !ok || m.OwnerID != ownerID {
		return nil, apperror.NewNotFound("media", id.String())
	}
	return &m, nil
}

func (r *MediaRepo) ListByOwner(_ context.Context, ownerID uuid.UUID, limit, offset int) ([]*media.Media, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := make([]*media.Media, 0)
	for _, m := range r.s.mediaItems {
		if m.OwnerID == ownerID {
			cp := m
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return []*media.Media{}, nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// ---- editor sessions

// EditorSessions stores sessions as JSON, like the redis store, so callers never share slices
// with the stored copy.
type EditorSessions struct{ s *Store }

func (r *EditorSessions) Save(_ context.Context, sess *editor.Session) error {
	if err := r.s.check("editor.Save"); err != nil {
		return err
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sessions[sess.ID] = data
	return nil
}

func (r *EditorSessions) Find(_ context.Context, id, ownerID uuid.UUID) (*editor.Session, error) {
	r.s.mu.Lock()
	data, ok := r.s.sessions[id]
	r.s.mu.Unlock()
	if !ok {
		return nil, apperror.NewNotFound("editor session", id.String())
	}
	var sess editor.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	if sess.OwnerID != ownerID {
		return nil, apperror.NewNotFound("editor session", id.String())
	}
	return &sess, nil
}

func (r *EditorSessions) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	if _, err := r.Find(ctx, id, ownerID); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.sessions, id)
	return nil
}
