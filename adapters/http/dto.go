package http

import (
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/projectshelf/internal/domain/casestudy"
	"github.com/khoahotran/projectshelf/internal/domain/editor"
	"github.com/khoahotran/projectshelf/internal/domain/media"
	"github.com/khoahotran/projectshelf/internal/domain/profile"
	"github.com/khoahotran/projectshelf/internal/domain/theme"
	"github.com/khoahotran/projectshelf/internal/domain/user"
)

// Auth DTOs

type SignUpRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Username string `json:"username" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserDTO struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthResponse struct {
	AccessToken string      `json:"access_token,omitempty"`
	User        UserDTO     `json:"user"`
	Profile     *ProfileDTO `json:"profile,omitempty"`
}

func ToUserDTO(u *user.User) UserDTO {
	return UserDTO{ID: u.ID.String(), Email: u.Email, CreatedAt: u.CreatedAt}
}

// Profile DTOs

type ProfileDTO struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Bio       string    `json:"bio"`
	AvatarURL string    `json:"avatar_url"`
	Website   string    `json:"website"`
	Location  string    `json:"location"`
	Theme     string    `json:"theme"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UpdateProfileRequest struct {
	Username *string `json:"username"`
	FullName *string `json:"full_name"`
	Bio      *string `json:"bio"`
	Website  *string `json:"website"`
	Location *string `json:"location"`
	Theme    *string `json:"theme"`
}

type UpdateThemeRequest struct {
	Theme string `json:"theme" binding:"required"`
}

func ToProfileDTO(p *profile.Profile) ProfileDTO {
	return ProfileDTO{
		ID:        p.ID.String(),
		Username:  p.Username,
		FullName:  p.FullName,
		Bio:       p.Bio,
		AvatarURL: p.AvatarURL,
		Website:   p.Website,
		Location:  p.Location,
		Theme:     string(p.Theme),
		UpdatedAt: p.UpdatedAt,
	}
}

type ThemeDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func ToThemeDTO(b theme.StyleBundle) ThemeDTO {
	return ThemeDTO{ID: string(b.ID), Name: b.Name, Description: b.Description}
}

// Case study DTOs

// SaveCaseStudyRequest is the aggregate plus the ids of children removed since it was loaded.
type SaveCaseStudyRequest struct {
	casestudy.Aggregate
	RemovedTimelines []uuid.UUID `json:"removed_timelines"`
	RemovedOutcomes  []uuid.UUID `json:"removed_outcomes"`
}

type SetFeaturedRequest struct {
	Featured *bool `json:"featured" binding:"required"`
}

type ReorderRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1"`
}

type CaseStudySummaryDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CoverImage  string    `json:"cover_image"`
	Featured    bool      `json:"featured"`
	OrderIndex  int       `json:"order_index"`
	NeedsRepair bool      `json:"needs_repair"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ToCaseStudySummaryDTO(cs *casestudy.CaseStudy) CaseStudySummaryDTO {
	return CaseStudySummaryDTO{
		ID:          cs.ID.String(),
		Title:       cs.Title,
		Description: cs.Description,
		CoverImage:  cs.CoverImage,
		Featured:    cs.Featured,
		OrderIndex:  cs.OrderIndex,
		NeedsRepair: cs.NeedsRepair,
		UpdatedAt:   cs.UpdatedAt,
	}
}

// Editor DTOs

type OpenSessionRequest struct {
	CaseStudyID *uuid.UUID `json:"case_study_id"`
}

type EditFieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value any    `json:"value"`
}

type SwitchTabRequest struct {
	Tab string `json:"tab" binding:"required"`
}

type ValueRequest struct {
	Value string `json:"value"`
}

type MediaItemRequest struct {
	URL     string `json:"url" binding:"required"`
	Type    string `json:"type"`
	Caption string `json:"caption"`
}

// EditorSessionDTO adds the outcome of the last operation to the session.
type EditorSessionDTO struct {
	*editor.Session
	// Applied is false when the command was a no-op (see Notice).
	Applied bool `json:"applied"`
}

// Media DTOs

type MediaDTO struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind"`
	URL          string    `json:"url"`
	ThumbnailURL *string   `json:"thumbnail_url,omitempty"`
	Status       string    `json:"status"`
	Provider     string    `json:"provider"`
	CreatedAt    time.Time `json:"created_at"`
}

func ToMediaDTO(m *media.Media) MediaDTO {
	return MediaDTO{
		ID:           m.ID.String(),
		Kind:         string(m.Kind),
		URL:          m.URL,
		ThumbnailURL: m.ThumbnailURL,
		Status:       string(m.Status),
		Provider:     m.Provider,
		CreatedAt:    m.CreatedAt,
	}
}

// Analytics DTOs

type TrackRequest struct {
	Username  string         `json:"username" binding:"required"`
	EventType string         `json:"event_type" binding:"required"`
	PagePath  string         `json:"page_path"`
	Metadata  map[string]any `json:"metadata"`
}
