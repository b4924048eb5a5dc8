package profile

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/khoahotran/projectshelf/internal/domain/theme"
	"github.com/khoahotran/projectshelf/pkg/validator"
)

// Profile is the public face of an account. ID equals the owning user's id.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username" validate:"required,min=3,max=32,username"`
	FullName  string    `json:"full_name" validate:"required,min=2,max=120"`
	Bio       string    `json:"bio" validate:"max=2000"`
	AvatarURL string    `json:"avatar_url" validate:"omitempty,url"`
	Website   string    `json:"website" validate:"omitempty,url"`
	Location  string    `json:"location" validate:"max=120"`
	Theme     theme.ID  `json:"theme"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NormalizeUsername lowercases and trims a username before it is validated or looked up.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Validate checks the writable fields. The stored theme must be a known id; reads tolerate
// anything via theme.Resolve.
func (p *Profile) Validate() error {
	err := validator.Struct(p)
	if !theme.IsKnown(string(p.Theme)) {
		fields := validator.Fields(err)
		if fields == nil {
			if err != nil {
				return err
			}
			fields = map[string]string{}
		}
		fields["theme"] = "Must be one of: default, minimal, creative, modern"
		return &validator.ValidationError{Errors: fields}
	}
	return err
}

// Style resolves the profile's theme, falling back to default for unknown values.
func (p *Profile) Style() theme.StyleBundle {
	return theme.Resolve(string(p.Theme))
}

// DisplayName prefers the full name.
func (p *Profile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Username
}

type Repository interface {
	Save(ctx context.Context, profile *Profile) error
	Update(ctx context.Context, profile *Profile) error
	FindByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	FindByUsername(ctx context.Context, username string) (*Profile, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}
