package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/khoahotran/projectshelf/internal/domain/casestudy"
	"github.com/khoahotran/projectshelf/internal/domain/profile"
	"github.com/khoahotran/projectshelf/internal/domain/theme"
)

const cardToolLimit = 3

type Card struct {
	ID          string   `json:"id"`
	Href        string   `json:"href"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	CoverImage  string   `json:"cover_image"`
	Duration    string   `json:"duration"`
	TeamSize    int      `json:"team_size"`
	Tools       []string `json:"tools"`
	// MoreTools counts the tools not shown on the card.
	MoreTools int       `json:"more_tools"`
	Featured  bool      `json:"featured"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CardGroup struct {
	Title    string `json:"title"`
	Featured bool   `json:"featured"`
	Cards    []Card `json:"cards"`
}

type ProfileHero struct {
	DisplayName string `json:"display_name"`
	Username    string `json:"username"`
	Initial     string `json:"initial"`
	AvatarURL   string `json:"avatar_url"`
	Location    string `json:"location"`
	Bio         string `json:"bio"`
	Website     string `json:"website"`
}

type PortfolioPage struct {
	Style  theme.StyleBundle `json:"style"`
	Path   string            `json:"path"`
	Hero   ProfileHero       `json:"hero"`
	Groups []CardGroup       `json:"groups"`
	// Empty is set when there are no case studies; EmptyTitle and EmptyMessage are shown instead.
	Empty        bool   `json:"empty"`
	EmptyTitle   string `json:"empty_title"`
	EmptyMessage string `json:"empty_message"`
}

// RenderPortfolio builds the portfolio page from case studies already in display order:
// featured ones first under "Featured Projects", then the rest. The page carries style as given.
func RenderPortfolio(p *profile.Profile, items []*casestudy.CaseStudy, style theme.StyleBundle) *PortfolioPage {
	page := &PortfolioPage{
		Style: style,
		Path:  "/" + p.Username,
		Hero: ProfileHero{
			DisplayName: p.DisplayName(),
			Username:    p.Username,
			Initial:     initial(p.DisplayName()),
			AvatarURL:   p.AvatarURL,
			Location:    p.Location,
			Bio:         p.Bio,
			Website:     p.Website,
		},
		Groups: make([]CardGroup, 0, 2),
	}

	if len(items) == 0 {
		page.Empty = true
		page.EmptyTitle = "No Projects Yet"
		page.EmptyMessage = fmt.Sprintf("%s is working on some amazing projects. Check back soon!", p.DisplayName())
		return page
	}

	var featured, regular []Card
	for _, cs := range items {
		c := cardOf(p.Username, cs)
		if cs.Featured {
			featured = append(featured, c)
		} else {
			regular = append(regular, c)
		}
	}

	if len(featured) > 0 {
		page.Groups = append(page.Groups, CardGroup{Title: "Featured Projects", Featured: true, Cards: featured})
	}
	if len(regular) > 0 {
		title := "All Projects"
		if len(featured) > 0 {
			title = "More Projects"
		}
		page.Groups = append(page.Groups, CardGroup{Title: title, Cards: regular})
	}
	return page
}

func cardOf(username string, cs *casestudy.CaseStudy) Card {
	tools := cs.Tools
	more := 0
	if len(tools) > cardToolLimit {
		more = len(tools) - cardToolLimit
		tools = tools[:cardToolLimit]
	}
	return Card{
		ID:          cs.ID.String(),
		Href:        fmt.Sprintf("/%s/%s", username, cs.ID),
		Title:       cs.Title,
		Description: cs.Description,
		CoverImage:  cs.CoverImage,
		Duration:    cs.Duration,
		TeamSize:    cs.TeamSize,
		Tools:       append([]string{}, tools...),
		MoreTools:   more,
		Featured:    cs.Featured,
		UpdatedAt:   cs.UpdatedAt,
	}
}

func initial(name string) string {
	for _, r := range strings.TrimSpace(name) {
		return strings.ToUpper(string(r))
	}
	return "?"
}
