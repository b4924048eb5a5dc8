// Package render turns portfolio read models into page structures. It decides what appears on
// a page and in which order; the theme only supplies class names, so the same data yields the
// same sections under every theme.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/khoahotran/projectshelf/internal/domain/casestudy"
	"github.com/khoahotran/projectshelf/internal/domain/profile"
	"github.com/khoahotran/projectshelf/internal/domain/theme"
)

type SectionKind string

const (
	SectionOverview     SectionKind = "overview"
	SectionChallenge    SectionKind = "challenge"
	SectionSolution     SectionKind = "solution"
	SectionOutcome      SectionKind = "outcome"
	SectionTimeline     SectionKind = "timeline"
	SectionKeyOutcomes  SectionKind = "key_outcomes"
	SectionMediaGallery SectionKind = "media_gallery"
)

type TimelineItem struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type OutcomeItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	// Metrics keep collection order.
	Metrics []string `json:"metrics"`
}

// Section is one block of the main column. Exactly one of Body, Timeline, Outcomes or Media
// is populated, according to Kind.
type Section struct {
	Kind     SectionKind           `json:"kind"`
	Title    string                `json:"title"`
	Body     string                `json:"body"`
	Timeline []TimelineItem        `json:"timeline"`
	Outcomes []OutcomeItem         `json:"outcomes"`
	Media    []casestudy.MediaItem `json:"media"`
}

type InfoItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type Sidebar struct {
	ProjectInfo  []InfoItem `json:"project_info"`
	Tools        []string   `json:"tools"`
	Technologies []string   `json:"technologies"`
	// Links is empty when no external URL is set; the block is then not shown.
	Links []Link `json:"links"`
}

func (s Sidebar) HasLinks() bool { return len(s.Links) > 0 }

type CaseStudyHero struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CoverImage  string `json:"cover_image"`
	Duration    string `json:"duration"`
	Team        string `json:"team"`
	Role        string `json:"role"`
	BackHref    string `json:"back_href"`
}

type Owner struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

type CaseStudyPage struct {
	Style       theme.StyleBundle `json:"style"`
	Owner       Owner             `json:"owner"`
	CaseStudyID string            `json:"case_study_id"`
	// Path is the public path of the page, used as the analytics page path.
	Path     string        `json:"path"`
	Hero     CaseStudyHero `json:"hero"`
	Sections []Section     `json:"sections"`
	Sidebar  Sidebar       `json:"sidebar"`
}

// SectionKinds lists the rendered sections in order.
func (p *CaseStudyPage) SectionKinds() []SectionKind {
	out := make([]SectionKind, len(p.Sections))
	for i, s := range p.Sections {
		out[i] = s.Kind
	}
	return out
}

// RenderCaseStudy builds the case study page. Text sections appear when their text is
// non-blank; collection sections when the collection is non-empty. The order is fixed.
func RenderCaseStudy(p *profile.Profile, agg casestudy.Aggregate, style theme.StyleBundle) *CaseStudyPage {
	cs := agg.CaseStudy
	path := fmt.Sprintf("/%s/%s", p.Username, cs.ID)

	page := &CaseStudyPage{
		Style:       style,
		Owner:       ownerOf(p),
		CaseStudyID: cs.ID.String(),
		Path:        path,
		Hero: CaseStudyHero{
			Title:       cs.Title,
			Description: cs.Description,
			CoverImage:  cs.CoverImage,
			Duration:    cs.Duration,
			Team:        fmt.Sprintf("Team of %d", cs.TeamSize),
			Role:        cs.Role,
			BackHref:    "/" + p.Username,
		},
		Sections: make([]Section, 0, 7),
	}

	for _, t := range []struct {
		kind  SectionKind
		title string
		body  string
	}{
		{SectionOverview, "Overview", cs.Overview},
		{SectionChallenge, "Challenge", cs.Challenge},
		{SectionSolution, "Solution", cs.Solution},
		{SectionOutcome, "Outcome", cs.Outcome},
	} {
		if strings.TrimSpace(t.body) != "" {
			page.Sections = append(page.Sections, Section{Kind: t.kind, Title: t.title, Body: t.body})
		}
	}

	if len(agg.Timelines) > 0 {
		items := make([]TimelineItem, 0, len(agg.Timelines))
		for _, e := range agg.Timelines {
			items = append(items, TimelineItem{
				ID:          e.ID.String(),
				Date:        formatDate(e.Date),
				Title:       e.Title,
				Description: e.Description,
			})
		}
		page.Sections = append(page.Sections, Section{Kind: SectionTimeline, Title: "Timeline", Timeline: items})
	}

	if len(agg.Outcomes) > 0 {
		items := make([]OutcomeItem, 0, len(agg.Outcomes))
		for _, o := range agg.Outcomes {
			items = append(items, OutcomeItem{
				ID:          o.ID.String(),
				Title:       o.Title,
				Description: o.Description,
				Metrics:     append([]string{}, o.Metrics...),
			})
		}
		page.Sections = append(page.Sections, Section{Kind: SectionKeyOutcomes, Title: "Key Outcomes", Outcomes: items})
	}

	if len(cs.Images) > 0 {
		page.Sections = append(page.Sections, Section{
			Kind:  SectionMediaGallery,
			Title: "Media Gallery",
			Media: append([]casestudy.MediaItem{}, cs.Images...),
		})
	}

	page.Sidebar = sidebarOf(&cs)
	return page
}

func sidebarOf(cs *casestudy.CaseStudy) Sidebar {
	sb := Sidebar{
		ProjectInfo:  make([]InfoItem, 0, 5),
		Tools:        append([]string{}, cs.Tools...),
		Technologies: append([]string{}, cs.Technologies...),
		Links:        make([]Link, 0, 3),
	}
	for _, item := range []InfoItem{
		{"Client", cs.Client},
		{"Industry", cs.Industry},
		{"Role", cs.Role},
		{"Duration", cs.Duration},
	} {
		if strings.TrimSpace(item.Value) != "" {
			sb.ProjectInfo = append(sb.ProjectInfo, item)
		}
	}
	sb.ProjectInfo = append(sb.ProjectInfo, InfoItem{Label: "Team Size", Value: teamSize(cs.TeamSize)})

	if cs.LiveURL != "" {
		sb.Links = append(sb.Links, Link{Label: "Live Demo", URL: cs.LiveURL})
	}
	if cs.GithubURL != "" {
		sb.Links = append(sb.Links, Link{Label: "Source Code", URL: cs.GithubURL})
	}
	if cs.VideoURL != "" {
		sb.Links = append(sb.Links, Link{Label: "Video Demo", URL: cs.VideoURL})
	}
	return sb
}

func teamSize(n int) string {
	if n == 1 {
		return "1 person"
	}
	return fmt.Sprintf("%d people", n)
}

// formatDate renders a YYYY-MM-DD date as "Jan 5, 2024" and passes anything else through.
func formatDate(s string) string {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return s
	}
	return d.Format("Jan 2, 2006")
}

func ownerOf(p *profile.Profile) Owner {
	return Owner{Username: p.Username, DisplayName: p.DisplayName(), AvatarURL: p.AvatarURL}
}
