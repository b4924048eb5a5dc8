package web

import (
	"fmt"

	"github.com/a-h/templ"

	"github.com/khoahotran/projectshelf/internal/application/render"
)

func PortfolioPage(p *render.PortfolioPage) templ.Component {
	s := p.Style
	props := layoutProps{
		Title:       p.Hero.DisplayName + " - Portfolio",
		Description: p.Hero.Bio,
		Username:    p.Hero.Username,
		PagePath:    p.Path,
		BodyClass:   s.Content,
	}
	return layout(props, func(h *htmlWriter) {
		profileHero(h, p)

		h.open("main", cls(s.Layout.Container, s.Spacing.Section))
		if p.Empty {
			h.open("section", "text-center py-16")
			h.element("h2", cls(s.Scale.Heading, "font-semibold mb-2", s.Text.Primary), p.EmptyTitle)
			h.element("p", s.Text.Secondary, p.EmptyMessage)
			h.close("section")
		}
		for _, g := range p.Groups {
			h.open("section", cls(s.Section, "mb-12"))
			titleClass := cls(s.Scale.Heading, "font-bold mb-6", s.Text.Primary)
			if g.Featured {
				titleClass = cls(s.Scale.Heading, "font-bold mb-6", s.Text.Accent)
			}
			h.element("h2", titleClass, g.Title)
			h.open("div", s.Layout.Grid)
			for _, c := range g.Cards {
				caseStudyCard(h, p, c)
			}
			h.close("div")
			h.close("section")
		}
		h.close("main")
	})
}

func profileHero(h *htmlWriter, p *render.PortfolioPage) {
	s := p.Style
	hero := p.Hero

	h.open("header", cls(s.Hero, s.Spacing.Section))
	h.open("div", cls(s.Layout.Container, s.Page.ProfileHero, "text-center"))

	if hero.AvatarURL != "" {
		h.raw(`<img class="`, templ.EscapeString(cls(s.Page.Avatar, "rounded-full object-cover mx-auto mb-6")),
			`" src="`, templ.EscapeString(safeURL(hero.AvatarURL)), `" alt="`, templ.EscapeString(hero.DisplayName), `">`)
	} else {
		h.element("div", cls(s.Page.Avatar, "rounded-full mx-auto mb-6 flex items-center justify-center text-3xl font-bold bg-muted"), hero.Initial)
	}

	h.element("h1", cls(s.Scale.Title, "font-bold mb-2", s.Text.Primary), hero.DisplayName)
	h.element("span", cls(s.Badge, s.Motion.Badge, "inline-block rounded-full px-3 py-1 text-sm mb-4"), "@"+hero.Username)
	if hero.Location != "" {
		h.element("p", cls(s.Text.Secondary, "mb-4"), hero.Location)
	}
	if hero.Bio != "" {
		h.element("p", cls(s.Scale.Bio, s.Text.Secondary, "mb-8"), hero.Bio)
	}

	h.open("div", "flex flex-wrap justify-center gap-4")
	h.open("button", cls(s.Button, "rounded-md px-6 py-3"), "type", "button", "data-track", "contact_button")
	h.text("Get In Touch")
	h.close("button")
	if hero.Website != "" {
		h.open("a", "rounded-md border px-6 py-3",
			"href", safeURL(hero.Website), "target", "_blank", "rel", "noopener noreferrer", "data-track", "website_link")
		h.text("Visit Website")
		h.close("a")
	}
	h.close("div")

	h.close("div")
	h.close("header")
}

func caseStudyCard(h *htmlWriter, p *render.PortfolioPage, c render.Card) {
	s := p.Style
	cardClass := cls(s.Card, s.Motion.Card, "rounded-lg overflow-hidden block")
	if c.Featured {
		cardClass = cls(cardClass, "ring-2 ring-primary/20")
	}

	h.open("a", cardClass,
		"href", safeURL(c.Href),
		"data-track", "case_study_view",
		"data-track-meta", trackMeta(map[string]string{"case_study_id": c.ID, "case_study_title": c.Title}),
	)

	h.open("div", "relative aspect-video bg-muted")
	if c.CoverImage != "" {
		h.raw(`<img class="h-full w-full object-cover" src="`, templ.EscapeString(safeURL(c.CoverImage)),
			`" alt="`, templ.EscapeString(c.Title), `" loading="lazy">`)
	} else {
		h.element("div", "flex h-full items-center justify-center text-muted-foreground", "No cover image")
	}
	if c.Featured {
		h.element("span", cls(s.Badge, "absolute top-3 left-3 rounded-full px-2 py-0.5 text-xs"), "Featured")
	}
	h.close("div")

	h.open("div", s.Spacing.Card)
	h.element("h3", cls(s.Scale.CardTitle, "font-semibold mb-2", s.Text.Primary), c.Title)
	h.element("p", cls(s.Text.Secondary, "mb-4 line-clamp-2"), c.Description)

	h.open("div", cls("flex gap-4 text-sm mb-4", s.Text.Secondary))
	if c.Duration != "" {
		h.element("span", "", c.Duration)
	}
	h.element("span", "", fmt.Sprintf("Team of %d", c.TeamSize))
	h.close("div")

	if len(c.Tools) > 0 {
		h.open("div", "flex flex-wrap gap-2 mb-4")
		for _, t := range c.Tools {
			h.element("span", cls(s.Badge, "rounded-full px-2 py-0.5 text-xs"), t)
		}
		if c.MoreTools > 0 {
			h.element("span", "rounded-full border px-2 py-0.5 text-xs", fmt.Sprintf("+%d", c.MoreTools))
		}
		h.close("div")
	}

	h.element("span", cls(s.Text.Accent, "text-sm font-medium"), "View Project")
	h.close("div")
	h.close("a")
}
