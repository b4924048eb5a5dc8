package web

import (
	"github.com/a-h/templ"

	"github.com/khoahotran/projectshelf/internal/application/render"
	"github.com/khoahotran/projectshelf/internal/domain/casestudy"
)

func CaseStudyPage(p *render.CaseStudyPage) templ.Component {
	s := p.Style
	props := layoutProps{
		Title:       p.Hero.Title + " - " + p.Owner.DisplayName,
		Description: p.Hero.Description,
		Username:    p.Owner.Username,
		PagePath:    p.Path,
		BodyClass:   s.Content,
	}
	return layout(props, func(h *htmlWriter) {
		caseStudyHero(h, p)

		h.open("main", cls(s.Layout.Container, s.Spacing.Section))
		h.open("div", s.Page.MainGrid)

		h.open("div", cls(s.Page.MainColumn, s.Section))
		for _, sec := range p.Sections {
			section(h, p, sec)
		}
		h.close("div")

		h.open("aside", cls(s.Page.SidebarColumn, "space-y-6"))
		sidebar(h, p)
		h.close("aside")

		h.close("div")
		h.close("main")
	})
}

func caseStudyHero(h *htmlWriter, p *render.CaseStudyPage) {
	s := p.Style
	hero := p.Hero

	h.open("header", cls(s.Hero, "relative overflow-hidden"))
	if hero.CoverImage != "" {
		h.raw(`<img class="absolute inset-0 h-full w-full object-cover" src="`, templ.EscapeString(safeURL(hero.CoverImage)),
			`" alt="`, templ.EscapeString(hero.Title), `">`)
		h.open("div", cls("absolute inset-0", s.Page.HeroOverlay))
		h.close("div")
	}

	h.open("div", cls("relative", s.Layout.Container, s.Spacing.Section))
	h.open("a", cls("inline-block mb-6 text-sm", s.Text.Secondary), "href", safeURL(hero.BackHref))
	h.text("Back to Portfolio")
	h.close("a")

	h.open("div", s.Page.HeroContent)
	h.element("h1", cls(s.Scale.Title, "font-bold mb-4", s.Text.Primary), hero.Title)
	h.element("p", cls(s.Scale.Bio, s.Text.Secondary, "mb-6"), hero.Description)
	h.open("div", cls("flex flex-wrap gap-6 text-sm", s.Text.Secondary))
	h.element("span", "", hero.Duration)
	h.element("span", "", hero.Team)
	h.element("span", "", hero.Role)
	h.close("div")
	h.close("div")

	h.close("div")
	h.close("header")
}

func section(h *htmlWriter, p *render.CaseStudyPage, sec render.Section) {
	s := p.Style
	h.open("section", "", "data-section", string(sec.Kind))
	h.element("h2", cls(s.Scale.Heading, "font-bold mb-4", s.Text.Primary), sec.Title)

	switch sec.Kind {
	case render.SectionTimeline:
		h.open("ol", s.Page.Timeline)
		for _, item := range sec.Timeline {
			h.open("li", s.Page.TimelineItem)
			h.element("time", cls("shrink-0 text-sm", s.Text.Accent), item.Date)
			h.open("div", "")
			h.element("h3", cls("font-semibold", s.Text.Primary), item.Title)
			h.element("p", s.Text.Secondary, item.Description)
			h.close("div")
			h.close("li")
		}
		h.close("ol")

	case render.SectionKeyOutcomes:
		h.open("div", s.Page.CollectionGrid)
		for _, o := range sec.Outcomes {
			h.open("div", cls(s.Card, s.Motion.Card, s.Spacing.Card, "rounded-lg"))
			h.element("h3", cls(s.Scale.CardTitle, "font-semibold mb-2", s.Text.Primary), o.Title)
			h.element("p", cls(s.Text.Secondary, "mb-3"), o.Description)
			if len(o.Metrics) > 0 {
				h.open("ul", "flex flex-wrap gap-2")
				for _, m := range o.Metrics {
					h.element("li", cls(s.Badge, s.Motion.Badge, "rounded-full px-2 py-0.5 text-xs"), m)
				}
				h.close("ul")
			}
			h.close("div")
		}
		h.close("div")

	case render.SectionMediaGallery:
		h.open("div", s.Page.CollectionGrid)
		for _, m := range sec.Media {
			mediaItem(h, p, m)
		}
		h.close("div")

	default:
		h.element("p", cls(s.Scale.Body, s.Text.Secondary, "whitespace-pre-line"), sec.Body)
	}
	h.close("section")
}

func mediaItem(h *htmlWriter, p *render.CaseStudyPage, m casestudy.MediaItem) {
	h.open("figure", cls(p.Style.Card, p.Style.Motion.Card, "rounded-lg overflow-hidden"))
	src := templ.EscapeString(safeURL(m.URL))
	if m.Type == casestudy.MediaVideo {
		h.raw(`<video class="w-full" controls preload="metadata" src="`, src, `"></video>`)
	} else {
		h.raw(`<img class="w-full object-cover" loading="lazy" src="`, src, `" alt="`, templ.EscapeString(m.Caption), `">`)
	}
	if m.Caption != "" {
		h.element("figcaption", cls("p-3 text-sm", p.Style.Text.Secondary), m.Caption)
	}
	h.close("figure")
}

func sidebar(h *htmlWriter, p *render.CaseStudyPage) {
	s := p.Style
	sb := p.Sidebar
	card := cls(s.Card, s.Spacing.Card, "rounded-lg")

	h.open("div", card)
	h.element("h3", cls("font-semibold mb-4", s.Text.Primary), "Project Information")
	h.open("dl", "space-y-3")
	for _, item := range sb.ProjectInfo {
		h.element("dt", cls("text-sm", s.Text.Secondary), item.Label)
		h.element("dd", cls("font-medium", s.Text.Primary), item.Value)
	}
	h.close("dl")
	h.close("div")

	h.open("div", card)
	h.element("h3", cls("font-semibold mb-4", s.Text.Primary), "Tools & Technologies")
	badgeList(h, p, "Tools", sb.Tools)
	badgeList(h, p, "Technologies", sb.Technologies)
	h.close("div")

	if sb.HasLinks() {
		h.open("div", card)
		h.element("h3", cls("font-semibold mb-4", s.Text.Primary), "Links")
		h.open("div", "flex flex-col gap-2")
		for _, l := range sb.Links {
			h.open("a", cls(s.Button, "rounded-md px-4 py-2 text-center"),
				"href", safeURL(l.URL), "target", "_blank", "rel", "noopener noreferrer")
			h.text(l.Label)
			h.close("a")
		}
		h.close("div")
		h.close("div")
	}
}

func badgeList(h *htmlWriter, p *render.CaseStudyPage, label string, values []string) {
	if len(values) == 0 {
		return
	}
	h.element("h4", cls("text-sm mb-2", p.Style.Text.Secondary), label)
	h.open("div", "flex flex-wrap gap-2 mb-4")
	for _, v := range values {
		h.element("span", cls(p.Style.Badge, p.Style.Motion.Badge, "rounded-full px-2 py-0.5 text-xs"), v)
	}
	h.close("div")
}
