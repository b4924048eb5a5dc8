// Package theme is the closed registry of portfolio themes. Every page reads presentation
// decisions from a StyleBundle by slot name; nothing outside this package branches on a theme id.
package theme

import "strings"

type ID string

const (
	Default  ID = "default"
	Minimal  ID = "minimal"
	Creative ID = "creative"
	Modern   ID = "modern"
)

// Text holds the three emphasis levels.
type Text struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
}

type Spacing struct {
	Section string `json:"section"`
	Card    string `json:"card"`
}

type Layout struct {
	Container string `json:"container"`
	Grid      string `json:"grid"`
}

// Scale groups the typographic sizes that differ per theme.
type Scale struct {
	Title     string `json:"title"`
	Heading   string `json:"heading"`
	Body      string `json:"body"`
	Bio       string `json:"bio"`
	CardTitle string `json:"card_title"`
}

// Page groups the structural slots of the case study page.
type Page struct {
	HeroOverlay    string `json:"hero_overlay"`
	HeroContent    string `json:"hero_content"`
	ProfileHero    string `json:"profile_hero"`
	Avatar         string `json:"avatar"`
	MainGrid       string `json:"main_grid"`
	MainColumn     string `json:"main_column"`
	SidebarColumn  string `json:"sidebar_column"`
	Timeline       string `json:"timeline"`
	TimelineItem   string `json:"timeline_item"`
	CollectionGrid string `json:"collection_grid"`
}

// Motion holds hover affordances; empty strings mean static.
type Motion struct {
	Card  string `json:"card"`
	Badge string `json:"badge"`
}

// StyleBundle is the resolved presentation of one theme. It only holds strings, so a copy
// returned by Resolve can never alter the registry.
type StyleBundle struct {
	ID          ID      `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Hero        string  `json:"hero"`
	Content     string  `json:"content"`
	Card        string  `json:"card"`
	Badge       string  `json:"badge"`
	Section     string  `json:"section"`
	Button      string  `json:"button"`
	Text        Text    `json:"text"`
	Spacing     Spacing `json:"spacing"`
	Layout      Layout  `json:"layout"`
	Scale       Scale   `json:"scale"`
	Page        Page    `json:"page"`
	Motion      Motion  `json:"motion"`
}

var order = []ID{Default, Minimal, Creative, Modern}

var registry = map[ID]StyleBundle{
	Default: {
		ID:          Default,
		Name:        "Default",
		Description: "Clean and professional design with a focus on content",
		Hero:        "bg-gradient-to-b from-background to-muted/50",
		Content:     "text-foreground",
		Card:        "bg-card hover:bg-accent/50 border border-border shadow-sm",
		Badge:       "bg-primary/10 text-primary border border-primary/20",
		Section:     "space-y-8",
		Button:      "bg-primary text-primary-foreground hover:bg-primary/90",
		Text:        Text{Primary: "text-foreground", Secondary: "text-muted-foreground", Accent: "text-primary"},
		Spacing:     Spacing{Section: "py-12 md:py-16", Card: "p-6"},
		Layout:      Layout{Container: "container mx-auto px-4", Grid: "grid gap-6 md:grid-cols-2 lg:grid-cols-3"},
		Scale: Scale{
			Title: "text-4xl md:text-5xl", Heading: "text-3xl", Body: "text-base",
			Bio: "text-lg md:text-xl", CardTitle: "text-lg",
		},
		Page: Page{
			HeroOverlay:    "bg-black/50",
			HeroContent:    "max-w-4xl",
			ProfileHero:    "max-w-4xl mx-auto",
			Avatar:         "h-28 w-28",
			MainGrid:       "grid grid-cols-1 lg:grid-cols-3 gap-12",
			MainColumn:     "lg:col-span-2",
			SidebarColumn:  "lg:col-span-1",
			Timeline:       "space-y-6",
			TimelineItem:   "flex gap-6",
			CollectionGrid: "grid grid-cols-1 md:grid-cols-2 gap-6",
		},
	},
	Minimal: {
		ID:          Minimal,
		Name:        "Minimal",
		Description: "Simple and elegant design with minimal distractions",
		Hero:        "bg-background",
		Content:     "text-foreground",
		Card:        "bg-transparent border-2 border-border hover:border-primary/50",
		Badge:       "bg-muted text-foreground border border-muted-foreground/20",
		Section:     "space-y-12",
		Button:      "bg-foreground text-background hover:bg-foreground/90",
		Text:        Text{Primary: "text-foreground", Secondary: "text-muted-foreground", Accent: "text-foreground"},
		Spacing:     Spacing{Section: "py-16 md:py-20", Card: "p-8"},
		Layout:      Layout{Container: "max-w-4xl mx-auto px-6", Grid: "grid gap-8 md:grid-cols-1 lg:grid-cols-2"},
		Scale: Scale{
			Title: "text-4xl md:text-5xl", Heading: "text-3xl", Body: "text-base",
			Bio: "text-lg md:text-xl", CardTitle: "text-lg",
		},
		Page: Page{
			HeroOverlay:    "bg-black/40",
			HeroContent:    "max-w-3xl mx-auto text-center",
			ProfileHero:    "max-w-3xl mx-auto",
			Avatar:         "h-24 w-24",
			MainGrid:       "grid grid-cols-1 lg:grid-cols-12 gap-12",
			MainColumn:     "lg:col-span-8",
			SidebarColumn:  "lg:col-span-4",
			Timeline:       "space-y-6",
			TimelineItem:   "flex flex-col gap-2",
			CollectionGrid: "grid grid-cols-1 gap-6",
		},
	},
	Creative: {
		ID:          Creative,
		Name:        "Creative",
		Description: "Bold and artistic design for creative professionals",
		Hero:        "bg-gradient-to-r from-primary/20 via-secondary/20 to-accent/20",
		Content:     "text-foreground",
		Card:        "bg-background/80 backdrop-blur-sm hover:shadow-xl border border-primary/20",
		Badge:       "bg-gradient-to-r from-primary to-secondary text-white shadow-lg",
		Section:     "space-y-16",
		Button:      "bg-gradient-to-r from-primary to-secondary text-white hover:shadow-lg",
		Text: Text{
			Primary: "text-foreground", Secondary: "text-muted-foreground",
			Accent: "bg-gradient-to-r from-primary to-secondary bg-clip-text text-transparent",
		},
		Spacing: Spacing{Section: "py-16 md:py-24", Card: "p-8"},
		Layout:  Layout{Container: "container mx-auto px-4", Grid: "grid gap-8 md:grid-cols-2 lg:grid-cols-3"},
		Scale: Scale{
			Title: "text-5xl md:text-7xl", Heading: "text-4xl", Body: "text-lg",
			Bio: "text-xl md:text-2xl", CardTitle: "text-xl",
		},
		Page: Page{
			HeroOverlay:    "bg-gradient-to-t from-black/80 via-black/50 to-transparent",
			HeroContent:    "max-w-4xl",
			ProfileHero:    "max-w-5xl mx-auto",
			Avatar:         "h-32 w-32 ring-primary/20",
			MainGrid:       "grid grid-cols-1 lg:grid-cols-3 gap-12",
			MainColumn:     "lg:col-span-2",
			SidebarColumn:  "lg:col-span-1",
			Timeline:       "relative ml-8 border-l-2 border-primary/30 space-y-8",
			TimelineItem:   "relative flex gap-6 pl-6",
			CollectionGrid: "grid grid-cols-1 md:grid-cols-2 gap-6",
		},
		Motion: Motion{Card: "transition-transform hover:scale-105", Badge: "transition-transform hover:scale-110"},
	},
	Modern: {
		ID:          Modern,
		Name:        "Modern",
		Description: "Contemporary design with dynamic layouts",
		Hero:        "bg-gradient-to-br from-background via-muted/30 to-background",
		Content:     "text-foreground",
		Card:        "bg-card/50 backdrop-blur-sm hover:bg-accent/30 border border-border/50",
		Badge:       "bg-secondary text-secondary-foreground border border-secondary/30",
		Section:     "space-y-10",
		Button:      "bg-secondary text-secondary-foreground hover:bg-secondary/80",
		Text:        Text{Primary: "text-foreground", Secondary: "text-muted-foreground", Accent: "text-secondary-foreground"},
		Spacing:     Spacing{Section: "py-12 md:py-20", Card: "p-6"},
		Layout:      Layout{Container: "container mx-auto px-4", Grid: "grid gap-6 md:grid-cols-2 lg:grid-cols-3 xl:grid-cols-4"},
		Scale: Scale{
			Title: "text-4xl md:text-6xl", Heading: "text-3xl", Body: "text-base",
			Bio: "text-lg md:text-xl", CardTitle: "text-lg",
		},
		Page: Page{
			HeroOverlay:    "bg-gradient-to-t from-background/90 via-black/50 to-transparent",
			HeroContent:    "max-w-4xl",
			ProfileHero:    "max-w-4xl mx-auto",
			Avatar:         "h-28 w-28 ring-border",
			MainGrid:       "grid grid-cols-1 lg:grid-cols-3 gap-12",
			MainColumn:     "lg:col-span-2",
			SidebarColumn:  "lg:col-span-1",
			Timeline:       "space-y-6",
			TimelineItem:   "flex gap-6",
			CollectionGrid: "grid grid-cols-1 md:grid-cols-2 gap-6",
		},
	},
}

// Resolve never fails: unknown or empty ids get the default bundle.
func Resolve(id string) StyleBundle {
	if b, ok := registry[ID(normalize(id))]; ok {
		return b
	}
	return registry[Default]
}

// Normalize maps any stored value onto a known id.
func Normalize(id string) ID {
	return Resolve(id).ID
}

func IsKnown(id string) bool {
	_, ok := registry[ID(normalize(id))]
	return ok
}

// All lists the bundles in display order.
func All() []StyleBundle {
	out := make([]StyleBundle, 0, len(order))
	for _, id := range order {
		out = append(out, registry[id])
	}
	return out
}

func normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
