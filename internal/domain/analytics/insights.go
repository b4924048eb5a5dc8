package analytics

import (
	"fmt"
	"math"
	"sort"
)

type EntryPoint struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// Insights are the session statistics of one query window. Rates are percentages.
type Insights struct {
	Visitors           int          `json:"visitors"`
	AvgSessionDuration float64      `json:"avg_session_duration"`
	BounceRate         float64      `json:"bounce_rate"`
	PagesPerSession    float64      `json:"pages_per_session"`
	TopEntryPoints     []EntryPoint `json:"top_entry_points"`
}

// InsightsDisplay is the dashboard formatting of Insights.
type InsightsDisplay struct {
	AvgSessionDuration string `json:"avg_session_duration"`
	BounceRate         string `json:"bounce_rate"`
	PagesPerSession    string `json:"pages_per_session"`
}

const topEntryPointLimit = 3

type visitorSession struct {
	first, last int // indexes into the event slice
	paths       map[string]struct{}
}

// ComputeInsights reconstructs one session per visitor: the span between their earliest and
// latest event in the set. Events without a visitor id are ignored. Input order does not need
// to be chronological; equal timestamps resolve to the earlier position in the slice.
func ComputeInsights(events []Event) Insights {
	sessions := map[string]*visitorSession{}
	order := make([]string, 0)

	for i := range events {
		e := &events[i]
		if e.VisitorID == "" {
			continue
		}
		s, ok := sessions[e.VisitorID]
		if !ok {
			s = &visitorSession{first: i, last: i, paths: map[string]struct{}{}}
			sessions[e.VisitorID] = s
			order = append(order, e.VisitorID)
		}
		if e.CreatedAt.Before(events[s.first].CreatedAt) {
			s.first = i
		}
		if e.CreatedAt.After(events[s.last].CreatedAt) {
			s.last = i
		}
		s.paths[e.PagePath] = struct{}{}
	}

	out := Insights{TopEntryPoints: []EntryPoint{}}
	if len(order) == 0 {
		return out
	}

	var totalSeconds float64
	var bounced, totalPages int
	entryCounts := map[string]int{}
	entryOrder := make([]string, 0)

	for _, id := range order {
		s := sessions[id]
		totalSeconds += events[s.last].CreatedAt.Sub(events[s.first].CreatedAt).Seconds()
		if len(s.paths) == 1 {
			bounced++
		}
		totalPages += len(s.paths)

		entry := events[s.first].PagePath
		if _, seen := entryCounts[entry]; !seen {
			entryOrder = append(entryOrder, entry)
		}
		entryCounts[entry]++
	}

	n := float64(len(order))
	out.Visitors = len(order)
	out.AvgSessionDuration = totalSeconds / n
	out.BounceRate = float64(bounced) / n * 100
	out.PagesPerSession = float64(totalPages) / n

	ranked := make([]EntryPoint, 0, len(entryOrder))
	for _, p := range entryOrder {
		ranked = append(ranked, EntryPoint{Path: p, Count: entryCounts[p]})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	if len(ranked) > topEntryPointLimit {
		ranked = ranked[:topEntryPointLimit]
	}
	out.TopEntryPoints = ranked
	return out
}

// Rounded returns a copy with the rates rounded to two decimals.
func (in Insights) Rounded() Insights {
	in.AvgSessionDuration = Round(in.AvgSessionDuration, 2)
	in.BounceRate = Round(in.BounceRate, 2)
	in.PagesPerSession = Round(in.PagesPerSession, 2)
	return in
}

func (in Insights) Display() InsightsDisplay {
	return InsightsDisplay{
		AvgSessionDuration: FormatDuration(in.AvgSessionDuration),
		BounceRate:         fmt.Sprintf("%.0f%%", math.Round(in.BounceRate)),
		PagesPerSession:    fmt.Sprintf("%.1f", in.PagesPerSession),
	}
}

func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// FormatDuration renders seconds as "Xm Ys".
func FormatDuration(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int(math.Round(seconds))
	return fmt.Sprintf("%dm %ds", total/60, total%60)
}
