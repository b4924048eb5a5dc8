package analytics

import (
	"math"
	"sort"
	"time"
)

type Overview struct {
	UniqueVisitors int     `json:"unique_visitors"`
	PageViews      int     `json:"page_views"`
	AvgTimeOnSite  float64 `json:"avg_time_on_site"`
	AvgTimeDisplay string  `json:"avg_time_on_site_display"`
	Interactions   int     `json:"interactions"`
}

// ComputeOverview counts every event as a page view, matching the dashboard headline.
func ComputeOverview(events []Event) Overview {
	visitors := map[string]struct{}{}
	var timeOnSite float64
	var interactions int
	for i := range events {
		e := &events[i]
		if e.VisitorID != "" {
			visitors[e.VisitorID] = struct{}{}
		}
		timeOnSite += e.TimeOnSite()
		if e.EventType.Interaction() {
			interactions++
		}
	}

	o := Overview{
		UniqueVisitors: len(visitors),
		PageViews:      len(events),
		Interactions:   interactions,
	}
	if o.UniqueVisitors > 0 {
		o.AvgTimeOnSite = timeOnSite / float64(o.UniqueVisitors)
	}
	o.AvgTimeDisplay = FormatDuration(o.AvgTimeOnSite)
	return o
}

type PageStat struct {
	Path           string `json:"path"`
	Visits         int    `json:"visits"`
	UniqueVisitors int    `json:"unique_visitors"`
}

// TopPages ranks paths by event count; ties keep first-seen order.
func TopPages(events []Event, limit int) []PageStat {
	stats := map[string]*PageStat{}
	seen := map[string]map[string]struct{}{}
	order := make([]string, 0)

	for i := range events {
		e := &events[i]
		s, ok := stats[e.PagePath]
		if !ok {
			s = &PageStat{Path: e.PagePath}
			stats[e.PagePath] = s
			seen[e.PagePath] = map[string]struct{}{}
			order = append(order, e.PagePath)
		}
		s.Visits++
		if e.VisitorID != "" {
			seen[e.PagePath][e.VisitorID] = struct{}{}
		}
	}

	out := make([]PageStat, 0, len(order))
	for _, p := range order {
		s := stats[p]
		s.UniqueVisitors = len(seen[p])
		out = append(out, *s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Visits > out[j].Visits })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

type DashboardStats struct {
	TotalViews    int `json:"total_views"`
	TotalProjects int `json:"total_projects"`
	ThisMonth     int `json:"this_month"`
	// Engagement is this month's events as a percentage of all page views.
	Engagement int `json:"engagement"`
}

func ComputeDashboardStats(events []Event, totalProjects int, now time.Time) DashboardStats {
	y, m, _ := now.Date()
	monthStart := time.Date(y, m, 1, 0, 0, 0, 0, now.Location())

	st := DashboardStats{TotalProjects: totalProjects}
	for i := range events {
		if events[i].EventType == EventPageView {
			st.TotalViews++
		}
		if !events[i].CreatedAt.Before(monthStart) {
			st.ThisMonth++
		}
	}
	if st.TotalViews > 0 {
		st.Engagement = int(math.Round(float64(st.ThisMonth) / float64(st.TotalViews) * 100))
	}
	return st
}

type Activity struct {
	EventType   EventType `json:"event_type"`
	PagePath    string    `json:"page_path"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// RecentActivity returns the newest events first.
func RecentActivity(events []Event, limit int) []Activity {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	out := make([]Activity, 0, len(sorted))
	for i := range sorted {
		e := &sorted[i]
		out = append(out, Activity{
			EventType:   e.EventType,
			PagePath:    e.PagePath,
			Description: describe(e),
			CreatedAt:   e.CreatedAt,
		})
	}
	return out
}

func describe(e *Event) string {
	switch e.EventType {
	case EventPageView:
		return "Viewed " + e.PagePath
	case EventClick:
		if el := e.Element(); el != "" {
			return "Clicked " + el
		}
		return "Clicked on " + e.PagePath
	case EventScroll:
		return "Scrolled " + e.PagePath
	case EventHover:
		return "Hovered on " + e.PagePath
	}
	return string(e.EventType)
}
