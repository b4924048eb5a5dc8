package analytics

import "time"

const DateLayout = "2006-01-02"

type DailyPoint struct {
	Date      string `json:"date"`
	Visitors  int    `json:"visitors"`
	PageViews int    `json:"page_views"`
}

// ComputeDailySeries returns one point per calendar day from start to end inclusive, zero-filled.
// Days are taken in start's location. PageViews counts every event type on that day; Visitors
// counts distinct non-empty visitor ids. An end before start yields an empty series.
func ComputeDailySeries(events []Event, start, end time.Time) []DailyPoint {
	loc := start.Location()
	first := startOfDay(start, loc)
	last := startOfDay(end.In(loc), loc)
	if last.Before(first) {
		return []DailyPoint{}
	}

	series := make([]DailyPoint, 0)
	index := map[string]int{}
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		key := d.Format(DateLayout)
		index[key] = len(series)
		series = append(series, DailyPoint{Date: key})
	}

	visitors := make([]map[string]struct{}, len(series))
	for i := range events {
		key := events[i].CreatedAt.In(loc).Format(DateLayout)
		pos, ok := index[key]
		if !ok {
			continue
		}
		series[pos].PageViews++
		if v := events[i].VisitorID; v != "" {
			if visitors[pos] == nil {
				visitors[pos] = map[string]struct{}{}
			}
			visitors[pos][v] = struct{}{}
		}
	}
	for i := range series {
		series[i].Visitors = len(visitors[i])
	}
	return series
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// LastDays is the range of n days ending on now's calendar day.
func LastDays(now time.Time, n int) DateRange {
	if n < 1 {
		n = 1
	}
	end := startOfDay(now, now.Location())
	return DateRange{Start: end.AddDate(0, 0, -(n - 1)), End: end}
}

// Bounds converts the range to the half-open [from, to) instant window used for store queries.
func (r DateRange) Bounds() (from, to time.Time) {
	loc := r.Start.Location()
	return startOfDay(r.Start, loc), startOfDay(r.End.In(loc), loc).AddDate(0, 0, 1)
}
