package casestudy

import (
	"fmt"
	"sort"
)

// TimelineOrder names how timeline entries are sequenced for display.
type TimelineOrder string

const (
	// OrderByIndex uses the author-controlled order_index, ascending.
	OrderByIndex TimelineOrder = "order_index"
	// OrderByDate is chronological, oldest first.
	OrderByDate TimelineOrder = "date"
	// OrderByDateDesc is reverse chronological, newest first.
	OrderByDateDesc TimelineOrder = "date_desc"
)

func ParseTimelineOrder(s string) (TimelineOrder, error) {
	switch o := TimelineOrder(s); o {
	case OrderByIndex, OrderByDate, OrderByDateDesc:
		return o, nil
	case "":
		return OrderByDate, nil
	}
	return "", fmt.Errorf("unknown timeline order %q", s)
}

// SortTimeline orders entries in place. Ties keep their relative order, and fall back to
// order_index for the date strategies.
func SortTimeline(entries []TimelineEntry, order TimelineOrder) {
	var less func(a, b TimelineEntry) bool
	switch order {
	case OrderByIndex:
		less = func(a, b TimelineEntry) bool { return a.OrderIndex < b.OrderIndex }
	case OrderByDateDesc:
		less = func(a, b TimelineEntry) bool {
			if a.Date != b.Date {
				return a.Date > b.Date
			}
			return a.OrderIndex < b.OrderIndex
		}
	default:
		less = func(a, b TimelineEntry) bool {
			if a.Date != b.Date {
				return a.Date < b.Date
			}
			return a.OrderIndex < b.OrderIndex
		}
	}
	sort.SliceStable(entries, func(i, j int) bool { return less(entries[i], entries[j]) })
}

// SQL returns the ORDER BY clause for the strategy.
func (o TimelineOrder) SQL() []string {
	switch o {
	case OrderByIndex:
		return []string{"order_index ASC", "date ASC"}
	case OrderByDateDesc:
		return []string{"date DESC", "order_index ASC"}
	default:
		return []string{"date ASC", "order_index ASC"}
	}
}
