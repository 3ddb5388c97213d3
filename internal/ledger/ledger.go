// Package ledger answers which days of a query range are free or occupied
// for a single resource, given its non-cancelled reservations. It also holds
// the write-time exclusivity check used by stay admission.
package ledger

import (
	"sort"

	"stayworks/internal/interval"
	"stayworks/pkg/model"
)

const (
	StatusFree     = "free"
	StatusOccupied = "occupied"
)

// Segment is one tagged sub-interval of a partition. Occupied segments carry
// the blocking reservation for diagnostics.
type Segment struct {
	Range       interval.Range     `json:"range"`
	Status      string             `json:"status"`
	Reservation *model.Reservation `json:"reservation,omitempty"`
}

// Partition splits the query range into an ordered list of free/occupied
// segments. The result is deterministic for identical inputs regardless of
// reservation ordering: occupying intervals are sorted before slicing.
func Partition(query interval.Range, reservations []*model.Reservation) []Segment {
	if query.IsEmpty() {
		return nil
	}

	occupying := occupyingSorted(query, reservations)

	var out []Segment
	cursor := query.Start
	for _, r := range occupying {
		clipped, ok := query.Intersect(interval.Range{Start: r.StartDate, End: r.EndDate})
		if !ok {
			continue
		}
		if cursor.Before(clipped.Start) {
			out = append(out, Segment{
				Range:  interval.Range{Start: cursor, End: clipped.Start},
				Status: StatusFree,
			})
		}
		// Overlapping occupied intervals cannot exist on a healthy resource,
		// but a partition must still cover the range exactly if they do.
		if clipped.End.After(cursor) {
			start := clipped.Start
			if cursor.After(start) {
				start = cursor
			}
			out = append(out, Segment{
				Range:       interval.Range{Start: start, End: clipped.End},
				Status:      StatusOccupied,
				Reservation: r,
			})
			cursor = clipped.End
		}
	}
	if cursor.Before(query.End) {
		out = append(out, Segment{
			Range:  interval.Range{Start: cursor, End: query.End},
			Status: StatusFree,
		})
	}
	return out
}

// FreeRanges returns the free sub-ranges of the query range in order.
func FreeRanges(query interval.Range, reservations []*model.Reservation) []interval.Range {
	var out []interval.Range
	for _, seg := range Partition(query, reservations) {
		if seg.Status == StatusFree {
			out = append(out, seg.Range)
		}
	}
	return out
}

// FreeDays counts the free days of the query range.
func FreeDays(query interval.Range, reservations []*model.Reservation) int {
	days := 0
	for _, r := range FreeRanges(query, reservations) {
		days += r.Days()
	}
	return days
}

// Conflict returns the first occupying reservation whose interval intersects
// the candidate range, or nil when the candidate is admissible. This is the
// exclusivity condition; it must be evaluated again at write time under the
// same serialization as the insert.
func Conflict(candidate interval.Range, reservations []*model.Reservation) *model.Reservation {
	for _, r := range occupyingSorted(candidate, reservations) {
		if candidate.Overlaps(interval.Range{Start: r.StartDate, End: r.EndDate}) {
			return r
		}
	}
	return nil
}

func occupyingSorted(query interval.Range, reservations []*model.Reservation) []*model.Reservation {
	var out []*model.Reservation
	for _, r := range reservations {
		if r == nil || !r.Occupies() {
			continue
		}
		if query.Overlaps(interval.Range{Start: r.StartDate, End: r.EndDate}) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		if !out[i].EndDate.Equal(out[j].EndDate) {
			return out[i].EndDate.Before(out[j].EndDate)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
