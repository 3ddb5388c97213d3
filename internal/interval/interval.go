// Package interval provides calendar-day range arithmetic for the admission
// engine. Ranges are half-open [start, end) at day granularity in UTC;
// a single-day event is [d, d+1). Ranges that only touch at a boundary do
// not overlap, so a same-day turnover is never a conflict.
package interval

import (
	"fmt"
	"sort"
	"time"
)

// Range is a half-open day range [Start, End). Both bounds are UTC midnights.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Normalize truncates t to its UTC calendar day.
func Normalize(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// New builds a normalized range from two instants.
func New(start, end time.Time) Range {
	return Range{Start: Normalize(start), End: Normalize(end)}
}

// Day is the single-day range [d, d+1).
func Day(d time.Time) Range {
	start := Normalize(d)
	return Range{Start: start, End: start.AddDate(0, 0, 1)}
}

// Today is the single-day range for the current UTC day.
func Today() Range {
	return Day(time.Now())
}

func (r Range) String() string {
	return fmt.Sprintf("[%s, %s)", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
}

// IsEmpty reports whether the range covers no days.
func (r Range) IsEmpty() bool {
	return !r.Start.Before(r.End)
}

// Days is the number of calendar days in the range.
func (r Range) Days() int {
	if r.IsEmpty() {
		return 0
	}
	return int(r.End.Sub(r.Start).Hours() / 24)
}

// Contains reports whether day d falls inside the range.
func (r Range) Contains(d time.Time) bool {
	d = Normalize(d)
	return !d.Before(r.Start) && d.Before(r.End)
}

// Equal reports whether both ranges cover the same days.
func (r Range) Equal(o Range) bool {
	return r.Start.Equal(o.Start) && r.End.Equal(o.End)
}

// Overlaps reports whether the two ranges share at least one day.
// Symmetric; boundary contact ([a,b) vs [b,c)) is not an overlap.
func (r Range) Overlaps(o Range) bool {
	if r.IsEmpty() || o.IsEmpty() {
		return false
	}
	return r.Start.Before(o.End) && o.Start.Before(r.End)
}

// Intersect returns the shared sub-range and whether it is non-empty.
func (r Range) Intersect(o Range) (Range, bool) {
	start := r.Start
	if o.Start.After(start) {
		start = o.Start
	}
	end := r.End
	if o.End.Before(end) {
		end = o.End
	}
	out := Range{Start: start, End: end}
	if out.IsEmpty() {
		return Range{}, false
	}
	return out, true
}

// Subtract removes o from r, returning the remaining 0, 1 or 2 sub-ranges
// in ascending order.
func (r Range) Subtract(o Range) []Range {
	if r.IsEmpty() {
		return nil
	}
	if !r.Overlaps(o) {
		return []Range{r}
	}

	var out []Range
	if r.Start.Before(o.Start) {
		out = append(out, Range{Start: r.Start, End: o.Start})
	}
	if o.End.Before(r.End) {
		out = append(out, Range{Start: o.End, End: r.End})
	}
	return out
}

// SubtractAll removes every range in cuts from r, returning the remaining
// sub-ranges in ascending order. Input order of cuts does not matter.
func (r Range) SubtractAll(cuts []Range) []Range {
	remaining := []Range{r}
	for _, cut := range cuts {
		var next []Range
		for _, piece := range remaining {
			next = append(next, piece.Subtract(cut)...)
		}
		remaining = next
	}
	sort.Slice(remaining, func(i, j int) bool {
		return remaining[i].Start.Before(remaining[j].Start)
	})
	return remaining
}

// Merge collapses overlapping or touching ranges into a minimal sorted set.
func Merge(ranges []Range) []Range {
	var in []Range
	for _, r := range ranges {
		if !r.IsEmpty() {
			in = append(in, r)
		}
	}
	if len(in) == 0 {
		return nil
	}
	sort.Slice(in, func(i, j int) bool { return in[i].Start.Before(in[j].Start) })

	out := []Range{in[0]}
	for _, r := range in[1:] {
		last := &out[len(out)-1]
		if !r.Start.After(last.End) {
			if r.End.After(last.End) {
				last.End = r.End
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

// MustDate parses a YYYY-MM-DD day, panicking on malformed input.
// Intended for tests and fixtures.
func MustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
