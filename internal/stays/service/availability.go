package service

import (
	"sort"

	"stayworks/internal/interval"
	"stayworks/internal/ledger"
	"stayworks/pkg/model"
)

const (
	ClassificationFull     = "fully_available"
	ClassificationPartial  = "partially_available"
	ClassificationExcluded = "excluded"

	ExclusionUnavailable = "resource is unavailable"
	ExclusionBelowUsable = "free days in range are below the usable minimum"
)

// ResourceAvailability is one resource's verdict for a queried range.
type ResourceAvailability struct {
	Resource       *model.Resource  `json:"resource"`
	Classification string           `json:"classification"`
	FreeRanges     []interval.Range `json:"free_ranges,omitempty"`
	FreeDays       int              `json:"free_days"`
	Segments       []ledger.Segment `json:"segments,omitempty"`
	Reason         string           `json:"reason,omitempty"`
}

// ProposalSegment is one leg of a suggested split stay.
type ProposalSegment struct {
	ResourceID string         `json:"resource_id"`
	Title      string         `json:"title"`
	Range      interval.Range `json:"range"`
	PriceCents int64          `json:"price_cents"`
}

// SplitProposal is a gap-free cover of the queried range across several
// resources, offered when no single resource covers the whole range.
type SplitProposal struct {
	Segments        []ProposalSegment `json:"segments"`
	TotalPriceCents int64             `json:"total_price_cents"`
}

// AvailabilityReport is the full planner output for a queried range.
type AvailabilityReport struct {
	Range              interval.Range         `json:"range"`
	FullyAvailable     []*ResourceAvailability `json:"fully_available"`
	PartiallyAvailable []*ResourceAvailability `json:"partially_available"`
	Excluded           []*ResourceAvailability `json:"excluded"`
	SplitProposal      *SplitProposal          `json:"split_proposal,omitempty"`
}

// plan classifies every resource against the query range and, when no
// resource is fully free, attempts a split-stay cover from the partially
// available ones. Pure function over in-memory state so the same inputs
// always yield the same report.
func plan(query interval.Range, resources []*model.Resource, reservations map[string][]*model.Reservation, minUsableDays int) *AvailabilityReport {
	report := &AvailabilityReport{Range: query}

	for _, res := range resources {
		ra := classify(query, res, reservations[res.ID], minUsableDays)
		switch ra.Classification {
		case ClassificationFull:
			report.FullyAvailable = append(report.FullyAvailable, ra)
		case ClassificationPartial:
			report.PartiallyAvailable = append(report.PartiallyAvailable, ra)
		default:
			report.Excluded = append(report.Excluded, ra)
		}
	}

	sortByPrice(report.FullyAvailable)
	sortByFreeDays(report.PartiallyAvailable)

	if len(report.FullyAvailable) == 0 {
		report.SplitProposal = proposeSplit(query, report.PartiallyAvailable)
	}

	return report
}

// classify produces one resource's availability verdict. A resource is
// offered as partial only if its total free days inside the query reach
// minUsableDays; below that it is excluded but still reported for
// diagnostics.
func classify(query interval.Range, res *model.Resource, occupying []*model.Reservation, minUsableDays int) *ResourceAvailability {
	if !res.Offerable() {
		return &ResourceAvailability{
			Resource:       res,
			Classification: ClassificationExcluded,
			Reason:         ExclusionUnavailable,
		}
	}

	segments := ledger.Partition(query, occupying)
	var free []interval.Range
	freeDays := 0
	for _, seg := range segments {
		if seg.Status != ledger.StatusFree {
			continue
		}
		free = append(free, seg.Range)
		freeDays += seg.Range.Days()
	}

	ra := &ResourceAvailability{
		Resource:   res,
		FreeRanges: free,
		FreeDays:   freeDays,
		Segments:   segments,
	}

	switch {
	case freeDays == query.Days():
		ra.Classification = ClassificationFull
	case freeDays >= minUsableDays:
		ra.Classification = ClassificationPartial
	default:
		ra.Classification = ClassificationExcluded
		ra.Reason = ExclusionBelowUsable
	}
	return ra
}

// proposeSplit builds a gap-free greedy cover of the query range from the
// partially available resources' free windows. At each cursor position it
// picks the window reaching furthest; price breaks ties. Returns nil when a
// day of the range cannot be covered.
func proposeSplit(query interval.Range, partial []*ResourceAvailability) *SplitProposal {
	type window struct {
		rng      interval.Range
		resource *model.Resource
	}

	var windows []window
	for _, ra := range partial {
		for _, r := range ra.FreeRanges {
			windows = append(windows, window{rng: r, resource: ra.Resource})
		}
	}
	if len(windows) == 0 {
		return nil
	}

	proposal := &SplitProposal{}
	cursor := query.Start
	for cursor.Before(query.End) {
		var best *window
		for i := range windows {
			w := &windows[i]
			if w.rng.Start.After(cursor) || !w.rng.End.After(cursor) {
				continue
			}
			if best == nil ||
				w.rng.End.After(best.rng.End) ||
				(w.rng.End.Equal(best.rng.End) && w.resource.PriceCents < best.resource.PriceCents) {
				best = w
			}
		}
		if best == nil {
			return nil
		}

		end := best.rng.End
		if end.After(query.End) {
			end = query.End
		}
		seg := ProposalSegment{
			ResourceID: best.resource.ID,
			Title:      best.resource.Title,
			Range:      interval.Range{Start: cursor, End: end},
		}
		seg.PriceCents = int64(seg.Range.Days()) * best.resource.PriceCents
		proposal.Segments = append(proposal.Segments, seg)
		proposal.TotalPriceCents += seg.PriceCents
		cursor = end
	}

	return proposal
}

func sortByPrice(list []*ResourceAvailability) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Resource.PriceCents != list[j].Resource.PriceCents {
			return list[i].Resource.PriceCents < list[j].Resource.PriceCents
		}
		return list[i].Resource.ID < list[j].Resource.ID
	})
}

func sortByFreeDays(list []*ResourceAvailability) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].FreeDays != list[j].FreeDays {
			return list[i].FreeDays > list[j].FreeDays
		}
		return list[i].Resource.ID < list[j].Resource.ID
	})
}
