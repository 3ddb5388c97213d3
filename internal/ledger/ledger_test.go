package ledger

import (
	"math/rand"
	"testing"
	"time"

	"stayworks/internal/interval"
	"stayworks/pkg/model"
)

func reservation(id, state, start, end string) *model.Reservation {
	return &model.Reservation{
		ID:         id,
		ResourceID: "507f1f77bcf86cd799439011",
		State:      state,
		StartDate:  interval.MustDate(start),
		EndDate:    interval.MustDate(end),
	}
}

func TestPartitionEmptyCalendar(t *testing.T) {
	query := interval.New(interval.MustDate("2025-06-01"), interval.MustDate("2025-07-01"))

	segs := Partition(query, nil)
	if len(segs) != 1 {
		t.Fatalf("expected one segment, got %d", len(segs))
	}
	if segs[0].Status != StatusFree || !segs[0].Range.Equal(query) {
		t.Errorf("expected the whole range free, got %+v", segs[0])
	}
	if got := FreeDays(query, nil); got != 30 {
		t.Errorf("expected 30 free days, got %d", got)
	}
}

func TestPartitionTagsOccupiedWithReservation(t *testing.T) {
	query := interval.New(interval.MustDate("2025-06-01"), interval.MustDate("2025-06-20"))
	res := []*model.Reservation{
		reservation("b", model.ReservationConfirmed, "2025-06-10", "2025-06-15"),
		reservation("a", model.ReservationCheckedIn, "2025-06-03", "2025-06-06"),
		reservation("x", model.ReservationCancelled, "2025-06-01", "2025-06-30"),
		reservation("y", model.ReservationCheckedOut, "2025-06-06", "2025-06-10"),
	}

	segs := Partition(query, res)

	want := []struct {
		status string
		start  string
		end    string
		resID  string
	}{
		{StatusFree, "2025-06-01", "2025-06-03", ""},
		{StatusOccupied, "2025-06-03", "2025-06-06", "a"},
		{StatusFree, "2025-06-06", "2025-06-10", ""},
		{StatusOccupied, "2025-06-10", "2025-06-15", "b"},
		{StatusFree, "2025-06-15", "2025-06-20", ""},
	}

	if len(segs) != len(want) {
		t.Fatalf("expected %d segments, got %d: %+v", len(want), len(segs), segs)
	}
	for i, w := range want {
		seg := segs[i]
		if seg.Status != w.status {
			t.Errorf("segment %d status = %s, want %s", i, seg.Status, w.status)
		}
		if !seg.Range.Equal(interval.Range{Start: interval.MustDate(w.start), End: interval.MustDate(w.end)}) {
			t.Errorf("segment %d range = %s", i, seg.Range)
		}
		if w.resID != "" && (seg.Reservation == nil || seg.Reservation.ID != w.resID) {
			t.Errorf("segment %d missing blocking reservation %s", i, w.resID)
		}
	}
}

func TestPartitionDeterministicAcrossInputOrder(t *testing.T) {
	query := interval.New(interval.MustDate("2025-06-01"), interval.MustDate("2025-08-01"))
	res := []*model.Reservation{
		reservation("r1", model.ReservationConfirmed, "2025-06-05", "2025-06-12"),
		reservation("r2", model.ReservationConfirmed, "2025-06-20", "2025-07-01"),
		reservation("r3", model.ReservationCheckedIn, "2025-07-10", "2025-07-14"),
	}

	base := Partition(query, res)

	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := append([]*model.Reservation(nil), res...)
		rnd.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := Partition(query, shuffled)
		if len(got) != len(base) {
			t.Fatalf("iteration %d: partition length changed with input order", i)
		}
		for j := range got {
			if got[j].Status != base[j].Status || !got[j].Range.Equal(base[j].Range) {
				t.Fatalf("iteration %d: segment %d differs: %+v vs %+v", i, j, got[j], base[j])
			}
		}
	}
}

func TestConflict(t *testing.T) {
	existing := []*model.Reservation{
		reservation("r1", model.ReservationConfirmed, "2025-06-10", "2025-06-15"),
		reservation("r2", model.ReservationCancelled, "2025-06-01", "2025-06-30"),
	}

	if c := Conflict(interval.New(interval.MustDate("2025-06-15"), interval.MustDate("2025-06-20")), existing); c != nil {
		t.Errorf("back-to-back turnover flagged as conflict: %v", c.ID)
	}
	if c := Conflict(interval.New(interval.MustDate("2025-06-14"), interval.MustDate("2025-06-20")), existing); c == nil || c.ID != "r1" {
		t.Errorf("expected conflict with r1, got %v", c)
	}
	if c := Conflict(interval.New(interval.MustDate("2025-06-01"), interval.MustDate("2025-06-10")), existing); c != nil {
		t.Errorf("cancelled reservation must not block, got %v", c.ID)
	}
}

// Randomized exclusivity property: admitting only candidates that pass
// Conflict never produces an overlapping pair.
func TestExclusivityProperty(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	base := interval.MustDate("2025-01-01")

	for trial := 0; trial < 50; trial++ {
		var admitted []*model.Reservation
		for i := 0; i < 40; i++ {
			start := base.AddDate(0, 0, rnd.Intn(120))
			end := start.AddDate(0, 0, 1+rnd.Intn(21))
			candidate := interval.Range{Start: start, End: end}
			if Conflict(candidate, admitted) != nil {
				continue
			}
			admitted = append(admitted, &model.Reservation{
				ID:        time.Now().Format("150405.000000000"),
				State:     model.ReservationConfirmed,
				StartDate: start,
				EndDate:   end,
			})
		}

		for i := 0; i < len(admitted); i++ {
			for j := i + 1; j < len(admitted); j++ {
				a := interval.Range{Start: admitted[i].StartDate, End: admitted[i].EndDate}
				b := interval.Range{Start: admitted[j].StartDate, End: admitted[j].EndDate}
				if a.Overlaps(b) {
					t.Fatalf("trial %d: admitted overlapping reservations %s and %s", trial, a, b)
				}
			}
		}
	}
}
