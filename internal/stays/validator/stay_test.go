package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayworks/internal/interval"
	"stayworks/pkg/logger"
	"stayworks/pkg/model"
)

const (
	testResourceA = "64f1b2a3c4d5e6f7a8b9c0d1"
	testResourceB = "64f1b2a3c4d5e6f7a8b9c0d2"
)

func newTestValidator(t *testing.T) *StayValidator {
	t.Helper()
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.JSON, Service: "test"})
	return NewStayValidator(log, 30)
}

func segment(resourceID, start, end string) model.StaySegment {
	return model.StaySegment{
		ResourceID: resourceID,
		StartDate:  interval.MustDate(start),
		EndDate:    interval.MustDate(end),
	}
}

func TestValidate_SingleSegment(t *testing.T) {
	v := newTestValidator(t)

	req := &model.StayRequest{
		GuestID:  "guest-1",
		Segments: []model.StaySegment{segment(testResourceA, "2025-06-01", "2025-07-01")},
	}

	assert.NoError(t, v.Validate(req))
}

func TestValidate_SplitStayContiguous(t *testing.T) {
	v := newTestValidator(t)

	req := &model.StayRequest{
		GuestID: "guest-1",
		Segments: []model.StaySegment{
			segment(testResourceA, "2025-06-01", "2025-06-15"),
			segment(testResourceB, "2025-06-15", "2025-07-01"),
		},
	}

	assert.NoError(t, v.Validate(req))
}

func TestValidate_RejectsGapBetweenSegments(t *testing.T) {
	v := newTestValidator(t)

	req := &model.StayRequest{
		GuestID: "guest-1",
		Segments: []model.StaySegment{
			segment(testResourceA, "2025-06-01", "2025-06-15"),
			segment(testResourceB, "2025-06-16", "2025-07-16"),
		},
	}

	err := v.Validate(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gap")
}

func TestValidate_AcceptsOverlappingSegments(t *testing.T) {
	v := newTestValidator(t)

	// A handover night spent in both apartments still forms one journey.
	req := &model.StayRequest{
		GuestID: "guest-1",
		Segments: []model.StaySegment{
			segment(testResourceA, "2025-06-01", "2025-06-20"),
			segment(testResourceB, "2025-06-15", "2025-07-15"),
		},
	}

	assert.NoError(t, v.Validate(req))
}

func TestValidate_OverlappingNightsCountOnce(t *testing.T) {
	v := newTestValidator(t)

	// 19 + 15 segment nights, but the journey spans only 29 distinct
	// nights, one short of the minimum.
	req := &model.StayRequest{
		GuestID: "guest-1",
		Segments: []model.StaySegment{
			segment(testResourceA, "2025-06-01", "2025-06-20"),
			segment(testResourceB, "2025-06-15", "2025-06-30"),
		},
	}

	err := v.Validate(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "minimum")
}

func TestValidate_RejectsUnorderedSegments(t *testing.T) {
	v := newTestValidator(t)

	req := &model.StayRequest{
		GuestID: "guest-1",
		Segments: []model.StaySegment{
			segment(testResourceA, "2025-06-15", "2025-07-15"),
			segment(testResourceB, "2025-06-01", "2025-06-20"),
		},
	}

	err := v.Validate(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ordered")
}

func TestValidate_RejectsAdjacentSegmentsOnSameResource(t *testing.T) {
	v := newTestValidator(t)

	req := &model.StayRequest{
		GuestID: "guest-1",
		Segments: []model.StaySegment{
			segment(testResourceA, "2025-06-01", "2025-06-15"),
			segment(testResourceA, "2025-06-15", "2025-07-01"),
		},
	}

	err := v.Validate(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "merged")
}

func TestValidate_RejectsBelowMinimumStay(t *testing.T) {
	v := newTestValidator(t)

	req := &model.StayRequest{
		GuestID:  "guest-1",
		Segments: []model.StaySegment{segment(testResourceA, "2025-06-01", "2025-06-10")},
	}

	err := v.Validate(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "minimum")
}

func TestValidate_RejectsEmptySegment(t *testing.T) {
	v := newTestValidator(t)

	req := &model.StayRequest{
		GuestID: "guest-1",
		Segments: []model.StaySegment{
			{
				ResourceID: testResourceA,
				StartDate:  interval.MustDate("2025-06-15"),
				EndDate:    interval.MustDate("2025-06-15").Add(time.Hour),
			},
		},
	}

	// The range normalizes to zero days even though the struct tags pass.
	err := v.Validate(req)
	require.Error(t, err)
}

func TestValidate_RejectsMissingGuestID(t *testing.T) {
	v := newTestValidator(t)

	req := &model.StayRequest{
		Segments: []model.StaySegment{segment(testResourceA, "2025-06-01", "2025-07-01")},
	}

	err := v.Validate(req)
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "GuestID", verrs[0].Field)
}

func TestValidate_RejectsMalformedResourceID(t *testing.T) {
	v := newTestValidator(t)

	req := &model.StayRequest{
		GuestID:  "guest-1",
		Segments: []model.StaySegment{segment("not-an-object-id", "2025-06-01", "2025-07-01")},
	}

	err := v.Validate(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ObjectID")
}
