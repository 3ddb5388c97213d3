package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"stayworks/internal/interval"
	"stayworks/internal/ledger"
	stayserrors "stayworks/internal/stays/errors"
	"stayworks/internal/stays/repository"
	"stayworks/internal/stays/validator"
	"stayworks/pkg/config"
	apperrors "stayworks/pkg/errors"
	"stayworks/pkg/model"
	"stayworks/pkg/notify"
)

type StayService interface {
	// CheckAvailability classifies every resource for [startDate, endDate)
	// and proposes a split stay when no single resource covers the range.
	CheckAvailability(ctx context.Context, startDate, endDate time.Time) (*AvailabilityReport, error)
	// Admit books every segment of the request atomically, or none.
	Admit(ctx context.Context, request *model.StayRequest) (*model.Stay, error)
	GetResource(ctx context.Context, id string) (*model.Resource, error)
	ListResources(ctx context.Context) ([]*model.Resource, int64, error)
	GetReservation(ctx context.Context, id string) (*model.Reservation, error)
	// CancelReservation frees the reservation's day range immediately.
	CancelReservation(ctx context.Context, id string) (*model.Reservation, error)
}

type stayService struct {
	resourceRepo    repository.ResourceRepository
	reservationRepo repository.ReservationRepository
	lockRepo        repository.AdmissionLockRepository
	validator       *validator.StayValidator
	notifier        *notify.Notifier
	cfg             *config.Config
}

func NewStayService(
	resourceRepo repository.ResourceRepository,
	reservationRepo repository.ReservationRepository,
	lockRepo repository.AdmissionLockRepository,
	validator *validator.StayValidator,
	notifier *notify.Notifier,
	cfg *config.Config,
) StayService {
	return &stayService{
		resourceRepo:    resourceRepo,
		reservationRepo: reservationRepo,
		lockRepo:        lockRepo,
		validator:       validator,
		notifier:        notifier,
		cfg:             cfg,
	}
}

func (s *stayService) CheckAvailability(ctx context.Context, startDate, endDate time.Time) (*AvailabilityReport, error) {
	query := interval.New(startDate, endDate)
	if query.IsEmpty() {
		return nil, apperrors.InvalidInput("end date must be after start date")
	}

	resources, err := s.resourceRepo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to load resources", err)
	}

	occupying, err := s.reservationRepo.FindOccupyingInRange(ctx, query.Start, query.End)
	if err != nil {
		return nil, apperrors.Internal("Failed to load reservations", err)
	}

	byResource := make(map[string][]*model.Reservation, len(resources))
	for _, r := range occupying {
		byResource[r.ResourceID] = append(byResource[r.ResourceID], r)
	}

	report := plan(query, resources, byResource, s.cfg.MinUsableDays)

	s.cfg.Log.Info("Availability computed",
		"range", query.String(),
		"fully_available", len(report.FullyAvailable),
		"partially_available", len(report.PartiallyAvailable),
		"excluded", len(report.Excluded),
		"split_proposed", report.SplitProposal != nil,
	)
	return report, nil
}

func (s *stayService) Admit(ctx context.Context, request *model.StayRequest) (*model.Stay, error) {
	if err := s.validator.Validate(request); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make(map[string]any, len(verrs))
			for _, ve := range verrs {
				details[ve.Field] = ve.Message
			}
			return nil, apperrors.Validation("Stay request validation failed", details)
		}
		return nil, apperrors.Internal("Failed to validate stay request", err)
	}

	resources, err := s.loadSegmentResources(ctx, request.Segments)
	if err != nil {
		return nil, err
	}

	// Locks are taken in sorted key order so two split-stay admissions
	// touching the same resources cannot deadlock.
	lockKeys := sortedLockKeys(request.Segments)
	acquired, err := s.acquireLocks(ctx, lockKeys)
	defer s.releaseLocks(ctx, acquired)
	if err != nil {
		return nil, err
	}

	stay := &model.Stay{
		ID:        uuid.NewString(),
		GuestID:   request.GuestID,
		CreatedAt: time.Now().UTC(),
	}

	err = s.reservationRepo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		for _, seg := range request.Segments {
			candidate := interval.New(seg.StartDate, seg.EndDate)

			// Exclusivity is re-checked here, inside the lock and the
			// transaction, so a stale availability read can never admit a
			// conflicting reservation.
			existing, err := s.reservationRepo.FindOccupyingByResource(sessCtx, seg.ResourceID, candidate.Start, candidate.End)
			if err != nil {
				return apperrors.Internal("Failed to verify resource occupancy", err)
			}
			if blocking := ledger.Conflict(candidate, existing); blocking != nil {
				return apperrors.Conflict(fmt.Sprintf(
					"resource %s is occupied for %s by reservation %s",
					seg.ResourceID, candidate.String(), blocking.ID,
				)).WithDetails(map[string]any{
					"resource_id":             seg.ResourceID,
					"requested_range":         candidate.String(),
					"conflicting_reservation": blocking.ID,
				})
			}

			reservation := &model.Reservation{
				ResourceID: seg.ResourceID,
				StayID:     stay.ID,
				GuestID:    request.GuestID,
				StartDate:  candidate.Start,
				EndDate:    candidate.End,
				State:      model.ReservationConfirmed,
			}
			if err := s.reservationRepo.Create(sessCtx, reservation); err != nil {
				return apperrors.Internal("Failed to create reservation", err)
			}
			stay.Reservations = append(stay.Reservations, reservation)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Stay admission failed",
			"stay_id", stay.ID,
			"guest_id", request.GuestID,
			"error", err,
		)
		return nil, err
	}

	s.cfg.Log.Info("Stay admitted",
		"stay_id", stay.ID,
		"guest_id", request.GuestID,
		"segments", len(stay.Reservations),
		"resources", resources,
	)
	s.notifier.StayAdmitted(ctx, stay)

	return stay, nil
}

func (s *stayService) GetResource(ctx context.Context, id string) (*model.Resource, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Resource ID cannot be empty")
	}

	resource, err := s.resourceRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, stayserrors.ErrResourceNotFound) {
			return nil, apperrors.NotFoundWithID("Resource", id)
		}
		if errors.Is(err, stayserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid resource ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve resource", err)
	}
	return resource, nil
}

func (s *stayService) ListResources(ctx context.Context) ([]*model.Resource, int64, error) {
	resources, err := s.resourceRepo.FindAll(ctx)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to list resources", err)
	}

	total, err := s.resourceRepo.Count(ctx)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to count resources", err)
	}

	return resources, total, nil
}

func (s *stayService) GetReservation(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.reservationRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, stayserrors.ErrReservationNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		if errors.Is(err, stayserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid reservation ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve reservation", err)
	}
	return reservation, nil
}

func (s *stayService) CancelReservation(ctx context.Context, id string) (*model.Reservation, error) {
	reservation, err := s.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}

	if reservation.State == model.ReservationCancelled {
		return reservation, nil
	}
	if reservation.State == model.ReservationCheckedOut {
		return nil, apperrors.Conflict("a checked-out reservation cannot be cancelled")
	}

	updated, err := s.reservationRepo.UpdateState(ctx, id, model.ReservationCancelled)
	if err != nil {
		if errors.Is(err, stayserrors.ErrReservationNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		return nil, apperrors.Internal("Failed to cancel reservation", err)
	}

	s.cfg.Log.Info("Reservation cancelled",
		"reservation_id", updated.ID,
		"resource_id", updated.ResourceID,
		"range", interval.Range{Start: updated.StartDate, End: updated.EndDate}.String(),
	)
	s.notifier.ReservationCancelled(ctx, updated)

	return updated, nil
}

// loadSegmentResources verifies every segment targets an existing, offerable
// resource before any lock is taken.
func (s *stayService) loadSegmentResources(ctx context.Context, segments []model.StaySegment) ([]string, error) {
	seen := make(map[string]bool, len(segments))
	var ids []string
	for _, seg := range segments {
		if seen[seg.ResourceID] {
			continue
		}
		seen[seg.ResourceID] = true

		res, err := s.resourceRepo.FindByID(ctx, seg.ResourceID)
		if err != nil {
			if errors.Is(err, stayserrors.ErrResourceNotFound) {
				return nil, apperrors.NotFoundWithID("Resource", seg.ResourceID)
			}
			if errors.Is(err, stayserrors.ErrInvalidID) {
				return nil, apperrors.InvalidInput("Invalid resource ID format")
			}
			return nil, apperrors.Internal("Failed to load resource", err)
		}
		if !res.Offerable() {
			return nil, apperrors.Conflict(fmt.Sprintf("resource %s is unavailable", seg.ResourceID))
		}
		ids = append(ids, seg.ResourceID)
	}
	return ids, nil
}

func sortedLockKeys(segments []model.StaySegment) []string {
	seen := make(map[string]bool, len(segments))
	var keys []string
	for _, seg := range segments {
		key := repository.StayLockKey(seg.ResourceID)
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// acquireLocks takes the keys in order, returning the keys actually held.
// On a conflict the caller releases the prefix and gives up; retry is the
// client's job.
func (s *stayService) acquireLocks(ctx context.Context, keys []string) ([]string, error) {
	var held []string
	for _, key := range keys {
		if err := s.lockRepo.Acquire(ctx, key); err != nil {
			return held, err
		}
		held = append(held, key)
	}
	return held, nil
}

func (s *stayService) releaseLocks(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.lockRepo.Release(ctx, key); err != nil {
			s.cfg.Log.Warn("Failed to release admission lock", "key", key, "error", err)
		}
	}
}
