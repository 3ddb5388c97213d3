package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"stayworks/internal/interval"
	passeserrors "stayworks/internal/passes/errors"
	"stayworks/internal/passes/repository"
	"stayworks/internal/passes/validator"
	"stayworks/pkg/cache"
	"stayworks/pkg/config"
	apperrors "stayworks/pkg/errors"
	"stayworks/pkg/model"
	"stayworks/pkg/notify"
)

const dateLayout = "2006-01-02"

// PassAvailability is the read-side verdict for one pass on one day.
type PassAvailability struct {
	PassID            string  `json:"pass_id"`
	Date              string  `json:"date"`
	Available         bool    `json:"available"`
	Ceiling           Ceiling `json:"ceiling"`
	Demand            int64   `json:"demand"`
	Remaining         *int64  `json:"remaining,omitempty"`
	Reason            string  `json:"reason,omitempty"`
	NextAvailableDate string  `json:"next_available_date,omitempty"`
}

// ReconcileResult reports one display-counter refresh.
type ReconcileResult struct {
	PassID         string `json:"pass_id"`
	Date           string `json:"date"`
	Demand         int64  `json:"demand"`
	PreviousDemand int    `json:"previous_demand"`
}

// CapacityStore is the display-counter cache the read side consumes. The
// cached demand only ever overlays the Mongo display field; admission
// decisions never touch it.
type CapacityStore interface {
	Get(ctx context.Context, passID string) (int, bool)
	Set(ctx context.Context, passID string, demand int)
	Invalidate(ctx context.Context, passID string)
}

type PassService interface {
	GetPass(ctx context.Context, id string) (*model.Pass, error)
	ListPasses(ctx context.Context, limit int, offset int64) ([]*model.Pass, int64, error)
	// CheckAvailability answers whether a booking starting on the date
	// would currently be admitted, without reserving anything.
	CheckAvailability(ctx context.Context, passID string, date time.Time) (*PassAvailability, error)
	// Admit books the pass for its full duration starting at the request
	// date, re-counting live demand for every occupied day under the
	// pass's admission lock.
	Admit(ctx context.Context, passID string, request *model.PassBookingRequest) (*model.PassBooking, error)
	GetBooking(ctx context.Context, id string) (*model.PassBooking, error)
	CancelBooking(ctx context.Context, id string) (*model.PassBooking, error)
	// Reconcile recounts today's demand and refreshes the display counter
	// in Mongo and Redis. Admission decisions never read that counter.
	Reconcile(ctx context.Context, passID string) (*ReconcileResult, error)
}

type passService struct {
	passRepo      repository.PassRepository
	bookingRepo   repository.PassBookingRepository
	overrideRepo  repository.OverrideRepository
	lockRepo      repository.AdmissionLockRepository
	validator     *validator.PassBookingValidator
	capacityCache CapacityStore
	notifier      *notify.Notifier
	cfg           *config.Config
}

func NewPassService(
	passRepo repository.PassRepository,
	bookingRepo repository.PassBookingRepository,
	overrideRepo repository.OverrideRepository,
	lockRepo repository.AdmissionLockRepository,
	validator *validator.PassBookingValidator,
	capacityCache CapacityStore,
	notifier *notify.Notifier,
	cfg *config.Config,
) PassService {
	return &passService{
		passRepo:      passRepo,
		bookingRepo:   bookingRepo,
		overrideRepo:  overrideRepo,
		lockRepo:      lockRepo,
		validator:     validator,
		capacityCache: capacityCache,
		notifier:      notifier,
		cfg:           cfg,
	}
}

func (s *passService) GetPass(ctx context.Context, id string) (*model.Pass, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Pass ID cannot be empty")
	}

	pass, err := s.passRepo.FindByID(ctx, id)
	if err != nil {
		return nil, translatePassError(err, id)
	}
	s.overlayCachedDemand(ctx, pass)
	return pass, nil
}

func (s *passService) ListPasses(ctx context.Context, limit int, offset int64) ([]*model.Pass, int64, error) {
	passes, total, err := s.passRepo.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to list passes", err)
	}
	for _, pass := range passes {
		s.overlayCachedDemand(ctx, pass)
	}
	return passes, total, nil
}

// overlayCachedDemand replaces the Mongo display counter with the fresher
// Redis copy when one exists. On a miss the stored field stands.
func (s *passService) overlayCachedDemand(ctx context.Context, pass *model.Pass) {
	if demand, ok := s.capacityCache.Get(ctx, pass.ID); ok {
		pass.CurrentCapacity = demand
	}
}

func (s *passService) CheckAvailability(ctx context.Context, passID string, date time.Time) (*PassAvailability, error) {
	pass, err := s.GetPass(ctx, passID)
	if err != nil {
		return nil, err
	}

	day := interval.Normalize(date)
	out := &PassAvailability{
		PassID: pass.ID,
		Date:   day.Format(dateLayout),
	}

	if !InOfferWindow(pass, day) {
		out.Reason = OfferWindowReason(pass, day)
		if next := offerWindowOpening(pass, day); next != nil {
			out.NextAvailableDate = next.Format(dateLayout)
		}
		return out, nil
	}

	verdict, err := s.inspectDay(ctx, pass, nil, day)
	if err != nil {
		return nil, err
	}
	out.Ceiling = verdict.ceiling
	out.Demand = verdict.demand

	if verdict.ceiling.Limited {
		remaining := int64(verdict.ceiling.Max) - verdict.demand
		if remaining < 0 {
			remaining = 0
		}
		out.Remaining = &remaining
	}

	if verdict.ceiling.Admits(verdict.demand) {
		out.Available = true
		return out, nil
	}

	out.Reason = apperrors.CodeAtCapacity
	if next, err := s.nextAvailableDate(ctx, pass, day); err == nil && next != nil {
		out.NextAvailableDate = next.Format(dateLayout)
	}
	return out, nil
}

func (s *passService) Admit(ctx context.Context, passID string, request *model.PassBookingRequest) (*model.PassBooking, error) {
	if err := s.validator.Validate(request); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make(map[string]any, len(verrs))
			for _, ve := range verrs {
				details[ve.Field] = ve.Message
			}
			return nil, apperrors.Validation("Pass booking validation failed", details)
		}
		return nil, apperrors.Internal("Failed to validate pass booking", err)
	}

	pass, err := s.GetPass(ctx, passID)
	if err != nil {
		return nil, err
	}

	startDay := interval.Normalize(request.Date)
	if !InOfferWindow(pass, startDay) {
		details := map[string]any{
			"pass_id": pass.ID,
			"date":    startDay.Format(dateLayout),
			"reason":  OfferWindowReason(pass, startDay),
		}
		if next := offerWindowOpening(pass, startDay); next != nil {
			details["next_available_date"] = next.Format(dateLayout)
		}
		return nil, apperrors.NotAvailable("pass is not offered for the requested date", details)
	}

	lockKey := repository.PassLockKey(pass.ID)
	if err := s.lockRepo.Acquire(ctx, lockKey); err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.lockRepo.Release(ctx, lockKey); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release admission lock", "key", lockKey, "error", releaseErr)
		}
	}()

	booking := &model.PassBooking{
		PassID:       pass.ID,
		MemberID:     request.MemberID,
		StartDate:    startDay,
		EndDate:      startDay.AddDate(0, 0, pass.DurationDays),
		DurationDays: pass.DurationDays,
		Status:       model.PassBookingConfirmed,
	}

	err = s.bookingRepo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		overrides, err := s.overrideRepo.FindActiveInRange(sessCtx, pass.ID, booking.StartDate, booking.EndDate.AddDate(0, 0, -1))
		if err != nil {
			return apperrors.Internal("Failed to load schedule overrides", err)
		}

		// Every day the booking occupies must admit one more member. The
		// count is taken here, inside the lock and the transaction, so the
		// ceiling can never be breached by concurrent admissions.
		for day := booking.StartDate; day.Before(booking.EndDate); day = day.AddDate(0, 0, 1) {
			verdict, err := s.inspectDay(sessCtx, pass, overrides, day)
			if err != nil {
				return err
			}
			if !verdict.ceiling.Admits(verdict.demand) {
				details := map[string]any{
					"pass_id":        pass.ID,
					"date":           day.Format(dateLayout),
					"ceiling":        verdict.ceiling.Max,
					"demand":         verdict.demand,
					"ceiling_source": verdict.ceiling.Source,
				}
				if next, err := s.nextAvailableDate(ctx, pass, startDay); err == nil && next != nil {
					details["next_available_date"] = next.Format(dateLayout)
				}
				return apperrors.AtCapacity(fmt.Sprintf("pass %s is at capacity on %s", pass.ID, day.Format(dateLayout)), details)
			}
		}

		if err := s.bookingRepo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create pass booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Pass admission failed",
			"pass_id", pass.ID,
			"member_id", request.MemberID,
			"date", startDay.Format(dateLayout),
			"error", err,
		)
		return nil, err
	}

	s.cfg.Log.Info("Pass booking admitted",
		"booking_id", booking.ID,
		"pass_id", pass.ID,
		"member_id", booking.MemberID,
		"start_date", booking.StartDate.Format(dateLayout),
		"duration_days", booking.DurationDays,
	)
	s.capacityCache.Invalidate(ctx, pass.ID)
	s.notifier.PassAdmitted(ctx, booking)

	return booking, nil
}

func (s *passService) GetBooking(ctx context.Context, id string) (*model.PassBooking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.bookingRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, passeserrors.ErrBookingNotFound) {
			return nil, apperrors.NotFoundWithID("Pass booking", id)
		}
		if errors.Is(err, passeserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve pass booking", err)
	}
	return booking, nil
}

func (s *passService) CancelBooking(ctx context.Context, id string) (*model.PassBooking, error) {
	booking, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.Status == model.PassBookingCancelled {
		return booking, nil
	}

	updated, err := s.bookingRepo.UpdateStatus(ctx, id, model.PassBookingCancelled)
	if err != nil {
		if errors.Is(err, passeserrors.ErrBookingNotFound) {
			return nil, apperrors.NotFoundWithID("Pass booking", id)
		}
		return nil, apperrors.Internal("Failed to cancel pass booking", err)
	}

	s.cfg.Log.Info("Pass booking cancelled",
		"booking_id", updated.ID,
		"pass_id", updated.PassID,
		"member_id", updated.MemberID,
	)
	s.capacityCache.Invalidate(ctx, updated.PassID)
	s.notifier.PassBookingCancelled(ctx, updated)

	return updated, nil
}

func (s *passService) Reconcile(ctx context.Context, passID string) (*ReconcileResult, error) {
	pass, err := s.GetPass(ctx, passID)
	if err != nil {
		return nil, err
	}

	today := interval.Today().Start
	demand, err := s.bookingRepo.CountDemandOnDay(ctx, pass.ID, today)
	if err != nil {
		return nil, apperrors.Internal("Failed to count pass demand", err)
	}

	if err := s.passRepo.UpdateCurrentCapacity(ctx, pass.ID, int(demand)); err != nil {
		return nil, apperrors.Internal("Failed to update pass capacity counter", err)
	}
	s.capacityCache.Set(ctx, pass.ID, int(demand))

	s.cfg.Log.Info("Pass capacity reconciled",
		"pass_id", pass.ID,
		"date", today.Format(dateLayout),
		"demand", demand,
		"previous", pass.CurrentCapacity,
	)
	return &ReconcileResult{
		PassID:         pass.ID,
		Date:           today.Format(dateLayout),
		Demand:         demand,
		PreviousDemand: pass.CurrentCapacity,
	}, nil
}

type dayVerdict struct {
	ceiling Ceiling
	demand  int64
}

// inspectDay resolves the ceiling and counts live demand for one day. When
// overrides is nil they are fetched for the single day.
func (s *passService) inspectDay(ctx context.Context, pass *model.Pass, overrides []*model.ScheduleOverride, day time.Time) (dayVerdict, error) {
	if overrides == nil {
		var err error
		overrides, err = s.overrideRepo.FindActiveInRange(ctx, pass.ID, day, day)
		if err != nil {
			return dayVerdict{}, apperrors.Internal("Failed to load schedule overrides", err)
		}
	}

	ceiling := ResolveCeiling(pass, overrides, day)

	var demand int64
	if ceiling.Limited {
		var err error
		demand, err = s.bookingRepo.CountDemandOnDay(ctx, pass.ID, day)
		if err != nil {
			return dayVerdict{}, apperrors.Internal("Failed to count pass demand", err)
		}
	}

	return dayVerdict{ceiling: ceiling, demand: demand}, nil
}

// nextAvailableDate scans forward from the rejected date for the first start
// day whose whole booking duration would be admitted. The scan is advisory
// and bounded by the configured horizon; nil means nothing inside it.
func (s *passService) nextAvailableDate(ctx context.Context, pass *model.Pass, from time.Time) (*time.Time, error) {
	horizon := from.AddDate(0, 0, s.cfg.NextAvailableHorizonDays)

	overrides, err := s.overrideRepo.FindActiveInRange(ctx, pass.ID, from, horizon.AddDate(0, 0, pass.DurationDays))
	if err != nil {
		return nil, err
	}

	for candidate := from.AddDate(0, 0, 1); !candidate.After(horizon); candidate = candidate.AddDate(0, 0, 1) {
		if !InOfferWindow(pass, candidate) {
			continue
		}
		fits := true
		end := candidate.AddDate(0, 0, pass.DurationDays)
		for day := candidate; day.Before(end); day = day.AddDate(0, 0, 1) {
			verdict, err := s.inspectDay(ctx, pass, overrides, day)
			if err != nil {
				return nil, err
			}
			if !verdict.ceiling.Admits(verdict.demand) {
				fits = false
				break
			}
		}
		if fits {
			return &candidate, nil
		}
	}
	return nil, nil
}

// offerWindowOpening returns the opening of a date-restricted pass's window
// when the day falls before it. Past the window there is no next date.
func offerWindowOpening(pass *model.Pass, day time.Time) *time.Time {
	if pass.AvailableFrom == nil {
		return nil
	}
	opening := interval.Normalize(*pass.AvailableFrom)
	if day.Before(opening) {
		return &opening
	}
	return nil
}

var _ CapacityStore = (*cache.CapacityCache)(nil)

func translatePassError(err error, id string) error {
	if errors.Is(err, passeserrors.ErrPassNotFound) {
		return apperrors.NotFoundWithID("Pass", id)
	}
	if errors.Is(err, passeserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid pass ID format")
	}
	return apperrors.Internal("Failed to retrieve pass", err)
}
