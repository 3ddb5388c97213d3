// Package notify publishes admission lifecycle events for the booking
// confirmation and access-code flows. Publishing happens after the admission
// commit and is strictly best-effort: the engine never blocks on or fails
// because of notification delivery.
package notify

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"stayworks/pkg/kafka"
	"stayworks/pkg/logger"
	"stayworks/pkg/model"
)

const (
	EventStayAdmitted         = "stay.admitted"
	EventReservationCancelled = "stay.reservation_cancelled"
	EventPassAdmitted         = "pass.admitted"
	EventPassCancelled        = "pass.booking_cancelled"

	schemaVersion  = "1"
	publishTimeout = 2 * time.Second
)

type Notifier struct {
	producer *kafka.Producer
	breaker  *gobreaker.CircuitBreaker
	log      *logger.Logger
	source   string
}

// New builds a notifier around the producer. A nil producer disables
// publishing entirely, which test and single-binary setups rely on.
func New(producer *kafka.Producer, log *logger.Logger, source string) *Notifier {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "admission-events",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Notification breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Notifier{
		producer: producer,
		breaker:  breaker,
		log:      log,
		source:   source,
	}
}

type stayAdmittedEvent struct {
	StayID       string               `json:"stay_id"`
	GuestID      string               `json:"guest_id"`
	Reservations []*model.Reservation `json:"reservations"`
}

type passAdmittedEvent struct {
	BookingID string `json:"booking_id"`
	PassID    string `json:"pass_id"`
	MemberID  string `json:"member_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type cancellationEvent struct {
	ID string `json:"id"`
}

func (n *Notifier) StayAdmitted(ctx context.Context, stay *model.Stay) {
	key := stay.ID
	if len(stay.Reservations) > 0 {
		key = stay.Reservations[0].ResourceID
	}
	n.publish(ctx, EventStayAdmitted, key, stayAdmittedEvent{
		StayID:       stay.ID,
		GuestID:      stay.GuestID,
		Reservations: stay.Reservations,
	})
}

func (n *Notifier) ReservationCancelled(ctx context.Context, reservation *model.Reservation) {
	n.publish(ctx, EventReservationCancelled, reservation.ResourceID, cancellationEvent{ID: reservation.ID})
}

func (n *Notifier) PassAdmitted(ctx context.Context, booking *model.PassBooking) {
	n.publish(ctx, EventPassAdmitted, booking.PassID, passAdmittedEvent{
		BookingID: booking.ID,
		PassID:    booking.PassID,
		MemberID:  booking.MemberID,
		StartDate: booking.StartDate.Format("2006-01-02"),
		EndDate:   booking.EndDate.Format("2006-01-02"),
	})
}

func (n *Notifier) PassBookingCancelled(ctx context.Context, booking *model.PassBooking) {
	n.publish(ctx, EventPassCancelled, booking.PassID, cancellationEvent{ID: booking.ID})
}

func (n *Notifier) publish(ctx context.Context, eventType, key string, payload any) {
	if n == nil || n.producer == nil {
		return
	}

	msg := kafka.NewMessage().
		WithKey(key).
		WithEventType(eventType).
		WithSource(n.source).
		WithSchemaVersion(schemaVersion).
		WithValue(payload).
		Build()

	// Detach from request cancellation so an already-answered admission
	// still gets its event out.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	_, err := n.breaker.Execute(func() (any, error) {
		return nil, n.producer.Publish(pubCtx, msg)
	})
	if err != nil {
		n.log.Warn("Failed to publish admission event",
			"event_type", eventType,
			"key", key,
			"error", err,
		)
	}
}

func (n *Notifier) Close() {
	if n == nil || n.producer == nil {
		return
	}
	if err := n.producer.Close(); err != nil {
		n.log.Warn("Failed to close event producer", "error", err)
	}
}
