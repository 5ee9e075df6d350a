package events

import (
	"context"
	"time"

	"bedbook/pkg/kafka"
	"bedbook/pkg/logger"
	"bedbook/pkg/model"
)

const (
	BookingCreated         = "booking.created"
	BookingApproved        = "booking.approved"
	BookingRejected        = "booking.rejected"
	BookingCancelled       = "booking.cancelled"
	BookingPaymentRecorded = "booking.payment_recorded"

	schemaVersion = "1"
)

// Publisher announces committed reservation changes. Publishing happens
// after commit and is best effort: a failure never undoes the change.
type Publisher interface {
	Publish(ctx context.Context, eventType string, reservation *model.Reservation) error
}

// BookingEvent is the payload written to the booking-events topic.
type BookingEvent struct {
	BookingID         string              `json:"bookingId"`
	UserID            string              `json:"userId"`
	ClientID          string              `json:"clientId"`
	PropertyID        string              `json:"propertyId"`
	RoomType          string              `json:"roomType"`
	BedIdentifiers    []string            `json:"bedIdentifiers"`
	MoveInDate        time.Time           `json:"moveInDate"`
	MoveOutDate       time.Time           `json:"moveOutDate"`
	Status            model.BookingStatus `json:"bookingStatus"`
	PaymentStatus     model.PaymentStatus `json:"paymentStatus"`
	TotalDue          float64             `json:"totalDue"`
	OutstandingAmount float64             `json:"outstandingAmount"`
	OccurredAt        time.Time           `json:"occurredAt"`
}

func NewBookingEvent(r *model.Reservation) BookingEvent {
	return BookingEvent{
		BookingID:         r.ID,
		UserID:            r.UserID,
		ClientID:          r.ClientID,
		PropertyID:        r.PropertyID,
		RoomType:          r.RoomType.Type,
		BedIdentifiers:    r.BedIdentifiers(),
		MoveInDate:        r.MoveInDate,
		MoveOutDate:       r.MoveOutDate,
		Status:            r.Status,
		PaymentStatus:     r.PaymentInfo.PaymentStatus,
		TotalDue:          r.TotalDue(),
		OutstandingAmount: r.OutstandingAmount,
		OccurredAt:        time.Now().UTC(),
	}
}

type messagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type kafkaPublisher struct {
	producer messagePublisher
	source   string
}

// NewKafkaPublisher keys every message by reservation id so one booking's
// events stay ordered on one partition.
func NewKafkaPublisher(producer messagePublisher, source string) Publisher {
	return &kafkaPublisher{producer: producer, source: source}
}

func (p *kafkaPublisher) Publish(ctx context.Context, eventType string, r *model.Reservation) error {
	msg, err := kafka.NewMessage().
		WithKey(r.ID).
		WithValue(NewBookingEvent(r)).
		WithEventType(eventType).
		WithCorrelationID(logger.RequestIDFromContext(ctx)).
		WithSchemaVersion(schemaVersion).
		WithSource(p.source).
		Build()
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

type noopPublisher struct{}

// NewNoopPublisher is used when EVENTS_ENABLED is false.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, string, *model.Reservation) error {
	return nil
}
