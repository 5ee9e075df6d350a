package events

import (
	"context"

	apperrors "bedbook/pkg/errors"
	"bedbook/pkg/kafka"
	"bedbook/pkg/logger"
	"bedbook/pkg/model"
)

// PaymentRecorder applies a provider payment to a booking.
type PaymentRecorder interface {
	RecordPayment(ctx context.Context, event *model.PaymentEvent) (*model.Reservation, error)
}

// NewPaymentEventHandler consumes payment-events. Store outages are retried
// by the consumer; every other failure is dead-lettered.
func NewPaymentEventHandler(recorder PaymentRecorder, log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		if id := msg.GetCorrelationID(); id != "" {
			ctx = logger.WithRequestID(ctx, id)
		}

		var event model.PaymentEvent
		if err := msg.DecodeValue(&event); err != nil {
			return kafka.NewPermanentError("malformed payment event", err)
		}

		reservation, err := recorder.RecordPayment(ctx, &event)
		if err != nil {
			return classify(err)
		}

		log.FromContext(ctx).Info("Payment event applied",
			"booking_id", reservation.ID,
			"transaction_id", event.TransactionID,
			"payment_status", reservation.PaymentInfo.PaymentStatus,
		)
		return nil
	}
}

func classify(err error) error {
	switch {
	case apperrors.HasCode(err, apperrors.CodeStoreUnavailable):
		return kafka.NewTransientError("store unavailable", err)
	case apperrors.HasCode(err, apperrors.CodeInternal):
		return kafka.NewTransientError("payment not applied", err)
	default:
		return kafka.NewPermanentError("payment rejected", err)
	}
}
