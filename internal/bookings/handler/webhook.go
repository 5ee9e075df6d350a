package handler

import (
	"net/http"

	httputil "bedbook/pkg/http"
	"bedbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const PaymentWebhookPath = "/api/v1/payments/webhook"

// PaymentWebhook applies a provider callback. The signature is checked by
// middleware.PaymentSignature before the request reaches here.
func (h *BookingHandler) PaymentWebhook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var event model.PaymentEvent
	if !h.decode(w, r, "PaymentWebhook", &event) {
		return
	}

	reservation, err := h.service.RecordPayment(r.Context(), &event)
	if err != nil {
		h.writeError(w, r, "PaymentWebhook", err)
		return
	}

	h.log.FromContext(r.Context()).Info("Payment webhook applied",
		"booking_id", reservation.ID,
		"transaction_id", event.TransactionID,
		"payment_status", reservation.PaymentInfo.PaymentStatus,
	)
	if err := httputil.WriteSuccess(w, httputil.Payload{
		"message":       "Payment recorded",
		"bookingId":     reservation.ID,
		"paymentStatus": reservation.PaymentInfo.PaymentStatus,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "PaymentWebhook", "operation", "WriteSuccess", "error", err)
	}
}
