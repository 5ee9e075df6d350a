package handler

import (
	"encoding/json"
	"net/http"

	"bedbook/internal/bookings/service"
	apperrors "bedbook/pkg/errors"
	httputil "bedbook/pkg/http"
	"bedbook/pkg/logger"
	"bedbook/pkg/middleware"
	"bedbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := h.principal(w, r, "Create")
	if !ok {
		return
	}

	var req model.BookingRequest
	if !h.decode(w, r, "Create", &req) {
		return
	}

	reservation, err := h.service.Create(r.Context(), principal, &req)
	if err != nil {
		h.writeError(w, r, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, httputil.Payload{
		"message": "Booking created successfully",
		"booking": reservation,
	}); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) Approve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := h.principal(w, r, "Approve")
	if !ok {
		return
	}

	reservation, err := h.service.Approve(r.Context(), principal, ps.ByName("id"))
	if err != nil {
		h.writeError(w, r, "Approve", err)
		return
	}
	h.writeBooking(w, "Approve", "Booking approved", reservation)
}

func (h *BookingHandler) Reject(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := h.principal(w, r, "Reject")
	if !ok {
		return
	}

	var body model.RejectRequest
	if !h.decode(w, r, "Reject", &body) {
		return
	}

	reservation, err := h.service.Reject(r.Context(), principal, ps.ByName("id"), body.Reason)
	if err != nil {
		h.writeError(w, r, "Reject", err)
		return
	}
	h.writeBooking(w, "Reject", "Booking rejected", reservation)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := h.principal(w, r, "Cancel")
	if !ok {
		return
	}

	reservation, err := h.service.Cancel(r.Context(), principal, ps.ByName("id"))
	if err != nil {
		h.writeError(w, r, "Cancel", err)
		return
	}
	h.writeBooking(w, "Cancel", "Booking cancelled", reservation)
}

func (h *BookingHandler) RecordPayment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := h.principal(w, r, "RecordPayment")
	if !ok {
		return
	}

	var event model.PaymentEvent
	if !h.decode(w, r, "RecordPayment", &event) {
		return
	}
	event.BookingID = ps.ByName("id")

	reservation, err := h.service.RecordClientPayment(r.Context(), principal, &event)
	if err != nil {
		h.writeError(w, r, "RecordPayment", err)
		return
	}
	h.writeBooking(w, "RecordPayment", "Payment recorded", reservation)
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := h.principal(w, r, "GetByID")
	if !ok {
		return
	}

	reservation, err := h.service.GetByID(r.Context(), principal, ps.ByName("id"))
	if err != nil {
		h.writeError(w, r, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, httputil.Payload{"booking": reservation}); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) ListForUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := h.principal(w, r, "ListForUser")
	if !ok {
		return
	}

	reservations, err := h.service.ListForUser(r.Context(), principal)
	if err != nil {
		h.writeError(w, r, "ListForUser", err)
		return
	}
	h.writeList(w, "ListForUser", reservations)
}

func (h *BookingHandler) ListForClient(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := h.principal(w, r, "ListForClient")
	if !ok {
		return
	}

	reservations, err := h.service.ListForClient(r.Context(), principal)
	if err != nil {
		h.writeError(w, r, "ListForClient", err)
		return
	}
	h.writeList(w, "ListForClient", reservations)
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := h.principal(w, r, "GetAll")
	if !ok {
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, r, "GetAll", err)
		return
	}

	reservations, total, err := h.service.GetAll(r.Context(), principal, limit, offset)
	if err != nil {
		h.writeError(w, r, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, "bookings", reservations, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) principal(w http.ResponseWriter, r *http.Request, handler string) (model.Principal, bool) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		h.writeError(w, r, handler, apperrors.Unauthorized("Authentication required"))
	}
	return p, ok
}

func (h *BookingHandler) decode(w http.ResponseWriter, r *http.Request, handler string, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, r, handler, apperrors.InvalidInput("Invalid request body"))
		return false
	}
	return true
}

func (h *BookingHandler) writeBooking(w http.ResponseWriter, handler, message string, reservation *model.Reservation) {
	if err := httputil.WriteSuccess(w, httputil.Payload{
		"message": message,
		"booking": reservation,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeList(w http.ResponseWriter, handler string, reservations []*model.Reservation) {
	if reservations == nil {
		reservations = []*model.Reservation{}
	}
	if err := httputil.WriteSuccess(w, httputil.Payload{
		"bookings": reservations,
		"count":    len(reservations),
	}); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, r *http.Request, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.FromContext(r.Context()).Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}
