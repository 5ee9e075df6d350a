package handler

import (
	"encoding/json"
	"net/http"

	"bedbook/internal/concerns/service"
	apperrors "bedbook/pkg/errors"
	httputil "bedbook/pkg/http"
	"bedbook/pkg/logger"
	"bedbook/pkg/middleware"
	"bedbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ConcernHandler struct {
	service service.ConcernService
	log     *logger.Logger
}

func NewConcernHandler(service service.ConcernService, log *logger.Logger) *ConcernHandler {
	return &ConcernHandler{service: service, log: log}
}

func (h *ConcernHandler) AvailableBeds(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := h.principal(w, r, "AvailableBeds")
	if !ok {
		return
	}

	roomType := r.URL.Query().Get("roomType")
	options, err := h.service.AvailableBeds(r.Context(), principal, ps.ByName("bookingId"), roomType)
	if err != nil {
		h.writeError(w, r, "AvailableBeds", err)
		return
	}
	h.write(w, "AvailableBeds", httputil.Payload{
		"availableBeds":  options.Beds,
		"sharingType":    options.SharingType,
		"currentBooking": options.CurrentBooking,
	})
}

func (h *ConcernHandler) AvailableRooms(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := h.principal(w, r, "AvailableRooms")
	if !ok {
		return
	}

	sharingType := r.URL.Query().Get("sharingType")
	options, err := h.service.AvailableRooms(r.Context(), principal, ps.ByName("bookingId"), sharingType)
	if err != nil {
		h.writeError(w, r, "AvailableRooms", err)
		return
	}
	h.write(w, "AvailableRooms", httputil.Payload{
		"availableRooms": options.Floors,
		"sharingType":    options.SharingType,
		"currentBooking": options.CurrentBooking,
	})
}

func (h *ConcernHandler) PropertyRoomTypes(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	propertyID := ps.ByName("propertyId")
	roomTypes, err := h.service.PropertyRoomTypes(r.Context(), propertyID)
	if err != nil {
		h.writeError(w, r, "PropertyRoomTypes", err)
		return
	}
	h.write(w, "PropertyRoomTypes", httputil.Payload{
		"roomTypes":  roomTypes,
		"propertyId": propertyID,
	})
}

func (h *ConcernHandler) Submit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := h.principal(w, r, "Submit")
	if !ok {
		return
	}

	var req model.ConcernRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, "Submit", apperrors.InvalidInput("Invalid request body"))
		return
	}

	concern, err := h.service.Submit(r.Context(), principal, &req)
	if err != nil {
		h.writeError(w, r, "Submit", err)
		return
	}

	if err := httputil.WriteCreated(w, httputil.Payload{
		"message":   "Concern submitted successfully",
		"concern":   concern,
		"reference": concern.Reference(),
	}); err != nil {
		h.log.Error("failed to write created response", "handler", "Submit", "operation", "WriteCreated", "error", err)
	}
}

func (h *ConcernHandler) ListForUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := h.principal(w, r, "ListForUser")
	if !ok {
		return
	}
	concerns, err := h.service.ListForUser(r.Context(), principal)
	if err != nil {
		h.writeError(w, r, "ListForUser", err)
		return
	}
	h.writeList(w, "ListForUser", concerns)
}

func (h *ConcernHandler) ListForClient(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := h.principal(w, r, "ListForClient")
	if !ok {
		return
	}
	concerns, err := h.service.ListForClient(r.Context(), principal)
	if err != nil {
		h.writeError(w, r, "ListForClient", err)
		return
	}
	h.writeList(w, "ListForClient", concerns)
}

func (h *ConcernHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := h.principal(w, r, "GetByID")
	if !ok {
		return
	}
	concern, err := h.service.GetByID(r.Context(), principal, ps.ByName("id"))
	if err != nil {
		h.writeError(w, r, "GetByID", err)
		return
	}
	h.write(w, "GetByID", httputil.Payload{"concern": concern})
}

func (h *ConcernHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := h.principal(w, r, "UpdateStatus")
	if !ok {
		return
	}

	var req model.ConcernStatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, "UpdateStatus", apperrors.InvalidInput("Invalid request body"))
		return
	}

	concern, err := h.service.UpdateStatus(r.Context(), principal, ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, r, "UpdateStatus", err)
		return
	}
	h.write(w, "UpdateStatus", httputil.Payload{
		"message": "Concern status updated successfully",
		"concern": concern,
	})
}

func (h *ConcernHandler) AddNote(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := h.principal(w, r, "AddNote")
	if !ok {
		return
	}

	var req model.NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, "AddNote", apperrors.InvalidInput("Invalid request body"))
		return
	}

	concern, err := h.service.AddNote(r.Context(), principal, ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, r, "AddNote", err)
		return
	}
	h.write(w, "AddNote", httputil.Payload{
		"message": "Internal note added successfully",
		"concern": concern,
	})
}

func (h *ConcernHandler) principal(w http.ResponseWriter, r *http.Request, handler string) (model.Principal, bool) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		h.writeError(w, r, handler, apperrors.Unauthorized("Authentication required"))
	}
	return p, ok
}

func (h *ConcernHandler) write(w http.ResponseWriter, handler string, payload httputil.Payload) {
	if err := httputil.WriteSuccess(w, payload); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *ConcernHandler) writeList(w http.ResponseWriter, handler string, concerns []*model.Concern) {
	if concerns == nil {
		concerns = []*model.Concern{}
	}
	h.write(w, handler, httputil.Payload{"concerns": concerns, "count": len(concerns)})
}

func (h *ConcernHandler) writeError(w http.ResponseWriter, r *http.Request, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.FromContext(r.Context()).Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}
