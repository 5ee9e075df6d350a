package handler

import (
	"net/http"

	httputil "bedbook/pkg/http"
	"bedbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// ComputeAvailability serves the per-bed view of a property. startDate,
// endDate and roomType are optional query parameters.
func (h *BookingHandler) ComputeAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	query := r.URL.Query()

	availability, err := h.service.ComputeAvailability(r.Context(),
		ps.ByName("propertyId"),
		query.Get("startDate"),
		query.Get("endDate"),
		query.Get("roomType"),
	)
	if err != nil {
		h.writeError(w, r, "ComputeAvailability", err)
		return
	}

	if err := httputil.WriteSuccess(w, httputil.Payload{"data": availability}); err != nil {
		h.log.Error("failed to write success response", "handler", "ComputeAvailability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.AvailabilityCheckRequest
	if !h.decode(w, r, "CheckAvailability", &req) {
		return
	}

	check, err := h.service.CheckAvailability(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, "CheckAvailability", err)
		return
	}

	if err := httputil.WriteSuccess(w, httputil.Payload{
		"unavailableRooms": check.UnavailableRooms,
		"startDate":        check.StartDate,
		"endDate":          check.EndDate,
		"property":         check.PropertyName,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckAvailability", "operation", "WriteSuccess", "error", err)
	}
}
