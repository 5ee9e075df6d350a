package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.GetAll)
	router.POST("/api/v1/bookings/check-availability", h.CheckAvailability)
	router.GET("/api/v1/bookings/availability/property/:propertyId", h.ComputeAvailability)
	router.GET("/api/v1/bookings/user", h.ListForUser)
	router.GET("/api/v1/bookings/property", h.ListForClient)

	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.PATCH("/api/v1/bookings/id/:id/approve", h.Approve)
	router.PATCH("/api/v1/bookings/id/:id/reject", h.Reject)
	router.POST("/api/v1/bookings/id/:id/cancel", h.Cancel)
	router.POST("/api/v1/bookings/id/:id/payments", h.RecordPayment)

	router.POST(PaymentWebhookPath, h.PaymentWebhook)
}

// IsPublicRoute reports whether a request may arrive without a principal.
// The webhook authenticates by signature instead.
func IsPublicRoute(r *http.Request) bool {
	return r.Method == http.MethodPost && r.URL.Path == PaymentWebhookPath
}
