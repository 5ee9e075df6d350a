package handler

import "github.com/julienschmidt/httprouter"

func (h *ConcernHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/concerns", h.Submit)
	router.GET("/api/v1/concerns/user", h.ListForUser)
	router.GET("/api/v1/concerns/property", h.ListForClient)
	router.GET("/api/v1/concerns/available-beds/:bookingId", h.AvailableBeds)
	router.GET("/api/v1/concerns/available-rooms/:bookingId", h.AvailableRooms)
	router.GET("/api/v1/concerns/property-room-types/:propertyId", h.PropertyRoomTypes)

	router.GET("/api/v1/concerns/id/:id", h.GetByID)
	router.PATCH("/api/v1/concerns/id/:id/status", h.UpdateStatus)
	router.POST("/api/v1/concerns/id/:id/notes", h.AddNote)
}
