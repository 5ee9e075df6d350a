package model

import "time"

type BedState string

const (
	BedAvailable BedState = "available"
	BedBooked    BedState = "booked"
	BedApproved  BedState = "approved"
)

type BedAvailability struct {
	Floor         int      `json:"floor"`
	RoomNumber    string   `json:"roomNumber"`
	BedName       string   `json:"bedName"`
	BedLetter     string   `json:"bedLetter"`
	RoomType      string   `json:"roomType"`
	BedIdentifier string   `json:"roomIdentifier"`
	Status        BedState `json:"status"`
	Available     bool     `json:"available"`
	BookingID     string   `json:"bookingId,omitempty"`
}

type AvailabilityStats struct {
	TotalBeds     int `json:"totalBeds"`
	AvailableBeds int `json:"availableBeds"`
	BookedBeds    int `json:"bookedBeds"`
	ApprovedBeds  int `json:"approvedBeds"`
}

func (s *AvailabilityStats) Add(state BedState) {
	s.TotalBeds++
	switch state {
	case BedAvailable:
		s.AvailableBeds++
	case BedApproved:
		s.ApprovedBeds++
	default:
		s.BookedBeds++
	}
}

type FloorAvailability struct {
	Floor      int               `json:"floor"`
	Beds       []BedAvailability `json:"beds"`
	Statistics AvailabilityStats `json:"statistics"`
}

type Availability struct {
	PropertyID          string              `json:"propertyId"`
	PropertyName        string              `json:"propertyName"`
	StartDate           time.Time           `json:"checkStartDate"`
	EndDate             time.Time           `json:"checkEndDate"`
	RoomType            string              `json:"roomType,omitempty"`
	Floors              []FloorAvailability `json:"floors"`
	Statistics          AvailabilityStats   `json:"statistics"`
	AmbiguousCapacities []int               `json:"ambiguousCapacities,omitempty"`
}

type AvailabilityCheck struct {
	PropertyID       string    `json:"propertyId"`
	PropertyName     string    `json:"property"`
	StartDate        time.Time `json:"startDate"`
	EndDate          time.Time `json:"endDate"`
	UnavailableRooms []string  `json:"unavailableRooms"`
}
