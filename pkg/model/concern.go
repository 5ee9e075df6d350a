package model

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

type ConcernType string

const (
	ConcernBedChange     ConcernType = "bed-change"
	ConcernRoomChange    ConcernType = "room-change"
	ConcernOtherServices ConcernType = "other-services"
)

// IsChange reports whether the concern asks to move the tenant to another
// bed.
func (t ConcernType) IsChange() bool {
	return t == ConcernBedChange || t == ConcernRoomChange
}

type ConcernStatus string

const (
	ConcernPending    ConcernStatus = "pending"
	ConcernApproved   ConcernStatus = "approved"
	ConcernRejected   ConcernStatus = "rejected"
	ConcernInProgress ConcernStatus = "in-progress"
	ConcernCompleted  ConcernStatus = "completed"
)

var concernTransitions = map[ConcernStatus][]ConcernStatus{
	ConcernPending:    {ConcernApproved, ConcernRejected, ConcernInProgress},
	ConcernApproved:   {ConcernInProgress, ConcernCompleted},
	ConcernInProgress: {ConcernCompleted},
}

func (s ConcernStatus) CanTransitionTo(next ConcernStatus) bool {
	return slices.Contains(concernTransitions[s], next)
}

func (s ConcernStatus) IsTerminal() bool {
	return len(concernTransitions[s]) == 0
}

// ConcernPredecessors lists the statuses a concern may move to target from,
// in a stable order.
func ConcernPredecessors(target ConcernStatus) []ConcernStatus {
	var from []ConcernStatus
	for _, s := range []ConcernStatus{ConcernPending, ConcernApproved, ConcernInProgress} {
		if s.CanTransitionTo(target) {
			from = append(from, s)
		}
	}
	return from
}

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

type InternalNote struct {
	Note      string    `json:"note" bson:"note"`
	CreatedBy string    `json:"createdBy" bson:"created_by"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// Concern is a tenant request raised against one of their bookings.
type Concern struct {
	ID                   string         `json:"id,omitempty" bson:"_id,omitempty"`
	BookingID            string         `json:"bookingId" bson:"booking_id"`
	UserID               string         `json:"userId" bson:"user_id"`
	PropertyID           string         `json:"propertyId" bson:"property_id"`
	Type                 ConcernType    `json:"type" bson:"type"`
	Status               ConcernStatus  `json:"status" bson:"status"`
	Priority             string         `json:"priority" bson:"priority"`
	CurrentRoom          string         `json:"currentRoom" bson:"current_room"`
	CurrentBed           string         `json:"currentBed" bson:"current_bed"`
	CurrentSharingType   string         `json:"currentSharingType" bson:"current_sharing_type"`
	RequestedRoom        string         `json:"requestedRoom,omitempty" bson:"requested_room,omitempty"`
	RequestedBed         string         `json:"requestedBed,omitempty" bson:"requested_bed,omitempty"`
	RequestedSharingType string         `json:"requestedSharingType,omitempty" bson:"requested_sharing_type,omitempty"`
	RequestedFloor       *int           `json:"requestedFloor,omitempty" bson:"requested_floor,omitempty"`
	RequestedIdentifier  string         `json:"requestedIdentifier,omitempty" bson:"requested_identifier,omitempty"`
	Comment              string         `json:"comment,omitempty" bson:"comment,omitempty"`
	AdminResponse        string         `json:"adminResponse,omitempty" bson:"admin_response,omitempty"`
	HandledBy            string         `json:"handledBy,omitempty" bson:"handled_by,omitempty"`
	HandledAt            *time.Time     `json:"handledAt,omitempty" bson:"handled_at,omitempty"`
	CompletedAt          *time.Time     `json:"completedAt,omitempty" bson:"completed_at,omitempty"`
	InternalNotes        []InternalNote `json:"internalNotes" bson:"internal_notes"`
	CreatedAt            time.Time      `json:"createdAt" bson:"created_at"`
	UpdatedAt            time.Time      `json:"updatedAt" bson:"updated_at"`
}

// Reference is the short display id, CN plus the last eight hex digits.
func (c *Concern) Reference() string {
	if len(c.ID) < 8 {
		return ""
	}
	return fmt.Sprintf("CN%s", strings.ToUpper(c.ID[len(c.ID)-8:]))
}

// ConcernRequest is the body of a new concern. Change requests name the
// target bed; other-services requests carry a comment.
type ConcernRequest struct {
	Type                 ConcernType `json:"type" validate:"required,oneof=bed-change room-change other-services"`
	BookingID            string      `json:"currentBookingId" validate:"required"`
	RequestedRoom        string      `json:"requestedRoom" validate:"required_unless=Type other-services"`
	RequestedBed         string      `json:"requestedBed" validate:"required_unless=Type other-services"`
	RequestedSharingType string      `json:"requestedSharingType" validate:"required_if=Type room-change"`
	RequestedFloor       *int        `json:"requestedFloor" validate:"required_if=Type room-change"`
	Comment              string      `json:"comment" validate:"required_if=Type other-services,max=1000"`
	Priority             string      `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
}

type ConcernStatusUpdate struct {
	Status        ConcernStatus `json:"status" validate:"required,oneof=approved rejected in-progress completed"`
	AdminResponse string        `json:"adminResponse" validate:"max=1000"`
}

type NoteRequest struct {
	Note string `json:"note" validate:"required,max=1000"`
}

// BedOption is a bed a tenant may move to.
type BedOption struct {
	Floor         int    `json:"floor"`
	RoomNumber    string `json:"roomNumber"`
	BedLetter     string `json:"bedLetter"`
	ActualBedName string `json:"actualBedName"`
	SharingType   string `json:"sharingType"`
	BedIdentifier string `json:"bedIdentifier"`
	Available     bool   `json:"available"`
}

type StayWindow struct {
	MoveInDate  time.Time `json:"moveInDate"`
	MoveOutDate time.Time `json:"moveOutDate"`
}

// ChangeOptions lists the free beds for a booking's stay. Floors groups the
// same beds by floor number for room changes.
type ChangeOptions struct {
	BookingID      string              `json:"bookingId"`
	PropertyID     string              `json:"propertyId"`
	SharingType    string              `json:"sharingType"`
	Beds           []BedOption         `json:"availableBeds"`
	Floors         map[int][]BedOption `json:"availableRooms,omitempty"`
	CurrentBooking StayWindow          `json:"currentBooking"`
}
