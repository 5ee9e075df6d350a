package model

// BookingRequest is the client-submitted body of POST /bookings.
type BookingRequest struct {
	PropertyID     string           `json:"propertyId" validate:"required"`
	RoomType       string           `json:"roomType" validate:"required"`
	SelectedRooms  []string         `json:"selectedRooms" validate:"required,min=1,dive,required"`
	MoveInDate     string           `json:"moveInDate" validate:"required"`
	EndDate        string           `json:"endDate,omitempty"`
	DurationType   DurationType     `json:"durationType" validate:"omitempty,oneof=monthly daily custom"`
	DurationDays   int              `json:"durationDays,omitempty" validate:"min=0"`
	DurationMonths int              `json:"durationMonths,omitempty" validate:"min=0"`
	PersonCount    int              `json:"personCount" validate:"required,min=1"`
	Customer       CustomerDetails  `json:"customerDetails"`
	PaymentInfo    *PaymentInfo     `json:"paymentInfo,omitempty"`
	Pricing        *PricingOverride `json:"pricing,omitempty"`
}

// PricingOverride carries caller-supplied amounts; zero means "use computed".
type PricingOverride struct {
	AdvanceAmount   float64 `json:"advanceAmount,omitempty" validate:"min=0"`
	SecurityDeposit float64 `json:"securityDeposit,omitempty" validate:"min=0"`
	MaintenanceFee  float64 `json:"maintenanceFee,omitempty" validate:"min=0"`
}

type AvailabilityCheckRequest struct {
	PropertyID string `json:"propertyId" validate:"required"`
	StartDate  string `json:"startDate" validate:"required"`
	EndDate    string `json:"endDate,omitempty"`
}

type RejectRequest struct {
	Reason string `json:"reason" validate:"required,min=1,max=500"`
}

// PaymentEvent arrives from the payment webhook or the payment-events topic.
type PaymentEvent struct {
	BookingID     string        `json:"bookingId" validate:"required"`
	Amount        float64       `json:"amount" validate:"gt=0"`
	Method        string        `json:"method" validate:"required,oneof=online offline wallet cash bank_transfer"`
	TransactionID string        `json:"transactionId,omitempty"`
	Status        PaymentStatus `json:"status" validate:"required,oneof=pending completed failed refunded"`
	Description   string        `json:"description,omitempty" validate:"max=500"`
}
