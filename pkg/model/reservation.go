package model

import (
	"math"
	"time"
)

type DurationType string

const (
	DurationMonthly DurationType = "monthly"
	DurationDaily   DurationType = "daily"
	DurationCustom  DurationType = "custom"
)

type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "pending"
	PaymentPartial       PaymentStatus = "partial"
	PaymentCompleted     PaymentStatus = "completed"
	PaymentFailed        PaymentStatus = "failed"
	PaymentRefundPending PaymentStatus = "refund_pending"
	PaymentRefunded      PaymentStatus = "refunded"
)

const DefaultPaymentMethod = "razorpay"

type RoomTypeSnapshot struct {
	Type     string `json:"type" bson:"type"`
	Name     string `json:"name" bson:"name"`
	Capacity int    `json:"capacity" bson:"capacity"`
}

type RoomDetail struct {
	BedIdentifier string `json:"bedIdentifier" bson:"bed_identifier"`
	SharingType   string `json:"sharingType" bson:"sharing_type"`
	Floor         int    `json:"floor" bson:"floor"`
	RoomNumber    string `json:"roomNumber" bson:"room_number"`
	BedLabel      string `json:"bedLabel" bson:"bed_label"`
}

type CustomerDetails struct {
	Name          string `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Age           int    `json:"age,omitempty" bson:"age,omitempty" validate:"omitempty,min=1,max=120"`
	Gender        string `json:"gender,omitempty" bson:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	Mobile        string `json:"mobile" bson:"mobile" validate:"required,min=6,max=20"`
	Email         string `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	IDProofType   string `json:"idProofType,omitempty" bson:"id_proof_type,omitempty"`
	IDProofNumber string `json:"idProofNumber,omitempty" bson:"id_proof_number,omitempty"`
	Purpose       string `json:"purpose,omitempty" bson:"purpose,omitempty"`
	SaveForFuture bool   `json:"saveForFuture,omitempty" bson:"save_for_future,omitempty"`
}

type Pricing struct {
	MonthlyRent     float64 `json:"monthlyRent" bson:"monthly_rent"`
	TotalRent       float64 `json:"totalRent" bson:"total_rent"`
	SecurityDeposit float64 `json:"securityDeposit" bson:"security_deposit"`
	AdvanceAmount   float64 `json:"advanceAmount" bson:"advance_amount"`
	MaintenanceFee  float64 `json:"maintenanceFee" bson:"maintenance_fee"`
}

type PaymentInfo struct {
	AmountPaid    float64       `json:"amountPaid" bson:"amount_paid"`
	PaymentMethod string        `json:"paymentMethod" bson:"payment_method"`
	PaymentStatus PaymentStatus `json:"paymentStatus" bson:"payment_status"`
	TransactionID string        `json:"transactionId,omitempty" bson:"transaction_id,omitempty"`
	PaymentDate   *time.Time    `json:"paymentDate,omitempty" bson:"payment_date,omitempty"`
}

// Payment is one ledger entry.
type Payment struct {
	Date          time.Time     `json:"date" bson:"date"`
	Amount        float64       `json:"amount" bson:"amount" validate:"gt=0"`
	Method        string        `json:"method" bson:"method" validate:"required,oneof=online offline wallet cash bank_transfer"`
	TransactionID string        `json:"transactionId,omitempty" bson:"transaction_id,omitempty"`
	Status        PaymentStatus `json:"status" bson:"status" validate:"required,oneof=pending completed failed refunded"`
	Description   string        `json:"description,omitempty" bson:"description,omitempty" validate:"max=500"`
}

type Reservation struct {
	ID                string           `json:"id,omitempty" bson:"_id,omitempty"`
	UserID            string           `json:"userId" bson:"user_id"`
	ClientID          string           `json:"clientId" bson:"client_id"`
	PropertyID        string           `json:"propertyId" bson:"property_id"`
	RoomType          RoomTypeSnapshot `json:"roomType" bson:"room_type"`
	RoomDetails       []RoomDetail     `json:"roomDetails" bson:"room_details"`
	MoveInDate        time.Time        `json:"moveInDate" bson:"move_in_date"`
	MoveOutDate       time.Time        `json:"moveOutDate" bson:"move_out_date"`
	DurationType      DurationType     `json:"durationType" bson:"duration_type"`
	DurationDays      int              `json:"durationDays,omitempty" bson:"duration_days,omitempty"`
	DurationMonths    int              `json:"durationMonths,omitempty" bson:"duration_months,omitempty"`
	PersonCount       int              `json:"personCount" bson:"person_count"`
	Customer          CustomerDetails  `json:"customerDetails" bson:"customer_details"`
	Pricing           Pricing          `json:"pricing" bson:"pricing"`
	PaymentInfo       PaymentInfo      `json:"paymentInfo" bson:"payment_info"`
	Payments          []Payment        `json:"payments" bson:"payments"`
	OutstandingAmount float64          `json:"outstandingAmount" bson:"outstanding_amount"`
	Status            BookingStatus    `json:"bookingStatus" bson:"booking_status"`
	ApprovedBy        string           `json:"approvedBy,omitempty" bson:"approved_by,omitempty"`
	ApprovedAt        *time.Time       `json:"approvedAt,omitempty" bson:"approved_at,omitempty"`
	RejectedBy        string           `json:"rejectedBy,omitempty" bson:"rejected_by,omitempty"`
	RejectionReason   string           `json:"rejectionReason,omitempty" bson:"rejection_reason,omitempty"`
	CancelledAt       *time.Time       `json:"cancelledAt,omitempty" bson:"cancelled_at,omitempty"`
	CreatedAt         time.Time        `json:"createdAt" bson:"created_at"`
	UpdatedAt         time.Time        `json:"updatedAt" bson:"updated_at"`
}

func (r *Reservation) BedIdentifiers() []string {
	ids := make([]string, 0, len(r.RoomDetails))
	for _, d := range r.RoomDetails {
		ids = append(ids, d.BedIdentifier)
	}
	return ids
}

func (r *Reservation) TotalDue() float64 {
	return RoundAmount(r.Pricing.TotalRent + r.Pricing.SecurityDeposit + r.Pricing.MaintenanceFee)
}

// ApplyPayment appends p to the ledger and recomputes the outstanding amount
// and payment summary from completed entries only.
func (r *Reservation) ApplyPayment(p Payment) {
	r.Payments = append(r.Payments, p)
	r.RecomputeOutstanding()
	if p.TransactionID != "" {
		r.PaymentInfo.TransactionID = p.TransactionID
	}
	if p.Method != "" {
		r.PaymentInfo.PaymentMethod = p.Method
	}
	if p.Status == PaymentCompleted {
		date := p.Date
		r.PaymentInfo.PaymentDate = &date
	}
}

func (r *Reservation) RecomputeOutstanding() {
	paid := 0.0
	for _, p := range r.Payments {
		if p.Status == PaymentCompleted {
			paid += p.Amount
		}
	}
	paid = RoundAmount(paid)
	due := r.TotalDue()

	r.OutstandingAmount = RoundAmount(math.Max(0, due-paid))
	r.PaymentInfo.AmountPaid = paid
	switch {
	case paid <= 0:
		r.PaymentInfo.PaymentStatus = PaymentPending
	case paid < due:
		r.PaymentInfo.PaymentStatus = PaymentPartial
	default:
		r.PaymentInfo.PaymentStatus = PaymentCompleted
	}
}

func RoundAmount(v float64) float64 {
	return math.Round(v*100) / 100
}
