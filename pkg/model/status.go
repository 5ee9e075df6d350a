package model

type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusApproved   BookingStatus = "approved"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusCheckedIn  BookingStatus = "checked_in"
	StatusCheckedOut BookingStatus = "checked_out"
	StatusCancelled  BookingStatus = "cancelled"
	StatusRejected   BookingStatus = "rejected"
)

var validTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:    {StatusApproved, StatusConfirmed, StatusRejected, StatusCancelled},
	StatusApproved:   {StatusConfirmed, StatusRejected, StatusCancelled},
	StatusConfirmed:  {StatusCheckedIn, StatusCancelled},
	StatusCheckedIn:  {StatusCheckedOut},
	StatusCheckedOut: {},
	StatusCancelled:  {},
	StatusRejected:   {},
}

// allStatuses keeps a stable order for Predecessors.
var allStatuses = []BookingStatus{
	StatusPending,
	StatusApproved,
	StatusConfirmed,
	StatusCheckedIn,
	StatusCheckedOut,
	StatusCancelled,
	StatusRejected,
}

func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	next, ok := validTransitions[s]
	return ok && len(next) == 0
}

// Predecessors lists every status that may move to target. Used to build
// conditional updates so racing transitions cannot both apply.
func Predecessors(target BookingStatus) []BookingStatus {
	var from []BookingStatus
	for _, s := range allStatuses {
		if s.CanTransitionTo(target) {
			from = append(from, s)
		}
	}
	return from
}

// HoldsApproval reports whether an occupying reservation renders as
// "approved" in availability views.
func (s BookingStatus) HoldsApproval() bool {
	return s == StatusApproved || s == StatusConfirmed
}
