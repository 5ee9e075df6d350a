package repository

import (
	"slices"
	"time"

	"bedbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	// ViewExcludedStatuses are ignored when rendering the availability grid.
	ViewExcludedStatuses = []model.BookingStatus{
		model.StatusCancelled,
		model.StatusRejected,
	}

	// CommitExcludedStatuses are ignored when deciding whether a bed can be
	// booked. A checked-out stay no longer holds its bed.
	CommitExcludedStatuses = []model.BookingStatus{
		model.StatusCancelled,
		model.StatusRejected,
		model.StatusCheckedOut,
	}
)

// OverlapQuery selects reservations whose closed stay interval intersects
// [Start, End]: moveIn <= End and moveOut >= Start. Touching endpoints
// overlap.
type OverlapQuery struct {
	PropertyID       string
	Start            time.Time
	End              time.Time
	ExcludedStatuses []model.BookingStatus
	// BedIdentifiers narrows the query to reservations holding any of them.
	BedIdentifiers []string
}

func (q OverlapQuery) Filter() bson.M {
	filter := bson.M{
		"property_id":   q.PropertyID,
		"move_in_date":  bson.M{"$lte": q.End},
		"move_out_date": bson.M{"$gte": q.Start},
	}
	if len(q.ExcludedStatuses) > 0 {
		filter["booking_status"] = bson.M{"$nin": q.ExcludedStatuses}
	}
	if len(q.BedIdentifiers) > 0 {
		filter["room_details.bed_identifier"] = bson.M{"$in": q.BedIdentifiers}
	}
	return filter
}

// Matches evaluates the same predicate as Filter against a decoded
// reservation.
func (q OverlapQuery) Matches(r *model.Reservation) bool {
	if r == nil || r.PropertyID != q.PropertyID {
		return false
	}
	if r.MoveInDate.After(q.End) || r.MoveOutDate.Before(q.Start) {
		return false
	}
	if slices.Contains(q.ExcludedStatuses, r.Status) {
		return false
	}
	if len(q.BedIdentifiers) == 0 {
		return true
	}
	for _, id := range r.BedIdentifiers() {
		if slices.Contains(q.BedIdentifiers, id) {
			return true
		}
	}
	return false
}
