package model

import "time"

// BedLock is touched inside every booking transaction for each requested bed
// so concurrent commits on the same bed collide with a write conflict.
type BedLock struct {
	ID            string    `bson:"_id"`
	PropertyID    string    `bson:"property_id"`
	BedIdentifier string    `bson:"bed_identifier"`
	Version       int64     `bson:"version"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

func BedLockID(propertyID, bedIdentifier string) string {
	return propertyID + "|" + bedIdentifier
}
