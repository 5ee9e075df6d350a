// Package bedid encodes and resolves bed identifiers of the form
// sharingType-roomNumber-bedLabel.
package bedid

import (
	"errors"
	"strings"
	"unicode"

	"bedbook/pkg/model"
)

const separator = "-"

var ErrMalformed = errors.New("malformed bed identifier")

type Token struct {
	SharingType string
	RoomNumber  string
	BedLabel    string
}

// Location is a bed resolved against a catalog. BedLabel keeps the
// catalog's original spacing.
type Location struct {
	Floor      int
	RoomNumber string
	BedLabel   string
	BedCount   int
}

// Normalize strips every whitespace rune so "Bed A" and "BedA" compare equal.
func Normalize(label string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, label)
}

// Parse splits a client token. Room numbers may contain hyphens, so the
// first segment is the sharing type, the last is the bed label and the
// middle is rejoined as the room number.
func Parse(token string) (Token, error) {
	parts := strings.Split(token, separator)
	if len(parts) < 3 {
		return Token{}, ErrMalformed
	}
	return Token{
		SharingType: parts[0],
		RoomNumber:  strings.Join(parts[1:len(parts)-1], separator),
		BedLabel:    parts[len(parts)-1],
	}, nil
}

// Resolve finds the first floor holding roomNumber and the first bed whose
// normalized label equals the normalized rawLabel.
func Resolve(catalog *model.RoomCatalog, roomNumber, rawLabel string) (Location, bool) {
	if catalog == nil {
		return Location{}, false
	}
	want := Normalize(rawLabel)
	for _, floor := range catalog.Floors {
		room, ok := floor.Room(roomNumber)
		if !ok {
			continue
		}
		for _, bed := range room.Beds {
			if Normalize(bed) == want {
				return Location{
					Floor:      floor.Number,
					RoomNumber: room.Number,
					BedLabel:   bed,
					BedCount:   len(room.Beds),
				}, true
			}
		}
		return Location{}, false
	}
	return Location{}, false
}

func Canonical(sharingType, roomNumber, bedLabel string) string {
	return sharingType + separator + roomNumber + separator + bedLabel
}
