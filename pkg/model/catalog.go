package model

import (
	"strings"
	"time"
)

const DefaultRoomType = "double"

// capacityFallback resolves a room type from bed count when no configured
// room type matches. Two beds fall through to DefaultRoomType.
var capacityFallback = map[int]string{
	1: "single",
	3: "triple",
	4: "four",
	5: "five",
	6: "six",
}

var fallbackCapacity = map[string]int{
	"single": 1,
	"double": 2,
	"triple": 3,
	"four":   4,
	"quad":   4,
	"five":   5,
	"quint":  5,
	"six":    6,
	"hex":    6,
}

type RoomTypeConfig struct {
	Type     string  `json:"type" bson:"type"`
	Label    string  `json:"label" bson:"label"`
	Capacity int     `json:"capacity" bson:"capacity"`
	Price    float64 `json:"price" bson:"price"`
	Deposit  float64 `json:"deposit" bson:"deposit"`
}

type Room struct {
	Number string   `json:"number" bson:"number"`
	Beds   []string `json:"beds" bson:"beds"`
}

type Floor struct {
	Number int    `json:"number" bson:"number"`
	Rooms  []Room `json:"rooms" bson:"rooms"`
}

func (f Floor) Room(number string) (Room, bool) {
	for _, room := range f.Rooms {
		if room.Number == number {
			return room, true
		}
	}
	return Room{}, false
}

// RoomCatalog is the per-property floor/room/bed layout. Read-only to bookings.
type RoomCatalog struct {
	ID         string           `json:"id,omitempty" bson:"_id,omitempty"`
	PropertyID string           `json:"propertyId" bson:"property_id"`
	Floors     []Floor          `json:"floors" bson:"floors"`
	RoomTypes  []RoomTypeConfig `json:"roomTypes" bson:"room_types"`
	UpdatedAt  time.Time        `json:"updatedAt" bson:"updated_at"`
}

// RoomType looks a tag up case-insensitively; catalogs are maintained by
// hand and request tags arrive lowercased.
func (c *RoomCatalog) RoomType(tag string) (RoomTypeConfig, bool) {
	for _, rt := range c.RoomTypes {
		if strings.EqualFold(rt.Type, tag) {
			return rt, true
		}
	}
	return RoomTypeConfig{}, false
}

// InferRoomType picks the first configured room type whose capacity equals
// bedCount, then the fixed fallback table, then DefaultRoomType. First match
// wins when several configs share a capacity; see AmbiguousCapacities.
func (c *RoomCatalog) InferRoomType(bedCount int) string {
	for _, rt := range c.RoomTypes {
		if rt.Capacity == bedCount {
			return rt.Type
		}
	}
	if tag, ok := capacityFallback[bedCount]; ok {
		return tag
	}
	return DefaultRoomType
}

// CapacityOf returns the bed count implied by a room type tag, from the
// catalog first and the fallback table second.
func (c *RoomCatalog) CapacityOf(tag string) (int, bool) {
	if rt, ok := c.RoomType(tag); ok {
		return rt.Capacity, true
	}
	n, ok := fallbackCapacity[strings.ToLower(tag)]
	return n, ok
}

func (c *RoomCatalog) AmbiguousCapacities() []int {
	seen := make(map[int]int)
	var out []int
	for _, rt := range c.RoomTypes {
		seen[rt.Capacity]++
		if seen[rt.Capacity] == 2 {
			out = append(out, rt.Capacity)
		}
	}
	return out
}

func (c *RoomCatalog) TotalBeds() int {
	n := 0
	for _, f := range c.Floors {
		for _, r := range f.Rooms {
			n += len(r.Beds)
		}
	}
	return n
}
