package validators

import "go.mongodb.org/mongo-driver/bson"

var bookingStatuses = []string{
	"pending", "approved", "confirmed", "checked_in", "checked_out", "cancelled", "rejected",
}

var paymentStatuses = []string{
	"pending", "partial", "completed", "failed", "refund_pending", "refunded",
}

var ReservationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"user_id",
			"client_id",
			"property_id",
			"room_details",
			"move_in_date",
			"move_out_date",
			"booking_status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"user_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"client_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"property_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"room_details": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"bed_identifier", "sharing_type", "room_number", "bed_label"},
					"properties": bson.M{
						"bed_identifier": bson.M{"bsonType": "string", "minLength": 5},
						"sharing_type":   bson.M{"bsonType": "string", "minLength": 1},
						"floor":          bson.M{"bsonType": []string{"int", "long"}},
						"room_number":    bson.M{"bsonType": "string", "minLength": 1},
						"bed_label":      bson.M{"bsonType": "string", "minLength": 1},
					},
				},
			},

			"move_in_date": bson.M{
				"bsonType": "date",
			},

			"move_out_date": bson.M{
				"bsonType": "date",
			},

			"duration_type": bson.M{
				"enum": []string{"monthly", "daily", "custom"},
			},

			"person_count": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"booking_status": bson.M{
				"enum": bookingStatuses,
			},

			"payment_info": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"amount_paid":    bson.M{"bsonType": []string{"double", "int", "long"}, "minimum": 0},
					"payment_status": bson.M{"enum": paymentStatuses},
				},
			},

			"payments": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"date", "amount", "method", "status"},
					"properties": bson.M{
						"amount": bson.M{"bsonType": []string{"double", "int", "long"}},
						"method": bson.M{"enum": []string{"online", "offline", "wallet", "cash", "bank_transfer"}},
						"status": bson.M{"enum": []string{"pending", "completed", "failed", "refunded"}},
					},
				},
			},

			"outstanding_amount": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  0,
			},

			"rejection_reason": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
