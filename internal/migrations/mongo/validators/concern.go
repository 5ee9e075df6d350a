package validators

import "go.mongodb.org/mongo-driver/bson"

var ConcernValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"booking_id", "user_id", "property_id", "type", "status",
			"current_sharing_type", "created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"booking_id":  bson.M{"bsonType": "string", "minLength": 1},
			"user_id":     bson.M{"bsonType": "string", "minLength": 1},
			"property_id": bson.M{"bsonType": "string", "minLength": 1},
			"type": bson.M{
				"enum": []string{"bed-change", "room-change", "other-services"},
			},
			"status": bson.M{
				"enum": []string{"pending", "approved", "rejected", "in-progress", "completed"},
			},
			"priority": bson.M{
				"enum": []string{"low", "medium", "high", "urgent"},
			},
			"requested_floor": bson.M{"bsonType": []string{"int", "long"}},
			"comment":         bson.M{"bsonType": "string", "maxLength": 1000},
			"admin_response":  bson.M{"bsonType": "string", "maxLength": 1000},
			"internal_notes": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"note", "created_by", "created_at"},
					"properties": bson.M{
						"note":       bson.M{"bsonType": "string", "minLength": 1},
						"created_by": bson.M{"bsonType": "string"},
						"created_at": bson.M{"bsonType": "date"},
					},
				},
			},
			"created_at": bson.M{"bsonType": "date"},
			"updated_at": bson.M{"bsonType": "date"},
		},
	},
}
