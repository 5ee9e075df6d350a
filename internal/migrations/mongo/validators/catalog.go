package validators

import "go.mongodb.org/mongo-driver/bson"

// RoomCatalogValidator guards the per-property room layout. Bed names are
// free text; identifiers are derived from them at read time.
var RoomCatalogValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"property_id", "floors", "room_types"},
		"additionalProperties": true,

		"properties": bson.M{
			"property_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"floors": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"number", "rooms"},
					"properties": bson.M{
						"number": bson.M{"bsonType": []string{"int", "long"}},
						"rooms": bson.M{
							"bsonType": "array",
							"items": bson.M{
								"bsonType": "object",
								"required": []string{"number", "beds"},
								"properties": bson.M{
									"number": bson.M{"bsonType": "string", "minLength": 1},
									"beds": bson.M{
										"bsonType": "array",
										"items":    bson.M{"bsonType": "string", "minLength": 1},
									},
								},
							},
						},
					},
				},
			},

			"room_types": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"type", "capacity", "price"},
					"properties": bson.M{
						"type":     bson.M{"bsonType": "string", "minLength": 1},
						"capacity": bson.M{"bsonType": []string{"int", "long"}, "minimum": 1},
						"price":    bson.M{"bsonType": []string{"double", "int", "long"}, "minimum": 0},
						"deposit":  bson.M{"bsonType": []string{"double", "int", "long"}, "minimum": 0},
					},
				},
			},
		},
	},
}

var BedLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "property_id", "bed_identifier", "version"},
		"properties": bson.M{
			"_id":            bson.M{"bsonType": "string"},
			"property_id":    bson.M{"bsonType": "string"},
			"bed_identifier": bson.M{"bsonType": "string"},
			"version":        bson.M{"bsonType": []string{"int", "long"}},
			"updated_at":     bson.M{"bsonType": "date"},
		},
	},
}
