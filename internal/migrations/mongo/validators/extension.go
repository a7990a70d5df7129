package validators

import "go.mongodb.org/mongo-driver/bson"

var PendingExtensionValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"storage_reservation_id",
			"new_end_date",
			"extension_days",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"storage_reservation_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"new_end_date": bson.M{
				"bsonType": "string",
				"pattern":  `^\d{4}-\d{2}-\d{2}$`,
			},

			"extension_days": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"price_cents": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"payment_session_id": bson.M{
				"bsonType": "string",
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"completed",
					"failed",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
