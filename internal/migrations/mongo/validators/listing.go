package validators

import "go.mongodb.org/mongo-driver/bson"

var KitchenListingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"manager_id",
			"name",
			"city",
			"address",
			"hourly_rate_cents",
			"currency",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"manager_id": bson.M{
				"bsonType": "string",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"city": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 50,
			},

			"address": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 200,
			},

			"hourly_rate_cents": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"currency": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 3,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var StorageListingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"kitchen_id",
			"name",
			"storage_type",
			"period_rate_cents",
			"period_days",
			"daily_rate_cents",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"kitchen_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"storage_type": bson.M{
				"bsonType": "string",
				"enum": []string{
					"dry",
					"cold",
					"frozen",
				},
			},

			"period_rate_cents": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"period_days": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  31,
			},

			"min_booking_days": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
				"maximum":  365,
			},

			"daily_rate_cents": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var EquipmentListingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"kitchen_id",
			"name",
			"availability_type",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"kitchen_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"availability_type": bson.M{
				"bsonType": "string",
				"enum": []string{
					"rental",
					"included",
				},
			},

			"session_rate_cents": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"damage_deposit_cents": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
