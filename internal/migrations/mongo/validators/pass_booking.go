package validators

import "go.mongodb.org/mongo-driver/bson"

var PassBookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"pass_id",
			"member_id",
			"start_date",
			"end_date",
			"duration_days",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"pass_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"member_id": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"start_date": bson.M{
				"bsonType": "date",
			},

			"end_date": bson.M{
				"bsonType": "date",
			},

			"duration_days": bson.M{
				"bsonType": "int",
				"minimum":  1,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"pending", "confirmed", "active", "completed", "cancelled"},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
