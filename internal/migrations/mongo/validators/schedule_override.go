package validators

import "go.mongodb.org/mongo-driver/bson"

var ScheduleOverrideValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"pass_id",
			"start_date",
			"end_date",
			"priority",
			"is_active",
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

			"start_date": bson.M{
				"bsonType": "date",
			},

			"end_date": bson.M{
				"bsonType": "date",
			},

			"max_capacity": bson.M{
				"bsonType": "int",
				"minimum":  0,
				"maximum":  500,
			},

			"priority": bson.M{
				"bsonType": "int",
				"minimum":  0,
				"maximum":  1000,
			},

			"is_active": bson.M{
				"bsonType": "bool",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
