package validators

import "go.mongodb.org/mongo-driver/bson"

var PassValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"price_cents",
			"duration_days",
			"is_capacity_limited",
			"is_date_restricted",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"price_cents": bson.M{
				"bsonType": "long",
				"minimum":  1,
			},

			"duration_days": bson.M{
				"bsonType": "int",
				"enum":     []int{1, 7, 30},
			},

			"base_max_capacity": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  500,
			},

			"is_capacity_limited": bson.M{
				"bsonType": "bool",
			},

			"is_date_restricted": bson.M{
				"bsonType": "bool",
			},

			"available_from": bson.M{
				"bsonType": "date",
			},

			"available_until": bson.M{
				"bsonType": "date",
			},

			"current_capacity": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
