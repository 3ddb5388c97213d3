package validators

import "go.mongodb.org/mongo-driver/bson"

var ResourceValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"title",
			"price_cents",
			"capacity",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"title": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"price_cents": bson.M{
				"bsonType": "long",
				"minimum":  1,
			},

			"capacity": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  20,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"available", "unavailable"},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
