package models

import (
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewID returns a fresh 24-character document id
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// Validate checks the struct tags of an entity or request payload.
// The returned error is a validator.ValidationErrors when a field is invalid.
func Validate(v interface{}) error {
	return validate.Struct(v)
}
