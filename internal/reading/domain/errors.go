package domain

import "errors"

var (
	// ErrInvalidAction is returned for a query action other than climate or motion.
	ErrInvalidAction = errors.New("invalid action")
	// ErrInvalidPayload is returned for an ingestion body that is not a JSON object.
	ErrInvalidPayload = errors.New("invalid payload")
	// ErrMissingField is returned when a required ingestion field is absent or null.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidField is returned when a present field has the wrong shape.
	ErrInvalidField = errors.New("invalid field")
)
