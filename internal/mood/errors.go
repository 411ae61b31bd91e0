package mood

import "errors"

var (
	// ErrInvalidScore is returned when a score falls outside 1..5
	ErrInvalidScore = errors.New("score must be between 1 and 5")

	// ErrInvalidCategory is returned when the category is blank
	ErrInvalidCategory = errors.New("category is required")

	// ErrInvalidDate is returned when a supplied date cannot be parsed
	ErrInvalidDate = errors.New("date must be formatted as YYYY-MM-DD")
)
