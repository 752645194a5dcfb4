package store

import "errors"

// ErrInvalidIdentifier is returned when a stored value does not parse as a
// three-part encoded reference or list key. It indicates data corruption or
// a non-model value misclassified by the encoding tokens.
var ErrInvalidIdentifier = errors.New("rstore: invalid identifier")

// ValidationError reports a schema contract violation found before a save.
// When Save returns one, no writes were performed for that instance.
type ValidationError struct {
	// Property is the schema property that failed.
	Property string

	// Reason describes the failure, e.g. "is required".
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Property + " " + e.Reason
}
