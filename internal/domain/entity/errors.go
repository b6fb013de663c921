package entity

import (
	"errors"
	"fmt"
)

// ErrBillNotFound is returned when no bill matches the given id
var ErrBillNotFound = errors.New("bill not found")

// ErrNumberOutOfRange is returned when a form number does not fit an int
var ErrNumberOutOfRange = errors.New("number out of range")

// StatusError is a store failure carrying an HTTP-like status code.
// Its message embeds the code ("Erreur 404") and is shown to the user as is.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Erreur %d", e.StatusCode)
}

// StatusCodeOf returns the status code carried by err, or 0
func StatusCodeOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
