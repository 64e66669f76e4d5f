package store

import (
	"errors"
	"fmt"
)

const (
	KindLandmark = "landmark"
	KindDeath    = "death position"
)

// ErrNotFound is returned when a landmark or death position does not exist.
type ErrNotFound struct {
	Kind string
	Key  string
}

func (e *ErrNotFound) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Kind)
	}
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

func IsNotFound(err error) bool {
	var target *ErrNotFound
	return errors.As(err, &target)
}

// ErrInvalidArgument is returned for malformed input such as an empty name.
type ErrInvalidArgument struct {
	Reason string
}

func (e *ErrInvalidArgument) Error() string {
	return "invalid argument: " + e.Reason
}

func IsInvalidArgument(err error) bool {
	var target *ErrInvalidArgument
	return errors.As(err, &target)
}
