package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("requested entity does not exist")
	ErrValidation = errors.New("invalid input")
	ErrConflict   = errors.New("conflicting state")
)

// NotFoundError names the missing entity and its id. It matches ErrNotFound with errors.Is.
type NotFoundError struct {
	Entity string
	Id     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d does not exist", e.Entity, e.Id)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

func NotFound(entity string, id int64) error {
	return &NotFoundError{Entity: entity, Id: id}
}

func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
