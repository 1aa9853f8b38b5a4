package store

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned by Create when the id is taken.
	ErrAlreadyExists = errors.New("document id already exists")
	// ErrDuplicateContent is returned when a write would give a second ready
	// document the same content hash.
	ErrDuplicateContent = errors.New("content hash already stored")
)
