package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDanglingReference indicates a write referenced a row that does not exist.
	ErrDanglingReference = errors.New("repository: referenced record missing")
)
