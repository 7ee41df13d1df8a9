package library

import "errors"

var (
	// user table errors
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
	ErrMaxUsers     = errors.New("max users reached")

	// book table errors
	ErrBookNotFound     = errors.New("book not found")
	ErrBookNotAvailable = errors.New("book not available")
	ErrLibraryFull      = errors.New("library full")
)
