package util

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailRegistered = errors.New("email already registered")
	ErrUnauthorized    = errors.New("unauthorized")

	// Content store error kinds. NotFound is expected and drives the
	// draft-then-published fallback; the others classify write failures.
	ErrFileNotFound   = errors.New("file not found")
	ErrStoreConflict  = errors.New("stale revision token")
	ErrStoreAuth      = errors.New("content store credential rejected")
	ErrStoreTransport = errors.New("content store transport failure")

	ErrLessonNotFound = errors.New("lesson not found")
	ErrNoVersions     = errors.New("no version snapshots for lesson")
)
