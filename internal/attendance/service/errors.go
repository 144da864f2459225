package service

import "errors"

var (
	// ErrInvalidIdentifier means the scanned identifier is blank or names no
	// known student.  Nothing is written.
	ErrInvalidIdentifier = errors.New("invalid student identifier")

	// ErrStoreUnavailable means a read against the store failed.
	ErrStoreUnavailable = errors.New("record store unavailable")

	// ErrStoreWriteFailure means the attendance insert failed; the attendance
	// table is left unchanged.
	ErrStoreWriteFailure = errors.New("record store write failed")

	ErrRecordNotFound  = errors.New("attendance record not found")
	ErrPictureNotFound = errors.New("student picture not found")
)
